// Package server is the reference ledger backend: JSON endpoints for orders,
// expenses and KPI, CSV export and a per-topic event stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jask/ledgerdesk/internal/api"
	"github.com/jask/ledgerdesk/internal/database/repository"
	"github.com/jask/ledgerdesk/internal/notify"
	"github.com/jask/ledgerdesk/internal/service"
)

// Server wires services to HTTP handlers.
type Server struct {
	Records    *service.RecordService
	Export     *service.ExportService
	Orders     *repository.OrderRepo
	Expenses   *repository.ExpenseRepo
	Categories *repository.CategoryRepo
	// Events fans out write notifications; Topic is where writes publish.
	Events *notify.Hub
	Topic  string
	TZ     *time.Location
}

func (s *Server) topic() string {
	if s.Topic == "" {
		return notify.DefaultTopic
	}
	return s.Topic
}

func (s *Server) now() time.Time {
	tz := s.TZ
	if tz == nil {
		tz = time.Local
	}
	return time.Now().In(tz)
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+api.OrdersUpdatePath, s.handleOrderUpdate)
	mux.HandleFunc("POST "+api.ExpensesUpdatePath, s.handleExpenseUpdate)
	mux.HandleFunc("GET /api/orders", s.handleOrders)
	mux.HandleFunc("POST /api/orders", s.handleCreateOrder)
	mux.HandleFunc("POST /api/orders/delete", s.handleDeleteOrders)
	mux.HandleFunc("GET /api/expenses", s.handleExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("POST /api/expenses/delete", s.handleDeleteExpenses)
	mux.HandleFunc("GET /api/kpi", s.handleKPI)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /export/{file}", s.handleExport)
	mux.HandleFunc("GET /events/{topic}", s.handleEventStream)
	mux.HandleFunc("POST /events/{topic}", s.handleEventPublish)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) publishDirty() {
	if s.Events != nil {
		s.Events.Broadcast(s.topic(), notify.Dirty)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= 500 {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, api.ErrorResponse{OK: false, Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(v)
}

func query(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}
