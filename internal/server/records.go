package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jask/ledgerdesk/internal/api"
	"github.com/jask/ledgerdesk/internal/database/repository"
	"github.com/jask/ledgerdesk/internal/period"
	"github.com/jask/ledgerdesk/internal/service"
)

// updateBody accepts value as a string or a bare number.
type updateBody struct {
	ID    string          `json:"id"`
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

type updateFunc func(r *http.Request, id, field, value string) (service.Stored, error)

func (s *Server) handleOrderUpdate(w http.ResponseWriter, r *http.Request) {
	s.handleUpdate(w, r, func(r *http.Request, id, field, value string) (service.Stored, error) {
		return s.Records.UpdateOrder(r.Context(), id, field, value)
	})
}

func (s *Server) handleExpenseUpdate(w http.ResponseWriter, r *http.Request) {
	s.handleUpdate(w, r, func(r *http.Request, id, field, value string) (service.Stored, error) {
		return s.Records.UpdateExpense(r.Context(), id, field, value)
	})
}

// handleUpdate answers {ok, value}. Refusals (unknown field or id) are
// ok:false with status 200; only malformed requests get a 4xx.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, update updateFunc) {
	var body updateBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return
	}
	value, ok := api.ValueText(body.Value)
	if !ok || body.ID == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("id and scalar value required"))
		return
	}
	st, err := update(r, body.ID, body.Field, value)
	switch {
	case errors.Is(err, service.ErrUnknownField), errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusOK, api.UpdateResponse{OK: false, Error: err.Error()})
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	var raw []byte
	if st.IsAmount {
		raw = []byte(service.FormatCents(st.Cents))
	} else {
		raw, _ = json.Marshal(st.Text)
	}
	s.publishDirty()
	writeJSON(w, http.StatusOK, api.UpdateResponse{OK: true, Value: raw})
}

func orderOut(o repository.Order) api.Order {
	return api.Order{ID: o.ID, Date: o.Date, Shift: o.Shift, OrderNo: o.OrderNo, Amount: service.CentsNumber(o.AmountCents)}
}

func expenseOut(e repository.Expense) api.Expense {
	return api.Expense{ID: e.ID, Date: e.Date, Category: e.Category, Memo: e.Memo, Amount: service.CentsNumber(e.AmountCents)}
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.Orders.List(r.Context(), repository.Filter{
		From:   query(r, "from"),
		To:     query(r, "to"),
		Search: query(r, "q"),
	})
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	out := make([]api.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderOut(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var in api.Order
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return
	}
	o, err := s.Records.CreateOrder(r.Context(), service.OrderInput{
		Date: in.Date, Shift: in.Shift, OrderNo: in.OrderNo, Amount: in.Amount.String(),
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	s.publishDirty()
	writeJSON(w, http.StatusCreated, orderOut(o))
}

func (s *Server) handleDeleteOrders(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.Orders.Delete)
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	mode := period.ParseMode(query(r, "mode"))
	from, to := period.Range(mode, period.ParseDate(query(r, "dt"), s.now()))
	exps, err := s.Expenses.List(r.Context(), repository.Filter{
		From:   period.Format(from),
		To:     period.Format(to),
		Search: query(r, "q"),
	})
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	out := make([]api.Expense, 0, len(exps))
	for _, e := range exps {
		out = append(out, expenseOut(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in api.Expense
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return
	}
	e, err := s.Records.CreateExpense(r.Context(), service.ExpenseInput{
		Date: in.Date, Category: in.Category, Memo: in.Memo, Amount: in.Amount.String(),
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	s.publishDirty()
	writeJSON(w, http.StatusCreated, expenseOut(e))
}

func (s *Server) handleDeleteExpenses(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.Expenses.Delete)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, ids []string) (int64, error)) {
	var in api.DeleteRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return
	}
	n, err := del(r.Context(), in.IDs)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	if n > 0 {
		s.publishDirty()
	}
	writeJSON(w, http.StatusOK, api.DeleteResponse{OK: true, Deleted: int(n)})
}

func (s *Server) handleKPI(w http.ResponseWriter, r *http.Request) {
	mode := period.ParseMode(query(r, "mode"))
	k, err := s.Records.KPI(r.Context(), mode, period.ParseDate(query(r, "dt"), s.now()))
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, api.KPI{
		Mode:    k.Mode.String(),
		From:    period.Format(k.From),
		To:      period.Format(k.To),
		Morning: service.CentsNumber(k.MorningCents),
		Evening: service.CentsNumber(k.EveningCents),
		Total:   service.CentsNumber(k.TotalCents),
		Expense: service.CentsNumber(k.ExpenseCents),
		Net:     service.CentsNumber(k.NetCents),
		Orders:  k.Orders,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	names, err := s.Categories.Names(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, api.CategoriesResponse{Categories: names})
}
