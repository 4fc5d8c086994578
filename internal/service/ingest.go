package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jask/ledgerdesk/internal/database/repository"
	"github.com/jask/ledgerdesk/internal/export"
	"github.com/jask/ledgerdesk/internal/period"
)

// IngestService handles CSV imports of orders and expenses.
type IngestService struct {
	Orders      *repository.OrderRepo
	Expenses    *repository.ExpenseRepo
	Categorizer *CategorizerService
}

type IngestResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

// header maps lower-cased column names to their index.
type header map[string]int

func (h header) get(rec []string, names ...string) string {
	for _, n := range names {
		if i, ok := h[n]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
	}
	return ""
}

func readHeader(csvr *csv.Reader) (header, error) {
	rec, err := csvr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("empty file")
		}
		return nil, fmt.Errorf("header: %w", err)
	}
	h := header{}
	for i, name := range rec {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return h, nil
}

func newReader(r io.Reader) *csv.Reader {
	csvr := csv.NewReader(bufio.NewReader(export.StripBOM(r)))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	return csvr
}

func parseDate(s string) (string, error) {
	t, err := time.Parse(period.Layout, strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return period.Format(t), nil
}

// ImportOrders reads orders with a header row naming date, shift, order_no
// and amount (an id column, as written by the export, is ignored). Rows that
// exactly match an existing order are skipped.
func (s *IngestService) ImportOrders(ctx context.Context, r io.Reader) (IngestResult, error) {
	res := IngestResult{}
	csvr := newReader(r)
	h, err := readHeader(csvr)
	if err != nil {
		return res, err
	}
	seen, err := s.orderKeys(ctx)
	if err != nil {
		return res, err
	}
	line := 1
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		date, err := parseDate(h.get(rec, "date"))
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d date: %w", line, err))
			continue
		}
		cents, err := ParseCents(h.get(rec, "amount"))
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d amount: %w", line, err))
			continue
		}
		o := repository.Order{
			ID:          uuid.NewString(),
			Date:        date,
			Shift:       NormalizeOrderShift(h.get(rec, "shift")),
			OrderNo:     h.get(rec, "order_no", "order"),
			AmountCents: cents,
		}
		key := orderKey(o)
		if _, dup := seen[key]; dup {
			res.Skipped++
			continue
		}
		if err := s.Orders.Insert(ctx, o); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d insert: %w", line, err))
			continue
		}
		seen[key] = struct{}{}
		res.Imported++
	}
	return res, nil
}

// ImportExpenses reads expenses with a header row naming date, category,
// memo and amount.
func (s *IngestService) ImportExpenses(ctx context.Context, r io.Reader) (IngestResult, error) {
	res := IngestResult{}
	csvr := newReader(r)
	h, err := readHeader(csvr)
	if err != nil {
		return res, err
	}
	line := 1
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		date, err := parseDate(h.get(rec, "date"))
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d date: %w", line, err))
			continue
		}
		cents, err := ParseCents(h.get(rec, "amount"))
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d amount: %w", line, err))
			continue
		}
		cat := h.get(rec, "category")
		if s.Categorizer != nil {
			cat = s.Categorizer.Resolve(ctx, cat)
			_ = s.Categorizer.Ensure(ctx, cat)
		} else if cat == "" {
			cat = FallbackCategory
		}
		e := repository.Expense{
			ID:          uuid.NewString(),
			Date:        date,
			Category:    cat,
			Memo:        h.get(rec, "memo"),
			AmountCents: cents,
		}
		if err := s.Expenses.Insert(ctx, e); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d insert: %w", line, err))
			continue
		}
		res.Imported++
	}
	return res, nil
}

func orderKey(o repository.Order) string {
	return fmt.Sprintf("%s|%s|%s|%d", o.Date, o.Shift, strings.ToUpper(o.OrderNo), o.AmountCents)
}

func (s *IngestService) orderKeys(ctx context.Context) (map[string]struct{}, error) {
	orders, err := s.Orders.List(ctx, repository.Filter{})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	seen := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		seen[orderKey(o)] = struct{}{}
	}
	return seen, nil
}
