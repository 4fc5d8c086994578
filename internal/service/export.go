package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jask/ledgerdesk/internal/database/repository"
	"github.com/jask/ledgerdesk/internal/export"
	"github.com/jask/ledgerdesk/internal/period"
)

// Export kinds.
const (
	KindOrders   = "orders"
	KindExpenses = "expenses"
	KindSales    = "sales"
)

// ExportKinds lists what ExportService can write.
var ExportKinds = []string{KindOrders, KindExpenses, KindSales}

// ExportService writes CSV reports: a BOM, a header row, CRLF line ends.
type ExportService struct {
	Orders   *repository.OrderRepo
	Expenses *repository.ExpenseRepo
}

// Filename is the suggested download name.
func (s *ExportService) Filename(kind string, mode period.Mode, base time.Time) string {
	return export.Filename(kind, mode.String(), period.Format(base))
}

// Write renders kind for the period of mode around base.
func (s *ExportService) Write(ctx context.Context, w io.Writer, kind string, mode period.Mode, base time.Time) error {
	from, to := period.Range(mode, base)
	f, t := period.Format(from), period.Format(to)
	if _, err := w.Write(export.BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	var err error
	switch kind {
	case KindOrders:
		err = s.writeOrders(ctx, cw, f, t)
	case KindExpenses:
		err = s.writeExpenses(ctx, cw, f, t)
	case KindSales:
		err = s.writeSales(ctx, cw, f, t)
	default:
		return fmt.Errorf("unknown export kind %q", kind)
	}
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func (s *ExportService) writeOrders(ctx context.Context, cw *csv.Writer, from, to string) error {
	orders, err := s.Orders.List(ctx, repository.Filter{From: from, To: to})
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}
	if err := cw.Write([]string{"id", "shift", "order_no", "amount", "date", "created_at"}); err != nil {
		return err
	}
	// oldest first, the way the ledger book reads
	for i := len(orders) - 1; i >= 0; i-- {
		o := orders[i]
		if err := cw.Write([]string{o.ID, o.Shift, o.OrderNo, FormatCents(o.AmountCents), o.Date, stamp(o.CreatedAt)}); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExportService) writeExpenses(ctx context.Context, cw *csv.Writer, from, to string) error {
	exps, err := s.Expenses.List(ctx, repository.Filter{From: from, To: to})
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}
	if err := cw.Write([]string{"id", "category", "amount", "date", "memo", "created_at"}); err != nil {
		return err
	}
	for i := len(exps) - 1; i >= 0; i-- {
		e := exps[i]
		if err := cw.Write([]string{e.ID, e.Category, FormatCents(e.AmountCents), e.Date, e.Memo, stamp(e.CreatedAt)}); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExportService) writeSales(ctx context.Context, cw *csv.Writer, from, to string) error {
	tot, err := s.Orders.Totals(ctx, from, to)
	if err != nil {
		return fmt.Errorf("order totals: %w", err)
	}
	exp, err := s.Expenses.Sum(ctx, from, to)
	if err != nil {
		return fmt.Errorf("expense sum: %w", err)
	}
	sales := tot.Total()
	if err := cw.Write([]string{"period", "sales", "expenses", "net", "orders"}); err != nil {
		return err
	}
	return cw.Write([]string{
		from + "~" + to,
		FormatCents(sales),
		FormatCents(exp),
		FormatCents(sales - exp),
		strconv.Itoa(tot.Count),
	})
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
