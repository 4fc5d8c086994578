package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/ledgerdesk/internal/api"
	"github.com/jask/ledgerdesk/internal/export"
	"github.com/jask/ledgerdesk/internal/ledger"
	"github.com/jask/ledgerdesk/internal/notify"
	"github.com/jask/ledgerdesk/internal/period"
	"github.com/jask/ledgerdesk/internal/prefs"
)

// Backend is the part of the ledger API the client uses. *api.Client
// implements it.
type Backend interface {
	Update(ctx context.Context, endpoint, id, field, value string) (string, error)
	Orders(ctx context.Context, q api.OrderQuery) ([]api.Order, error)
	CreateOrder(ctx context.Context, o api.Order) (api.Order, error)
	DeleteOrders(ctx context.Context, ids []string) (int, error)
	Expenses(ctx context.Context, q api.ExpenseQuery) ([]api.Expense, error)
	CreateExpense(ctx context.Context, e api.Expense) (api.Expense, error)
	DeleteExpenses(ctx context.Context, ids []string) (int, error)
	KPI(ctx context.Context, mode, date string) (api.KPI, error)
	Categories(ctx context.Context) ([]string, error)
	Export(ctx context.Context, kind, scope, base string) (*api.Download, error)
}

type view int

const (
	viewOrders view = iota
	viewExpenses
	viewKPI
	viewReports
	viewCount
)

var viewNames = [viewCount]string{"Orders", "Expenses", "KPI", "Reports"}

func orderColumns() []ledger.Column {
	return []ledger.Column{
		{Field: ledger.FieldDate, Title: "Date", Kind: ledger.KindDate, Width: 10, Editable: true, Sortable: true},
		{Field: ledger.FieldShift, Title: "Shift", Kind: ledger.KindChoice, Width: 8, Editable: true, Sortable: true, Choices: ledger.ShiftChoices},
		{Field: ledger.FieldOrderNo, Title: "Order No", Kind: ledger.KindText, Width: 12, Editable: true, Sortable: true},
		{Field: ledger.FieldAmount, Title: "Amount", Kind: ledger.KindNumber, Width: 12, Editable: true, Sortable: true},
	}
}

func expenseColumns() []ledger.Column {
	return []ledger.Column{
		{Field: ledger.FieldDate, Title: "Date", Kind: ledger.KindDate, Width: 10, Editable: true, Sortable: true},
		{Field: ledger.FieldCategory, Title: "Category", Kind: ledger.KindChoice, Width: 12, Editable: true, Sortable: true},
		{Field: ledger.FieldMemo, Title: "Memo", Kind: ledger.KindText, Width: 24, Editable: true},
		{Field: ledger.FieldAmount, Title: "Amount", Kind: ledger.KindNumber, Width: 12, Editable: true, Sortable: true},
	}
}

func orderRow(f ledger.Formatter, o api.Order) *ledger.Row {
	return ledger.NewRow(o.ID, map[string]string{
		ledger.FieldDate:    o.Date,
		ledger.FieldShift:   o.Shift,
		ledger.FieldOrderNo: o.OrderNo,
		ledger.FieldAmount:  f.Number(o.Amount.String()),
	})
}

func expenseRow(f ledger.Formatter, e api.Expense) *ledger.Row {
	return ledger.NewRow(e.ID, map[string]string{
		ledger.FieldDate:     e.Date,
		ledger.FieldCategory: e.Category,
		ledger.FieldMemo:     e.Memo,
		ledger.FieldAmount:   f.Number(e.Amount.String()),
	})
}

// periodFilter is the mode + base date pair behind the period forms.
type periodFilter struct {
	mode period.Mode
	base time.Time
}

func (p periodFilter) date() string  { return period.Format(p.base) }
func (p periodFilter) label() string { return string(p.mode) + "  " + period.Label(p.mode, p.base) }

// messages
type ordersMsg []api.Order

type expensesMsg []api.Expense

type kpiMsg struct {
	target view
	kpi    api.KPI
}

type categoriesMsg []string

type createdMsg struct {
	target view
	row    *ledger.Row
}

type deletedMsg struct {
	target view
	n      int
}

type exportedMsg struct {
	path  string
	bytes int64
}

type exportFailedMsg struct{ err error }

type notifyMsg notify.Message

type statusMsg string

type errMsg struct{ error }

func (a *App) loadOrders() tea.Cmd {
	q := api.OrderQuery{Search: a.orderSearch.Value()}
	return func() tea.Msg {
		list, err := a.backend.Orders(a.ctx, q)
		if err != nil {
			return errMsg{fmt.Errorf("load orders: %w", err)}
		}
		return ordersMsg(list)
	}
}

func (a *App) loadExpenses() tea.Cmd {
	q := api.ExpenseQuery{Mode: string(a.expFilter.mode), Date: a.expFilter.date(), Search: a.expenseSearch.Value()}
	return func() tea.Msg {
		list, err := a.backend.Expenses(a.ctx, q)
		if err != nil {
			return errMsg{fmt.Errorf("load expenses: %w", err)}
		}
		return expensesMsg(list)
	}
}

func (a *App) loadKPI(target view) tea.Cmd {
	f := a.kpiFilter
	if target == viewReports {
		f = a.repFilter
	}
	return func() tea.Msg {
		k, err := a.backend.KPI(a.ctx, string(f.mode), f.date())
		if err != nil {
			return errMsg{fmt.Errorf("load kpi: %w", err)}
		}
		return kpiMsg{target: target, kpi: k}
	}
}

func (a *App) loadCategories() tea.Cmd {
	return func() tea.Msg {
		names, err := a.backend.Categories(a.ctx)
		if err != nil {
			return errMsg{fmt.Errorf("load categories: %w", err)}
		}
		return categoriesMsg(names)
	}
}

func saveCategoriesCmd(names []string) tea.Cmd {
	return func() tea.Msg {
		if err := prefs.SaveCategories(names); err != nil {
			log.Printf("warn: cache categories: %v", err)
		}
		return nil
	}
}

// waitDirty blocks on the notifier and hands one message to Update.
func waitDirty(ch <-chan notify.Message) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		m, ok := <-ch
		if !ok {
			return nil
		}
		return notifyMsg(m)
	}
}

func amountValue(raw string) (json.Number, error) {
	d, ok := ledger.ParseAmount(raw)
	if !ok {
		return "", fmt.Errorf("amount %q is not a number", raw)
	}
	return json.Number(d.String()), nil
}

func (a *App) createOrderCmd(v map[string]string) tea.Cmd {
	return func() tea.Msg {
		amt, err := amountValue(v[ledger.FieldAmount])
		if err != nil {
			return errMsg{err}
		}
		o, err := a.backend.CreateOrder(a.ctx, api.Order{
			Date:    v[ledger.FieldDate],
			Shift:   v[ledger.FieldShift],
			OrderNo: v[ledger.FieldOrderNo],
			Amount:  amt,
		})
		if err != nil {
			return errMsg{fmt.Errorf("create order: %w", err)}
		}
		return createdMsg{target: viewOrders, row: orderRow(a.format, o)}
	}
}

func (a *App) createExpenseCmd(v map[string]string) tea.Cmd {
	return func() tea.Msg {
		amt, err := amountValue(v[ledger.FieldAmount])
		if err != nil {
			return errMsg{err}
		}
		e, err := a.backend.CreateExpense(a.ctx, api.Expense{
			Date:     v[ledger.FieldDate],
			Category: v[ledger.FieldCategory],
			Memo:     v[ledger.FieldMemo],
			Amount:   amt,
		})
		if err != nil {
			return errMsg{fmt.Errorf("create expense: %w", err)}
		}
		return createdMsg{target: viewExpenses, row: expenseRow(a.format, e)}
	}
}

func (a *App) deleteCmd(target view, ids []string) tea.Cmd {
	del := a.backend.DeleteOrders
	if target == viewExpenses {
		del = a.backend.DeleteExpenses
	}
	return func() tea.Msg {
		n, err := del(a.ctx, ids)
		if err != nil {
			return errMsg{fmt.Errorf("delete: %w", err)}
		}
		return deletedMsg{target: target, n: n}
	}
}

func (a *App) exportCmd(kind string) tea.Cmd {
	f := a.repFilter
	dir := a.exportDir
	return func() tea.Msg {
		d, err := a.backend.Export(a.ctx, kind, string(f.mode), f.date())
		if err != nil {
			return exportFailedMsg{err}
		}
		defer d.Body.Close()
		path := export.Target("", dir, d.Filename, export.Filename(kind, string(f.mode), f.date()))
		n, err := export.Save(path, d.Body)
		if err != nil {
			return exportFailedMsg{err}
		}
		return exportedMsg{path: path, bytes: n}
	}
}
