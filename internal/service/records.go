package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jask/ledgerdesk/internal/database/repository"
	"github.com/jask/ledgerdesk/internal/ledger"
	"github.com/jask/ledgerdesk/internal/period"
)

var (
	// ErrUnknownField is returned for fields that cannot be edited.
	ErrUnknownField = errors.New("field is not editable")
	// ErrNotFound is returned when the record id does not exist.
	ErrNotFound = errors.New("record not found")
)

// RecordService applies the ledger's normalization rules to writes.
type RecordService struct {
	Orders      *repository.OrderRepo
	Expenses    *repository.ExpenseRepo
	Categorizer *CategorizerService
	TZ          *time.Location
}

func (s *RecordService) today() time.Time {
	tz := s.TZ
	if tz == nil {
		tz = time.Local
	}
	return time.Now().In(tz)
}

// NormalizeDate returns YYYY-MM-DD, substituting today for invalid input.
func (s *RecordService) NormalizeDate(raw string) string {
	return period.Format(period.ParseDate(raw, s.today()))
}

// NormalizeOrderShift stores Morning for anything that reads as morning and
// Evening otherwise.
func NormalizeOrderShift(raw string) string {
	if ledger.ShiftOf(raw) == ledger.ShiftMorning {
		return ledger.MorningLabel
	}
	return ledger.EveningLabel
}

// Stored is the normalized value written by an update. Amounts carry cents
// so the caller can echo them as a number.
type Stored struct {
	Text     string
	Cents    int64
	IsAmount bool
}

// UpdateOrder normalizes and stores one order field.
func (s *RecordService) UpdateOrder(ctx context.Context, id, field, raw string) (Stored, error) {
	raw = strings.TrimSpace(raw)
	var st Stored
	var value interface{}
	switch field {
	case ledger.FieldShift:
		st.Text = NormalizeOrderShift(raw)
		value = st.Text
	case ledger.FieldOrderNo:
		st.Text = raw
		value = st.Text
	case ledger.FieldAmount:
		st = Stored{Cents: CentsOrZero(raw), IsAmount: true}
		st.Text = FormatCents(st.Cents)
		value = st.Cents
	case ledger.FieldDate:
		st.Text = s.NormalizeDate(raw)
		value = st.Text
	default:
		return Stored{}, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	ok, err := s.Orders.UpdateField(ctx, id, field, value)
	if err != nil {
		return Stored{}, err
	}
	if !ok {
		return Stored{}, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	return st, nil
}

// UpdateExpense normalizes and stores one expense field.
func (s *RecordService) UpdateExpense(ctx context.Context, id, field, raw string) (Stored, error) {
	raw = strings.TrimSpace(raw)
	var st Stored
	var value interface{}
	switch field {
	case ledger.FieldCategory:
		st.Text = s.resolveCategory(ctx, raw)
		value = st.Text
	case ledger.FieldMemo:
		st.Text = raw
		value = st.Text
	case ledger.FieldAmount:
		st = Stored{Cents: CentsOrZero(raw), IsAmount: true}
		st.Text = FormatCents(st.Cents)
		value = st.Cents
	case ledger.FieldDate:
		st.Text = s.NormalizeDate(raw)
		value = st.Text
	default:
		return Stored{}, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	ok, err := s.Expenses.UpdateField(ctx, id, field, value)
	if err != nil {
		return Stored{}, err
	}
	if !ok {
		return Stored{}, fmt.Errorf("%w: expense %s", ErrNotFound, id)
	}
	return st, nil
}

func (s *RecordService) resolveCategory(ctx context.Context, raw string) string {
	if s.Categorizer == nil {
		if raw == "" {
			return FallbackCategory
		}
		return raw
	}
	c := s.Categorizer.Resolve(ctx, raw)
	_ = s.Categorizer.Ensure(ctx, c)
	return c
}

// OrderInput is a new order as typed by a user.
type OrderInput struct {
	Date    string
	Shift   string
	OrderNo string
	Amount  string
}

// CreateOrder stores a new order with a fresh id.
func (s *RecordService) CreateOrder(ctx context.Context, in OrderInput) (repository.Order, error) {
	cents, err := ParseCents(in.Amount)
	if err != nil {
		return repository.Order{}, err
	}
	o := repository.Order{
		ID:          uuid.NewString(),
		Date:        s.NormalizeDate(in.Date),
		Shift:       NormalizeOrderShift(in.Shift),
		OrderNo:     strings.TrimSpace(in.OrderNo),
		AmountCents: cents,
	}
	if err := s.Orders.Insert(ctx, o); err != nil {
		return repository.Order{}, fmt.Errorf("insert order: %w", err)
	}
	stored, err := s.Orders.Get(ctx, o.ID)
	if err != nil || stored == nil {
		return o, err
	}
	return *stored, nil
}

// ExpenseInput is a new expense as typed by a user.
type ExpenseInput struct {
	Date     string
	Category string
	Memo     string
	Amount   string
}

// CreateExpense stores a new expense with a fresh id.
func (s *RecordService) CreateExpense(ctx context.Context, in ExpenseInput) (repository.Expense, error) {
	cents, err := ParseCents(in.Amount)
	if err != nil {
		return repository.Expense{}, err
	}
	e := repository.Expense{
		ID:          uuid.NewString(),
		Date:        s.NormalizeDate(in.Date),
		Category:    s.resolveCategory(ctx, strings.TrimSpace(in.Category)),
		Memo:        strings.TrimSpace(in.Memo),
		AmountCents: cents,
	}
	if err := s.Expenses.Insert(ctx, e); err != nil {
		return repository.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	stored, err := s.Expenses.Get(ctx, e.ID)
	if err != nil || stored == nil {
		return e, err
	}
	return *stored, nil
}

// KPI summarises a period.
type KPI struct {
	Mode         period.Mode
	From, To     time.Time
	MorningCents int64
	EveningCents int64
	TotalCents   int64
	ExpenseCents int64
	NetCents     int64
	Orders       int
}

// KPI computes morning/evening/total sales, expenses and net for the period
// of mode around base.
func (s *RecordService) KPI(ctx context.Context, mode period.Mode, base time.Time) (KPI, error) {
	from, to := period.Range(mode, base)
	f, t := period.Format(from), period.Format(to)
	tot, err := s.Orders.Totals(ctx, f, t)
	if err != nil {
		return KPI{}, fmt.Errorf("order totals: %w", err)
	}
	exp, err := s.Expenses.Sum(ctx, f, t)
	if err != nil {
		return KPI{}, fmt.Errorf("expense sum: %w", err)
	}
	k := KPI{
		Mode:         mode,
		From:         from,
		To:           to,
		MorningCents: tot.MorningCents,
		EveningCents: tot.EveningCents,
		TotalCents:   tot.MorningCents + tot.EveningCents,
		ExpenseCents: exp,
		Orders:       tot.Count,
	}
	k.NetCents = k.TotalCents - k.ExpenseCents
	return k, nil
}
