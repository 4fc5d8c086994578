package repository

import "time"

// Order represents an order row. Date is YYYY-MM-DD.
type Order struct {
	ID          string
	Date        string
	Shift       string
	OrderNo     string
	AmountCents int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expense represents an expense row.
type Expense struct {
	ID          string
	Date        string
	Category    string
	Memo        string
	AmountCents int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category represents an expense category.
type Category struct {
	ID        string
	Name      string
	SortOrder int
}

// Filter narrows a listing. Empty bounds are open.
type Filter struct {
	From   string
	To     string
	Search string
}

// ShiftTotals sums order amounts per shift over a period.
type ShiftTotals struct {
	MorningCents int64
	EveningCents int64
	OtherCents   int64
	Count        int
}

// Total is the sum over all shifts.
func (t ShiftTotals) Total() int64 { return t.MorningCents + t.EveningCents + t.OtherCents }

// scanner handles both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}
