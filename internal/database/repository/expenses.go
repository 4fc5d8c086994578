package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ExpenseRepo handles expenses.
type ExpenseRepo struct {
	db *sql.DB
}

func NewExpenseRepo(db *sql.DB) *ExpenseRepo {
	return &ExpenseRepo{db: db}
}

const expenseColumns = `id, date, category, memo, amount, created_at, updated_at`

func (r *ExpenseRepo) Insert(ctx context.Context, e Expense) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO expenses(id, date, category, memo, amount)
	VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.Date, e.Category, e.Memo, e.AmountCents)
	return err
}

func (r *ExpenseRepo) Get(ctx context.Context, id string) (*Expense, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// List returns expenses newest date first, in insertion order within a day.
func (r *ExpenseRepo) List(ctx context.Context, f Filter) ([]Expense, error) {
	var where []string
	var args []interface{}
	if f.From != "" {
		where = append(where, "date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		where = append(where, "date <= ?")
		args = append(args, f.To)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(category LIKE ? OR memo LIKE ?)")
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	q := `SELECT ` + expenseColumns + ` FROM expenses`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += ` ORDER BY date DESC, rowid`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var expenseFields = map[string]string{
	"category": "category",
	"memo":     "memo",
	"amount":   "amount",
	"date":     "date",
}

// UpdateField sets one editable column. It reports false when no row has id.
func (r *ExpenseRepo) UpdateField(ctx context.Context, id, field string, value interface{}) (bool, error) {
	col, ok := expenseFields[field]
	if !ok {
		return false, fmt.Errorf("expense field %q is not editable", field)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE expenses SET `+col+` = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, value, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *ExpenseRepo) Delete(ctx context.Context, ids []string) (int64, error) {
	return deleteIDs(ctx, r.db, "expenses", ids)
}

// Sum totals expense amounts between from and to inclusive.
func (r *ExpenseRepo) Sum(ctx context.Context, from, to string) (int64, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE date >= ? AND date <= ?`, from, to).Scan(&cents)
	return cents, err
}

func scanExpense(row scanner) (Expense, error) {
	var e Expense
	err := row.Scan(&e.ID, &e.Date, &e.Category, &e.Memo, &e.AmountCents, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
