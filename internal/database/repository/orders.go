package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// OrderRepo handles orders.
type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

const orderColumns = `id, date, shift, order_no, amount, created_at, updated_at`

func (r *OrderRepo) Insert(ctx context.Context, o Order) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO orders(id, date, shift, order_no, amount)
	VALUES (?, ?, ?, ?, ?)
	`, o.ID, o.Date, o.Shift, o.OrderNo, o.AmountCents)
	return err
}

func (r *OrderRepo) Get(ctx context.Context, id string) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// List returns orders newest date first, morning before evening, and in
// insertion order within a shift.
func (r *OrderRepo) List(ctx context.Context, f Filter) ([]Order, error) {
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
		where = append(where, "(order_no LIKE ? OR shift LIKE ?)")
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	q := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += ` ORDER BY date DESC, CASE WHEN shift = 'Morning' THEN 0 WHEN shift = 'Evening' THEN 1 ELSE 2 END, rowid`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

var orderFields = map[string]string{
	"shift":    "shift",
	"order_no": "order_no",
	"amount":   "amount",
	"date":     "date",
}

// UpdateField sets one editable column. It reports false when no row has id.
func (r *OrderRepo) UpdateField(ctx context.Context, id, field string, value interface{}) (bool, error) {
	col, ok := orderFields[field]
	if !ok {
		return false, fmt.Errorf("order field %q is not editable", field)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET `+col+` = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, value, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes the given ids and returns how many rows went away.
func (r *OrderRepo) Delete(ctx context.Context, ids []string) (int64, error) {
	return deleteIDs(ctx, r.db, "orders", ids)
}

// Totals sums order amounts per shift between from and to inclusive.
func (r *OrderRepo) Totals(ctx context.Context, from, to string) (ShiftTotals, error) {
	var t ShiftTotals
	row := r.db.QueryRowContext(ctx, `
	SELECT
	 COALESCE(SUM(CASE WHEN shift = 'Morning' THEN amount END), 0),
	 COALESCE(SUM(CASE WHEN shift = 'Evening' THEN amount END), 0),
	 COALESCE(SUM(CASE WHEN shift NOT IN ('Morning', 'Evening') THEN amount END), 0),
	 COUNT(*)
	FROM orders WHERE date >= ? AND date <= ?`, from, to)
	err := row.Scan(&t.MorningCents, &t.EveningCents, &t.OtherCents, &t.Count)
	return t, err
}

// DailyTotals sums order amounts per date and shift, oldest first.
func (r *OrderRepo) DailyTotals(ctx context.Context, from, to string) ([]DailyTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT date,
	 COALESCE(SUM(CASE WHEN shift = 'Morning' THEN amount END), 0),
	 COALESCE(SUM(CASE WHEN shift = 'Evening' THEN amount END), 0),
	 COALESCE(SUM(amount), 0)
	FROM orders WHERE date >= ? AND date <= ?
	GROUP BY date ORDER BY date`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DailyTotal
	for rows.Next() {
		var d DailyTotal
		if err := rows.Scan(&d.Date, &d.MorningCents, &d.EveningCents, &d.TotalCents); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DailyTotal is one day of sales.
type DailyTotal struct {
	Date         string
	MorningCents int64
	EveningCents int64
	TotalCents   int64
}

func scanOrder(row scanner) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Date, &o.Shift, &o.OrderNo, &o.AmountCents, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func deleteIDs(ctx context.Context, db *sql.DB, table string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id IN (`+marks+`)`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
