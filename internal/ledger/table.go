package ledger

import (
	"sort"
	"strings"
)

// Field names shared by the client tables and the update endpoints.
const (
	FieldShift    = "shift"
	FieldOrderNo  = "order_no"
	FieldAmount   = "amount"
	FieldDate     = "date"
	FieldCategory = "category"
	FieldMemo     = "memo"
)

// Kind selects the editor used for a column.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDate
	KindChoice
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindChoice:
		return "choice"
	}
	return "text"
}

// Column describes one data column. The selection column is implicit and
// always rendered last.
type Column struct {
	Field    string
	Title    string
	Kind     Kind
	Width    int
	Editable bool
	Sortable bool
	Choices  []string
}

// Row is one record rendered in a table.
type Row struct {
	ID       string
	Seq      int
	Selected bool
	fields   map[string]string
}

// NewRow builds a row from display texts keyed by field name.
func NewRow(id string, fields map[string]string) *Row {
	r := &Row{ID: id, fields: make(map[string]string, len(fields))}
	for k, v := range fields {
		r.fields[k] = v
	}
	return r
}

// Text returns the display text of a field.
func (r *Row) Text(field string) string { return r.fields[field] }

// SetText replaces the display text of a field.
func (r *Row) SetText(field, text string) {
	if r.fields == nil {
		r.fields = map[string]string{}
	}
	r.fields[field] = text
}

// Table is the live, ordered set of rows a view renders. It groups rows into
// shift buckets when GroupBy is set and supports a two-state header sort.
type Table struct {
	Name    string
	Columns []Column
	GroupBy string

	rows     []*Row
	unsorted []*Row
	sortKey  string
	nextSeq  int
}

// NewTable returns an empty table.
func NewTable(name, groupBy string, cols []Column) *Table {
	return &Table{Name: name, GroupBy: groupBy, Columns: cols}
}

// Reset replaces all rows, as a full reload does. Rows keep the given order
// as their insertion order.
func (t *Table) Reset(rows []*Row) {
	t.nextSeq = 0
	t.sortKey = ""
	t.unsorted = nil
	t.rows = make([]*Row, 0, len(rows))
	for _, r := range rows {
		r.Seq = t.nextSeq
		t.nextSeq++
		t.rows = append(t.rows, r)
	}
	t.rows = t.group(t.rows)
}

// Rows returns the rows in display order. The slice must not be modified.
func (t *Table) Rows() []*Row { return t.rows }

// Row returns the row at display index i, or nil.
func (t *Table) Row(i int) *Row {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	return t.rows[i]
}

// Index returns the display index of the row with id, or -1.
func (t *Table) Index(id string) int {
	for i, r := range t.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Column looks up a column by field name.
func (t *Table) Column(field string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Field == field {
			return c, true
		}
	}
	return Column{}, false
}

// Len, Selected and SetSelected expose the selection column to the range
// selector.
func (t *Table) Len() int { return len(t.rows) }

func (t *Table) Selected(i int) bool {
	if r := t.Row(i); r != nil {
		return r.Selected
	}
	return false
}

func (t *Table) SetSelected(i int, v bool) {
	if r := t.Row(i); r != nil {
		r.Selected = v
	}
}

// SelectedIDs lists selected row ids in display order.
func (t *Table) SelectedIDs() []string {
	var ids []string
	for _, r := range t.rows {
		if r.Selected {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// SortKey is the active sort column, or "" for insertion order.
func (t *Table) SortKey() string { return t.sortKey }

// Append inserts a newly created row at the tail of its bucket and returns
// its display index.
func (t *Table) Append(r *Row) int {
	r.Seq = t.nextSeq
	t.nextSeq++
	if t.sortKey != "" {
		t.unsorted = append(t.unsorted, r)
	}
	at := t.tailOf(t.bucket(r))
	t.rows = insertAt(t.rows, at, r)
	return at
}

// Relocate moves a row to the tail of its current bucket, e.g. after its
// shift was edited, and returns the new index.
func (t *Table) Relocate(id string) int {
	i := t.Index(id)
	if i < 0 || t.GroupBy == "" {
		return i
	}
	r := t.rows[i]
	t.rows = append(t.rows[:i:i], t.rows[i+1:]...)
	at := t.tailOf(t.bucket(r))
	t.rows = insertAt(t.rows, at, r)
	return at
}

// ToggleSort applies an ascending sort on key, or restores insertion order
// when key is already the active sort. Rows are regrouped either way.
func (t *Table) ToggleSort(key string) {
	base := t.rows
	if t.sortKey != "" {
		base = t.unsorted
	}
	if t.sortKey == key {
		t.sortKey = ""
		t.unsorted = nil
		t.rows = t.group(append([]*Row(nil), base...))
		return
	}
	if t.sortKey == "" {
		t.unsorted = append([]*Row(nil), base...)
	}
	sorted := append([]*Row(nil), t.unsorted...)
	numeric := false
	if c, ok := t.Column(key); ok && c.Kind == KindNumber {
		numeric = true
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Text(key), sorted[j].Text(key)
		if numeric {
			da, _ := ParseAmount(a)
			db, _ := ParseAmount(b)
			return da.LessThan(db)
		}
		return strings.TrimSpace(a) < strings.TrimSpace(b)
	})
	t.sortKey = key
	t.rows = t.group(sorted)
}

func (t *Table) group(rows []*Row) []*Row {
	if t.GroupBy == "" {
		return rows
	}
	return GroupStable(rows, t.GroupBy)
}

func (t *Table) bucket(r *Row) int {
	if t.GroupBy == "" {
		return bucketOther
	}
	return bucketOf(r.Text(t.GroupBy))
}

// tailOf is the insertion index just past the last row whose bucket is at or
// before b. Uncategorised rows always go to the very end.
func (t *Table) tailOf(b int) int {
	if b == bucketOther {
		return len(t.rows)
	}
	at := 0
	for i, r := range t.rows {
		if t.bucket(r) <= b {
			at = i + 1
		}
	}
	return at
}

const (
	bucketMorning = iota
	bucketEvening
	bucketOther
)

func bucketOf(text string) int {
	switch ShiftOf(text) {
	case ShiftMorning:
		return bucketMorning
	case ShiftEvening:
		return bucketEvening
	}
	return bucketOther
}

// GroupStable partitions rows into morning, evening and uncategorised
// buckets by the given field, keeping the relative order inside each bucket.
func GroupStable(rows []*Row, field string) []*Row {
	var buckets [3][]*Row
	for _, r := range rows {
		b := bucketOf(r.Text(field))
		buckets[b] = append(buckets[b], r)
	}
	out := make([]*Row, 0, len(rows))
	for _, b := range buckets {
		out = append(out, b...)
	}
	return out
}

func insertAt(rows []*Row, at int, r *Row) []*Row {
	rows = append(rows, nil)
	copy(rows[at+1:], rows[at:])
	rows[at] = r
	return rows
}
