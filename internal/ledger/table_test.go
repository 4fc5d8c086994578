package ledger

import (
	"strings"
	"testing"
)

func orderRow(id, shift, amount string) *Row {
	return NewRow(id, map[string]string{FieldShift: shift, FieldAmount: amount})
}

func ids(rows []*Row) string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return strings.Join(out, ",")
}

func orderColumns() []Column {
	return []Column{
		{Field: FieldShift, Title: "Shift", Kind: KindChoice, Editable: true, Sortable: true, Choices: ShiftChoices},
		{Field: FieldAmount, Title: "Amount", Kind: KindNumber, Editable: true, Sortable: true},
	}
}

func TestGroupStableKeepsBucketOrder(t *testing.T) {
	rows := []*Row{
		orderRow("u1", "", "1"),
		orderRow("e1", "Evening", "2"),
		orderRow("m1", "Morning", "3"),
		orderRow("u2", "lunch", "4"),
		orderRow("m2", "早班", "5"),
		orderRow("e2", "晚班", "6"),
	}
	got := ids(GroupStable(rows, FieldShift))
	if got != "m1,m2,e1,e2,u1,u2" {
		t.Fatalf("GroupStable = %s", got)
	}
}

func TestToggleSortTwiceRestoresOrder(t *testing.T) {
	tbl := NewTable("orders", FieldShift, orderColumns())
	tbl.Reset([]*Row{
		orderRow("a", "Morning", "300"),
		orderRow("b", "Morning", "1,500"),
		orderRow("c", "Evening", "20"),
		orderRow("d", "Morning", "100"),
		orderRow("e", "", "5"),
	})
	before := ids(tbl.Rows())

	tbl.ToggleSort(FieldAmount)
	if tbl.SortKey() != FieldAmount {
		t.Fatalf("sort key = %q", tbl.SortKey())
	}
	if got := ids(tbl.Rows()); got != "d,a,b,c,e" {
		t.Fatalf("sorted = %s", got)
	}

	tbl.ToggleSort(FieldAmount)
	if tbl.SortKey() != "" {
		t.Fatalf("sort key after second click = %q", tbl.SortKey())
	}
	if got := ids(tbl.Rows()); got != before {
		t.Fatalf("restored = %s, want %s", got, before)
	}
}

func TestToggleSortSwitchingColumnsThenRestore(t *testing.T) {
	tbl := NewTable("orders", FieldShift, orderColumns())
	tbl.Reset([]*Row{
		orderRow("a", "Morning", "3"),
		orderRow("b", "Morning", "1"),
		orderRow("c", "Morning", "2"),
	})
	tbl.ToggleSort(FieldAmount)
	tbl.ToggleSort(FieldShift)
	tbl.ToggleSort(FieldShift)
	if got := ids(tbl.Rows()); got != "a,b,c" {
		t.Fatalf("restored = %s", got)
	}
}

func TestSortDoesNotTouchSelection(t *testing.T) {
	tbl := NewTable("orders", FieldShift, orderColumns())
	tbl.Reset([]*Row{orderRow("a", "Morning", "3"), orderRow("b", "Morning", "1")})
	tbl.SetSelected(0, true)
	tbl.ToggleSort(FieldAmount)
	if got := strings.Join(tbl.SelectedIDs(), ","); got != "a" {
		t.Fatalf("selected = %s", got)
	}
}

func TestAppendLandsAtBucketTail(t *testing.T) {
	tbl := NewTable("orders", FieldShift, orderColumns())
	tbl.Reset([]*Row{
		orderRow("m1", "Morning", "1"),
		orderRow("e1", "Evening", "1"),
		orderRow("u1", "", "1"),
	})
	if at := tbl.Append(orderRow("m2", "Morning", "1")); at != 1 {
		t.Fatalf("morning append index = %d", at)
	}
	if at := tbl.Append(orderRow("e2", "Evening", "1")); at != 3 {
		t.Fatalf("evening append index = %d", at)
	}
	if at := tbl.Append(orderRow("u2", "", "1")); at != 5 {
		t.Fatalf("uncategorized append index = %d", at)
	}
	if got := ids(tbl.Rows()); got != "m1,m2,e1,e2,u1,u2" {
		t.Fatalf("rows = %s", got)
	}
}

func TestAppendIntoEmptyBuckets(t *testing.T) {
	tbl := NewTable("orders", FieldShift, orderColumns())
	tbl.Reset([]*Row{orderRow("u1", "", "1")})
	tbl.Append(orderRow("e1", "Evening", "1"))
	tbl.Append(orderRow("m1", "Morning", "1"))
	if got := ids(tbl.Rows()); got != "m1,e1,u1" {
		t.Fatalf("rows = %s", got)
	}
}

func TestAppendWhileSortedSurvivesRestore(t *testing.T) {
	tbl := NewTable("orders", FieldShift, orderColumns())
	tbl.Reset([]*Row{orderRow("a", "Morning", "2"), orderRow("b", "Morning", "1")})
	tbl.ToggleSort(FieldAmount)
	tbl.Append(orderRow("c", "Morning", "0"))
	tbl.ToggleSort(FieldAmount)
	if got := ids(tbl.Rows()); got != "a,b,c" {
		t.Fatalf("rows = %s", got)
	}
}

func TestRelocateAfterShiftEdit(t *testing.T) {
	tbl := NewTable("orders", FieldShift, orderColumns())
	tbl.Reset([]*Row{
		orderRow("m1", "Morning", "1"),
		orderRow("m2", "Morning", "1"),
		orderRow("e1", "Evening", "1"),
	})
	tbl.Row(0).SetText(FieldShift, "Evening")
	if at := tbl.Relocate("m1"); at != 2 {
		t.Fatalf("relocated index = %d", at)
	}
	if got := ids(tbl.Rows()); got != "m2,e1,m1" {
		t.Fatalf("rows = %s", got)
	}
}

func TestUngroupedTableAppendsAtEnd(t *testing.T) {
	tbl := NewTable("expenses", "", []Column{{Field: FieldCategory}})
	tbl.Reset([]*Row{NewRow("x", nil), NewRow("y", nil)})
	if at := tbl.Append(NewRow("z", nil)); at != 2 {
		t.Fatalf("append index = %d", at)
	}
}

func TestNumberGrouping(t *testing.T) {
	cases := map[string]string{
		"1500":      "1,500",
		"1,500":     "1,500",
		"0":         "0",
		"-1234567":  "-1,234,567",
		"12.5":      "12.5",
		"1000.1256": "1,000.126",
		"abc":       "0",
		"":          "0",
	}
	for in, want := range cases {
		if got := DefaultFormatter.Number(in); got != want {
			t.Errorf("Number(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEditValueStripsSeparatorsForNumbers(t *testing.T) {
	if got := EditValue(KindNumber, "1,500"); got != "1500" {
		t.Fatalf("EditValue number = %q", got)
	}
	if got := EditValue(KindText, "a,b"); got != "a,b" {
		t.Fatalf("EditValue text = %q", got)
	}
}
