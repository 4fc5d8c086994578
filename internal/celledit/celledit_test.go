package celledit

import (
	"context"
	"errors"
	"testing"

	"github.com/jask/ledgerdesk/internal/ledger"
	"github.com/jask/ledgerdesk/internal/notify"
)

type fakeUpdater struct {
	value string
	err   error
	calls int
	last  [4]string
}

func (f *fakeUpdater) Update(_ context.Context, endpoint, id, field, value string) (string, error) {
	f.calls++
	f.last = [4]string{endpoint, id, field, value}
	return f.value, f.err
}

func amountRow() *ledger.Row {
	return ledger.NewRow("r1", map[string]string{ledger.FieldAmount: "1,200", ledger.FieldShift: "Morning"})
}

func amountSpec() Spec {
	return Spec{ID: "r1", Field: ledger.FieldAmount, Endpoint: "/orders/update-json", Kind: ledger.KindNumber}
}

func TestCommitSuccessShowsServerValue(t *testing.T) {
	hub := notify.NewHub()
	dirty, cancel := hub.Subscribe("kpi")
	defer cancel()
	ed := New(ledger.DefaultFormatter, hub.Topic("kpi"))
	row := amountRow()
	var saved string
	spec := amountSpec()
	spec.OnSaved = func(v string) { saved = v }

	s, err := ed.BeginEdit(row, spec)
	if err != nil {
		t.Fatal(err)
	}
	if s.Value() != "1200" || !s.Preselected() {
		t.Fatalf("editor opened with %q preselected=%v", s.Value(), s.Preselected())
	}
	s.Insert("1500")
	u := &fakeUpdater{value: "1500"}
	res, ok := s.CommitSync(context.Background(), u)
	if !ok || res != Applied {
		t.Fatalf("CommitSync = %v,%v", res, ok)
	}
	if got := row.Text(ledger.FieldAmount); got != "1,500" {
		t.Fatalf("cell = %q, want 1,500", got)
	}
	if saved != "1,500" {
		t.Fatalf("OnSaved got %q", saved)
	}
	if u.last != [4]string{"/orders/update-json", "r1", ledger.FieldAmount, "1500"} {
		t.Fatalf("request = %v", u.last)
	}
	select {
	case m := <-dirty:
		if m.Type != notify.TypeDirty {
			t.Fatalf("message = %v", m)
		}
	default:
		t.Fatal("no dirty notification")
	}
}

func TestCommitUsesServerValueNotTyped(t *testing.T) {
	ed := New(ledger.DefaultFormatter, nil)
	row := ledger.NewRow("r1", map[string]string{ledger.FieldShift: "Morning"})
	s, _ := ed.BeginEdit(row, Spec{ID: "r1", Field: ledger.FieldShift, Kind: ledger.KindText})
	s.Insert("  eve ")
	res, _ := s.CommitSync(context.Background(), &fakeUpdater{value: "Evening"})
	if res != Applied || row.Text(ledger.FieldShift) != "Evening" {
		t.Fatalf("result %v cell %q", res, row.Text(ledger.FieldShift))
	}
}

func TestCommitTrimsValue(t *testing.T) {
	ed := New(ledger.DefaultFormatter, nil)
	s, _ := ed.BeginEdit(amountRow(), amountSpec())
	s.Insert("  42 ")
	u := &fakeUpdater{value: "42"}
	s.CommitSync(context.Background(), u)
	if u.last[3] != "42" {
		t.Fatalf("sent %q", u.last[3])
	}
}

func TestFailureRestoresPriorText(t *testing.T) {
	for _, err := range []error{errors.New("network down"), errors.New("rejected"), errors.New("bad json")} {
		ed := New(ledger.DefaultFormatter, nil)
		row := amountRow()
		s, _ := ed.BeginEdit(row, amountSpec())
		s.Insert("999")
		res, _ := s.CommitSync(context.Background(), &fakeUpdater{err: err})
		if res != Restored {
			t.Fatalf("result = %v", res)
		}
		if got := row.Text(ledger.FieldAmount); got != "1,200" {
			t.Fatalf("cell = %q, want pre-edit text", got)
		}
	}
}

func TestCancelRestoresWithoutNetwork(t *testing.T) {
	ed := New(ledger.DefaultFormatter, nil)
	row := amountRow()
	s, _ := ed.BeginEdit(row, amountSpec())
	s.Insert("7")
	if !s.Cancel() {
		t.Fatal("cancel refused")
	}
	if row.Text(ledger.FieldAmount) != "1,200" {
		t.Fatalf("cell = %q", row.Text(ledger.FieldAmount))
	}
	if _, ok := s.Commit(); ok {
		t.Fatal("commit after cancel must be ignored")
	}
	if ed.Active() != nil {
		t.Fatal("editor still active")
	}
}

func TestSingleCommitPerSession(t *testing.T) {
	ed := New(ledger.DefaultFormatter, nil)
	s, _ := ed.BeginEdit(amountRow(), amountSpec())
	p, ok := s.Commit()
	if !ok || p == nil {
		t.Fatal("first commit refused")
	}
	if _, ok := s.Commit(); ok {
		t.Fatal("second commit (blur after enter) must be ignored")
	}
	if s.Cancel() {
		t.Fatal("cancel after commit must be ignored")
	}
	u := &fakeUpdater{value: "1"}
	ed.Settle(p.Send(context.Background(), u))
	if _, ok := s.CommitSync(context.Background(), u); ok {
		t.Fatal("commit after settle must be ignored")
	}
	if u.calls != 1 {
		t.Fatalf("updater called %d times", u.calls)
	}
}

func TestOneCellInEditMode(t *testing.T) {
	ed := New(ledger.DefaultFormatter, nil)
	row := amountRow()
	s, _ := ed.BeginEdit(row, amountSpec())
	again, err := ed.BeginEdit(row, amountSpec())
	if err != nil || again != s {
		t.Fatalf("same cell: %v %v", again, err)
	}
	if _, err := ed.BeginEdit(row, Spec{ID: "r1", Field: ledger.FieldShift}); !errors.Is(err, ErrEditing) {
		t.Fatalf("other cell err = %v", err)
	}
	if !ed.Editing("r1", ledger.FieldAmount) {
		t.Fatal("Editing should report the active cell")
	}
	s.Commit()
	if _, err := ed.BeginEdit(row, Spec{ID: "r1", Field: ledger.FieldShift}); err != nil {
		t.Fatalf("in-flight session must not block other cells: %v", err)
	}
}

func TestStaleResponseIgnored(t *testing.T) {
	ed := New(ledger.DefaultFormatter, nil)
	row := amountRow()

	first, _ := ed.BeginEdit(row, amountSpec())
	first.Insert("10")
	p1, _ := first.Commit()

	second, _ := ed.BeginEdit(row, amountSpec())
	second.Insert("20")
	p2, _ := second.Commit()

	out2 := p2.Send(context.Background(), &fakeUpdater{value: "20"})
	out1 := p1.Send(context.Background(), &fakeUpdater{value: "10"})

	if res := ed.Settle(out2); res != Applied {
		t.Fatalf("newer result = %v", res)
	}
	if res := ed.Settle(out1); res != Stale {
		t.Fatalf("older result = %v", res)
	}
	if row.Text(ledger.FieldAmount) != "20" {
		t.Fatalf("cell = %q", row.Text(ledger.FieldAmount))
	}
}

func TestCancelledNewerEditKeepsOlderSave(t *testing.T) {
	ed := New(ledger.DefaultFormatter, nil)
	row := amountRow()

	first, _ := ed.BeginEdit(row, amountSpec())
	first.Insert("10")
	p1, _ := first.Commit()

	second, _ := ed.BeginEdit(row, amountSpec())
	second.Insert("20")
	if !second.Cancel() {
		t.Fatal("cancel refused")
	}

	if res := ed.Settle(p1.Send(context.Background(), &fakeUpdater{value: "10"})); res != Applied {
		t.Fatalf("older result = %v", res)
	}
	if got := row.Text(ledger.FieldAmount); got != "10" {
		t.Fatalf("cell = %q, want server value 10", got)
	}
}

func TestSaveConfirmedDuringNewerEdit(t *testing.T) {
	ed := New(ledger.DefaultFormatter, nil)
	row := amountRow()

	first, _ := ed.BeginEdit(row, amountSpec())
	first.Insert("1500")
	p1, _ := first.Commit()

	second, _ := ed.BeginEdit(row, amountSpec())
	second.Insert("20")

	if res := ed.Settle(p1.Send(context.Background(), &fakeUpdater{value: "1500"})); res != Applied {
		t.Fatalf("older result = %v", res)
	}
	second.Cancel()
	if got := row.Text(ledger.FieldAmount); got != "1,500" {
		t.Fatalf("cell after cancel = %q, want 1,500", got)
	}
}

func TestChoiceEditor(t *testing.T) {
	ed := New(ledger.DefaultFormatter, nil)
	row := ledger.NewRow("e1", map[string]string{ledger.FieldCategory: "Rent"})
	cats := []string{"Ingredients", "Rent", "Payroll"}
	s, _ := ed.BeginEdit(row, Spec{ID: "e1", Field: ledger.FieldCategory, Kind: ledger.KindChoice, Choices: cats})
	if s.Choice() != 1 {
		t.Fatalf("current value should be pre-selected, got %d", s.Choice())
	}
	s.Move(1)
	if s.Value() != "Payroll" {
		t.Fatalf("after move = %q", s.Value())
	}
	s.Move(1)
	if s.Value() != "Ingredients" {
		t.Fatalf("move should wrap, got %q", s.Value())
	}
	s.Insert("pay")
	if s.Value() != "Payroll" {
		t.Fatalf("typed resolve = %q", s.Value())
	}
	u := &fakeUpdater{value: "Payroll"}
	s.CommitSync(context.Background(), u)
	if u.last[3] != "Payroll" || row.Text(ledger.FieldCategory) != "Payroll" {
		t.Fatalf("sent %q, cell %q", u.last[3], row.Text(ledger.FieldCategory))
	}
}

func TestChoiceEditorUnknownCurrent(t *testing.T) {
	ed := New(ledger.DefaultFormatter, nil)
	row := ledger.NewRow("e1", map[string]string{ledger.FieldCategory: "Legacy"})
	s, _ := ed.BeginEdit(row, Spec{ID: "e1", Field: ledger.FieldCategory, Kind: ledger.KindChoice, Choices: []string{"A", "B"}})
	if s.Choice() != 0 {
		t.Fatalf("choice = %d", s.Choice())
	}
}

func TestPreselectedTextReplacedByTyping(t *testing.T) {
	ed := New(ledger.DefaultFormatter, nil)
	row := ledger.NewRow("r1", map[string]string{ledger.FieldMemo: "old"})
	s, _ := ed.BeginEdit(row, Spec{ID: "r1", Field: ledger.FieldMemo})
	s.Insert("n")
	s.Insert("ew")
	if s.Value() != "new" {
		t.Fatalf("value = %q", s.Value())
	}
	s.Backspace()
	if s.Value() != "ne" {
		t.Fatalf("value = %q", s.Value())
	}
	if row.Text(ledger.FieldMemo) != "old" {
		t.Fatal("typing must not change display text before save")
	}
}
