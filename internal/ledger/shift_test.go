package ledger

import "testing"

func TestShiftOf(t *testing.T) {
	cases := map[string]Shift{
		"Morning":   ShiftMorning,
		" morning ": ShiftMorning,
		"早班":        ShiftMorning,
		"AM":        ShiftMorning,
		"Evening":   ShiftEvening,
		"night":     ShiftEvening,
		"晚班":        ShiftEvening,
		"pm":        ShiftEvening,
		"":          ShiftNone,
		"lunch":     ShiftNone,
	}
	for in, want := range cases {
		if got := ShiftOf(in); got != want {
			t.Errorf("ShiftOf(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestToneFollowsText(t *testing.T) {
	if ToneOf(FieldShift, "Morning") != ToneMorning {
		t.Fatal("morning tone")
	}
	if ToneOf(FieldShift, "Evening") != ToneEvening {
		t.Fatal("evening tone")
	}
	a, b := ToneOf(FieldCategory, "Rent"), ToneOf(FieldCategory, "Rent")
	if a != b || a.CategoryIndex() < 0 || a.CategoryIndex() >= CategoryTones {
		t.Fatalf("category tone = %v", a)
	}
	if ToneOf(FieldCategory, "  ") != ToneNone {
		t.Fatal("blank category should have no tone")
	}
	if ToneOf(FieldMemo, "Morning") != ToneNone {
		t.Fatal("memo has no tone")
	}
}

func TestResolveChoice(t *testing.T) {
	cats := []string{"Ingredients", "Rent", "Payroll", "Utilities", "Other"}
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"rent", "Rent", true},
		{"pay", "Payroll", true},
		{"Utilites", "Utilities", true},
		{"zzzzzz", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ResolveChoice(tc.in, cats)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ResolveChoice(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
