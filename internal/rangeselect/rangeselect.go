// Package rangeselect turns pointer gestures over a table's selection column
// into batch toggles: press and drag paints a value across rows, shift-click
// extends from the last clicked row.
package rangeselect

// Rows is the selection column of a table.
type Rows interface {
	Len() int
	Selected(i int) bool
	SetSelected(i int, v bool)
}

// Button identifies the pointer button of a press.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

// Press is a pointer-down inside the selection column.
type Press struct {
	Row    int
	Button Button
	// OnToggle is set when the press landed on the toggle glyph itself
	// rather than the cell padding.
	OnToggle bool
}

// Action tells the caller how to treat a press.
type Action int

const (
	// Ignored: not a gesture the selector handles.
	Ignored Action = iota
	// Deferred: let the native toggle apply, then call ToggleApplied.
	Deferred
	// Handled: the selector already applied the value; suppress the default.
	Handled
)

// Reason names what ended a drag.
type Reason int

const (
	ReasonPointerUp Reason = iota
	ReasonPointerLeave
	ReasonFocusLost
	ReasonClick
)

func (r Reason) String() string {
	switch r {
	case ReasonPointerLeave:
		return "pointer-leave"
	case ReasonFocusLost:
		return "focus-lost"
	case ReasonClick:
		return "click"
	}
	return "pointer-up"
}

// Selector is the gesture state for one table. The zero value is not ready;
// use New.
type Selector struct {
	rows Rows

	active  bool
	target  bool
	pending int
	anchor  int
}

func New(rows Rows) *Selector {
	return &Selector{rows: rows, pending: -1, anchor: -1}
}

// Dragging reports whether a drag session is active.
func (s *Selector) Dragging() bool { return s.active }

// Target is the value being painted while dragging.
func (s *Selector) Target() bool { return s.target }

// Anchor is the last clicked row, or -1.
func (s *Selector) Anchor() int { return s.anchor }

// SetRows swaps the table, e.g. after a full reload. Any drag is dropped
// and the anchor cleared.
func (s *Selector) SetRows(rows Rows) {
	s.rows = rows
	s.active, s.target = false, false
	s.pending, s.anchor = -1, -1
}

func (s *Selector) valid(i int) bool { return i >= 0 && i < s.rows.Len() }

// PointerDown starts a gesture. Each press resets the session.
func (s *Selector) PointerDown(p Press) Action {
	if p.Button != ButtonPrimary || !s.valid(p.Row) {
		return Ignored
	}
	s.active, s.target, s.pending = false, false, -1
	if p.OnToggle {
		s.pending = p.Row
		return Deferred
	}
	s.target = !s.rows.Selected(p.Row)
	s.rows.SetSelected(p.Row, s.target)
	s.active = true
	return Handled
}

// ToggleApplied samples the post-toggle value of a deferred press and
// enters the drag with it.
func (s *Selector) ToggleApplied(row int) {
	if s.pending != row || !s.valid(row) {
		return
	}
	s.pending = -1
	s.target = s.rows.Selected(row)
	s.active = true
}

// PointerEnter paints the target value onto row while dragging.
func (s *Selector) PointerEnter(row int) {
	if !s.active || !s.valid(row) {
		return
	}
	if s.rows.Selected(row) != s.target {
		s.rows.SetSelected(row, s.target)
	}
}

// Release ends any drag. Every release signal funnels here so a missed
// pointer-up cannot leave the session stuck.
func (s *Selector) Release(Reason) {
	s.active = false
	s.target = false
	s.pending = -1
}

// Click handles a completed click on a toggle whose new state has already
// applied. With shift held and an anchor set, every row from the anchor to
// row takes the clicked row's state. The clicked row becomes the anchor.
func (s *Selector) Click(row int, shift bool) {
	s.Release(ReasonClick)
	if !s.valid(row) {
		return
	}
	if shift && s.valid(s.anchor) {
		v := s.rows.Selected(row)
		lo, hi := s.anchor, row
		if lo > hi {
			lo, hi = hi, lo
		}
		for i := lo; i <= hi; i++ {
			s.rows.SetSelected(i, v)
		}
	}
	s.anchor = row
}
