package celledit

import (
	"context"
	"strings"

	"github.com/jask/ledgerdesk/internal/ledger"
)

type state int

const (
	stateEditing state = iota
	stateInFlight
	stateDone
)

// Session is one edit of one cell, from BeginEdit until its single commit
// or cancel settles.
type Session struct {
	ed    *Editor
	row   *ledger.Row
	spec  Spec
	key   cellKey
	token uint64
	prior string
	state state

	buf         []rune
	preselected bool
	typed       []rune
	choice      int
}

func (s *Session) ID() string        { return s.spec.ID }
func (s *Session) Field() string     { return s.spec.Field }
func (s *Session) Kind() ledger.Kind { return s.spec.Kind }
func (s *Session) Row() *ledger.Row  { return s.row }

// Prior is the display text the cell had when the edit began.
func (s *Session) Prior() string { return s.prior }

// Editing reports whether the session still accepts input.
func (s *Session) Editing() bool { return s.state == stateEditing }

// Choices returns the choice list for choice editors.
func (s *Session) Choices() []string { return s.spec.Choices }

// Choice returns the highlighted choice index, or -1 for text editors.
func (s *Session) Choice() int {
	if !s.isChoice() {
		return -1
	}
	return s.choice
}

// Preselected reports whether the whole text is selected, so the next
// keystroke replaces it.
func (s *Session) Preselected() bool { return s.preselected }

// Value is the current editor value before trimming.
func (s *Session) Value() string {
	if s.isChoice() {
		return s.spec.Choices[s.choice]
	}
	return string(s.buf)
}

// Typed is the filter text typed into a choice editor.
func (s *Session) Typed() string { return string(s.typed) }

func (s *Session) isChoice() bool {
	return s.spec.Kind == ledger.KindChoice && len(s.spec.Choices) > 0
}

// Insert types text at the end of the editor. A choice editor resolves the
// typed text against its choices instead.
func (s *Session) Insert(text string) {
	if !s.Editing() || text == "" {
		return
	}
	if s.isChoice() {
		s.typed = append(s.typed, []rune(text)...)
		s.resolveTyped()
		return
	}
	if s.preselected {
		s.buf = s.buf[:0]
		s.preselected = false
	}
	s.buf = append(s.buf, []rune(text)...)
}

// Backspace deletes the last rune, or the whole preselected text.
func (s *Session) Backspace() {
	if !s.Editing() {
		return
	}
	if s.isChoice() {
		if len(s.typed) > 0 {
			s.typed = s.typed[:len(s.typed)-1]
			s.resolveTyped()
		}
		return
	}
	if s.preselected {
		s.buf = s.buf[:0]
		s.preselected = false
		return
	}
	if len(s.buf) > 0 {
		s.buf = s.buf[:len(s.buf)-1]
	}
}

// Deselect drops the preselection, keeping the text for appending.
func (s *Session) Deselect() { s.preselected = false }

// Move shifts the highlighted choice by delta, wrapping around.
func (s *Session) Move(delta int) {
	if !s.Editing() || !s.isChoice() {
		return
	}
	n := len(s.spec.Choices)
	s.choice = ((s.choice+delta)%n + n) % n
	s.typed = s.typed[:0]
}

func (s *Session) resolveTyped() {
	if len(s.typed) == 0 {
		return
	}
	if c, ok := ledger.ResolveChoice(string(s.typed), s.spec.Choices); ok {
		s.choice = indexOf(s.spec.Choices, c)
	}
}

// Cancel restores the pre-edit text without contacting the backend. It
// reports false when the session already committed or cancelled.
func (s *Session) Cancel() bool {
	if !s.Editing() {
		return false
	}
	s.state = stateDone
	s.row.SetText(s.spec.Field, s.prior)
	s.ed.release(s)
	return true
}

// Commit ends editing and returns the request to send. Every trigger after
// the first (Enter, blur, a choice pick) gets false.
func (s *Session) Commit() (*Pending, bool) {
	if !s.Editing() {
		return nil, false
	}
	s.state = stateInFlight
	s.ed.claim(s)
	s.ed.release(s)
	return &Pending{
		Endpoint: s.spec.Endpoint,
		ID:       s.spec.ID,
		Field:    s.spec.Field,
		Value:    strings.TrimSpace(s.Value()),
		session:  s,
	}, true
}

// CommitSync commits, sends and settles in one call. It reports false when
// the session had already committed.
func (s *Session) CommitSync(ctx context.Context, u Updater) (Result, bool) {
	p, ok := s.Commit()
	if !ok {
		return Stale, false
	}
	return s.ed.Settle(p.Send(ctx, u)), true
}

// Pending is a committed edit waiting to be sent. Send may run on any
// goroutine; it does not touch the table.
type Pending struct {
	Endpoint string
	ID       string
	Field    string
	Value    string

	session *Session
}

// Send performs the update call.
func (p *Pending) Send(ctx context.Context, u Updater) Outcome {
	v, err := u.Update(ctx, p.Endpoint, p.ID, p.Field, p.Value)
	return Outcome{Value: v, Err: err, pending: p}
}

// Outcome is the backend's answer to a Pending, to be passed to Settle.
type Outcome struct {
	Value string
	Err   error

	pending *Pending
}
