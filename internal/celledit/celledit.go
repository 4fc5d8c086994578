// Package celledit implements inline cell editing with optimistic-on-success
// saves. The displayed text of a cell only changes once the backend confirms
// the new value; any failure restores the text the cell had before the edit.
package celledit

import (
	"context"
	"errors"
	"strings"

	"github.com/jask/ledgerdesk/internal/ledger"
	"github.com/jask/ledgerdesk/internal/notify"
)

// ErrEditing is returned when another cell of the table is already being edited.
var ErrEditing = errors.New("another cell is being edited")

// Updater persists one field of one record and returns the value the backend
// stored, which may differ from what was sent.
type Updater interface {
	Update(ctx context.Context, endpoint, id, field, value string) (string, error)
}

// UpdaterFunc adapts a function to Updater.
type UpdaterFunc func(ctx context.Context, endpoint, id, field, value string) (string, error)

func (f UpdaterFunc) Update(ctx context.Context, endpoint, id, field, value string) (string, error) {
	return f(ctx, endpoint, id, field, value)
}

// Spec describes the cell being edited.
type Spec struct {
	ID       string
	Field    string
	Endpoint string
	Kind     ledger.Kind
	// Current is the display text when the edit starts. Empty means the
	// row's text for Field.
	Current string
	Choices []string
	// OnSaved runs after a confirmed save with the new display text.
	OnSaved func(display string)
}

// Result is what Settle did with an outcome.
type Result int

const (
	// Stale means a newer edit of the same cell started after this request
	// was sent; the outcome was ignored.
	Stale Result = iota
	Applied
	Restored
)

func (r Result) String() string {
	switch r {
	case Applied:
		return "applied"
	case Restored:
		return "restored"
	}
	return "stale"
}

type cellKey struct{ id, field string }

// Editor owns the edit sessions of one table.
type Editor struct {
	format   ledger.Formatter
	notifier notify.Notifier

	active *Session
	tokens map[cellKey]uint64
	seq    uint64
}

// New returns an Editor. A nil notifier disables the dirty broadcast.
func New(format ledger.Formatter, n notify.Notifier) *Editor {
	if n == nil {
		n = notify.Noop{}
	}
	return &Editor{format: format, notifier: n, tokens: map[cellKey]uint64{}}
}

// Active returns the session in edit mode, or nil.
func (e *Editor) Active() *Session { return e.active }

// Editing reports whether the given cell is in edit mode.
func (e *Editor) Editing(id, field string) bool {
	return e.active != nil && e.active.key == cellKey{id, field}
}

// BeginEdit puts a cell into edit mode. Beginning an edit on the cell that is
// already being edited returns its session unchanged.
func (e *Editor) BeginEdit(row *ledger.Row, spec Spec) (*Session, error) {
	key := cellKey{spec.ID, spec.Field}
	if e.active != nil {
		if e.active.key == key {
			return e.active, nil
		}
		return nil, ErrEditing
	}
	prior := row.Text(spec.Field)
	current := spec.Current
	if current == "" {
		current = prior
	}
	s := &Session{
		ed:    e,
		row:   row,
		spec:  spec,
		key:   key,
		prior: prior,
		state: stateEditing,
	}
	if spec.Kind == ledger.KindChoice && len(spec.Choices) > 0 {
		s.choice = indexOf(spec.Choices, strings.TrimSpace(current))
		if s.choice < 0 {
			s.choice = 0
		}
	} else {
		s.buf = []rune(ledger.EditValue(spec.Kind, current))
		s.preselected = len(s.buf) > 0
	}
	e.active = s
	return s, nil
}

// Settle applies the outcome of a sent commit. It must run on the same
// goroutine that owns the table.
func (e *Editor) Settle(o Outcome) Result {
	p := o.pending
	if p == nil {
		return Stale
	}
	s := p.session
	s.state = stateDone
	if e.tokens[s.key] != s.token {
		return Stale
	}
	delete(e.tokens, s.key)
	if o.Err != nil {
		s.row.SetText(s.spec.Field, s.prior)
		return Restored
	}
	display := e.format.Display(s.spec.Kind, o.Value)
	s.row.SetText(s.spec.Field, display)
	// An open edit of the same cell cancels back to the confirmed value.
	if a := e.active; a != nil && a.key == s.key {
		a.prior = display
	}
	if s.spec.OnSaved != nil {
		s.spec.OnSaved(display)
	}
	_ = e.notifier.Publish(notify.Dirty)
	return Applied
}

// claim makes s the latest commit for its cell. Older commits still in
// flight settle as Stale.
func (e *Editor) claim(s *Session) {
	e.seq++
	e.tokens[s.key] = e.seq
	s.token = e.seq
}

func (e *Editor) release(s *Session) {
	if e.active == s {
		e.active = nil
	}
}

func indexOf(choices []string, v string) int {
	for i, c := range choices {
		if strings.EqualFold(c, v) {
			return i
		}
	}
	return -1
}
