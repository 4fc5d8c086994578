package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/ledgerdesk/internal/ledger"
)

type formField struct {
	key     string
	label   string
	value   string
	choices []string
}

// form is a small creation dialog: one text input per field, tab to move,
// enter to submit.
type form struct {
	title  string
	target view
	fields []formField
	inputs []textinput.Model
	focus  int
}

func newForm(title string, target view, fields []formField) *form {
	inputs := make([]textinput.Model, 0, len(fields))
	for i, f := range fields {
		inp := textinput.New()
		inp.Prompt = f.label + ": "
		inp.SetValue(f.value)
		if len(f.choices) > 0 {
			inp.Placeholder = strings.Join(f.choices, " / ")
		}
		if i == 0 {
			inp.Focus()
		}
		inputs = append(inputs, inp)
	}
	return &form{title: title, target: target, fields: fields, inputs: inputs}
}

type formResult int

const (
	formOpen formResult = iota
	formSubmit
	formCancel
)

func (f *form) update(msg tea.KeyMsg) (formResult, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return formCancel, nil
	case "enter":
		return formSubmit, nil
	case "tab", "shift+tab", "down", "up":
		dir := 1
		if msg.String() == "shift+tab" || msg.String() == "up" {
			dir = -1
		}
		f.inputs[f.focus].Blur()
		f.focus = (f.focus + dir + len(f.inputs)) % len(f.inputs)
		f.inputs[f.focus].Focus()
		return formOpen, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return formOpen, cmd
}

// values returns the trimmed input per field key. Choice fields resolve to
// the closest choice when one is close enough.
func (f *form) values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for i, fd := range f.fields {
		v := strings.TrimSpace(f.inputs[i].Value())
		if len(fd.choices) > 0 {
			if c, ok := ledger.ResolveChoice(v, fd.choices); ok {
				v = c
			}
		}
		out[fd.key] = v
	}
	return out
}

func (f *form) view() string {
	lines := []string{titleStyle.Render(f.title), ""}
	for _, in := range f.inputs {
		lines = append(lines, in.View())
	}
	lines = append(lines, "", mutedStyle.Render("enter: save  esc: cancel  tab: next field"))
	return modalStyle.Render(strings.Join(lines, "\n"))
}
