package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit      key.Binding
	NextView  key.Binding
	Views     key.Binding
	Move      key.Binding
	Edit      key.Binding
	Toggle    key.Binding
	Extend    key.Binding
	Sort      key.Binding
	New       key.Binding
	Delete    key.Binding
	Search    key.Binding
	Mode      key.Binding
	Prev      key.Binding
	Next      key.Binding
	Today     key.Binding
	Reload    key.Binding
	ExportOrd key.Binding
	ExportExp key.Binding
	ExportSal key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		NextView:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		Views:     key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "view")),
		Move:      key.NewBinding(key.WithKeys("up", "down", "left", "right", "k", "j", "h", "l"), key.WithHelp("arrows", "move")),
		Edit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		Extend:    key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "extend")),
		Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Delete:    key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete selected")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Mode:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "period")),
		Prev:      key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev")),
		Next:      key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next")),
		Today:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		ExportOrd: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "export orders")),
		ExportExp: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export expenses")),
		ExportSal: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "export sales")),
	}
}

// bindings lists the footer shortcuts for a view.
func (k keyMap) bindings(v view) []key.Binding {
	switch v {
	case viewOrders:
		return []key.Binding{k.Views, k.Move, k.Edit, k.Toggle, k.Extend, k.Sort, k.New, k.Delete, k.Search, k.Quit}
	case viewExpenses:
		return []key.Binding{k.Views, k.Move, k.Edit, k.Toggle, k.Extend, k.Sort, k.New, k.Delete, k.Mode, k.Prev, k.Next, k.Today, k.Search, k.Quit}
	case viewKPI:
		return []key.Binding{k.Views, k.Mode, k.Prev, k.Next, k.Today, k.Reload, k.Quit}
	}
	return []key.Binding{k.Views, k.Mode, k.Prev, k.Next, k.Today, k.ExportOrd, k.ExportExp, k.ExportSal, k.Quit}
}
