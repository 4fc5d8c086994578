package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/ledgerdesk/internal/celledit"
	"github.com/jask/ledgerdesk/internal/ledger"
	"github.com/jask/ledgerdesk/internal/rangeselect"
)

// Screen geometry of a grid line: a cursor marker, the data columns separated
// by one space, then the selection cell " [x] ".
const (
	markerWidth = 2
	colGap      = 1
	selectWidth = 5
)

type zone int

const (
	zoneNone zone = iota
	zoneHeader
	zoneCell
	zoneSelect
)

// hit is what lies under a screen coordinate.
type hit struct {
	zone     zone
	row      int
	col      int
	onToggle bool
}

var noHit = hit{zone: zoneNone, row: -1, col: -1}

// savedMsg carries the backend's answer to a committed cell edit.
type savedMsg struct {
	table   string
	id      string
	field   string
	outcome celledit.Outcome
}

// grid is one table on screen together with its cell editor and range
// selector.
type grid struct {
	ctx      context.Context
	updater  celledit.Updater
	endpoint string

	table    *ledger.Table
	editor   *celledit.Editor
	selector *rangeselect.Selector
	// choices overrides a column's static choice list, e.g. categories
	// fetched from the backend.
	choices map[string][]string

	top    int
	height int
	offset int
	cursor int
	col    int

	saving   map[string]int
	pressRow int
}

func newGrid(ctx context.Context, u celledit.Updater, endpoint string, t *ledger.Table, ed *celledit.Editor) *grid {
	return &grid{
		ctx:      ctx,
		updater:  u,
		endpoint: endpoint,
		table:    t,
		editor:   ed,
		selector: rangeselect.New(t),
		choices:  map[string][]string{},
		saving:   map[string]int{},
		pressRow: -1,
	}
}

func (g *grid) colX(i int) int {
	x := markerWidth
	for j := 0; j < i && j < len(g.table.Columns); j++ {
		x += g.table.Columns[j].Width + colGap
	}
	return x
}

func (g *grid) selectX() int { return g.colX(len(g.table.Columns)) }

func (g *grid) width() int { return g.selectX() + selectWidth }

func (g *grid) visibleRows() int {
	n := g.table.Len() - g.offset
	if g.height > 0 && n > g.height {
		n = g.height
	}
	if n < 0 {
		return 0
	}
	return n
}

func (g *grid) hitTest(x, y int) hit {
	if x < 0 || x >= g.width() {
		return noHit
	}
	col, inSelect, onToggle := -1, false, false
	if sx := g.selectX(); x >= sx {
		inSelect = true
		off := x - sx
		onToggle = off >= 1 && off <= 3
	} else {
		for i, c := range g.table.Columns {
			if cx := g.colX(i); x >= cx && x < cx+c.Width {
				col = i
				break
			}
		}
	}
	switch {
	case y == g.top:
		if col < 0 {
			return noHit
		}
		return hit{zone: zoneHeader, row: -1, col: col}
	case y > g.top && y <= g.top+g.visibleRows():
		row := g.offset + y - g.top - 1
		if inSelect {
			return hit{zone: zoneSelect, row: row, col: -1, onToggle: onToggle}
		}
		if col >= 0 {
			return hit{zone: zoneCell, row: row, col: col}
		}
		// gaps and the marker still belong to the row
		return hit{zone: zoneCell, row: row, col: -1}
	}
	return noHit
}

func buttonOf(b tea.MouseButton) rangeselect.Button {
	switch b {
	case tea.MouseButtonLeft:
		return rangeselect.ButtonPrimary
	case tea.MouseButtonMiddle:
		return rangeselect.ButtonMiddle
	}
	return rangeselect.ButtonSecondary
}

// mouse routes one mouse event. The returned command, if any, sends a
// committed edit.
func (g *grid) mouse(m tea.MouseMsg) (tea.Cmd, error) {
	switch m.Action {
	case tea.MouseActionPress:
		switch m.Button {
		case tea.MouseButtonWheelUp:
			g.scroll(-3)
			return nil, nil
		case tea.MouseButtonWheelDown:
			g.scroll(3)
			return nil, nil
		}
		return g.press(m)
	case tea.MouseActionMotion:
		g.motion(m)
	case tea.MouseActionRelease:
		g.release(m)
	}
	return nil, nil
}

func (g *grid) press(m tea.MouseMsg) (tea.Cmd, error) {
	h := g.hitTest(m.X, m.Y)
	var cmd tea.Cmd
	if s := g.editor.Active(); s != nil {
		if h.zone == zoneCell && h.col >= 0 && g.cellIs(s, h.row, h.col) {
			s.Deselect()
			return nil, nil
		}
		cmd = g.commit()
	}
	switch h.zone {
	case zoneHeader:
		if c := g.table.Columns[h.col]; c.Sortable && m.Button == tea.MouseButtonLeft {
			g.sort(c.Field)
		}
	case zoneCell:
		g.cursor = h.row
		if h.col >= 0 {
			g.col = h.col
			if m.Button == tea.MouseButtonLeft {
				return cmd, g.beginEdit()
			}
		}
	case zoneSelect:
		g.cursor = h.row
		btn := buttonOf(m.Button)
		if m.Shift && h.onToggle && btn == rangeselect.ButtonPrimary {
			g.toggle(h.row)
			g.selector.Click(h.row, true)
			return cmd, nil
		}
		if g.selector.PointerDown(rangeselect.Press{Row: h.row, Button: btn, OnToggle: h.onToggle}) == rangeselect.Deferred {
			g.toggle(h.row)
			g.selector.ToggleApplied(h.row)
			g.pressRow = h.row
		}
	}
	return cmd, nil
}

func (g *grid) motion(m tea.MouseMsg) {
	if !g.selector.Dragging() {
		return
	}
	h := g.hitTest(m.X, m.Y)
	switch h.zone {
	case zoneCell, zoneSelect:
		g.selector.PointerEnter(h.row)
	case zoneHeader:
	default:
		g.pressRow = -1
		g.selector.Release(rangeselect.ReasonPointerLeave)
	}
}

func (g *grid) release(m tea.MouseMsg) {
	h := g.hitTest(m.X, m.Y)
	if g.pressRow >= 0 && h.zone == zoneSelect && h.onToggle && h.row == g.pressRow {
		g.selector.Click(h.row, false)
	} else {
		g.selector.Release(rangeselect.ReasonPointerUp)
	}
	g.pressRow = -1
}

// blur ends any drag and commits an open editor, as losing focus does.
func (g *grid) blur() tea.Cmd {
	g.pressRow = -1
	g.selector.Release(rangeselect.ReasonFocusLost)
	return g.commit()
}

// toggle flips one row the way a checkbox does on its own.
func (g *grid) toggle(row int) {
	g.table.SetSelected(row, !g.table.Selected(row))
}

func (g *grid) cellIs(s *celledit.Session, row, col int) bool {
	r := g.table.Row(row)
	return r != nil && col >= 0 && col < len(g.table.Columns) &&
		s.ID() == r.ID && s.Field() == g.table.Columns[col].Field
}

// key handles a key press while this grid is focused. handled is false for
// keys the grid leaves to the app.
func (g *grid) key(m tea.KeyMsg) (cmd tea.Cmd, handled bool, err error) {
	if s := g.editor.Active(); s != nil {
		return g.editKey(s, m)
	}
	switch m.String() {
	case "up", "k":
		g.moveCursor(-1)
	case "down", "j":
		g.moveCursor(1)
	case "left", "h":
		if g.col > 0 {
			g.col--
		}
	case "right", "l":
		if g.col < len(g.table.Columns)-1 {
			g.col++
		}
	case "pgup":
		g.moveCursor(-g.pageSize())
	case "pgdown":
		g.moveCursor(g.pageSize())
	case "enter":
		return nil, true, g.beginEdit()
	case " ":
		if g.table.Row(g.cursor) != nil {
			g.toggle(g.cursor)
			g.selector.Click(g.cursor, false)
		}
	case "X":
		if g.table.Row(g.cursor) != nil {
			g.toggle(g.cursor)
			g.selector.Click(g.cursor, true)
		}
	case "s":
		if g.col >= 0 && g.col < len(g.table.Columns) && g.table.Columns[g.col].Sortable {
			g.sort(g.table.Columns[g.col].Field)
		}
	default:
		return nil, false, nil
	}
	return nil, true, nil
}

func (g *grid) editKey(s *celledit.Session, m tea.KeyMsg) (tea.Cmd, bool, error) {
	switch m.Type {
	case tea.KeyCtrlC:
		return nil, false, nil
	case tea.KeyEnter, tea.KeyTab:
		return g.commit(), true, nil
	case tea.KeyEsc:
		s.Cancel()
	case tea.KeyBackspace, tea.KeyCtrlH:
		s.Backspace()
	case tea.KeyUp:
		s.Move(-1)
	case tea.KeyDown:
		s.Move(1)
	case tea.KeyLeft, tea.KeyRight, tea.KeyEnd, tea.KeyHome:
		s.Deselect()
	case tea.KeySpace:
		s.Insert(" ")
	case tea.KeyRunes:
		s.Insert(string(m.Runes))
	}
	return nil, true, nil
}

func (g *grid) beginEdit() error {
	r := g.table.Row(g.cursor)
	if r == nil || g.col < 0 || g.col >= len(g.table.Columns) {
		return nil
	}
	c := g.table.Columns[g.col]
	if !c.Editable {
		return nil
	}
	choices := c.Choices
	if ch, ok := g.choices[c.Field]; ok && len(ch) > 0 {
		choices = ch
	}
	spec := celledit.Spec{
		ID:       r.ID,
		Field:    c.Field,
		Endpoint: g.endpoint,
		Kind:     c.Kind,
		Choices:  choices,
	}
	if g.table.GroupBy != "" && c.Field == g.table.GroupBy {
		id := r.ID
		spec.OnSaved = func(string) { g.relocate(id) }
	}
	_, err := g.editor.BeginEdit(r, spec)
	return err
}

// commit ends the open edit, if any, and returns the command that sends it.
func (g *grid) commit() tea.Cmd {
	s := g.editor.Active()
	if s == nil {
		return nil
	}
	p, ok := s.Commit()
	if !ok {
		return nil
	}
	g.saving[p.ID+"/"+p.Field]++
	ctx, u, name := g.ctx, g.updater, g.table.Name
	return func() tea.Msg {
		return savedMsg{table: name, id: p.ID, field: p.Field, outcome: p.Send(ctx, u)}
	}
}

func (g *grid) settle(m savedMsg) celledit.Result {
	key := m.id + "/" + m.field
	if g.saving[key]--; g.saving[key] <= 0 {
		delete(g.saving, key)
	}
	return g.editor.Settle(m.outcome)
}

func (g *grid) relocate(id string) {
	onRow := false
	if r := g.table.Row(g.cursor); r != nil && r.ID == id {
		onRow = true
	}
	at := g.table.Relocate(id)
	if onRow && at >= 0 {
		g.cursor = at
		g.ensureVisible()
	}
}

func (g *grid) sort(field string) {
	var id string
	if r := g.table.Row(g.cursor); r != nil {
		id = r.ID
	}
	g.table.ToggleSort(field)
	if i := g.table.Index(id); i >= 0 {
		g.cursor = i
	}
	g.ensureVisible()
}

// reset replaces the rows after a full reload. Any open edit is dropped.
func (g *grid) reset(rows []*ledger.Row) {
	if s := g.editor.Active(); s != nil {
		s.Cancel()
	}
	g.table.Reset(rows)
	g.selector.SetRows(g.table)
	g.pressRow = -1
	g.moveCursor(0)
}

// add places a newly created row and moves the cursor onto it.
func (g *grid) add(r *ledger.Row) {
	g.cursor = g.table.Append(r)
	g.ensureVisible()
}

func (g *grid) pageSize() int {
	if g.height > 1 {
		return g.height - 1
	}
	return 10
}

func (g *grid) moveCursor(delta int) {
	g.cursor += delta
	if g.cursor >= g.table.Len() {
		g.cursor = g.table.Len() - 1
	}
	if g.cursor < 0 {
		g.cursor = 0
	}
	g.ensureVisible()
}

func (g *grid) scroll(delta int) {
	g.offset += delta
	maxOff := g.table.Len() - g.height
	if g.height <= 0 || maxOff < 0 {
		maxOff = 0
	}
	if g.offset > maxOff {
		g.offset = maxOff
	}
	if g.offset < 0 {
		g.offset = 0
	}
}

func (g *grid) ensureVisible() {
	if g.cursor < g.offset {
		g.offset = g.cursor
	}
	if g.height > 0 && g.cursor >= g.offset+g.height {
		g.offset = g.cursor - g.height + 1
	}
	if g.offset < 0 {
		g.offset = 0
	}
}

func (g *grid) setHeight(h int) {
	g.height = h
	g.ensureVisible()
}

// view renders the header and the visible rows.
func (g *grid) view() string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", markerWidth))
	for _, c := range g.table.Columns {
		title := c.Title
		if g.table.SortKey() == c.Field {
			title += " ▲"
		}
		b.WriteString(headerStyle.Render(fit(title, c.Width, c.Kind == ledger.KindNumber)))
		b.WriteString(strings.Repeat(" ", colGap))
	}
	b.WriteString(headerStyle.Render(fit(" sel", selectWidth, false)))

	if g.table.Len() == 0 {
		b.WriteString("\n" + mutedStyle.Render("  no rows"))
		return b.String()
	}
	end := g.offset + g.visibleRows()
	for i := g.offset; i < end; i++ {
		b.WriteString("\n")
		b.WriteString(g.renderRow(i))
	}
	return b.String()
}

func (g *grid) renderRow(i int) string {
	r := g.table.Row(i)
	var b strings.Builder
	if i == g.cursor {
		b.WriteString(cursorStyle.Render("▶ "))
	} else {
		b.WriteString("  ")
	}
	active := g.editor.Active()
	for ci, c := range g.table.Columns {
		switch {
		case active != nil && active.Row() == r && active.Field() == c.Field:
			b.WriteString(renderEditor(active, c.Width))
		default:
			text := r.Text(c.Field)
			style := toneStyle(ledger.ToneOf(c.Field, text))
			if g.saving[r.ID+"/"+c.Field] > 0 {
				style = savingStyle
			}
			if i == g.cursor && ci == g.col {
				style = style.Underline(true)
			}
			b.WriteString(style.Render(fit(text, c.Width, c.Kind == ledger.KindNumber)))
		}
		b.WriteString(strings.Repeat(" ", colGap))
	}
	if r.Selected {
		b.WriteString(" " + selectedStyle.Render("[x]") + " ")
	} else {
		b.WriteString(" [ ] ")
	}
	return b.String()
}

func renderEditor(s *celledit.Session, width int) string {
	if s.Choice() >= 0 {
		return editCellStyle.Render(fit("‹"+s.Value()+"›", width, false))
	}
	v := []rune(s.Value())
	if len(v) > width-1 && width > 1 {
		v = v[len(v)-(width-1):]
	}
	text := string(v)
	if s.Preselected() && text != "" {
		return preselStyle.Render(text) + editCellStyle.Render(fit("", width-ansi.StringWidth(text), false))
	}
	return editCellStyle.Render(fit(text+"▏", width, false))
}

// fit truncates or pads s to exactly w cells.
func fit(s string, w int, right bool) string {
	if w <= 0 {
		return ""
	}
	s = ansi.Truncate(s, w, "…")
	pad := w - ansi.StringWidth(s)
	if pad <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", pad) + s
	}
	return s + strings.Repeat(" ", pad)
}
