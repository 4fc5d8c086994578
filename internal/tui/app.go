package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/ledgerdesk/internal/api"
	"github.com/jask/ledgerdesk/internal/celledit"
	"github.com/jask/ledgerdesk/internal/ledger"
	"github.com/jask/ledgerdesk/internal/notify"
	"github.com/jask/ledgerdesk/internal/period"
)

// Lines above the table: the view tabs and the filter bar.
const (
	tabsLine   = 0
	filterLine = 1
	bodyTop    = 2
	chromeRows = 4
)

// Options configures the client.
type Options struct {
	Backend  Backend
	Notifier notify.Notifier
	Format   ledger.Formatter
	// ExportDir receives CSV downloads.
	ExportDir string
	Currency  string
	TZ        *time.Location
	// Categories seeds the category choices until the backend answers.
	Categories []string
	// LogFile receives log output while the screen is owned by the client.
	// Empty discards it.
	LogFile string
}

type modalState string

const (
	modalNone          modalState = ""
	modalConfirmDelete modalState = "confirmDelete"
	modalAlert         modalState = "alert"
)

// App is the ledger client: order and expense tables with inline editing,
// the KPI summary and the export page.
type App struct {
	ctx      context.Context
	backend  Backend
	notifier notify.Notifier
	format   ledger.Formatter
	keys     keyMap
	tz       *time.Location
	now      func() time.Time

	exportDir string
	currency  string

	view     view
	orders   *grid
	expenses *grid

	orderSearch   textinput.Model
	expenseSearch textinput.Model
	searching     bool

	expFilter periodFilter
	kpiFilter periodFilter
	repFilter periodFilter
	kpi       *api.KPI
	report    *api.KPI

	form          *form
	modal         modalState
	alert         string
	deleteTarget  view
	pendingDelete []string

	status    string
	statusErr bool
	width     int
	height    int

	dirty       <-chan notify.Message
	unsubscribe func()
}

func New(ctx context.Context, opts Options) *App {
	tz := opts.TZ
	if tz == nil {
		tz = time.Local
	}
	n := opts.Notifier
	if n == nil {
		n = notify.Noop{}
	}
	format := opts.Format
	a := &App{
		ctx:       ctx,
		backend:   opts.Backend,
		notifier:  n,
		format:    format,
		keys:      newKeyMap(),
		tz:        tz,
		exportDir: opts.ExportDir,
		currency:  opts.Currency,
	}
	a.now = func() time.Time { return time.Now().In(a.tz) }
	today := a.now()
	a.expFilter = periodFilter{mode: period.Month, base: today}
	a.kpiFilter = periodFilter{mode: period.Day, base: today}
	a.repFilter = periodFilter{mode: period.Month, base: today}

	a.orders = newGrid(ctx, opts.Backend, api.OrdersUpdatePath,
		ledger.NewTable("orders", ledger.FieldShift, orderColumns()), celledit.New(format, n))
	a.expenses = newGrid(ctx, opts.Backend, api.ExpensesUpdatePath,
		ledger.NewTable("expenses", "", expenseColumns()), celledit.New(format, n))
	a.setCategories(opts.Categories)

	a.orderSearch = newSearch()
	a.expenseSearch = newSearch()
	for _, g := range []*grid{a.orders, a.expenses} {
		g.top = bodyTop
	}
	a.dirty, a.unsubscribe = n.Subscribe()
	return a
}

func newSearch() textinput.Model {
	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "search"
	return in
}

// Close drops the notifier subscription.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// Run starts the full-screen client and blocks until it quits.
func Run(ctx context.Context, opts Options) error {
	restore, err := redirectLog(opts.LogFile)
	if err != nil {
		return err
	}
	defer restore()

	a := New(ctx, opts)
	defer a.Close()
	p := tea.NewProgram(a,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// redirectLog keeps log output off the alternate screen until restore runs.
func redirectLog(path string) (restore func(), err error) {
	out, prefix, flags := log.Writer(), log.Prefix(), log.Flags()
	restore = func() {
		log.SetOutput(out)
		log.SetPrefix(prefix)
		log.SetFlags(flags)
	}
	if path == "" {
		log.SetOutput(io.Discard)
		return restore, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir log dir: %w", err)
	}
	f, err := tea.LogToFile(path, "ledgerdesk")
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return func() {
		restore()
		f.Close()
	}, nil
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.loadOrders(),
		a.loadExpenses(),
		a.loadKPI(viewKPI),
		a.loadKPI(viewReports),
		a.loadCategories(),
		waitDirty(a.dirty),
	)
}

func (a *App) grid() *grid {
	switch a.view {
	case viewOrders:
		return a.orders
	case viewExpenses:
		return a.expenses
	}
	return nil
}

func (a *App) gridByName(name string) *grid {
	switch name {
	case a.orders.table.Name:
		return a.orders
	case a.expenses.table.Name:
		return a.expenses
	}
	return nil
}

func (a *App) setCategories(names []string) {
	if len(names) == 0 {
		return
	}
	a.expenses.choices[ledger.FieldCategory] = append([]string(nil), names...)
}

func (a *App) setStatus(s string) {
	a.status, a.statusErr = s, false
}

func (a *App) setErr(err error) {
	a.status, a.statusErr = "error: "+err.Error(), true
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		rows := m.Height - chromeRows - 1
		if rows < 1 {
			rows = 1
		}
		a.orders.setHeight(rows)
		a.expenses.setHeight(rows)
	case tea.BlurMsg:
		if g := a.grid(); g != nil {
			return a, g.blur()
		}
	case tea.MouseMsg:
		return a.handleMouse(m)
	case tea.KeyMsg:
		return a.handleKey(m)
	case savedMsg:
		g := a.gridByName(m.table)
		if g == nil {
			return a, nil
		}
		// a restored cell is the only trace of a failed save
		if g.settle(m) == celledit.Applied {
			a.setStatus("saved")
		}
	case ordersMsg:
		rows := make([]*ledger.Row, 0, len(m))
		for _, o := range m {
			rows = append(rows, orderRow(a.format, o))
		}
		a.orders.reset(rows)
	case expensesMsg:
		rows := make([]*ledger.Row, 0, len(m))
		for _, e := range m {
			rows = append(rows, expenseRow(a.format, e))
		}
		a.expenses.reset(rows)
	case kpiMsg:
		k := m.kpi
		if m.target == viewReports {
			a.report = &k
		} else {
			a.kpi = &k
		}
	case categoriesMsg:
		a.setCategories(m)
		if len(m) > 0 {
			return a, saveCategoriesCmd(m)
		}
	case createdMsg:
		g := a.orders
		if m.target == viewExpenses {
			g = a.expenses
		}
		g.add(m.row)
		_ = a.notifier.Publish(notify.Dirty)
		a.setStatus("added")
	case deletedMsg:
		_ = a.notifier.Publish(notify.Dirty)
		a.setStatus(fmt.Sprintf("deleted %d", m.n))
		if m.target == viewExpenses {
			return a, a.loadExpenses()
		}
		return a, a.loadOrders()
	case exportedMsg:
		a.setStatus(fmt.Sprintf("saved %s (%d bytes)", m.path, m.bytes))
	case exportFailedMsg:
		a.modal = modalAlert
		a.alert = "Export failed: " + m.err.Error()
	case notifyMsg:
		cmds := []tea.Cmd{waitDirty(a.dirty)}
		if m.Type == notify.TypeDirty {
			cmds = append(cmds, a.loadKPI(viewKPI), a.loadKPI(viewReports))
		}
		return a, tea.Batch(cmds...)
	case statusMsg:
		a.setStatus(string(m))
	case errMsg:
		a.setErr(m.error)
	}
	return a, nil
}

func (a *App) handleMouse(m tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.modal != modalNone || a.form != nil {
		return a, nil
	}
	if m.Y == tabsLine && m.Action == tea.MouseActionPress && m.Button == tea.MouseButtonLeft {
		if v, ok := tabAt(m.X); ok {
			return a.switchView(v)
		}
		return a, nil
	}
	g := a.grid()
	if g == nil {
		return a, nil
	}
	cmd, err := g.mouse(m)
	if err != nil {
		a.setErr(err)
	}
	return a, cmd
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalAlert:
		switch m.String() {
		case "enter", "esc", " ":
			a.modal, a.alert = modalNone, ""
		case "ctrl+c":
			return a, tea.Quit
		}
		return a, nil
	case modalConfirmDelete:
		switch m.String() {
		case "y", "Y":
			a.modal = modalNone
			ids := a.pendingDelete
			a.pendingDelete = nil
			return a, a.deleteCmd(a.deleteTarget, ids)
		case "n", "N", "esc":
			a.modal = modalNone
			a.pendingDelete = nil
		}
		return a, nil
	}
	if a.form != nil {
		return a.handleFormKey(m)
	}
	if a.searching {
		return a.handleSearchKey(m)
	}

	g := a.grid()
	if g != nil && g.editor.Active() != nil {
		cmd, handled, err := g.key(m)
		if err != nil {
			a.setErr(err)
		}
		if handled {
			return a, cmd
		}
	}

	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.NextView):
		return a.switchView((a.view + 1) % viewCount)
	case key.Matches(m, a.keys.Views):
		return a.switchView(view(m.Runes[0] - '1'))
	}

	switch a.view {
	case viewOrders, viewExpenses:
		return a.handleTableKey(g, m)
	case viewKPI:
		return a.handlePeriodKey(&a.kpiFilter, m, func() tea.Cmd { return a.loadKPI(viewKPI) })
	case viewReports:
		switch {
		case key.Matches(m, a.keys.ExportOrd):
			return a, a.exportCmd("orders")
		case key.Matches(m, a.keys.ExportExp):
			return a, a.exportCmd("expenses")
		case key.Matches(m, a.keys.ExportSal):
			return a, a.exportCmd("sales")
		}
		return a.handlePeriodKey(&a.repFilter, m, func() tea.Cmd { return a.loadKPI(viewReports) })
	}
	return a, nil
}

func (a *App) switchView(v view) (tea.Model, tea.Cmd) {
	if v < 0 || v >= viewCount || v == a.view {
		return a, nil
	}
	var cmd tea.Cmd
	if g := a.grid(); g != nil {
		cmd = g.blur()
	}
	a.view = v
	return a, cmd
}

func (a *App) handleTableKey(g *grid, m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.New):
		a.openForm()
		return a, nil
	case key.Matches(m, a.keys.Delete):
		ids := g.table.SelectedIDs()
		if len(ids) == 0 {
			a.setStatus("select rows first")
			return a, nil
		}
		a.modal = modalConfirmDelete
		a.deleteTarget = a.view
		a.pendingDelete = ids
		return a, nil
	case key.Matches(m, a.keys.Search):
		a.searching = true
		return a, a.search().Focus()
	}
	if a.view == viewExpenses {
		if _, cmd, ok := a.periodKey(&a.expFilter, m, a.loadExpenses); ok {
			return a, cmd
		}
	}
	cmd, _, err := g.key(m)
	if err != nil {
		a.setErr(err)
	}
	return a, cmd
}

func (a *App) search() *textinput.Model {
	if a.view == viewExpenses {
		return &a.expenseSearch
	}
	return &a.orderSearch
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	in := a.search()
	switch m.String() {
	case "enter":
		a.searching = false
		in.Blur()
		if a.view == viewExpenses {
			return a, a.loadExpenses()
		}
		return a, a.loadOrders()
	case "esc":
		a.searching = false
		in.Blur()
		return a, nil
	case "ctrl+c":
		return a, tea.Quit
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(m)
	return a, cmd
}

// periodKey applies the auto-submitting period filter keys. ok is false for
// other keys.
func (a *App) periodKey(f *periodFilter, m tea.KeyMsg, reload func() tea.Cmd) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(m, a.keys.Mode):
		f.mode = f.mode.Next()
	case key.Matches(m, a.keys.Prev):
		f.base = period.Step(f.mode, f.base, -1)
	case key.Matches(m, a.keys.Next):
		f.base = period.Step(f.mode, f.base, 1)
	case key.Matches(m, a.keys.Today):
		f.base = a.now()
	default:
		return a, nil, false
	}
	return a, reload(), true
}

func (a *App) handlePeriodKey(f *periodFilter, m tea.KeyMsg, reload func() tea.Cmd) (tea.Model, tea.Cmd) {
	if key.Matches(m, a.keys.Reload) {
		return a, reload()
	}
	model, cmd, _ := a.periodKey(f, m, reload)
	return model, cmd
}

func (a *App) openForm() {
	today := period.Format(a.now())
	if a.view == viewExpenses {
		a.form = newForm("New expense", viewExpenses, []formField{
			{key: ledger.FieldDate, label: "Date", value: today},
			{key: ledger.FieldCategory, label: "Category", choices: a.expenses.choices[ledger.FieldCategory]},
			{key: ledger.FieldMemo, label: "Memo"},
			{key: ledger.FieldAmount, label: "Amount"},
		})
		return
	}
	a.form = newForm("New order", viewOrders, []formField{
		{key: ledger.FieldDate, label: "Date", value: today},
		{key: ledger.FieldShift, label: "Shift", value: ledger.MorningLabel, choices: ledger.ShiftChoices},
		{key: ledger.FieldOrderNo, label: "Order No"},
		{key: ledger.FieldAmount, label: "Amount"},
	})
}

func (a *App) handleFormKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.String() == "ctrl+c" {
		return a, tea.Quit
	}
	res, cmd := a.form.update(m)
	switch res {
	case formCancel:
		a.form = nil
	case formSubmit:
		f := a.form
		a.form = nil
		if f.target == viewExpenses {
			return a, a.createExpenseCmd(f.values())
		}
		return a, a.createOrderCmd(f.values())
	}
	return a, cmd
}

// tab labels as rendered on the first line: " 1 Orders " ...
func tabLabel(v view) string { return fmt.Sprintf(" %d %s ", int(v)+1, viewNames[v]) }

func tabAt(x int) (view, bool) {
	pos := 0
	for v := view(0); v < viewCount; v++ {
		w := ansi.StringWidth(tabLabel(v))
		if x >= pos && x < pos+w {
			return v, true
		}
		pos += w + 1
	}
	return 0, false
}

func (a *App) View() string {
	lines := []string{a.renderTabs(), a.renderFilter()}
	bodyHeight := a.height - chromeRows
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	var body string
	switch {
	case a.modal == modalAlert:
		body = lipgloss.Place(max(a.width, 1), bodyHeight, lipgloss.Center, lipgloss.Center,
			alertStyle.Render(a.alert+"\n\n"+mutedStyle.Render("enter: ok")))
	case a.modal == modalConfirmDelete:
		body = lipgloss.Place(max(a.width, 1), bodyHeight, lipgloss.Center, lipgloss.Center,
			modalStyle.Render(fmt.Sprintf("Delete %d selected rows?\n\n%s", len(a.pendingDelete), mutedStyle.Render("y: delete  n: keep"))))
	case a.form != nil:
		body = lipgloss.Place(max(a.width, 1), bodyHeight, lipgloss.Center, lipgloss.Center, a.form.view())
	case a.view == viewKPI:
		body = a.renderKPI(a.kpi)
	case a.view == viewReports:
		body = a.renderReports()
	default:
		body = a.grid().view()
	}
	lines = append(lines, body)
	out := strings.Join(lines, "\n")
	if a.height > 0 {
		// keep the status and footer on the last two lines
		if n := strings.Count(out, "\n") + 1; n < a.height-2 {
			out += strings.Repeat("\n", a.height-2-n)
		}
	}
	return out + "\n" + a.renderStatus() + "\n" + a.renderFooter()
}

func (a *App) renderTabs() string {
	parts := make([]string, 0, viewCount)
	for v := view(0); v < viewCount; v++ {
		if v == a.view {
			parts = append(parts, tabActiveStyle.Render(tabLabel(v)))
		} else {
			parts = append(parts, tabStyle.Render(tabLabel(v)))
		}
	}
	return strings.Join(parts, " ")
}

func (a *App) renderFilter() string {
	switch a.view {
	case viewOrders:
		if a.searching || a.orderSearch.Value() != "" {
			return a.orderSearch.View()
		}
		return mutedStyle.Render("all orders")
	case viewExpenses:
		s := a.expFilter.label()
		if a.searching || a.expenseSearch.Value() != "" {
			s += "  " + a.expenseSearch.View()
		}
		return s
	case viewKPI:
		return a.kpiFilter.label()
	}
	return a.repFilter.label() + mutedStyle.Render("  -> "+a.exportDir)
}

func (a *App) money(n interface{ String() string }) string {
	return a.currency + a.format.Number(n.String())
}

func (a *App) renderKPI(k *api.KPI) string {
	if k == nil {
		return mutedStyle.Render("loading...")
	}
	row := func(label, value string) string {
		return kpiLabelStyle.Render(label) + kpiValueStyle.Render(value)
	}
	return strings.Join([]string{
		titleStyle.Render("Summary " + k.From + " ~ " + k.To),
		row("Morning", a.money(k.Morning)),
		row("Evening", a.money(k.Evening)),
		row("Sales", a.money(k.Total)),
		row("Expenses", a.money(k.Expense)),
		row("Net", a.money(k.Net)),
		row("Orders", fmt.Sprintf("%d", k.Orders)),
	}, "\n")
}

func (a *App) renderReports() string {
	return a.renderKPI(a.report) + "\n\n" +
		mutedStyle.Render("o: orders.csv  e: expenses.csv  s: sales.csv for this period")
}

func (a *App) renderStatus() string {
	msg := a.status
	if msg == "" {
		msg = "ready"
	}
	style := statusStyle
	if a.statusErr {
		style = statusErrStyle
	}
	return style.Render(fit(msg, max(a.width, 1), false))
}

func (a *App) renderFooter() string {
	keyStyle := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	parts := []string{}
	for _, b := range a.keys.bindings(a.view) {
		h := b.Help()
		parts = append(parts, keyStyle.Render(h.Key)+" "+mutedStyle.Render(h.Desc))
	}
	line := strings.Join(parts, "  ")
	if a.width > 0 {
		line = ansi.Truncate(line, a.width, "")
	}
	return footerStyle.Render(line)
}
