// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Routes between login, record list, detail, form, and delete screens

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/dragon-catalog/internal/catalog"
	"github.com/markalston/dragon-catalog/internal/client"
	"github.com/markalston/dragon-catalog/internal/models"
	"github.com/markalston/dragon-catalog/internal/session"
	"github.com/markalston/dragon-catalog/internal/tui/forms"
	"github.com/markalston/dragon-catalog/internal/tui/styles"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenList
	ScreenDetail
	ScreenForm
	ScreenConfirm
)

// Layout constants
const (
	defaultTableHeight = 12
	chromeHeight       = 8 // title, status, and help lines around the table
)

// recordsLoadedMsg is sent when the list has been read
type recordsLoadedMsg struct {
	records []models.Record
	err     error
}

// recordLoadedMsg is sent when a single record has been read
type recordLoadedMsg struct {
	record *models.Record
	err    error
}

// recordSavedMsg is sent when a create or update finishes
type recordSavedMsg struct {
	record  *models.Record
	created bool
	err     error
}

// recordDeletedMsg is sent when a delete finishes
type recordDeletedMsg struct {
	id  string
	err error
}

// loggedInMsg is sent when a login attempt finishes
type loggedInMsg struct {
	username string
	err      error
}

// loggedOutMsg is sent when logout finishes
type loggedOutMsg struct {
	err error
}

// App is the root model for the TUI
type App struct {
	ctx     context.Context
	catalog *catalog.Service
	guard   *session.Guard
	screen  Screen
	width   int
	height  int
	err     error
	status  string
	loading bool

	records  []models.Record
	selected *models.Record

	table   table.Model
	spinner spinner.Model

	// Child models
	login      *forms.Login
	form       *forms.Record
	confirm    *forms.ConfirmDelete
	formReturn Screen
}

// New creates the TUI around the session guard carried by ctx. It opens on
// the login screen unless the guard already holds a session. Without a guard
// in ctx the TUI starts anonymous with an in-memory session.
func New(ctx context.Context, svc *catalog.Service) *App {
	guard, ok := session.FromContext(ctx)
	if !ok {
		guard, _ = session.NewGuard(session.NewMemoryStore(""), nil, nil)
		ctx = session.WithGuard(ctx, guard)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	a := &App{
		ctx:     ctx,
		catalog: svc,
		guard:   guard,
		spinner: s,
		table:   newRecordTable(),
	}
	if guard.IsAuthenticated() {
		a.screen = ScreenList
		a.loading = true
	} else {
		a.screen = ScreenLogin
		a.login = forms.NewLogin()
	}
	return a
}

func newRecordTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Name", Width: 24},
			{Title: "Type", Width: 20},
			{Title: "Created", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(defaultTableHeight),
	)

	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true)
	st.Selected = st.Selected.
		Foreground(styles.Text).
		Background(styles.Primary).
		Bold(false)
	t.SetStyles(st)
	return t
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	if a.screen == ScreenLogin {
		return a.login.Init()
	}
	return tea.Batch(a.spinner.Tick, a.loadRecords())
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if h := msg.Height - chromeHeight; h > 3 {
			a.table.SetHeight(h)
		}
		return a.forwardToChild(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.screen {
		case ScreenLogin, ScreenForm, ScreenConfirm:
			return a.forwardToChild(msg)
		case ScreenList:
			return a.updateList(msg)
		case ScreenDetail:
			return a.updateDetail(msg)
		}

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case forms.LoginSubmittedMsg:
		return a, a.doLogin(msg.Username, msg.Password)

	case forms.RecordSubmittedMsg:
		a.screen = a.returnScreen()
		a.form = nil
		a.loading = true
		if msg.ID == "" {
			return a, tea.Batch(a.spinner.Tick, a.createRecord(msg.Input))
		}
		return a, tea.Batch(a.spinner.Tick, a.updateRecord(msg.ID, msg.Patch))

	case forms.DeleteConfirmedMsg:
		a.screen = ScreenList
		a.confirm = nil
		a.loading = true
		return a, tea.Batch(a.spinner.Tick, a.deleteRecord(msg.ID))

	case forms.CancelledMsg:
		return a.handleCancelled()

	case loggedInMsg:
		if msg.err != nil {
			text := "Login failed: " + msg.err.Error()
			if errors.Is(msg.err, session.ErrInvalidCredentials) {
				text = "Invalid username or password"
			}
			return a, a.login.Retry(text)
		}
		a.login = nil
		a.screen = ScreenList
		a.loading = true
		a.err = nil
		a.status = "Logged in as " + msg.username
		return a, tea.Batch(a.spinner.Tick, a.loadRecords())

	case loggedOutMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		return a.showLogin()

	case recordsLoadedMsg:
		a.loading = false
		if msg.err != nil {
			return a.handleError(msg.err)
		}
		a.err = nil
		a.setRecords(msg.records)
		return a, nil

	case recordLoadedMsg:
		a.loading = false
		if msg.err != nil {
			return a.handleError(msg.err)
		}
		a.selected = msg.record
		a.screen = ScreenDetail
		return a, nil

	case recordSavedMsg:
		if msg.err != nil {
			a.loading = false
			return a.handleError(msg.err)
		}
		a.err = nil
		if msg.created {
			a.status = fmt.Sprintf("Created %s", msg.record.Name)
		} else {
			a.status = fmt.Sprintf("Saved %s", msg.record.Name)
			if a.selected != nil && a.selected.ID == msg.record.ID {
				a.selected = msg.record
			}
		}
		return a, a.loadRecords()

	case recordDeletedMsg:
		if msg.err != nil {
			a.loading = false
			return a.handleError(msg.err)
		}
		a.err = nil
		a.selected = nil
		a.status = "Deleted record " + msg.id
		return a, a.loadRecords()

	default:
		// huh forms need their internal messages
		return a.forwardToChild(msg)
	}

	return a, nil
}

// forwardToChild hands msg to the active form, if any
func (a *App) forwardToChild(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case a.screen == ScreenLogin && a.login != nil:
		_, cmd = a.login.Update(msg)
	case a.screen == ScreenForm && a.form != nil:
		_, cmd = a.form.Update(msg)
	case a.screen == ScreenConfirm && a.confirm != nil:
		_, cmd = a.confirm.Update(msg)
	}
	return a, cmd
}

func (a *App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "r":
		a.catalog.Refresh()
		a.loading = true
		a.status = ""
		return a, tea.Batch(a.spinner.Tick, a.loadRecords())
	case "n":
		return a.openForm(forms.NewCreate())
	case "enter":
		if rec := a.highlighted(); rec != nil {
			a.loading = true
			return a, tea.Batch(a.spinner.Tick, a.loadRecord(rec.ID))
		}
		return a, nil
	case "e":
		if rec := a.highlighted(); rec != nil {
			a.selected = rec
			return a.openForm(forms.NewEdit(*rec))
		}
		return a, nil
	case "d":
		if rec := a.highlighted(); rec != nil {
			a.selected = rec
			return a.openConfirm(*rec)
		}
		return a, nil
	case "L":
		return a, a.doLogout()
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

func (a *App) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "b", "esc":
		a.screen = ScreenList
		return a, nil
	case "e":
		if a.selected != nil {
			return a.openForm(forms.NewEdit(*a.selected))
		}
	case "d":
		if a.selected != nil {
			return a.openConfirm(*a.selected)
		}
	}
	return a, nil
}

func (a *App) openForm(f *forms.Record) (tea.Model, tea.Cmd) {
	a.form = f
	if f.Editing() && a.screen == ScreenDetail {
		a.formReturn = ScreenDetail
	} else {
		a.formReturn = ScreenList
	}
	a.screen = ScreenForm
	a.status = ""
	return a, f.Init()
}

func (a *App) openConfirm(rec models.Record) (tea.Model, tea.Cmd) {
	a.confirm = forms.NewConfirmDelete(rec)
	a.formReturn = a.screen
	a.screen = ScreenConfirm
	a.status = ""
	return a, a.confirm.Init()
}

// returnScreen is where a finished form goes back to
func (a *App) returnScreen() Screen {
	if a.formReturn == ScreenDetail {
		return ScreenDetail
	}
	return ScreenList
}

func (a *App) handleCancelled() (tea.Model, tea.Cmd) {
	switch a.screen {
	case ScreenLogin:
		return a, tea.Quit
	case ScreenForm:
		a.form = nil
		a.screen = a.returnScreen()
	case ScreenConfirm:
		a.confirm = nil
		a.screen = a.returnScreen()
	}
	return a, nil
}

// handleError shows err, or returns to login when the session is gone
func (a *App) handleError(err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, session.ErrNotAuthenticated) {
		return a.showLogin()
	}
	if errors.Is(err, client.ErrNotFound) && a.screen == ScreenDetail {
		a.screen = ScreenList
		a.selected = nil
	}
	a.err = err
	a.status = ""
	return a, nil
}

func (a *App) showLogin() (tea.Model, tea.Cmd) {
	a.screen = ScreenLogin
	a.login = forms.NewLogin()
	a.records = nil
	a.selected = nil
	a.table.SetRows(nil)
	a.err = nil
	a.status = ""
	a.loading = false
	return a, a.login.Init()
}

func (a *App) setRecords(records []models.Record) {
	a.records = records
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{r.ID, r.Name, r.Type, formatDate(r.CreatedAt)})
	}
	a.table.SetRows(rows)
	if c := a.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		a.table.SetCursor(len(rows) - 1)
	}
}

// highlighted returns the record under the table cursor
func (a *App) highlighted() *models.Record {
	c := a.table.Cursor()
	if c < 0 || c >= len(a.records) {
		return nil
	}
	rec := a.records[c]
	return &rec
}

// loadRecords reads the list through the cache
func (a *App) loadRecords() tea.Cmd {
	return func() tea.Msg {
		if err := a.guard.Require(); err != nil {
			return recordsLoadedMsg{err: err}
		}
		records, err := a.catalog.List(a.ctx)
		return recordsLoadedMsg{records: records, err: err}
	}
}

func (a *App) loadRecord(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.guard.Require(); err != nil {
			return recordLoadedMsg{err: err}
		}
		rec, err := a.catalog.Get(a.ctx, id)
		return recordLoadedMsg{record: rec, err: err}
	}
}

func (a *App) createRecord(input models.RecordInput) tea.Cmd {
	return func() tea.Msg {
		if err := a.guard.Require(); err != nil {
			return recordSavedMsg{err: err}
		}
		rec, err := a.catalog.Create(a.ctx, input)
		return recordSavedMsg{record: rec, created: true, err: err}
	}
}

func (a *App) updateRecord(id string, patch models.RecordPatch) tea.Cmd {
	return func() tea.Msg {
		if err := a.guard.Require(); err != nil {
			return recordSavedMsg{err: err}
		}
		rec, err := a.catalog.Update(a.ctx, id, patch)
		return recordSavedMsg{record: rec, err: err}
	}
}

func (a *App) deleteRecord(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.guard.Require(); err != nil {
			return recordDeletedMsg{id: id, err: err}
		}
		return recordDeletedMsg{id: id, err: a.catalog.Delete(a.ctx, id)}
	}
}

func (a *App) doLogin(username, password string) tea.Cmd {
	return func() tea.Msg {
		return loggedInMsg{username: username, err: a.guard.Login(username, password)}
	}
}

func (a *App) doLogout() tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg{err: a.guard.Logout()}
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenLogin:
		content = a.login.View()
	case ScreenList:
		content = a.viewList()
	case ScreenDetail:
		content = a.viewDetail()
	case ScreenForm:
		content = a.form.View()
	case ScreenConfirm:
		content = a.confirm.View()
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Dragon Catalog"))
	sb.WriteString("\n")
	sb.WriteString(content)
	if line := a.statusLine(); line != "" {
		sb.WriteString("\n\n")
		sb.WriteString(line)
	}
	return sb.String()
}

func (a *App) statusLine() string {
	switch {
	case a.err != nil:
		return styles.StatusError.Render("Error: " + a.err.Error())
	case a.loading:
		return a.spinner.View() + " Loading..."
	case a.status != "":
		return styles.StatusOK.Render(a.status)
	}
	return ""
}

func (a *App) viewList() string {
	if len(a.records) == 0 && !a.loading && a.err == nil {
		return styles.Subtitle.Render("No dragons yet. Press n to add one.") + "\n" + a.listHelp()
	}
	return a.table.View() + "\n" + a.listHelp()
}

func (a *App) listHelp() string {
	return styles.Help.Render(strings.Join([]string{
		styles.KeyHint("enter", "details"),
		styles.KeyHint("n", "new"),
		styles.KeyHint("e", "edit"),
		styles.KeyHint("d", "delete"),
		styles.KeyHint("r", "refresh"),
		styles.KeyHint("L", "logout"),
		styles.KeyHint("q", "quit"),
	}, "  "))
}

func (a *App) viewDetail() string {
	if a.selected == nil {
		return ""
	}
	r := a.selected
	lines := []string{
		styles.LabelStyle.Render("ID") + styles.ValueStyle.Render(r.ID),
		styles.LabelStyle.Render("Name") + styles.ValueStyle.Render(r.Name),
		styles.LabelStyle.Render("Type") + styles.ValueStyle.Render(r.Type),
		styles.LabelStyle.Render("Created") + styles.ValueStyle.Render(formatDate(r.CreatedAt)),
	}
	help := styles.Help.Render(strings.Join([]string{
		styles.KeyHint("e", "edit"),
		styles.KeyHint("d", "delete"),
		styles.KeyHint("b", "back"),
		styles.KeyHint("q", "quit"),
	}, "  "))
	return styles.Panel.Render(strings.Join(lines, "\n")) + "\n" + help
}

// formatDate shows the date part of an RFC 3339 timestamp
func formatDate(ts string) string {
	if len(ts) >= len("2006-01-02") && ts[4] == '-' && ts[7] == '-' {
		return ts[:10]
	}
	return ts
}

// Run starts the TUI and blocks until it exits
func Run(ctx context.Context, svc *catalog.Service) error {
	p := tea.NewProgram(
		New(ctx, svc),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
