// ABOUTME: Login form for the TUI
// ABOUTME: Collects username and password with the password masked

package forms

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/markalston/dragon-catalog/internal/tui/styles"
)

// LoginSubmittedMsg carries the entered credentials
type LoginSubmittedMsg struct {
	Username string
	Password string
}

// Login is the login screen form
type Login struct {
	embedded
	username string
	password string
	errMsg   string
}

// NewLogin creates an empty login form
func NewLogin() *Login {
	l := &Login{}
	l.form = l.build()
	return l
}

// Retry rebuilds the form after a rejected attempt, keeping the username
func (l *Login) Retry(errMsg string) tea.Cmd {
	l.password = ""
	l.errMsg = errMsg
	l.done = false
	l.form = l.build()
	return l.form.Init()
}

func (l *Login) build() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&l.username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&l.password),
		).Title("Log in").
			Description("Sign in to manage the dragon catalog"),
	).WithTheme(styles.FormTheme())
}

// Init implements tea.Model
func (l *Login) Init() tea.Cmd {
	return l.form.Init()
}

// Update implements tea.Model
func (l *Login) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	completed, cmd := l.update(msg)
	if completed {
		username := strings.TrimSpace(l.username)
		password := l.password
		return l, func() tea.Msg {
			return LoginSubmittedMsg{Username: username, Password: password}
		}
	}
	return l, cmd
}

// View implements tea.Model
func (l *Login) View() string {
	view := l.form.View()
	if l.errMsg != "" {
		view = styles.StatusError.Render(l.errMsg) + "\n\n" + view
	}
	return view
}
