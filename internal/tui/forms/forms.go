// ABOUTME: huh forms embedded as bubbletea models for the TUI screens
// ABOUTME: Shared completion and cancel handling for login, record, and confirm forms

package forms

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// CancelledMsg is sent when the user leaves a form with esc
type CancelledMsg struct{}

// embedded drives a huh.Form and reports completion exactly once
type embedded struct {
	form *huh.Form
	done bool
}

// update forwards msg to the form. completed is true the first time the
// form reaches StateCompleted.
func (e *embedded) update(msg tea.Msg) (completed bool, cmd tea.Cmd) {
	if e.done {
		return false, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		e.done = true
		return false, func() tea.Msg { return CancelledMsg{} }
	}

	model, cmd := e.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		e.form = f
	}

	if e.form.State == huh.StateCompleted {
		e.done = true
		return true, cmd
	}
	return false, cmd
}

// required rejects blank input
func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}
