// ABOUTME: Delete confirmation prompt
// ABOUTME: Defaults to cancel so a stray enter never deletes

package forms

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/markalston/dragon-catalog/internal/models"
	"github.com/markalston/dragon-catalog/internal/tui/styles"
)

// DeleteConfirmedMsg is sent when the user confirms deletion of ID
type DeleteConfirmedMsg struct {
	ID string
}

// ConfirmDelete asks before deleting a record
type ConfirmDelete struct {
	embedded
	record models.Record
	ok     bool
}

// NewConfirmDelete creates the prompt for rec
func NewConfirmDelete(rec models.Record) *ConfirmDelete {
	c := &ConfirmDelete{record: rec}
	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s?", rec.Name)).
				Description("This cannot be undone").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&c.ok),
		),
	).WithTheme(styles.FormTheme())
	return c
}

// Init implements tea.Model
func (c *ConfirmDelete) Init() tea.Cmd {
	return c.form.Init()
}

// Update implements tea.Model
func (c *ConfirmDelete) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	completed, cmd := c.update(msg)
	if !completed {
		return c, cmd
	}
	if !c.ok {
		return c, func() tea.Msg { return CancelledMsg{} }
	}
	id := c.record.ID
	return c, func() tea.Msg { return DeleteConfirmedMsg{ID: id} }
}

// View implements tea.Model
func (c *ConfirmDelete) View() string {
	return c.form.View()
}
