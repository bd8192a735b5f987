// ABOUTME: Create and edit forms for dragon records
// ABOUTME: Edit mode sends only the fields the user changed

package forms

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/markalston/dragon-catalog/internal/models"
	"github.com/markalston/dragon-catalog/internal/tui/styles"
)

// RecordSubmittedMsg carries a create input or an edit patch.
// ID is empty for create.
type RecordSubmittedMsg struct {
	ID    string
	Input models.RecordInput
	Patch models.RecordPatch
}

// Record is the create/edit form
type Record struct {
	embedded
	original *models.Record
	name     string
	typ      string
}

// NewCreate returns an empty form for a new record
func NewCreate() *Record {
	r := &Record{}
	r.form = r.build("New dragon", "The store assigns the id and creation date")
	return r
}

// NewEdit returns a form prefilled with rec
func NewEdit(rec models.Record) *Record {
	r := &Record{original: &rec, name: rec.Name, typ: rec.Type}
	r.form = r.build("Edit dragon", "Record "+rec.ID)
	return r
}

// Editing reports whether the form edits an existing record
func (r *Record) Editing() bool {
	return r.original != nil
}

func (r *Record) build(title, description string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("e.g., Drogon").
				Value(&r.name).
				Validate(required("name")),
			huh.NewInput().
				Title("Type").
				Placeholder("e.g., Fire").
				Value(&r.typ).
				Validate(required("type")),
		).Title(title).
			Description(description),
	).WithTheme(styles.FormTheme())
}

// Init implements tea.Model
func (r *Record) Init() tea.Cmd {
	return r.form.Init()
}

// Update implements tea.Model
func (r *Record) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	completed, cmd := r.update(msg)
	if !completed {
		return r, cmd
	}

	submitted := r.submission()
	if r.Editing() && submitted.Patch.Empty() {
		return r, func() tea.Msg { return CancelledMsg{} }
	}
	return r, func() tea.Msg { return submitted }
}

// submission builds the message for the current values
func (r *Record) submission() RecordSubmittedMsg {
	name := strings.TrimSpace(r.name)
	typ := strings.TrimSpace(r.typ)

	if !r.Editing() {
		return RecordSubmittedMsg{Input: models.RecordInput{Name: name, Type: typ}}
	}

	var patch models.RecordPatch
	if name != r.original.Name {
		patch.Name = &name
	}
	if typ != r.original.Type {
		patch.Type = &typ
	}
	return RecordSubmittedMsg{ID: r.original.ID, Patch: patch}
}

// View implements tea.Model
func (r *Record) View() string {
	return r.form.View()
}
