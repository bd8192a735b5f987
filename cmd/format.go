// ABOUTME: Output formatting shared by the record commands
// ABOUTME: Renders records as a lipgloss table or indented JSON

package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/markalston/dragon-catalog/internal/models"
)

// formatRecordsHuman renders records as a bordered table
func formatRecordsHuman(records []models.Record) string {
	if len(records) == 0 {
		return "No dragons found."
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.ID, r.Name, r.Type, formatCreatedAt(r.CreatedAt)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "TYPE", "CREATED").
		Rows(rows...)
	return fmt.Sprintf("%s\n%d dragon(s)", t.String(), len(records))
}

// formatRecordHuman renders a single record as labelled lines
func formatRecordHuman(r *models.Record) string {
	return fmt.Sprintf(`ID:       %s
Name:     %s
Type:     %s
Created:  %s`, r.ID, r.Name, r.Type, formatCreatedAt(r.CreatedAt))
}

// formatJSON renders v as indented JSON
func formatJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}

// formatCreatedAt shows the date part of an RFC 3339 timestamp and leaves
// anything else untouched
func formatCreatedAt(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02")
}
