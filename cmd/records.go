// ABOUTME: Record commands for dragon-catalog CLI
// ABOUTME: List, get, create, update, and delete dragons through the catalog service

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markalston/dragon-catalog/internal/models"
)

var (
	createName string
	createType string
	updateName string
	updateType string
	deleteYes  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List dragons ordered by name",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runList)
	},
}

var getCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one dragon",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runGet(ctx, w, args[0])
		})
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a dragon",
	Long:  `Create a dragon. The store assigns the id and creation time.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runCreate(ctx, w, models.RecordInput{Name: createName, Type: createType})
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Change a dragon's name or type",
	Long:  `Change a dragon's name, type, or both. Fields not given keep their current value.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runUpdate(ctx, w, args[0], updatePatch(cmd))
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a dragon",
	Long:  `Delete a dragon. Asks for confirmation unless --yes is given.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		in := bufio.NewReader(os.Stdin)
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runDelete(ctx, w, in, args[0], deleteYes)
		})
	},
}

func init() {
	createCmd.Flags().StringVarP(&createName, "name", "n", "", "Dragon name (required)")
	createCmd.Flags().StringVarP(&createType, "type", "t", "", "Dragon type (required)")
	updateCmd.Flags().StringVarP(&updateName, "name", "n", "", "New name")
	updateCmd.Flags().StringVarP(&updateType, "type", "t", "", "New type")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd)
}

// runList prints every record in name order
func runList(ctx context.Context, w io.Writer) int {
	rt, err := loadRuntime()
	if err != nil {
		return reportError(w, err)
	}
	ctx = rt.context(ctx)
	if err := requireSession(ctx); err != nil {
		return reportError(w, err)
	}

	records, err := rt.catalog.List(ctx)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(records))
	} else {
		fmt.Fprintln(w, formatRecordsHuman(records))
	}
	return 0
}

// runGet prints one record
func runGet(ctx context.Context, w io.Writer, id string) int {
	rt, err := loadRuntime()
	if err != nil {
		return reportError(w, err)
	}
	ctx = rt.context(ctx)
	if err := requireSession(ctx); err != nil {
		return reportError(w, err)
	}

	record, err := rt.catalog.Get(ctx, id)
	if err != nil {
		return reportError(w, err)
	}

	printRecord(w, record)
	return 0
}

// runCreate creates a record and prints what the store returned
func runCreate(ctx context.Context, w io.Writer, input models.RecordInput) int {
	rt, err := loadRuntime()
	if err != nil {
		return reportError(w, err)
	}
	ctx = rt.context(ctx)
	if err := requireSession(ctx); err != nil {
		return reportError(w, err)
	}

	record, err := rt.catalog.Create(ctx, input)
	if err != nil {
		return reportError(w, err)
	}

	if !IsJSONOutput() {
		fmt.Fprintln(w, "Created dragon:")
	}
	printRecord(w, record)
	return 0
}

// runUpdate applies patch to the record with id
func runUpdate(ctx context.Context, w io.Writer, id string, patch models.RecordPatch) int {
	rt, err := loadRuntime()
	if err != nil {
		return reportError(w, err)
	}
	ctx = rt.context(ctx)
	if err := requireSession(ctx); err != nil {
		return reportError(w, err)
	}

	record, err := rt.catalog.Update(ctx, id, patch)
	if err != nil {
		return reportError(w, err)
	}

	if !IsJSONOutput() {
		fmt.Fprintln(w, "Updated dragon:")
	}
	printRecord(w, record)
	return 0
}

// runDelete removes the record with id, asking first unless yes is set.
// Declining the prompt is not an error.
func runDelete(ctx context.Context, w io.Writer, in *bufio.Reader, id string, yes bool) int {
	rt, err := loadRuntime()
	if err != nil {
		return reportError(w, err)
	}
	ctx = rt.context(ctx)
	if err := requireSession(ctx); err != nil {
		return reportError(w, err)
	}

	if !yes {
		record, err := rt.catalog.Get(ctx, id)
		if err != nil {
			return reportError(w, err)
		}
		fmt.Fprintf(w, "Delete dragon %q (%s)? [y/N]: ", record.Name, record.ID)
		answer, _ := readLine(in)
		if !confirmed(answer) {
			fmt.Fprintln(w, "Cancelled")
			return 0
		}
	}

	if err := rt.catalog.Delete(ctx, id); err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(map[string]any{"id": id, "deleted": true}))
	} else {
		fmt.Fprintf(w, "Deleted dragon %s\n", id)
	}
	return 0
}

// updatePatch carries every flag the user gave, blank values included, so
// that validation rejects an explicit empty name or type
func updatePatch(cmd *cobra.Command) models.RecordPatch {
	var patch models.RecordPatch
	if cmd.Flags().Changed("name") {
		name, _ := cmd.Flags().GetString("name")
		patch.Name = &name
	}
	if cmd.Flags().Changed("type") {
		typ, _ := cmd.Flags().GetString("type")
		patch.Type = &typ
	}
	return patch
}

func confirmed(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func printRecord(w io.Writer, record *models.Record) {
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(record))
	} else {
		fmt.Fprintln(w, formatRecordHuman(record))
	}
}
