package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/benoitkugler/marbles/shape"
	"github.com/benoitkugler/marbles/shapedoc"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var planJSON bool

var planCmd = &cobra.Command{
	Use:   "plan <input.html>",
	Short: "Print the variables each shape would receive",
	Long: `Computes the custom properties of every shape without writing anything,
and prints them as a table, or as JSON with --json.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Print JSON instead of a table")
}

// planRow is the JSON form of one entry
type planRow struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	doc, err := shapedoc.ReadFile(args[0])
	if err != nil {
		return err
	}
	plan, err := shapedoc.Resolve(doc, docOptions())
	if err != nil {
		return err
	}
	if planJSON {
		return writePlanJSON(cmd.OutOrStdout(), plan.Entries())
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), planTable(plan.Entries()))
	return err
}

func writePlanJSON(w io.Writer, entries []shape.Entry) error {
	rows := make([]planRow, len(entries))
	for i, e := range entries {
		props := map[string]string{}
		for _, p := range e.Style.Properties() {
			props[p.Name] = p.Value
		}
		rows[i] = planRow{ID: e.ID, Properties: props}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func planTable(entries []shape.Entry) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("element", shape.PropWidth, shape.PropHeight, shape.PropPosX, shape.PropPosY, shape.PropOpacity)
	for _, e := range entries {
		row := []string{e.ID}
		for _, p := range e.Style.Properties() {
			row = append(row, p.Value)
		}
		t.Row(row...)
	}
	return t.String()
}
