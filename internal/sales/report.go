package sales

import (
	"fmt"
	"io"

	"fileagent/internal/ui"
)

// Result holds the datasets produced by one report run.
type Result struct {
	Data    *Dataset
	Totals  *Dataset
	Summary *Dataset
	Files   []string
}

// Report loads input, prints the raw table, its shape, the table with totals
// and the per-product summary to w, and writes the exports into outDir.
func Report(w io.Writer, input, outDir string) (*Result, error) {
	data, err := Load(input)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(w, "CSV Data:")
	fmt.Fprintln(w, ui.Table(data.Columns, data.Rows()))
	rows, cols := data.Shape()
	fmt.Fprintf(w, "\nShape: %d rows, %d columns\n", rows, cols)

	totals := data.WithTotals()
	fmt.Fprintln(w, "\nWith totals:")
	fmt.Fprintln(w, ui.Table(totals.Columns, totals.Rows()))

	files, err := ExportAll(totals, outDir)
	if err != nil {
		return nil, err
	}

	summary := totals.Summarize()
	fmt.Fprintln(w, "\nSimplified Data:")
	fmt.Fprintln(w, ui.Table(summary.Columns, summary.Rows()))

	return &Result{Data: data, Totals: totals, Summary: summary, Files: files}, nil
}
