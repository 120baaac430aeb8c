package main

import (
	"context"
	"fmt"

	"fileagent/internal/logging"
	"fileagent/internal/sales"

	"github.com/spf13/cobra"
)

var (
	salesInput  string
	salesOutDir string
	salesWatch  bool
)

// salesCmd analyzes a sales CSV file
var salesCmd = &cobra.Command{
	Use:   "sales",
	Short: "Analyze sales CSV data and export JSON, XLSX and CSV reports",
	Long: `Reads sales records (product, quantity, price), prints the table, its
shape, the table with a total column and a per-product summary, and writes
sales_data.json, sales_data.xlsx and sales_with_totals.csv.

--input accepts a path or a glob such as "data/**/*.csv".
--watch re-runs the report whenever a matching file changes.`,
	Args: cobra.NoArgs,
	RunE: runSales,
}

func init() {
	salesCmd.Flags().StringVarP(&salesInput, "input", "i", "", "Input CSV path or glob (default from config)")
	salesCmd.Flags().StringVarP(&salesOutDir, "out", "o", "", "Output directory (default from config)")
	salesCmd.Flags().BoolVarP(&salesWatch, "watch", "w", false, "Re-run when the input changes")
}

func runSales(cmd *cobra.Command, args []string) error {
	input := cfg.Sales.Input
	if salesInput != "" {
		input = salesInput
	}
	outDir := cfg.Sales.OutputDir
	if salesOutDir != "" {
		outDir = salesOutDir
	}
	out := cmd.OutOrStdout()

	report := func() error {
		res, err := sales.Report(out, input, outDir)
		if err != nil {
			return err
		}
		for _, f := range res.Files {
			fmt.Fprintf(out, "\nSaved %s", f)
		}
		fmt.Fprintln(out)
		return nil
	}

	if err := report(); err != nil {
		if !salesWatch {
			return err
		}
		logging.Get(logging.CategorySales).Error("Report failed: %v", err)
	}
	if !salesWatch {
		return nil
	}

	// Watch mode runs until interrupted, so --timeout does not apply.
	ctx, stop := signalContext(cmd)
	defer stop()

	w, err := sales.NewWatcher(input, cfg.GetSalesDebounce(), func(context.Context) {
		fmt.Fprintf(out, "\nChange detected in %s\n\n", input)
		if err := report(); err != nil {
			logging.Get(logging.CategorySales).Error("Report failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintf(out, "\nWatching %s (Ctrl+C to stop)\n", input)
	<-ctx.Done()
	return nil
}
