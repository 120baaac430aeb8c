package sales

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"fileagent/internal/logging"

	"github.com/xuri/excelize/v2"
)

// Export file names inside the output directory.
const (
	JSONFile  = "sales_data.json"
	XLSXFile  = "sales_data.xlsx"
	CSVFile   = "sales_with_totals.csv"
	SheetName = "Sheet1"
)

// ExportAll writes the JSON, XLSX and CSV exports into dir, creating it if
// absent. It returns the written paths.
func ExportAll(d *Dataset, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}

	paths := []string{
		filepath.Join(dir, JSONFile),
		filepath.Join(dir, XLSXFile),
		filepath.Join(dir, CSVFile),
	}
	writers := []func(*Dataset, string) error{WriteJSON, WriteXLSX, WriteCSV}
	for i, write := range writers {
		if err := write(d, paths[i]); err != nil {
			return nil, err
		}
	}
	logging.Sales("Exported %d rows to %s", len(d.Records), dir)
	return paths, nil
}

// WriteJSON writes the records as an array of objects with keys in column
// order, indented by two spaces.
func WriteJSON(d *Dataset, path string) error {
	data, err := d.MarshalRecords()
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return fmt.Errorf("failed to indent JSON: %w", err)
	}
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// MarshalRecords encodes the records as a compact JSON array. Numeric
// columns are numbers; extra columns are numbers when they parse as one.
func (d *Dataset) MarshalRecords() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range d.Records {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range d.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(col)
			buf.Write(key)
			buf.WriteByte(':')
			val, err := json.Marshal(r.cell(col))
			if err != nil {
				return nil, fmt.Errorf("failed to encode %s: %w", col, err)
			}
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// cell returns the typed value of a column.
func (r Record) cell(col string) interface{} {
	switch col {
	case ColProduct:
		return r.Product
	case ColQuantity:
		return r.Quantity
	case ColPrice:
		return r.Price
	case ColTotal:
		return r.Total
	}
	s := r.Extra[col]
	if f, err := parseNumber(s); err == nil {
		return f
	}
	return s
}

// WriteXLSX writes a single sheet with a header row and no index column.
func WriteXLSX(d *Dataset, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(d.Columns))
	for i, c := range d.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range d.Records {
		row := make([]interface{}, len(d.Columns))
		for j, c := range d.Columns {
			row[j] = r.cell(c)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes the table with a header and no index column.
func WriteCSV(d *Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(d.Columns); err != nil {
		return err
	}
	if err := w.WriteAll(d.Rows()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
