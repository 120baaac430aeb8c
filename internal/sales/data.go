// Package sales loads sales CSV files, computes line totals and per-product
// summaries, and exports the results as JSON, XLSX and CSV.
package sales

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"fileagent/internal/logging"

	"github.com/bmatcuk/doublestar/v4"
)

// Column names.
const (
	ColProduct  = "product"
	ColQuantity = "quantity"
	ColPrice    = "price"
	ColTotal    = "total"
)

var (
	// ErrMissingData is returned when the input pattern matches no file.
	ErrMissingData = errors.New("sales data file is missing")

	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("missing required column")
)

// Record is one sales line. Columns other than the required ones are kept in
// Extra, keyed by header name.
type Record struct {
	Product  string
	Quantity float64
	Price    float64
	Total    float64
	Extra    map[string]string
}

// Dataset is a loaded table with its column order.
type Dataset struct {
	Columns []string
	Records []Record
}

// Shape returns the number of rows and columns.
func (d *Dataset) Shape() (rows, cols int) {
	return len(d.Records), len(d.Columns)
}

// Load reads every file matching pattern (a plain path or a doublestar glob),
// in sorted path order, and concatenates their rows. The column order comes
// from the first file.
func Load(pattern string) (*Dataset, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid input pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingData, pattern)
	}
	sort.Strings(paths)

	var ds *Dataset
	for _, path := range paths {
		part, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		if ds == nil {
			ds = part
			continue
		}
		ds.Records = append(ds.Records, part.Records...)
	}

	logging.Sales("Loaded %d rows from %d file(s)", len(ds.Records), len(paths))
	return ds, nil
}

func loadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logging.SalesDebug("Read %d rows from %s", len(ds.Records), path)
	return ds, nil
}

// Read parses a sales CSV with a header row.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	for _, col := range []string{ColProduct, ColQuantity, ColPrice} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	ds := &Dataset{Columns: header}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec := Record{Product: row[idx[ColProduct]]}
		if rec.Quantity, err = parseNumber(row[idx[ColQuantity]]); err != nil {
			return nil, fmt.Errorf("line %d: invalid quantity: %w", line, err)
		}
		if rec.Price, err = parseNumber(row[idx[ColPrice]]); err != nil {
			return nil, fmt.Errorf("line %d: invalid price: %w", line, err)
		}
		for i, h := range header {
			switch h {
			case ColProduct, ColQuantity, ColPrice:
				continue
			case ColTotal:
				rec.Total, _ = parseNumber(row[i])
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[h] = row[i]
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

// parseNumber parses a finite float. "inf" and "NaN" are rejected because
// the JSON export cannot encode them.
func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return f, nil
}

// WithTotals returns a copy with total = quantity * price on every row and a
// total column appended.
func (d *Dataset) WithTotals() *Dataset {
	out := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Records: make([]Record, len(d.Records)),
	}
	if !out.hasColumn(ColTotal) {
		out.Columns = append(out.Columns, ColTotal)
	}
	for i, r := range d.Records {
		r.Total = r.Quantity * r.Price
		out.Records[i] = r
	}
	return out
}

// Summarize groups rows by product, sorted by product name. Quantity is
// summed, price is the first price seen and total is recomputed.
func (d *Dataset) Summarize() *Dataset {
	byProduct := make(map[string]*Record)
	var names []string
	for _, r := range d.Records {
		agg, ok := byProduct[r.Product]
		if !ok {
			byProduct[r.Product] = &Record{Product: r.Product, Quantity: r.Quantity, Price: r.Price}
			names = append(names, r.Product)
			continue
		}
		agg.Quantity += r.Quantity
	}
	sort.Strings(names)

	out := &Dataset{Columns: []string{ColProduct, ColQuantity, ColPrice, ColTotal}}
	for _, name := range names {
		r := byProduct[name]
		r.Total = r.Quantity * r.Price
		out.Records = append(out.Records, *r)
	}
	return out
}

func (d *Dataset) hasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Value returns the cell for column col as a string.
func (r Record) Value(col string) string {
	switch col {
	case ColProduct:
		return r.Product
	case ColQuantity:
		return FormatNumber(r.Quantity)
	case ColPrice:
		return FormatNumber(r.Price)
	case ColTotal:
		return FormatNumber(r.Total)
	default:
		return r.Extra[col]
	}
}

// Rows renders all records in column order.
func (d *Dataset) Rows() [][]string {
	rows := make([][]string, len(d.Records))
	for i, r := range d.Records {
		row := make([]string, len(d.Columns))
		for j, c := range d.Columns {
			row[j] = r.Value(c)
		}
		rows[i] = row
	}
	return rows
}

// FormatNumber prints v without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
