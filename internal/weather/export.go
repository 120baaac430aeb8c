package weather

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"fileagent/internal/logging"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoRows is returned when there is nothing to export.
var ErrNoRows = errors.New("no weather rows")

// WriteCSV writes rows with a header and no index column, creating the
// parent directory if needed.
func WriteCSV(path string, rows []DayRow) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Headers); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(r.Strings()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logging.Weather("Data saved to %s (%d rows)", path, len(rows))
	return nil
}

// WriteChart renders the max and min series as a 10x6 inch line chart. The
// image format follows the file extension (.png, .svg, .pdf).
func WriteChart(path, title string, rows []DayRow) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Temperature (°C)"
	p.X.Tick.Marker = plot.TimeTicks{Format: DateLayout}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	if err := plotutil.AddLinePoints(p,
		"Max Temp", series(rows, func(r DayRow) float64 { return r.Max }),
		"Min Temp", series(rows, func(r DayRow) float64 { return r.Min }),
	); err != nil {
		return fmt.Errorf("failed to build chart: %w", err)
	}

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	logging.Weather("Chart saved to %s", path)
	return nil
}

// series drops NaN readings, which the plotter rejects.
func series(rows []DayRow, pick func(DayRow) float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(rows))
	for _, r := range rows {
		v := pick(r)
		if math.IsNaN(v) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(r.Date.Unix()), Y: v})
	}
	return pts
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
