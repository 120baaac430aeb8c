package weather

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DailyForecast is the decoded daily forecast response.
type DailyForecast struct {
	Latitude   float64           `json:"latitude"`
	Longitude  float64           `json:"longitude"`
	Timezone   string            `json:"timezone"`
	Elevation  float64           `json:"elevation"`
	DailyUnits map[string]string `json:"daily_units"`
	Daily      DailySeries       `json:"daily"`
}

// DailySeries holds parallel arrays; a nil entry is a missing reading.
type DailySeries struct {
	Time             []string   `json:"time"`
	Temperature2mMax []*float64 `json:"temperature_2m_max"`
	Temperature2mMin []*float64 `json:"temperature_2m_min"`
}

// DayRow is one row of the daily table. Missing readings are NaN.
type DayRow struct {
	Date time.Time
	Max  float64
	Min  float64
}

// Headers are the column names used by the table and the CSV export.
var Headers = []string{"date", "max temperature", "min temperature"}

// Table zips the daily series into rows with parsed dates.
func (f *DailyForecast) Table() ([]DayRow, error) {
	d := f.Daily
	if len(d.Temperature2mMax) != len(d.Time) || len(d.Temperature2mMin) != len(d.Time) {
		return nil, fmt.Errorf("daily series length mismatch: time=%d max=%d min=%d",
			len(d.Time), len(d.Temperature2mMax), len(d.Temperature2mMin))
	}

	rows := make([]DayRow, 0, len(d.Time))
	for i, s := range d.Time {
		date, err := time.Parse(DateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q at row %d: %w", s, i, err)
		}
		rows = append(rows, DayRow{
			Date: date,
			Max:  valueOrNaN(d.Temperature2mMax[i]),
			Min:  valueOrNaN(d.Temperature2mMin[i]),
		})
	}
	return rows, nil
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// Strings renders a row as date and temperature cells.
func (r DayRow) Strings() []string {
	return []string{r.Date.Format(DateLayout), FormatTemp(r.Max), FormatTemp(r.Min)}
}

// FormatTemp prints a temperature with at least one decimal place; NaN is
// an empty cell.
func FormatTemp(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// TableRows renders all rows as string cells.
func TableRows(rows []DayRow) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.Strings()
	}
	return out
}
