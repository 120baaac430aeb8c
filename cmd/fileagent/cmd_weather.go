package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"fileagent/internal/ui"
	"fileagent/internal/weather"

	"github.com/spf13/cobra"
)

var (
	weatherLat       float64
	weatherLon       float64
	weatherDays      int
	weatherName      string
	weatherCSV       string
	weatherChart     string
	weatherLocations []string
)

// weatherCmd fetches past daily temperatures and exports them
var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Fetch past daily temperatures from Open-Meteo and export them",
	Long: `Fetches daily max/min temperatures for the past days, prints them as a
table, saves a line chart and writes a CSV file.

Examples:
  fileagent weather
  fileagent weather --name Berlin --lat 52.52 --lon 13.405 --days 14
  fileagent weather --location Paris:48.8566:2.3522 --location Tokyo:35.68:139.69`,
	Args: cobra.NoArgs,
	RunE: runWeather,
}

func init() {
	weatherCmd.Flags().Float64Var(&weatherLat, "lat", 0, "Latitude (default from config)")
	weatherCmd.Flags().Float64Var(&weatherLon, "lon", 0, "Longitude (default from config)")
	weatherCmd.Flags().IntVar(&weatherDays, "days", 0, "Number of past days (default from config)")
	weatherCmd.Flags().StringVar(&weatherName, "name", "", "Location name used in the chart title")
	weatherCmd.Flags().StringVar(&weatherCSV, "csv", "", "CSV output path")
	weatherCmd.Flags().StringVar(&weatherChart, "chart", "", "Chart output path (.png, .svg, .pdf)")
	weatherCmd.Flags().StringArrayVar(&weatherLocations, "location", nil, "Location as name:lat:lon, fetched concurrently (repeatable)")
}

func runWeather(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	out := cmd.OutOrStdout()

	wc := cfg.Weather
	if cmd.Flags().Changed("lat") {
		wc.Latitude = weatherLat
	}
	if cmd.Flags().Changed("lon") {
		wc.Longitude = weatherLon
	}
	if weatherDays > 0 {
		wc.Days = weatherDays
	}
	if weatherName != "" {
		wc.Location = weatherName
	}
	if weatherCSV != "" {
		wc.CSVPath = weatherCSV
	}
	if weatherChart != "" {
		wc.ChartPath = weatherChart
	}

	client := weather.NewClient(wc.BaseURL, &http.Client{Timeout: cfg.GetWeatherTimeout()})
	end := time.Now()
	start := end.AddDate(0, 0, -wc.Days)

	if len(weatherLocations) > 0 {
		return runWeatherMany(ctx, out, client, wc.CSVPath, start, end)
	}

	params := weather.LastWeek(wc.Latitude, wc.Longitude, end)
	params.StartDate = start
	forecast, err := client.Daily(ctx, params)
	if err != nil {
		return err
	}
	rows, err := forecast.Table()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, ui.Table(weather.Headers, weather.TableRows(rows)))

	title := fmt.Sprintf("%s Weather - Past %d Days", wc.Location, wc.Days)
	if err := weather.WriteChart(wc.ChartPath, title, rows); err != nil {
		return err
	}
	if err := weather.WriteCSV(wc.CSVPath, rows); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nChart saved to %s\n", wc.ChartPath)
	fmt.Fprintf(out, "\nData saved to %s\n", wc.CSVPath)
	return nil
}

// runWeatherMany fetches every --location concurrently and writes one CSV per
// location next to csvPath.
func runWeatherMany(ctx context.Context, out io.Writer, client *weather.Client, csvPath string, start, end time.Time) error {
	locs := make([]weather.Location, 0, len(weatherLocations))
	for _, s := range weatherLocations {
		loc, err := weather.ParseLocation(s)
		if err != nil {
			return err
		}
		locs = append(locs, loc)
	}

	results, err := client.FetchMany(ctx, locs, start, end)
	if err != nil {
		return err
	}

	dir := filepath.Dir(csvPath)
	for _, r := range results {
		fmt.Fprintf(out, "%s:\n", r.Location.Name)
		fmt.Fprintln(out, ui.Table(weather.Headers, weather.TableRows(r.Rows)))

		path := filepath.Join(dir, locationSlug(r.Location.Name)+"_weather.csv")
		if err := weather.WriteCSV(path, r.Rows); err != nil {
			return err
		}
		fmt.Fprintf(out, "Data saved to %s\n\n", path)
	}
	return nil
}

func locationSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
