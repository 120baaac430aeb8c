// Package weather fetches daily and current readings from the Open-Meteo
// forecast API and exports them as tables, CSV files and charts.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fileagent/internal/logging"
)

// DefaultBaseURL is the Open-Meteo API root.
const DefaultBaseURL = "https://api.open-meteo.com/v1"

// DateLayout is the date format used by the API and all exports.
const DateLayout = "2006-01-02"

// maxBodySize caps API responses.
const maxBodySize = 5 * 1024 * 1024

// Params selects a location and an inclusive date range.
type Params struct {
	Latitude  float64
	Longitude float64
	StartDate time.Time
	EndDate   time.Time
}

// LastWeek returns the range from seven days before now through now.
func LastWeek(lat, lon float64, now time.Time) Params {
	return Params{
		Latitude:  lat,
		Longitude: lon,
		StartDate: now.AddDate(0, 0, -7),
		EndDate:   now,
	}
}

// CurrentWeather is the "current" block of a forecast response.
type CurrentWeather struct {
	Time          string  `json:"time"`
	Interval      int     `json:"interval"`
	Temperature2m float64 `json:"temperature_2m"`
	WindSpeed10m  float64 `json:"wind_speed_10m"`
}

// StatusError is returned for non-200 API responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("open-meteo request failed with status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the Open-Meteo forecast endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client. An empty baseURL uses DefaultBaseURL and a nil
// httpClient gets a 30 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Daily fetches daily max and min temperatures for p.
func (c *Client) Daily(ctx context.Context, p Params) (*DailyForecast, error) {
	q := coords(p.Latitude, p.Longitude)
	q.Set("start_date", p.StartDate.Format(DateLayout))
	q.Set("end_date", p.EndDate.Format(DateLayout))
	q.Set("daily", "temperature_2m_max,temperature_2m_min")

	var out DailyForecast
	if err := c.get(ctx, q, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch daily weather: %w", err)
	}
	logging.Weather("Fetched %d daily readings for %.4f,%.4f", len(out.Daily.Time), p.Latitude, p.Longitude)
	return &out, nil
}

// Current fetches the current temperature and wind speed at a location.
func (c *Client) Current(ctx context.Context, lat, lon float64) (*CurrentWeather, error) {
	q := coords(lat, lon)
	q.Set("current", "temperature_2m,wind_speed_10m")
	q.Set("hourly", "temperature_2m,relative_humidity_2m,wind_speed_10m")

	var out struct {
		Current *CurrentWeather `json:"current"`
	}
	if err := c.get(ctx, q, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch current weather: %w", err)
	}
	if out.Current == nil {
		return nil, fmt.Errorf("failed to fetch current weather: response has no current block")
	}
	logging.Weather("Current weather at %.4f,%.4f: %.1f°C", lat, lon, out.Current.Temperature2m)
	return out.Current, nil
}

func (c *Client) get(ctx context.Context, q url.Values, v interface{}) error {
	endpoint := c.baseURL + "/forecast?" + encodeQuery(q)
	logging.WeatherDebug("GET %s", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func coords(lat, lon float64) url.Values {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	return q
}

// encodeQuery keeps the comma separated variable lists readable.
func encodeQuery(q url.Values) string {
	return strings.ReplaceAll(q.Encode(), "%2C", ",")
}
