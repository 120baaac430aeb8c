package weather

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dailyBody = `{
	"latitude": 48.84,
	"longitude": 2.3599997,
	"timezone": "GMT",
	"elevation": 46.0,
	"daily_units": {"time": "iso8601", "temperature_2m_max": "°C", "temperature_2m_min": "°C"},
	"daily": {
		"time": ["2026-01-27", "2026-01-28", "2026-01-29"],
		"temperature_2m_max": [10.0, 8.3, null],
		"temperature_2m_min": [5.1, 2.9, 0.3]
	}
}`

func TestClient_Daily(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		query = r.URL.RawQuery
		w.Write([]byte(dailyBody))
	}))
	defer server.Close()

	now := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	client := NewClient(server.URL, server.Client())
	f, err := client.Daily(context.Background(), LastWeek(48.8566, 2.3522, now))
	require.NoError(t, err)

	assert.Contains(t, query, "latitude=48.8566")
	assert.Contains(t, query, "longitude=2.3522")
	assert.Contains(t, query, "start_date=2026-01-27")
	assert.Contains(t, query, "end_date=2026-02-03")
	assert.Contains(t, query, "daily=temperature_2m_max,temperature_2m_min")
	assert.Equal(t, "GMT", f.Timezone)

	rows, err := f.Table()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, 10.0, rows[0].Max)
	assert.True(t, math.IsNaN(rows[2].Max))
	assert.Equal(t, 0.3, rows[2].Min)
}

func TestClient_Daily_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": true, "reason": "Parameter 'start_date' is out of allowed range"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, nil).Daily(context.Background(), LastWeek(0, 0, time.Now()))
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "out of allowed range")
}

func TestClient_Current(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "temperature_2m,wind_speed_10m", q.Get("current"))
		assert.Equal(t, "temperature_2m,relative_humidity_2m,wind_speed_10m", q.Get("hourly"))
		w.Write([]byte(`{
			"current": {"time": "2026-02-07T08:15", "interval": 900, "temperature_2m": 11.6, "wind_speed_10m": 14.1},
			"hourly": {"time": ["2026-02-07T00:00"], "temperature_2m": [9.1]}
		}`))
	}))
	defer server.Close()

	cur, err := NewClient(server.URL, nil).Current(context.Background(), 40.7128, -74.006)
	require.NoError(t, err)
	want := &CurrentWeather{Time: "2026-02-07T08:15", Interval: 900, Temperature2m: 11.6, WindSpeed10m: 14.1}
	if diff := cmp.Diff(want, cur); diff != "" {
		t.Errorf("Current() mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_Current_MissingBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latitude": 1}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, nil).Current(context.Background(), 1, 1)
	assert.Error(t, err)
}

func TestDailyForecast_Table_Mismatch(t *testing.T) {
	v := 1.0
	f := &DailyForecast{Daily: DailySeries{
		Time:             []string{"2026-01-01", "2026-01-02"},
		Temperature2mMax: []*float64{&v},
		Temperature2mMin: []*float64{&v, &v},
	}}
	_, err := f.Table()
	assert.Error(t, err)

	f.Daily.Temperature2mMax = []*float64{&v, &v}
	f.Daily.Time[1] = "02/01/2026"
	_, err = f.Table()
	assert.Error(t, err)
}

func TestFormatTemp(t *testing.T) {
	assert.Equal(t, "10.0", FormatTemp(10))
	assert.Equal(t, "8.3", FormatTemp(8.3))
	assert.Equal(t, "-0.5", FormatTemp(-0.5))
	assert.Equal(t, "", FormatTemp(math.NaN()))
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "paris_weather.csv")
	rows := []DayRow{
		{Date: time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC), Max: 10, Min: 5.1},
		{Date: time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC), Max: math.NaN(), Min: 2.9},
	}
	require.NoError(t, WriteCSV(path, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "date,max temperature,min temperature\n2026-01-27,10.0,5.1\n2026-01-28,,2.9\n"
	assert.Equal(t, want, string(data))
}

func TestWriteChart(t *testing.T) {
	dir := t.TempDir()
	rows := []DayRow{
		{Date: time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC), Max: 10, Min: 5.1},
		{Date: time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC), Max: 8.3, Min: math.NaN()},
		{Date: time.Date(2026, 1, 29, 0, 0, 0, 0, time.UTC), Max: 5, Min: 0.3},
	}
	path := filepath.Join(dir, "weather_chart.png")
	require.NoError(t, WriteChart(path, "Paris Weather - Past 7 Days", rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\x89PNG"))

	assert.ErrorIs(t, WriteChart(filepath.Join(dir, "empty.png"), "x", nil), ErrNoRows)
}

func TestParseLocation(t *testing.T) {
	loc, err := ParseLocation("Paris:48.8566:2.3522")
	require.NoError(t, err)
	assert.Equal(t, Location{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522}, loc)

	for _, bad := range []string{"Paris", ":1:2", "Paris:abc:2", "Paris:91:2", "Paris:1:181"} {
		_, err := ParseLocation(bad)
		assert.Error(t, err, bad)
	}
}

func TestClient_FetchMany(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		lat := r.URL.Query().Get("latitude")
		w.Write([]byte(`{"daily": {"time": ["2026-01-27"], "temperature_2m_max": [` + lat + `], "temperature_2m_min": [0]}}`))
	}))
	defer server.Close()

	locs := []Location{{Name: "A", Latitude: 1}, {Name: "B", Latitude: 2}, {Name: "C", Latitude: 3}, {Name: "D", Latitude: 4}, {Name: "E", Latitude: 5}}
	now := time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC)
	got, err := NewClient(server.URL, nil).FetchMany(context.Background(), locs, now, now)
	require.NoError(t, err)

	require.Len(t, got, 5)
	for i, lf := range got {
		assert.Equal(t, locs[i].Name, lf.Location.Name)
		assert.Equal(t, locs[i].Latitude, lf.Rows[0].Max)
	}
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestClient_FetchMany_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("latitude") == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"daily": {"time": [], "temperature_2m_max": [], "temperature_2m_min": []}}`))
	}))
	defer server.Close()

	locs := []Location{{Name: "A", Latitude: 1}, {Name: "B", Latitude: 2}}
	_, err := NewClient(server.URL, nil).FetchMany(context.Background(), locs, time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "B:")
}
