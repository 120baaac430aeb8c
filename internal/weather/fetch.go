package weather

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches bounds FetchMany.
const maxConcurrentFetches = 4

// Location is a named coordinate pair.
type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// ParseLocation parses "name:lat:lon".
func ParseLocation(s string) (Location, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || strings.TrimSpace(parts[0]) == "" {
		return Location{}, fmt.Errorf("invalid location %q (want name:lat:lon)", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return Location{}, fmt.Errorf("invalid latitude in %q", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil || lon < -180 || lon > 180 {
		return Location{}, fmt.Errorf("invalid longitude in %q", s)
	}
	return Location{Name: strings.TrimSpace(parts[0]), Latitude: lat, Longitude: lon}, nil
}

// LocationForecast pairs a location with its daily rows.
type LocationForecast struct {
	Location Location
	Rows     []DayRow
}

// FetchMany fetches the same date range for several locations concurrently.
// Results keep the input order; the first failure cancels the rest.
func (c *Client) FetchMany(ctx context.Context, locs []Location, start, end time.Time) ([]LocationForecast, error) {
	out := make([]LocationForecast, len(locs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentFetches)

	for i, loc := range locs {
		i, loc := i, loc
		eg.Go(func() error {
			f, err := c.Daily(egCtx, Params{
				Latitude:  loc.Latitude,
				Longitude: loc.Longitude,
				StartDate: start,
				EndDate:   end,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", loc.Name, err)
			}
			rows, err := f.Table()
			if err != nil {
				return fmt.Errorf("%s: %w", loc.Name, err)
			}
			out[i] = LocationForecast{Location: loc, Rows: rows}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
