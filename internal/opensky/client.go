// Package opensky polls the OpenSky Network state vectors and turns them
// into telemetry samples.
package opensky

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/geo"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/units"
)

const defaultURL = "https://opensky-network.org/api/states/all?lamin=24.5&lamax=49.5&lomin=-125&lomax=-66.5"

// state vector indices
const (
	idxICAO24       = 0
	idxTimePosition = 3
	idxLongitude    = 5
	idxLatitude     = 6
	idxBaroAltitude = 7
	idxTrueTrack    = 10
	idxGeoAltitude  = 13
	minStateLen     = 11
)

// Response matches the API payload
type Response struct {
	Time   int64           `json:"time"`
	States [][]interface{} `json:"states"`
}

// Client fetches state vectors over HTTP.
type Client struct {
	URL  string
	HTTP *http.Client
}

func NewClient(url string) *Client {
	if url == "" {
		url = defaultURL
	}
	return &Client{URL: url, HTTP: &http.Client{Timeout: time.Minute}}
}

// FetchStates polls OpenSky and returns one sample per positioned aircraft.
func (c *Client) FetchStates(ctx context.Context) ([]model.TelemetrySample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opensky: unexpected status %s", resp.Status)
	}

	var osResp Response
	if err := json.NewDecoder(resp.Body).Decode(&osResp); err != nil {
		return nil, fmt.Errorf("opensky: decode: %w", err)
	}
	return Samples(osResp), nil
}

// Samples converts state vectors, skipping aircraft without a position.
// Altitude is converted from meters to feet, preferring geometric altitude.
func Samples(resp Response) []model.TelemetrySample {
	out := make([]model.TelemetrySample, 0, len(resp.States))
	for _, s := range resp.States {
		if len(s) < minStateLen {
			continue
		}
		icao, _ := s[idxICAO24].(string)
		lat, okLat := getFloat(s[idxLatitude])
		lon, okLon := getFloat(s[idxLongitude])
		if icao == "" || !okLat || !okLon || !geo.ValidCoordinate(lat, lon) {
			continue
		}

		alt, ok := 0.0, false
		if len(s) > idxGeoAltitude {
			alt, ok = getFloat(s[idxGeoAltitude])
		}
		if !ok {
			alt, _ = getFloat(s[idxBaroAltitude])
		}

		ts := resp.Time
		if tp, ok := getFloat(s[idxTimePosition]); ok {
			ts = int64(tp)
		}
		heading, _ := getFloat(s[idxTrueTrack])

		out = append(out, model.TelemetrySample{
			Vehicle:   strings.TrimSpace(icao),
			Timestamp: time.Unix(ts, 0).UTC(),
			Position: model.Position{
				Latitude:    lat,
				Longitude:   lon,
				AltitudeMSL: units.MetersToFeet(alt),
			},
			Heading: heading,
		})
	}
	return out
}

func getFloat(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
