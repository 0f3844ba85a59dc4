package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Geocoding via a Nominatim-compatible HTTP API. A failed lookup is never
// fatal: listings are saved with zero coordinates and can be re-geocoded
// later.

var geocodeClient = &http.Client{Timeout: 5 * time.Second}

type GeocodeResult struct {
	Lat float64
	Lng float64
}

// GeocodeAddress resolves a free-form address to coordinates using the
// endpoint in GEOCODER_URL (default: the public Nominatim instance).
func GeocodeAddress(query string) (*GeocodeResult, error) {
	endpoint := os.Getenv("GEOCODER_URL")
	if endpoint == "" {
		endpoint = "https://nominatim.openstreetmap.org/search"
	}

	req, err := http.NewRequest("GET", endpoint+"?format=json&limit=1&q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "gohost-server")

	res, err := geocodeClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != 200 {
		return nil, fmt.Errorf("geocoder returned status %d", res.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(res.Body).Decode(&results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no results for %q", query)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, err
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, err
	}

	return &GeocodeResult{Lat: lat, Lng: lng}, nil
}
