// Package geocode resolves facility addresses to coordinates through a
// Nominatim-compatible endpoint. Lookups are throttled with a courtesy
// delay and callers treat failures as non-fatal.
package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/configuration"
)

var ErrNoResult = errors.New("address not found")

type Geocoder struct {
	baseURL string
	delay   time.Duration
	client  *http.Client
	logger  *logrus.Logger

	mu   sync.Mutex
	last time.Time
}

func New(opts configuration.GeocoderOptions, logger *logrus.Logger) *Geocoder {
	return &Geocoder{
		baseURL: opts.BaseURL,
		delay:   opts.Delay,
		client:  &http.Client{Timeout: opts.Timeout},
		logger:  logger,
	}
}

type result struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Forward resolves an address to coordinates. Requests are serialized and
// spaced by the configured delay.
func (g *Geocoder) Forward(ctx context.Context, address string) (float64, float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if wait := g.delay - time.Since(g.last); wait > 0 {
		select {
		case <-ctx.Done():
			return 0, 0, ctx.Err()
		case <-time.After(wait):
		}
	}
	g.last = time.Now()

	endpoint := g.baseURL + "?format=json&limit=1&q=" + url.QueryEscape(address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, errors.Wrap(err, "build geocode request")
	}
	req.Header.Set("User-Agent", "ambassador-crm")

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, 0, errors.Wrap(err, "geocode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, errors.Errorf("geocode status %d", resp.StatusCode)
	}

	var results []result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, errors.Wrap(err, "decode geocode response")
	}
	if len(results) == 0 {
		return 0, 0, ErrNoResult
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, errors.Wrap(err, "parse latitude")
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, errors.Wrap(err, "parse longitude")
	}
	return lat, lon, nil
}
