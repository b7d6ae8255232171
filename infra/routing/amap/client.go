// Package amap resolves driving routes with the Amap (Gaode) v5 direction API.
package amap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"golang.org/x/time/rate"

	"github.com/kilianp07/powerfleet/core/routing"
)

const (
	DefaultBaseURL  = "https://restapi.amap.com/v5/direction/driving"
	DefaultStrategy = 32
	DefaultQPS      = 3.0
	DefaultTimeout  = 5
)

// Config holds the provider settings.
type Config struct {
	APIKey         string  `json:"api_key"`
	BaseURL        string  `json:"base_url"`
	Strategy       int     `json:"strategy"`
	QPS            float64 `json:"qps"`
	TimeoutSeconds int     `json:"timeout_seconds"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Strategy == 0 {
		c.Strategy = DefaultStrategy
	}
	if c.QPS == 0 {
		c.QPS = DefaultQPS
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeout
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("amap: api_key is required")
	}
	if c.QPS < 0 {
		return fmt.Errorf("amap: qps must be non-negative")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("amap: timeout_seconds must be non-negative")
	}
	return nil
}

// APIError is returned when Amap answers with a non success status.
type APIError struct {
	Info     string
	InfoCode string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("amap: %s (code %s)", e.Info, e.InfoCode)
}

// Client implements routing.Provider.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a client. A QPS of zero after defaults disables limiting.
func New(cfg Config) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	limit := rate.Limit(cfg.QPS)
	if cfg.QPS <= 0 {
		limit = rate.Inf
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

type response struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	InfoCode string `json:"infocode"`
	Route    struct {
		Paths []struct {
			Distance string `json:"distance"`
			Duration string `json:"duration"`
			Cost     struct {
				Duration string `json:"duration"`
			} `json:"cost"`
			Steps []struct {
				Polyline string `json:"polyline"`
			} `json:"steps"`
		} `json:"paths"`
	} `json:"route"`
}

// Route queries the driving route between two points.
func (c *Client) Route(ctx context.Context, from, to orb.Point) (routing.Leg, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return routing.Leg{}, err
	}
	q := url.Values{}
	q.Set("key", c.cfg.APIKey)
	q.Set("origin", formatPoint(from))
	q.Set("destination", formatPoint(to))
	q.Set("strategy", strconv.Itoa(c.cfg.Strategy))
	q.Set("show_fields", "cost,polyline")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return routing.Leg{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return routing.Leg{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return routing.Leg{}, fmt.Errorf("amap: unexpected status %s", resp.Status)
	}
	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return routing.Leg{}, fmt.Errorf("amap: decode response: %w", err)
	}
	if body.Status != "1" {
		return routing.Leg{}, &APIError{Info: body.Info, InfoCode: body.InfoCode}
	}
	if len(body.Route.Paths) == 0 {
		return routing.Leg{}, routing.ErrNoRoute
	}

	p := body.Route.Paths[0]
	dur := p.Cost.Duration
	if dur == "" {
		dur = p.Duration
	}
	seconds, err := strconv.ParseFloat(dur, 64)
	if err != nil {
		return routing.Leg{}, fmt.Errorf("amap: duration %q: %w", dur, err)
	}
	leg := routing.Leg{DurationSeconds: seconds}
	if p.Distance != "" {
		if leg.DistanceMeters, err = strconv.ParseFloat(p.Distance, 64); err != nil {
			return routing.Leg{}, fmt.Errorf("amap: distance %q: %w", p.Distance, err)
		}
	}
	for _, s := range p.Steps {
		pts, err := ParsePolyline(s.Polyline)
		if err != nil {
			return routing.Leg{}, err
		}
		leg.Path = append(leg.Path, pts...)
	}
	return leg, nil
}

func formatPoint(p orb.Point) string {
	return strconv.FormatFloat(p.Lon(), 'f', 6, 64) + "," + strconv.FormatFloat(p.Lat(), 'f', 6, 64)
}

var errPolyline = errors.New("amap: malformed polyline")

// ParsePolyline decodes "lng,lat;lng,lat" into points.
func ParsePolyline(s string) (orb.LineString, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ";")
	ls := make(orb.LineString, 0, len(parts))
	for _, part := range parts {
		lng, lat, ok := strings.Cut(part, ",")
		if !ok {
			return nil, fmt.Errorf("%w: %q", errPolyline, part)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errPolyline, part)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errPolyline, part)
		}
		ls = append(ls, orb.Point{x, y})
	}
	return ls, nil
}
