package geocode

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

	"golang.org/x/time/rate"

	"strays/internal/domain"
)

// NominatimConfig configures the upstream client.
type NominatimConfig struct {
	BaseURL        string
	UserAgent      string
	RequestsPerSec float64
	Timeout        time.Duration
	HTTPClient     *http.Client
}

// Nominatim is a throttled client for the /search endpoint.
type Nominatim struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

func NewNominatim(cfg NominatimConfig) *Nominatim {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}
	return &Nominatim{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      client,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Lookup returns the best match for query. It waits for the shared rate
// limiter first, so a cancelled ctx aborts queued lookups.
func (n *Nominatim) Lookup(ctx context.Context, query, country string) (domain.Point, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return domain.Point{}, fmt.Errorf("nominatim: throttle: %w", err)
	}

	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	params.Set("q", query)
	if cc := strings.ToLower(strings.TrimSpace(country)); cc != "" {
		params.Set("countrycodes", cc)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return domain.Point{}, fmt.Errorf("nominatim: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	resp, err := n.http.Do(req)
	if err != nil {
		return domain.Point{}, fmt.Errorf("nominatim: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Point{}, fmt.Errorf("nominatim: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.Point{}, fmt.Errorf("nominatim: decode response: %w", err)
	}
	if len(places) == 0 {
		return domain.Point{}, ErrNotFound
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return domain.Point{}, fmt.Errorf("nominatim: parse lat %q: %w", places[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return domain.Point{}, fmt.Errorf("nominatim: parse lon %q: %w", places[0].Lon, err)
	}
	p := domain.Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return domain.Point{}, fmt.Errorf("nominatim: coordinates out of range: %v", p)
	}
	return p, nil
}
