package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/agenthands/cartoonist/internal/core/location"
	"github.com/agenthands/cartoonist/internal/core/model"
)

// Nominatim talks to the OpenStreetMap geocoding API. The public instance
// allows one request per second and requires an identifying User-Agent.
type Nominatim struct {
	baseURL   string
	userAgent string
	language  string
	client    *http.Client
	limiter   *rate.Limiter
}

type NominatimOptions struct {
	BaseURL           string
	UserAgent         string
	Language          string
	RequestsPerSecond float64
	Timeout           time.Duration
}

func NewNominatim(opts NominatimOptions) *Nominatim {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "cartoonist/1.0"
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Nominatim{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		language:  opts.Language,
		client:    &http.Client{Timeout: opts.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
	}
}

type nominatimPlace struct {
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error"`
}

// Forward returns nil when the query matches nothing.
func (n *Nominatim) Forward(ctx context.Context, text string) (*model.Coordinates, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("format", "json")
	q.Set("limit", "1")
	n.setLanguage(q)

	var places []nominatimPlace
	if err := n.get(ctx, "/search", q, &places); err != nil {
		return nil, fmt.Errorf("nominatim search: %w", err)
	}
	if len(places) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim search: bad lat %q", places[0].Lat)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim search: bad lon %q", places[0].Lon)
	}
	return &model.Coordinates{Latitude: lat, Longitude: lon}, nil
}

// Reverse returns nil when the point has no address (open sea, for instance).
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (*location.RawAddress, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("addressdetails", "1")
	n.setLanguage(q)

	var place nominatimPlace
	if err := n.get(ctx, "/reverse", q, &place); err != nil {
		return nil, fmt.Errorf("nominatim reverse: %w", err)
	}
	if place.Error != "" || len(place.Address) == 0 {
		return nil, nil
	}
	return &location.RawAddress{DisplayName: place.DisplayName, Details: place.Address}, nil
}

func (n *Nominatim) setLanguage(q url.Values) {
	if n.language != "" {
		q.Set("accept-language", n.language)
	}
}

func (n *Nominatim) get(ctx context.Context, path string, q url.Values, out any) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return getJSON(ctx, n.client, n.baseURL+path+"?"+q.Encode(), n.userAgent, out)
}
