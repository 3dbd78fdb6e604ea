package location

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/agenthands/cartoonist/internal/core/model"
	"github.com/agenthands/cartoonist/internal/logging"
)

const DefaultTimeout = 10 * time.Second

// Request carries every source the host can offer. All fields are optional.
type Request struct {
	Manual   string             `json:"manual,omitempty"`
	Device   *model.Coordinates `json:"device,omitempty"`
	ClientIP string             `json:"client_ip,omitempty"`
}

type Resolver struct {
	geocoder Geocoder
	network  NetworkLocator
	timeout  time.Duration
	logger   *log.Logger
}

// NewResolver accepts a nil network locator; the network step is then skipped.
func NewResolver(geocoder Geocoder, network NetworkLocator, timeout time.Duration, logger *log.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		geocoder: geocoder,
		network:  network,
		timeout:  timeout,
		logger:   logging.OrDiscard(logger),
	}
}

// Resolve walks manual text, then device coordinates, then the network
// estimate. Provider failures are misses, never errors.
func (r *Resolver) Resolve(ctx context.Context, req Request) (model.Location, error) {
	if text := strings.TrimSpace(req.Manual); text != "" {
		if loc, ok := r.fromManual(ctx, text); ok {
			return loc, nil
		}
	}

	if req.Device != nil {
		coords := *req.Device
		coords.Source = model.ProvenanceDevice
		if loc, ok := r.reverse(ctx, coords); ok {
			return loc, nil
		}
	}

	if r.network != nil {
		if loc, ok := r.fromNetwork(ctx, req.ClientIP); ok {
			return loc, nil
		}
	}

	return model.Location{}, ErrNotFound
}

func (r *Resolver) fromManual(ctx context.Context, text string) (model.Location, bool) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	coords, err := r.geocoder.Forward(cctx, text)
	cancel()
	if err != nil || coords == nil {
		r.logger.Warn("forward geocoding missed", "query", text, "err", err)
		return model.Location{}, false
	}

	c := *coords
	c.Source = model.ProvenanceManual
	return r.reverse(ctx, c)
}

func (r *Resolver) fromNetwork(ctx context.Context, ip string) (model.Location, bool) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	fix, err := r.network.Locate(cctx, ip)
	cancel()
	if err != nil || fix == nil {
		r.logger.Warn("network location missed", "ip", ip, "err", err)
		return model.Location{}, false
	}

	coords := model.Coordinates{
		Latitude:  fix.Latitude,
		Longitude: fix.Longitude,
		Source:    model.ProvenanceNetwork,
	}
	if fix.City != "" && fix.Country != "" {
		addr := model.Address{
			City:        fix.City,
			Region:      fix.Region,
			Country:     fix.Country,
			CountryCode: strings.ToUpper(fix.CountryCode),
		}
		addr.Display = Format(addr)
		return model.Location{Coordinates: coords, Address: addr}, true
	}
	return r.reverse(ctx, coords)
}

func (r *Resolver) reverse(ctx context.Context, coords model.Coordinates) (model.Location, bool) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.geocoder.Reverse(cctx, coords.Latitude, coords.Longitude)
	if err != nil || raw == nil {
		r.logger.Warn("reverse geocoding missed",
			"source", coords.Source, "lat", coords.Latitude, "lon", coords.Longitude, "err", err)
		return model.Location{}, false
	}
	return model.Location{Coordinates: coords, Address: ToAddress(*raw)}, true
}
