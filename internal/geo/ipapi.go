package geo

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/agenthands/cartoonist/internal/core/location"
)

// IPAPI locates an address with an ip-api.com compatible JSON endpoint.
type IPAPI struct {
	baseURL string
	client  *http.Client
}

func NewIPAPI(baseURL string, timeout time.Duration) *IPAPI {
	if baseURL == "" {
		baseURL = "http://ip-api.com/json"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IPAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type ipapiResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	City        string  `json:"city"`
	RegionName  string  `json:"regionName"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
}

// Locate looks up ip, or the caller's own public address when ip is empty,
// private or loopback.
func (c *IPAPI) Locate(ctx context.Context, ip string) (*location.NetworkFix, error) {
	url := c.baseURL
	if public(ip) {
		url += "/" + ip
	}

	var resp ipapiResponse
	if err := getJSON(ctx, c.client, url, "", &resp); err != nil {
		return nil, fmt.Errorf("ip-api: %w", err)
	}
	if resp.Status != "success" {
		return nil, nil
	}
	return &location.NetworkFix{
		Latitude:    resp.Lat,
		Longitude:   resp.Lon,
		City:        resp.City,
		Region:      resp.RegionName,
		Country:     resp.Country,
		CountryCode: resp.CountryCode,
	}, nil
}

func public(ip string) bool {
	addr := net.ParseIP(strings.TrimSpace(ip))
	if addr == nil {
		return false
	}
	return !addr.IsLoopback() && !addr.IsPrivate() && !addr.IsUnspecified() && !addr.IsLinkLocalUnicast()
}
