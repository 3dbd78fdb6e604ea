package location

import (
	"context"
	"errors"
	"strings"

	"github.com/agenthands/cartoonist/internal/core/model"
)

// ErrNotFound means every source in the chain missed. It is the only error
// Resolve returns.
var ErrNotFound = errors.New("location not found")

const UnknownLocation = "Unknown Location"

// RawAddress is a reverse-geocoding answer: the provider's display name plus
// Nominatim-style address details (city, town, state, country_code, ...).
type RawAddress struct {
	DisplayName string
	Details     map[string]string
}

// NetworkFix is an IP-based estimate. City and Country may be empty.
type NetworkFix struct {
	Latitude    float64
	Longitude   float64
	City        string
	Region      string
	Country     string
	CountryCode string
}

// Geocoder returns (nil, nil) for "no result".
type Geocoder interface {
	Forward(ctx context.Context, text string) (*model.Coordinates, error)
	Reverse(ctx context.Context, lat, lon float64) (*RawAddress, error)
}

// NetworkLocator estimates coordinates for a client IP; empty ip means the
// caller's own public address.
type NetworkLocator interface {
	Locate(ctx context.Context, ip string) (*NetworkFix, error)
}

// ToAddress normalizes raw details so City and Country are never empty.
func ToAddress(raw RawAddress) model.Address {
	pick := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(raw.Details[k]); v != "" {
				return v
			}
		}
		return ""
	}

	return model.Address{
		City:        orUnknown(pick("city", "town", "village", "municipality")),
		Region:      pick("state", "region", "province"),
		Country:     orUnknown(pick("country")),
		CountryCode: strings.ToUpper(pick("country_code")),
		Display:     raw.DisplayName,
	}
}

// Format joins the present city, region and country with ", ".
func Format(addr model.Address) string {
	var parts []string
	for _, p := range []string{addr.City, addr.Region, addr.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return UnknownLocation
	}
	return strings.Join(parts, ", ")
}

func orUnknown(s string) string {
	if s == "" {
		return model.UnknownPlace
	}
	return s
}
