package model

// Provenance records which source produced a set of coordinates.
type Provenance string

const (
	ProvenanceManual  Provenance = "manual"
	ProvenanceDevice  Provenance = "device"
	ProvenanceNetwork Provenance = "network"
)

// UnknownPlace is substituted for missing city/country values. Prompts interpolate
// these fields directly, so they are never left empty.
const UnknownPlace = "Unknown"

type Coordinates struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
	Source    Provenance `json:"source"`
}

type Address struct {
	City        string `json:"city"`
	Region      string `json:"region"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	Display     string `json:"display"`
}

// Location is the resolved (coordinates, address) pair.
type Location struct {
	Coordinates Coordinates `json:"coordinates"`
	Address     Address     `json:"address"`
}

// Label is the "City, Country" string used in prompts and storage keys.
func (l Location) Label() string {
	return l.Address.City + ", " + l.Address.Country
}
