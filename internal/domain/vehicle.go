package domain

import "strings"

// VehicleRecord is one vehicle as returned by the cars catalog.
// Numeric fields are pointers because the catalog omits them for some vehicles.
type VehicleRecord struct {
	Make           string `json:"make"`
	Model          string `json:"model"`
	Year           *int   `json:"year,omitempty"`
	Class          string `json:"class,omitempty"`
	Drive          string `json:"drive,omitempty"`
	Transmission   string `json:"transmission,omitempty"` // "a" or "m"
	Cylinders      *int   `json:"cylinders,omitempty"`
	FuelType       string `json:"fuelType,omitempty"`
	CityMPG        *int   `json:"cityMpg,omitempty"`
	HighwayMPG     *int   `json:"highwayMpg,omitempty"`
	CombinationMPG *int   `json:"combinationMpg,omitempty"`
}

// DisplayName returns the "<make> <model>" form used for suggestions.
func (v VehicleRecord) DisplayName() string {
	return strings.TrimSpace(v.Make + " " + v.Model)
}

// LookupQuery identifies the vehicle to resolve with an exact lookup.
// Make is optional; a bare Model behaves like the catalog's substring filter.
type LookupQuery struct {
	Make  string `json:"make,omitempty"`
	Model string `json:"model"`
}

// String renders the query for logging.
func (q LookupQuery) String() string {
	if q.Make == "" {
		return q.Model
	}
	return q.Make + "/" + q.Model
}
