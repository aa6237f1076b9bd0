package carsapi

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/carcompare/backend/internal/domain"
)

// Car is one element of the /v1/cars response
type Car struct {
	Make           string  `json:"make"`
	Model          string  `json:"model"`
	Year           flexInt `json:"year"`
	Class          string  `json:"class"`
	Drive          string  `json:"drive"`
	Transmission   string  `json:"transmission"`
	Cylinders      flexInt `json:"cylinders"`
	FuelType       string  `json:"fuel_type"`
	CityMPG        flexInt `json:"city_mpg"`
	HighwayMPG     flexInt `json:"highway_mpg"`
	CombinationMPG flexInt `json:"combination_mpg"`
}

// flexInt decodes a JSON number or numeric string. Anything else, including the
// "premium subscribers only" placeholder some plans return, decodes as absent.
type flexInt struct {
	value *int
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		f.value = nil
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		if fl, ferr := strconv.ParseFloat(raw, 64); ferr == nil && fl >= math.MinInt32 && fl <= math.MaxInt32 {
			n = int(fl)
		} else {
			f.value = nil
			return nil
		}
	}
	f.value = &n
	return nil
}

// MapToVehicleRecord converts a catalog car to our domain VehicleRecord
func MapToVehicleRecord(car Car) domain.VehicleRecord {
	return domain.VehicleRecord{
		Make:           car.Make,
		Model:          car.Model,
		Year:           car.Year.value,
		Class:          car.Class,
		Drive:          car.Drive,
		Transmission:   car.Transmission,
		Cylinders:      car.Cylinders.value,
		FuelType:       car.FuelType,
		CityMPG:        car.CityMPG.value,
		HighwayMPG:     car.HighwayMPG.value,
		CombinationMPG: car.CombinationMPG.value,
	}
}

// MapToVehicleRecords converts a whole response, preserving catalog order
func MapToVehicleRecords(cars []Car) []domain.VehicleRecord {
	records := make([]domain.VehicleRecord, 0, len(cars))
	for _, car := range cars {
		records = append(records, MapToVehicleRecord(car))
	}
	return records
}

// MapToSuggestions turns search results into display entries, one per record
// in catalog order. The catalog lists every model year separately, so the same
// display string can appear more than once.
func MapToSuggestions(records []domain.VehicleRecord) []domain.Suggestion {
	suggestions := make([]domain.Suggestion, 0, len(records))
	for _, r := range records {
		display := r.DisplayName()
		suggestions = append(suggestions, domain.Suggestion{
			Display: display,
			Make:    r.Make,
			Model:   r.Model,
		})
	}
	return suggestions
}
