// Package view maps vehicle records to the labelled fields shown side by side.
package view

import (
	"strconv"
	"strings"

	"github.com/carcompare/backend/internal/domain"
)

// NotAvailable is shown for any field the catalog did not provide
const NotAvailable = "N/A"

// Spec is one labelled row of a card
type Spec struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Card is the rendered form of one VehicleRecord
type Card struct {
	Title string `json:"title"`
	Year  string `json:"year"`
	Specs []Spec `json:"specs"`
}

// BuildCard renders record. A nil record renders nothing.
func BuildCard(record *domain.VehicleRecord) *Card {
	if record == nil {
		return nil
	}

	return &Card{
		Title: record.DisplayName(),
		Year:  intOrNA(record.Year),
		Specs: []Spec{
			{Label: "Class", Value: stringOrNA(record.Class)},
			{Label: "Drive", Value: stringOrNA(strings.ToUpper(record.Drive))},
			{Label: "Transmission", Value: transmission(record.Transmission)},
			{Label: "Cylinders", Value: intOrNA(record.Cylinders)},
			{Label: "Fuel Type", Value: stringOrNA(record.FuelType)},
			{Label: "City MPG", Value: intOrNA(record.CityMPG)},
			{Label: "Highway MPG", Value: intOrNA(record.HighwayMPG)},
			{Label: "Combined MPG", Value: intOrNA(record.CombinationMPG)},
		},
	}
}

// BuildCards renders a comparison. The result has zero or two cards, like the comparison itself.
func BuildCards(result domain.ComparisonResult) []*Card {
	vehicles := result.Vehicles()
	cards := make([]*Card, 0, len(vehicles))
	for i := range vehicles {
		cards = append(cards, BuildCard(&vehicles[i]))
	}
	return cards
}

// transmission maps the catalog code; only "a" is automatic
func transmission(code string) string {
	if code == "a" {
		return "Automatic"
	}
	return "Manual"
}

func stringOrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

// intOrNA treats zero like a missing value; the catalog reports 0 cylinders
// and 0 MPG for vehicles where the figure does not apply
func intOrNA(n *int) string {
	if n == nil || *n == 0 {
		return NotAvailable
	}
	return strconv.Itoa(*n)
}
