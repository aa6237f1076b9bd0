package domain

import "errors"

var (
	// ErrValidation is returned when a comparison is requested without both vehicles
	ErrValidation = errors.New("both vehicles required")

	// ErrEmptyMatch is returned when the catalog has no record for a requested vehicle
	ErrEmptyMatch = errors.New("no catalog match for vehicle")

	// ErrCatalogAPIFailure is returned when a cars catalog request fails
	ErrCatalogAPIFailure = errors.New("cars catalog request failed")

	// ErrMalformedResponse is returned when the catalog answers with a body that cannot be decoded
	ErrMalformedResponse = errors.New("malformed catalog response")

	// ErrComparisonBusy is returned when a comparison is already in flight for a session
	ErrComparisonBusy = errors.New("comparison already in progress")

	// ErrInvalidSlot is returned for a slot other than A or B
	ErrInvalidSlot = errors.New("invalid suggestion slot")

	// ErrSessionNotFound is returned when a session id is unknown or expired
	ErrSessionNotFound = errors.New("session not found")
)

// User-facing messages shown for each comparison failure category.
const (
	MessageValidation = "Please select both vehicles to compare."
	MessageEmptyMatch = "Could not find data for one or both vehicles. Please use the suggestions to select a valid model."
	MessageNetwork    = "An error occurred while fetching vehicle data. Please try again later."
)

// IsNetworkError reports whether err belongs to the transport/HTTP/parse category.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrCatalogAPIFailure) || errors.Is(err, ErrMalformedResponse)
}

// UserMessage returns the message to show for a comparison error.
// Anything that is neither a validation nor an empty-match error is reported as a network failure.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return MessageValidation
	case errors.Is(err, ErrEmptyMatch):
		return MessageEmptyMatch
	default:
		return MessageNetwork
	}
}
