package domain

import "errors"

// ComparisonState is the phase of a single comparison attempt.
type ComparisonState string

const (
	StateIdle         ComparisonState = "idle"
	StateValidating   ComparisonState = "validating"
	StateFetching     ComparisonState = "fetching"
	StateInvalid      ComparisonState = "invalid"
	StateSuccess      ComparisonState = "success"
	StateEmptyMatch   ComparisonState = "empty_match"
	StateNetworkError ComparisonState = "network_error"
)

// ComparisonResult holds either two vehicles or an error message, never both.
// The zero value is the cleared result.
type ComparisonResult struct {
	vehicles []VehicleRecord
	err      error
}

// NewComparison builds a successful result from both records.
func NewComparison(a, b VehicleRecord) ComparisonResult {
	return ComparisonResult{vehicles: []VehicleRecord{a, b}}
}

// FailedComparison builds a result carrying only err.
func FailedComparison(err error) ComparisonResult {
	return ComparisonResult{err: err}
}

// Vehicles returns a copy of the records: always zero or two.
func (r ComparisonResult) Vehicles() []VehicleRecord {
	if len(r.vehicles) != 2 {
		return nil
	}
	out := make([]VehicleRecord, 2)
	copy(out, r.vehicles)
	return out
}

// Err returns the failure, if any.
func (r ComparisonResult) Err() error {
	return r.err
}

// Message returns the user-facing error text, or "" on success.
func (r ComparisonResult) Message() string {
	return UserMessage(r.err)
}

// OK reports whether the result holds two vehicles.
func (r ComparisonResult) OK() bool {
	return r.err == nil && len(r.vehicles) == 2
}

// StateFor maps a finished attempt to its terminal state.
func StateFor(err error) ComparisonState {
	switch {
	case err == nil:
		return StateSuccess
	case errors.Is(err, ErrValidation):
		return StateInvalid
	case errors.Is(err, ErrEmptyMatch):
		return StateEmptyMatch
	default:
		return StateNetworkError
	}
}
