package domain

import (
	"context"
)

// CarsCatalog defines the interface for interacting with the cars catalog API
type CarsCatalog interface {
	SearchByModel(ctx context.Context, model string, limit int) ([]VehicleRecord, error)
	Lookup(ctx context.Context, query LookupQuery) ([]VehicleRecord, error)
	ListMakes(ctx context.Context) ([]string, error)
	ListModels(ctx context.Context, makeName string) ([]string, error)
}

// SessionRepository holds live sessions keyed by id.
// Values are opaque to the store; expired entries are handed to the eviction hook.
type SessionRepository[T any] interface {
	Get(key string) (T, error)
	Set(key string, value T)
	Delete(key string) bool
	Touch(key string) bool
	Len() int
}
