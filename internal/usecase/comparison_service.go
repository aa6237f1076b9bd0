package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/carcompare/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// ComparisonSnapshot is the observable state of a ComparisonService
type ComparisonSnapshot struct {
	Busy   bool
	State  domain.ComparisonState
	Result domain.ComparisonResult
}

// ComparisonService resolves two vehicle names into a side-by-side result
type ComparisonService struct {
	catalog domain.CarsCatalog

	mu       sync.Mutex
	inflight int
	attempt  uint64
	state    domain.ComparisonState
	result   domain.ComparisonResult
}

// NewComparisonService creates an idle comparison service
func NewComparisonService(catalog domain.CarsCatalog) *ComparisonService {
	return &ComparisonService{
		catalog: catalog,
		state:   domain.StateIdle,
	}
}

// Compare looks up both names by model and returns exactly two records or an error.
// Overlapping calls are allowed; only the most recent attempt's outcome is kept.
func (s *ComparisonService) Compare(ctx context.Context, nameA, nameB string) (domain.ComparisonResult, error) {
	return s.CompareQueries(ctx,
		domain.LookupQuery{Model: NormalizeQuery(nameA)},
		domain.LookupQuery{Model: NormalizeQuery(nameB)},
	)
}

// TryCompare is Compare that refuses to start while another comparison is in flight
func (s *ComparisonService) TryCompare(ctx context.Context, nameA, nameB string) (domain.ComparisonResult, error) {
	return s.TryCompareQueries(ctx,
		domain.LookupQuery{Model: NormalizeQuery(nameA)},
		domain.LookupQuery{Model: NormalizeQuery(nameB)},
	)
}

// CompareQueries runs a comparison for already resolved lookups
func (s *ComparisonService) CompareQueries(ctx context.Context, a, b domain.LookupQuery) (domain.ComparisonResult, error) {
	return s.run(ctx, a, b, false)
}

// TryCompareQueries returns domain.ErrComparisonBusy instead of starting a second attempt
func (s *ComparisonService) TryCompareQueries(ctx context.Context, a, b domain.LookupQuery) (domain.ComparisonResult, error) {
	return s.run(ctx, a, b, true)
}

// Busy reports whether a comparison is in flight
func (s *ComparisonService) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Result returns the outcome of the latest finished attempt
func (s *ComparisonService) Result() domain.ComparisonResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Snapshot returns busy flag, state and result under one lock
func (s *ComparisonService) Snapshot() ComparisonSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComparisonSnapshot{
		Busy:   s.inflight > 0,
		State:  s.state,
		Result: s.result,
	}
}

func (s *ComparisonService) run(ctx context.Context, a, b domain.LookupQuery, exclusive bool) (domain.ComparisonResult, error) {
	s.mu.Lock()
	if exclusive && s.inflight > 0 {
		s.mu.Unlock()
		return domain.ComparisonResult{}, domain.ErrComparisonBusy
	}
	s.attempt++
	attempt := s.attempt
	s.state = domain.StateValidating

	if a.Model == "" || b.Model == "" {
		result := domain.FailedComparison(domain.ErrValidation)
		s.result = result
		s.state = domain.StateInvalid
		s.mu.Unlock()
		return result, domain.ErrValidation
	}

	s.inflight++
	s.state = domain.StateFetching
	s.result = domain.ComparisonResult{}
	s.mu.Unlock()

	result, err := s.fetchPair(ctx, a, b)

	s.mu.Lock()
	s.inflight--
	if attempt == s.attempt {
		s.result = result
		s.state = domain.StateFor(err)
	}
	s.mu.Unlock()

	return result, err
}

// fetchPair starts both lookups together and waits for both to settle.
// Any single failure fails the pair; a partial result is never produced.
func (s *ComparisonService) fetchPair(ctx context.Context, a, b domain.LookupQuery) (domain.ComparisonResult, error) {
	var (
		g        errgroup.Group
		recordsA []domain.VehicleRecord
		recordsB []domain.VehicleRecord
	)

	g.Go(func() error {
		records, err := s.catalog.Lookup(ctx, a)
		recordsA = records
		return err
	})
	g.Go(func() error {
		records, err := s.catalog.Lookup(ctx, b)
		recordsB = records
		return err
	})

	if err := g.Wait(); err != nil {
		log.Printf("[COMPARE] lookup failed for %s vs %s: %v", a, b, err)
		if !domain.IsNetworkError(err) {
			err = fmt.Errorf("%w: %v", domain.ErrCatalogAPIFailure, err)
		}
		return domain.FailedComparison(err), err
	}

	var missing []string
	if len(recordsA) == 0 {
		missing = append(missing, a.String())
	}
	if len(recordsB) == 0 {
		missing = append(missing, b.String())
	}
	if len(missing) > 0 {
		err := fmt.Errorf("%w: %v", domain.ErrEmptyMatch, missing)
		log.Printf("[COMPARE] %v", err)
		return domain.FailedComparison(err), err
	}

	return domain.NewComparison(recordsA[0], recordsB[0]), nil
}
