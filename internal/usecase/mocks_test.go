package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/carcompare/backend/internal/domain"
)

// MockCarsCatalog is a mock implementation of domain.CarsCatalog
type MockCarsCatalog struct {
	mu sync.Mutex

	searchFn    func(ctx context.Context, model string, limit int) ([]domain.VehicleRecord, error)
	searchCalls []string
	searchLimit int

	lookupFn    func(ctx context.Context, query domain.LookupQuery) ([]domain.VehicleRecord, error)
	lookupCalls []domain.LookupQuery

	makes       []string
	makesErr    error
	models      map[string][]string
	modelsErr   error
	modelsCalls int
}

func NewMockCarsCatalog() *MockCarsCatalog {
	return &MockCarsCatalog{models: map[string][]string{}}
}

func (m *MockCarsCatalog) SearchByModel(ctx context.Context, model string, limit int) ([]domain.VehicleRecord, error) {
	m.mu.Lock()
	m.searchCalls = append(m.searchCalls, model)
	m.searchLimit = limit
	fn := m.searchFn
	m.mu.Unlock()

	if fn == nil {
		return nil, nil
	}
	return fn(ctx, model, limit)
}

func (m *MockCarsCatalog) Lookup(ctx context.Context, query domain.LookupQuery) ([]domain.VehicleRecord, error) {
	m.mu.Lock()
	m.lookupCalls = append(m.lookupCalls, query)
	fn := m.lookupFn
	m.mu.Unlock()

	if fn == nil {
		return nil, nil
	}
	return fn(ctx, query)
}

func (m *MockCarsCatalog) ListMakes(ctx context.Context) ([]string, error) {
	if m.makesErr != nil {
		return nil, m.makesErr
	}
	return m.makes, nil
}

func (m *MockCarsCatalog) ListModels(ctx context.Context, makeName string) ([]string, error) {
	m.mu.Lock()
	m.modelsCalls++
	m.mu.Unlock()
	if m.modelsErr != nil {
		return nil, m.modelsErr
	}
	return m.models[makeName], nil
}

func (m *MockCarsCatalog) SearchCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.searchCalls...)
}

func (m *MockCarsCatalog) LookupCalls() []domain.LookupQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.LookupQuery(nil), m.lookupCalls...)
}

// fakeTimer is a timer that only fires when the test says so
type fakeTimer struct {
	scheduler *fakeScheduler
	delay     time.Duration
	fn        func()
	stopped   bool
	fired     bool
}

func (t *fakeTimer) Stop() bool {
	t.scheduler.mu.Lock()
	defer t.scheduler.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeScheduler records timers instead of starting them
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{scheduler: s, delay: d, fn: f}
	s.timers = append(s.timers, t)
	return t
}

// Pending returns timers that were neither stopped nor fired
func (s *fakeScheduler) Pending() []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// FireAll runs every pending timer on the calling goroutine and returns how many fired
func (s *fakeScheduler) FireAll() int {
	pending := s.Pending()

	s.mu.Lock()
	for _, t := range pending {
		t.fired = true
	}
	s.mu.Unlock()

	for _, t := range pending {
		t.fn()
	}
	return len(pending)
}

func records(pairs ...string) []domain.VehicleRecord {
	var out []domain.VehicleRecord
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.VehicleRecord{Make: pairs[i], Model: pairs[i+1]})
	}
	return out
}
