package usecase

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/carcompare/backend/internal/domain"
	"github.com/google/uuid"
)

// subscriberBuffer bounds how far a slow event stream may fall behind before updates are dropped
const subscriberBuffer = 16

// Session is the state of one open comparison page: two autocomplete slots and a comparison
type Session struct {
	ID        string
	CreatedAt time.Time

	engine     *SuggestionEngine
	comparison *ComparisonService

	mu          sync.Mutex
	subscribers map[chan domain.SuggestionUpdate]struct{}
	closed      bool
}

// NewSession creates a session whose engine publishes list changes to subscribers
func NewSession(id string, catalog domain.CarsCatalog, config SuggestionConfig) *Session {
	s := &Session{
		ID:          id,
		CreatedAt:   time.Now(),
		comparison:  NewComparisonService(catalog),
		subscribers: make(map[chan domain.SuggestionUpdate]struct{}),
	}

	hook := config.OnUpdate
	config.OnUpdate = func(update domain.SuggestionUpdate) {
		s.publish(update)
		if hook != nil {
			hook(update)
		}
	}
	s.engine = NewSuggestionEngine(catalog, config)

	return s
}

// Suggestions exposes the session's autocomplete engine
func (s *Session) Suggestions() *SuggestionEngine {
	return s.engine
}

// Comparison exposes the session's comparison controller
func (s *Session) Comparison() *ComparisonService {
	return s.comparison
}

// Compare compares whatever the two slots currently hold.
// It fails with domain.ErrComparisonBusy while a previous comparison is running.
func (s *Session) Compare(ctx context.Context) (domain.ComparisonResult, error) {
	a := s.engine.Resolve(domain.SlotA)
	b := s.engine.Resolve(domain.SlotB)
	return s.comparison.TryCompareQueries(ctx, a, b)
}

// Subscribe returns a channel receiving every suggestion list change.
// The channel is closed by Unsubscribe or Close.
func (s *Session) Subscribe() (<-chan domain.SuggestionUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrSessionNotFound
	}
	ch := make(chan domain.SuggestionUpdate, subscriberBuffer)
	s.subscribers[ch] = struct{}{}
	return ch, nil
}

// Unsubscribe detaches and closes a channel returned by Subscribe
func (s *Session) Unsubscribe(ch <-chan domain.SuggestionUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sub := range s.subscribers {
		if sub == ch {
			delete(s.subscribers, sub)
			close(sub)
			return
		}
	}
}

// Close stops the engine's timers and closes every subscriber channel
func (s *Session) Close() {
	s.engine.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for sub := range s.subscribers {
		close(sub)
	}
	s.subscribers = nil
}

// publish never blocks: a full subscriber misses the update and catches up on the next one
func (s *Session) publish(update domain.SuggestionUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sub := range s.subscribers {
		select {
		case sub <- update:
		default:
		}
	}
}

// SessionService creates and looks up live sessions
type SessionService struct {
	store   domain.SessionRepository[*Session]
	catalog domain.CarsCatalog
	config  SuggestionConfig
	newID   func() string
}

// NewSessionService creates a service storing sessions in store
func NewSessionService(store domain.SessionRepository[*Session], catalog domain.CarsCatalog, config SuggestionConfig) *SessionService {
	return &SessionService{
		store:   store,
		catalog: catalog,
		config:  config,
		newID:   uuid.NewString,
	}
}

// Create opens a new session
func (s *SessionService) Create() *Session {
	session := NewSession(s.newID(), s.catalog, s.config)
	s.store.Set(session.ID, session)
	log.Printf("[SESSION] opened %s (%d live)", session.ID, s.store.Len())
	return session
}

// Get returns a live session and refreshes its idle deadline
func (s *SessionService) Get(id string) (*Session, error) {
	session, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// Touch refreshes a live session's idle deadline; false means it is gone
func (s *SessionService) Touch(id string) bool {
	return s.store.Touch(id)
}

// Close tears a session down. Closing an unknown session is an error.
func (s *SessionService) Close(id string) error {
	session, err := s.store.Get(id)
	if err != nil {
		return domain.ErrSessionNotFound
	}
	s.store.Delete(id)
	session.Close()
	log.Printf("[SESSION] closed %s", id)
	return nil
}
