package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/carcompare/backend/internal/domain"
	"github.com/carcompare/backend/internal/infrastructure/carsapi"
	"golang.org/x/time/rate"
)

// Defaults for the autocomplete flow
const (
	DefaultDebounce       = 500 * time.Millisecond
	DefaultBlurGrace      = 200 * time.Millisecond
	DefaultMinQueryLength = 2
	DefaultSuggestLimit   = 5

	// MaxSuggestions bounds every suggestion list
	MaxSuggestions = 5
)

// SuggestionConfig holds configuration for the suggestion engine
type SuggestionConfig struct {
	Debounce       time.Duration
	BlurGrace      time.Duration
	MinQueryLength int
	Limit          int
	Scheduler      Scheduler

	// OnUpdate is called with the engine lock held whenever a slot's list
	// changes. It must not block or call back into the engine.
	OnUpdate func(domain.SuggestionUpdate)
}

// slotState is everything the engine tracks for one input slot
type slotState struct {
	query       string
	suggestions []domain.Suggestion
	picked      *domain.Suggestion

	debounce    Timer
	debounceGen uint64
	blur        Timer
	blurGen     uint64

	// issued is the sequence number of the latest dispatched fetch; responses
	// carrying an older number are dropped
	issued uint64
}

// SuggestionEngine turns keystrokes in two slots into debounced autocomplete lists
type SuggestionEngine struct {
	catalog   domain.CarsCatalog
	debounce  time.Duration
	blurGrace time.Duration
	minLength int
	limit     int
	scheduler Scheduler
	onUpdate  func(domain.SuggestionUpdate)

	mu     sync.Mutex
	slots  [2]slotState
	closed bool

	softFailLog rate.Sometimes
}

// NewSuggestionEngine creates an engine with both slots empty
func NewSuggestionEngine(catalog domain.CarsCatalog, config SuggestionConfig) *SuggestionEngine {
	e := &SuggestionEngine{
		catalog:   catalog,
		debounce:  config.Debounce,
		blurGrace: config.BlurGrace,
		minLength: config.MinQueryLength,
		limit:     config.Limit,
		scheduler: config.Scheduler,
		onUpdate:  config.OnUpdate,

		softFailLog: rate.Sometimes{First: 3, Interval: 30 * time.Second},
	}

	if e.debounce <= 0 {
		e.debounce = DefaultDebounce
	}
	if e.blurGrace <= 0 {
		e.blurGrace = DefaultBlurGrace
	}
	if e.minLength <= 0 {
		e.minLength = DefaultMinQueryLength
	}
	if e.limit <= 0 {
		e.limit = DefaultSuggestLimit
	}
	if e.limit > MaxSuggestions {
		e.limit = MaxSuggestions
	}
	if e.scheduler == nil {
		e.scheduler = SystemScheduler{}
	}

	return e
}

// OnQueryChange records the new text for slot and restarts its debounce timer.
// No request is made until the timer fires without being reset.
func (e *SuggestionEngine) OnQueryChange(slot domain.Slot, text string) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrInvalidSlot, int(slot))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	st := &e.slots[slot]
	st.query = text
	e.cancelDebounceLocked(st)

	gen := st.debounceGen
	st.debounce = e.scheduler.AfterFunc(e.debounce, func() {
		e.debounceFired(slot, gen)
	})

	return nil
}

// OnSuggestionPick commits value as the slot's query and dismisses the list.
// A pending debounce and any in-flight fetch for the slot are abandoned.
func (e *SuggestionEngine) OnSuggestionPick(slot domain.Slot, value string) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrInvalidSlot, int(slot))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	st := &e.slots[slot]
	st.picked = nil
	for i := range st.suggestions {
		if st.suggestions[i].Display == value {
			picked := st.suggestions[i]
			st.picked = &picked
			break
		}
	}

	st.query = value
	e.cancelDebounceLocked(st)
	st.issued++
	e.setSuggestionsLocked(slot, nil)

	return nil
}

// OnBlur clears the slot's list after the grace delay, leaving time for a
// pointer-down on a suggestion to be processed as a pick first. A pending
// debounce is cancelled so the list cannot reopen on an unfocused input.
func (e *SuggestionEngine) OnBlur(slot domain.Slot) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrInvalidSlot, int(slot))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	st := &e.slots[slot]
	e.cancelDebounceLocked(st)
	if st.blur != nil {
		st.blur.Stop()
	}
	st.blurGen++

	gen := st.blurGen
	st.blur = e.scheduler.AfterFunc(e.blurGrace, func() {
		e.blurFired(slot, gen)
	})

	return nil
}

// FetchSuggestions searches the catalog for query and replaces the slot's list.
// Failures clear the list and are never reported to the caller. It returns
// false when the response was discarded because a newer fetch was issued.
func (e *SuggestionEngine) FetchSuggestions(ctx context.Context, slot domain.Slot, query string) bool {
	if !slot.Valid() {
		return false
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	seq := e.claimLocked(slot)
	e.mu.Unlock()

	return e.fetch(ctx, slot, query, seq)
}

// Query returns the slot's current text
func (e *SuggestionEngine) Query(slot domain.Slot) string {
	if !slot.Valid() {
		return ""
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slots[slot].query
}

// Suggestions returns the slot's current display strings
func (e *SuggestionEngine) Suggestions(slot domain.Slot) []string {
	if !slot.Valid() {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return displays(e.slots[slot].suggestions)
}

// Snapshot returns the slot's text and list together
func (e *SuggestionEngine) Snapshot(slot domain.Slot) domain.SlotState {
	if !slot.Valid() {
		return domain.SlotState{Slot: slot.String(), Suggestions: []string{}}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.slots[slot]
	return domain.SlotState{
		Slot:        slot.String(),
		Query:       st.query,
		Suggestions: displays(st.suggestions),
	}
}

// Resolve turns the slot's query into a lookup. A query that is still exactly
// the display string of a picked suggestion is looked up by make and model.
func (e *SuggestionEngine) Resolve(slot domain.Slot) domain.LookupQuery {
	if !slot.Valid() {
		return domain.LookupQuery{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.slots[slot]
	if st.picked != nil && st.picked.Display == st.query && st.picked.Model != "" {
		return domain.LookupQuery{Make: st.picked.Make, Model: st.picked.Model}
	}
	return domain.LookupQuery{Model: NormalizeQuery(st.query)}
}

// Close cancels all pending timers. Fetches already in flight finish but their results are dropped.
func (e *SuggestionEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true

	for i := range e.slots {
		st := &e.slots[i]
		e.cancelDebounceLocked(st)
		if st.blur != nil {
			st.blur.Stop()
			st.blur = nil
		}
		st.blurGen++
	}
}

func (e *SuggestionEngine) debounceFired(slot domain.Slot, gen uint64) {
	e.mu.Lock()
	st := &e.slots[slot]
	if e.closed || gen != st.debounceGen {
		e.mu.Unlock()
		return
	}
	st.debounce = nil

	query := NormalizeQuery(st.query)
	if QueryLength(query) < e.minLength {
		st.issued++
		e.setSuggestionsLocked(slot, nil)
		e.mu.Unlock()
		return
	}
	// Claimed under the same lock as the generation check, so a pick or blur
	// arriving after this point always supersedes the fetch.
	seq := e.claimLocked(slot)
	e.mu.Unlock()

	e.fetch(context.Background(), slot, query, seq)
}

// claimLocked issues the next fetch sequence number for slot
func (e *SuggestionEngine) claimLocked(slot domain.Slot) uint64 {
	st := &e.slots[slot]
	st.issued++
	return st.issued
}

// fetch runs the search for an already claimed sequence number and applies
// the result only if seq is still the latest for the slot
func (e *SuggestionEngine) fetch(ctx context.Context, slot domain.Slot, query string, seq uint64) bool {
	var suggestions []domain.Suggestion
	records, err := e.catalog.SearchByModel(ctx, query, e.limit)
	if err != nil {
		e.softFailLog.Do(func() {
			log.Printf("[SUGGEST] slot %s: suggestion fetch for %q failed: %v", slot, query, err)
		})
	} else {
		suggestions = carsapi.MapToSuggestions(records)
		if len(suggestions) > e.limit {
			suggestions = suggestions[:e.limit]
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || seq != e.slots[slot].issued {
		return false
	}
	e.setSuggestionsLocked(slot, suggestions)
	return true
}

func (e *SuggestionEngine) blurFired(slot domain.Slot, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := &e.slots[slot]
	if e.closed || gen != st.blurGen {
		return
	}
	st.blur = nil
	st.issued++
	e.setSuggestionsLocked(slot, nil)
}

// cancelDebounceLocked stops the pending timer. Bumping the generation also
// neutralizes a timer that already fired and is waiting for the lock.
func (e *SuggestionEngine) cancelDebounceLocked(st *slotState) {
	if st.debounce != nil {
		st.debounce.Stop()
		st.debounce = nil
	}
	st.debounceGen++
}

// setSuggestionsLocked replaces the list and notifies when it actually changed
func (e *SuggestionEngine) setSuggestionsLocked(slot domain.Slot, suggestions []domain.Suggestion) {
	st := &e.slots[slot]
	if len(st.suggestions) == 0 && len(suggestions) == 0 {
		st.suggestions = nil
		return
	}
	st.suggestions = suggestions

	if e.onUpdate != nil {
		e.onUpdate(domain.SuggestionUpdate{
			Slot:        slot,
			SlotName:    slot.String(),
			Suggestions: displays(suggestions),
		})
	}
}

func displays(suggestions []domain.Suggestion) []string {
	out := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, s.Display)
	}
	return out
}
