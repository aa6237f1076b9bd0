package domain

import (
	"fmt"
	"strings"
)

// Slot identifies one of the two independent input contexts.
type Slot int

const (
	SlotA Slot = iota
	SlotB
)

// Slots lists every valid slot in display order.
var Slots = []Slot{SlotA, SlotB}

// String returns the lower-case slot name used in URLs.
func (s Slot) String() string {
	switch s {
	case SlotA:
		return "a"
	case SlotB:
		return "b"
	default:
		return fmt.Sprintf("slot(%d)", int(s))
	}
}

// Valid reports whether s is SlotA or SlotB.
func (s Slot) Valid() bool {
	return s == SlotA || s == SlotB
}

// ParseSlot accepts "a"/"b" (case-insensitive) or "1"/"2".
func ParseSlot(raw string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "a", "1":
		return SlotA, nil
	case "b", "2":
		return SlotB, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, raw)
}

// Suggestion is one autocomplete entry. Display is what the user sees and picks.
type Suggestion struct {
	Display string `json:"display"`
	Make    string `json:"make"`
	Model   string `json:"model"`
}

// SuggestionUpdate is emitted whenever a slot's suggestion list changes.
type SuggestionUpdate struct {
	Slot        Slot     `json:"-"`
	SlotName    string   `json:"slot"`
	Suggestions []string `json:"suggestions"`
}

// SlotState is a snapshot of one slot.
type SlotState struct {
	Slot        string   `json:"slot"`
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}
