package state

import (
	"sync"

	"placemap/internal/models"
)

// Selection is the single-slot holder for the currently selected place. It is
// set by search, marker clicks or map POI clicks and cleared when the detail
// card closes. A new Select overwrites without requiring Clear. No operation
// blocks; observers are notified synchronously.
type Selection struct {
	mu        sync.Mutex
	current   *models.PlaceDetails
	observers []func(*models.PlaceDetails)
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{}
}

// Observe registers a callback invoked on every selection change, including
// clears (with nil). Registration is not expected after event flow starts.
func (s *Selection) Observe(fn func(*models.PlaceDetails)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Select replaces the current selection.
func (s *Selection) Select(details models.PlaceDetails) {
	s.mu.Lock()
	s.current = &details
	observers := s.observers
	s.mu.Unlock()
	for _, fn := range observers {
		fn(&details)
	}
}

// Clear empties the slot.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.current = nil
	observers := s.observers
	s.mu.Unlock()
	for _, fn := range observers {
		fn(nil)
	}
}

// Current returns the selected place, or nil. The returned value is a copy;
// PlaceDetails are immutable once constructed.
func (s *Selection) Current() *models.PlaceDetails {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	copied := *s.current
	return &copied
}
