package search

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"placemap/internal/geocode"
	"placemap/internal/models"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// suggestion query fires.
const DefaultDebounce = 300 * time.Millisecond

// minQueryLen is the input length below which no query is ever issued.
const minQueryLen = 2

// DetailsResolutionError is returned when a place id could not be resolved to
// full details. The previous selection must be left untouched by callers.
type DetailsResolutionError struct {
	PlaceID string
	Err     error
}

func (e *DetailsResolutionError) Error() string {
	return fmt.Sprintf("search: failed to resolve details for %q: %v", e.PlaceID, e.Err)
}

func (e *DetailsResolutionError) Unwrap() error { return e.Err }

// Searcher turns a stream of text-input events into a debounced, cancellable
// stream of place suggestions.
//
// Every Input call restarts the debounce timer; only the most recently
// scheduled timer may fire. Responses are additionally guarded by a monotonic
// request sequence number so a stale response can never overwrite newer
// suggestion state, even if requests were somehow in flight concurrently.
type Searcher struct {
	provider geocode.Provider
	debounce time.Duration
	bias     *geocode.Bias
	logger   zerolog.Logger

	onSuggestions func([]models.Suggestion)
	onLoading     func(bool)

	mu          sync.Mutex
	timer       *time.Timer
	seq         uint64
	input       string
	suggestions []models.Suggestion
	loading     bool
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithDebounce overrides the debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(s *Searcher) { s.debounce = d }
}

// WithBias skews suggestion results towards a location.
func WithBias(b *geocode.Bias) Option {
	return func(s *Searcher) { s.bias = b }
}

// WithSuggestionListener registers the callback invoked on every suggestion
// state change, including clears.
func WithSuggestionListener(fn func([]models.Suggestion)) Option {
	return func(s *Searcher) { s.onSuggestions = fn }
}

// WithLoadingListener registers the callback invoked when the loading
// indicator toggles.
func WithLoadingListener(fn func(bool)) Option {
	return func(s *Searcher) { s.onLoading = fn }
}

// NewSearcher creates a searcher over the given provider. A nil provider is
// tolerated: queries resolve to empty until one is attached, mirroring
// provider SDKs that initialize asynchronously.
func NewSearcher(provider geocode.Provider, logger zerolog.Logger, opts ...Option) *Searcher {
	s := &Searcher{
		provider: provider,
		debounce: DefaultDebounce,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetProvider attaches or replaces the provider. Pending input is not
// re-queried; the next keystroke picks the new provider up.
func (s *Searcher) SetProvider(p geocode.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = p
}

// Input feeds one text-input event. Input shorter than two characters clears
// suggestions immediately and cancels any pending query; anything longer
// restarts the debounce timer.
func (s *Searcher) Input(ctx context.Context, text string) {
	s.mu.Lock()
	s.input = text
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if utf8.RuneCountInString(text) < minQueryLen {
		s.seq++ // invalidate any in-flight response
		s.setSuggestionsLocked(nil)
		s.setLoadingLocked(false)
		s.mu.Unlock()
		return
	}

	s.timer = time.AfterFunc(s.debounce, func() {
		s.fetch(ctx, text)
	})
	s.mu.Unlock()
}

// Clear discards suggestions and cancels any pending query, as when the user
// picks a suggestion or empties the input.
func (s *Searcher) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
	s.input = ""
	s.setSuggestionsLocked(nil)
	s.setLoadingLocked(false)
}

// Suggestions returns the current suggestion list.
func (s *Searcher) Suggestions() []models.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Suggestion, len(s.suggestions))
	copy(out, s.suggestions)
	return out
}

// CurrentInput returns the current input text.
func (s *Searcher) CurrentInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Loading reports whether a suggestion query is in flight.
func (s *Searcher) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// ResolveDetails resolves a chosen suggestion into full place details. On
// failure it returns a DetailsResolutionError and the caller must leave its
// current selection unchanged.
func (s *Searcher) ResolveDetails(ctx context.Context, placeID string) (*models.PlaceDetails, error) {
	s.mu.Lock()
	provider := s.provider
	s.mu.Unlock()

	if provider == nil {
		return nil, &DetailsResolutionError{PlaceID: placeID, Err: fmt.Errorf("no geocoding provider attached")}
	}
	details, err := provider.Details(ctx, placeID)
	if err != nil {
		return nil, &DetailsResolutionError{PlaceID: placeID, Err: err}
	}
	if details == nil {
		return nil, &DetailsResolutionError{PlaceID: placeID, Err: geocode.ErrPlaceNotFound}
	}
	return details, nil
}

// fetch runs on debounce-timer expiry. Suggestion failures are soft: the list
// resolves to empty and the loading indicator turns off.
func (s *Searcher) fetch(ctx context.Context, text string) {
	s.mu.Lock()
	provider := s.provider
	s.seq++
	seq := s.seq
	if provider == nil {
		// Provider not initialized yet; resolve empty, next keystroke retries.
		s.setSuggestionsLocked(nil)
		s.setLoadingLocked(false)
		s.mu.Unlock()
		return
	}
	s.setLoadingLocked(true)
	bias := s.bias
	s.mu.Unlock()

	suggestions, err := provider.Suggest(ctx, text, bias)
	if err != nil {
		s.logger.Debug().Err(err).Str("input", text).Msg("suggestion query failed, resolving empty")
		suggestions = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		// A strictly newer query was issued meanwhile; drop this response.
		return
	}
	s.setSuggestionsLocked(suggestions)
	s.setLoadingLocked(false)
}

func (s *Searcher) setSuggestionsLocked(suggestions []models.Suggestion) {
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}
	s.suggestions = suggestions
	if s.onSuggestions != nil {
		s.onSuggestions(suggestions)
	}
}

func (s *Searcher) setLoadingLocked(loading bool) {
	if s.loading == loading {
		return
	}
	s.loading = loading
	if s.onLoading != nil {
		s.onLoading(loading)
	}
}
