// Package preferences holds the client's UI preferences (theme, sort, filters
// and detailed-view toggles) and keeps each one written through to durable
// storage.
package preferences

import (
	"encoding/json"
	"maps"
	"slices"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/wtx/internal/repositories"
	"github.com/desertthunder/wtx/internal/shared"
	"github.com/desertthunder/wtx/internal/state"
)

// Theme is the colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Filters restricts the watched list by media type and status.
type Filters struct {
	Type   []string `json:"type"`
	Status []string `json:"status"`
}

func (f Filters) empty() bool {
	return len(f.Type) == 0 && len(f.Status) == 0
}

// DefaultSort is the sort applied when none is stored: date added, newest first.
func DefaultSort() []string { return []string{"DATEADDED", "DOWN"} }

// DefaultFilters is the filter applied when none is stored: everything.
func DefaultFilters() Filters { return Filters{Type: []string{}, Status: []string{}} }

// DarkDetector reports whether the environment prefers a dark scheme.
type DarkDetector func() bool

// Store owns the preference slots.
//
// Each setter writes storage first and only then updates the in-memory slot,
// so a failed write leaves both sides at their previous value.
type Store struct {
	mu      sync.Mutex
	storage repositories.Storage
	dark    DarkDetector
	logger  *log.Logger

	theme    *state.Store[Theme]
	sort     *state.Store[[]string]
	filters  *state.Store[Filters]
	detailed *state.Store[map[string]bool]
}

// Option configures a [Store].
type Option func(*Store)

// WithDarkDetector replaces the environment dark-mode signal.
func WithDarkDetector(fn DarkDetector) Option {
	return func(s *Store) { s.dark = fn }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns a store holding defaults. Call [Store.Load] to rehydrate it.
func New(storage repositories.Storage, opts ...Option) *Store {
	s := &Store{
		storage:  storage,
		dark:     lipgloss.HasDarkBackground,
		logger:   shared.DiscardLogger(),
		theme:    state.New(ThemeLight),
		sort:     state.New(DefaultSort()),
		filters:  state.New(DefaultFilters()),
		detailed: state.New(map[string]bool{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads every slot from storage. A slot whose key is missing,
// unreadable or malformed falls back to its default; Load never fails.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme.Set(s.loadTheme())

	sort := DefaultSort()
	if v, ok := s.read(repositories.KeySort); ok {
		var stored []string
		if err := json.Unmarshal([]byte(v), &stored); err == nil && len(stored) > 0 {
			sort = stored
		} else {
			s.logger.Warn("ignoring malformed stored sort", "value", v)
		}
	}
	s.sort.Set(sort)

	filters := DefaultFilters()
	if v, ok := s.read(repositories.KeyFilters); ok {
		var stored Filters
		if err := json.Unmarshal([]byte(v), &stored); err == nil {
			filters = normalizeFilters(stored)
		} else {
			s.logger.Warn("ignoring malformed stored filters", "value", v)
		}
	}
	s.filters.Set(filters)

	detailed := map[string]bool{}
	if v, ok := s.read(repositories.KeyDetailedView); ok {
		var stored map[string]bool
		if err := json.Unmarshal([]byte(v), &stored); err == nil && stored != nil {
			detailed = stored
		} else {
			s.logger.Warn("ignoring malformed stored detailed view", "value", v)
		}
	}
	s.detailed.Set(detailed)
}

func (s *Store) loadTheme() Theme {
	if v, ok := s.read(repositories.KeyTheme); ok && v != "" {
		return Theme(v)
	}
	return s.fallbackTheme()
}

func (s *Store) fallbackTheme() Theme {
	if s.dark != nil && s.dark() {
		s.logger.Debug("theme not set, using dark theme from environment")
		return ThemeDark
	}
	return ThemeLight
}

func (s *Store) read(key string) (string, bool) {
	v, ok, err := s.storage.Get(key)
	if err != nil {
		s.logger.Warn("failed to read preference", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

// persist writes raw under key, or removes key when remove is set.
func (s *Store) persist(key string, raw string, remove bool) error {
	if remove {
		return s.storage.Delete(key)
	}
	return s.storage.Set(key, raw)
}

func (s *Store) Theme() Theme { return s.theme.Get() }

// SetTheme stores t. An empty theme removes the key and falls back to the
// environment signal.
func (s *Store) SetTheme(t Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(repositories.KeyTheme, string(t), t == ""); err != nil {
		return err
	}
	if t == "" {
		t = s.fallbackTheme()
	}
	s.theme.Set(t)
	return nil
}

// Sort returns a copy of the active sort.
func (s *Store) Sort() []string { return slices.Clone(s.sort.Get()) }

// SetSort stores the active sort. An empty sort removes the key and restores
// the default.
func (s *Store) SetSort(sort []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(sort)
	if err != nil {
		return err
	}
	if err := s.persist(repositories.KeySort, string(raw), len(sort) == 0); err != nil {
		return err
	}
	if len(sort) == 0 {
		sort = DefaultSort()
	}
	s.sort.Set(slices.Clone(sort))
	return nil
}

// Filters returns a copy of the active filters.
func (s *Store) Filters() Filters {
	f := s.filters.Get()
	return Filters{Type: slices.Clone(f.Type), Status: slices.Clone(f.Status)}
}

// SetFilters stores the active filters. Empty filters remove the key.
func (s *Store) SetFilters(f Filters) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f = normalizeFilters(f)
	raw, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if err := s.persist(repositories.KeyFilters, string(raw), f.empty()); err != nil {
		return err
	}
	s.filters.Set(f)
	return nil
}

// Detailed reports whether the detailed view named key is on.
func (s *Store) Detailed(key string) bool { return s.detailed.Get()[key] }

// DetailedViews returns a copy of every detailed-view toggle that is on.
func (s *Store) DetailedViews() map[string]bool { return maps.Clone(s.detailed.Get()) }

// SetDetailed turns the detailed view named key on or off. When no toggle is
// left on the key is removed.
func (s *Store) SetDetailed(key string, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.detailed.Get())
	if on {
		next[key] = true
	} else {
		delete(next, key)
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err := s.persist(repositories.KeyDetailedView, string(raw), len(next) == 0); err != nil {
		return err
	}
	s.detailed.Set(next)
	return nil
}

// Reset restores the sort and filter slots to their defaults and removes
// their keys. Theme and detailed-view toggles are kept.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{repositories.KeySort, repositories.KeyFilters} {
		if err := s.storage.Delete(key); err != nil {
			return err
		}
	}
	s.sort.Set(DefaultSort())
	s.filters.Set(DefaultFilters())
	return nil
}

// SubscribeTheme calls fn with the current theme and on every change.
func (s *Store) SubscribeTheme(fn func(Theme)) func() { return s.theme.Subscribe(fn) }

// SubscribeSort calls fn with the current sort and on every change.
func (s *Store) SubscribeSort(fn func([]string)) func() { return s.sort.Subscribe(fn) }

// SubscribeFilters calls fn with the current filters and on every change.
func (s *Store) SubscribeFilters(fn func(Filters)) func() { return s.filters.Subscribe(fn) }

func normalizeFilters(f Filters) Filters {
	if f.Type == nil {
		f.Type = []string{}
	}
	if f.Status == nil {
		f.Status = []string{}
	}
	return f
}
