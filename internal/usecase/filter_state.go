package usecase

import (
	"sync"

	"github.com/google/uuid"
	"github.com/user/log-console/internal/domain"
)

// FacetKind names one of the source-facet dimensions records can be
// filtered by.
type FacetKind string

const (
	// FacetClass is the union facet: it matches a record's source name or its
	// file path.
	FacetClass FacetKind = "class"
	// FacetSourceName matches only explicitly tagged source names.
	FacetSourceName FacetKind = "source"
	// FacetFilePath matches only caller-location file paths.
	FacetFilePath FacetKind = "path"
)

// Filter is an immutable snapshot of the active criteria, consumed by the
// query engine. Empty sets impose no constraint.
type Filter struct {
	Producers       map[domain.Producer]struct{}
	SubTypes        map[domain.Producer]map[string]struct{}
	Classes         map[string]struct{}
	SourceNames     map[string]struct{}
	FilePaths       map[string]struct{}
	SearchQuery     string
	SortNewestFirst bool
	StatsKey        string
}

// FilterState is the mutable holder of all filter, sort and search criteria
// for one viewing session. Every mutator applies its change and then invokes
// the registered listeners synchronously before returning. The zero value is
// not usable; create instances with NewFilterState.
//
// Mutation and observer notification are expected on the presentation
// goroutine; the internal lock only protects against listener registration
// racing a mutation.
type FilterState struct {
	mu        sync.Mutex
	filter    Filter
	listeners map[uuid.UUID]func()
	disposed  bool
}

// NewFilterState creates an empty filter state sorting newest-first.
func NewFilterState() *FilterState {
	return &FilterState{
		filter: Filter{
			Producers:       make(map[domain.Producer]struct{}),
			SubTypes:        make(map[domain.Producer]map[string]struct{}),
			Classes:         make(map[string]struct{}),
			SourceNames:     make(map[string]struct{}),
			FilePaths:       make(map[string]struct{}),
			SortNewestFirst: true,
		},
		listeners: make(map[uuid.UUID]func()),
	}
}

// ToggleProducer adds or removes a producer from the selection.
func (s *FilterState) ToggleProducer(p domain.Producer) {
	s.mutate(func() {
		toggle(s.filter.Producers, p)
	})
}

// ToggleSubType adds or removes a per-producer sub-type (a level for general
// records, an API status for api records). Values absent from the current data
// are tolerated; facet sets are plain membership sets.
func (s *FilterState) ToggleSubType(p domain.Producer, subType string) {
	s.mutate(func() {
		set, ok := s.filter.SubTypes[p]
		if !ok {
			set = make(map[string]struct{})
			s.filter.SubTypes[p] = set
		}
		toggle(set, subType)
		if len(set) == 0 {
			delete(s.filter.SubTypes, p)
		}
	})
}

// ToggleClass adds or removes a value from the union facet set.
func (s *FilterState) ToggleClass(value string) {
	s.mutate(func() { toggle(s.filter.Classes, value) })
}

// ToggleSourceName adds or removes a value from the source-name facet set.
func (s *FilterState) ToggleSourceName(value string) {
	s.mutate(func() { toggle(s.filter.SourceNames, value) })
}

// ToggleFilePath adds or removes a value from the file-path facet set.
func (s *FilterState) ToggleFilePath(value string) {
	s.mutate(func() { toggle(s.filter.FilePaths, value) })
}

// ClearClassFilters empties the union facet set.
func (s *FilterState) ClearClassFilters() {
	s.mutate(func() { clear(s.filter.Classes) })
}

// ClearSourceNameFilters empties the source-name facet set.
func (s *FilterState) ClearSourceNameFilters() {
	s.mutate(func() { clear(s.filter.SourceNames) })
}

// ClearFilePathFilters empties the file-path facet set.
func (s *FilterState) ClearFilePathFilters() {
	s.mutate(func() { clear(s.filter.FilePaths) })
}

// ClearAllSourceFilters empties all three facet sets at once.
func (s *FilterState) ClearAllSourceFilters() {
	s.mutate(func() {
		clear(s.filter.Classes)
		clear(s.filter.SourceNames)
		clear(s.filter.FilePaths)
	})
}

// UpdateSearchQuery replaces the free-text search query.
func (s *FilterState) UpdateSearchQuery(query string) {
	s.mutate(func() { s.filter.SearchQuery = query })
}

// ToggleSortOrder flips between newest-first and oldest-first.
func (s *FilterState) ToggleSortOrder() {
	s.mutate(func() { s.filter.SortNewestFirst = !s.filter.SortNewestFirst })
}

// SetStatsFilter constrains the feed to one statistics bucket. Selecting the
// key that is already active clears it.
func (s *FilterState) SetStatsFilter(key string) {
	s.mutate(func() {
		if s.filter.StatsKey == key {
			s.filter.StatsKey = ""
		} else {
			s.filter.StatsKey = key
		}
	})
}

// ActiveFilterCount returns the number of criteria currently applied: every
// selected producer, sub-type and facet value, plus one for a non-empty
// search query and one for an active stats filter. Used for the badge count.
func (s *FilterState) ActiveFilterCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.filter.Producers) + len(s.filter.Classes) +
		len(s.filter.SourceNames) + len(s.filter.FilePaths)
	for _, set := range s.filter.SubTypes {
		count += len(set)
	}
	if s.filter.SearchQuery != "" {
		count++
	}
	if s.filter.StatsKey != "" {
		count++
	}
	return count
}

// Snapshot returns an immutable copy of the active criteria.
func (s *FilterState) Snapshot() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.filter
	out.Producers = copySet(s.filter.Producers)
	out.Classes = copySet(s.filter.Classes)
	out.SourceNames = copySet(s.filter.SourceNames)
	out.FilePaths = copySet(s.filter.FilePaths)
	out.SubTypes = make(map[domain.Producer]map[string]struct{}, len(s.filter.SubTypes))
	for p, set := range s.filter.SubTypes {
		out.SubTypes[p] = copySet(set)
	}
	return out
}

// AddListener registers a callback invoked synchronously after every
// mutation. Callbacks must not assume ordering relative to other listeners.
func (s *FilterState) AddListener(fn func()) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		panic("usecase: FilterState used after Dispose")
	}
	id := uuid.New()
	s.listeners[id] = fn
	return id
}

// RemoveListener detaches a previously registered callback.
func (s *FilterState) RemoveListener(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, id)
}

// Dispose detaches all observers and marks the state as torn down. Mutating a
// disposed state is a lifecycle bug and panics.
func (s *FilterState) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	s.listeners = make(map[uuid.UUID]func())
}

func (s *FilterState) mutate(apply func()) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		panic("usecase: FilterState used after Dispose")
	}
	apply()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func toggle[T comparable](set map[T]struct{}, value T) {
	if _, ok := set[value]; ok {
		delete(set, value)
	} else {
		set[value] = struct{}{}
	}
}

func copySet[T comparable](set map[T]struct{}) map[T]struct{} {
	out := make(map[T]struct{}, len(set))
	for v := range set {
		out[v] = struct{}{}
	}
	return out
}
