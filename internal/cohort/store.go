package cohort

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"genelink/internal/log"
)

// SubscriberFunc receives a state snapshot on every logical state transition.
type SubscriberFunc func(State)

// Store is the recomputation and notification engine for one cohort. Every
// public method completes synchronously before returning; there is no
// "in progress" state.
//
// Subscribers are notified in registration order, once per state transition.
// A subscriber must not call a mutator synchronously from inside its own
// callback: the store does not guard against reentrant mutation, and doing so
// produces nested notification delivery. That is a documented caller
// obligation, not an invariant the store enforces.
type Store struct {
	mu sync.Mutex

	loaded       bool
	allMutations []Mutation
	allSamples   []Sample
	filters      map[string]Filter
	filteredMuts []Mutation
	filteredSmps []Sample
	selection    *Selection
	version      string

	// memo caches per-filter pass/fail masks keyed by filter id and dataset
	// version, so unchanged filters are not re-evaluated on every recompute.
	// Entries are dropped when their filter is replaced or removed; a fresh
	// DatasetVersion on LoadData orphans everything computed before it.
	memo *gocache.Cache

	subs []*subscriber

	onPanic func(recovered any)
}

type subscriber struct {
	fn      SubscriberFunc
	removed bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPanicReporter replaces the default subscriber-panic reporter (the
// debug log).
func WithPanicReporter(fn func(recovered any)) StoreOption {
	return func(s *Store) { s.onPanic = fn }
}

// NewStore creates an empty store. Construct one per application context and
// hand it to every component that needs it; there is no package-level
// instance.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		filters: make(map[string]Filter),
		memo:    gocache.New(gocache.NoExpiration, 0),
		onPanic: func(recovered any) {
			log.Error(log.CatCohort, "subscriber panic", "panic", recovered)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadData replaces the dataset. The load is all-or-nothing: on any
// validation failure the store keeps its previous state (or stays
// uninitialized if this was the first load) and a DataLoadError is returned.
// A successful load clears active filters and the selection, assigns a fresh
// dataset version, recomputes the derived views (equal to the full dataset),
// and notifies subscribers once.
func (s *Store) LoadData(mutations []Mutation, samples []Sample) error {
	if len(samples) == 0 {
		return &DataLoadError{Reason: "samples are empty"}
	}
	if mutations == nil {
		return &DataLoadError{Reason: "mutation source is missing"}
	}
	known := make(map[string]struct{}, len(samples))
	for i, smp := range samples {
		if smp.SampleID == "" {
			return &DataLoadError{Reason: "sample " + strconv.Itoa(i) + " has no sampleId"}
		}
		known[smp.SampleID] = struct{}{}
	}
	for i, m := range mutations {
		if m.ID == "" {
			return &DataLoadError{Reason: "mutation " + strconv.Itoa(i) + " has no id"}
		}
		// A carrier-less mutation could never appear in any filtered view,
		// which would break "no filters means the full dataset is visible".
		if len(m.SampleIDs) == 0 {
			return &DataLoadError{Reason: "mutation " + m.ID + " has no carrier samples"}
		}
		// Same invariant for carriers pointing outside the sample set: the
		// carrier-intersection pass would hide the mutation even with no
		// filters active.
		for _, id := range m.SampleIDs {
			if _, ok := known[id]; !ok {
				return &DataLoadError{Reason: "mutation " + m.ID + " carries unknown sample " + id}
			}
		}
	}

	s.mu.Lock()
	s.allMutations = append([]Mutation(nil), mutations...)
	s.allSamples = append([]Sample(nil), samples...)
	s.filters = make(map[string]Filter)
	s.selection = nil
	s.version = uuid.NewString()
	s.loaded = true
	s.recomputeLocked()
	state := s.snapshotLocked()
	s.mu.Unlock()

	log.Info(log.CatCohort, "dataset loaded",
		"mutations", len(mutations), "samples", len(samples), "version", state.DatasetVersion)
	s.notify(state)
	return nil
}

// SetFilter inserts or replaces the filter keyed by id, recomputes the
// derived views, and notifies subscribers once. An invalid filter is rejected
// with InvalidFilterError and the store state is unchanged. Setting a filter
// semantically identical to the old one still notifies; the store does not
// attempt predicate-equality optimization.
func (s *Store) SetFilter(id string, f Filter) error {
	if id == "" {
		return &InvalidFilterError{FilterID: id, Reason: "filter id must not be empty"}
	}
	if f == nil {
		return &InvalidFilterError{FilterID: id, Reason: "filter must not be nil"}
	}
	if err := f.Validate(); err != nil {
		return &InvalidFilterError{FilterID: id, Reason: err.Error()}
	}

	s.mu.Lock()
	s.filters[id] = f
	s.dropMemoLocked(id)
	s.recomputeLocked()
	state := s.snapshotLocked()
	s.mu.Unlock()

	log.Debug(log.CatCohort, "filter set", "id", id,
		"samples", len(state.FilteredSamples), "mutations", len(state.FilteredMutations))
	s.notify(state)
	return nil
}

// RemoveFilter deletes the filter keyed by id if present (absent ids are not
// an error), recomputes, and notifies subscribers once.
func (s *Store) RemoveFilter(id string) {
	s.mu.Lock()
	delete(s.filters, id)
	s.dropMemoLocked(id)
	s.recomputeLocked()
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state)
}

// ClearFilters empties the active filter set; the derived views become the
// full dataset again. Notifies subscribers once.
func (s *Store) ClearFilters() {
	s.mu.Lock()
	for id := range s.filters {
		s.dropMemoLocked(id)
	}
	s.filters = make(map[string]Filter)
	s.recomputeLocked()
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state)
}

// SetSelection stores a weak id-reference to a mutation or sample and
// notifies subscribers once. The derived views are unaffected. The id is not
// checked against the dataset: an unknown id is accepted as an unresolved
// reference that the State resolve helpers report as absent.
func (s *Store) SetSelection(sel Selection) {
	s.mu.Lock()
	s.selection = &sel
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state)
}

// ClearSelection drops the selection and notifies subscribers once.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selection = nil
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state)
}

// Subscribe registers a callback invoked synchronously on every state change,
// and immediately once with the current state before Subscribe returns, so
// late subscribers do not wait for the next mutation. The returned function
// unsubscribes; calling it twice is a no-op. A panicking subscriber is
// reported and never blocks delivery to the others.
func (s *Store) Subscribe(fn SubscriberFunc) (unsubscribe func()) {
	sub := &subscriber{fn: fn}

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.safeCall(sub, state)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub.removed {
			return
		}
		sub.removed = true
		for i, cand := range s.subs {
			if cand == sub {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
	}
}

// GetState returns a snapshot of the current state.
func (s *Store) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Loaded reports whether a dataset has been loaded.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// recomputeLocked rebuilds both derived views in full. Two dependent passes:
// sample-scoped filters first (conjunction over every sample), then
// mutation-scoped filters plus the requirement that a mutation's carriers
// intersect the freshly filtered sample set. Filter predicates are arbitrary,
// so no incremental update is attempted; per-filter masks are memoized by
// (filter id, dataset version) instead.
func (s *Store) recomputeLocked() {
	sampleMasks := make([][]bool, 0, len(s.filters))
	mutationMasks := make([][]bool, 0, len(s.filters))
	for id, f := range s.filters {
		switch f.Scope() {
		case ScopeSample:
			sampleMasks = append(sampleMasks, s.sampleMaskLocked(id, f))
		case ScopeMutation:
			mutationMasks = append(mutationMasks, s.mutationMaskLocked(id, f))
		}
	}

	s.filteredSmps = s.filteredSmps[:0]
	visible := make(map[string]struct{}, len(s.allSamples))
	for i, smp := range s.allSamples {
		if passesAll(sampleMasks, i) {
			s.filteredSmps = append(s.filteredSmps, smp)
			visible[smp.SampleID] = struct{}{}
		}
	}

	s.filteredMuts = s.filteredMuts[:0]
	for i, m := range s.allMutations {
		if !passesAll(mutationMasks, i) {
			continue
		}
		if !intersects(m.SampleIDs, visible) {
			continue
		}
		s.filteredMuts = append(s.filteredMuts, m)
	}
}

func passesAll(masks [][]bool, i int) bool {
	for _, mask := range masks {
		if !mask[i] {
			return false
		}
	}
	return true
}

func intersects(ids []string, set map[string]struct{}) bool {
	for _, id := range ids {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

func (s *Store) sampleMaskLocked(id string, f Filter) []bool {
	key := "s:" + id + "@" + s.version
	if v, ok := s.memo.Get(key); ok {
		return v.([]bool)
	}
	mask := make([]bool, len(s.allSamples))
	for i, smp := range s.allSamples {
		mask[i] = matchSample(f, smp)
	}
	s.memo.Set(key, mask, gocache.DefaultExpiration)
	return mask
}

func (s *Store) mutationMaskLocked(id string, f Filter) []bool {
	key := "m:" + id + "@" + s.version
	if v, ok := s.memo.Get(key); ok {
		return v.([]bool)
	}
	mask := make([]bool, len(s.allMutations))
	for i, m := range s.allMutations {
		mask[i] = matchMutation(f, m)
	}
	s.memo.Set(key, mask, gocache.DefaultExpiration)
	return mask
}

func (s *Store) dropMemoLocked(id string) {
	s.memo.Delete("s:" + id + "@" + s.version)
	s.memo.Delete("m:" + id + "@" + s.version)
}

func (s *Store) snapshotLocked() State {
	filters := make(map[string]Filter, len(s.filters))
	for id, f := range s.filters {
		filters[id] = f
	}
	var sel *Selection
	if s.selection != nil {
		cp := *s.selection
		sel = &cp
	}
	return State{
		AllMutations:      append([]Mutation(nil), s.allMutations...),
		AllSamples:        append([]Sample(nil), s.allSamples...),
		ActiveFilters:     filters,
		FilteredMutations: append([]Mutation(nil), s.filteredMuts...),
		FilteredSamples:   append([]Sample(nil), s.filteredSmps...),
		Selection:         sel,
		DatasetVersion:    s.version,
	}
}

// notify delivers one state snapshot to every subscriber registered at the
// start of the notification, in registration order. Runs outside the store
// lock so a subscriber reading GetState does not deadlock.
func (s *Store) notify(state State) {
	s.mu.Lock()
	snapshot := make([]*subscriber, len(s.subs))
	copy(snapshot, s.subs)
	s.mu.Unlock()

	for _, sub := range snapshot {
		s.mu.Lock()
		dead := sub.removed
		s.mu.Unlock()
		if dead {
			continue
		}
		s.safeCall(sub, state)
	}
}

func (s *Store) safeCall(sub *subscriber, state State) {
	defer func() {
		if r := recover(); r != nil && s.onPanic != nil {
			s.onPanic(r)
		}
	}()
	sub.fn(state)
}
