package catalog

import (
	"slices"
	"sync"

	"tvcatalog/internal/tvmaze"
)

// Source records which discovery path created an entry.
type Source string

const (
	SourceSchedule       Source = "schedule"
	SourceEpisodesByDate Source = "episodes_by_date"
	SourceUpdates        Source = "updates"
	SourceTMDBDiscover   Source = "tmdb_discover"
)

// Entry is one show and the episodes collected for it.
type Entry struct {
	Show     *tvmaze.Show
	Episodes []tvmaze.Episode
	Source   Source
	Seq      int
	Replaced bool
}

// Registry maps show ids to entries and remembers first-insertion order.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries map[int64]*Entry
	order   []int64
	seq     int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[int64]*Entry)}
}

func (r *Registry) insertLocked(show *tvmaze.Show, episodes []tvmaze.Episode, source Source) *Entry {
	entry := &Entry{Show: show, Episodes: episodes, Source: source, Seq: r.seq}
	r.seq++
	r.entries[show.ID] = entry
	r.order = append(r.order, show.ID)
	return entry
}

// Observe appends ep to the show's entry, creating the entry on first
// sighting. The show record of an existing entry is kept.
func (r *Registry) Observe(show *tvmaze.Show, ep tvmaze.Episode, source Source) {
	if show == nil || show.ID == 0 {
		return
	}
	ep = ep.Stripped()
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[show.ID]; ok {
		entry.Episodes = append(entry.Episodes, ep)
		return
	}
	r.insertLocked(show, []tvmaze.Episode{ep}, source)
}

// Register creates an entry with episodes when the show is absent. It
// reports whether the entry was created.
func (r *Registry) Register(show *tvmaze.Show, episodes []tvmaze.Episode, source Source) bool {
	if show == nil || show.ID == 0 {
		return false
	}
	stripped := make([]tvmaze.Episode, 0, len(episodes))
	for _, ep := range episodes {
		stripped = append(stripped, ep.Stripped())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[show.ID]; ok {
		return false
	}
	r.insertLocked(show, stripped, source)
	return true
}

// Replace swaps the entry's show record for show wholesale and unions
// episodes into its collection. It reports false when id is not registered.
func (r *Registry) Replace(id int64, show *tvmaze.Show, episodes []tvmaze.Episode) bool {
	if show == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return false
	}
	merged := make([]tvmaze.Episode, 0, len(entry.Episodes)+len(episodes))
	merged = append(merged, entry.Episodes...)
	for _, ep := range episodes {
		merged = append(merged, ep.Stripped())
	}
	entry.Show = show
	entry.Episodes = Dedupe(merged)
	entry.Replaced = true
	return true
}

// Remove deletes the entry for id. It reports whether one existed.
func (r *Registry) Remove(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	r.order = slices.DeleteFunc(r.order, func(v int64) bool { return v == id })
	return true
}

// Has reports whether id is registered.
func (r *Registry) Has(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	return ok
}

// Get returns a copy of the entry for id.
func (r *Registry) Get(id int64) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}
	out := *entry
	out.Episodes = slices.Clone(entry.Episodes)
	return out, true
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// IDs returns the registered show ids in insertion order.
func (r *Registry) IDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// Snapshot copies every entry in insertion order.
func (r *Registry) Snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		entry := *r.entries[id]
		entry.Episodes = slices.Clone(entry.Episodes)
		out = append(out, entry)
	}
	return out
}
