package catalog

import (
	"testing"

	"tvcatalog/internal/tvmaze"
)

func TestRegistryObserveAppends(t *testing.T) {
	r := NewRegistry()
	show := &tvmaze.Show{ID: 42, Name: "Show"}
	r.Observe(show, tvmaze.Episode{ID: 1, Show: show}, SourceSchedule)
	r.Observe(&tvmaze.Show{ID: 42, Name: "Other copy"}, tvmaze.Episode{ID: 1}, SourceSchedule)
	r.Observe(&tvmaze.Show{}, tvmaze.Episode{ID: 9}, SourceSchedule)

	entry, ok := r.Get(42)
	if !ok {
		t.Fatal("expected entry")
	}
	if len(entry.Episodes) != 2 {
		t.Fatalf("expected append without dedupe, got %d", len(entry.Episodes))
	}
	if entry.Show.Name != "Show" {
		t.Fatalf("expected first show record to be kept, got %q", entry.Show.Name)
	}
	if entry.Episodes[0].Show != nil {
		t.Fatal("expected stored episodes to drop show references")
	}
	if r.Len() != 1 {
		t.Fatalf("expected show without id to be skipped, len=%d", r.Len())
	}
}

func TestRegistryRegisterOnlyWhenAbsent(t *testing.T) {
	r := NewRegistry()
	if !r.Register(&tvmaze.Show{ID: 1}, []tvmaze.Episode{{ID: 10}}, SourceEpisodesByDate) {
		t.Fatal("expected first register to create")
	}
	if r.Register(&tvmaze.Show{ID: 1}, []tvmaze.Episode{{ID: 11}}, SourceEpisodesByDate) {
		t.Fatal("expected second register to be ignored")
	}
	entry, _ := r.Get(1)
	if len(entry.Episodes) != 1 || entry.Episodes[0].ID != 10 || entry.Source != SourceEpisodesByDate {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestRegistryReplaceIsWholesale(t *testing.T) {
	r := NewRegistry()
	thin := &tvmaze.Show{ID: 7, Name: "Thin", Summary: "<p>old</p>", Genres: []string{"Drama"}, Image: &tvmaze.Image{Medium: "m.jpg"}}
	r.Observe(thin, tvmaze.Episode{ID: 1, Name: "stale"}, SourceSchedule)

	detail := &tvmaze.Show{ID: 7, Name: "Detail"}
	if !r.Replace(7, detail, []tvmaze.Episode{{ID: 1, Name: "fresh"}, {ID: 2}}) {
		t.Fatal("expected replace to succeed")
	}
	entry, _ := r.Get(7)
	if entry.Show != detail {
		t.Fatal("expected show record to be replaced wholesale")
	}
	if entry.Show.Image != nil || entry.Show.Summary != "" || len(entry.Show.Genres) != 0 {
		t.Fatalf("expected no stale fields from thin record, got %+v", entry.Show)
	}
	if len(entry.Episodes) != 2 || entry.Episodes[0].Name != "fresh" {
		t.Fatalf("expected deduplicated union with later write winning, got %+v", entry.Episodes)
	}
	if !entry.Replaced {
		t.Fatal("expected entry to be marked replaced")
	}
	if r.Replace(99, detail, nil) {
		t.Fatal("expected replace of unknown id to fail")
	}
}

func TestRegistryRemoveKeepsOrder(t *testing.T) {
	r := NewRegistry()
	for _, id := range []int64{3, 1, 2} {
		r.Register(&tvmaze.Show{ID: id}, nil, SourceSchedule)
	}
	if !r.Remove(1) || r.Remove(1) {
		t.Fatal("expected remove to succeed exactly once")
	}
	if r.Has(1) {
		t.Fatal("expected removed id to be absent")
	}
	ids := r.IDs()
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 2 {
		t.Fatalf("unexpected order %v", ids)
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Show.ID != 3 || snap[0].Seq >= snap[1].Seq {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}
