package catalog

import (
	"testing"

	"tvcatalog/internal/tvmaze"
)

func TestDedupeLastWriteWins(t *testing.T) {
	in := []tvmaze.Episode{
		{ID: 1, Name: "first"},
		{ID: 2, Name: "second"},
		{ID: 0, Name: "no id"},
		{ID: 1, Name: "first again"},
	}
	out := Dedupe(in)
	if len(out) != 2 {
		t.Fatalf("expected two episodes, got %d", len(out))
	}
	if out[0].ID != 1 || out[0].Name != "first again" {
		t.Fatalf("expected later write to win at first position, got %+v", out[0])
	}
	if out[1].ID != 2 {
		t.Fatalf("unexpected second episode %+v", out[1])
	}
}

func TestDedupeEmpty(t *testing.T) {
	if out := Dedupe(nil); out != nil {
		t.Fatalf("expected nil, got %v", out)
	}
}

func TestDedupeNoDuplicateIDs(t *testing.T) {
	var in []tvmaze.Episode
	for i := 0; i < 50; i++ {
		in = append(in, tvmaze.Episode{ID: int64(i % 7)})
	}
	seen := map[int64]bool{}
	for _, ep := range Dedupe(in) {
		if seen[ep.ID] {
			t.Fatalf("duplicate id %d", ep.ID)
		}
		if ep.ID == 0 {
			t.Fatal("episode without id survived")
		}
		seen[ep.ID] = true
	}
	if len(seen) != 6 {
		t.Fatalf("expected 6 distinct ids, got %d", len(seen))
	}
}
