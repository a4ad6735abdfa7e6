package catalog

import "tvcatalog/internal/tvmaze"

// Dedupe collapses episodes sharing an identifier. Episodes without an
// identifier are dropped. A repeated identifier keeps the position of its
// first occurrence and the value of its last.
func Dedupe(episodes []tvmaze.Episode) []tvmaze.Episode {
	if len(episodes) == 0 {
		return nil
	}
	index := make(map[int64]int, len(episodes))
	out := make([]tvmaze.Episode, 0, len(episodes))
	for _, ep := range episodes {
		if ep.ID == 0 {
			continue
		}
		if pos, ok := index[ep.ID]; ok {
			out[pos] = ep
			continue
		}
		index[ep.ID] = len(out)
		out = append(out, ep)
	}
	return out
}
