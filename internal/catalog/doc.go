// Package catalog holds the per-run show registry and turns it into the
// emitted records.
//
// The Registry is the single source of truth during a build: one entry per
// show with the episodes collected for it, in first-sighting order. Builder
// deduplicates each entry's episodes, keeps shows with at least one episode
// inside the trailing window, and projects them into catalog entries (sorted
// newest first) and per-show meta records (videos sorted oldest first).
package catalog
