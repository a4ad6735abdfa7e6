// Package tvmaze provides the typed TVMaze API operations the catalog build
// relies on.
//
// Every call goes through a fetch.Fetcher, so rate limiting, 429 backoff, and
// soft failure are handled there. Operations return zero values and false
// when the upstream gave nothing usable; callers treat that as "no data".
package tvmaze
