// Package tmdb provides the minimal TMDB API client used as the secondary
// provider during fallback resolution.
//
// It resolves IMDb ids to TMDB TV entries, reads a series' external ids so
// the build can hop back to TVMaze by TheTVDB id, and pages through
// first-air-date discovery. Requests share the build's fetch.Fetcher, so
// failures are soft and surface as false.
package tmdb
