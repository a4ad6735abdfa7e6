// Package pipeline runs one catalog build end to end.
//
// A build discovers shows from the primary provider's day schedules over the
// trailing window, fills gaps with fallback passes (per-show episodes by
// date, cross-provider detail resolution, and optional broader discovery),
// projects the registry into records, and publishes them. Every component
// shares one fetch.Fetcher so the provider rate limit holds across passes.
//
// Upstream failures never abort a build; they shrink it. Only output,
// locking, and configuration problems are returned as errors.
package pipeline
