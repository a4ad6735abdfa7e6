// Package fetch issues outbound GET requests to upstream metadata providers
// and decodes their JSON bodies.
//
// A Fetcher never returns an error to its caller. Network failures, non-2xx
// statuses, and malformed bodies all degrade to a false result so the build
// pipeline can treat "nothing came back" uniformly. Hosts registered with
// WithThrottle share one Gate that enforces a minimum interval between calls;
// HTTP 429 responses are retried with a linearly growing backoff until the
// retry budget is spent.
package fetch
