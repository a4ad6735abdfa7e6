package history

import "time"

// Status is the lifecycle state of a build run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Outcome is what a finished build reports.
type Outcome struct {
	FinishedAt  time.Time
	Status      Status
	Shows       int
	Episodes    int
	Excluded    int
	Requests    int64
	RateLimited int64
	Failures    int64
	Error       string
}

// Run is one row of the ledger.
type Run struct {
	RunID       string     `json:"run_id"`
	BuildDate   string     `json:"build_date"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Status      Status     `json:"status"`
	Shows       int        `json:"shows"`
	Episodes    int        `json:"episodes"`
	Excluded    int        `json:"excluded"`
	Requests    int64      `json:"requests"`
	RateLimited int64      `json:"rate_limited"`
	Failures    int64      `json:"failures"`
	Error       string     `json:"error,omitempty"`
}

// Duration returns how long the run took, or 0 while it is running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
