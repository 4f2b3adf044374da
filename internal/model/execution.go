package model

import "time"

// Execution is one immutable log entry for a single code run attempt.
//
// Records are append-only: they are written exactly once by the owning user
// and never updated or deleted. CreatedAt is assigned by the server at insert
// time with nanosecond precision, because both the pagination cursor and the
// 24-hour activity window compare raw timestamps.
//
// The run outcome is a tagged variant rather than two both-optional strings:
// a run either produced output or failed with an error. Only the populated
// side of the variant appears in the JSON result object.
type Execution struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"` // owning user's subject
	Language  string    `json:"language"  db:"language"`
	Code      string    `json:"code"      db:"code"`
	Result    RunResult `json:"result"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// RunOutcome tags a RunResult as a success or a failure.
type RunOutcome int

const (
	RunSucceeded RunOutcome = iota
	RunFailed
)

// RunResult is the outcome of one execution: Output when the run succeeded,
// Error when it failed. Exactly one of the two carries the payload.
type RunResult struct {
	Outcome RunOutcome `json:"-"`
	Output  string     `json:"output,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// Succeeded reports whether the run completed without an error.
func (r RunResult) Succeeded() bool { return r.Outcome == RunSucceeded }

// SuccessResult builds the success variant of a RunResult.
func SuccessResult(output string) RunResult {
	return RunResult{Outcome: RunSucceeded, Output: output}
}

// FailureResult builds the failure variant of a RunResult.
func FailureResult(errText string) RunResult {
	return RunResult{Outcome: RunFailed, Error: errText}
}
