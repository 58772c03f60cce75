package fix

import (
	"remedy/internal/diag"
	"remedy/internal/workspace"
)

// Outcome is the result of one strategy attempt.
type Outcome uint8

const (
	Skipped Outcome = iota
	Succeeded
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Succeeded:
		return "succeeded"
	case Fatal:
		return "fatal"
	}
	return "unknown"
}

// Status is the final state of a run.
type Status uint8

const (
	StatusSuccess Status = iota + 1
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	}
	return "unknown"
}

// Strategy names used in results, logs and metrics.
const (
	StrategyBulk   = "bulk"
	StrategySingle = "single"
)

// AppliedFix records one applied edit.
type AppliedFix struct {
	ID        string
	Strategy  string
	Provider  string
	Title     string
	Instances int
	// Version is the snapshot version produced by the edit.
	Version uint64
}

// Result is the outcome of Engine.Run for one unit.
type Result struct {
	Unit       workspace.UnitID
	Status     Status
	Err        error
	Iterations int
	Applied    []AppliedFix
	Ledger     *Ledger
	// Unresolved are the findings no provider could fix.
	Unresolved []diag.Diagnostic
	// Outstanding are the visible findings of the last analysis pass.
	Outstanding []diag.Diagnostic
	// Snapshot is the workspace snapshot when the run ended.
	Snapshot *workspace.Snapshot
}

// Succeeded reports whether the run converged with nothing left unresolved.
func (r *Result) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}
