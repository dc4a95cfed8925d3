package models

import "encoding/json"

// FileActionKind is what a plan step does to a single path.
type FileActionKind string

const (
	ActionCreate FileActionKind = "CREATE"
	ActionModify FileActionKind = "MODIFY"
	ActionDelete FileActionKind = "DELETE"
)

// FileAction is one file-level change inside a plan step.
type FileAction struct {
	Path   string         `json:"path"`
	Action FileActionKind `json:"action"`
}

// PlanStep is one ordered step of a plan.
type PlanStep struct {
	StepNumber  int          `json:"step_number"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Files       []FileAction `json:"files"`
	RiskNote    string       `json:"risk_note,omitempty"`
}

// Plan is the server's proposed change set for a stated goal. A plan is
// immutable once displayed; execution must echo it back exactly as
// received so the server can validate it unchanged.
type Plan struct {
	Goal    string     `json:"goal"`
	Summary string     `json:"summary"`
	Steps   []PlanStep `json:"steps"`

	// Raw is the server's original encoding. Execution echoes it
	// verbatim, so fields beyond the decoded schema survive the round
	// trip.
	Raw json.RawMessage `json:"-"`
}

// ExecutionStep is the server's report for one applied plan step.
type ExecutionStep struct {
	StepNumber int    `json:"step_number"`
	Title      string `json:"title,omitempty"`
	Status     string `json:"status,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// ExecutionLog is the server's record of applying an approved plan.
// Append-only once attached to the transcript.
type ExecutionLog struct {
	Message string          `json:"message"`
	Steps   []ExecutionStep `json:"executionLog"`
}
