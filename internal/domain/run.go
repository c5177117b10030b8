package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the outcome of one stage runner invocation.
type RunStatus string

const (
	RunOK      RunStatus = "ok"
	RunPartial RunStatus = "partial"
	RunFailed  RunStatus = "failed"
)

func (s RunStatus) String() string { return string(s) }

// Run is one recorded stage runner invocation.
type Run struct {
	ID         uuid.UUID      `json:"id"`
	Stage      string         `json:"stage"`
	Operator   string         `json:"operator"`
	Status     RunStatus      `json:"status"`
	Counts     map[string]int `json:"counts"`
	Errors     []ItemError    `json:"errors,omitempty"`
	Message    string         `json:"message,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}
