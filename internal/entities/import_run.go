package entities

import (
	"time"
)

type RunState string

const (
	RunStateNone       RunState = "none"
	RunStateQueued     RunState = "queued"
	RunStateProcessing RunState = "processing"
	RunStateCompleted  RunState = "completed"
	RunStateFailed     RunState = "failed"
)

// ImportRun is the singleton durable status record for the import
// pipeline. There is exactly one row (RunKey is uniquely indexed and
// always RunKeyMediaImport); every stage of the pipeline mutates it
// through merge updates so unrelated fields survive concurrent writers.
type ImportRun struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	RunKey      string     `gorm:"size:50;uniqueIndex" json:"run_key"`
	State       RunState   `gorm:"size:20" json:"state"`
	Progress    int        `json:"progress"`
	Total       int        `json:"total"`
	Error       string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}

// RunKeyMediaImport identifies the media import pipeline's status row.
const RunKeyMediaImport = "media_import"
