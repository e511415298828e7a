package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/dsemenov/mediaport/internal/database/runs"
	"github.com/dsemenov/mediaport/internal/entities"
	"github.com/dsemenov/mediaport/internal/services"
)

// ImportCompleteTask is the follow-up fired by the last chunk. It only
// finalizes the status record.
type ImportCompleteTask struct{}

// Config returns the queue configuration for the completion task.
func (t ImportCompleteTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueImportComplete,
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportCompleteProcessor creates a processor function for ImportCompleteTask.
func ImportCompleteProcessor(runStore services.RunStore, audit services.AuditLogger) backlite.QueueProcessor[ImportCompleteTask] {
	return func(ctx context.Context, task ImportCompleteTask) error {
		now := time.Now()
		completed := entities.RunStateCompleted
		if err := runStore.Merge(runs.Patch{State: &completed, CompletedAt: &now}); err != nil {
			return fmt.Errorf("failed to mark run completed: %w", err)
		}

		run, err := runStore.Get()
		if err == nil {
			audit.LogRunCompleted(run.Progress, run.Total)
			log.Printf("[TASK] Import run completed: %d/%d items", run.Progress, run.Total)
		} else {
			log.Printf("[TASK] Import run completed")
		}

		return nil
	}
}

// NewImportCompleteQueue creates a backlite queue for completion tasks.
func NewImportCompleteQueue(runStore services.RunStore, audit services.AuditLogger) backlite.Queue {
	return backlite.NewQueue(ImportCompleteProcessor(runStore, audit))
}
