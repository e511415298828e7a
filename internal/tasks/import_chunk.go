package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/dsemenov/mediaport/internal/database/runs"
	"github.com/dsemenov/mediaport/internal/entities"
	"github.com/dsemenov/mediaport/internal/mediaexport"
	"github.com/dsemenov/mediaport/internal/services"
)

// Queue names for the import pipeline.
const (
	QueueImportChunk    = "import_chunk"
	QueueImportComplete = "import_complete"
)

// ImportChunkTask carries one ordered slice of export items together with
// its position in the run, so the last chunk can trigger completion.
// Immutable once enqueued.
type ImportChunkTask struct {
	Items       []mediaexport.Item `json:"items"`
	ChunkIndex  int                `json:"chunk_index"`
	TotalChunks int                `json:"total_chunks"`
}

// Config returns the queue configuration for chunk import tasks.
// A chunk that fails is not retried: the run is marked failed and must be
// explicitly reset, so re-execution never races a reset.
func (t ImportChunkTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueImportChunk,
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CompletionEnqueuer submits the follow-up task fired by the last chunk.
type CompletionEnqueuer interface {
	EnqueueCompletion(ctx context.Context) error
}

// ChunkDeps are the collaborators a chunk execution needs. The run inputs
// (export root, categories) are read from durable settings at execution
// time because the task may run in a different process than the one that
// scheduled it.
type ChunkDeps struct {
	Importer    *services.ItemImporter
	Runs        services.RunStore
	Settings    services.RunSettings
	Completions CompletionEnqueuer
	Audit       services.AuditLogger
}

// ImportChunkProcessor creates a processor function for ImportChunkTask.
//
// Per-item outcomes never abort the chunk: skips and item-level failures
// are logged and counted, and the run's progress still advances by the
// chunk's full item count. Only an error touching the run as a whole
// (settings or status store unreachable, completion enqueue failing)
// fails the chunk, which marks the run failed and stops the chain.
func ImportChunkProcessor(deps ChunkDeps) backlite.QueueProcessor[ImportChunkTask] {
	return func(ctx context.Context, task ImportChunkTask) error {
		exportRoot, err := deps.Settings.ExportRoot()
		if err != nil {
			return failRun(deps, fmt.Errorf("failed to load export root: %w", err))
		}
		categoryIDs, err := deps.Settings.CategorySelection()
		if err != nil {
			return failRun(deps, fmt.Errorf("failed to load category selection: %w", err))
		}

		var imported, skipped, failed int
		for _, item := range task.Items {
			outcome := deps.Importer.Import(item, exportRoot, categoryIDs)
			switch outcome.Kind {
			case services.OutcomeImported:
				imported++
			case services.OutcomeSkipped:
				skipped++
				log.Printf("[TASK] Skipped %s: %s", item.SourceURI, outcome.Reason)
			case services.OutcomeFailed:
				failed++
				log.Printf("[TASK ERROR] Failed to import %s: %v", item.SourceURI, outcome.Err)
			}
		}

		processing := entities.RunStateProcessing
		delta := len(task.Items)
		if err := deps.Runs.Merge(runs.Patch{State: &processing, ProgressDelta: &delta}); err != nil {
			return failRun(deps, fmt.Errorf("failed to update run progress: %w", err))
		}

		log.Printf("[TASK] Chunk %d/%d done: %d imported, %d skipped, %d failed",
			task.ChunkIndex+1, task.TotalChunks, imported, skipped, failed)

		if task.ChunkIndex == task.TotalChunks-1 {
			if err := deps.Completions.EnqueueCompletion(ctx); err != nil {
				return failRun(deps, fmt.Errorf("failed to enqueue completion task: %w", err))
			}
		}

		return nil
	}
}

// failRun records an unrecoverable chunk error on the run and passes the
// error back to the queue. The run stalls in state failed until reset.
func failRun(deps ChunkDeps, err error) error {
	failedState := entities.RunStateFailed
	msg := err.Error()
	if mergeErr := deps.Runs.Merge(runs.Patch{State: &failedState, Error: &msg}); mergeErr != nil {
		log.Printf("[TASK ERROR] failed to record run failure: %v", mergeErr)
	}
	deps.Audit.LogRunFailed(msg)
	return err
}

// NewImportChunkQueue creates a backlite queue for chunk import tasks.
func NewImportChunkQueue(deps ChunkDeps) backlite.Queue {
	return backlite.NewQueue(ImportChunkProcessor(deps))
}
