package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dsemenov/mediaport/internal/database/runs"
	"github.com/dsemenov/mediaport/internal/entities"
	"github.com/dsemenov/mediaport/internal/mediaexport"
)

// ErrAlreadyRunning is returned when chunk tasks from a previous schedule
// call are still pending.
var ErrAlreadyRunning = errors.New("an import run is already in progress")

// SourceReader is the slice of the export reader the scheduler needs.
type SourceReader interface {
	ReadAll() ([]mediaexport.Item, error)
}

// ReaderFactory builds a reader for a given export root.
type ReaderFactory func(exportRoot string) SourceReader

// ScheduleResult summarizes an accepted schedule call.
type ScheduleResult struct {
	Items  int
	Chunks int
}

// ScheduleService partitions an export into chunks and submits each chunk
// as an independent asynchronous task.
type ScheduleService struct {
	dispatcher TaskDispatcher
	runStore   RunStore
	settings   RunSettings
	audit      AuditLogger
	newReader  ReaderFactory
	chunkSize  int
}

func NewScheduleService(dispatcher TaskDispatcher, runStore RunStore, settings RunSettings, audit AuditLogger, newReader ReaderFactory, chunkSize int) *ScheduleService {
	if chunkSize < 1 {
		chunkSize = 10
	}
	return &ScheduleService{
		dispatcher: dispatcher,
		runStore:   runStore,
		settings:   settings,
		audit:      audit,
		newReader:  newReader,
		chunkSize:  chunkSize,
	}
}

// Schedule accepts a new import run, or fails closed.
//
// Discovery and parse errors surface here, before anything is enqueued.
// An export with no importable items completes the run immediately
// without queueing anything. A second schedule call while chunk tasks
// are pending is refused with ErrAlreadyRunning and has no side effects.
func (s *ScheduleService) Schedule(ctx context.Context, exportRoot string, categoryIDs []uint) (*ScheduleResult, error) {
	pending, err := s.dispatcher.HasPendingChunks()
	if err != nil {
		return nil, fmt.Errorf("failed to check pending tasks: %w", err)
	}
	if pending {
		return nil, ErrAlreadyRunning
	}

	items, err := s.newReader(exportRoot).ReadAll()
	if err != nil {
		s.audit.LogSchedule(exportRoot, 0, 0, err)
		return nil, err
	}

	// Metadata files that parse but hold no media yield zero chunks, so
	// nothing would ever fire the completion task. Complete the run on
	// the spot instead of leaving it queued forever.
	if len(items) == 0 {
		now := time.Now()
		completed := entities.RunStateCompleted
		zero := 0
		empty := ""
		if err := s.runStore.Merge(runs.Patch{
			State:       &completed,
			Progress:    &zero,
			Total:       &zero,
			Error:       &empty,
			StartedAt:   &now,
			CompletedAt: &now,
		}); err != nil {
			return nil, fmt.Errorf("failed to record empty run: %w", err)
		}
		log.Printf("Export at %s contains no importable items", exportRoot)
		s.audit.LogSchedule(exportRoot, 0, 0, nil)
		return &ScheduleResult{}, nil
	}

	// Run inputs go to durable storage first so chunk tasks can read
	// them from any process.
	if err := s.settings.SetExportRoot(exportRoot); err != nil {
		return nil, fmt.Errorf("failed to persist export root: %w", err)
	}
	if err := s.settings.SetCategorySelection(categoryIDs); err != nil {
		return nil, fmt.Errorf("failed to persist category selection: %w", err)
	}

	chunks := ChunkItems(items, s.chunkSize)

	now := time.Now()
	queued := entities.RunStateQueued
	zero := 0
	total := len(items)
	empty := ""
	if err := s.runStore.Merge(runs.Patch{
		State:            &queued,
		Progress:         &zero,
		Total:            &total,
		Error:            &empty,
		StartedAt:        &now,
		ClearCompletedAt: true,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize run status: %w", err)
	}

	for i, chunk := range chunks {
		if err := s.dispatcher.EnqueueChunk(ctx, chunk, i, len(chunks)); err != nil {
			// Pull back what was already queued: a stray chunk running
			// later would overwrite the failed state with processing.
			if cancelled, cancelErr := s.dispatcher.CancelPendingChunks(); cancelErr != nil {
				log.Printf("failed to cancel chunks after enqueue failure: %v", cancelErr)
			} else if cancelled > 0 {
				log.Printf("cancelled %d queued chunks after enqueue failure", cancelled)
			}
			failed := entities.RunStateFailed
			msg := fmt.Sprintf("failed to enqueue chunk %d/%d: %v", i+1, len(chunks), err)
			if mergeErr := s.runStore.Merge(runs.Patch{State: &failed, Error: &msg}); mergeErr != nil {
				log.Printf("failed to record enqueue failure: %v", mergeErr)
			}
			s.audit.LogSchedule(exportRoot, total, len(chunks), err)
			return nil, fmt.Errorf("failed to enqueue chunk %d: %w", i, err)
		}
	}

	log.Printf("Scheduled import of %d items in %d chunks from %s", total, len(chunks), exportRoot)
	s.audit.LogSchedule(exportRoot, total, len(chunks), nil)

	return &ScheduleResult{Items: total, Chunks: len(chunks)}, nil
}

// ChunkItems partitions items into slices of at most size elements,
// preserving order. The concatenation of the chunks is the input.
func ChunkItems(items []mediaexport.Item, size int) [][]mediaexport.Item {
	if size < 1 {
		size = 1
	}
	var chunks [][]mediaexport.Item
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
