package services

import (
	"log"
	"os"

	"github.com/dsemenov/mediaport/internal/database/runs"
	"github.com/dsemenov/mediaport/internal/entities"
)

// ResetOptions controls how much a reset forgets. By default the status
// record is cleared and pending work cancelled while fingerprint markers
// survive, so a later run still dedups against everything imported
// before. PurgeFingerprints additionally deletes the markers, permitting
// a full re-import.
type ResetOptions struct {
	PurgeFingerprints bool
}

// ResetResult reports what a reset actually cleaned up.
type ResetResult struct {
	TasksCancelled     int64
	FingerprintsPurged int64
}

// ResetService stops a run and returns the pipeline to a clean slate.
type ResetService struct {
	dispatcher TaskDispatcher
	runStore   RunStore
	settings   RunSettings
	store      ContentStore
	audit      AuditLogger
}

func NewResetService(dispatcher TaskDispatcher, runStore RunStore, settings RunSettings, store ContentStore, audit AuditLogger) *ResetService {
	return &ResetService{
		dispatcher: dispatcher,
		runStore:   runStore,
		settings:   settings,
		store:      store,
		audit:      audit,
	}
}

// Reset cancels pending chunk tasks, reclaims temporary extraction
// storage, and clears the run status back to state none. In-flight chunk
// executions are not interrupted; they run to completion against the
// already-cleared status.
//
// Each cleanup step is independently best-effort: a step finding its
// target already absent, or failing outright, is logged and does not stop
// the others. Only a failure to clear the status record itself is
// returned as an error. Safe to call when no run is active.
func (s *ResetService) Reset(opts ResetOptions) (*ResetResult, error) {
	result := &ResetResult{}

	cancelled, err := s.dispatcher.CancelPendingChunks()
	if err != nil {
		log.Printf("reset: failed to cancel pending tasks: %v", err)
	} else if cancelled > 0 {
		log.Printf("reset: cancelled %d pending chunk tasks", cancelled)
	}
	result.TasksCancelled = cancelled

	if opts.PurgeFingerprints {
		purged, err := s.store.DeleteMetadataByKey(entities.MetadataKeyFingerprint)
		if err != nil {
			log.Printf("reset: failed to purge fingerprints: %v", err)
		} else {
			log.Printf("reset: purged %d fingerprint markers", purged)
		}
		result.FingerprintsPurged = purged
	}

	archivePath, extractionPath, err := s.settings.ExtractionPaths()
	if err != nil {
		log.Printf("reset: failed to read extraction paths: %v", err)
	} else {
		for _, path := range []string{extractionPath, archivePath} {
			if path == "" {
				continue
			}
			if err := os.RemoveAll(path); err != nil {
				log.Printf("reset: failed to remove %s: %v", path, err)
			}
		}
	}

	if err := s.settings.ClearRunSettings(); err != nil {
		log.Printf("reset: failed to clear run settings: %v", err)
	}

	none := entities.RunStateNone
	zero := 0
	empty := ""
	if err := s.runStore.Merge(runs.Patch{
		State:            &none,
		Progress:         &zero,
		Total:            &zero,
		Error:            &empty,
		ClearStartedAt:   true,
		ClearCompletedAt: true,
	}); err != nil {
		return result, err
	}

	s.audit.LogReset(result.TasksCancelled, result.FingerprintsPurged)
	log.Printf("Import pipeline reset")

	return result, nil
}
