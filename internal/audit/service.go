package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/dsemenov/mediaport/internal/database/audit"
	"github.com/dsemenov/mediaport/internal/entities"
)

// Service provides high-level audit logging for the import pipeline.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// LogSchedule records the outcome of a schedule call.
func (s *Service) LogSchedule(exportRoot string, items, chunks int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventSchedule,
		Action:      "import_scheduled",
		Description: fmt.Sprintf("Scheduled import of %d items in %d chunks", items, chunks),
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"export_root": exportRoot,
		"items":       items,
		"chunks":      chunks,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogRunCompleted records a run reaching the completed state.
func (s *Service) LogRunCompleted(progress, total int) {
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventRun,
		Action:      "run_completed",
		Description: fmt.Sprintf("Import run completed: %d/%d items", progress, total),
		Status:      entities.AuditStatusSuccess,
	})
}

// LogRunFailed records a run stalling with an unrecoverable error.
func (s *Service) LogRunFailed(message string) {
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventRun,
		Action:      "run_failed",
		Description: "Import run failed",
		Status:      entities.AuditStatusFailed,
		ErrorMsg:    truncate(message, 500),
	})
}

// LogReset records a pipeline reset.
func (s *Service) LogReset(cancelled int64, purgedFingerprints int64) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventReset,
		Action:      "pipeline_reset",
		Description: fmt.Sprintf("Reset import pipeline (%d pending tasks cancelled)", cancelled),
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"tasks_cancelled":     cancelled,
		"fingerprints_purged": purgedFingerprints,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(limit, offset)
}

// DeleteOldEvents removes audit events past the retention window.
// Returns the number of deleted events.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(time.Now().Add(-retention))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
