// Package runs provides database operations for the durable import run
// status record.
//
// The record is a singleton row. All writers go through Merge, which
// applies only the fields present in the patch inside one transaction, so
// two chunk tasks completing near-simultaneously cannot clobber each
// other's fields.
package runs

import (
	"time"

	"gorm.io/gorm"

	"github.com/dsemenov/mediaport/internal/entities"
)

// Patch carries a partial status update. Nil fields are left untouched.
// ProgressDelta increments the stored progress atomically rather than
// overwriting it; Progress (absolute) wins if both are set.
type Patch struct {
	State            *entities.RunState
	Progress         *int
	ProgressDelta    *int
	Total            *int
	Error            *string
	StartedAt        *time.Time
	CompletedAt      *time.Time
	ClearStartedAt   bool // reset StartedAt to NULL
	ClearCompletedAt bool // reset CompletedAt to NULL
}

// Repository handles all import run database operations.
type Repository struct {
	db     *gorm.DB
	runKey string
}

// NewRepository creates a run repository for the media import pipeline.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, runKey: entities.RunKeyMediaImport}
}

// Get retrieves the run record. A record that was never created reads as
// state "none" with zero progress.
func (r *Repository) Get() (*entities.ImportRun, error) {
	var run entities.ImportRun
	err := r.db.Where("run_key = ?", r.runKey).First(&run).Error
	if err == gorm.ErrRecordNotFound {
		return &entities.ImportRun{
			RunKey: r.runKey,
			State:  entities.RunStateNone,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Merge applies the patch to the stored record, creating the row if it
// does not exist yet. Only fields present in the patch are written.
func (r *Repository) Merge(patch Patch) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var run entities.ImportRun
		result := tx.Where("run_key = ?", r.runKey).First(&run)

		if result.Error == gorm.ErrRecordNotFound {
			run = entities.ImportRun{
				RunKey: r.runKey,
				State:  entities.RunStateNone,
			}
			if err := tx.Create(&run).Error; err != nil {
				return err
			}
		} else if result.Error != nil {
			return result.Error
		}

		updates := map[string]any{
			"updated_at": time.Now(),
		}
		if patch.State != nil {
			updates["state"] = *patch.State
		}
		if patch.Progress != nil {
			updates["progress"] = *patch.Progress
		} else if patch.ProgressDelta != nil {
			updates["progress"] = gorm.Expr("progress + ?", *patch.ProgressDelta)
		}
		if patch.Total != nil {
			updates["total"] = *patch.Total
		}
		if patch.Error != nil {
			updates["error"] = *patch.Error
		}
		if patch.StartedAt != nil {
			updates["started_at"] = *patch.StartedAt
		} else if patch.ClearStartedAt {
			updates["started_at"] = nil
		}
		if patch.CompletedAt != nil {
			updates["completed_at"] = *patch.CompletedAt
		} else if patch.ClearCompletedAt {
			updates["completed_at"] = nil
		}

		return tx.Model(&entities.ImportRun{}).
			Where("run_key = ?", r.runKey).
			Updates(updates).Error
	})
}
