package services

import (
	"context"
	"io"
	"time"

	"github.com/dsemenov/mediaport/internal/database/runs"
	"github.com/dsemenov/mediaport/internal/entities"
	"github.com/dsemenov/mediaport/internal/mediaexport"
)

// ContentStore is the content library the importer writes into.
type ContentStore interface {
	CreateAsset(r io.Reader, name, title string, metadata map[string]string) (uint, error)
	SetMetadata(assetID uint, key, value string) error
	FindAssetByMetadata(key, value string) (uint, error)
	DeleteMetadataByKey(key string) (int64, error)
	CreatePost(title, body string, categoryIDs []uint, publishedAt time.Time) (uint, error)
	SetFeaturedAsset(postID, assetID uint) error
}

// RunStore is the durable status record for the import pipeline.
type RunStore interface {
	Get() (*entities.ImportRun, error)
	Merge(patch runs.Patch) error
}

// RunSettings persists the inputs of a run so chunk tasks, which may
// execute in another process, can retrieve them.
type RunSettings interface {
	SetExportRoot(path string) error
	ExportRoot() (string, error)
	SetCategorySelection(ids []uint) error
	CategorySelection() ([]uint, error)
	ExtractionPaths() (archivePath, extractionPath string, err error)
	ClearRunSettings() error
}

// TaskDispatcher submits chunk work to the asynchronous queue and
// inspects or cancels what is still pending there.
type TaskDispatcher interface {
	EnqueueChunk(ctx context.Context, items []mediaexport.Item, chunkIndex, totalChunks int) error
	EnqueueCompletion(ctx context.Context) error
	HasPendingChunks() (bool, error)
	CancelPendingChunks() (int64, error)
}

// AuditLogger records pipeline lifecycle events. Logging failures are the
// logger's problem, not the pipeline's.
type AuditLogger interface {
	LogSchedule(exportRoot string, items, chunks int, err error)
	LogRunCompleted(progress, total int)
	LogRunFailed(message string)
	LogReset(cancelled int64, purgedFingerprints int64)
}
