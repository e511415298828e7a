package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dsemenov/mediaport/internal/database/runs"
	"github.com/dsemenov/mediaport/internal/entities"
	"github.com/dsemenov/mediaport/internal/mediaexport"
)

// fakeStore is an in-memory ContentStore with error injection.
type fakeStore struct {
	nextAssetID uint
	nextPostID  uint
	assets      map[uint]fakeAsset
	metadata    map[string]map[string]uint // key -> value -> assetID
	posts       map[uint]fakePost

	lookupErr error
	createErr error
	postErr   error
}

type fakeAsset struct {
	name  string
	title string
	size  int64
}

type fakePost struct {
	title       string
	body        string
	categories  []uint
	publishedAt time.Time
	featured    uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		assets:   make(map[uint]fakeAsset),
		metadata: make(map[string]map[string]uint),
		posts:    make(map[uint]fakePost),
	}
}

func (f *fakeStore) CreateAsset(r io.Reader, name, title string, metadata map[string]string) (uint, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.nextAssetID++
	f.assets[f.nextAssetID] = fakeAsset{name: name, title: title, size: int64(len(data))}
	for key, value := range metadata {
		if err := f.SetMetadata(f.nextAssetID, key, value); err != nil {
			return 0, err
		}
	}
	return f.nextAssetID, nil
}

func (f *fakeStore) SetMetadata(assetID uint, key, value string) error {
	if f.metadata[key] == nil {
		f.metadata[key] = make(map[string]uint)
	}
	f.metadata[key][value] = assetID
	return nil
}

func (f *fakeStore) FindAssetByMetadata(key, value string) (uint, error) {
	if f.lookupErr != nil {
		return 0, f.lookupErr
	}
	return f.metadata[key][value], nil
}

func (f *fakeStore) DeleteMetadataByKey(key string) (int64, error) {
	deleted := int64(len(f.metadata[key]))
	delete(f.metadata, key)
	return deleted, nil
}

func (f *fakeStore) CreatePost(title, body string, categoryIDs []uint, publishedAt time.Time) (uint, error) {
	if f.postErr != nil {
		return 0, f.postErr
	}
	f.nextPostID++
	f.posts[f.nextPostID] = fakePost{title: title, body: body, categories: categoryIDs, publishedAt: publishedAt}
	return f.nextPostID, nil
}

func (f *fakeStore) SetFeaturedAsset(postID, assetID uint) error {
	post, ok := f.posts[postID]
	if !ok {
		return errors.New("no such post")
	}
	post.featured = assetID
	f.posts[postID] = post
	return nil
}

// fakeRunStore applies merge patches to an in-memory record.
type fakeRunStore struct {
	run      entities.ImportRun
	mergeErr error
}

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{run: entities.ImportRun{
		RunKey: entities.RunKeyMediaImport,
		State:  entities.RunStateNone,
	}}
}

func (f *fakeRunStore) Get() (*entities.ImportRun, error) {
	run := f.run
	return &run, nil
}

func (f *fakeRunStore) Merge(patch runs.Patch) error {
	if f.mergeErr != nil {
		return f.mergeErr
	}
	if patch.State != nil {
		f.run.State = *patch.State
	}
	if patch.Progress != nil {
		f.run.Progress = *patch.Progress
	} else if patch.ProgressDelta != nil {
		f.run.Progress += *patch.ProgressDelta
	}
	if patch.Total != nil {
		f.run.Total = *patch.Total
	}
	if patch.Error != nil {
		f.run.Error = *patch.Error
	}
	if patch.StartedAt != nil {
		f.run.StartedAt = patch.StartedAt
	} else if patch.ClearStartedAt {
		f.run.StartedAt = nil
	}
	if patch.CompletedAt != nil {
		f.run.CompletedAt = patch.CompletedAt
	} else if patch.ClearCompletedAt {
		f.run.CompletedAt = nil
	}
	return nil
}

// fakeSettings is an in-memory RunSettings.
type fakeSettings struct {
	exportRoot     string
	categories     []uint
	archivePath    string
	extractionPath string
}

func (f *fakeSettings) SetExportRoot(path string) error { f.exportRoot = path; return nil }
func (f *fakeSettings) ExportRoot() (string, error)     { return f.exportRoot, nil }

func (f *fakeSettings) SetCategorySelection(ids []uint) error { f.categories = ids; return nil }
func (f *fakeSettings) CategorySelection() ([]uint, error)    { return f.categories, nil }

func (f *fakeSettings) ExtractionPaths() (string, string, error) {
	return f.archivePath, f.extractionPath, nil
}

func (f *fakeSettings) ClearRunSettings() error {
	*f = fakeSettings{}
	return nil
}

// fakeDispatcher records enqueued chunks instead of queueing them.
// When enqueueErr is set, enqueues fail once enqueueFailAfter chunks
// have been accepted.
type fakeDispatcher struct {
	chunks           []fakeChunk
	completions      int
	pending          bool
	cancelled        int64
	enqueueErr       error
	enqueueFailAfter int
}

type fakeChunk struct {
	items       []mediaexport.Item
	index       int
	totalChunks int
}

func (f *fakeDispatcher) EnqueueChunk(_ context.Context, items []mediaexport.Item, chunkIndex, totalChunks int) error {
	if f.enqueueErr != nil && len(f.chunks) >= f.enqueueFailAfter {
		return f.enqueueErr
	}
	f.chunks = append(f.chunks, fakeChunk{items: items, index: chunkIndex, totalChunks: totalChunks})
	return nil
}

func (f *fakeDispatcher) EnqueueCompletion(_ context.Context) error {
	f.completions++
	return nil
}

func (f *fakeDispatcher) HasPendingChunks() (bool, error) {
	return f.pending, nil
}

func (f *fakeDispatcher) CancelPendingChunks() (int64, error) {
	cancelled := int64(len(f.chunks))
	f.chunks = nil
	f.cancelled += cancelled
	return cancelled, nil
}

// nopAudit satisfies AuditLogger without side effects.
type nopAudit struct{}

func (nopAudit) LogSchedule(string, int, int, error) {}
func (nopAudit) LogRunCompleted(int, int)            {}
func (nopAudit) LogRunFailed(string)                 {}
func (nopAudit) LogReset(int64, int64)               {}

// staticReader serves a fixed item list.
type staticReader struct {
	items []mediaexport.Item
	err   error
}

func (s staticReader) ReadAll() ([]mediaexport.Item, error) {
	return s.items, s.err
}

func makeItems(n int) []mediaexport.Item {
	items := make([]mediaexport.Item, n)
	for i := range items {
		items[i] = mediaexport.Item{
			SourceURI:  fmt.Sprintf("media/posts/item_%03d.jpg", i),
			CapturedAt: time.Unix(int64(1600000000+i*60), 0).UTC(),
			Caption:    fmt.Sprintf("Caption %d.", i),
		}
	}
	return items
}
