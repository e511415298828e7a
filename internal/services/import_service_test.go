package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsemenov/mediaport/internal/mediaexport"
)

func writeMedia(t *testing.T, exportRoot, uri string) {
	t.Helper()
	path := filepath.Join(exportRoot, filepath.FromSlash(uri))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("jpeg-bytes"), 0o644))
}

func validItem() mediaexport.Item {
	return mediaexport.Item{
		SourceURI:  "media/posts/one.jpg",
		CapturedAt: time.Unix(1609459200, 0).UTC(),
		Caption:    "Great sunset! #beach #vacation Second sentence.",
	}
}

func TestItemImporter_Import(t *testing.T) {
	exportRoot := t.TempDir()
	item := validItem()
	writeMedia(t, exportRoot, item.SourceURI)

	store := newFakeStore()
	importer := NewItemImporter(store)

	outcome := importer.Import(item, exportRoot, []uint{3, 5})
	require.Equal(t, OutcomeImported, outcome.Kind)
	require.NotZero(t, outcome.AssetID)

	asset := store.assets[outcome.AssetID]
	assert.Equal(t, "one.jpg", asset.name)
	assert.Equal(t, "Great sunset!", asset.title)
	assert.Equal(t, int64(len("jpeg-bytes")), asset.size)

	require.Len(t, store.posts, 1)
	post := store.posts[1]
	assert.Equal(t, "Great sunset!", post.title)
	assert.Equal(t, item.Caption, post.body)
	assert.Equal(t, []uint{3, 5}, post.categories)
	assert.True(t, post.publishedAt.Equal(item.CapturedAt.UTC()))
	assert.Equal(t, outcome.AssetID, post.featured)
}

func TestItemImporter_Import_Idempotent(t *testing.T) {
	exportRoot := t.TempDir()
	item := validItem()
	writeMedia(t, exportRoot, item.SourceURI)

	store := newFakeStore()
	importer := NewItemImporter(store)

	first := importer.Import(item, exportRoot, nil)
	require.Equal(t, OutcomeImported, first.Kind)

	second := importer.Import(item, exportRoot, nil)
	assert.Equal(t, OutcomeSkipped, second.Kind)
	assert.Equal(t, SkipReasonAlreadyImported, second.Reason)

	// Exactly one asset and one post exist
	assert.Len(t, store.assets, 1)
	assert.Len(t, store.posts, 1)
}

func TestItemImporter_Import_InvalidItem(t *testing.T) {
	store := newFakeStore()
	importer := NewItemImporter(store)

	outcome := importer.Import(mediaexport.Item{Caption: "no uri"}, t.TempDir(), nil)
	assert.Equal(t, OutcomeSkipped, outcome.Kind)
	assert.Equal(t, SkipReasonInvalidItem, outcome.Reason)
	assert.Empty(t, store.assets)
}

func TestItemImporter_Import_SourceFileMissing(t *testing.T) {
	store := newFakeStore()
	importer := NewItemImporter(store)

	outcome := importer.Import(validItem(), t.TempDir(), nil)
	assert.Equal(t, OutcomeSkipped, outcome.Kind)
	assert.Equal(t, SkipReasonSourceFileMissing, outcome.Reason)
	assert.Empty(t, store.assets)
	assert.Empty(t, store.posts)
}

func TestItemImporter_Import_DedupProbeFailure(t *testing.T) {
	exportRoot := t.TempDir()
	item := validItem()
	writeMedia(t, exportRoot, item.SourceURI)

	store := newFakeStore()
	store.lookupErr = errors.New("store flaking")
	importer := NewItemImporter(store)

	// A failing probe must not fall through to a fresh import
	outcome := importer.Import(item, exportRoot, nil)
	assert.Equal(t, OutcomeFailed, outcome.Kind)
	assert.Empty(t, store.assets)
}

func TestItemImporter_Import_StorageFailure(t *testing.T) {
	exportRoot := t.TempDir()
	item := validItem()
	writeMedia(t, exportRoot, item.SourceURI)

	store := newFakeStore()
	store.createErr = errors.New("disk full")
	importer := NewItemImporter(store)

	outcome := importer.Import(item, exportRoot, nil)
	assert.Equal(t, OutcomeFailed, outcome.Kind)
}

func TestItemImporter_Import_PostFailureStillImported(t *testing.T) {
	exportRoot := t.TempDir()
	item := validItem()
	writeMedia(t, exportRoot, item.SourceURI)

	store := newFakeStore()
	store.postErr = errors.New("posts table locked")
	importer := NewItemImporter(store)

	// The asset is in and fingerprinted; the item counts as imported
	outcome := importer.Import(item, exportRoot, nil)
	assert.Equal(t, OutcomeImported, outcome.Kind)
	assert.Len(t, store.assets, 1)
	assert.Empty(t, store.posts)

	// And a retry dedups on the asset instead of recreating it
	retry := importer.Import(item, exportRoot, nil)
	assert.Equal(t, OutcomeSkipped, retry.Kind)
	assert.Equal(t, SkipReasonAlreadyImported, retry.Reason)
}
