package contentstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dsemenov/mediaport/internal/entities"
)

func setupTestStore(t *testing.T) (*Store, *gorm.DB, func()) {
	dbPath := "./test_contentstore_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Asset{},
		&entities.AssetMetadata{},
		&entities.Post{},
		&entities.Category{},
	)
	require.NoError(t, err)

	assetsDir := t.TempDir()
	store := New(db, assetsDir)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return store, db, cleanup
}

func TestStore_CreateAsset(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	assetID, err := store.CreateAsset(strings.NewReader("binary-bytes"), "sunset.jpg", "Sunset", map[string]string{
		entities.MetadataKeyFingerprint: "abc123",
	})
	require.NoError(t, err)
	require.NotZero(t, assetID)

	asset, err := store.GetAsset(assetID)
	require.NoError(t, err)
	assert.Equal(t, "sunset.jpg", asset.Name)
	assert.Equal(t, "Sunset", asset.Title)
	assert.Equal(t, int64(len("binary-bytes")), asset.Size)
	assert.Equal(t, ".jpg", filepath.Ext(asset.Path))

	// Binary landed on disk
	data, err := os.ReadFile(store.AssetFilePath(asset))
	require.NoError(t, err)
	assert.Equal(t, "binary-bytes", string(data))

	// Metadata was written with the asset
	value, err := store.GetMetadata(assetID, entities.MetadataKeyFingerprint)
	require.NoError(t, err)
	assert.Equal(t, "abc123", value)
}

func TestStore_FindAssetByMetadata(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	assetID, err := store.CreateAsset(strings.NewReader("x"), "a.jpg", "", map[string]string{
		entities.MetadataKeyFingerprint: "fp-1",
	})
	require.NoError(t, err)

	found, err := store.FindAssetByMetadata(entities.MetadataKeyFingerprint, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, assetID, found)

	missing, err := store.FindAssetByMetadata(entities.MetadataKeyFingerprint, "fp-other")
	require.NoError(t, err)
	assert.Zero(t, missing)
}

func TestStore_SetMetadata_Replaces(t *testing.T) {
	store, db, cleanup := setupTestStore(t)
	defer cleanup()

	assetID, err := store.CreateAsset(strings.NewReader("x"), "a.jpg", "", nil)
	require.NoError(t, err)

	require.NoError(t, store.SetMetadata(assetID, "k", "v1"))
	require.NoError(t, store.SetMetadata(assetID, "k", "v2"))

	value, err := store.GetMetadata(assetID, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", value)

	var count int64
	require.NoError(t, db.Model(&entities.AssetMetadata{}).
		Where("asset_id = ? AND key = ?", assetID, "k").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStore_DeleteMetadataByKey(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	for _, fp := range []string{"fp-1", "fp-2"} {
		_, err := store.CreateAsset(strings.NewReader("x"), "a.jpg", "", map[string]string{
			entities.MetadataKeyFingerprint: fp,
		})
		require.NoError(t, err)
	}

	deleted, err := store.DeleteMetadataByKey(entities.MetadataKeyFingerprint)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	found, err := store.FindAssetByMetadata(entities.MetadataKeyFingerprint, "fp-1")
	require.NoError(t, err)
	assert.Zero(t, found)
}

func TestStore_CreatePost(t *testing.T) {
	store, db, cleanup := setupTestStore(t)
	defer cleanup()

	category := entities.Category{Name: "Photography", Slug: "photography"}
	require.NoError(t, db.Create(&category).Error)

	publishedAt := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)
	postID, err := store.CreatePost("Great sunset!", "Great sunset! #beach", []uint{category.ID}, publishedAt)
	require.NoError(t, err)

	post, err := store.GetPost(postID)
	require.NoError(t, err)
	assert.Equal(t, "Great sunset!", post.Title)
	assert.Equal(t, entities.PostStatusPublished, post.Status)
	assert.True(t, post.PublishedAt.Equal(publishedAt))
	require.Len(t, post.Categories, 1)
	assert.Equal(t, "photography", post.Categories[0].Slug)
}

func TestStore_CreatePost_UnknownCategory(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.CreatePost("t", "b", []uint{999}, time.Now())
	assert.Error(t, err)
}

func TestStore_SetFeaturedAsset(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	assetID, err := store.CreateAsset(strings.NewReader("x"), "a.jpg", "", nil)
	require.NoError(t, err)

	postID, err := store.CreatePost("t", "b", nil, time.Now())
	require.NoError(t, err)

	require.NoError(t, store.SetFeaturedAsset(postID, assetID))

	post, err := store.GetPost(postID)
	require.NoError(t, err)
	require.NotNil(t, post.FeaturedAssetID)
	assert.Equal(t, assetID, *post.FeaturedAssetID)
}
