package settingsstore

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dsemenov/mediaport/internal/database/settings"
	"github.com/dsemenov/mediaport/internal/entities"
)

func setupTestStore(t *testing.T) (*SettingsStore, *settings.Repository, func()) {
	dbPath := "./test_settingsstore_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Setting{}))

	repo := settings.NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return New(repo), repo, cleanup
}

func TestExportRoot(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	root, err := store.ExportRoot()
	require.NoError(t, err)
	assert.Empty(t, root)

	require.NoError(t, store.SetExportRoot("/exports/photos"))

	root, err = store.ExportRoot()
	require.NoError(t, err)
	assert.Equal(t, "/exports/photos", root)
}

func TestCategorySelection(t *testing.T) {
	store, repo, cleanup := setupTestStore(t)
	defer cleanup()

	// Absent key reads as an empty selection
	ids, err := store.CategorySelection()
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.SetCategorySelection([]uint{3, 1, 5}))

	ids, err = store.CategorySelection()
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 1, 5}, ids)

	// Stored as a JSON id list
	value, err := repo.GetOrDefault(entities.SettingKeyImportCategories, "")
	require.NoError(t, err)
	assert.JSONEq(t, "[3,1,5]", value)
}

func TestCategorySelection_NilIsEmpty(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	require.NoError(t, store.SetCategorySelection(nil))

	ids, err := store.CategorySelection()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestExtractionPaths(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	archivePath, extractionPath, err := store.ExtractionPaths()
	require.NoError(t, err)
	assert.Empty(t, archivePath)
	assert.Empty(t, extractionPath)

	require.NoError(t, store.SetExtractionPaths("/uploads/export.zip", "/tmp/extracted"))

	archivePath, extractionPath, err = store.ExtractionPaths()
	require.NoError(t, err)
	assert.Equal(t, "/uploads/export.zip", archivePath)
	assert.Equal(t, "/tmp/extracted", extractionPath)
}

func TestClearRunSettings(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	require.NoError(t, store.SetExportRoot("/exports/photos"))
	require.NoError(t, store.SetCategorySelection([]uint{1}))
	require.NoError(t, store.SetExtractionPaths("/uploads/export.zip", "/tmp/extracted"))

	require.NoError(t, store.ClearRunSettings())

	root, err := store.ExportRoot()
	require.NoError(t, err)
	assert.Empty(t, root)

	ids, err := store.CategorySelection()
	require.NoError(t, err)
	assert.Empty(t, ids)

	archivePath, extractionPath, err := store.ExtractionPaths()
	require.NoError(t, err)
	assert.Empty(t, archivePath)
	assert.Empty(t, extractionPath)

	// Clearing an already-clean store is fine
	assert.NoError(t, store.ClearRunSettings())
}
