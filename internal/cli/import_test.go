package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsemenov/mediaport/internal/config"
)

func TestImportCommand_ParseFlags(t *testing.T) {
	cmd := NewImportCommand()
	err := cmd.ParseFlags([]string{
		"-export", "/exports/photos",
		"-categories", "photography,archive",
		"-chunk-size", "5",
		"-dry-run",
	})
	require.NoError(t, err)

	assert.Equal(t, "/exports/photos", cmd.ExportRoot)
	assert.Equal(t, "photography,archive", cmd.Categories)
	assert.Equal(t, 5, cmd.ChunkSize)
	assert.True(t, cmd.DryRun)

	// Unset flags keep their defaults
	assert.Equal(t, config.DefaultDatabasePath, cmd.DatabasePath)
	assert.Equal(t, config.DefaultContentSubdir, cmd.ContentSubdir)
}

func TestImportCommand_ParseFlags_RequiresExport(t *testing.T) {
	cmd := NewImportCommand()
	err := cmd.ParseFlags(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-export")
}
