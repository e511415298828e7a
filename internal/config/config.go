package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Database
		Storage
		Import
		Tasks
		Audit
		Global
	}

	Database struct {
		Path string
	}

	Storage struct {
		// AssetsDir is where imported binaries are copied to.
		AssetsDir string
	}

	Import struct {
		// ChunkSize is the number of items processed per queued task.
		ChunkSize int
		// ContentSubdir is the subdirectory of the export root that holds
		// the metadata files.
		ContentSubdir string
	}

	Tasks struct {
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}

	Audit struct {
		Dir           string
		RetentionDays int // Days to keep audit events (default: 30)
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("assets_dir", DefaultAssetsDir)
	v.SetDefault("import_chunk_size", DefaultChunkSize)
	v.SetDefault("import_content_subdir", DefaultContentSubdir)
	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	// Task queue defaults
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Storage: Storage{
			AssetsDir: v.GetString("ASSETS_DIR"),
		},
		Import: Import{
			ChunkSize:     v.GetInt("IMPORT_CHUNK_SIZE"),
			ContentSubdir: v.GetString("IMPORT_CONTENT_SUBDIR"),
		},
		Tasks: Tasks{
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Audit: Audit{
			Dir:           v.GetString("AUDIT_DIR"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
