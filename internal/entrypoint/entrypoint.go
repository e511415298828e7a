package entrypoint

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dsemenov/mediaport/internal/audit"
	"github.com/dsemenov/mediaport/internal/config"
	"github.com/dsemenov/mediaport/internal/contentstore"
	"github.com/dsemenov/mediaport/internal/database"
	auditdb "github.com/dsemenov/mediaport/internal/database/audit"
	"github.com/dsemenov/mediaport/internal/database/runs"
	"github.com/dsemenov/mediaport/internal/database/settings"
	"github.com/dsemenov/mediaport/internal/services"
	"github.com/dsemenov/mediaport/internal/settingsstore"
	"github.com/dsemenov/mediaport/internal/tasks"
)

// Run starts the task worker process: it wires the content store, the
// import services and the queue processors together, then blocks until a
// shutdown signal arrives. Chunk tasks enqueued by the import command
// execute here, whether they were enqueued from this process or another.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Mediaport worker v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	client, err := tasks.NewClient(cfg.Database.Path, tasks.Config{
		Workers:         cfg.Tasks.Workers,
		ReleaseAfter:    cfg.Tasks.ReleaseAfter,
		CleanupInterval: cfg.Tasks.CleanupInterval,
	})
	if err != nil {
		log.Fatalf("Failed to open task queue: %v", err)
	}
	defer client.Close()

	store := contentstore.New(db.DB, cfg.Storage.AssetsDir)
	runStore := runs.NewRepository(db.DB)
	settingsStore := settingsstore.New(settings.NewRepository(db.DB))
	auditService := audit.NewService(auditdb.NewRepository(db.DB))

	deps := tasks.ChunkDeps{
		Importer:    services.NewItemImporter(store),
		Runs:        runStore,
		Settings:    settingsStore,
		Completions: tasks.NewDispatcher(client),
		Audit:       auditService,
	}

	client.Register(
		tasks.NewImportChunkQueue(deps),
		tasks.NewImportCompleteQueue(runStore, auditService),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)

	if cfg.Audit.RetentionDays > 0 {
		retention := time.Duration(cfg.Audit.RetentionDays) * 24 * time.Hour
		if deleted, err := auditService.DeleteOldEvents(retention); err != nil {
			log.Printf("Failed to prune audit events: %v", err)
		} else if deleted > 0 {
			log.Printf("Pruned %d audit events older than %d days", deleted, cfg.Audit.RetentionDays)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	log.Printf("Shutting down, waiting up to %v for active tasks", timeout)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), timeout)
	defer stopCancel()

	client.Stop(stopCtx)
	cancel()

	log.Println("Worker exiting")
}
