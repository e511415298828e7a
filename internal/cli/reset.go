package cli

import (
	"flag"
	"fmt"
	"os"

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

// ResetCommand stops a stuck or aborted run and clears the pipeline state.
type ResetCommand struct {
	DatabasePath      string
	AssetsDir         string
	PurgeFingerprints bool
}

func NewResetCommand() *ResetCommand {
	return &ResetCommand{}
}

func (cmd *ResetCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.StringVar(&cmd.AssetsDir, "assets", config.DefaultAssetsDir, "Directory imported binaries were copied into")
	fs.BoolVar(&cmd.PurgeFingerprints, "purge-fingerprints", false,
		"Also delete dedup markers so a later run re-imports everything (destructive)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s reset [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Cancel pending import tasks and clear the run status.\n")
		fmt.Fprintf(os.Stderr, "Dedup history is preserved unless -purge-fingerprints is given.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ResetCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	client, err := tasks.NewClient(cmd.DatabasePath, tasks.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to open task queue: %w", err)
	}
	defer client.Close()

	resetter := services.NewResetService(
		tasks.NewDispatcher(client),
		runs.NewRepository(db.DB),
		settingsstore.New(settings.NewRepository(db.DB)),
		contentstore.New(db.DB, cmd.AssetsDir),
		audit.NewService(auditdb.NewRepository(db.DB)),
	)

	result, err := resetter.Reset(services.ResetOptions{PurgeFingerprints: cmd.PurgeFingerprints})
	if err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}

	fmt.Printf("Reset done: %d pending tasks cancelled", result.TasksCancelled)
	if cmd.PurgeFingerprints {
		fmt.Printf(", %d fingerprints purged", result.FingerprintsPurged)
	}
	fmt.Println()

	return nil
}
