package cli

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dsemenov/mediaport/internal/config"
	"github.com/dsemenov/mediaport/internal/database"
	"github.com/dsemenov/mediaport/internal/database/runs"
	"github.com/dsemenov/mediaport/internal/entities"
)

// StatusCommand prints the durable import run record.
type StatusCommand struct {
	DatabasePath string
}

func NewStatusCommand() *StatusCommand {
	return &StatusCommand{}
}

func (cmd *StatusCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s status [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show the state of the import pipeline.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *StatusCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	run, err := runs.NewRepository(db.DB).Get()
	if err != nil {
		return fmt.Errorf("failed to read run status: %w", err)
	}

	fmt.Printf("State:    %s\n", run.State)
	fmt.Printf("Progress: %d/%d\n", run.Progress, run.Total)
	if run.StartedAt != nil {
		fmt.Printf("Started:  %s\n", run.StartedAt.Format(time.RFC3339))
	}
	if run.CompletedAt != nil {
		fmt.Printf("Finished: %s\n", run.CompletedAt.Format(time.RFC3339))
	}
	if run.State == entities.RunStateFailed && run.Error != "" {
		fmt.Printf("Error:    %s\n", run.Error)
	}

	return nil
}
