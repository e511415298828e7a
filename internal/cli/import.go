package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dsemenov/mediaport/internal/audit"
	"github.com/dsemenov/mediaport/internal/config"
	"github.com/dsemenov/mediaport/internal/database"
	auditdb "github.com/dsemenov/mediaport/internal/database/audit"
	"github.com/dsemenov/mediaport/internal/database/runs"
	"github.com/dsemenov/mediaport/internal/database/settings"
	"github.com/dsemenov/mediaport/internal/mediaexport"
	"github.com/dsemenov/mediaport/internal/services"
	"github.com/dsemenov/mediaport/internal/settingsstore"
	"github.com/dsemenov/mediaport/internal/tasks"
)

// ImportCommand schedules an import run for an extracted export directory.
type ImportCommand struct {
	ExportRoot    string
	DatabasePath  string
	AuditDir      string
	Categories    string
	ContentSubdir string
	ChunkSize     int
	DryRun        bool
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.ExportRoot, "export", "", "Path to the extracted export directory (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.StringVar(&cmd.AuditDir, "audit", "./audit", "Directory for audit payload dumps")
	fs.StringVar(&cmd.Categories, "categories", "imported", "Comma-separated category slugs applied to every imported post")
	fs.StringVar(&cmd.ContentSubdir, "content-subdir", config.DefaultContentSubdir, "Export subdirectory holding the metadata files")
	fs.IntVar(&cmd.ChunkSize, "chunk-size", config.DefaultChunkSize, "Items per queued import task")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Discover and count importable items without scheduling anything")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -export <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Schedule an asynchronous import of a media export archive.\n")
		fmt.Fprintf(os.Stderr, "Chunks are queued here and executed by a running 'serve' process.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Schedule an import tagged with two categories:\n")
		fmt.Fprintf(os.Stderr, "  %s import -export ./export -categories photography,archive\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Preview what would be imported:\n")
		fmt.Fprintf(os.Stderr, "  %s import -export ./export -dry-run\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.ExportRoot == "" {
		return fmt.Errorf("required flag -export not provided")
	}

	return nil
}

func (cmd *ImportCommand) Run() error {
	if _, err := os.Stat(cmd.ExportRoot); os.IsNotExist(err) {
		return fmt.Errorf("export directory not found: %s", cmd.ExportRoot)
	}

	if cmd.DryRun {
		reader := mediaexport.NewReader(cmd.ExportRoot, cmd.ContentSubdir)
		files, err := reader.Discover()
		if err != nil {
			return err
		}
		items, err := reader.ReadAll()
		if err != nil {
			return err
		}
		valid := 0
		for _, item := range items {
			if item.Valid() {
				valid++
			}
		}
		fmt.Printf("DRY RUN: %d metadata files, %d items (%d valid), %d chunks\n",
			len(files), len(items), valid, len(services.ChunkItems(items, cmd.ChunkSize)))
		return nil
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	categoryIDs, err := resolveCategories(db, cmd.Categories)
	if err != nil {
		return err
	}

	client, err := tasks.NewClient(cmd.DatabasePath, tasks.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to open task queue: %w", err)
	}
	defer client.Close()

	store := settingsstore.New(settings.NewRepository(db.DB))
	runStore := runs.NewRepository(db.DB)
	auditService := audit.NewService(auditdb.NewRepository(db.DB))
	dispatcher := tasks.NewDispatcher(client)

	scheduler := services.NewScheduleService(
		dispatcher,
		runStore,
		store,
		auditService,
		func(root string) services.SourceReader {
			return mediaexport.NewReader(root, cmd.ContentSubdir)
		},
		cmd.ChunkSize,
	)

	result, err := scheduler.Schedule(context.Background(), cmd.ExportRoot, categoryIDs)
	if err != nil {
		return err
	}

	auditor := audit.NewAuditor(cmd.AuditDir)
	manifest := map[string]any{
		"export_root": cmd.ExportRoot,
		"categories":  categoryIDs,
		"items":       result.Items,
		"chunks":      result.Chunks,
	}
	if _, err := auditor.SaveJSON(manifest); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save run manifest: %v\n", err)
	}

	fmt.Printf("Scheduled %d items in %d chunks. Run '%s serve' to process them.\n",
		result.Items, result.Chunks, os.Args[0])
	return nil
}

// resolveCategories maps comma-separated slugs to category ids, using the
// content store's taxonomy.
func resolveCategories(db *database.Database, csv string) ([]uint, error) {
	var ids []uint
	for _, slug := range strings.Split(csv, ",") {
		slug = strings.TrimSpace(slug)
		if slug == "" {
			continue
		}
		category, err := db.GetCategoryBySlug(slug)
		if err != nil {
			return nil, fmt.Errorf("unknown category %q", slug)
		}
		ids = append(ids, category.ID)
	}
	return ids, nil
}
