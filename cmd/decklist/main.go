// Command decklist compares a card collection export against a decklist
// and reports the cards still needed, spell-checking names against a
// locally cached Scryfall bulk-data snapshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/awray/decklist/internal/cards/collection"
	"github.com/awray/decklist/internal/cards/decklist"
	"github.com/awray/decklist/internal/config"
	"github.com/awray/decklist/internal/export"
	"github.com/awray/decklist/internal/reconcile"
	"github.com/awray/decklist/internal/refdb"
	"github.com/awray/decklist/internal/refdb/lifecycle"
	"github.com/awray/decklist/internal/refdb/scryfall"
	"github.com/awray/decklist/internal/storage"
	"github.com/awray/decklist/internal/version"
)

var (
	deckPath       = flag.String("deck", "", "Path to the decklist file (required)")
	collectionPath = flag.String("collection", "", "Path to the collection CSV (default: collection_path from config)")
	toClipboard    = flag.Bool("clipboard", false, "Copy the missing list to the clipboard instead of writing a file")
	toStdout       = flag.Bool("stdout", false, "Print the missing list to stdout instead of writing a file")
	watchFiles     = flag.Bool("watch", false, "Keep running and re-reconcile when the input files change")
	noDatabase     = flag.Bool("no-db", false, "Skip the reference database even if enabled in config")
	snapshotID     = flag.Int64("snapshot", 0, "Activate a specific cataloged snapshot by ID instead of the freshest one")
	debugMode      = flag.Bool("debug", false, "Enable verbose debug logging")
	showVersion    = flag.Bool("version", false, "Print the version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("decklist " + version.GetVersion())
		return
	}

	level := slog.LevelInfo
	if *debugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("decklist failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	if *deckPath == "" {
		flag.Usage()
		return fmt.Errorf("-deck is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	collPath := *collectionPath
	if collPath == "" {
		collPath = cfg.CollectionPath
	}
	if collPath == "" {
		return fmt.Errorf("no collection file: pass -collection or set collection_path in config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, closeDB, err := openReferenceDatabase(ctx, cfg, logger)
	if err != nil {
		// Degraded accuracy, not failure: reconcile without the database.
		logger.Warn("reference database unavailable, names will not be validated", "error", err)
	}
	if closeDB != nil {
		defer closeDB()
	}

	runOnce := func() error {
		return reconcileOnce(collPath, *deckPath, db, logger)
	}

	if err := runOnce(); err != nil {
		return err
	}
	if !*watchFiles {
		return nil
	}
	return watch(ctx, []string{collPath, *deckPath}, runOnce, logger)
}

// openReferenceDatabase wires the snapshot catalog and lifecycle manager
// and returns a usable reference database, or nil when disabled. The
// returned close function releases the catalog connection.
func openReferenceDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*refdb.Database, func(), error) {
	if !cfg.UseDatabase || *noDatabase {
		logger.Debug("reference database disabled")
		return nil, nil, nil
	}

	catalogDB, err := storage.Open(storage.DefaultConfig(filepath.Join(cfg.DatabasePath, "catalog.db")))
	if err != nil {
		return nil, nil, fmt.Errorf("open snapshot catalog: %w", err)
	}
	closeDB := func() { _ = catalogDB.Close() }

	manager, err := lifecycle.NewManager(lifecycle.Config{
		Dir:      cfg.DatabasePath,
		AgeLimit: lifecycle.AgeLimitDays(cfg.DatabaseAgeLimit),
		Retain:   cfg.DatabaseNum,
		Source:   scryfall.NewClient(),
		Catalog:  storage.NewSnapshotRepository(catalogDB),
		Logger:   logger,
	})
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	if *snapshotID != 0 {
		db, err := manager.LoadExplicit(ctx, *snapshotID)
		if err != nil {
			closeDB()
			return nil, nil, err
		}
		logger.Info("activated snapshot", "id", *snapshotID, "fetched_at", db.Snapshot().FetchedAt)
		return db, closeDB, nil
	}

	db, err := manager.EnsureFresh(ctx)
	if err != nil && db == nil {
		closeDB()
		return nil, nil, err
	}
	if err != nil {
		logger.Warn("refresh failed, using previous snapshot", "error", err,
			"fetched_at", db.Snapshot().FetchedAt)
	}
	return db, closeDB, nil
}

// reconcileOnce loads both inputs, diffs them, and delivers the report.
func reconcileOnce(collPath, deckPath string, db *refdb.Database, logger *slog.Logger) error {
	owned, err := collection.LoadFile(collPath, collection.NewMoxfieldCSV())
	if err != nil {
		return err
	}
	logger.Info("collection loaded", "file", collPath, "cards", owned.Total(), "names", len(owned))

	required, err := decklist.ParseFile(deckPath)
	if err != nil {
		return err
	}
	logger.Info("decklist loaded", "file", deckPath, "cards", required.Total(), "names", len(required))

	report := reconcile.Reconcile(owned, required, matcher(db))
	if len(report) == 0 {
		logger.Info("collection covers the whole decklist, nothing missing")
		return nil
	}

	for _, entry := range report {
		switch entry.Confidence {
		case reconcile.FuzzyCorrected:
			logger.Info("corrected card name", "from", entry.Original.Name, "to", entry.Key.Name,
				"distance", entry.Distance)
		case reconcile.Unresolved:
			logger.Warn("card not found in database, check spelling", "name", entry.Key.Name)
		}
	}

	content := export.Render(report)
	logger.Info("missing cards", "names", len(report), "total", report.TotalMissing())

	switch {
	case *toStdout:
		fmt.Print(content)
	case *toClipboard:
		if err := export.WriteClipboard(content); err != nil {
			return err
		}
		logger.Info("missing list copied to clipboard")
	default:
		out := export.MissingFilename(deckPath)
		if err := export.WriteFile(out, content); err != nil {
			return err
		}
		logger.Info("missing list written", "file", out)
	}
	return nil
}

// matcher converts a possibly-nil *refdb.Database into a Matcher without
// smuggling a typed nil into the interface.
func matcher(db *refdb.Database) reconcile.Matcher {
	if db == nil {
		return nil
	}
	return db
}
