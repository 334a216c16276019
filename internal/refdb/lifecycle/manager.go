// Package lifecycle owns the on-disk reference snapshots and their
// catalog: download, staleness checking, retention pruning, and atomic
// replacement of the active reference database.
package lifecycle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/awray/decklist/internal/refdb"
	"github.com/awray/decklist/internal/refdb/scryfall"
	"github.com/awray/decklist/internal/storage"
)

// State describes the manager's position in the snapshot state machine.
type State int

const (
	StateNoSnapshot State = iota
	StateLoaded
	StateRefreshing
	StateError
)

func (s State) String() string {
	switch s {
	case StateNoSnapshot:
		return "NoSnapshot"
	case StateLoaded:
		return "SnapshotLoaded"
	case StateRefreshing:
		return "Refreshing"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

const (
	snapshotPrefix      = "oracle-cards-"
	snapshotSuffix      = ".json"
	snapshotTimeLayout  = "20060102150405"
	defaultFetchTimeout = 5 * time.Minute
)

// BulkSource resolves and downloads a bulk card dataset. Implemented by
// *scryfall.Client; tests substitute their own.
type BulkSource interface {
	GetBulkData(ctx context.Context, bulkType string) (*scryfall.BulkData, error)
	DownloadBulk(ctx context.Context, downloadURI string, w io.Writer) (int64, error)
}

// Config configures a Manager.
type Config struct {
	// Dir is the snapshot directory (config key database_path). Snapshot
	// files and the catalog database both live here.
	Dir string

	// AgeLimit is the staleness threshold (config key database_age_limit,
	// in days; see AgeLimitDays).
	AgeLimit time.Duration

	// Retain is how many snapshots to keep after a successful refresh
	// (config key database_num).
	Retain int

	// Source fetches bulk data. Required.
	Source BulkSource

	// Catalog persists snapshot metadata. Required.
	Catalog *storage.SnapshotRepository

	// FetchTimeout bounds one download attempt. Default: 5 minutes.
	FetchTimeout time.Duration

	Logger *slog.Logger

	// Now is the clock; overridable in tests.
	Now func() time.Time
}

// Manager is the only component that creates, activates, and deletes
// snapshots. The active reference database is a versioned handle swapped
// atomically under the manager's lock; readers always see either the old
// complete database or the new one.
type Manager struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	mu          sync.Mutex
	state       State
	lastErr     error
	active      *refdb.Database
	inflight    chan struct{}
	inflightDB  *refdb.Database
	inflightErr error
}

// NewManager creates a snapshot lifecycle manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("snapshot directory is required")
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("bulk source is required")
	}
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("snapshot catalog is required")
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &Manager{
		cfg:    cfg,
		logger: cfg.Logger,
		now:    cfg.Now,
		state:  StateNoSnapshot,
	}, nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Active returns the currently loaded reference database, or nil.
func (m *Manager) Active() *refdb.Database {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Catalog returns all snapshot records, newest first.
func (m *Manager) Catalog(ctx context.Context) ([]storage.SnapshotRecord, error) {
	return m.cfg.Catalog.List(ctx)
}

// EnsureFresh returns a usable reference database, refreshing first when
// no snapshot exists or the active one is stale. A refresh failure is
// non-fatal: the previous database (possibly stale, possibly nil) is
// returned together with the error, and the caller treats the error as a
// warning. A second EnsureFresh while a refresh is in flight does not
// start another download; it waits for and returns the in-progress
// result.
func (m *Manager) EnsureFresh(ctx context.Context) (*refdb.Database, error) {
	m.mu.Lock()
	if ch := m.inflight; ch != nil {
		m.mu.Unlock()
		return m.awaitInflight(ctx, ch)
	}

	if m.active == nil {
		if err := m.loadLatestLocked(ctx); err != nil {
			m.logger.Debug("no cataloged snapshot to load", "error", err)
		}
	}

	if m.active != nil && !Stale(m.active.Snapshot().FetchedAt, m.cfg.AgeLimit, m.now()) {
		db := m.active
		m.mu.Unlock()
		return db, nil
	}

	ch := make(chan struct{})
	m.inflight = ch
	m.state = StateRefreshing
	prev := m.active
	m.mu.Unlock()

	db, err := m.refresh(ctx)

	m.mu.Lock()
	if err != nil {
		db = prev
		if prev != nil {
			m.state = StateLoaded
		} else {
			m.state = StateError
			m.lastErr = err
		}
	} else {
		m.active = db
		m.state = StateLoaded
		m.lastErr = nil
	}
	m.inflightDB = db
	m.inflightErr = err
	m.inflight = nil
	close(ch)
	activeID := int64(-1)
	if m.active != nil {
		activeID = m.active.Snapshot().ID
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("reference database refresh failed, continuing with previous snapshot",
			"error", err, "have_previous", db != nil)
		return db, err
	}

	m.Prune(ctx, m.cfg.Retain, activeID)
	return db, nil
}

// awaitInflight blocks until the in-flight refresh settles and returns
// its result.
func (m *Manager) awaitInflight(ctx context.Context, ch chan struct{}) (*refdb.Database, error) {
	select {
	case <-ch:
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.inflightDB, m.inflightErr
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// LoadExplicit activates the cataloged snapshot with the given ID
// regardless of staleness. Operator override for when the newest snapshot
// has a breaking format change.
func (m *Manager) LoadExplicit(ctx context.Context, id int64) (*refdb.Database, error) {
	rec, err := m.cfg.Catalog.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %d: %w", id, err)
	}
	db, err := m.load(*rec)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.active = db
	m.state = StateLoaded
	m.lastErr = nil
	m.mu.Unlock()
	return db, nil
}

// Prune deletes the oldest snapshots beyond retain, keeping the retain
// most recent by fetch timestamp. The snapshot with ID activeID is never
// deleted, even when retain is 0. Deletion is best-effort: a failed
// file delete is logged and the catalog entry kept.
func (m *Manager) Prune(ctx context.Context, retain int, activeID int64) {
	records, err := m.cfg.Catalog.List(ctx)
	if err != nil {
		m.logger.Warn("prune: cannot list snapshot catalog", "error", err)
		return
	}
	if retain < 0 {
		retain = 0
	}

	for i, rec := range records {
		if i < retain || rec.ID == activeID {
			continue
		}
		path := filepath.Join(m.cfg.Dir, rec.Filename)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			m.logger.Warn("prune: cannot delete snapshot file", "file", path, "error", err)
			continue
		}
		if err := m.cfg.Catalog.Delete(ctx, rec.ID); err != nil {
			m.logger.Warn("prune: cannot delete catalog entry", "id", rec.ID, "error", err)
			continue
		}
		m.logger.Info("pruned snapshot", "file", rec.Filename, "fetched_at", rec.FetchedAt)
	}
}

// refresh downloads, validates, commits, and loads a new snapshot. The
// download lands in a temp file and is only renamed into place after it
// parses, so a partial or corrupt body can never become active.
func (m *Manager) refresh(ctx context.Context) (*refdb.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.FetchTimeout)
	defer cancel()

	bulk, err := m.cfg.Source.GetBulkData(ctx, scryfall.OracleCardsType)
	if err != nil {
		return nil, &DownloadError{Source: scryfall.OracleCardsType, Err: err}
	}

	fetchedAt := m.now()
	filename := snapshotPrefix + fetchedAt.UTC().Format(snapshotTimeLayout) + snapshotSuffix

	tmp, err := os.CreateTemp(m.cfg.Dir, ".oracle-cards-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp snapshot file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	written, err := m.cfg.Source.DownloadBulk(ctx, bulk.DownloadURI, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return nil, &DownloadError{Source: bulk.DownloadURI, Err: err}
	}
	m.logger.Info("downloaded bulk snapshot", "bytes", written, "file", filename)

	cardList, err := refdb.ReadSnapshotFile(tmpPath)
	if err != nil {
		return nil, &ValidationError{Filename: filename, Reason: "unparseable download", Err: err}
	}
	if len(cardList) == 0 {
		return nil, &ValidationError{Filename: filename, Reason: "empty download"}
	}

	finalPath := filepath.Join(m.cfg.Dir, filename)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return nil, fmt.Errorf("commit snapshot file: %w", err)
	}

	rec := &storage.SnapshotRecord{
		Filename:  filename,
		Source:    bulk.DownloadURI,
		FetchedAt: fetchedAt.UTC(),
		CardCount: len(cardList),
	}
	id, err := m.cfg.Catalog.Insert(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("register snapshot in catalog: %w", err)
	}

	db := refdb.Build(refdb.Snapshot{
		ID:        id,
		Filename:  filename,
		Source:    bulk.DownloadURI,
		FetchedAt: fetchedAt.UTC(),
		Cards:     cardList,
	})
	m.logger.Info("reference database refreshed", "cards", rec.CardCount, "names", db.Size())
	return db, nil
}

// loadLatestLocked loads the newest cataloged snapshot into m.active.
// Called with m.mu held. Snapshot files present on disk but missing from
// the catalog (e.g. the catalog database was deleted) are re-registered
// first, with their fetch time recovered from the filename.
func (m *Manager) loadLatestLocked(ctx context.Context) error {
	m.recoverCatalog(ctx)

	records, err := m.cfg.Catalog.List(ctx)
	if err != nil {
		return fmt.Errorf("list snapshot catalog: %w", err)
	}

	// The active snapshot is the most recent entry that loads
	// successfully; a corrupt newer file falls through to an older one.
	for _, rec := range records {
		db, err := m.load(rec)
		if err != nil {
			m.logger.Warn("cannot load cataloged snapshot, trying older", "file", rec.Filename, "error", err)
			continue
		}
		m.active = db
		m.state = StateLoaded
		return nil
	}
	return storage.ErrSnapshotNotFound
}

// load reads a snapshot file and builds its reference database.
func (m *Manager) load(rec storage.SnapshotRecord) (*refdb.Database, error) {
	path := filepath.Join(m.cfg.Dir, rec.Filename)
	cardList, err := refdb.ReadSnapshotFile(path)
	if err != nil {
		return nil, err
	}
	if len(cardList) == 0 {
		return nil, &ValidationError{Filename: rec.Filename, Reason: "empty snapshot file"}
	}
	return refdb.Build(refdb.Snapshot{
		ID:        rec.ID,
		Filename:  rec.Filename,
		Source:    rec.Source,
		FetchedAt: rec.FetchedAt,
		Cards:     cardList,
	}), nil
}

// recoverCatalog registers snapshot files found on disk that the catalog
// does not know about, parsing the fetch time out of the filename.
func (m *Manager) recoverCatalog(ctx context.Context) {
	records, err := m.cfg.Catalog.List(ctx)
	if err != nil {
		m.logger.Warn("cannot list snapshot catalog", "error", err)
		return
	}
	known := make(map[string]struct{}, len(records))
	for _, rec := range records {
		known[rec.Filename] = struct{}{}
	}

	entries, err := os.ReadDir(m.cfg.Dir)
	if err != nil {
		m.logger.Warn("cannot read snapshot directory", "dir", m.cfg.Dir, "error", err)
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
			continue
		}
		if _, ok := known[name]; ok {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotSuffix)
		fetchedAt, err := time.Parse(snapshotTimeLayout, stamp)
		if err != nil {
			m.logger.Warn("snapshot file with unrecognized timestamp, skipping", "file", name)
			continue
		}
		rec := &storage.SnapshotRecord{Filename: name, FetchedAt: fetchedAt.UTC()}
		if _, err := m.cfg.Catalog.Insert(ctx, rec); err != nil {
			m.logger.Warn("cannot re-register snapshot file", "file", name, "error", err)
			continue
		}
		m.logger.Info("recovered uncataloged snapshot file", "file", name, "fetched_at", rec.FetchedAt)
	}
}
