package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSnapshotNotFound is returned when a catalog entry does not exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRecord is one catalog entry: the metadata of a snapshot file on
// disk. The file itself lives next to the catalog in the database
// directory.
type SnapshotRecord struct {
	ID        int64
	Filename  string
	Source    string
	FetchedAt time.Time
	CardCount int
}

// SnapshotRepository provides catalog access ordered by fetch timestamp.
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a snapshot repository over db.
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Insert registers a snapshot in the catalog and returns its ID.
func (r *SnapshotRepository) Insert(ctx context.Context, rec *SnapshotRecord) (int64, error) {
	result, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO snapshots (filename, source, fetched_at, card_count) VALUES (?, ?, ?, ?)`,
		rec.Filename, rec.Source, rec.FetchedAt.Unix(), rec.CardCount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get snapshot id: %w", err)
	}
	return id, nil
}

// List returns all catalog entries, newest fetch first.
func (r *SnapshotRepository) List(ctx context.Context) ([]SnapshotRecord, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, filename, source, fetched_at, card_count FROM snapshots ORDER BY fetched_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []SnapshotRecord
	for rows.Next() {
		rec, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return records, nil
}

// Get returns the catalog entry with the given ID.
func (r *SnapshotRepository) Get(ctx context.Context, id int64) (*SnapshotRecord, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, filename, source, fetched_at, card_count FROM snapshots WHERE id = ?`, id,
	)
	rec, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Latest returns the newest catalog entry by fetch timestamp, or
// ErrSnapshotNotFound when the catalog is empty.
func (r *SnapshotRepository) Latest(ctx context.Context) (*SnapshotRecord, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, filename, source, fetched_at, card_count FROM snapshots ORDER BY fetched_at DESC, id DESC LIMIT 1`,
	)
	rec, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes a catalog entry. Deleting an absent entry is not an
// error.
func (r *SnapshotRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.conn.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete snapshot %d: %w", id, err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(s scanner) (SnapshotRecord, error) {
	var rec SnapshotRecord
	var fetchedAt int64
	if err := s.Scan(&rec.ID, &rec.Filename, &rec.Source, &fetchedAt, &rec.CardCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan snapshot: %w", err)
	}
	rec.FetchedAt = time.Unix(fetchedAt, 0).UTC()
	return rec, nil
}
