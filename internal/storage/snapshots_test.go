package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(DefaultConfig(":memory:"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func record(filename string, fetchedAt time.Time) *SnapshotRecord {
	return &SnapshotRecord{
		Filename:  filename,
		Source:    "https://bulk.test/oracle-cards.json",
		FetchedAt: fetchedAt,
		CardCount: 100,
	}
}

func TestSnapshotRepositoryInsertAndGet(t *testing.T) {
	repo := NewSnapshotRepository(testDB(t))
	ctx := context.Background()
	fetchedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	id, err := repo.Insert(ctx, record("oracle-cards-20260801120000.json", fetchedAt))
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "oracle-cards-20260801120000.json", got.Filename)
	assert.Equal(t, fetchedAt, got.FetchedAt)
	assert.Equal(t, 100, got.CardCount)
}

func TestSnapshotRepositoryGetNotFound(t *testing.T) {
	repo := NewSnapshotRepository(testDB(t))

	_, err := repo.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSnapshotRepositoryListNewestFirst(t *testing.T) {
	repo := NewSnapshotRepository(testDB(t))
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	_, err := repo.Insert(ctx, record("oracle-cards-a.json", base))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, record("oracle-cards-c.json", base.Add(2*time.Hour)))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, record("oracle-cards-b.json", base.Add(time.Hour)))
	require.NoError(t, err)

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "oracle-cards-c.json", records[0].Filename)
	assert.Equal(t, "oracle-cards-b.json", records[1].Filename)
	assert.Equal(t, "oracle-cards-a.json", records[2].Filename)
}

func TestSnapshotRepositoryLatest(t *testing.T) {
	repo := NewSnapshotRepository(testDB(t))
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	_, err := repo.Latest(ctx)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	_, err = repo.Insert(ctx, record("oracle-cards-old.json", base))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, record("oracle-cards-new.json", base.Add(time.Hour)))
	require.NoError(t, err)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "oracle-cards-new.json", latest.Filename)
}

func TestSnapshotRepositoryDelete(t *testing.T) {
	repo := NewSnapshotRepository(testDB(t))
	ctx := context.Background()

	id, err := repo.Insert(ctx, record("oracle-cards-x.json", time.Now().UTC()))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	// Deleting an absent entry is not an error.
	assert.NoError(t, repo.Delete(ctx, id))
}

func TestSnapshotRepositoryDuplicateFilenameRejected(t *testing.T) {
	repo := NewSnapshotRepository(testDB(t))
	ctx := context.Background()
	fetchedAt := time.Now().UTC()

	_, err := repo.Insert(ctx, record("oracle-cards-dup.json", fetchedAt))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, record("oracle-cards-dup.json", fetchedAt))
	assert.Error(t, err)
}
