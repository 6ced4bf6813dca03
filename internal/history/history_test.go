package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAddAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := &Record{
		FileID:      "abc123",
		Strategy:    "direct-download",
		Filename:    "report.pdf",
		ContentType: "application/pdf",
		Bytes:       4096,
		Status:      "ok",
		CreatedAt:   time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
	second := &Record{
		FileID:    "def456",
		Strategy:  "viewer-redirect",
		Status:    "redirect",
		CreatedAt: time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Add(ctx, first))
	require.NoError(t, store.Add(ctx, second))

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Most recent first
	assert.Equal(t, "def456", records[0].FileID)
	assert.Equal(t, "redirect", records[0].Status)
	assert.Empty(t, records[0].Filename)

	assert.Equal(t, "abc123", records[1].FileID)
	assert.Equal(t, "direct-download", records[1].Strategy)
	assert.Equal(t, "report.pdf", records[1].Filename)
	assert.Equal(t, int64(4096), records[1].Bytes)
}

func TestAddAssignsIDAndTimestamp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := &Record{FileID: "xyz789", Strategy: "confirm-token", Status: "ok"}
	require.NoError(t, store.Add(ctx, rec))

	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	records, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := &Record{
			FileID:    "file",
			Strategy:  "direct-download",
			Status:    "ok",
			CreatedAt: time.Date(2026, 8, 1, 10, i, 0, 0, time.UTC),
		}
		require.NoError(t, store.Add(ctx, rec))
	}

	records, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestNilStoreIsSafe(t *testing.T) {
	var store *Store
	ctx := context.Background()

	assert.NoError(t, store.Add(ctx, &Record{FileID: "x", Strategy: "s", Status: "ok"}))

	records, err := store.Recent(ctx, 5)
	assert.NoError(t, err)
	assert.Nil(t, records)

	assert.NoError(t, store.Close())
}
