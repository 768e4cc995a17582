package telemetry

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "runs", "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenSQLite_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "dir", "bvs.sqlite")

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestSQLiteStore_StateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Missing key reports found=false without error.
	_, found, err := store.GetState(ctx, "router_state:v1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.SetState(ctx, "router_state:v1", []byte(`{"weight_keyword":0.25}`)))

	data, found, err := store.GetState(ctx, "router_state:v1")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"weight_keyword":0.25}`, string(data))
}

func TestSQLiteStore_SetStateOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetState(ctx, "k", []byte(`{"v":1}`)))
	require.NoError(t, store.SetState(ctx, "k", []byte(`{"v":2}`)))

	data, found, err := store.GetState(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"v":2}`, string(data))
}

func TestSQLiteStore_AppendAndListRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.AppendRun(ctx, RunRecord{
			RunID:     uuid.NewString(),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Query:     "duplicate presentment",
			Strategy:  "keyword",
			Score:     0.7,
			LatencyMS: int64(i),
			Meta:      map[string]any{"i": float64(i)},
		}))
	}

	runs, err := store.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, int64(2), runs[0].LatencyMS)
	assert.Equal(t, int64(1), runs[1].LatencyMS)
	assert.Equal(t, "keyword", runs[0].Strategy)
	assert.Equal(t, map[string]any{"i": float64(2)}, runs[0].Meta)
	assert.WithinDuration(t, base.Add(2*time.Minute), runs[0].Timestamp, time.Millisecond)
}

func TestSQLiteStore_AppendRunDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Zero timestamp and nil meta are filled in rather than rejected.
	require.NoError(t, store.AppendRun(ctx, RunRecord{
		RunID: uuid.NewString(),
		Query: "q",
	}))

	runs, err := store.RecentRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.NotNil(t, runs[0].Meta)
	assert.False(t, runs[0].Timestamp.IsZero())
}

func TestSQLiteStore_ClosedStoreRejectsOperations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.AppendRun(ctx, RunRecord{RunID: "x"}), ErrClosed)
	_, _, err := store.GetState(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, store.SetState(ctx, "k", nil), ErrClosed)
	_, err = store.RecentRuns(ctx, 1)
	assert.ErrorIs(t, err, ErrClosed)

	// Closing twice is a no-op.
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bvs.sqlite")
	ctx := context.Background()

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.SetState(ctx, "k", []byte(`{"v":1}`)))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	data, found, err := reopened.GetState(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"v":1}`, string(data))
}
