package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftlab/riftrank/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "https://example.com/stats", 5)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.Equal(t, 5, run.TierCount)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "https://example.com/stats", got.Source)
	assert.Equal(t, model.RunStatusRunning, got.Status)

	require.NoError(t, s.CompleteRun(ctx, run.ID))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Empty(t, got.Error)
}

func TestSQLiteStore_FailRun(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "file.csv", 4)
	require.NoError(t, err)

	require.NoError(t, s.FailRun(ctx, run.ID, errors.New("source unreachable")))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "source unreachable", got.Error)
}

func TestSQLiteStore_RunNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.GetRun(ctx, "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = s.CompleteRun(ctx, "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	first, err := s.CreateRun(ctx, "a", 5)
	require.NoError(t, err)
	second, err := s.CreateRun(ctx, "b", 5)
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, second.ID))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, second.ID, complete[0].ID)

	running, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusRunning})
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, first.ID, running[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteStore_Snapshots(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "https://example.com/stats", 5)
	require.NoError(t, err)

	champs := []model.RatedChampion{
		{
			ChampionStats:   model.ChampionStats{Lane: model.LaneMid, Name: "Ahri", WinRate: 0.55, PickRate: 0.10, BanRate: 0.02},
			AdjustedWinRate: 0.6125,
			Tier:            model.TierS,
		},
		{
			ChampionStats:   model.ChampionStats{Lane: model.LaneMid, Name: "Zed", WinRate: 0.52, PickRate: 0.08},
			AdjustedWinRate: 0.57,
			Tier:            model.TierB,
		},
	}

	snap, err := s.SaveSnapshot(ctx, run.ID, model.BracketDiamond, champs)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, run.ID, snap.RunID)

	_, err = s.SaveSnapshot(ctx, run.ID, model.BracketMaster, champs[:1])
	require.NoError(t, err)

	snaps, err := s.ListSnapshots(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	assert.Equal(t, model.BracketDiamond, snaps[0].Bracket)
	require.Len(t, snaps[0].Champions, 2)
	assert.Equal(t, "Ahri", snaps[0].Champions[0].Name)
	assert.Equal(t, model.TierS, snaps[0].Champions[0].Tier)
	assert.InDelta(t, 0.6125, snaps[0].Champions[0].AdjustedWinRate, 1e-9)

	assert.Equal(t, model.BracketMaster, snaps[1].Bracket)
	require.Len(t, snaps[1].Champions, 1)
}

func TestSQLiteStore_ListSnapshots_Empty(t *testing.T) {
	s := newTestSQLiteStore(t)

	snaps, err := s.ListSnapshots(context.Background(), "no-such-run")
	require.NoError(t, err)
	assert.Empty(t, snaps)
}
