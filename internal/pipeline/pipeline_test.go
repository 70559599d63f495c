package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/riftlab/riftrank/internal/config"
	"github.com/riftlab/riftrank/internal/model"
	"github.com/riftlab/riftrank/internal/store"
)

// fakeStore records calls in memory so tests can assert run lifecycle
// transitions without a database.
type fakeStore struct {
	runs      map[string]*model.Run
	snapshots []model.Snapshot
	failSave  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{runs: map[string]*model.Run{}}
}

func (f *fakeStore) CreateRun(_ context.Context, source string, tierCount int) (*model.Run, error) {
	run := &model.Run{
		ID:        "run-" + source,
		Source:    source,
		TierCount: tierCount,
		Status:    model.RunStatusRunning,
	}
	f.runs[run.ID] = run
	return run, nil
}

func (f *fakeStore) CompleteRun(_ context.Context, runID string) error {
	run, ok := f.runs[runID]
	if !ok {
		return errors.New("run not found")
	}
	run.Status = model.RunStatusComplete
	return nil
}

func (f *fakeStore) FailRun(_ context.Context, runID string, cause error) error {
	run, ok := f.runs[runID]
	if !ok {
		return errors.New("run not found")
	}
	run.Status = model.RunStatusFailed
	if cause != nil {
		run.Error = cause.Error()
	}
	return nil
}

func (f *fakeStore) GetRun(_ context.Context, runID string) (*model.Run, error) {
	run, ok := f.runs[runID]
	if !ok {
		return nil, errors.New("run not found")
	}
	return run, nil
}

func (f *fakeStore) ListRuns(_ context.Context, _ store.RunFilter) ([]model.Run, error) {
	var out []model.Run
	for _, r := range f.runs {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStore) SaveSnapshot(_ context.Context, runID string, bracket model.Bracket, champions []model.RatedChampion) (*model.Snapshot, error) {
	if f.failSave {
		return nil, errors.New("save failed")
	}
	snap := model.Snapshot{ID: "snap", RunID: runID, Bracket: bracket, Champions: champions}
	f.snapshots = append(f.snapshots, snap)
	return &snap, nil
}

func (f *fakeStore) ListSnapshots(_ context.Context, runID string) ([]model.Snapshot, error) {
	var out []model.Snapshot
	for _, s := range f.snapshots {
		if s.RunID == runID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) Migrate(context.Context) error { return nil }
func (f *fakeStore) Close() error                  { return nil }

type fakeFetcher struct {
	stats map[model.Bracket][]model.ChampionStats
	err   error
}

func (f *fakeFetcher) FetchAll(context.Context) (map[model.Bracket][]model.ChampionStats, error) {
	return f.stats, f.err
}

func midLaneStats() []model.ChampionStats {
	return []model.ChampionStats{
		{Lane: model.LaneMid, Name: "Ahri", WinRate: 0.55, PickRate: 0.10, BanRate: 0.02},
		{Lane: model.LaneMid, Name: "Zed", WinRate: 0.52, PickRate: 0.08, BanRate: 0.05},
		{Lane: model.LaneMid, Name: "Lux", WinRate: 0.50, PickRate: 0.07, BanRate: 0.01},
		{Lane: model.LaneMid, Name: "Orianna", WinRate: 0.48, PickRate: 0.05, BanRate: 0.00},
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Source: config.SourceConfig{URL: "https://example.com/stats"},
		Analysis: config.AnalysisConfig{
			TierCount: 5,
			Brackets:  []string{"Diamond", "Master"},
		},
		Output: config.OutputConfig{
			Dir:      t.TempDir(),
			Basename: "ratings",
			Format:   config.FormatCSV,
		},
	}
}

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestPipelineRun(t *testing.T) {
	cfg := testConfig(t)
	st := newFakeStore()
	f := &fakeFetcher{stats: map[model.Bracket][]model.ChampionStats{
		model.BracketDiamond: midLaneStats(),
		model.BracketMaster:  midLaneStats(),
	}}

	result, err := New(cfg, st, f).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Reports, 2)
	assert.Equal(t, model.BracketDiamond, result.Reports[0].Bracket)
	assert.Equal(t, model.BracketMaster, result.Reports[1].Bracket)

	run, err := st.GetRun(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)

	snaps, err := st.ListSnapshots(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Len(t, snaps, 2)

	require.Len(t, result.Files, 2)
	for _, file := range result.Files {
		assert.FileExists(t, file)
	}
}

func TestPipelineRun_FetchFailure(t *testing.T) {
	cfg := testConfig(t)
	st := newFakeStore()
	f := &fakeFetcher{err: errors.New("connection refused")}

	_, err := New(cfg, st, f).Run(context.Background())
	require.Error(t, err)

	runs, listErr := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, listErr)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "connection refused")
}

func TestPipelineRun_SkipsMissingBracket(t *testing.T) {
	cfg := testConfig(t)
	st := newFakeStore()
	f := &fakeFetcher{stats: map[model.Bracket][]model.ChampionStats{
		model.BracketDiamond: midLaneStats(),
	}}

	result, err := New(cfg, st, f).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Reports, 1)
	assert.Equal(t, model.BracketDiamond, result.Reports[0].Bracket)

	run, err := st.GetRun(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
}

func TestPipelineRun_AllBracketsMissing(t *testing.T) {
	cfg := testConfig(t)
	st := newFakeStore()
	f := &fakeFetcher{stats: map[model.Bracket][]model.ChampionStats{}}

	_, err := New(cfg, st, f).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brackets failed")

	runs, listErr := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, listErr)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusFailed, runs[0].Status)
}

func TestPipelineRun_SnapshotFailure(t *testing.T) {
	cfg := testConfig(t)
	st := newFakeStore()
	st.failSave = true
	f := &fakeFetcher{stats: map[model.Bracket][]model.ChampionStats{
		model.BracketDiamond: midLaneStats(),
	}}

	_, err := New(cfg, st, f).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save snapshot")
}

func TestPipelineRunSheet(t *testing.T) {
	cfg := testConfig(t)
	st := newFakeStore()

	result, err := New(cfg, st, nil).RunSheet(context.Background(), "stats.csv", model.BracketDiamond, midLaneStats())
	require.NoError(t, err)

	require.Len(t, result.Reports, 1)
	assert.Equal(t, model.BracketDiamond, result.Reports[0].Bracket)
	assert.Len(t, result.Reports[0].Champions, 4)

	run, err := st.GetRun(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, "stats.csv", run.Source)
}

func TestPipelineExport_Both(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Format = config.FormatBoth
	st := newFakeStore()
	f := &fakeFetcher{stats: map[model.Bracket][]model.ChampionStats{
		model.BracketDiamond: midLaneStats(),
		model.BracketMaster:  midLaneStats(),
	}}

	result, err := New(cfg, st, f).Run(context.Background())
	require.NoError(t, err)

	// Two CSV files plus one workbook.
	require.Len(t, result.Files, 3)
	assert.Contains(t, result.Files, filepath.Join(cfg.Output.Dir, "ratings.xlsx"))
}
