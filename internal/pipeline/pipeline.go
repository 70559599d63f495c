// Package pipeline orchestrates a full rating run: fetch champion stats per
// rank bracket, rate and tier each lane, persist snapshots, and write report
// files.
package pipeline

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/riftlab/riftrank/internal/analysis"
	"github.com/riftlab/riftrank/internal/config"
	"github.com/riftlab/riftrank/internal/export"
	"github.com/riftlab/riftrank/internal/model"
	"github.com/riftlab/riftrank/internal/store"
)

// Fetcher retrieves champion stats from the remote stats page.
type Fetcher interface {
	FetchAll(ctx context.Context) (map[model.Bracket][]model.ChampionStats, error)
}

// Pipeline runs fetch, analysis, persistence, and export end to end.
type Pipeline struct {
	cfg     *config.Config
	store   store.Store
	fetcher Fetcher
}

// Result summarizes a completed run.
type Result struct {
	RunID   string
	Reports []export.Report
	Files   []string
}

// New creates a Pipeline with all dependencies.
func New(cfg *config.Config, st store.Store, f Fetcher) *Pipeline {
	return &Pipeline{cfg: cfg, store: st, fetcher: f}
}

// Run fetches every configured bracket, rates each one, saves snapshots, and
// writes report files. Brackets that fail are logged and skipped; the run
// fails only when no bracket produces a rating.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	log := zap.L().With(zap.String("source", p.cfg.Source.URL))
	log.Info("pipeline: starting run", zap.Int("tier_count", p.cfg.Analysis.TierCount))

	run, err := p.store.CreateRun(ctx, p.cfg.Source.URL, p.cfg.Analysis.TierCount)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	byBracket, err := p.fetcher.FetchAll(ctx)
	if err != nil {
		p.failRun(ctx, run.ID, err)
		return nil, eris.Wrap(err, "pipeline: fetch stats")
	}

	reports, err := p.rateBrackets(ctx, run.ID, byBracket)
	if err != nil {
		p.failRun(ctx, run.ID, err)
		return nil, err
	}

	files, err := p.Export(reports)
	if err != nil {
		p.failRun(ctx, run.ID, err)
		return nil, err
	}

	if err := p.store.CompleteRun(ctx, run.ID); err != nil {
		return nil, eris.Wrap(err, "pipeline: complete run")
	}

	log.Info("pipeline: run complete",
		zap.String("run_id", run.ID),
		zap.Int("brackets", len(reports)),
		zap.Strings("files", files),
	)
	return &Result{RunID: run.ID, Reports: reports, Files: files}, nil
}

// RunSheet rates champion stats loaded from a local sheet and stores them
// under a single bracket.
func (p *Pipeline) RunSheet(ctx context.Context, source string, bracket model.Bracket, stats []model.ChampionStats) (*Result, error) {
	log := zap.L().With(zap.String("source", source), zap.String("bracket", string(bracket)))
	log.Info("pipeline: starting sheet run", zap.Int("champions", len(stats)))

	run, err := p.store.CreateRun(ctx, source, p.cfg.Analysis.TierCount)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	rated, err := analysis.Run(ctx, stats, p.cfg.Analysis.TierCount)
	if err != nil {
		p.failRun(ctx, run.ID, err)
		return nil, eris.Wrapf(err, "pipeline: rate bracket %s", bracket)
	}

	if _, err := p.store.SaveSnapshot(ctx, run.ID, bracket, rated); err != nil {
		p.failRun(ctx, run.ID, err)
		return nil, eris.Wrap(err, "pipeline: save snapshot")
	}

	reports := []export.Report{{Bracket: bracket, Champions: rated}}
	files, err := p.Export(reports)
	if err != nil {
		p.failRun(ctx, run.ID, err)
		return nil, err
	}

	if err := p.store.CompleteRun(ctx, run.ID); err != nil {
		return nil, eris.Wrap(err, "pipeline: complete run")
	}
	return &Result{RunID: run.ID, Reports: reports, Files: files}, nil
}

func (p *Pipeline) rateBrackets(ctx context.Context, runID string, byBracket map[model.Bracket][]model.ChampionStats) ([]export.Report, error) {
	var reports []export.Report
	var failed []model.Bracket

	for _, bracket := range p.cfg.BracketList() {
		stats, ok := byBracket[bracket]
		if !ok {
			zap.L().Warn("pipeline: bracket missing from source", zap.String("bracket", string(bracket)))
			failed = append(failed, bracket)
			continue
		}

		rated, err := analysis.Run(ctx, stats, p.cfg.Analysis.TierCount)
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "pipeline: rate brackets")
			}
			zap.L().Warn("pipeline: bracket rating failed",
				zap.String("bracket", string(bracket)),
				zap.Error(err),
			)
			failed = append(failed, bracket)
			continue
		}

		if _, err := p.store.SaveSnapshot(ctx, runID, bracket, rated); err != nil {
			return nil, eris.Wrapf(err, "pipeline: save snapshot for bracket %s", bracket)
		}
		reports = append(reports, export.Report{Bracket: bracket, Champions: rated})
	}

	if len(reports) == 0 {
		return nil, eris.Errorf("pipeline: all %d brackets failed", len(failed))
	}
	if len(failed) > 0 {
		zap.L().Warn("pipeline: some brackets skipped", zap.Int("skipped", len(failed)))
	}
	return reports, nil
}

// Export writes reports in the configured format and returns the file paths.
func (p *Pipeline) Export(reports []export.Report) ([]string, error) {
	var files []string

	if p.cfg.Output.Format == config.FormatCSV || p.cfg.Output.Format == config.FormatBoth {
		written, err := export.WriteCSV(p.cfg.Output.Dir, p.cfg.Output.Basename, reports)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: write csv")
		}
		files = append(files, written...)
	}

	if p.cfg.Output.Format == config.FormatXLSX || p.cfg.Output.Format == config.FormatBoth {
		path := filepath.Join(p.cfg.Output.Dir, p.cfg.Output.Basename+".xlsx")
		if err := export.WriteXLSX(path, reports); err != nil {
			return nil, eris.Wrap(err, "pipeline: write xlsx")
		}
		files = append(files, path)
	}

	sort.Strings(files)
	return files, nil
}

func (p *Pipeline) failRun(ctx context.Context, runID string, cause error) {
	if err := p.store.FailRun(ctx, runID, cause); err != nil {
		zap.L().Warn("pipeline: failed to mark run failed",
			zap.String("run_id", runID),
			zap.Error(err),
		)
	}
}
