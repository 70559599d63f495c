package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riftlab/riftrank/internal/analysis"
	"github.com/riftlab/riftrank/internal/fetcher"
	"github.com/riftlab/riftrank/internal/i18n"
	"github.com/riftlab/riftrank/internal/model"
	"github.com/riftlab/riftrank/internal/pipeline"
)

var (
	analyzeBrackets []string
	analyzeTiers    int
	analyzeFormat   string
	analyzeOutput   string
	analyzeDryRun   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Fetch live stats and generate a tier list",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyAnalyzeFlags()
		if err := cfg.Validate(); err != nil {
			return err
		}

		tr, err := i18n.Load()
		if err != nil {
			return eris.Wrap(err, "load translations")
		}
		f := fetcher.NewPageFetcher(cfg.Source, tr)

		if analyzeDryRun {
			return dryRunAnalyze(ctx, f)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		result, err := pipeline.New(cfg, st, f).Run(ctx)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		zap.L().Info("tier list generated",
			zap.String("run_id", result.RunID),
			zap.Int("brackets", len(result.Reports)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			RunID string   `json:"run_id"`
			Files []string `json:"files"`
		}{result.RunID, result.Files})
	},
}

// dryRunAnalyze rates all configured brackets and prints the tier lists to
// stdout without touching the store or writing report files.
func dryRunAnalyze(ctx context.Context, f *fetcher.PageFetcher) error {
	byBracket, err := f.FetchAll(ctx)
	if err != nil {
		return eris.Wrap(err, "fetch stats")
	}

	for _, bracket := range cfg.BracketList() {
		stats, ok := byBracket[bracket]
		if !ok {
			fmt.Fprintf(os.Stderr, "bracket %s missing from source\n", bracket)
			continue
		}
		rated, err := analysis.Run(ctx, stats, cfg.Analysis.TierCount)
		if err != nil {
			return eris.Wrapf(err, "rate bracket %s", bracket)
		}
		fmt.Printf("\n== %s ==\n", bracket)
		printTierList(os.Stdout, rated)
	}
	return nil
}

func printTierList(out io.Writer, rated []model.RatedChampion) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIER\tLANE\tCHAMPION\tWIN\tPICK\tADJUSTED")
	for _, rc := range rated {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\t%.4f\t%.4f\n",
			rc.Tier, rc.Lane, rc.Name, rc.WinRate, rc.PickRate, rc.AdjustedWinRate)
	}
	_ = w.Flush()
}

// applyAnalyzeFlags overlays command-line flags onto the loaded config.
func applyAnalyzeFlags() {
	if len(analyzeBrackets) > 0 {
		cfg.Analysis.Brackets = analyzeBrackets
	}
	if analyzeTiers > 0 {
		cfg.Analysis.TierCount = analyzeTiers
	}
	if analyzeFormat != "" {
		cfg.Output.Format = analyzeFormat
	}
	if analyzeOutput != "" {
		cfg.Output.Dir = analyzeOutput
	}
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&analyzeBrackets, "brackets", nil, "rank brackets to rate (Diamond, Master, Challenger, Legendary)")
	analyzeCmd.Flags().IntVar(&analyzeTiers, "tiers", 0, "number of lettered tiers (2-5)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "", "report format (xlsx, csv, both)")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "", "report output directory")
	analyzeCmd.Flags().BoolVar(&analyzeDryRun, "dry-run", false, "print tier lists without persisting or writing files")
	rootCmd.AddCommand(analyzeCmd)
}
