package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/riftlab/riftrank/internal/fetcher"
	"github.com/riftlab/riftrank/internal/model"
	"github.com/riftlab/riftrank/internal/pipeline"
)

var importBracket string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Rate champion stats from a local CSV or XLSX sheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		path := args[0]
		bracket := model.Bracket(importBracket)
		if !bracket.Valid() {
			return eris.Errorf("unknown bracket %q", importBracket)
		}

		var stats []model.ChampionStats
		var err error
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			stats, err = fetcher.ReadCSV(path)
		case ".xlsx":
			stats, err = fetcher.ReadXLSX(path)
		default:
			return eris.Errorf("unsupported sheet format %q, want .csv or .xlsx", filepath.Ext(path))
		}
		if err != nil {
			return eris.Wrapf(err, "read %s", path)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		result, err := pipeline.New(cfg, st, nil).RunSheet(ctx, path, bracket, stats)
		if err != nil {
			return eris.Wrap(err, "import")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			RunID string   `json:"run_id"`
			Files []string `json:"files"`
		}{result.RunID, result.Files})
	},
}

func init() {
	importCmd.Flags().StringVar(&importBracket, "bracket", string(model.BracketDiamond), "rank bracket to record the sheet under")
	rootCmd.AddCommand(importCmd)
}
