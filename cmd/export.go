package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/riftlab/riftrank/internal/export"
	"github.com/riftlab/riftrank/internal/pipeline"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Re-export report files from a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if exportFormat != "" {
			cfg.Output.Format = exportFormat
		}
		if exportOutput != "" {
			cfg.Output.Dir = exportOutput
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "export")
		}
		snaps, err := st.ListSnapshots(ctx, run.ID)
		if err != nil {
			return eris.Wrap(err, "export")
		}
		if len(snaps) == 0 {
			return eris.Errorf("run %s has no snapshots", run.ID)
		}

		reports := make([]export.Report, 0, len(snaps))
		for _, snap := range snaps {
			reports = append(reports, export.Report{Bracket: snap.Bracket, Champions: snap.Champions})
		}

		files, err := pipeline.New(cfg, st, nil).Export(reports)
		if err != nil {
			return eris.Wrap(err, "export")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			RunID string   `json:"run_id"`
			Files []string `json:"files"`
		}{run.ID, files})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "report format (xlsx, csv, both)")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "report output directory")
	rootCmd.AddCommand(exportCmd)
}
