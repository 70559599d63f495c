// Package export renders analyzed champion tiers to CSV and XLSX reports.
// Writers only ever see fully-assigned records; on failure no partial file
// is left behind.
package export

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/riftlab/riftrank/internal/model"
)

// Report is one bracket's analyzed result set, ready for rendering.
type Report struct {
	Bracket   model.Bracket
	Champions []model.RatedChampion
}

// Header is the column order shared by every output format. Readers in the
// fetcher package accept the first five columns back as raw input.
var Header = []string{"Lane", "Champion", "Win rate", "Pick rate", "Ban rate", "Adjusted win rate", "Tier"}

// row formats a champion for output, rates rounded to 4 decimal places.
func row(rc model.RatedChampion) []string {
	return []string{
		string(rc.Lane),
		rc.Name,
		formatRate(rc.WinRate),
		formatRate(rc.PickRate),
		formatRate(rc.BanRate),
		formatRate(rc.AdjustedWinRate),
		string(rc.Tier),
	}
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// commit atomically moves a finished temp file into place.
func commit(tmp, dst string) error {
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return eris.Wrapf(err, "export: move %s into place", dst)
	}
	return nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "export: create dir %s", dir)
	}
	return nil
}

// tempPath returns a sibling temp path for dst so the final rename stays on
// one filesystem.
func tempPath(dst string) string {
	return filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp")
}
