package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// WriteCSV writes one CSV file per bracket into dir and returns the paths
// written. File names follow basename_bracket.csv.
func WriteCSV(dir, basename string, reports []Report) ([]string, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(reports))
	for _, report := range reports {
		name := fmt.Sprintf("%s_%s.csv", basename, strings.ToLower(string(report.Bracket)))
		dst := filepath.Join(dir, name)
		if err := writeCSVFile(dst, report); err != nil {
			return nil, err
		}
		paths = append(paths, dst)

		zap.L().Info("export: csv written",
			zap.String("path", dst),
			zap.String("bracket", string(report.Bracket)),
			zap.Int("champions", len(report.Champions)),
		)
	}
	return paths, nil
}

func writeCSVFile(dst string, report Report) error {
	tmp := tempPath(dst)
	f, err := os.Create(tmp)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", tmp)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()       //nolint:errcheck
		os.Remove(tmp)  //nolint:errcheck
		return eris.Wrapf(err, "export: write header %s", dst)
	}
	for _, rc := range report.Champions {
		if err := w.Write(row(rc)); err != nil {
			f.Close()      //nolint:errcheck
			os.Remove(tmp) //nolint:errcheck
			return eris.Wrapf(err, "export: write row %s", dst)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()      //nolint:errcheck
		os.Remove(tmp) //nolint:errcheck
		return eris.Wrapf(err, "export: flush %s", dst)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return eris.Wrapf(err, "export: close %s", dst)
	}
	return commit(tmp, dst)
}
