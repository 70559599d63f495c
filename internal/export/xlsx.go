package export

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// WriteXLSX writes a single workbook with one sheet per bracket.
func WriteXLSX(path string, reports []Report) error {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}

	f := xlsx.NewFile()
	for _, report := range reports {
		sheet, err := f.AddSheet(string(report.Bracket))
		if err != nil {
			return eris.Wrapf(err, "export: add sheet %s", report.Bracket)
		}

		headerRow := sheet.AddRow()
		for _, h := range Header {
			headerRow.AddCell().SetString(h)
		}
		for _, rc := range report.Champions {
			r := sheet.AddRow()
			for _, cell := range row(rc) {
				r.AddCell().SetString(cell)
			}
		}
	}

	tmp := tempPath(path)
	if err := f.Save(tmp); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return eris.Wrapf(err, "export: save workbook %s", path)
	}
	if err := commit(tmp, path); err != nil {
		return err
	}

	zap.L().Info("export: workbook written",
		zap.String("path", path),
		zap.Int("sheets", len(reports)),
	)
	return nil
}
