package fetcher

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/riftlab/riftrank/internal/model"
)

// sheetColumns is the expected header of an imported stat sheet. Adjusted
// win rate and tier columns from previous exports are tolerated and ignored.
var sheetColumns = []string{"Lane", "Champion", "Win rate", "Pick rate", "Ban rate"}

// ReadCSV imports raw champion stats from a CSV stat sheet.
func ReadCSV(path string) ([]model.ChampionStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open csv %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read csv %s", path)
	}
	return parseSheet(records)
}

// ReadXLSX imports raw champion stats from the first sheet of an XLSX
// workbook.
func ReadXLSX(path string) ([]model.ChampionStats, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("fetcher: %s has no sheets", path)
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = cell.String()
		}
		rows = append(rows, cells)
	}
	return parseSheet(rows)
}

// parseSheet converts header-prefixed rows into validated ChampionStats.
func parseSheet(rows [][]string) ([]model.ChampionStats, error) {
	if len(rows) < 2 {
		return nil, eris.New("fetcher: sheet has no data rows")
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	stats := make([]model.ChampionStats, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		if len(row) < len(sheetColumns) {
			return nil, eris.Errorf("fetcher: row %d has %d columns, want %d", i+2, len(row), len(sheetColumns))
		}

		lane := model.Lane(strings.TrimSpace(row[0]))
		if !lane.Valid() {
			return nil, eris.Errorf("fetcher: row %d has unknown lane %q", i+2, row[0])
		}

		win, err := parseRate(row[2])
		if err != nil {
			return nil, eris.Wrapf(err, "row %d", i+2)
		}
		pick, err := parseRate(row[3])
		if err != nil {
			return nil, eris.Wrapf(err, "row %d", i+2)
		}
		ban, err := parseRate(row[4])
		if err != nil {
			return nil, eris.Wrapf(err, "row %d", i+2)
		}

		stats = append(stats, model.ChampionStats{
			Lane:     lane,
			Name:     strings.TrimSpace(row[1]),
			WinRate:  win,
			PickRate: pick,
			BanRate:  ban,
		})
	}
	return stats, nil
}

func checkHeader(header []string) error {
	if len(header) < len(sheetColumns) {
		return eris.Errorf("fetcher: header has %d columns, want %d", len(header), len(sheetColumns))
	}
	for i, want := range sheetColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return eris.Errorf("fetcher: header column %d is %q, want %q", i, header[i], want)
		}
	}
	return nil
}
