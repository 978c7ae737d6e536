// Package dataset reads the source tables (spreadsheets, CSV exports)
// that the regionalize callers consume and turns them into typed
// records. German federal datasets frequently ship as ISO 8859-1 CSV or
// as XLSX with header rows to skip; both layouts are handled here.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/encoding/charmap"
)

// TableOptions configures table reading.
type TableOptions struct {
	SheetIndex int    // XLSX: sheet by position, default 0
	SheetName  string // XLSX: sheet by name, overrides SheetIndex
	SkipRows   int    // header rows to skip before the column header
	Latin1     bool   // CSV: decode ISO 8859-1 input
}

// ReadTable reads an .xlsx or .csv file into rows of strings. The first
// returned row (after SkipRows) is the column header.
func ReadTable(path string, opts TableOptions) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path, opts)
	case ".csv":
		return readCSV(path, opts)
	default:
		return nil, eris.Errorf("dataset: cannot read %q, want .xlsx or .csv", path)
	}
}

func readXLSX(path string, opts TableOptions) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for i, row := range sheet.Rows {
		if i < opts.SkipRows {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = strings.TrimSpace(cell.String())
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func getSheet(f *xlsx.File, opts TableOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("dataset: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("dataset: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

func readCSV(path string, opts TableOptions) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if opts.Latin1 {
		r = charmap.ISO8859_1.NewDecoder().Reader(f)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}
	if opts.SkipRows >= len(records) {
		return nil, eris.Errorf("dataset: %s has no rows after skipping %d", path, opts.SkipRows)
	}
	return records[opts.SkipRows:], nil
}
