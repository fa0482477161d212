package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported workbook format")

// Decode reads an uploaded workbook into sheets. The format is picked from
// the file extension: .xlsx/.xlsm through excelize, .csv as a single sheet.
func Decode(filename string, r io.Reader) ([]Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return decodeXLSX(r)
	case ".csv":
		return decodeCSV(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)), r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// decodeXLSX keeps raw cell values so date cells surface as serial numbers
// instead of whatever display format the exporting tool picked.
func decodeXLSX(r io.Reader) ([]Sheet, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	names := file.GetSheetList()
	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		rows, err := file.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read rows from sheet %s: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}

func decodeCSV(name string, r io.Reader) ([]Sheet, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return []Sheet{{Name: name, Rows: rows}}, nil
}
