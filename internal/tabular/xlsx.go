package tabular

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/alnah/go-docmerge/internal/fileutil"
)

func readSheet(path string, o options) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), o)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func pickSheet(sheets []string, o options) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("%w: workbook has no sheets", ErrSheetNotFound)
	}
	if o.sheetName != "" {
		for _, s := range sheets {
			if s == o.sheetName {
				return s, nil
			}
		}
		return "", fmt.Errorf("%w: %q (available: %v)", ErrSheetNotFound, o.sheetName, sheets)
	}
	if o.sheetIndex < 0 {
		return sheets[0], nil
	}
	if o.sheetIndex >= len(sheets) {
		return "", fmt.Errorf("%w: index %d (workbook has %d)", ErrSheetNotFound, o.sheetIndex, len(sheets))
	}
	return sheets[o.sheetIndex], nil
}

// Sheets lists the sheet names of the workbook at path, in workbook order.
func Sheets(path string) ([]string, error) {
	if !fileutil.HasExtension(path, sheetExtensions...) {
		return nil, fmt.Errorf("%w: %s is not a workbook", ErrUnsupportedFormat, path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}
