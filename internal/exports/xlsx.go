// SPDX-License-Identifier: AGPL-3.0-only
package exports

import (
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/softpaws/postharvest/internal/record"
)

const sheetName = "Posts"

// WriteXLSX writes the collection as a single-sheet workbook with the same
// columns as the CSV export.
func WriteXLSX(recs record.Collection, path string) error {
	wb := excelize.NewFile()
	defer wb.Close()

	idx, err := wb.NewSheet(sheetName)
	if err != nil {
		return err
	}
	wb.SetActiveSheet(idx)
	if err := wb.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	if err := setRow(wb, 1, record.Columns); err != nil {
		return err
	}
	for i, r := range recs {
		if err := setRow(wb, i+2, tabularRow(r)); err != nil {
			return err
		}
	}

	return atomicWrite(path, func(f *os.File) error {
		return wb.Write(f)
	})
}

func setRow(wb *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return wb.SetSheetRow(sheetName, cell, &cells)
}
