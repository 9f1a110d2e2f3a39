package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	// DataSheet mirrors the CSV row set.
	DataSheet = "Data"
	// SummarySheet carries the total-hours aggregate.
	SummarySheet = "Summary"
)

type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, report *Report) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), DataSheet); err != nil {
		return fmt.Errorf("name data sheet: %w", err)
	}

	for col, header := range report.Columns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(DataSheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, row := range report.Rows {
		rowNumber := i + 2
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNumber)
			if err := file.SetCellValue(DataSheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if _, err := file.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	if err := file.SetCellValue(SummarySheet, "A1", "Total hours"); err != nil {
		return fmt.Errorf("set summary header: %w", err)
	}
	if err := file.SetCellValue(SummarySheet, "A2", report.TotalHours); err != nil {
		return fmt.Errorf("set summary total: %w", err)
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}

	return nil
}
