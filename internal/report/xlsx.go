package report

import (
	"fmt"
	"io"

	"school-portal-gateway/internal/attendance"
	"school-portal-gateway/pkg/errors"

	"github.com/xuri/excelize/v2"
)

const (
	attendanceSheet = "Attendance"
	summarySheet    = "Summary"
)

func WriteXLSX(w io.Writer, rep Report) error {
	rows := rep.Rows
	if len(rows) == 0 {
		return errors.ErrNoData
	}

	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), attendanceSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := setRow(file, attendanceSheet, 1, Header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(file, attendanceSheet, i+2, row.cells()); err != nil {
			return err
		}
	}

	if err := writeSummary(file, rep.Summary); err != nil {
		return err
	}

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(file *excelize.File, sheet string, rowNum int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}

func writeSummary(file *excelize.File, summary attendance.Summary) error {
	if _, err := file.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}

	lines := [][]interface{}{
		{"Total", summary.Total},
		{"Present", summary.Present},
		{"Absent", summary.Absent},
		{"Leave", summary.Leave},
		{"Attendance Rate", summary.RateString()},
	}
	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(summarySheet, cell, &line); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return nil
}
