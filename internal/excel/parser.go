package excel

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"school-portal-gateway/internal/model"
	"school-portal-gateway/pkg/errors"

	"github.com/xuri/excelize/v2"
)

var requiredColumns = []string{"title", "subject", "exam_date", "total_marks", "obtained_marks", "student_id"}

// ResultRow is one parsed spreadsheet line. Line is the 1-based sheet row.
type ResultRow struct {
	Line  int
	Input model.ExamResultInput
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads exam results from the first worksheet. Column order is free;
// headers are matched case-insensitively. class_id is optional.
func (p *Parser) Parse(ctx context.Context, data []byte) ([]ResultRow, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidFileFormat, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ErrInvalidFileFormat
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	if len(rows) < 2 {
		return nil, errors.Required("rows")
	}

	columnMap := make(map[string]int)
	for i, col := range rows[0] {
		columnMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, exists := columnMap[col]; !exists {
			return nil, fmt.Errorf("%w: missing column %s", errors.ErrInvalidFileFormat, col)
		}
	}

	var results []ResultRow
	for i, row := range rows[1:] {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if blank(row) {
			continue
		}
		line := i + 2
		input, err := p.parseRow(row, columnMap)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		results = append(results, ResultRow{Line: line, Input: input})
	}

	if len(results) == 0 {
		return nil, errors.Required("rows")
	}
	return results, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (p *Parser) parseRow(row []string, columnMap map[string]int) (model.ExamResultInput, error) {
	getValue := func(colName string) string {
		if idx, exists := columnMap[colName]; exists && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	in := model.ExamResultInput{
		Title:    getValue("title"),
		Subject:  getValue("subject"),
		ExamDate: normalizeDate(getValue("exam_date")),
	}

	var err error
	if in.TotalMarks, err = parseInt("total_marks", getValue("total_marks")); err != nil {
		return in, err
	}
	if v := getValue("obtained_marks"); v != "" {
		obtained, err := parseInt("obtained_marks", v)
		if err != nil {
			return in, err
		}
		in.ObtainedMarks = &obtained
	}
	if v := getValue("student_id"); v != "" {
		id, err := parseInt("student_id", v)
		if err != nil {
			return in, err
		}
		in.Student = int64(id)
	}
	if v := getValue("class_id"); v != "" {
		id, err := parseInt("class_id", v)
		if err != nil {
			return in, err
		}
		in.Class = int64(id)
	}
	return in, nil
}

func parseInt(field, value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || n != float64(int(n)) {
		return 0, errors.ValidationError{Field: field, Value: value, Message: "must be a whole number"}
	}
	return int(n), nil
}

// normalizeDate turns Excel serial dates into YYYY-MM-DD and leaves
// anything else as typed.
func normalizeDate(value string) string {
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format(model.DateLayout)
		}
	}
	return value
}
