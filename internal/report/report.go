package report

import (
	"fmt"
	"io"

	"school-portal-gateway/internal/attendance"
	"school-portal-gateway/internal/model"
)

const missing = "-"

// Header is the first line of every attendance report.
var Header = []string{"Student Name", "Roll No", "Date", "Status"}

type Row struct {
	StudentName string `json:"student_name"`
	RollNo      string `json:"roll_no"`
	Date        string `json:"date"`
	Status      string `json:"status"`
}

func (r Row) cells() []string {
	return []string{r.StudentName, r.RollNo, r.Date, r.Status}
}

func orMissing(s string) string {
	if s == "" {
		return missing
	}
	return s
}

// RowsFromRecords flattens records into report rows. Fields the backend did
// not return are rendered as "-".
func RowsFromRecords(records []model.AttendanceRecord) []Row {
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		row := Row{
			StudentName: missing,
			RollNo:      missing,
			Date:        orMissing(record.Date),
			Status:      orMissing(string(record.Status)),
		}
		if record.Student != nil {
			row.StudentName = orMissing(record.Student.Name)
			row.RollNo = orMissing(record.Student.RollNumber)
		}
		rows = append(rows, row)
	}
	return rows
}

// Report is the content of one download: its rows plus the summary shown
// alongside them.
type Report struct {
	Rows    []Row
	Summary attendance.Summary
}

// Build filters records to r and summarizes the same records the rows show.
func Build(records []model.AttendanceRecord, r model.DateRange) Report {
	in := FilterByDate(records, r)
	return Report{
		Rows:    RowsFromRecords(in),
		Summary: attendance.Summarize(in, model.DateRange{}),
	}
}

// FilterByDate keeps the records whose date is inside r, both ends included.
func FilterByDate(records []model.AttendanceRecord, r model.DateRange) []model.AttendanceRecord {
	out := make([]model.AttendanceRecord, 0, len(records))
	for _, record := range records {
		if r.Contains(record.Date) {
			out = append(out, record)
		}
	}
	return out
}

func ParseFormat(s string) (model.ExportFormat, error) {
	switch model.ExportFormat(s) {
	case model.FormatCSV, "":
		return model.FormatCSV, nil
	case model.FormatXLSX:
		return model.FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported report format %q", s)
}

func Filename(format model.ExportFormat) string {
	return "attendance_report." + string(format)
}

func ContentType(format model.ExportFormat) string {
	if format == model.FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Render writes rep in the given format. It returns errors.ErrNoData and
// writes nothing when rep has no rows.
func Render(w io.Writer, format model.ExportFormat, rep Report) error {
	switch format {
	case model.FormatXLSX:
		return WriteXLSX(w, rep)
	case model.FormatCSV:
		return WriteCSV(w, rep.Rows)
	}
	return fmt.Errorf("unsupported report format %q", format)
}
