package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-portal-gateway/internal/model"
	"school-portal-gateway/internal/session"
	apperrors "school-portal-gateway/pkg/errors"
)

func student(id int64, class *model.Class) model.Student {
	return model.Student{ID: id, Name: fmt.Sprintf("student-%d", id), Class: class}
}

func record(studentID int64, date string, status model.AttendanceStatus) model.AttendanceRecord {
	return model.AttendanceRecord{Date: date, Status: status, Student: &model.Student{ID: studentID}}
}

// dayOf returns total records on one day, the first present of them present.
func dayOf(present, total int) []model.AttendanceRecord {
	out := make([]model.AttendanceRecord, total)
	for i := range out {
		status := model.StatusAbsent
		if i < present {
			status = model.StatusPresent
		}
		out[i] = record(int64(i+1), "2024-05-01", status)
	}
	return out
}

func TestGroupByClass(t *testing.T) {
	fiveA := &model.Class{ID: 1, Name: "5", Section: "A"}
	fourB := &model.Class{ID: 2, Name: "4", Section: "B"}

	g := GroupByClass([]model.Student{
		student(1, fiveA),
		student(2, fourB),
		student(3, nil),
		student(4, fiveA),
	})

	assert.Equal(t, []string{"5 - A", "4 - B", " - "}, g.Keys())
	assert.Equal(t, 3, g.Len())
	assert.Len(t, g.Students("5 - A"), 2)
	assert.Equal(t, int64(3), g.Students(" - ")[0].ID)
	assert.Nil(t, g.Students("9 - Z"))
}

func TestGroupByClassEmpty(t *testing.T) {
	g := GroupByClass(nil)
	assert.Empty(t, g.Keys())
	assert.NotNil(t, g.Groups)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		records []model.AttendanceRecord
		rng     model.DateRange
		rate    string
		total   int
	}{
		{name: "no records", rate: "0.0%"},
		{
			name:    "all present",
			records: []model.AttendanceRecord{record(1, "2024-05-01", model.StatusPresent)},
			rate:    "100.0%",
			total:   1,
		},
		{
			name: "mixed",
			records: []model.AttendanceRecord{
				record(1, "2024-05-01", model.StatusPresent),
				record(2, "2024-05-01", model.StatusAbsent),
				record(3, "2024-05-01", model.StatusLeave),
			},
			rate:  "33.3%",
			total: 3,
		},
		{
			name: "bounded range drops unparseable dates",
			records: []model.AttendanceRecord{
				record(1, "2024-05-01", model.StatusPresent),
				record(1, "", model.StatusAbsent),
			},
			rng:   model.DateRange{From: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
			rate:  "100.0%",
			total: 1,
		},
		{
			name: "open range keeps unparseable dates",
			records: []model.AttendanceRecord{
				record(1, "2024-05-01", model.StatusPresent),
				record(1, "", model.StatusAbsent),
			},
			rate:  "50.0%",
			total: 2,
		},
		{name: "tie rounds up", records: dayOf(21, 80), rate: "26.3%", total: 80},
		{name: "small tie rounds up", records: dayOf(1, 80), rate: "1.3%", total: 80},
		{name: "quarter percent", records: dayOf(1, 400), rate: "0.3%", total: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.records, tt.rng)
			assert.Equal(t, tt.rate, s.RateString())
			assert.Equal(t, tt.total, s.Total)
		})
	}
}

func TestSummarizeInclusiveRange(t *testing.T) {
	rng, err := model.ParseDateRange("2024-05-01", "2024-05-03")
	require.NoError(t, err)

	s := Summarize([]model.AttendanceRecord{
		record(1, "2024-04-30", model.StatusPresent),
		record(1, "2024-05-01", model.StatusPresent),
		record(1, "2024-05-03", model.StatusAbsent),
		record(1, "2024-05-04", model.StatusPresent),
	}, rng)

	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Present)
	assert.Equal(t, 1, s.Absent)
}

func TestSummaryJSONIncludesRateText(t *testing.T) {
	data, err := json.Marshal(Summarize([]model.AttendanceRecord{record(1, "2024-05-01", model.StatusPresent)}, model.DateRange{}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rate_text":"100.0%"`)
	assert.Contains(t, string(data), `"present":1`)
}

func TestGroupingAndRateExample(t *testing.T) {
	students := []model.Student{student(1, &model.Class{Name: "5", Section: "A"})}
	records := []model.AttendanceRecord{record(1, "2024-05-01", model.StatusPresent)}

	g := GroupByClass(students)
	require.Equal(t, []string{"5 - A"}, g.Keys())
	assert.Equal(t, int64(1), g.Students("5 - A")[0].ID)

	byClass := SummarizeByClass(g, records, model.DateRange{})
	require.Len(t, byClass, 1)
	assert.Equal(t, "100.0%", byClass[0].Summary.RateString())
	assert.Equal(t, 1, byClass[0].Students)
}

func TestSummarizeByStudent(t *testing.T) {
	records := []model.AttendanceRecord{
		record(2, "2024-05-01", model.StatusAbsent),
		record(1, "2024-05-01", model.StatusPresent),
		record(2, "2024-05-02", model.StatusPresent),
		{Date: "2024-05-02", Status: model.StatusPresent},
	}

	out := SummarizeByStudent(records, model.DateRange{})
	require.Len(t, out, 3)
	assert.Equal(t, int64(2), out[0].StudentID)
	assert.Equal(t, "50.0%", out[0].Summary.RateString())
	assert.Equal(t, int64(1), out[1].StudentID)
	assert.Equal(t, int64(0), out[2].StudentID)
}

func TestSummarizeByClassIgnoresUnknownStudents(t *testing.T) {
	g := GroupByClass([]model.Student{student(1, &model.Class{Name: "5", Section: "A"})})
	out := SummarizeByClass(g, []model.AttendanceRecord{record(99, "2024-05-01", model.StatusPresent)}, model.DateRange{})
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].Summary.Total)
	assert.Equal(t, "0.0%", out[0].Summary.RateString())
}

type fakeWriter struct {
	failFor  map[int64]error
	existing []model.AttendanceRecord
	written  []model.AttendanceInput
	onWrite  func(n int)
}

func (f *fakeWriter) CreateAttendance(_ context.Context, token string, in model.AttendanceInput) (*model.AttendanceRecord, error) {
	f.written = append(f.written, in)
	if f.onWrite != nil {
		f.onWrite(len(f.written))
	}
	if err := f.failFor[in.Student]; err != nil {
		return nil, err
	}
	return &model.AttendanceRecord{ID: int64(len(f.written)), Date: in.Date, Status: in.Status}, nil
}

func (f *fakeWriter) Attendances(_ context.Context, token string, q model.AttendanceQuery) ([]model.AttendanceRecord, error) {
	return f.existing, nil
}

func teacherSession(t *testing.T) *session.Session {
	t.Helper()
	sess, err := session.New("sid", "tok", model.User{ID: 7, Role: &model.RoleInfo{Name: "teacher"}}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return sess
}

func TestSubmitPartialFailure(t *testing.T) {
	writer := &fakeWriter{failFor: map[int64]error{2: apperrors.ErrTransport}}
	sub := NewSubmitter(writer, PolicyAppend)

	report, err := sub.Submit(context.Background(), teacherSession(t), "2024-05-01", []Mark{
		{StudentID: 1, Status: model.StatusPresent},
		{StudentID: 2, Status: model.StatusAbsent},
		{StudentID: 3, Status: model.StatusLeave},
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 3}, report.Succeeded())
	assert.Equal(t, []int64{2}, report.Failed())
	assert.Empty(t, report.Skipped())
	assert.True(t, report.HasFailures())
	assert.Equal(t, int64(7), report.SubmittedBy)
	assert.NotEmpty(t, report.ID)
	assert.Len(t, writer.written, 3)
	assert.Contains(t, report.Items[1].Error, "backend unreachable")
}

func TestSubmitDedupesByStudent(t *testing.T) {
	writer := &fakeWriter{}
	sub := NewSubmitter(writer, PolicyAppend)

	report, err := sub.Submit(context.Background(), teacherSession(t), "2024-05-01", []Mark{
		{StudentID: 1, Status: model.StatusPresent},
		{StudentID: 2, Status: model.StatusPresent},
		{StudentID: 1, Status: model.StatusAbsent},
	})
	require.NoError(t, err)

	require.Len(t, writer.written, 2)
	assert.Equal(t, int64(1), writer.written[0].Student)
	assert.Equal(t, model.StatusAbsent, writer.written[0].Status)
	assert.Equal(t, []int64{1, 2}, report.Succeeded())
}

func TestSubmitSkipExisting(t *testing.T) {
	writer := &fakeWriter{existing: []model.AttendanceRecord{record(1, "2024-05-01", model.StatusPresent)}}
	sub := NewSubmitter(writer, PolicySkipExisting)

	report, err := sub.Submit(context.Background(), teacherSession(t), "2024-05-01", []Mark{
		{StudentID: 1, Status: model.StatusAbsent},
		{StudentID: 2, Status: model.StatusPresent},
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, report.Skipped())
	assert.Equal(t, []int64{2}, report.Succeeded())
	assert.Len(t, writer.written, 1)
}

func TestSubmitStopsWritingWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	writer := &fakeWriter{onWrite: func(n int) {
		if n == 1 {
			cancel()
		}
	}}
	sub := NewSubmitter(writer, PolicyAppend)

	report, err := sub.Submit(ctx, teacherSession(t), "2024-05-01", []Mark{
		{StudentID: 1, Status: model.StatusPresent},
		{StudentID: 2, Status: model.StatusPresent},
		{StudentID: 3, Status: model.StatusPresent},
	})
	require.NoError(t, err)

	assert.Len(t, writer.written, 1)
	assert.Equal(t, []int64{1}, report.Succeeded())
	assert.Equal(t, []int64{2, 3}, report.Failed())
	assert.Equal(t, context.Canceled.Error(), report.Items[2].Error)
}

func TestSubmitValidation(t *testing.T) {
	sub := NewSubmitter(&fakeWriter{}, PolicyAppend)
	sess := teacherSession(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		date  string
		marks []Mark
		field string
	}{
		{name: "missing date", marks: []Mark{{StudentID: 1, Status: model.StatusPresent}}, field: "date"},
		{name: "bad date", date: "01/05/2024", marks: []Mark{{StudentID: 1, Status: model.StatusPresent}}, field: "date"},
		{name: "no marks", date: "2024-05-01", field: "marks"},
		{name: "missing student", date: "2024-05-01", marks: []Mark{{Status: model.StatusPresent}}, field: "student_id"},
		{name: "bad status", date: "2024-05-01", marks: []Mark{{StudentID: 1, Status: "late"}}, field: "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sub.Submit(ctx, sess, tt.date, tt.marks)
			var vErr apperrors.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestSubmitRejectsStudents(t *testing.T) {
	sess, err := session.New("sid", "tok", model.User{ID: 2, Role: &model.RoleInfo{Name: "student"}}, time.Now())
	require.NoError(t, err)

	_, err = NewSubmitter(&fakeWriter{}, PolicyAppend).Submit(context.Background(), sess, "2024-05-01",
		[]Mark{{StudentID: 1, Status: model.StatusPresent}})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestMarksForRoster(t *testing.T) {
	roster := []model.Student{student(1, nil), student(2, nil), student(3, nil)}
	marks := MarksForRoster(roster, map[int64]model.AttendanceStatus{2: model.StatusAbsent, 99: model.StatusLeave})

	assert.Equal(t, []Mark{
		{StudentID: 1, Status: model.StatusPresent},
		{StudentID: 2, Status: model.StatusAbsent},
		{StudentID: 3, Status: model.StatusPresent},
	}, marks)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyAppend, p)

	p, err = ParsePolicy("skip_existing")
	require.NoError(t, err)
	assert.Equal(t, PolicySkipExisting, p)

	_, err = ParsePolicy("merge")
	assert.Error(t, err)
}

func TestCheckRoster(t *testing.T) {
	roster := GroupByClass([]model.Student{{ID: 1}, {ID: 2, Class: &model.Class{Name: "5", Section: "A"}}})
	require.Len(t, roster.All(), 2)

	assert.NoError(t, CheckRoster([]Mark{{StudentID: 2, Status: model.StatusAbsent}}, roster.All()))

	err := CheckRoster([]Mark{{StudentID: 1}, {StudentID: 7}}, roster.All())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Contains(t, err.Error(), "student 7")
}
