package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"school-portal-gateway/internal/backend"
	"school-portal-gateway/internal/model"
	"school-portal-gateway/internal/session"
	apperrors "school-portal-gateway/pkg/errors"
)

type write struct {
	method     string
	collection string
	documentID string
	data       interface{}
}

type fakeBackend struct {
	mu        sync.Mutex
	roles     []model.RoleInfo
	writes    []write
	userErr   error
	createErr map[string]error
	nextID    int64
}

func (f *fakeBackend) CreateUser(_ context.Context, token string, in model.UserInput) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, write{method: "POST", collection: "users", data: in})
	if f.userErr != nil {
		return nil, f.userErr
	}
	f.nextID++
	return &model.User{ID: 100 + f.nextID, Username: in.Username, Email: in.Email}, nil
}

func (f *fakeBackend) ListRoles(context.Context, string) ([]model.RoleInfo, error) {
	return f.roles, nil
}

func (f *fakeBackend) Create(_ context.Context, token, collection string, data, out interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, write{method: "POST", collection: collection, data: data})
	if err := f.createErr[collection]; err != nil {
		return err
	}
	return echo(data, out)
}

func (f *fakeBackend) Update(_ context.Context, token, collection, documentID string, data, out interface{}) error {
	f.writes = append(f.writes, write{method: "PUT", collection: collection, documentID: documentID, data: data})
	return echo(data, out)
}

func (f *fakeBackend) Delete(_ context.Context, token, collection, documentID string) error {
	f.writes = append(f.writes, write{method: "DELETE", collection: collection, documentID: documentID})
	return nil
}

// echo decodes the written payload into out, like the backend returning the
// entry. Relation ids do not fit the populated relation fields and are dropped.
func echo(data, out interface{}) error {
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var typeErr *json.UnmarshalTypeError
	if err := json.Unmarshal(raw, out); err != nil && !errors.As(err, &typeErr) {
		return err
	}
	return nil
}

func sessionFor(t *testing.T, role string) *session.Session {
	t.Helper()
	sess, err := session.New("sid", "tok", model.User{ID: 1, Role: &model.RoleInfo{Name: role}}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return sess
}

var roles = []model.RoleInfo{
	{ID: 1, Name: "Admin"},
	{ID: 2, Name: "Teacher"},
	{ID: 3, Name: "Student"},
}

func TestCreateUserWithLinkedProfile(t *testing.T) {
	fb := &fakeBackend{roles: roles}
	svc := NewService(fb)

	user, err := svc.CreateUser(context.Background(), sessionFor(t, "admin"), UserForm{
		Username: "ada", Email: "ada@school.test", Password: "secret", RoleID: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(101), user.ID)

	require.Len(t, fb.writes, 2)
	assert.Equal(t, "users", fb.writes[0].collection)
	assert.Equal(t, backend.CollectionTeachers, fb.writes[1].collection)
	assert.Equal(t, model.LinkedProfileInput{Name: "ada", Email: "ada@school.test", User: 101}, fb.writes[1].data)
}

func TestCreateUserAdminRoleSkipsProfile(t *testing.T) {
	fb := &fakeBackend{roles: roles}
	_, err := NewService(fb).CreateUser(context.Background(), sessionFor(t, "admin"), UserForm{
		Username: "root", Email: "root@school.test", Password: "pw", RoleID: 1,
	})
	require.NoError(t, err)
	assert.Len(t, fb.writes, 1)
}

func TestCreateUserPartialFailure(t *testing.T) {
	fb := &fakeBackend{roles: roles, createErr: map[string]error{
		backend.CollectionStudents: &apperrors.APIError{Status: 400, Message: "email taken"},
	}}

	user, err := NewService(fb).CreateUser(context.Background(), sessionFor(t, "admin"), UserForm{
		Username: "bo", Email: "bo@school.test", Password: "pw", RoleID: 3,
	})

	var partial *apperrors.PartialFailureError
	require.True(t, errors.As(err, &partial))
	assert.Equal(t, int64(101), partial.CreatedID)
	assert.Equal(t, "create students profile", partial.Step)
	require.NotNil(t, user)
	assert.Equal(t, int64(101), user.ID)
	assert.Contains(t, NoticeFor(err), "email taken")
}

func TestCreateUserUnknownRole(t *testing.T) {
	fb := &fakeBackend{roles: roles}
	_, err := NewService(fb).CreateUser(context.Background(), sessionFor(t, "admin"), UserForm{
		Username: "x", Email: "x@y", Password: "pw", RoleID: 42,
	})
	var vErr apperrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "role", vErr.Field)
	assert.Empty(t, fb.writes)
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	_, err := NewService(&fakeBackend{}).CreateUser(context.Background(), sessionFor(t, "teacher"), UserForm{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestRequiredFields(t *testing.T) {
	fb := &fakeBackend{}
	svc := NewService(fb)
	admin := sessionFor(t, "admin")

	_, err := svc.CreateStudent(context.Background(), admin, StudentForm{Name: "Ada", Email: "a@b", RollNumber: "  ", ClassID: 1})
	var vErr apperrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "rollNumber", vErr.Field)
	assert.Equal(t, "rollNumber is a required field", vErr.Message)
	assert.Equal(t, RequiredNotice, NoticeFor(err))

	_, err = svc.CreateTeacher(context.Background(), admin, TeacherForm{Name: "T", Email: "t@s", Subject: "Math"})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "classId", vErr.Field)

	assert.Empty(t, fb.writes)
}

func TestCreateStudentDefaults(t *testing.T) {
	fb := &fakeBackend{}
	student, err := NewService(fb).CreateStudent(context.Background(), sessionFor(t, "admin"), StudentForm{
		Name: "Ada", Email: "a@b", RollNumber: "R1", ClassID: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StudentActive, student.Status)

	in := fb.writes[0].data.(model.StudentInput)
	assert.Equal(t, int64(4), in.Class)
}

func TestCreateTeacherDefaults(t *testing.T) {
	fb := &fakeBackend{}
	svc := NewService(fb)
	svc.now = func() time.Time { return time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC) }

	_, err := svc.CreateTeacher(context.Background(), sessionFor(t, "admin"), TeacherForm{
		Name: "T", Email: "t@s", Subject: "Math", ClassID: 2,
	})
	require.NoError(t, err)

	in := fb.writes[0].data.(model.TeacherInput)
	assert.Equal(t, "2024-09-01", in.JoiningDate)
	assert.Equal(t, model.TeacherActive, in.Status)
	assert.Equal(t, "0 years", in.Experience)
}

func TestUpdateAndDelete(t *testing.T) {
	fb := &fakeBackend{}
	svc := NewService(fb)
	admin := sessionFor(t, "admin")

	_, err := svc.UpdateStudent(context.Background(), admin, "doc1", StudentForm{Name: "A", Email: "a@b", RollNumber: "R", ClassID: 1})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), admin, backend.CollectionTeachers, "doc2"))

	assert.Equal(t, write{method: "PUT", collection: backend.CollectionStudents, documentID: "doc1", data: fb.writes[0].data}, fb.writes[0])
	assert.Equal(t, "DELETE", fb.writes[1].method)
	assert.Equal(t, "doc2", fb.writes[1].documentID)

	assert.Error(t, svc.Delete(context.Background(), admin, backend.CollectionTeachers, ""))
}

func TestCreateExamResult(t *testing.T) {
	fb := &fakeBackend{}
	obtained := 45
	result, err := NewService(fb).CreateExamResult(context.Background(), sessionFor(t, "teacher"), ExamResultForm{
		Title: "Quiz", Subject: "Math", ExamDate: "2024-05-02", TotalMarks: 50, ObtainedMarks: &obtained, StudentID: 3, ClassID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Math", result.Subject)
	assert.Equal(t, 45, result.ObtainedMarks)

	_, err = NewService(fb).CreateExamResult(context.Background(), sessionFor(t, "student"), ExamResultForm{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestFormStateMachine(t *testing.T) {
	form := NewForm(StudentForm{Name: "Ada", Email: "a@b", RollNumber: "R1", ClassID: 1})
	assert.Equal(t, StateIdle, form.State())

	sendErr := errors.New("backend said no")
	err := form.Submit(context.Background(), func(ctx context.Context, v StudentForm) error { return sendErr })
	assert.ErrorIs(t, err, sendErr)
	assert.Equal(t, StateFailed, form.State())
	assert.Equal(t, "backend said no", form.Notice())
	assert.Equal(t, "Ada", form.Values().Name)

	require.NoError(t, form.Submit(context.Background(), func(ctx context.Context, v StudentForm) error { return nil }))
	assert.Equal(t, StateSuccess, form.State())
	assert.Empty(t, form.Notice())
	assert.Equal(t, StudentForm{}, form.Values())
}

func TestFormRejectsConcurrentSubmit(t *testing.T) {
	form := NewForm(StudentForm{Name: "Ada", Email: "a@b", RollNumber: "R1", ClassID: 1})
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- form.Submit(context.Background(), func(ctx context.Context, v StudentForm) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	assert.Equal(t, StateSubmitting, form.State())
	err := form.Submit(context.Background(), func(ctx context.Context, v StudentForm) error { return nil })
	assert.ErrorIs(t, err, apperrors.ErrFormInFlight)

	close(release)
	require.NoError(t, <-done)
}

func resultsWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"title", "subject", "exam_date", "total_marks", "obtained_marks", "student_id"},
		{"Final", "Math", "2024-06-01", 100, 70, 1},
		{"Final", "Math", "2024-06-01", 100, 80, 2},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestImportExamResults(t *testing.T) {
	fb := &fakeBackend{}
	report, err := NewService(fb).ImportExamResults(context.Background(), sessionFor(t, "teacher"), resultsWorkbook(t), 9)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Count(model.OutcomeSucceeded))
	require.Len(t, fb.writes, 2)
	in := fb.writes[1].data.(model.ExamResultInput)
	assert.Equal(t, int64(2), in.Student)
	assert.Equal(t, int64(9), in.Class)
}

func TestImportExamResultsKeepsGoingAfterFailure(t *testing.T) {
	fb := &fakeBackend{createErr: map[string]error{backend.CollectionExamResults: apperrors.ErrTransport}}
	report, err := NewService(fb).ImportExamResults(context.Background(), sessionFor(t, "admin"), resultsWorkbook(t), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count(model.OutcomeFailed))
	assert.Equal(t, 3, report.Items[1].Line)
}

func TestImportExamResultsRejectsBadFile(t *testing.T) {
	fb := &fakeBackend{}
	_, err := NewService(fb).ImportExamResults(context.Background(), sessionFor(t, "admin"), []byte("nope"), 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidFileFormat)
	assert.Empty(t, fb.writes)
}
