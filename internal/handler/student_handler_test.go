package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/service"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

type fakeStudentSrv struct {
	student    *models.Student
	list       *dto.StudentList
	err        error
	lastInput  map[string]interface{}
	lastID     int64
	lastFilter models.StudentFilter
	calls      int
}

func (f *fakeStudentSrv) Create(_ context.Context, input map[string]interface{}) (*models.Student, error) {
	f.calls++
	f.lastInput = input
	return f.student, f.err
}

func (f *fakeStudentSrv) Get(_ context.Context, id int64) (*models.Student, error) {
	f.calls++
	f.lastID = id
	return f.student, f.err
}

func (f *fakeStudentSrv) List(_ context.Context, filter models.StudentFilter) (*dto.StudentList, error) {
	f.calls++
	f.lastFilter = filter
	return f.list, f.err
}

func (f *fakeStudentSrv) Update(_ context.Context, input map[string]interface{}) (*models.Student, error) {
	f.calls++
	f.lastInput = input
	return f.student, f.err
}

func (f *fakeStudentSrv) Delete(_ context.Context, id int64) error {
	f.calls++
	f.lastID = id
	return f.err
}

type fakeExporter struct {
	file       *service.ExportFile
	err        error
	lastSearch string
	lastFormat string
}

func (f *fakeExporter) Export(_ context.Context, search, format string) (*service.ExportFile, error) {
	f.lastSearch = search
	f.lastFormat = format
	return f.file, f.err
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
	Detail  string            `json:"error"`
}

func sampleStudent() *models.Student {
	return &models.Student{ID: 7, FirstName: "Alice", LastName: "Williams", Email: "alice@example.com", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func perform(t *testing.T, h gin.HandlerFunc, method, target, body string, params gin.Params) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Params = params

	h(c)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func idParam(id string) gin.Params {
	return gin.Params{{Key: "id", Value: id}}
}

func TestStudentHandlerCreate(t *testing.T) {
	srv := &fakeStudentSrv{student: sampleStudent()}
	h := NewStudentHandler(srv, nil)

	rec, env := perform(t, h.Create, http.MethodPost, "/students", `{"first_name":"Alice","last_name":"Williams","email":"alice@example.com","id":12345678901234567}`, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Student created successfully.", env.Message)
	assert.Equal(t, json.Number("12345678901234567"), srv.lastInput["id"])

	var student map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &student))
	assert.Equal(t, float64(7), student["id"])
	assert.Nil(t, student["updated_at"])
}

func TestStudentHandlerCreateRejectsBadJSON(t *testing.T) {
	for _, body := range []string{"", "{not json", "[1,2]", `"text"`, `{"a":1} {"b":2}`} {
		srv := &fakeStudentSrv{}
		h := NewStudentHandler(srv, nil)

		rec, env := perform(t, h.Create, http.MethodPost, "/students", body, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.False(t, env.Success)
		assert.Equal(t, "Invalid JSON payload.", env.Message)
		assert.Zero(t, srv.calls)
	}
}

func TestStudentHandlerCreateValidationEnvelope(t *testing.T) {
	srv := &fakeStudentSrv{err: appErrors.Validation("Validation failed.", map[string]string{"email": "Email format is invalid."})}
	h := NewStudentHandler(srv, nil)

	rec, env := perform(t, h.Create, http.MethodPost, "/students", `{"email":"bad"}`, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Validation failed.", env.Message)
	assert.Equal(t, "Email format is invalid.", env.Errors["email"])
}

func TestStudentHandlerGet(t *testing.T) {
	srv := &fakeStudentSrv{student: sampleStudent()}
	h := NewStudentHandler(srv, nil)

	rec, env := perform(t, h.Get, http.MethodGet, "/students/7", "", idParam("7"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, int64(7), srv.lastID)

	for _, raw := range []string{"abc", "0", "-1", "1.5"} {
		srv.calls = 0
		rec, env = perform(t, h.Get, http.MethodGet, "/students/"+raw, "", idParam(raw))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "ID must be a positive integer.", env.Message)
		assert.Zero(t, srv.calls)
	}
}

func TestStudentHandlerGetNotFound(t *testing.T) {
	srv := &fakeStudentSrv{err: appErrors.Clone(appErrors.ErrNotFound, "Student not found.")}
	h := NewStudentHandler(srv, nil)

	rec, env := perform(t, h.Get, http.MethodGet, "/students/9", "", idParam("9"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Student not found.", env.Message)
}

func TestStudentHandlerListQuery(t *testing.T) {
	srv := &fakeStudentSrv{list: &dto.StudentList{Count: 1, Total: 1, Students: []models.Student{*sampleStudent()}, Page: 2, PerPage: 10}}
	h := NewStudentHandler(srv, nil)

	rec, env := perform(t, h.List, http.MethodGet, "/students?search=%20oh%20&page=2&per_page=10", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StudentFilter{Search: "oh", Page: 2, PerPage: 10}, srv.lastFilter)

	var list map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, float64(1), list["count"])
	assert.Equal(t, float64(10), list["per_page"])

	perform(t, h.List, http.MethodGet, "/students?page=x&per_page=y", "", nil)
	assert.Equal(t, models.StudentFilter{}, srv.lastFilter)
}

func TestStudentHandlerListByID(t *testing.T) {
	srv := &fakeStudentSrv{student: sampleStudent()}
	h := NewStudentHandler(srv, nil)

	rec, _ := perform(t, h.List, http.MethodGet, "/students?id=7", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), srv.lastID)

	rec, env := perform(t, h.List, http.MethodGet, "/students?id=nope", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ID must be a positive integer.", env.Message)
}

func TestStudentHandlerUpdate(t *testing.T) {
	srv := &fakeStudentSrv{student: sampleStudent()}
	h := NewStudentHandler(srv, nil)

	rec, env := perform(t, h.Update, http.MethodPut, "/students/7", `{"first_name":"Alice","last_name":"W","email":"a@x.com"}`, idParam("7"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Student updated successfully.", env.Message)
	assert.Equal(t, int64(7), srv.lastInput["id"])

	rec, _ = perform(t, h.Update, http.MethodPut, "/students/7", `{"id":7,"first_name":"Alice"}`, idParam("7"))
	assert.Equal(t, http.StatusOK, rec.Code)

	srv.calls = 0
	rec, env = perform(t, h.Update, http.MethodPut, "/students/7", `{"id":8}`, idParam("7"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ID in body does not match URL.", env.Message)
	assert.Zero(t, srv.calls)

	rec, _ = perform(t, h.Update, http.MethodPut, "/students/x", `{}`, idParam("x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentHandlerDelete(t *testing.T) {
	srv := &fakeStudentSrv{}
	h := NewStudentHandler(srv, nil)

	rec, env := perform(t, h.Delete, http.MethodDelete, "/students/7", "", idParam("7"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Student deleted successfully.", env.Message)
	assert.JSONEq(t, `{"id":7}`, string(env.Data))

	rec, _ = perform(t, h.Delete, http.MethodDelete, "/students/7", `{"id":"7"}`, idParam("7"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = perform(t, h.Delete, http.MethodDelete, "/students/7", `{"id":3}`, idParam("7"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ID in body does not match URL.", env.Message)

	srv.err = appErrors.Clone(appErrors.ErrNotFound, "Student not found.")
	rec, _ = perform(t, h.Delete, http.MethodDelete, "/students/7", "", idParam("7"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentHandlerInternalErrorHidesDetail(t *testing.T) {
	srv := &fakeStudentSrv{err: appErrors.Wrap(errors.New("pq: connection refused"), appErrors.ErrInternal.Code, http.StatusInternalServerError, "Unable to load student.")}
	h := NewStudentHandler(srv, nil)

	rec, env := perform(t, h.Get, http.MethodGet, "/students/7", "", idParam("7"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Unable to load student.", env.Message)
	assert.Empty(t, env.Detail)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestStudentHandlerExport(t *testing.T) {
	exporter := &fakeExporter{file: &service.ExportFile{Filename: "students-20240101-000000.csv", ContentType: "text/csv; charset=utf-8", Content: []byte("id\n7\n")}}
	h := NewStudentHandler(&fakeStudentSrv{}, exporter)

	rec, _ := perform(t, h.Export, http.MethodGet, "/students/export?format=csv&search=al", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="students-20240101-000000.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "id\n7\n", rec.Body.String())
	assert.Equal(t, "al", exporter.lastSearch)
	assert.Equal(t, "csv", exporter.lastFormat)

	exporter.err = appErrors.Clone(appErrors.ErrBadRequest, "Format must be one of: csv, pdf.")
	rec, env := perform(t, h.Export, http.MethodGet, "/students/export?format=doc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Format must be one of: csv, pdf.", env.Message)
}

func TestStudentHandlerBodyIDForms(t *testing.T) {
	srv := &fakeStudentSrv{student: sampleStudent()}
	h := NewStudentHandler(srv, nil)

	rec, _ := perform(t, h.Update, http.MethodPut, "/students", `{"id":7,"first_name":"Alice"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, json.Number("7"), srv.lastInput["id"])

	rec, env := perform(t, h.Delete, http.MethodDelete, "/students", `{"id":7}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7}`, string(env.Data))
	assert.Equal(t, int64(7), srv.lastID)

	rec, env = perform(t, h.Delete, http.MethodDelete, "/students", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ID must be a positive integer.", env.Message)

	rec, env = perform(t, h.Delete, http.MethodDelete, "/students", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON payload.", env.Message)
}
