package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/service"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/response"
)

type studentService interface {
	Create(ctx context.Context, input map[string]interface{}) (*models.Student, error)
	Get(ctx context.Context, id int64) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) (*dto.StudentList, error)
	Update(ctx context.Context, input map[string]interface{}) (*models.Student, error)
	Delete(ctx context.Context, id int64) error
}

type studentExporter interface {
	Export(ctx context.Context, search, format string) (*service.ExportFile, error)
}

var (
	errInvalidJSON = appErrors.Clone(appErrors.ErrBadRequest, "Invalid JSON payload.")
	errInvalidID   = appErrors.Clone(appErrors.ErrBadRequest, "ID must be a positive integer.")
	errIDMismatch  = appErrors.Clone(appErrors.ErrBadRequest, "ID in body does not match URL.")
)

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students studentService
	exports  studentExporter
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService, exports studentExporter) *StudentHandler {
	return &StudentHandler{students: students, exports: exports}
}

// List godoc
// @Summary List or search students
// @Description Newest first. Passing id returns a single student instead.
// @Tags Students
// @Produce json
// @Param search query string false "Substring of first name, last name or email"
// @Param page query int false "Page (default 1)"
// @Param per_page query int false "Page size (default 50, max 100)"
// @Param id query int false "Student ID"
// @Success 200 {object} response.Envelope{data=dto.StudentList}
// @Failure 404 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	if raw, ok := c.GetQuery("id"); ok {
		h.respondStudent(c, raw)
		return
	}

	filter := models.StudentFilter{Search: strings.TrimSpace(c.Query("search"))}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		filter.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil {
		filter.PerPage = perPage
	}

	list, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, "")
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope{data=models.Student}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	h.respondStudent(c, c.Param("id"))
}

func (h *StudentHandler) respondStudent(c *gin.Context, raw string) {
	id, ok := service.ParseID(raw)
	if !ok {
		response.Error(c, errInvalidID)
		return
	}
	student, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, "")
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.StudentPayload true "Student payload (id is ignored)"
// @Success 201 {object} response.Envelope{data=models.Student}
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	input, err := decodeObject(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student, "Student created successfully.")
}

// Update godoc
// @Summary Replace student fields
// @Description Every mutable field is replaced; omitted optional fields become null.
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body dto.StudentPayload true "Student payload"
// @Success 200 {object} response.Envelope{data=models.Student}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /students/{id} [put]
// @Router /students [put]
func (h *StudentHandler) Update(c *gin.Context) {
	input, err := decodeObject(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}
	// Without a path id the body id is left to the validator.
	if raw := c.Param("id"); raw != "" {
		id, ok := service.ParseID(raw)
		if !ok {
			response.Error(c, errInvalidID)
			return
		}
		if err := matchBodyID(input, id); err != nil {
			response.Error(c, err)
			return
		}
		input["id"] = id
	}

	student, err := h.students.Update(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, "Student updated successfully.")
}

// Delete godoc
// @Summary Delete student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope{data=dto.DeletedStudent}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [delete]
// @Router /students [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	raw := c.Param("id")
	input, err := decodeObject(c, raw != "")
	if err != nil {
		response.Error(c, err)
		return
	}
	if raw == "" {
		raw = fmt.Sprint(input["id"])
	}
	id, ok := service.ParseID(raw)
	if !ok {
		response.Error(c, errInvalidID)
		return
	}
	if err := matchBodyID(input, id); err != nil {
		response.Error(c, err)
		return
	}

	if err := h.students.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DeletedStudent{ID: id}, "Student deleted successfully.")
}

// Export godoc
// @Summary Export students
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf (default csv)"
// @Param search query string false "Substring of first name, last name or email"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	file, err := h.exports.Export(c.Request.Context(), strings.TrimSpace(c.Query("search")), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// decodeObject reads the request body as a JSON object. Numbers are kept as
// json.Number so ids are not silently truncated.
func decodeObject(c *gin.Context, allowEmpty bool) (map[string]interface{}, error) {
	if c.Request.Body == nil {
		if allowEmpty {
			return map[string]interface{}{}, nil
		}
		return nil, errInvalidJSON
	}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.UseNumber()

	var payload interface{}
	if err := decoder.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return map[string]interface{}{}, nil
		}
		return nil, appErrors.Wrap(err, errInvalidJSON.Code, errInvalidJSON.Status, errInvalidJSON.Message)
	}
	object, ok := payload.(map[string]interface{})
	if !ok {
		return nil, errInvalidJSON
	}
	if decoder.More() {
		return nil, errInvalidJSON
	}
	return object, nil
}

func matchBodyID(input map[string]interface{}, pathID int64) error {
	raw, present := input["id"]
	if !present || raw == nil {
		return nil
	}
	bodyID, ok := service.ParseID(raw)
	if !ok {
		return errInvalidID
	}
	if bodyID != pathID {
		return errIDMismatch
	}
	return nil
}
