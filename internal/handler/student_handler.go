package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rollbook/rollbook-api/internal/service"
	apperrors "github.com/rollbook/rollbook-api/pkg/errors"
	"github.com/rollbook/rollbook-api/pkg/response"
)

// StudentHandler exposes roster management over HTTP.
type StudentHandler struct {
	students *service.StudentService
	imports  *service.ImportService
	logger   *zap.Logger
}

// NewStudentHandler wires a StudentHandler.
func NewStudentHandler(students *service.StudentService, imports *service.ImportService, logger *zap.Logger) *StudentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentHandler{students: students, imports: imports, logger: logger}
}

// List godoc
// @Summary List students
// @Description Returns the full roster ordered by roll number.
// @Tags students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.students.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// Create godoc
// @Summary Add a student
// @Description Creates one student. Duplicate roll numbers are rejected.
// @Tags students
// @Accept json
// @Produce json
// @Param student body service.CreateStudentInput true "Student"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /api/students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var input service.CreateStudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid request body"))
		return
	}

	student, err := h.students.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Upload godoc
// @Summary Import a roster spreadsheet
// @Description Parses an uploaded .xlsx file and inserts new students. Existing roll numbers are skipped.
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Param excel formData file true "Roster spreadsheet"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/students/upload [post]
func (h *StudentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("excel")
	if err != nil {
		response.Error(c, apperrors.Clone(apperrors.ErrValidation, "file field 'excel' is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "could not open upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	result, err := h.imports.ImportFile(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Delete godoc
// @Summary Delete a student
// @Description Removes a student and all of their attendance records.
// @Tags students
// @Produce json
// @Param id path string true "Student ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /api/students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Report godoc
// @Summary Student attendance report
// @Description Returns a student's mark history with present counts and percentage.
// @Tags students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/students/{id}/attendance [get]
func (h *StudentHandler) Report(c *gin.Context) {
	report, err := h.students.Report(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}
