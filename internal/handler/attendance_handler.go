package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rollbook/rollbook-api/internal/service"
	apperrors "github.com/rollbook/rollbook-api/pkg/errors"
	"github.com/rollbook/rollbook-api/pkg/response"
)

// AttendanceHandler exposes mark recording and reporting over HTTP.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	exports    *service.ExportService
	logger     *zap.Logger
}

// NewAttendanceHandler wires an AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, exports *service.ExportService, logger *zap.Logger) *AttendanceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceHandler{attendance: attendance, exports: exports, logger: logger}
}

// Roster godoc
// @Summary Roster for a date
// @Description Returns every student joined with their mark for the date. Unmarked students have a null status.
// @Tags attendance
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/attendance/{date} [get]
func (h *AttendanceHandler) Roster(c *gin.Context) {
	rows, err := h.attendance.Roster(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// Mark godoc
// @Summary Record one mark
// @Description Inserts or replaces the mark for a (student, date) pair.
// @Tags attendance
// @Accept json
// @Produce json
// @Param mark body service.MarkInput true "Mark"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var input service.MarkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid request body"))
		return
	}

	mark, err := h.attendance.Mark(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mark)
}

type bulkMarkRequest struct {
	Records []service.MarkInput `json:"records"`
}

// BulkMark godoc
// @Summary Record marks in bulk
// @Description Applies a batch of marks in one transaction. Malformed records are skipped.
// @Tags attendance
// @Accept json
// @Produce json
// @Param batch body bulkMarkRequest true "Batch of marks"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/attendance/bulk [post]
func (h *AttendanceHandler) BulkMark(c *gin.Context) {
	var req bulkMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid request body"))
		return
	}

	result, err := h.attendance.BulkMark(c.Request.Context(), req.Records)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Summary godoc
// @Summary Daily summary
// @Description Returns present, absent and total mark counts for one date.
// @Tags attendance
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/attendance/{date}/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	summary, err := h.attendance.Summary(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// History godoc
// @Summary Attendance history
// @Description Returns recent per-date aggregates, newest first.
// @Tags attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/attendance/history [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	history, err := h.attendance.History(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history)
}

// DeleteRecord godoc
// @Summary Delete one mark
// @Tags attendance
// @Produce json
// @Param id path string true "Record ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /api/attendance/{id} [delete]
func (h *AttendanceHandler) DeleteRecord(c *gin.Context) {
	if err := h.attendance.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteByDate godoc
// @Summary Delete all marks for a date
// @Tags attendance
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/attendance/date/{date} [delete]
func (h *AttendanceHandler) DeleteByDate(c *gin.Context) {
	deleted, err := h.attendance.DeleteByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted})
}

// DeleteAll godoc
// @Summary Delete every mark
// @Tags attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/attendance/all [delete]
func (h *AttendanceHandler) DeleteAll(c *gin.Context) {
	deleted, err := h.attendance.DeleteAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted})
}

// Export godoc
// @Summary Export a day's roster
// @Description Downloads the roster with marks as CSV or PDF.
// @Tags attendance
// @Produce text/csv
// @Produce application/pdf
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /api/attendance/{date}/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	file, err := h.exports.DayRoster(c.Request.Context(), c.Param("date"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
