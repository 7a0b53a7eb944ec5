package api

import (
	"io"
	"net/http"
	"strconv"

	"school-portal-gateway/internal/forms"
	"school-portal-gateway/internal/model"
	apperrors "school-portal-gateway/pkg/errors"

	"github.com/gin-gonic/gin"
)

const maxImportSize = 10 << 20

func (h *Handler) TeacherOverview(c *gin.Context) {
	rng, ok := bindRange(c)
	if !ok {
		return
	}
	overview, err := h.dashboard.TeacherOverview(c.Request.Context(), currentSession(c), rng)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *Handler) CreateExamResult(c *gin.Context) {
	var values forms.ExamResultForm
	if !bindForm(c, &values) {
		return
	}
	result, err := h.forms.CreateExamResult(c.Request.Context(), currentSession(c), values)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": result})
}

// ImportExamResults takes a multipart "file" workbook and an optional
// class_id form value for rows that leave the class empty.
func (h *Handler) ImportExamResults(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperrors.Required("file"))
		return
	}
	if fileHeader.Size > maxImportSize {
		respondError(c, apperrors.ValidationError{Field: "file", Value: fileHeader.Filename, Message: "file is too large"})
		return
	}

	var classID int64
	if raw := c.PostForm("class_id"); raw != "" {
		classID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, apperrors.ValidationError{Field: "class_id", Value: raw, Message: "must be a number"})
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.forms.ImportExamResults(c.Request.Context(), currentSession(c), data, classID)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if report.Count(model.OutcomeFailed) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, report)
}

func (h *Handler) StudentOverview(c *gin.Context) {
	overview, err := h.dashboard.StudentOverview(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *Handler) StudentAttendance(c *gin.Context) {
	rng, ok := bindRange(c)
	if !ok {
		return
	}
	out, err := h.dashboard.StudentAttendance(c.Request.Context(), currentSession(c), rng)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) StudentResults(c *gin.Context) {
	out, err := h.dashboard.StudentResults(c.Request.Context(), currentSession(c), c.Query("subject"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
