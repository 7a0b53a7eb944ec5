package api

import (
	"context"
	"net/http"

	"school-portal-gateway/internal/attendance"
	"school-portal-gateway/internal/model"
	"school-portal-gateway/internal/session"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AttendanceRoster(c *gin.Context) {
	roster, err := h.dashboard.Roster(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roster)
}

type attendanceRequest struct {
	Date  string            `json:"date"`
	Marks []attendance.Mark `json:"marks"`
}

func (h *Handler) SubmitAttendance(c *gin.Context) {
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sess := currentSession(c)
	// Teachers only mark their own class.
	if _, ok := sess.Role().(model.TeacherRole); ok {
		roster, err := h.dashboard.Roster(c.Request.Context(), sess)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := attendance.CheckRoster(req.Marks, roster.All()); err != nil {
			respondError(c, err)
			return
		}
	}
	h.submitBatch(c, sess, req.Date, req.Marks)
}

type teacherAttendanceRequest struct {
	Date string `json:"date"`
	// Statuses overrides the default "present" per student id.
	Statuses map[int64]model.AttendanceStatus `json:"statuses"`
}

// SubmitClassAttendance marks the teacher's whole class, present unless
// told otherwise.
func (h *Handler) SubmitClassAttendance(c *gin.Context) {
	var req teacherAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sess := currentSession(c)
	roster, err := h.dashboard.Roster(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}

	h.submitBatch(c, sess, req.Date, attendance.MarksForRoster(roster.All(), req.Statuses))
}

// submitBatch answers 200 when every mark was written and 207 otherwise.
func (h *Handler) submitBatch(c *gin.Context, sess *session.Session, date string, marks []attendance.Mark) {
	report, err := h.submitter.Submit(c.Request.Context(), sess, date, marks)
	if err != nil {
		respondError(c, err)
		return
	}

	// The writes already happened, so the ledger is saved even when the
	// client has gone away.
	if err := h.repo.SaveBatch(context.WithoutCancel(c.Request.Context()), report); err != nil {
		h.log.Error().Err(err).Str("batch_id", report.ID).Msg("Failed to save batch report")
	}

	status := http.StatusOK
	if report.HasFailures() {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{
		"batch":     report,
		"succeeded": report.Succeeded(),
		"failed":    report.Failed(),
		"skipped":   report.Skipped(),
	})
}

// GetBatch shows a batch report. Teachers see only their own batches.
func (h *Handler) GetBatch(c *gin.Context) {
	sess := currentSession(c)
	report, err := h.repo.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !sess.Allows(model.RoleAdmin) && report.SubmittedBy != sess.UserID() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
		return
	}
	c.JSON(http.StatusOK, report)
}
