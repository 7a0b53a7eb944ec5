package api

import (
	"bytes"
	"net/http"

	"school-portal-gateway/internal/model"
	"school-portal-gateway/internal/report"
	apperrors "school-portal-gateway/pkg/errors"

	"github.com/gin-gonic/gin"
)

// AttendanceReport returns the summary and rows the downloads would contain.
func (h *Handler) AttendanceReport(c *gin.Context) {
	rng, ok := bindRange(c)
	if !ok {
		return
	}

	records, err := h.dashboard.AttendanceRows(c.Request.Context(), currentSession(c), rng)
	if err != nil {
		respondError(c, err)
		return
	}

	rep := report.Build(records, rng)
	c.JSON(http.StatusOK, gin.H{
		"summary": rep.Summary,
		"rows":    rep.Rows,
	})
}

func (h *Handler) AttendanceCSV(c *gin.Context) {
	h.downloadReport(c, model.FormatCSV)
}

func (h *Handler) AttendanceXLSX(c *gin.Context) {
	h.downloadReport(c, model.FormatXLSX)
}

func (h *Handler) downloadReport(c *gin.Context, format model.ExportFormat) {
	rng, ok := bindRange(c)
	if !ok {
		return
	}

	records, err := h.dashboard.AttendanceRows(c.Request.Context(), currentSession(c), rng)
	if err != nil {
		respondError(c, err)
		return
	}

	// Rendered into memory first so an empty report never sends headers.
	var buf bytes.Buffer
	if err := report.Render(&buf, format, report.Build(records, rng)); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+report.Filename(format)+`"`)
	c.Data(http.StatusOK, report.ContentType(format), buf.Bytes())
}

type exportRequest struct {
	Format string `json:"format"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// CreateExport queues an attendance report for the export worker. The job
// carries the caller's session so it reads with the caller's permissions.
func (h *Handler) CreateExport(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	format, err := report.ParseFormat(req.Format)
	if err != nil {
		respondError(c, apperrors.ValidationError{Field: "format", Value: req.Format, Message: err.Error()})
		return
	}
	if _, err := model.ParseDateRange(req.From, req.To); err != nil {
		respondError(c, err)
		return
	}

	sess := currentSession(c)
	classID, ok, err := h.dashboard.ReportScope(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		respondError(c, apperrors.ErrNoData)
		return
	}

	job := &model.ExportJob{
		Format:      format,
		From:        req.From,
		To:          req.To,
		RequestedBy: sess.UserID(),
		SessionID:   sess.ID,
		ClassID:     classID,
	}
	if err := h.dispatcher.Dispatch(c.Request.Context(), job); err != nil {
		respondError(c, err)
		return
	}

	h.log.Info().Str("job_id", job.ID).Str("format", string(format)).Msg("Export job queued")
	c.JSON(http.StatusAccepted, job)
}

// visibleExport loads a job the caller may see: admins see every job, others
// only their own.
func (h *Handler) visibleExport(c *gin.Context) (*model.ExportJob, bool) {
	sess := currentSession(c)
	job, err := h.repo.GetExportJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if !sess.Allows(model.RoleAdmin) && job.RequestedBy != sess.UserID() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Export not found"})
		return nil, false
	}
	return job, true
}

// GetExport reports a job's status and, once it is done, a short-lived
// download link.
func (h *Handler) GetExport(c *gin.Context) {
	job, ok := h.visibleExport(c)
	if !ok {
		return
	}

	resp := gin.H{"job": job}
	if job.Status == model.ExportDone && job.ObjectKey != "" {
		exists, err := h.storage.Exists(c.Request.Context(), job.ObjectKey)
		if err != nil {
			respondError(c, err)
			return
		}
		if !exists {
			resp["expired"] = true
			c.JSON(http.StatusOK, resp)
			return
		}

		url, err := h.storage.PresignGet(c.Request.Context(), job.ObjectKey, h.cfg.Storage.S3.PresignTTL)
		if err != nil {
			respondError(c, err)
			return
		}
		resp["download_url"] = url
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadExport streams a finished export through the gateway, for storage
// endpoints the browser cannot reach.
func (h *Handler) DownloadExport(c *gin.Context) {
	job, ok := h.visibleExport(c)
	if !ok {
		return
	}
	if job.Status != model.ExportDone || job.ObjectKey == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "Export is not ready", "status": job.Status})
		return
	}

	body, err := h.storage.Download(c.Request.Context(), job.ObjectKey)
	if err != nil {
		respondError(c, err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, -1, report.ContentType(job.Format), body, map[string]string{
		"Content-Disposition": `attachment; filename="` + report.Filename(job.Format) + `"`,
	})
}
