package api

import (
	"errors"
	"net/http"

	"school-portal-gateway/internal/backend"
	"school-portal-gateway/internal/dashboard"
	"school-portal-gateway/internal/forms"
	apperrors "school-portal-gateway/pkg/errors"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AdminDashboard(c *gin.Context) {
	stats, err := h.dashboard.AdminStats(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListStudents(c *gin.Context) {
	var filter dashboard.StudentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondError(c, err)
		return
	}

	students, err := h.backend.Students(c.Request.Context(), currentSession(c).Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dashboard.FilterStudents(students, filter)})
}

func (h *Handler) CreateStudent(c *gin.Context) {
	var values forms.StudentForm
	if !bindForm(c, &values) {
		return
	}
	student, err := h.forms.CreateStudent(c.Request.Context(), currentSession(c), values)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": student})
}

func (h *Handler) UpdateStudent(c *gin.Context) {
	var values forms.StudentForm
	if !bindForm(c, &values) {
		return
	}
	student, err := h.forms.UpdateStudent(c.Request.Context(), currentSession(c), c.Param("documentId"), values)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": student})
}

func (h *Handler) DeleteStudent(c *gin.Context) {
	h.deleteRecord(c, backend.CollectionStudents)
}

func (h *Handler) ListTeachers(c *gin.Context) {
	var filter dashboard.TeacherFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondError(c, err)
		return
	}

	teachers, err := h.backend.Teachers(c.Request.Context(), currentSession(c).Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dashboard.FilterTeachers(teachers, filter)})
}

func (h *Handler) CreateTeacher(c *gin.Context) {
	var values forms.TeacherForm
	if !bindForm(c, &values) {
		return
	}
	teacher, err := h.forms.CreateTeacher(c.Request.Context(), currentSession(c), values)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": teacher})
}

func (h *Handler) UpdateTeacher(c *gin.Context) {
	var values forms.TeacherForm
	if !bindForm(c, &values) {
		return
	}
	teacher, err := h.forms.UpdateTeacher(c.Request.Context(), currentSession(c), c.Param("documentId"), values)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": teacher})
}

func (h *Handler) DeleteTeacher(c *gin.Context) {
	h.deleteRecord(c, backend.CollectionTeachers)
}

func (h *Handler) deleteRecord(c *gin.Context, collection string) {
	if err := h.forms.Delete(c.Request.Context(), currentSession(c), collection, c.Param("documentId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListClasses(c *gin.Context) {
	classes, err := h.backend.Classes(c.Request.Context(), currentSession(c).Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": classes})
}

func (h *Handler) ListUsers(c *gin.Context) {
	var filter dashboard.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondError(c, err)
		return
	}

	users, err := h.backend.ListUsers(c.Request.Context(), currentSession(c).Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dashboard.FilterUsers(users, filter)})
}

// CreateUser answers 207 with the created account when the linked profile
// could not be written.
func (h *Handler) CreateUser(c *gin.Context) {
	var values forms.UserForm
	if !bindForm(c, &values) {
		return
	}

	user, err := h.forms.CreateUser(c.Request.Context(), currentSession(c), values)
	var partial *apperrors.PartialFailureError
	if errors.As(err, &partial) {
		h.log.Warn().Err(err).Int64("user_id", partial.CreatedID).Msg("User created without profile")
		c.JSON(http.StatusMultiStatus, gin.H{
			"error": forms.NoticeFor(err),
			"step":  partial.Step,
			"data":  user,
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": user})
}

func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.backend.ListRoles(c.Request.Context(), currentSession(c).Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

// bindForm decodes a JSON form body. Field checks happen in the form itself.
func bindForm(c *gin.Context, values interface{}) bool {
	if err := c.ShouldBindJSON(values); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}
