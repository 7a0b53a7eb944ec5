package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sess, err := h.sessions.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Session.CookieName, sess.ID, maxAge, "/", "", h.cfg.Session.CookieSecure, true)

	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"role":       sess.Role().Kind(),
		"user":       sess.Profile,
		"expires_at": sess.ExpiresAt,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	sess := currentSession(c)
	if err := h.sessions.Logout(c.Request.Context(), sess.ID); err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie(h.cfg.Session.CookieName, "", -1, "/", "", h.cfg.Session.CookieSecure, true)
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	sess := currentSession(c)
	c.JSON(http.StatusOK, gin.H{
		"role":       sess.Role().Kind(),
		"user":       sess.Profile,
		"expires_at": sess.ExpiresAt,
	})
}
