package api

import (
	"context"
	"net/http"

	"school-portal-gateway/internal/attendance"
	"school-portal-gateway/internal/config"
	"school-portal-gateway/internal/dashboard"
	"school-portal-gateway/internal/db"
	"school-portal-gateway/internal/forms"
	"school-portal-gateway/internal/logger"
	"school-portal-gateway/internal/model"
	"school-portal-gateway/internal/session"
	"school-portal-gateway/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Backend is everything the gateway asks of the school backend.
// *backend.Client satisfies it.
type Backend interface {
	session.Authenticator
	dashboard.Reader
	forms.Backend
	CreateAttendance(ctx context.Context, token string, in model.AttendanceInput) (*model.AttendanceRecord, error)
	ListUsers(ctx context.Context, token string) ([]model.User, error)
}

type ExportDispatcher interface {
	Dispatch(ctx context.Context, job *model.ExportJob) error
}

type Handler struct {
	cfg        *config.Config
	sessions   *session.Manager
	backend    Backend
	dashboard  *dashboard.Service
	forms      *forms.Service
	submitter  *attendance.Submitter
	repo       db.Repository
	dispatcher ExportDispatcher
	storage    storage.Storage
	log        zerolog.Logger
}

func NewHandler(
	cfg *config.Config,
	client Backend,
	store session.Store,
	repo db.Repository,
	dispatcher ExportDispatcher,
	storage storage.Storage,
) (*Handler, error) {
	policy, err := attendance.ParsePolicy(cfg.Attendance.DuplicatePolicy)
	if err != nil {
		return nil, err
	}

	return &Handler{
		cfg:        cfg,
		sessions:   session.NewManager(cfg, client, store),
		backend:    client,
		dashboard:  dashboard.NewService(client),
		forms:      forms.NewService(client),
		submitter:  attendance.NewSubmitter(client, policy),
		repo:       repo,
		dispatcher: dispatcher,
		storage:    storage,
		log:        logger.Component("api"),
	}, nil
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}

type rangeQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// bindRange reads the optional from/to query parameters.
func bindRange(c *gin.Context) (model.DateRange, bool) {
	var q rangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, err)
		return model.DateRange{}, false
	}
	r, err := model.ParseDateRange(q.From, q.To)
	if err != nil {
		respondError(c, err)
		return model.DateRange{}, false
	}
	return r, true
}
