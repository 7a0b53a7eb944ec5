package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"school-portal-gateway/internal/config"
	"school-portal-gateway/internal/db"
	"school-portal-gateway/internal/logger"
	"school-portal-gateway/internal/model"
	"school-portal-gateway/internal/queue"
	"school-portal-gateway/internal/report"
	"school-portal-gateway/internal/session"
	"school-portal-gateway/internal/storage"
	apperrors "school-portal-gateway/pkg/errors"

	"github.com/rs/zerolog"
)

// AttendanceSource is the backend read an export needs.
type AttendanceSource interface {
	Attendances(ctx context.Context, token string, q model.AttendanceQuery) ([]model.AttendanceRecord, error)
}

type SessionLookup interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

type ExportWorker struct {
	cfg        *config.Config
	repo       db.Repository
	storage    storage.Storage
	source     AttendanceSource
	sessions   SessionLookup
	consumer   *queue.Consumer
	workerPool *WorkerPool
	log        zerolog.Logger
}

func NewExportWorker(
	cfg *config.Config,
	repo db.Repository,
	storage storage.Storage,
	source AttendanceSource,
	sessions SessionLookup,
	redisClient *queue.RedisClient,
) *ExportWorker {
	return &ExportWorker{
		cfg:        cfg,
		repo:       repo,
		storage:    storage,
		source:     source,
		sessions:   sessions,
		consumer:   queue.NewConsumer(redisClient, cfg),
		workerPool: NewWorkerPool(cfg.Workers.Export.Count),
		log:        logger.Component("export_worker"),
	}
}

func (w *ExportWorker) Start(ctx context.Context) error {
	w.log.Info().Msg("Starting export worker")

	w.workerPool.Start(ctx)

	return w.consumer.ConsumeExportQueue(ctx, w.handleMessage)
}

func (w *ExportWorker) Stop() {
	w.log.Info().Msg("Stopping export worker")
	w.workerPool.Stop()
}

func (w *ExportWorker) handleMessage(ctx context.Context, data []byte) error {
	var job model.ExportJob
	if err := json.Unmarshal(data, &job); err != nil {
		w.log.Error().Err(err).Msg("Failed to unmarshal export job")
		return err
	}
	if job.ID == "" {
		return fmt.Errorf("export job without id")
	}

	w.log.Info().Str("job_id", job.ID).Str("format", string(job.Format)).Msg("Processing export job")

	return w.workerPool.Submit(ctx, func(ctx context.Context) error {
		return w.Process(ctx, job)
	})
}

// Process renders one export and records the outcome in the ledger.
func (w *ExportWorker) Process(ctx context.Context, job model.ExportJob) error {
	log := w.log.With().Str("job_id", job.ID).Logger()

	if err := w.repo.UpdateExportJob(ctx, job.ID, model.ExportRunning, "", 0, nil); err != nil {
		log.Error().Err(err).Msg("Failed to mark export job running")
		return err
	}

	key, count, err := w.render(ctx, job)
	switch {
	case err == nil:
		if err := w.repo.UpdateExportJob(ctx, job.ID, model.ExportDone, key, count, nil); err != nil {
			log.Error().Err(err).Msg("Failed to update export job status")
			// Nobody can find the file without the ledger row.
			if delErr := w.storage.Delete(ctx, key); delErr != nil {
				log.Warn().Err(delErr).Str("object_key", key).Msg("Failed to remove orphaned export")
			}
			return err
		}
		log.Info().Str("object_key", key).Int("rows", count).Msg("Export completed")
		return nil

	case errors.Is(err, apperrors.ErrNoData):
		log.Info().Msg("Export has no rows")
		return w.repo.UpdateExportJob(ctx, job.ID, model.ExportEmpty, "", 0, nil)

	default:
		log.Error().Err(err).Msg("Export failed")
		errorMsg := err.Error()
		if updErr := w.repo.UpdateExportJob(ctx, job.ID, model.ExportFailed, "", 0, &errorMsg); updErr != nil {
			log.Error().Err(updErr).Msg("Failed to update export job status")
		}
		return err
	}
}

func (w *ExportWorker) render(ctx context.Context, job model.ExportJob) (string, int, error) {
	format, err := report.ParseFormat(string(job.Format))
	if err != nil {
		return "", 0, err
	}
	rng, err := model.ParseDateRange(job.From, job.To)
	if err != nil {
		return "", 0, err
	}

	token, err := w.token(ctx, job)
	if err != nil {
		return "", 0, err
	}

	records, err := w.source.Attendances(ctx, token, model.AttendanceQuery{
		From:    job.From,
		To:      job.To,
		ClassID: job.ClassID,
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch attendance: %w", err)
	}

	rep := report.Build(records, rng)

	var buf bytes.Buffer
	if err := report.Render(&buf, format, rep); err != nil {
		return "", 0, err
	}

	key := path.Join(w.cfg.Storage.S3.ReportsPath, job.ID, report.Filename(format))
	if err := w.storage.Upload(ctx, key, bytes.NewReader(buf.Bytes()), report.ContentType(format)); err != nil {
		return "", 0, err
	}
	return key, len(rep.Rows), nil
}

// token uses the requesting user's session while it lives and the service
// token otherwise.
func (w *ExportWorker) token(ctx context.Context, job model.ExportJob) (string, error) {
	if job.SessionID != "" {
		sess, err := w.sessions.Get(ctx, job.SessionID)
		if err == nil {
			return sess.Token, nil
		}
		w.log.Warn().Err(err).Str("job_id", job.ID).Msg("Requesting session gone, using service token")
	}
	if w.cfg.Backend.ServiceToken == "" {
		return "", fmt.Errorf("%w: no session and no service token for export", apperrors.ErrUnauthorized)
	}
	return w.cfg.Backend.ServiceToken, nil
}
