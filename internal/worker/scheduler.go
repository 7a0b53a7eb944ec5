package worker

import (
	"context"
	"time"

	"school-portal-gateway/internal/config"
	"school-portal-gateway/internal/logger"
	"school-portal-gateway/internal/model"

	"github.com/rs/zerolog"
)

type JobDispatcher interface {
	Dispatch(ctx context.Context, job *model.ExportJob) error
}

// DailyExport queues a school-wide report of the day's attendance at the end
// of every day. The job runs on the service token.
type DailyExport struct {
	cfg        *config.Config
	dispatcher JobDispatcher
	now        func() time.Time
	timer      *time.Timer
	log        zerolog.Logger
}

func NewDailyExport(cfg *config.Config, dispatcher JobDispatcher) *DailyExport {
	return &DailyExport{
		cfg:        cfg,
		dispatcher: dispatcher,
		now:        time.Now,
		log:        logger.Component("daily_export"),
	}
}

func (d *DailyExport) Start(ctx context.Context) error {
	if !d.cfg.Workers.Export.Daily.Enabled {
		d.log.Info().Msg("Daily export disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	nextRun := d.nextRunTime()
	d.log.Info().Time("next_run", nextRun).Msg("Scheduled next daily export")
	d.timer = time.NewTimer(time.Until(nextRun))

	for {
		select {
		case <-ctx.Done():
			d.timer.Stop()
			return ctx.Err()
		case <-d.timer.C:
			if _, err := d.RunOnce(ctx); err != nil {
				d.log.Error().Err(err).Msg("Daily export dispatch failed")
			}

			// Past 23:59:59 the next run is tomorrow's.
			nextRun = d.nextRunTime()
			d.log.Info().Time("next_run", nextRun).Msg("Scheduled next daily export")
			d.timer.Reset(time.Until(nextRun))
		}
	}
}

// RunOnce dispatches the export for the current day.
func (d *DailyExport) RunOnce(ctx context.Context) (*model.ExportJob, error) {
	today := d.now().Format(model.DateLayout)
	job := &model.ExportJob{
		Format: model.ExportFormat(d.cfg.Workers.Export.Daily.Format),
		From:   today,
		To:     today,
	}
	if err := d.dispatcher.Dispatch(ctx, job); err != nil {
		return nil, err
	}
	d.log.Info().Str("job_id", job.ID).Str("date", today).Msg("Daily export queued")
	return job, nil
}

func (d *DailyExport) nextRunTime() time.Time {
	now := d.now()
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	if !now.Before(endOfDay) {
		endOfDay = endOfDay.Add(24 * time.Hour)
	}
	return endOfDay
}
