package worker

import (
	"context"
	"fmt"

	"school-portal-gateway/internal/db"
	"school-portal-gateway/internal/model"

	"github.com/google/uuid"
)

type JobQueue interface {
	EnqueueExportJob(ctx context.Context, job model.ExportJob) error
}

// Dispatcher records an export job in the ledger and puts it on the queue.
type Dispatcher struct {
	repo  db.Repository
	queue JobQueue
}

func NewDispatcher(repo db.Repository, queue JobQueue) *Dispatcher {
	return &Dispatcher{repo: repo, queue: queue}
}

// Dispatch assigns the job an id and QUEUED status. When the queue rejects
// it the ledger row is marked FAILED so it never looks pending.
func (d *Dispatcher) Dispatch(ctx context.Context, job *model.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	job.Status = model.ExportQueued

	if err := d.repo.CreateExportJob(ctx, job); err != nil {
		return err
	}

	if err := d.queue.EnqueueExportJob(ctx, *job); err != nil {
		msg := err.Error()
		job.Status = model.ExportFailed
		job.ErrorMessage = &msg
		if updErr := d.repo.UpdateExportJob(ctx, job.ID, model.ExportFailed, "", 0, &msg); updErr != nil {
			return fmt.Errorf("failed to enqueue export job: %v (status update: %w)", err, updErr)
		}
		return fmt.Errorf("failed to enqueue export job: %w", err)
	}
	return nil
}
