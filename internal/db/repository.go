package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"school-portal-gateway/internal/model"
	"school-portal-gateway/pkg/errors"
)

// Repository is the gateway's own ledger: attendance batch reports and
// export jobs. School data itself stays in the backend.
type Repository interface {
	SaveBatch(ctx context.Context, report *model.BatchReport) error
	GetBatch(ctx context.Context, id string) (*model.BatchReport, error)
	CreateExportJob(ctx context.Context, job *model.ExportJob) error
	UpdateExportJob(ctx context.Context, id string, status model.ExportStatus, objectKey string, rowCount int, errorMessage *string) error
	GetExportJob(ctx context.Context, id string) (*model.ExportJob, error)
}

type repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db, now: time.Now}
}

func (r *repository) SaveBatch(ctx context.Context, report *model.BatchReport) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO attendance_batches (id, date, submitted_by, created_at) VALUES (?, ?, ?, ?)`,
		report.ID, report.Date, report.SubmittedBy, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	query := `INSERT INTO attendance_batch_items (batch_id, position, student_id, status, outcome, error)
			  VALUES (?, ?, ?, ?, ?, ?)`

	for i, item := range report.Items {
		var itemErr *string
		if item.Error != "" {
			itemErr = &item.Error
		}
		_, err := tx.ExecContext(ctx, query, report.ID, i, item.StudentID, item.Status, item.Outcome, itemErr)
		if err != nil {
			return fmt.Errorf("failed to insert batch item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *repository) GetBatch(ctx context.Context, id string) (*model.BatchReport, error) {
	report := model.BatchReport{ID: id}
	var date time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT date, submitted_by, created_at FROM attendance_batches WHERE id = ?`, id,
	).Scan(&date, &report.SubmittedBy, &report.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: batch %s", errors.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	report.Date = date.Format(model.DateLayout)

	rows, err := r.db.QueryContext(ctx,
		`SELECT student_id, status, outcome, error FROM attendance_batch_items
		 WHERE batch_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	report.Items = []model.BatchItem{}
	for rows.Next() {
		var item model.BatchItem
		var itemErr sql.NullString
		if err := rows.Scan(&item.StudentID, &item.Status, &item.Outcome, &itemErr); err != nil {
			return nil, err
		}
		item.Error = itemErr.String
		report.Items = append(report.Items, item)
	}

	return &report, rows.Err()
}

func (r *repository) CreateExportJob(ctx context.Context, job *model.ExportJob) error {
	now := r.now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = model.ExportQueued
	}

	query := `INSERT INTO export_jobs (id, format, date_from, date_to, requested_by, status, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, job.ID, job.Format, job.From, job.To,
		job.RequestedBy, job.Status, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert export job: %w", err)
	}
	return nil
}

func (r *repository) UpdateExportJob(ctx context.Context, id string, status model.ExportStatus, objectKey string, rowCount int, errorMessage *string) error {
	query := `UPDATE export_jobs SET status = ?, object_key = ?, row_count = ?, error_message = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, status, objectKey, rowCount, errorMessage, r.now().UTC(), id)
	return err
}

func (r *repository) GetExportJob(ctx context.Context, id string) (*model.ExportJob, error) {
	query := `SELECT id, format, date_from, date_to, requested_by, status, object_key, row_count,
				  error_message, created_at, updated_at
			  FROM export_jobs WHERE id = ?`

	var job model.ExportJob
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.Format, &job.From, &job.To, &job.RequestedBy, &job.Status,
		&job.ObjectKey, &job.RowCount, &job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: export job %s", errors.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}
