package db

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS attendance_batches (
		id           CHAR(36)    NOT NULL PRIMARY KEY,
		date         DATE        NOT NULL,
		submitted_by BIGINT      NOT NULL,
		created_at   DATETIME(3) NOT NULL,
		INDEX idx_attendance_batches_date (date)
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_batch_items (
		batch_id   CHAR(36)     NOT NULL,
		position   INT          NOT NULL,
		student_id BIGINT       NOT NULL,
		status     VARCHAR(16)  NOT NULL,
		outcome    VARCHAR(16)  NOT NULL,
		error      TEXT         NULL,
		PRIMARY KEY (batch_id, position),
		CONSTRAINT fk_batch_items_batch FOREIGN KEY (batch_id) REFERENCES attendance_batches (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS export_jobs (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		format        VARCHAR(8)   NOT NULL,
		date_from     VARCHAR(10)  NOT NULL DEFAULT '',
		date_to       VARCHAR(10)  NOT NULL DEFAULT '',
		requested_by  BIGINT       NOT NULL,
		status        VARCHAR(16)  NOT NULL,
		object_key    VARCHAR(512) NOT NULL DEFAULT '',
		row_count     INT          NOT NULL DEFAULT 0,
		error_message TEXT         NULL,
		created_at    DATETIME(3)  NOT NULL,
		updated_at    DATETIME(3)  NOT NULL
	)`,
}

// EnsureSchema creates the ledger tables when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
