package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/model"
)

type RunRepo struct {
	pool *pgxpool.Pool
}

func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Create records the start of a pipeline stage and returns its run ID.
func (r *RunRepo) Create(ctx context.Context, taskType string, targetID *string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO pipeline_runs (id, task_type, target_id, status, started_at)
		VALUES ($1, $2, $3, $4, NOW())`,
		id, taskType, targetID, model.RunInProgress)
	return id, err
}

// Update transitions a run's status; completed_at is stamped on the
// terminal statuses.
func (r *RunRepo) Update(ctx context.Context, id uuid.UUID, status string, pageToken, errorMessage *string) error {
	var completedAt *time.Time
	if status == model.RunCompleted || status == model.RunFailed {
		now := time.Now()
		completedAt = &now
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE pipeline_runs
		SET status = $2, page_token = $3, error_message = $4,
		    completed_at = $5, updated_at = NOW()
		WHERE id = $1`,
		id, status, pageToken, errorMessage, completedAt)
	return err
}

// FindIncomplete returns pending or in-progress runs of a task type,
// oldest first.
func (r *RunRepo) FindIncomplete(ctx context.Context, taskType string) ([]*model.PipelineRun, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, task_type, target_id, status, page_token, error_message,
		       started_at, completed_at, created_at, updated_at
		FROM pipeline_runs
		WHERE task_type = $1 AND status IN ($2, $3)
		ORDER BY created_at ASC`,
		taskType, model.RunPending, model.RunInProgress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*model.PipelineRun
	for rows.Next() {
		var run model.PipelineRun
		err := rows.Scan(
			&run.ID, &run.TaskType, &run.TargetID, &run.Status,
			&run.PageToken, &run.ErrorMessage,
			&run.StartedAt, &run.CompletedAt, &run.CreatedAt, &run.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
