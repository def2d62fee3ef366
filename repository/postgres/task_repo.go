package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, client_id, title, briefing, format, channel, priority, status, deadline,
	COALESCE(assigned_to, ''), review_comment, COALESCE(reviewed_by, ''), reviewed_at, created_at`

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return getTask(ctx, r.pool, id)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM content_tasks
	WHERE ($1 = '' OR client_id = $1)
	  AND ($2 = '' OR assigned_to = $2)
	  AND ($3 = '' OR status = $3)
	ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, filter.ClientID, filter.AssignedTo, string(filter.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	ids := []string{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
		ids = append(ids, task.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return tasks, nil
	}

	attachments, err := loadURLs(ctx, r.pool, "task_attachments", ids)
	if err != nil {
		return nil, err
	}
	links, err := loadURLs(ctx, r.pool, "task_links", ids)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].Attachments = attachments[tasks[i].ID]
		tasks[i].Links = links[tasks[i].ID]
		tasks[i].Normalize()
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	var created *domain.Task
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
		INSERT INTO content_tasks (id, client_id, title, briefing, format, channel, priority, status,
			deadline, assigned_to, review_comment, reviewed_by, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`
		if _, err := tx.Exec(ctx, query,
			task.ID,
			task.ClientID,
			task.Title,
			task.Briefing,
			task.Format,
			task.Channel,
			string(task.Priority),
			string(task.Status),
			nullTime(task.Deadline),
			nullString(task.AssignedTo),
			task.ReviewComment,
			nullString(task.ReviewedBy),
			task.ReviewedAt,
		); err != nil {
			if isForeignKeyViolation(err) {
				return domain.Invalidf("task references an unknown client or user")
			}
			return err
		}
		if err := replaceURLs(ctx, tx, "task_attachments", task.ID, task.Attachments); err != nil {
			return err
		}
		if err := replaceURLs(ctx, tx, "task_links", task.ID, task.Links); err != nil {
			return err
		}
		var err error
		created, err = getTask(ctx, tx, task.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	var updated *domain.Task
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
		UPDATE content_tasks
		SET client_id = $2,
			title = $3,
			briefing = $4,
			format = $5,
			channel = $6,
			priority = $7,
			status = $8,
			deadline = $9,
			assigned_to = $10,
			review_comment = $11,
			reviewed_by = $12,
			reviewed_at = $13
		WHERE id = $1
		`
		tag, err := tx.Exec(ctx, query,
			task.ID,
			task.ClientID,
			task.Title,
			task.Briefing,
			task.Format,
			task.Channel,
			string(task.Priority),
			string(task.Status),
			nullTime(task.Deadline),
			nullString(task.AssignedTo),
			task.ReviewComment,
			nullString(task.ReviewedBy),
			task.ReviewedAt,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.Invalidf("task references an unknown client or user")
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrTaskNotFound
		}
		if err := replaceURLs(ctx, tx, "task_attachments", task.ID, task.Attachments); err != nil {
			return err
		}
		if err := replaceURLs(ctx, tx, "task_links", task.ID, task.Links); err != nil {
			return err
		}
		updated, err = getTask(ctx, tx, task.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM content_tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) CountByClient(ctx context.Context, clientID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM content_tasks WHERE client_id = $1`, clientID).Scan(&count)
	return count, err
}

func getTask(ctx context.Context, q queryer, id string) (*domain.Task, error) {
	row := q.QueryRow(ctx, `SELECT `+taskColumns+` FROM content_tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if err != nil {
		return nil, err
	}
	attachments, err := loadURLs(ctx, q, "task_attachments", []string{id})
	if err != nil {
		return nil, err
	}
	links, err := loadURLs(ctx, q, "task_links", []string{id})
	if err != nil {
		return nil, err
	}
	task.Attachments = attachments[id]
	task.Links = links[id]
	task.Normalize()
	return task, nil
}

// table is one of the fixed url tables and never user input.
func replaceURLs(ctx context.Context, q queryer, table, taskID string, urls []string) error {
	if _, err := q.Exec(ctx, `DELETE FROM `+table+` WHERE task_id = $1`, taskID); err != nil {
		return err
	}
	for i, url := range urls {
		if _, err := q.Exec(ctx,
			`INSERT INTO `+table+` (task_id, url, position) VALUES ($1, $2, $3)`,
			taskID, url, i,
		); err != nil {
			return err
		}
	}
	return nil
}

func loadURLs(ctx context.Context, q queryer, table string, taskIDs []string) (map[string][]string, error) {
	rows, err := q.Query(ctx,
		`SELECT task_id, url FROM `+table+` WHERE task_id = ANY($1) ORDER BY task_id, position`,
		taskIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string, len(taskIDs))
	for rows.Next() {
		var taskID, url string
		if err := rows.Scan(&taskID, &url); err != nil {
			return nil, err
		}
		out[taskID] = append(out[taskID], url)
	}
	return out, rows.Err()
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var (
		priority string
		status   string
		deadline *time.Time
	)

	if err := row.Scan(
		&task.ID,
		&task.ClientID,
		&task.Title,
		&task.Briefing,
		&task.Format,
		&task.Channel,
		&priority,
		&status,
		&deadline,
		&task.AssignedTo,
		&task.ReviewComment,
		&task.ReviewedBy,
		&task.ReviewedAt,
		&task.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Priority = domain.Priority(priority)
	task.Status = domain.ContentStatus(status)
	if deadline != nil {
		task.Deadline = deadline.UTC()
	}
	return &task, nil
}
