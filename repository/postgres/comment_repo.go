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

type commentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) repository.CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) List(ctx context.Context, taskID string) ([]domain.Comment, error) {
	const query = `
	SELECT id, task_id, user_id, text, timestamp
	FROM comments
	WHERE ($1 = '' OR task_id = $1)
	ORDER BY timestamp ASC
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	return comments, rows.Err()
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, task_id, user_id, text, timestamp FROM comments WHERE id = $1`, id)
	return scanComment(row)
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	if comment == nil {
		return nil, domain.ErrInvalidPayload
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	// a zero timestamp falls back to the database clock
	var timestamp *time.Time
	if !comment.Timestamp.IsZero() {
		ts := comment.Timestamp.UTC()
		timestamp = &ts
	}

	const query = `
	INSERT INTO comments (id, task_id, user_id, text, timestamp)
	VALUES ($1, $2, $3, $4, COALESCE($5::timestamptz, NOW()))
	RETURNING timestamp
	`
	if err := r.pool.QueryRow(ctx, query,
		comment.ID,
		comment.TaskID,
		comment.UserID,
		comment.Text,
		timestamp,
	).Scan(&comment.Timestamp); err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func scanComment(row rowScanner) (*domain.Comment, error) {
	var comment domain.Comment
	if err := row.Scan(
		&comment.ID,
		&comment.TaskID,
		&comment.UserID,
		&comment.Text,
		&comment.Timestamp,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}
