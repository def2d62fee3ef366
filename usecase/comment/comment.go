package comment

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/domain/workflow"
	"github.com/fastygo/contentflow/repository"
	"github.com/fastygo/contentflow/usecase"
)

const maxTextLength = 4000

type UseCase struct {
	comments repository.CommentRepository
	tasks    repository.TaskRepository
	now      func() time.Time
	logger   *zap.Logger
}

func New(comments repository.CommentRepository, tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		comments: comments,
		tasks:    tasks,
		now:      time.Now,
		logger:   logger,
	}
}

// List returns the comments of a task oldest first. An empty taskID lists
// every comment and is reserved to Admins.
func (uc *UseCase) List(ctx context.Context, actor domain.User, taskID string) ([]domain.Comment, error) {
	if taskID == "" {
		if err := usecase.RequireAdmin(actor, "listing all comments"); err != nil {
			return nil, err
		}
	} else if err := uc.checkTask(ctx, actor, taskID); err != nil {
		return nil, err
	}

	comments, err := uc.comments.List(ctx, taskID)
	if err != nil {
		return nil, domain.RepositoryError("list comments", err)
	}
	return comments, nil
}

// Create appends a comment by actor; the timestamp is always the server's.
func (uc *UseCase) Create(ctx context.Context, actor domain.User, taskID, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Invalidf("comment text is required")
	}
	if len(text) > maxTextLength {
		return nil, domain.Invalidf("comment text exceeds %d bytes", maxTextLength)
	}
	if err := uc.checkTask(ctx, actor, taskID); err != nil {
		return nil, err
	}

	created, err := uc.comments.Create(ctx, &domain.Comment{
		TaskID:    taskID,
		UserID:    actor.ID,
		Text:      text,
		Timestamp: uc.now().UTC(),
	})
	if err != nil {
		return nil, domain.RepositoryError("create comment", err)
	}
	uc.logger.Debug("comment added", zap.String("task_id", taskID), zap.String("user_id", actor.ID))
	return created, nil
}

// Delete removes a comment; only its author or an Admin may do so.
func (uc *UseCase) Delete(ctx context.Context, actor domain.User, id string) error {
	existing, err := uc.comments.GetByID(ctx, id)
	if err != nil {
		return domain.RepositoryError("get comment", err)
	}
	if existing.UserID != actor.ID {
		if err := usecase.RequireAdmin(actor, "deleting comments of other users"); err != nil {
			return err
		}
	}
	if err := uc.comments.Delete(ctx, id); err != nil {
		return domain.RepositoryError("delete comment", err)
	}
	return nil
}

func (uc *UseCase) checkTask(ctx context.Context, actor domain.User, taskID string) error {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return domain.RepositoryError("get task", err)
	}
	if !workflow.CanSee(actor, *task) {
		return domain.ErrTaskNotFound
	}
	return nil
}
