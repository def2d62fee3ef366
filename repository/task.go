package repository

import (
	"context"

	"github.com/fastygo/contentflow/domain"
)

type TaskFilter struct {
	ClientID   string
	AssignedTo string
	Status     domain.ContentStatus
}

// TaskRepository returns tasks with attachments and links attached, newest first.
// Update replaces every scalar field and the full attachment and link lists.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
	CountByClient(ctx context.Context, clientID string) (int, error)
}
