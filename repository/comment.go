package repository

import (
	"context"

	"github.com/fastygo/contentflow/domain"
)

// CommentRepository lists comments oldest first; an empty taskID lists all.
type CommentRepository interface {
	List(ctx context.Context, taskID string) ([]domain.Comment, error)
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	Delete(ctx context.Context, id string) error
}
