package repository

import (
	"context"

	"github.com/fastygo/contentflow/domain"
)

// ClientRepository returns clients with their targets attached.
// Create and Update write the client and its full target set atomically;
// Update with replaceTargets false leaves the stored targets untouched.
type ClientRepository interface {
	List(ctx context.Context) ([]domain.Client, error)
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	Create(ctx context.Context, client *domain.Client) (*domain.Client, error)
	Update(ctx context.Context, client *domain.Client, replaceTargets bool) (*domain.Client, error)
	Delete(ctx context.Context, id string) error
}
