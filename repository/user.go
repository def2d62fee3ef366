package repository

import (
	"context"

	"github.com/fastygo/contentflow/domain"
)

type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}

// CredentialRepository stores password hashes apart from the user profile.
type CredentialRepository interface {
	GetCredentials(ctx context.Context, email string) (*domain.Credentials, error)
	SaveCredentials(ctx context.Context, creds domain.Credentials) error
}
