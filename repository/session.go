package repository

import (
	"context"

	"github.com/fastygo/contentflow/domain"
)

// SessionRepository stores signed-in sessions until they expire or are revoked.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	// Extend stores the renewed expiry of an existing session.
	Extend(ctx context.Context, session *domain.Session) error
}
