package preferences

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/contentflow/domain"
	store "github.com/fastygo/contentflow/internal/infrastructure/preferences"
)

// Theme is the display theme of the UI.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultTheme applies to users that never chose one.
const DefaultTheme = ThemeLight

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Store persists one preference record per user.
type Store interface {
	Get(userID string) (store.Record, error)
	Put(rec store.Record) error
}

type UseCase struct {
	store  Store
	now    func() time.Time
	logger *zap.Logger
}

func New(s Store, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{store: s, now: time.Now, logger: logger}
}

// Theme returns the saved theme of the actor, or DefaultTheme.
func (uc *UseCase) Theme(_ context.Context, actor domain.User) (Theme, error) {
	rec, err := uc.store.Get(actor.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return DefaultTheme, nil
		}
		return "", domain.RepositoryError("get preferences", err)
	}
	theme := Theme(rec.Theme)
	if !theme.Valid() {
		uc.logger.Warn("stored theme is unknown, using default", zap.String("user_id", actor.ID), zap.String("theme", rec.Theme))
		return DefaultTheme, nil
	}
	return theme, nil
}

// SetTheme saves the theme of the actor.
func (uc *UseCase) SetTheme(_ context.Context, actor domain.User, value string) (Theme, error) {
	theme := Theme(strings.ToLower(strings.TrimSpace(value)))
	if !theme.Valid() {
		return "", domain.Invalidf("theme must be %q or %q", ThemeLight, ThemeDark)
	}
	if actor.ID == "" {
		return "", domain.ErrUnauthorized
	}
	if err := uc.store.Put(store.Record{UserID: actor.ID, Theme: string(theme), UpdatedAt: uc.now().UTC()}); err != nil {
		return "", domain.RepositoryError("save preferences", err)
	}
	return theme, nil
}

// Toggle flips the actor's theme between light and dark.
func (uc *UseCase) Toggle(ctx context.Context, actor domain.User) (Theme, error) {
	current, err := uc.Theme(ctx, actor)
	if err != nil {
		return "", err
	}
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	return uc.SetTheme(ctx, actor, string(next))
}
