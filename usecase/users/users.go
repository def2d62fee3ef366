package users

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/repository"
	"github.com/fastygo/contentflow/usecase"
)

// Registrar creates users with credentials and ends their sessions.
type Registrar interface {
	Register(ctx context.Context, user domain.User, password string) (*domain.User, error)
	RevokeUser(ctx context.Context, userID string) error
}

// CreateInput describes a user created by an Admin.
type CreateInput struct {
	Name     string
	Email    string
	Role     domain.Role
	Avatar   string
	ClientID string
	Password string
}

// Patch changes the non-nil fields only; the id never changes.
type Patch struct {
	Name     *string
	Email    *string
	Role     *domain.Role
	Avatar   *string
	ClientID *string
}

func (p Patch) adminOnly() bool {
	return p.Email != nil || p.Role != nil || p.ClientID != nil
}

type UseCase struct {
	users     repository.UserRepository
	clients   repository.ClientRepository
	tasks     repository.TaskRepository
	registrar Registrar
	logger    *zap.Logger
}

func New(
	users repository.UserRepository,
	clients repository.ClientRepository,
	tasks repository.TaskRepository,
	registrar Registrar,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:     users,
		clients:   clients,
		tasks:     tasks,
		registrar: registrar,
		logger:    logger,
	}
}

// Actor loads the authenticated user a request acts as.
func (uc *UseCase) Actor(ctx context.Context, userID string) (domain.User, error) {
	if userID == "" {
		return domain.User{}, domain.ErrUnauthorized
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, domain.RepositoryError("load actor", err)
	}
	return *user, nil
}

// List returns every user to staff; a Client user only sees itself.
func (uc *UseCase) List(ctx context.Context, actor domain.User) ([]domain.User, error) {
	if actor.Role == domain.RoleClient {
		return []domain.User{actor}, nil
	}
	users, err := uc.users.List(ctx)
	if err != nil {
		return nil, domain.RepositoryError("list users", err)
	}
	return users, nil
}

// Team returns the users tasks can be assigned to.
func (uc *UseCase) Team(ctx context.Context, actor domain.User) ([]domain.User, error) {
	all, err := uc.List(ctx, actor)
	if err != nil {
		return nil, err
	}
	team := make([]domain.User, 0, len(all))
	for _, u := range all {
		if u.Role == domain.RoleTeam {
			team = append(team, u)
		}
	}
	return team, nil
}

func (uc *UseCase) Get(ctx context.Context, actor domain.User, id string) (*domain.User, error) {
	if actor.Role == domain.RoleClient && actor.ID != id {
		return nil, domain.ErrUserNotFound
	}
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, domain.RepositoryError("get user", err)
	}
	return user, nil
}

func (uc *UseCase) Create(ctx context.Context, actor domain.User, in CreateInput) (*domain.User, error) {
	if err := usecase.RequireAdmin(actor, "creating users"); err != nil {
		return nil, err
	}

	user := domain.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    in.Email,
		Role:     in.Role,
		Avatar:   strings.TrimSpace(in.Avatar),
		ClientID: strings.TrimSpace(in.ClientID),
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := uc.checkClient(ctx, user.ClientID); err != nil {
		return nil, err
	}

	created, err := uc.registrar.Register(ctx, user, in.Password)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("user created", zap.String("user_id", created.ID), zap.String("by", actor.ID))
	return created, nil
}

// Update lets an Admin change anything and other users change their own
// name and avatar.
func (uc *UseCase) Update(ctx context.Context, actor domain.User, id string, patch Patch) (*domain.User, error) {
	self := actor.ID == id
	if !actor.IsAdmin() && (!self || patch.adminOnly()) {
		return nil, usecase.RequireAdmin(actor, "changing this user")
	}

	current, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, domain.RepositoryError("get user", err)
	}

	next := *current
	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		email, err := domain.NormalizeEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		next.Email = email
	}
	if patch.Role != nil {
		next.Role = *patch.Role
	}
	if patch.Avatar != nil {
		next.Avatar = strings.TrimSpace(*patch.Avatar)
	}
	if patch.ClientID != nil {
		next.ClientID = strings.TrimSpace(*patch.ClientID)
	}
	if next.Role != domain.RoleClient && patch.ClientID == nil && patch.Role != nil {
		next.ClientID = ""
	}

	if err := next.Validate(); err != nil {
		return nil, err
	}
	if self && actor.IsAdmin() && next.Role != domain.RoleAdmin {
		return nil, domain.Invalidf("admins cannot remove their own admin role")
	}
	if next.ClientID != current.ClientID {
		if err := uc.checkClient(ctx, next.ClientID); err != nil {
			return nil, err
		}
	}
	if current.Role == domain.RoleTeam && next.Role != domain.RoleTeam {
		if err := uc.checkNoAssignedTasks(ctx, id); err != nil {
			return nil, err
		}
	}

	if err := uc.users.Update(ctx, &next); err != nil {
		return nil, domain.RepositoryError("update user", err)
	}
	if next.Role != current.Role || next.ClientID != current.ClientID {
		// visibility depends on role and client, so open sessions must re-authenticate
		if err := uc.registrar.RevokeUser(ctx, id); err != nil {
			uc.logger.Warn("failed to revoke sessions after role change", zap.String("user_id", id), zap.Error(err))
		}
	}
	return &next, nil
}

func (uc *UseCase) Delete(ctx context.Context, actor domain.User, id string) error {
	if err := usecase.RequireAdmin(actor, "deleting users"); err != nil {
		return err
	}
	if actor.ID == id {
		return domain.Invalidf("admins cannot delete themselves")
	}
	if err := uc.users.Delete(ctx, id); err != nil {
		return domain.RepositoryError("delete user", err)
	}
	if err := uc.registrar.RevokeUser(ctx, id); err != nil {
		uc.logger.Warn("failed to revoke sessions of deleted user", zap.String("user_id", id), zap.Error(err))
	}
	uc.logger.Info("user deleted", zap.String("user_id", id), zap.String("by", actor.ID))
	return nil
}

// checkNoAssignedTasks refuses to take a user out of the team while tasks
// still name them as assignee.
func (uc *UseCase) checkNoAssignedTasks(ctx context.Context, userID string) error {
	assigned, err := uc.tasks.List(ctx, repository.TaskFilter{AssignedTo: userID})
	if err != nil {
		return domain.RepositoryError("list assigned tasks", err)
	}
	if len(assigned) > 0 {
		return domain.ErrUserHasTasks
	}
	return nil
}

func (uc *UseCase) checkClient(ctx context.Context, clientID string) error {
	if clientID == "" {
		return nil
	}
	if _, err := uc.clients.GetByID(ctx, clientID); err != nil {
		return domain.RepositoryError("get client", err)
	}
	return nil
}
