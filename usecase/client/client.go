package client

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/domain/workflow"
	"github.com/fastygo/contentflow/repository"
	"github.com/fastygo/contentflow/usecase"
)

// Patch changes the non-nil fields only. A non-nil Targets replaces the
// whole target set; nil leaves it untouched.
type Patch struct {
	Name    *string
	Sector  *string
	Logo    *string
	Active  *bool
	Targets *[]domain.Target
}

type UseCase struct {
	clients repository.ClientRepository
	tasks   repository.TaskRepository
	logger  *zap.Logger
}

func New(clients repository.ClientRepository, tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		clients: clients,
		tasks:   tasks,
		logger:  logger,
	}
}

// List returns the clients the actor may see, filtered by name or sector.
func (uc *UseCase) List(ctx context.Context, actor domain.User, query string) ([]domain.Client, error) {
	if actor.Role == domain.RoleClient {
		own, err := uc.Get(ctx, actor, actor.ClientID)
		if err != nil {
			return []domain.Client{}, nil
		}
		return workflow.FilterClients([]domain.Client{*own}, query), nil
	}

	clients, err := uc.clients.List(ctx)
	if err != nil {
		return nil, domain.RepositoryError("list clients", err)
	}
	return workflow.FilterClients(clients, query), nil
}

func (uc *UseCase) Get(ctx context.Context, actor domain.User, id string) (*domain.Client, error) {
	if actor.Role == domain.RoleClient && actor.ClientID != id {
		return nil, domain.ErrClientNotFound
	}
	client, err := uc.clients.GetByID(ctx, id)
	if err != nil {
		return nil, domain.RepositoryError("get client", err)
	}
	return client, nil
}

func (uc *UseCase) Create(ctx context.Context, actor domain.User, client domain.Client) (*domain.Client, error) {
	if err := usecase.RequireAdmin(actor, "creating clients"); err != nil {
		return nil, err
	}

	client.ID = ""
	client.Name = strings.TrimSpace(client.Name)
	client.Targets = normalizeTargets(client.Targets)
	if err := client.Validate(); err != nil {
		return nil, err
	}

	created, err := uc.clients.Create(ctx, &client)
	if err != nil {
		return nil, domain.RepositoryError("create client", err)
	}
	uc.logger.Info("client created", zap.String("client_id", created.ID), zap.Int("targets", len(created.Targets)))
	return created, nil
}

func (uc *UseCase) Update(ctx context.Context, actor domain.User, id string, patch Patch) (*domain.Client, error) {
	if err := usecase.RequireAdmin(actor, "editing clients"); err != nil {
		return nil, err
	}

	current, err := uc.clients.GetByID(ctx, id)
	if err != nil {
		return nil, domain.RepositoryError("get client", err)
	}

	next := *current
	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Sector != nil {
		next.Sector = strings.TrimSpace(*patch.Sector)
	}
	if patch.Logo != nil {
		next.Logo = strings.TrimSpace(*patch.Logo)
	}
	if patch.Active != nil {
		next.Active = *patch.Active
	}
	replace := patch.Targets != nil
	if replace {
		next.Targets = normalizeTargets(*patch.Targets)
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}

	updated, err := uc.clients.Update(ctx, &next, replace)
	if err != nil {
		return nil, domain.RepositoryError("update client", err)
	}
	return updated, nil
}

// SaveTargets replaces the full target set of a client.
func (uc *UseCase) SaveTargets(ctx context.Context, actor domain.User, id string, targets []domain.Target) (*domain.Client, error) {
	return uc.Update(ctx, actor, id, Patch{Targets: &targets})
}

// Delete refuses while the client still owns tasks; targets go with the client.
func (uc *UseCase) Delete(ctx context.Context, actor domain.User, id string) error {
	if err := usecase.RequireAdmin(actor, "deleting clients"); err != nil {
		return err
	}

	count, err := uc.tasks.CountByClient(ctx, id)
	if err != nil {
		return domain.RepositoryError("count client tasks", err)
	}
	if count > 0 {
		return domain.ErrClientHasTasks
	}
	if err := uc.clients.Delete(ctx, id); err != nil {
		return domain.RepositoryError("delete client", err)
	}
	uc.logger.Info("client deleted", zap.String("client_id", id), zap.String("by", actor.ID))
	return nil
}

// Progress computes target completion for one client from all its tasks.
func (uc *UseCase) Progress(ctx context.Context, actor domain.User, id string) (workflow.Progress, error) {
	client, err := uc.Get(ctx, actor, id)
	if err != nil {
		return workflow.Progress{}, err
	}
	tasks, err := uc.tasks.List(ctx, repository.TaskFilter{ClientID: id})
	if err != nil {
		return workflow.Progress{}, domain.RepositoryError("list tasks", err)
	}
	return workflow.ClientProgress(*client, tasks), nil
}

func normalizeTargets(targets []domain.Target) []domain.Target {
	out := make([]domain.Target, 0, len(targets))
	for _, t := range targets {
		t.Label = strings.TrimSpace(t.Label)
		out = append(out, t)
	}
	return out
}
