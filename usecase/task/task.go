package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/domain/workflow"
	"github.com/fastygo/contentflow/repository"
	"github.com/fastygo/contentflow/usecase"
)

// TextGenerator drafts briefings; it never fails and falls back to fixed text.
type TextGenerator interface {
	Generate(ctx context.Context, title, format, channel string) string
}

// Patch changes the non-nil fields only. Attachments and Links replace the
// whole list when set. Status is not patchable; use Transition.
type Patch struct {
	ClientID    *string
	Title       *string
	Briefing    *string
	Format      *string
	Channel     *string
	Priority    *domain.Priority
	Deadline    *time.Time
	AssignedTo  *string
	Attachments *[]string
	Links       *[]string
}

// teamEditable reports whether the patch only touches what an assignee may change.
func (p Patch) teamEditable() bool {
	return p.ClientID == nil && p.Title == nil && p.Format == nil && p.Channel == nil &&
		p.Priority == nil && p.Deadline == nil && p.AssignedTo == nil
}

type UseCase struct {
	tasks     repository.TaskRepository
	clients   repository.ClientRepository
	users     repository.UserRepository
	engine    *workflow.Engine
	generator TextGenerator
	logger    *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	clients repository.ClientRepository,
	users repository.UserRepository,
	engine *workflow.Engine,
	generator TextGenerator,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = workflow.NewEngine(nil)
	}
	return &UseCase{
		tasks:     tasks,
		clients:   clients,
		users:     users,
		engine:    engine,
		generator: generator,
		logger:    logger,
	}
}

// List returns the tasks visible to viewer, newest first.
func (uc *UseCase) List(ctx context.Context, viewer domain.User, filter workflow.Filter) ([]domain.Task, error) {
	query := repository.TaskFilter{ClientID: filter.ClientID}
	switch viewer.Role {
	case domain.RoleTeam:
		query.AssignedTo = viewer.ID
	case domain.RoleClient:
		query.ClientID = viewer.ClientID
	}

	tasks, err := uc.tasks.List(ctx, query)
	if err != nil {
		return nil, domain.RepositoryError("list tasks", err)
	}
	return workflow.Visible(tasks, viewer, filter), nil
}

// ClientTasks lists the visible tasks of one client whose title or format
// matches query.
func (uc *UseCase) ClientTasks(ctx context.Context, viewer domain.User, clientID, query string) ([]domain.Task, error) {
	if viewer.Role == domain.RoleClient && clientID != viewer.ClientID {
		return nil, domain.ErrClientNotFound
	}
	if _, err := uc.clients.GetByID(ctx, clientID); err != nil {
		return nil, domain.RepositoryError("get client", err)
	}
	tasks, err := uc.List(ctx, viewer, workflow.Filter{ClientID: clientID})
	if err != nil {
		return nil, err
	}
	return workflow.SearchClientTasks(tasks, query), nil
}

// Get hides tasks the viewer may not see behind ErrTaskNotFound.
func (uc *UseCase) Get(ctx context.Context, viewer domain.User, id string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, domain.RepositoryError("get task", err)
	}
	if !workflow.CanSee(viewer, *task) {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// Create stores a new task; the status is always PENDING.
func (uc *UseCase) Create(ctx context.Context, actor domain.User, input domain.Task) (*domain.Task, error) {
	if err := usecase.RequireAdmin(actor, "creating tasks"); err != nil {
		return nil, err
	}

	task := workflow.NewTask(input)
	task.Title = strings.TrimSpace(task.Title)
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := uc.checkReferences(ctx, task.ClientID, task.AssignedTo); err != nil {
		return nil, err
	}

	created, err := uc.tasks.Create(ctx, &task)
	if err != nil {
		return nil, domain.RepositoryError("create task", err)
	}
	uc.logger.Info("task created",
		zap.String("task_id", created.ID),
		zap.String("client_id", created.ClientID),
		zap.String("assigned_to", created.AssignedTo),
	)
	return created, nil
}

// Update applies patch. Admins may change any field; the assignee may only
// change the briefing, attachments and links.
func (uc *UseCase) Update(ctx context.Context, actor domain.User, id string, patch Patch) (*domain.Task, error) {
	current, err := uc.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin():
	case actor.Role == domain.RoleTeam && patch.teamEditable():
	default:
		return nil, usecase.RequireAdmin(actor, "editing these task fields")
	}

	next := current.Clone()
	if patch.ClientID != nil {
		next.ClientID = strings.TrimSpace(*patch.ClientID)
	}
	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Briefing != nil {
		next.Briefing = *patch.Briefing
	}
	if patch.Format != nil {
		next.Format = strings.TrimSpace(*patch.Format)
	}
	if patch.Channel != nil {
		next.Channel = strings.TrimSpace(*patch.Channel)
	}
	if patch.Priority != nil {
		next.Priority = *patch.Priority
	}
	if patch.Deadline != nil {
		next.Deadline = *patch.Deadline
	}
	if patch.AssignedTo != nil {
		next.AssignedTo = strings.TrimSpace(*patch.AssignedTo)
	}
	if patch.Attachments != nil {
		next.Attachments = workflow.CompactURLs(*patch.Attachments)
	}
	if patch.Links != nil {
		next.Links = workflow.CompactURLs(*patch.Links)
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}

	clientID, assignee := "", ""
	if next.ClientID != current.ClientID {
		clientID = next.ClientID
	}
	if next.AssignedTo != current.AssignedTo {
		assignee = next.AssignedTo
	}
	if err := uc.checkReferences(ctx, clientID, assignee); err != nil {
		return nil, err
	}

	updated, err := uc.tasks.Update(ctx, &next)
	if err != nil {
		return nil, domain.RepositoryError("update task", err)
	}
	return updated, nil
}

// Transition moves a task through the workflow on behalf of actor.
// Nothing is written when the engine rejects the move.
func (uc *UseCase) Transition(ctx context.Context, actor domain.User, id string, status domain.ContentStatus, comment string) (*domain.Task, error) {
	current, err := uc.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	next, err := uc.engine.ApplyTransition(*current, status, actor, comment)
	if err != nil {
		uc.logger.Debug("transition rejected",
			zap.String("task_id", id),
			zap.String("from", string(current.Status)),
			zap.String("to", string(status)),
			zap.Error(err),
		)
		return nil, err
	}

	updated, err := uc.tasks.Update(ctx, &next)
	if err != nil {
		return nil, domain.RepositoryError("update task", err)
	}
	uc.logger.Info("task transitioned",
		zap.String("task_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)),
		zap.String("actor_id", actor.ID),
	)
	return updated, nil
}

// AllowedTransitions lists the statuses actor may move the task to.
func (uc *UseCase) AllowedTransitions(ctx context.Context, actor domain.User, id string) ([]domain.ContentStatus, error) {
	task, err := uc.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return workflow.Allowed(*task, actor), nil
}

func (uc *UseCase) Delete(ctx context.Context, actor domain.User, id string) error {
	if err := usecase.RequireAdmin(actor, "deleting tasks"); err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		return domain.RepositoryError("delete task", err)
	}
	uc.logger.Info("task deleted", zap.String("task_id", id), zap.String("by", actor.ID))
	return nil
}

// GenerateBriefing drafts a briefing; the result is never an error.
func (uc *UseCase) GenerateBriefing(ctx context.Context, actor domain.User, title, format, channel string) (string, error) {
	if err := usecase.RequireAdmin(actor, "generating briefings"); err != nil {
		return "", err
	}
	if strings.TrimSpace(title) == "" {
		return "", domain.Invalidf("a title is required to draft a briefing")
	}
	return uc.generator.Generate(ctx, title, format, channel), nil
}

// checkReferences verifies a non-empty client id and assignee exist.
// The assignee must be a TEAM user.
func (uc *UseCase) checkReferences(ctx context.Context, clientID, assignee string) error {
	if clientID != "" {
		if _, err := uc.clients.GetByID(ctx, clientID); err != nil {
			return domain.RepositoryError("get client", err)
		}
	}
	if assignee != "" {
		user, err := uc.users.GetByID(ctx, assignee)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return domain.Invalidf("assignee %q does not exist", assignee)
			}
			return domain.RepositoryError("get assignee", err)
		}
		if user.Role != domain.RoleTeam {
			return domain.Invalidf("tasks can only be assigned to team members")
		}
	}
	return nil
}
