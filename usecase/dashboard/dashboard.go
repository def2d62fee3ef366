package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/domain/workflow"
	"github.com/fastygo/contentflow/repository"
)

// Report is everything the dashboard, reports and calendar screens show,
// computed over the tasks the viewer can see.
type Report struct {
	Today          string                       `json:"today"`
	Overview       workflow.Overview            `json:"overview"`
	Buckets        workflow.Buckets             `json:"buckets"`
	Alerts         workflow.Alerts              `json:"alerts"`
	StatusCounts   map[domain.ContentStatus]int `json:"status_counts"`
	CompletionRate int                          `json:"completion_rate"`
	Clients        []ClientSummary              `json:"clients"`
	Agenda         []workflow.DayAgenda         `json:"agenda"`
	TeamSize       int                          `json:"team_size"`
}

// ClientSummary pairs a client with its task counters and target progress.
type ClientSummary struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Active   bool                 `json:"active"`
	Stats    workflow.ClientStats `json:"stats"`
	Progress workflow.Progress    `json:"progress"`
}

type UseCase struct {
	users   repository.UserRepository
	clients repository.ClientRepository
	tasks   repository.TaskRepository
	now     func() time.Time
	logger  *zap.Logger
}

func New(users repository.UserRepository, clients repository.ClientRepository, tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:   users,
		clients: clients,
		tasks:   tasks,
		now:     time.Now,
		logger:  logger,
	}
}

// Report loads users, clients and tasks concurrently and aggregates them for viewer.
func (uc *UseCase) Report(ctx context.Context, viewer domain.User) (*Report, error) {
	var (
		users   []domain.User
		clients []domain.Client
		tasks   []domain.Task
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if viewer.Role == domain.RoleClient {
			return nil
		}
		var err error
		users, err = uc.users.List(gctx)
		return domain.RepositoryError("list users", err)
	})
	g.Go(func() error {
		var err error
		clients, err = uc.clients.List(gctx)
		return domain.RepositoryError("list clients", err)
	})
	g.Go(func() error {
		var err error
		tasks, err = uc.tasks.List(gctx, scopeFor(viewer))
		return domain.RepositoryError("list tasks", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	today := uc.now().UTC()
	visible := workflow.Visible(tasks, viewer, workflow.Filter{})
	report := &Report{
		Today:          today.Format(domain.DateLayout),
		Overview:       workflow.Summarize(visible, today),
		Buckets:        workflow.Bucketize(visible),
		Alerts:         workflow.DeadlineAlerts(visible, today),
		StatusCounts:   workflow.StatusCounts(visible),
		CompletionRate: workflow.CompletionRate(visible),
		Clients:        summarize(viewer, clients, visible),
		Agenda:         workflow.ByDeadline(visible),
	}
	if report.Agenda == nil {
		report.Agenda = []workflow.DayAgenda{}
	}
	for _, u := range users {
		if u.Role == domain.RoleTeam {
			report.TeamSize++
		}
	}

	uc.logger.Debug("dashboard computed",
		zap.String("viewer_id", viewer.ID),
		zap.String("role", string(viewer.Role)),
		zap.Int("tasks", len(visible)),
	)
	return report, nil
}

// scopeFor narrows the store query to what the viewer could ever see.
func scopeFor(viewer domain.User) repository.TaskFilter {
	switch viewer.Role {
	case domain.RoleTeam:
		return repository.TaskFilter{AssignedTo: viewer.ID}
	case domain.RoleClient:
		return repository.TaskFilter{ClientID: viewer.ClientID}
	default:
		return repository.TaskFilter{}
	}
}

// summarize keeps the clients relevant to the viewer: every client for an
// Admin, the clients of assigned tasks for Team and the own client otherwise.
func summarize(viewer domain.User, clients []domain.Client, tasks []domain.Task) []ClientSummary {
	related := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		related[t.ClientID] = true
	}

	out := make([]ClientSummary, 0, len(clients))
	for _, c := range clients {
		switch viewer.Role {
		case domain.RoleAdmin:
		case domain.RoleTeam:
			if !related[c.ID] {
				continue
			}
		default:
			if c.ID != viewer.ClientID {
				continue
			}
		}
		out = append(out, ClientSummary{
			ID:       c.ID,
			Name:     c.Name,
			Active:   c.Active,
			Stats:    workflow.StatsFor(c.ID, tasks),
			Progress: workflow.ClientProgress(c, tasks),
		})
	}
	return out
}
