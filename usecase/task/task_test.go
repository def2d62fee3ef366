package task

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/domain/workflow"
	"github.com/fastygo/contentflow/repository"
	"github.com/fastygo/contentflow/repository/sqlite"
)

type stubGenerator struct {
	calls int
}

func (g *stubGenerator) Generate(_ context.Context, title, format, channel string) string {
	g.calls++
	return "Draft for " + title + " (" + format + ", " + channel + ")"
}

type fixture struct {
	uc       *UseCase
	store    repository.Store
	gen      *stubGenerator
	admin    domain.User
	member   domain.User
	other    domain.User
	customer domain.User
	client   *domain.Client
}

var reviewedAt = time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) fixture {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close(db) })
	store := sqlite.NewStore(db)
	ctx := context.Background()

	client, err := store.Clients.Create(ctx, &domain.Client{Name: "Acme", Active: true})
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}
	seed := func(u domain.User) domain.User {
		created, err := store.Users.Create(ctx, &u)
		if err != nil {
			t.Fatalf("seed user %s: %v", u.Email, err)
		}
		return *created
	}

	gen := &stubGenerator{}
	engine := workflow.NewEngine(func() time.Time { return reviewedAt })
	return fixture{
		uc:       New(store.Tasks, store.Clients, store.Users, engine, gen, nil),
		store:    store,
		gen:      gen,
		admin:    seed(domain.User{Name: "Ana", Email: "ana@agency.io", Role: domain.RoleAdmin}),
		member:   seed(domain.User{Name: "Rita", Email: "rita@agency.io", Role: domain.RoleTeam}),
		other:    seed(domain.User{Name: "Leo", Email: "leo@agency.io", Role: domain.RoleTeam}),
		customer: seed(domain.User{Name: "Carla", Email: "carla@acme.io", Role: domain.RoleClient, ClientID: client.ID}),
		client:   client,
	}
}

func (f fixture) newTask(t *testing.T, title string) *domain.Task {
	t.Helper()
	created, err := f.uc.Create(context.Background(), f.admin, domain.Task{
		ClientID:   f.client.ID,
		Title:      title,
		Format:     "Reels",
		Channel:    "Instagram",
		Priority:   domain.PriorityHigh,
		Deadline:   time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC),
		AssignedTo: f.member.ID,
		Links:      []string{"https://drive/ref1", " "},
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return created
}

func TestCreateAlwaysStartsPending(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.uc.Create(ctx, f.admin, domain.Task{
		ClientID:      f.client.ID,
		Title:         "  Summer carousel ",
		Status:        domain.StatusApproved,
		ReviewComment: "pre-approved",
		AssignedTo:    f.member.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != domain.StatusPending || created.ReviewComment != "" {
		t.Fatalf("expected a fresh PENDING task, got %+v", created)
	}
	if created.Title != "Summer carousel" || created.Priority != domain.PriorityMedium {
		t.Fatalf("expected trimmed title and default priority, got %q %q", created.Title, created.Priority)
	}
	if created.Attachments == nil || created.Links == nil {
		t.Fatalf("expected empty url lists, got nil")
	}
}

func TestCreateChecksActorAndReferences(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		actor domain.User
		task  domain.Task
		check func(error) bool
	}{
		{
			name:  "team cannot create",
			actor: f.member,
			task:  domain.Task{ClientID: f.client.ID, Title: "x"},
			check: func(err error) bool { return errors.Is(err, domain.ErrInvalidActor) },
		},
		{
			name:  "missing title",
			actor: f.admin,
			task:  domain.Task{ClientID: f.client.ID, Title: "   "},
			check: func(err error) bool { return domain.IsDomainError(err, domain.ErrCodeInvalid) },
		},
		{
			name:  "unknown client",
			actor: f.admin,
			task:  domain.Task{ClientID: "missing", Title: "x"},
			check: func(err error) bool { return errors.Is(err, domain.ErrClientNotFound) },
		},
		{
			name:  "assignee must be team",
			actor: f.admin,
			task:  domain.Task{ClientID: f.client.ID, Title: "x", AssignedTo: f.customer.ID},
			check: func(err error) bool { return domain.IsDomainError(err, domain.ErrCodeInvalid) },
		},
		{
			name:  "unknown assignee",
			actor: f.admin,
			task:  domain.Task{ClientID: f.client.ID, Title: "x", AssignedTo: "ghost"},
			check: func(err error) bool { return domain.IsDomainError(err, domain.ErrCodeInvalid) },
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Create(ctx, tc.actor, tc.task)
			if !tc.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestVisibilityByRole(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	mine := f.newTask(t, "Reel for launch")
	theirs, err := f.uc.Create(ctx, f.admin, domain.Task{ClientID: f.client.ID, Title: "Story", AssignedTo: f.other.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := f.uc.List(ctx, f.admin, workflow.Filter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("admin should see both tasks, got %d %v", len(all), err)
	}

	assigned, err := f.uc.List(ctx, f.member, workflow.Filter{})
	if err != nil || len(assigned) != 1 || assigned[0].ID != mine.ID {
		t.Fatalf("team should only see assigned tasks, got %v %v", assigned, err)
	}
	if _, err := f.uc.Get(ctx, f.member, theirs.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected other member's task to be hidden, got %v", err)
	}

	hidden, err := f.uc.List(ctx, f.customer, workflow.Filter{})
	if err != nil || len(hidden) != 0 {
		t.Fatalf("client should not see unfinished tasks, got %v %v", hidden, err)
	}

	if _, err := f.uc.Transition(ctx, f.admin, mine.ID, domain.StatusApproved, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	visible, err := f.uc.List(ctx, f.customer, workflow.Filter{Search: "LAUNCH"})
	if err != nil || len(visible) != 1 || visible[0].ID != mine.ID {
		t.Fatalf("client should see approved task, got %v %v", visible, err)
	}
}

func TestTransitionLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.newTask(t, "Reel")

	steps := []domain.ContentStatus{domain.StatusInProduction, domain.StatusInReview}
	for _, status := range steps {
		updated, err := f.uc.Transition(ctx, f.member, task.ID, status, "")
		if err != nil {
			t.Fatalf("team move to %s: %v", status, err)
		}
		if updated.Status != status {
			t.Fatalf("expected %s, got %s", status, updated.Status)
		}
	}

	if _, err := f.uc.Transition(ctx, f.member, task.ID, domain.StatusApproved, ""); !errors.Is(err, domain.ErrInvalidActor) {
		t.Fatalf("team must not approve, got %v", err)
	}
	if _, err := f.uc.Transition(ctx, f.admin, task.ID, domain.StatusAdjustmentsRequested, "  "); !errors.Is(err, domain.ErrMissingComment) {
		t.Fatalf("expected ErrMissingComment, got %v", err)
	}
	stored, err := f.store.Tasks.GetByID(ctx, task.ID)
	if err != nil || stored.Status != domain.StatusInReview {
		t.Fatalf("rejected transition must not persist, got %v %v", stored, err)
	}

	adjusted, err := f.uc.Transition(ctx, f.admin, task.ID, domain.StatusAdjustmentsRequested, "Use the new logo")
	if err != nil {
		t.Fatalf("request adjustments: %v", err)
	}
	if adjusted.ReviewComment != "Use the new logo" || adjusted.ReviewedBy != f.admin.ID {
		t.Fatalf("expected review fields set, got %+v", adjusted)
	}
	if adjusted.ReviewedAt == nil || !adjusted.ReviewedAt.Equal(reviewedAt) {
		t.Fatalf("expected reviewed at %v, got %v", reviewedAt, adjusted.ReviewedAt)
	}

	allowed, err := f.uc.AllowedTransitions(ctx, f.member, task.ID)
	if err != nil || len(allowed) != 1 || allowed[0] != domain.StatusInProduction {
		t.Fatalf("expected team to resume production only, got %v %v", allowed, err)
	}

	if _, err := f.uc.Transition(ctx, f.customer, task.ID, domain.StatusApproved, ""); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("client cannot see the task, got %v", err)
	}
}

func TestUpdatePermissions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.newTask(t, "Reel")

	briefing := "Show the product in use"
	links := []string{"https://drive/final", ""}
	updated, err := f.uc.Update(ctx, f.member, task.ID, Patch{Briefing: &briefing, Links: &links})
	if err != nil {
		t.Fatalf("team update: %v", err)
	}
	if updated.Briefing != briefing || len(updated.Links) != 1 || updated.Links[0] != "https://drive/final" {
		t.Fatalf("unexpected update %+v", updated)
	}
	if updated.Status != task.Status || updated.Title != task.Title {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	title := "Renamed"
	if _, err := f.uc.Update(ctx, f.member, task.ID, Patch{Title: &title}); !errors.Is(err, domain.ErrInvalidActor) {
		t.Fatalf("team cannot rename, got %v", err)
	}
	if _, err := f.uc.Update(ctx, f.other, task.ID, Patch{Briefing: &briefing}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("unassigned member cannot see the task, got %v", err)
	}

	reassign := f.other.ID
	moved, err := f.uc.Update(ctx, f.admin, task.ID, Patch{Title: &title, AssignedTo: &reassign})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if moved.Title != title || moved.AssignedTo != f.other.ID {
		t.Fatalf("unexpected admin update %+v", moved)
	}

	bad := f.customer.ID
	if _, err := f.uc.Update(ctx, f.admin, task.ID, Patch{AssignedTo: &bad}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected invalid assignee, got %v", err)
	}
}

func TestDeleteAndBriefing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.newTask(t, "Reel")

	if err := f.uc.Delete(ctx, f.member, task.ID); !errors.Is(err, domain.ErrInvalidActor) {
		t.Fatalf("expected ErrInvalidActor, got %v", err)
	}
	if err := f.uc.Delete(ctx, f.admin, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.uc.Get(ctx, f.admin, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}

	if _, err := f.uc.GenerateBriefing(ctx, f.member, "Reel", "Reels", "Instagram"); !errors.Is(err, domain.ErrInvalidActor) {
		t.Fatalf("expected ErrInvalidActor, got %v", err)
	}
	if _, err := f.uc.GenerateBriefing(ctx, f.admin, " ", "Reels", "Instagram"); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected INVALID for empty title, got %v", err)
	}
	text, err := f.uc.GenerateBriefing(ctx, f.admin, "Reel", "Reels", "Instagram")
	if err != nil || text != "Draft for Reel (Reels, Instagram)" || f.gen.calls != 1 {
		t.Fatalf("unexpected briefing %q %v", text, err)
	}
}

func TestClientTasksSearchesTitleAndFormat(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.newTask(t, "Launch reel")
	flyer, err := f.uc.Create(ctx, f.admin, domain.Task{ClientID: f.client.ID, Title: "Menu flyer", Format: "Flyers", AssignedTo: f.member.ID})
	if err != nil {
		t.Fatalf("create flyer: %v", err)
	}

	got, err := f.uc.ClientTasks(ctx, f.admin, f.client.ID, "FLYERS")
	if err != nil {
		t.Fatalf("client tasks: %v", err)
	}
	if len(got) != 1 || got[0].ID != flyer.ID {
		t.Fatalf("expected the flyer only, got %+v", got)
	}
	if got, _ := f.uc.ClientTasks(ctx, f.member, f.client.ID, ""); len(got) != 2 {
		t.Fatalf("empty query should list every assigned task, got %d", len(got))
	}
	if got, _ := f.uc.ClientTasks(ctx, f.other, f.client.ID, ""); len(got) != 0 {
		t.Fatalf("unassigned team member should see nothing, got %d", len(got))
	}

	if got, err := f.uc.ClientTasks(ctx, f.customer, f.client.ID, ""); err != nil || len(got) != 0 {
		t.Fatalf("client should not see pending work, got %v %+v", err, got)
	}
	if _, err := f.uc.ClientTasks(ctx, f.customer, "another-client", ""); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected client not found for a foreign client, got %v", err)
	}
	if _, err := f.uc.ClientTasks(ctx, f.admin, "missing", ""); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected not found for an unknown client, got %v", err)
	}
}
