package dashboard

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/repository/sqlite"
)

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

type seeded struct {
	uc       *UseCase
	admin    domain.User
	member   domain.User
	customer domain.User
	acme     *domain.Client
	bistro   *domain.Client
}

func setup(t *testing.T) seeded {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "dashboard.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close(db) })
	store := sqlite.NewStore(db)
	ctx := context.Background()

	acme, err := store.Clients.Create(ctx, &domain.Client{Name: "Acme", Active: true, Targets: []domain.Target{{Label: "Reels", Count: 4}}})
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}
	bistro, err := store.Clients.Create(ctx, &domain.Client{Name: "Bistro", Active: true})
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}

	s := seeded{
		uc:       New(store.Users, store.Clients, store.Tasks, nil),
		admin:    domain.User{Name: "Ana", Email: "ana@agency.io", Role: domain.RoleAdmin},
		member:   domain.User{Name: "Rita", Email: "rita@agency.io", Role: domain.RoleTeam},
		customer: domain.User{Name: "Carla", Email: "carla@acme.io", Role: domain.RoleClient, ClientID: acme.ID},
		acme:     acme,
		bistro:   bistro,
	}
	for _, u := range []*domain.User{&s.admin, &s.member, &s.customer} {
		created, err := store.Users.Create(ctx, u)
		if err != nil {
			t.Fatalf("seed user: %v", err)
		}
		*u = *created
	}

	tasks := []domain.Task{
		{ClientID: acme.ID, Title: "late reel", Format: "Reels", Status: domain.StatusInProduction, Deadline: day(18), AssignedTo: s.member.ID},
		{ClientID: acme.ID, Title: "due reel", Format: "Reels", Status: domain.StatusInReview, Deadline: day(20), AssignedTo: s.member.ID},
		{ClientID: acme.ID, Title: "approved reel", Format: "reels", Status: domain.StatusApproved, Deadline: day(19), AssignedTo: s.member.ID},
		{ClientID: acme.ID, Title: "delivered reel", Format: "Reels", Status: domain.StatusDelivered, Deadline: day(10)},
		{ClientID: bistro.ID, Title: "menu post", Format: "Posts", Status: domain.StatusPending, Deadline: day(25)},
	}
	for i := range tasks {
		tasks[i].Priority = domain.PriorityMedium
		if _, err := store.Tasks.Create(ctx, &tasks[i]); err != nil {
			t.Fatalf("seed task: %v", err)
		}
	}

	s.uc.now = func() time.Time { return time.Date(2024, 6, 20, 15, 30, 0, 0, time.UTC) }
	return s
}

func TestAdminReport(t *testing.T) {
	s := setup(t)

	report, err := s.uc.Report(context.Background(), s.admin)
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if report.Today != "2024-06-20" {
		t.Fatalf("unexpected today %q", report.Today)
	}
	if o := report.Overview; o.Total != 5 || o.Pending != 1 || o.InProgress != 1 || o.Approved != 2 || o.Delayed != 1 {
		t.Fatalf("unexpected overview %+v", o)
	}
	if b := report.Buckets; b.Pending != 1 || b.Production != 1 || b.Review != 1 || b.Done != 2 {
		t.Fatalf("unexpected buckets %+v", b)
	}
	if a := report.Alerts; a.DueToday != 1 || a.Late != 1 || a.InReview != 1 {
		t.Fatalf("unexpected alerts %+v", a)
	}
	if report.CompletionRate != 40 {
		t.Fatalf("expected 40%% completion, got %d", report.CompletionRate)
	}
	if report.TeamSize != 1 {
		t.Fatalf("expected one team member, got %d", report.TeamSize)
	}
	if len(report.Clients) != 2 {
		t.Fatalf("expected both clients, got %+v", report.Clients)
	}
	for _, c := range report.Clients {
		if c.ID != s.acme.ID {
			continue
		}
		if c.Stats.Total != 4 || c.Stats.Done != 2 {
			t.Fatalf("unexpected acme stats %+v", c.Stats)
		}
		if c.Progress.Done != 2 || c.Progress.RemainingGlobal != 2 || c.Progress.Targets[0].Percent != 50 {
			t.Fatalf("unexpected acme progress %+v", c.Progress)
		}
	}
	if len(report.Agenda) != 5 || report.Agenda[0].Date != "2024-06-10" || report.Agenda[4].Date != "2024-06-25" {
		t.Fatalf("unexpected agenda %+v", report.Agenda)
	}
}

func TestReportIsRoleScoped(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	team, err := s.uc.Report(ctx, s.member)
	if err != nil {
		t.Fatalf("team report: %v", err)
	}
	if team.Overview.Total != 3 {
		t.Fatalf("team should see its 3 assigned tasks, got %d", team.Overview.Total)
	}
	if len(team.Clients) != 1 || team.Clients[0].ID != s.acme.ID {
		t.Fatalf("team should only see clients of assigned tasks, got %+v", team.Clients)
	}

	customer, err := s.uc.Report(ctx, s.customer)
	if err != nil {
		t.Fatalf("client report: %v", err)
	}
	if customer.Overview.Total != 2 || customer.CompletionRate != 100 {
		t.Fatalf("client should only see finished work, got %+v rate %d", customer.Overview, customer.CompletionRate)
	}
	if customer.TeamSize != 0 {
		t.Fatalf("client report must not count the team, got %d", customer.TeamSize)
	}
	if len(customer.Clients) != 1 || customer.Clients[0].Name != "Acme" {
		t.Fatalf("client should only see itself, got %+v", customer.Clients)
	}
}
