package workflow

import (
	"testing"
	"time"

	"github.com/fastygo/contentflow/domain"
)

func ids(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestVisible_ClientSeesOnlyFinishedOwnWork(t *testing.T) {
	tasks := []domain.Task{
		{ID: "a", ClientID: "c1", Status: domain.StatusPending},
		{ID: "b", ClientID: "c1", Status: domain.StatusApproved},
		{ID: "c", ClientID: "c2", Status: domain.StatusApproved},
	}
	got := Visible(tasks, client, Filter{})
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("expected only task b, got %v", ids(got))
	}

	tasks = append(tasks, domain.Task{ID: "d", ClientID: "c1", Status: domain.StatusDelivered})
	got = Visible(tasks, client, Filter{})
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "d" {
		t.Fatalf("expected b and d, got %v", ids(got))
	}
}

func TestVisible_RoleScopes(t *testing.T) {
	tasks := []domain.Task{
		{ID: "a", ClientID: "c1", AssignedTo: "u-team", Status: domain.StatusInProduction},
		{ID: "b", ClientID: "c2", AssignedTo: "u-other", Status: domain.StatusPending},
		{ID: "c", ClientID: "c1", Status: domain.StatusApproved},
	}
	if got := Visible(tasks, admin, Filter{}); len(got) != 3 {
		t.Fatalf("admin should see all, got %v", ids(got))
	}
	if got := Visible(tasks, team, Filter{}); len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("team should see own assignment only, got %v", ids(got))
	}
	if got := Visible(tasks, domain.User{ID: "x", Role: "GUEST"}, Filter{}); len(got) != 0 {
		t.Fatalf("unknown role should see nothing, got %v", ids(got))
	}
	if got := Visible(tasks, admin, Filter{ClientID: "c2"}); len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("client filter not applied, got %v", ids(got))
	}
}

func TestVisible_SearchComposesWithRole(t *testing.T) {
	tasks := []domain.Task{
		{ID: "mine", AssignedTo: "u-team", Title: "Reel unboxing", Briefing: "camera"},
		{ID: "theirs", AssignedTo: "u-other", Title: "Reel teaser", Briefing: "camera"},
		{ID: "brief", AssignedTo: "u-team", Title: "Flyer", Briefing: "new REEL format"},
	}
	got := Visible(tasks, team, Filter{Search: "reel"})
	if len(got) != 2 || got[0].ID != "mine" || got[1].ID != "brief" {
		t.Fatalf("expected search within own tasks only, got %v", ids(got))
	}
	if got := Visible(tasks, admin, Filter{Search: "TEASER"}); len(got) != 1 || got[0].ID != "theirs" {
		t.Fatalf("expected case-insensitive match, got %v", ids(got))
	}
}

func TestFilterClientsAndSearchClientTasks(t *testing.T) {
	clients := []domain.Client{
		{ID: "c1", Name: "TechStore", Sector: "E-commerce"},
		{ID: "c2", Name: "FitLife Academy", Sector: "Fitness"},
	}
	if got := FilterClients(clients, "fit"); len(got) != 1 || got[0].ID != "c2" {
		t.Fatalf("unexpected client match: %+v", got)
	}
	if got := FilterClients(clients, "commerce"); len(got) != 1 || got[0].ID != "c1" {
		t.Fatalf("unexpected sector match: %+v", got)
	}

	tasks := []domain.Task{
		{ID: "a", Title: "Unboxing", Format: "Reels"},
		{ID: "b", Title: "Promo", Format: "Flyers"},
	}
	if got := SearchClientTasks(tasks, "flyers"); len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("unexpected format match: %v", ids(got))
	}
}

func TestMetrics(t *testing.T) {
	today := time.Date(2024, 6, 20, 15, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC) }
	tasks := []domain.Task{
		{ID: "a", Status: domain.StatusPending, Deadline: day(18)},
		{ID: "b", Status: domain.StatusInProduction, Deadline: day(20)},
		{ID: "c", Status: domain.StatusApproved, Deadline: day(10)},
		{ID: "d", Status: domain.StatusInReview, Deadline: day(20)},
		{ID: "e", Status: domain.StatusToProduce, Deadline: day(25)},
	}

	o := Summarize(tasks, today)
	if o != (Overview{Total: 5, Pending: 1, InProgress: 1, Approved: 1, Delayed: 1}) {
		t.Fatalf("unexpected overview %+v", o)
	}
	if b := Bucketize(tasks); b != (Buckets{Pending: 2, Production: 1, Review: 1, Done: 1}) {
		t.Fatalf("unexpected buckets %+v", b)
	}
	if a := DeadlineAlerts(tasks, today); a != (Alerts{DueToday: 2, Late: 1, InReview: 1}) {
		t.Fatalf("unexpected alerts %+v", a)
	}
	if rate := CompletionRate(tasks); rate != 20 {
		t.Fatalf("expected 20%%, got %d", rate)
	}
	if rate := CompletionRate(nil); rate != 0 {
		t.Fatalf("expected 0 for empty set, got %d", rate)
	}

	days := ByDeadline(tasks)
	if len(days) != 4 || days[0].Date != "2024-06-10" || days[3].Date != "2024-06-25" {
		t.Fatalf("unexpected agenda %+v", days)
	}
	if len(days[2].Tasks) != 2 {
		t.Fatalf("expected two tasks on 2024-06-20, got %d", len(days[2].Tasks))
	}
}
