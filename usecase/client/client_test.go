package client

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/repository"
	"github.com/fastygo/contentflow/repository/sqlite"
)

var (
	admin = domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	team  = domain.User{ID: "team-1", Role: domain.RoleTeam}
)

func setup(t *testing.T) (*UseCase, repository.Store) {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "clients.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close(db) })
	store := sqlite.NewStore(db)
	return New(store.Clients, store.Tasks, nil), store
}

func TestCreateValidatesTargets(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	if _, err := uc.Create(ctx, team, domain.Client{Name: "Acme"}); !errors.Is(err, domain.ErrInvalidActor) {
		t.Fatalf("expected ErrInvalidActor, got %v", err)
	}

	cases := []struct {
		name    string
		targets []domain.Target
	}{
		{name: "empty label", targets: []domain.Target{{Label: "  ", Count: 2}}},
		{name: "negative count", targets: []domain.Target{{Label: "Reels", Count: -1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(ctx, admin, domain.Client{Name: "Acme", Targets: tc.targets})
			if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
				t.Fatalf("expected INVALID, got %v", err)
			}
		})
	}

	created, err := uc.Create(ctx, admin, domain.Client{Name: " Acme ", Sector: "Retail", Targets: []domain.Target{{Label: " Flyers ", Count: 0}}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Acme" || created.Targets[0].Label != "Flyers" {
		t.Fatalf("expected trimmed values, got %+v", created)
	}
}

func TestUpdateKeepsOrReplacesTargets(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, admin, domain.Client{Name: "Acme", Targets: []domain.Target{{Label: "Flyers", Count: 8}}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sector := "Food"
	updated, err := uc.Update(ctx, admin, created.ID, Patch{Sector: &sector})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Sector != "Food" || len(updated.Targets) != 1 {
		t.Fatalf("expected targets kept, got %+v", updated)
	}

	replaced, err := uc.SaveTargets(ctx, admin, created.ID, []domain.Target{{Label: "Reels", Count: 3}, {Label: "Stories", Count: 5}})
	if err != nil {
		t.Fatalf("save targets: %v", err)
	}
	if len(replaced.Targets) != 2 || replaced.Targets[0].Label != "Reels" {
		t.Fatalf("unexpected targets %+v", replaced.Targets)
	}

	if _, err := uc.Update(ctx, admin, "missing", Patch{Sector: &sector}); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestDeleteBlockedWhileTasksExist(t *testing.T) {
	uc, store := setup(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, admin, domain.Client{Name: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Tasks.Create(ctx, &domain.Task{ClientID: created.ID, Title: "x", Priority: domain.PriorityLow, Status: domain.StatusPending}); err != nil {
		t.Fatalf("seed task: %v", err)
	}

	err = uc.Delete(ctx, admin, created.ID)
	if !errors.Is(err, domain.ErrClientHasTasks) || !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("expected ErrClientHasTasks, got %v", err)
	}
}

func TestProgressAndClientScope(t *testing.T) {
	uc, store := setup(t)
	ctx := context.Background()

	acme, err := uc.Create(ctx, admin, domain.Client{Name: "Acme", Sector: "Retail", Targets: []domain.Target{{Label: "Flyers", Count: 8}}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := uc.Create(ctx, admin, domain.Client{Name: "Bistro", Sector: "Food"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, status := range []domain.ContentStatus{domain.StatusApproved, domain.StatusDelivered, domain.StatusInReview} {
		if _, err := store.Tasks.Create(ctx, &domain.Task{ClientID: acme.ID, Title: "flyer", Format: "flyers", Priority: domain.PriorityLow, Status: status}); err != nil {
			t.Fatalf("seed task: %v", err)
		}
	}

	progress, err := uc.Progress(ctx, admin, acme.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.Targets[0].Done != 2 || progress.Targets[0].Percent != 25 || progress.RemainingGlobal != 6 {
		t.Fatalf("unexpected progress %+v", progress)
	}

	clientUser := domain.User{ID: "c1", Role: domain.RoleClient, ClientID: acme.ID}
	listed, err := uc.List(ctx, clientUser, "")
	if err != nil || len(listed) != 1 || listed[0].ID != acme.ID {
		t.Fatalf("expected client to list only its own client, got %v %v", listed, err)
	}
	if _, err := uc.Progress(ctx, domain.User{ID: "c2", Role: domain.RoleClient, ClientID: "other"}, acme.ID); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected foreign client progress to be hidden, got %v", err)
	}

	food, err := uc.List(ctx, team, "food")
	if err != nil || len(food) != 1 || food[0].Name != "Bistro" {
		t.Fatalf("expected sector search to match Bistro, got %v %v", food, err)
	}
}
