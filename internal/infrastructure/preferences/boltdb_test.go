package preferences

import (
	"errors"
	"path/filepath"
	"testing"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "prefs.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return store, path
}

func TestPutGetSurvivesReopen(t *testing.T) {
	store, path := openStore(t)

	if _, err := store.Get("u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Put(Record{UserID: "u1", Theme: "dark"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	rec, err := reopened.Get("u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Theme != "dark" || rec.UpdatedAt.IsZero() {
		t.Fatalf("unexpected record %+v", rec)
	}
	if size, _ := reopened.Size(); size != 1 {
		t.Fatalf("expected 1 record, got %d", size)
	}
}

func TestDeleteAndEmptyUser(t *testing.T) {
	store, _ := openStore(t)
	defer store.Close()

	if err := store.Put(Record{Theme: "dark"}); err == nil {
		t.Fatalf("expected empty user id to be rejected")
	}
	if err := store.Put(Record{UserID: "u1", Theme: "light"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete("u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete("u1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := store.Get("u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
