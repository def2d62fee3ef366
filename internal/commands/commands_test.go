package commands

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/repository/sqlite"
)

func sqliteEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("LOG_LEVEL", "error")
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCreateAdmin(t *testing.T) {
	path := sqliteEnv(t)

	out, err := run(t, "create-admin", "--email", "Boss@Agency.io", "--name", "Boss", "--password", "s3cret-pass")
	if err != nil {
		t.Fatalf("create-admin: %v", err)
	}
	if !strings.Contains(out, "admin boss@agency.io created") {
		t.Fatalf("unexpected output %q", out)
	}

	db, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer sqlite.Close(db)
	store := sqlite.NewStore(db)

	user, err := store.Users.GetByEmail(context.Background(), "boss@agency.io")
	if err != nil {
		t.Fatalf("admin not stored: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("expected ADMIN role, got %s", user.Role)
	}
	if _, err := store.Credentials.GetCredentials(context.Background(), "boss@agency.io"); err != nil {
		t.Fatalf("credentials not stored: %v", err)
	}
}

func TestCreateAdminRejectsDuplicateEmail(t *testing.T) {
	sqliteEnv(t)

	args := []string{"create-admin", "--email", "boss@agency.io", "--name", "Boss", "--password", "s3cret-pass"}
	if _, err := run(t, args...); err != nil {
		t.Fatalf("first create-admin: %v", err)
	}
	_, err := run(t, args...)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestCreateAdminPasswordFromEnv(t *testing.T) {
	sqliteEnv(t)

	if _, err := run(t, "create-admin", "--email", "boss@agency.io", "--name", "Boss"); err == nil {
		t.Fatal("expected missing password to be rejected")
	}

	t.Setenv(passwordEnv, "s3cret-pass")
	if _, err := run(t, "create-admin", "--email", "boss@agency.io", "--name", "Boss"); err != nil {
		t.Fatalf("create-admin with env password: %v", err)
	}
}

func TestMigrate(t *testing.T) {
	sqliteEnv(t)

	out, err := run(t, "migrate", "up")
	if err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	if !strings.Contains(out, "sqlite schema ready") {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := run(t, "migrate", "version"); !errors.Is(err, errPostgresOnly) {
		t.Fatalf("expected postgres-only error, got %v", err)
	}
	if _, err := run(t, "migrate", "down", "--steps", "0"); err == nil {
		t.Fatal("expected non-positive steps to be rejected")
	}
}
