package router

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/contentflow/api/handler"
	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/domain/workflow"
	"github.com/fastygo/contentflow/internal/infrastructure/monitor"
	"github.com/fastygo/contentflow/internal/infrastructure/preferences"
	"github.com/fastygo/contentflow/internal/middleware"
	"github.com/fastygo/contentflow/pkg/httpcontext"
	"github.com/fastygo/contentflow/repository/sqlite"
	authUC "github.com/fastygo/contentflow/usecase/auth"
	clientUC "github.com/fastygo/contentflow/usecase/client"
	commentUC "github.com/fastygo/contentflow/usecase/comment"
	dashboardUC "github.com/fastygo/contentflow/usecase/dashboard"
	prefsUC "github.com/fastygo/contentflow/usecase/preferences"
	taskUC "github.com/fastygo/contentflow/usecase/task"
	usersUC "github.com/fastygo/contentflow/usecase/users"
)

type tokenAuth map[string]string

func (a tokenAuth) Authenticate(_ context.Context, token string) (*domain.Session, error) {
	userID, ok := a[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return &domain.Session{ID: "session-" + token, UserID: userID}, nil
}

type fixedText struct{}

func (fixedText) Generate(_ context.Context, title, _, _ string) string {
	return "briefing for " + title
}

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
}

type server struct {
	handler fasthttp.RequestHandler
	client  *domain.Client
	admin   *domain.User
	member  *domain.User
	viewer  *domain.User
}

func newServer(t *testing.T) *server {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(filepath.Join(dir, "router.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close(db) })
	prefStore, err := preferences.Open(filepath.Join(dir, "prefs.db"))
	if err != nil {
		t.Fatalf("open preferences: %v", err)
	}
	t.Cleanup(func() { _ = prefStore.Close() })
	mon, err := monitor.New("@every 1h", nil)
	if err != nil {
		t.Fatalf("monitor: %v", err)
	}

	store := sqlite.NewStore(db)
	ctx := context.Background()
	client, err := store.Clients.Create(ctx, &domain.Client{Name: "Acme", Active: true})
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}
	seed := func(u domain.User) *domain.User {
		created, err := store.Users.Create(ctx, &u)
		if err != nil {
			t.Fatalf("seed user: %v", err)
		}
		return created
	}
	s := &server{
		client: client,
		admin:  seed(domain.User{Name: "Ana", Email: "ana@agency.io", Role: domain.RoleAdmin}),
		member: seed(domain.User{Name: "Rita", Email: "rita@agency.io", Role: domain.RoleTeam}),
		viewer: seed(domain.User{Name: "Carla", Email: "carla@acme.io", Role: domain.RoleClient, ClientID: client.ID}),
	}

	auth := authUC.New(store.Users, store.Credentials, nil, authUC.Config{Secret: "test-secret"}, nil)
	users := usersUC.New(store.Users, store.Clients, store.Tasks, auth, nil)
	adapter := httpcontext.NewAdapter(0)

	handlers := Handlers{
		Auth:        apiHandler.NewAuthHandler(auth, adapter, users, nil),
		Users:       apiHandler.NewUserHandler(users, adapter, nil),
		Clients:     apiHandler.NewClientHandler(clientUC.New(store.Clients, store.Tasks, nil), adapter, users, nil),
		Tasks:       apiHandler.NewTaskHandler(taskUC.New(store.Tasks, store.Clients, store.Users, workflow.NewEngine(nil), fixedText{}, nil), adapter, users, nil),
		Comments:    apiHandler.NewCommentHandler(commentUC.New(store.Comments, store.Tasks, nil), adapter, users, nil),
		Dashboard:   apiHandler.NewDashboardHandler(dashboardUC.New(store.Users, store.Clients, store.Tasks, nil), adapter, users, nil),
		Preferences: apiHandler.NewPreferencesHandler(prefsUC.New(prefStore, nil), adapter, users, nil),
		Health:      apiHandler.NewHealthHandler(mon, adapter, nil),
	}
	tokens := tokenAuth{"admin": s.admin.ID, "member": s.member.ID, "viewer": s.viewer.ID}
	s.handler = New(handlers, middleware.Auth(tokens, 0, nil)).Handler
	return s
}

func (s *server) do(t *testing.T, method, path, token, body string, out interface{}) int {
	t.Helper()
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(path)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.SetContentType("application/json")
		req.SetBodyString(body)
	}
	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	s.handler(&ctx)

	if out != nil && len(ctx.Response.Body()) > 0 {
		var env envelope
		if err := json.Unmarshal(ctx.Response.Body(), &env); err != nil {
			t.Fatalf("%s %s: decode envelope: %v", method, path, err)
		}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out); err != nil {
				t.Fatalf("%s %s: decode data: %v", method, path, err)
			}
		}
	}
	return ctx.Response.StatusCode()
}

type taskBody struct {
	ID                 string   `json:"id"`
	Status             string   `json:"status"`
	Deadline           string   `json:"deadline"`
	AllowedTransitions []string `json:"allowed_transitions"`
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newServer(t)

	if code := s.do(t, "GET", "/api/v1/tasks", "", "", nil); code != fasthttp.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}
	if code := s.do(t, "GET", "/api/v1/tasks", "forged", "", nil); code != fasthttp.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token, got %d", code)
	}
	if code := s.do(t, "GET", "/api/v1/meta/statuses", "", "", nil); code != fasthttp.StatusOK {
		t.Fatalf("status catalog should be public, got %d", code)
	}
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)

	var created taskBody
	body := `{"client_id":"` + s.client.ID + `","title":"Launch reel","priority":"high","deadline":"2024-07-01","assigned_to":"` + s.member.ID + `"}`
	if code := s.do(t, "POST", "/api/v1/tasks", "admin", body, &created); code != fasthttp.StatusCreated {
		t.Fatalf("create: expected 201, got %d", code)
	}
	if created.Status != string(domain.StatusPending) || created.Deadline != "2024-07-01" {
		t.Fatalf("unexpected created task %+v", created)
	}

	var overridden taskBody
	withStatus := `{"client_id":"` + s.client.ID + `","title":"Pre-approved reel","status":"APPROVED"}`
	if code := s.do(t, "POST", "/api/v1/tasks", "admin", withStatus, &overridden); code != fasthttp.StatusCreated {
		t.Fatalf("create with status: expected 201, got %d", code)
	}
	if overridden.Status != string(domain.StatusPending) {
		t.Fatalf("caller status must be overridden, got %s", overridden.Status)
	}

	if code := s.do(t, "POST", "/api/v1/tasks", "member", body, nil); code != fasthttp.StatusForbidden {
		t.Fatalf("team create: expected 403, got %d", code)
	}

	var hidden []taskBody
	if code := s.do(t, "GET", "/api/v1/tasks", "viewer", "", &hidden); code != fasthttp.StatusOK || len(hidden) != 0 {
		t.Fatalf("client should not see pending work, got %d %+v", code, hidden)
	}
	if code := s.do(t, "GET", "/api/v1/tasks/"+created.ID, "viewer", "", nil); code != fasthttp.StatusNotFound {
		t.Fatalf("hidden task: expected 404, got %d", code)
	}

	transitions := "/api/v1/tasks/" + created.ID + "/transitions"
	var moved taskBody
	if code := s.do(t, "POST", transitions, "member", `{"status":"IN_PRODUCTION"}`, &moved); code != fasthttp.StatusOK {
		t.Fatalf("start production: expected 200, got %d", code)
	}
	if moved.Status != string(domain.StatusInProduction) {
		t.Fatalf("expected IN_PRODUCTION, got %s", moved.Status)
	}
	if code := s.do(t, "POST", transitions, "member", `{"status":"APPROVED"}`, nil); code != fasthttp.StatusForbidden {
		t.Fatalf("team approval: expected 403, got %d", code)
	}
	if code := s.do(t, "POST", transitions, "admin", `{"status":"ADJUSTMENTS_REQUESTED"}`, nil); code != fasthttp.StatusBadRequest {
		t.Fatalf("adjustments without comment: expected 400, got %d", code)
	}
	if code := s.do(t, "POST", transitions, "admin", `{"status":"APPROVED","comment":"great"}`, &moved); code != fasthttp.StatusOK {
		t.Fatalf("approve: expected 200, got %d", code)
	}

	var visible []taskBody
	if code := s.do(t, "GET", "/api/v1/tasks", "viewer", "", &visible); code != fasthttp.StatusOK || len(visible) != 1 {
		t.Fatalf("client should see approved work, got %d %+v", code, visible)
	}

	if code := s.do(t, "POST", "/api/v1/tasks/"+created.ID+"/comments", "viewer", `{"text":"love it"}`, nil); code != fasthttp.StatusCreated {
		t.Fatalf("client comment: expected 201, got %d", code)
	}
	var comments []domain.Comment
	if code := s.do(t, "GET", "/api/v1/tasks/"+created.ID+"/comments", "member", "", &comments); code != fasthttp.StatusOK || len(comments) != 1 {
		t.Fatalf("expected one comment, got %d %+v", code, comments)
	}

	if code := s.do(t, "DELETE", "/api/v1/tasks/"+created.ID, "admin", "", nil); code != fasthttp.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", code)
	}
}

func TestRejectsMalformedBodies(t *testing.T) {
	s := newServer(t)

	if code := s.do(t, "POST", "/api/v1/tasks", "admin", `{"title":"x","unknown":1}`, nil); code != fasthttp.StatusBadRequest {
		t.Fatalf("unknown field: expected 400, got %d", code)
	}
	if code := s.do(t, "POST", "/api/v1/tasks", "admin", `{"client_id":"`+s.client.ID+`","title":"x","priority":"LOW","deadline":"01/07/2024"}`, nil); code != fasthttp.StatusBadRequest {
		t.Fatalf("bad deadline: expected 400, got %d", code)
	}
}

func TestThemeAndBriefing(t *testing.T) {
	s := newServer(t)

	var theme struct {
		Theme string `json:"theme"`
	}
	if code := s.do(t, "GET", "/api/v1/preferences/theme", "member", "", &theme); code != fasthttp.StatusOK || theme.Theme != "light" {
		t.Fatalf("default theme: got %d %q", code, theme.Theme)
	}
	if code := s.do(t, "PUT", "/api/v1/preferences/theme", "member", `{"theme":"Dark"}`, &theme); code != fasthttp.StatusOK || theme.Theme != "dark" {
		t.Fatalf("set theme: got %d %q", code, theme.Theme)
	}
	if code := s.do(t, "PUT", "/api/v1/preferences/theme", "member", `{"theme":"sepia"}`, nil); code != fasthttp.StatusBadRequest {
		t.Fatalf("unknown theme: expected 400, got %d", code)
	}

	var briefing map[string]string
	if code := s.do(t, "POST", "/api/v1/briefings", "admin", `{"title":"Summer promo","format":"Reels","channel":"Instagram"}`, &briefing); code != fasthttp.StatusOK {
		t.Fatalf("briefing: expected 200, got %d", code)
	}
	if briefing["briefing"] != "briefing for Summer promo" {
		t.Fatalf("unexpected briefing %+v", briefing)
	}
	if code := s.do(t, "POST", "/api/v1/briefings", "member", `{"title":"Summer promo"}`, nil); code != fasthttp.StatusForbidden {
		t.Fatalf("team briefing: expected 403, got %d", code)
	}
}

func TestToggleThemeAndAllowedTransitions(t *testing.T) {
	s := newServer(t)

	var theme struct {
		Theme string `json:"theme"`
	}
	if code := s.do(t, "POST", "/api/v1/preferences/theme/toggle", "viewer", "", &theme); code != fasthttp.StatusOK || theme.Theme != "dark" {
		t.Fatalf("toggle from default: got %d %q", code, theme.Theme)
	}
	if code := s.do(t, "POST", "/api/v1/preferences/theme/toggle", "viewer", "", &theme); code != fasthttp.StatusOK || theme.Theme != "light" {
		t.Fatalf("toggle back: got %d %q", code, theme.Theme)
	}

	var created taskBody
	body := `{"client_id":"` + s.client.ID + `","title":"Menu flyer","format":"Flyers","assigned_to":"` + s.member.ID + `"}`
	if code := s.do(t, "POST", "/api/v1/tasks", "admin", body, &created); code != fasthttp.StatusCreated {
		t.Fatalf("create: expected 201, got %d", code)
	}

	var allowed []string
	if code := s.do(t, "GET", "/api/v1/tasks/"+created.ID+"/transitions", "member", "", &allowed); code != fasthttp.StatusOK {
		t.Fatalf("transitions: expected 200, got %d", code)
	}
	if len(allowed) != 1 || allowed[0] != string(domain.StatusInProduction) {
		t.Fatalf("team should only start production, got %v", allowed)
	}

	var found []taskBody
	if code := s.do(t, "GET", "/api/v1/clients/"+s.client.ID+"/tasks?q=flyers", "admin", "", &found); code != fasthttp.StatusOK || len(found) != 1 {
		t.Fatalf("client task search: got %d %+v", code, found)
	}
}
