package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/contentflow/api/handler"
)

type Handlers struct {
	Auth        *apiHandler.AuthHandler
	Users       *apiHandler.UserHandler
	Clients     *apiHandler.ClientHandler
	Tasks       *apiHandler.TaskHandler
	Comments    *apiHandler.CommentHandler
	Dashboard   *apiHandler.DashboardHandler
	Preferences *apiHandler.PreferencesHandler
	Health      *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)
	r.GET("/api/v1/meta/statuses", handlers.Health.Statuses)

	// Auth routes
	r.POST("/api/v1/auth/signup", handlers.Auth.SignUp)
	r.POST("/api/v1/auth/signin", handlers.Auth.SignIn)

	// Protected routes
	api := r.Group("/api/v1")
	protect := func(method, path string, h fasthttp.RequestHandler) {
		api.Handle(method, path, authMiddleware(h))
	}

	protect(fasthttp.MethodPost, "/auth/signout", handlers.Auth.SignOut)
	protect(fasthttp.MethodPost, "/auth/refresh", handlers.Auth.Refresh)
	protect(fasthttp.MethodGet, "/auth/session", handlers.Auth.Session)

	protect(fasthttp.MethodGet, "/profile", handlers.Users.Profile)
	protect(fasthttp.MethodPut, "/profile", handlers.Users.UpdateProfile)
	protect(fasthttp.MethodPut, "/profile/password", handlers.Auth.ChangePassword)

	protect(fasthttp.MethodGet, "/users", handlers.Users.List)
	protect(fasthttp.MethodPost, "/users", handlers.Users.Create)
	protect(fasthttp.MethodGet, "/users/{id}", handlers.Users.Get)
	protect(fasthttp.MethodPut, "/users/{id}", handlers.Users.Update)
	protect(fasthttp.MethodDelete, "/users/{id}", handlers.Users.Delete)

	protect(fasthttp.MethodGet, "/clients", handlers.Clients.List)
	protect(fasthttp.MethodPost, "/clients", handlers.Clients.Create)
	protect(fasthttp.MethodGet, "/clients/{id}", handlers.Clients.Get)
	protect(fasthttp.MethodPut, "/clients/{id}", handlers.Clients.Update)
	protect(fasthttp.MethodDelete, "/clients/{id}", handlers.Clients.Delete)
	protect(fasthttp.MethodPut, "/clients/{id}/targets", handlers.Clients.SaveTargets)
	protect(fasthttp.MethodGet, "/clients/{id}/progress", handlers.Clients.Progress)
	protect(fasthttp.MethodGet, "/clients/{id}/tasks", handlers.Tasks.ClientTasks)

	protect(fasthttp.MethodGet, "/tasks", handlers.Tasks.List)
	protect(fasthttp.MethodPost, "/tasks", handlers.Tasks.Create)
	protect(fasthttp.MethodGet, "/tasks/{id}", handlers.Tasks.Get)
	protect(fasthttp.MethodPut, "/tasks/{id}", handlers.Tasks.Update)
	protect(fasthttp.MethodDelete, "/tasks/{id}", handlers.Tasks.Delete)
	protect(fasthttp.MethodGet, "/tasks/{id}/transitions", handlers.Tasks.Transitions)
	protect(fasthttp.MethodPost, "/tasks/{id}/transitions", handlers.Tasks.Transition)
	protect(fasthttp.MethodGet, "/tasks/{id}/comments", handlers.Comments.List)
	protect(fasthttp.MethodPost, "/tasks/{id}/comments", handlers.Comments.Create)
	protect(fasthttp.MethodDelete, "/comments/{id}", handlers.Comments.Delete)
	protect(fasthttp.MethodPost, "/briefings", handlers.Tasks.Briefing)

	protect(fasthttp.MethodGet, "/dashboard", handlers.Dashboard.Get)
	protect(fasthttp.MethodGet, "/preferences/theme", handlers.Preferences.GetTheme)
	protect(fasthttp.MethodPut, "/preferences/theme", handlers.Preferences.SetTheme)
	protect(fasthttp.MethodPost, "/preferences/theme/toggle", handlers.Preferences.ToggleTheme)

	return r
}
