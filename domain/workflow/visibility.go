package workflow

import (
	"strings"

	"github.com/fastygo/contentflow/domain"
)

// Filter narrows a task listing after the role rules have been applied.
type Filter struct {
	ClientID string
	Search   string
}

// CanSee reports whether viewer may see task.
//
// Admins see everything, team members only their assignments, and client
// users only finished work of their own client.
func CanSee(viewer domain.User, task domain.Task) bool {
	switch viewer.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleTeam:
		return viewer.ID != "" && task.AssignedTo == viewer.ID
	case domain.RoleClient:
		return viewer.ClientID != "" && task.ClientID == viewer.ClientID && task.Status.IsDone()
	default:
		return false
	}
}

// Visible returns the tasks viewer may see, narrowed by filter. Order is kept.
func Visible(tasks []domain.Task, viewer domain.User, filter Filter) []domain.Task {
	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if !CanSee(viewer, t) {
			continue
		}
		if filter.ClientID != "" && t.ClientID != filter.ClientID {
			continue
		}
		if needle != "" && !containsFold(t.Title, needle) && !containsFold(t.Briefing, needle) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SearchClientTasks matches title or format, as the client detail listing does.
func SearchClientTasks(tasks []domain.Task, query string) []domain.Task {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return tasks
	}
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if containsFold(t.Title, needle) || containsFold(t.Format, needle) {
			out = append(out, t)
		}
	}
	return out
}

// FilterClients matches clients by name or sector.
func FilterClients(clients []domain.Client, query string) []domain.Client {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return clients
	}
	out := make([]domain.Client, 0, len(clients))
	for _, c := range clients {
		if containsFold(c.Name, needle) || containsFold(c.Sector, needle) {
			out = append(out, c)
		}
	}
	return out
}

// containsFold expects needle already lower-cased.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
