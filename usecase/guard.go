// Package usecase holds the application services; shared role guards live here.
package usecase

import (
	"fmt"

	"github.com/fastygo/contentflow/domain"
)

// RequireAdmin rejects every actor that is not an Admin.
func RequireAdmin(actor domain.User, action string) error {
	if actor.IsAdmin() {
		return nil
	}
	return fmt.Errorf("%w: %s requires an admin", domain.ErrInvalidActor, action)
}

// RequireStaff rejects Client users, which only read finished work.
func RequireStaff(actor domain.User, action string) error {
	if actor.Role == domain.RoleAdmin || actor.Role == domain.RoleTeam {
		return nil
	}
	return fmt.Errorf("%w: %s is not available to %s users", domain.ErrInvalidActor, action, actor.Role)
}
