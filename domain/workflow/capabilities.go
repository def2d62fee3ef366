package workflow

import "github.com/fastygo/contentflow/domain"

// capabilities answers whether a command may be applied to a task in a given
// status. Each role gets its own set.
type capabilities interface {
	permits(from domain.ContentStatus, cmd Command) bool
}

// pipeline maps a target status to the statuses it may be entered from.
type pipeline map[domain.ContentStatus][]domain.ContentStatus

func (p pipeline) allows(from, to domain.ContentStatus) bool {
	for _, s := range p[to] {
		if s == from {
			return true
		}
	}
	return false
}

// Team members walk the pipeline one step at a time and never review.
var teamPipeline = pipeline{
	domain.StatusInProduction: {domain.StatusPending, domain.StatusToProduce, domain.StatusAdjustmentsRequested},
	domain.StatusInReview:     {domain.StatusInProduction},
	domain.StatusDelivered:    {domain.StatusApproved},
}

// Admins review from any status and own scheduling and delivery.
var adminPipeline = pipeline{
	domain.StatusToProduce: {domain.StatusPending},
	domain.StatusDelivered: {domain.StatusApproved},
}

type teamCapabilities struct{}

func (teamCapabilities) permits(from domain.ContentStatus, cmd Command) bool {
	advance, ok := cmd.(AdvanceCommand)
	if !ok {
		return false
	}
	return teamPipeline.allows(from, advance.To)
}

type adminCapabilities struct{}

func (adminCapabilities) permits(from domain.ContentStatus, cmd Command) bool {
	switch c := cmd.(type) {
	case ApproveCommand, RejectCommand, RequestAdjustmentCommand:
		return true
	case AdvanceCommand:
		return adminPipeline.allows(from, c.To)
	default:
		return false
	}
}

type noCapabilities struct{}

func (noCapabilities) permits(domain.ContentStatus, Command) bool { return false }

func capabilitiesFor(role domain.Role) capabilities {
	switch role {
	case domain.RoleAdmin:
		return adminCapabilities{}
	case domain.RoleTeam:
		return teamCapabilities{}
	default:
		return noCapabilities{}
	}
}

// Allowed lists the statuses the actor may move the task to right now.
// Review outcomes are listed for admins regardless of the current status.
func Allowed(task domain.Task, actor domain.User) []domain.ContentStatus {
	caps := capabilitiesFor(actor.Role)
	var out []domain.ContentStatus
	for _, status := range domain.Statuses {
		var cmd Command
		switch status {
		case domain.StatusApproved:
			cmd = ApproveCommand{}
		case domain.StatusRejected:
			cmd = RejectCommand{}
		case domain.StatusAdjustmentsRequested:
			cmd = RequestAdjustmentCommand{}
		default:
			cmd = AdvanceCommand{To: status}
		}
		if caps.permits(task.Status, cmd) {
			out = append(out, status)
		}
	}
	return out
}
