// Package workflow holds the task status state machine, the role-scoped
// visibility rules and the derived progress metrics. Everything here is pure:
// functions take snapshots and return new values or errors.
package workflow

import (
	"strings"

	"github.com/fastygo/contentflow/domain"
)

// Command is one requested status change. The concrete types are the only
// implementations.
type Command interface {
	Target() domain.ContentStatus
	command()
}

// AdvanceCommand moves a task along the production pipeline.
type AdvanceCommand struct {
	To domain.ContentStatus
}

// ApproveCommand marks a task approved. An empty Comment keeps the existing
// review comment.
type ApproveCommand struct {
	Comment string
}

// RejectCommand rejects a task; Reason is mandatory.
type RejectCommand struct {
	Reason string
}

// RequestAdjustmentCommand sends a task back with a description of the changes.
type RequestAdjustmentCommand struct {
	Text string
}

func (c AdvanceCommand) Target() domain.ContentStatus { return c.To }
func (ApproveCommand) Target() domain.ContentStatus { return domain.StatusApproved }
func (RejectCommand) Target() domain.ContentStatus { return domain.StatusRejected }
func (RequestAdjustmentCommand) Target() domain.ContentStatus { return domain.StatusAdjustmentsRequested }
func (AdvanceCommand) command() {}
func (ApproveCommand) command() {}
func (RejectCommand) command() {}
func (RequestAdjustmentCommand) command() {}

// CommandFor converts a requested status plus optional text into a command.
// Text is only accepted where the command carries it.
func CommandFor(status domain.ContentStatus, comment string) (Command, error) {
	if !status.Valid() {
		return nil, domain.Invalidf("unknown status %q", status)
	}
	switch status {
	case domain.StatusApproved:
		return ApproveCommand{Comment: comment}, nil
	case domain.StatusRejected:
		return RejectCommand{Reason: comment}, nil
	case domain.StatusAdjustmentsRequested:
		return RequestAdjustmentCommand{Text: comment}, nil
	default:
		if strings.TrimSpace(comment) != "" {
			return nil, domain.Invalidf("status %s does not take a comment", status)
		}
		return AdvanceCommand{To: status}, nil
	}
}
