package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/fastygo/contentflow/domain"
)

// Engine applies status commands to task snapshots.
type Engine struct {
	now func() time.Time
}

// NewEngine returns an engine stamping review times with now; nil means time.Now.
func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Apply validates cmd for actor against the task's current status and returns
// the updated task. The input task is never modified.
//
// Actor checks run before comment checks, and both run before any field is
// touched, so a failed call has no effect.
func (e *Engine) Apply(task domain.Task, cmd Command, actor domain.User) (domain.Task, error) {
	if cmd == nil {
		return task, domain.ErrInvalidPayload
	}
	if !capabilitiesFor(actor.Role).permits(task.Status, cmd) {
		return task, fmt.Errorf("%w: %s cannot move task from %s to %s",
			domain.ErrInvalidActor, actor.Role, task.Status, cmd.Target())
	}

	next := task.Clone()
	next.Status = cmd.Target()

	switch c := cmd.(type) {
	case ApproveCommand:
		if text := strings.TrimSpace(c.Comment); text != "" {
			next.ReviewComment = text
		}
		e.stamp(&next, actor)
	case RejectCommand:
		text := strings.TrimSpace(c.Reason)
		if text == "" {
			return task, domain.ErrMissingComment
		}
		next.ReviewComment = text
		e.stamp(&next, actor)
	case RequestAdjustmentCommand:
		text := strings.TrimSpace(c.Text)
		if text == "" {
			return task, domain.ErrMissingComment
		}
		next.ReviewComment = text
		e.stamp(&next, actor)
	}

	return next, nil
}

// ApplyTransition is Apply for callers holding a raw status and optional text.
func (e *Engine) ApplyTransition(task domain.Task, status domain.ContentStatus, actor domain.User, comment string) (domain.Task, error) {
	cmd, err := CommandFor(status, comment)
	if err != nil {
		return task, err
	}
	return e.Apply(task, cmd, actor)
}

func (e *Engine) stamp(task *domain.Task, actor domain.User) {
	at := e.now().UTC()
	task.ReviewedBy = actor.ID
	task.ReviewedAt = &at
}

// NewTask prepares a task for creation: the status is always PENDING and the
// review fields start empty, whatever the caller supplied.
func NewTask(task domain.Task) domain.Task {
	out := task.Clone()
	out.ID = ""
	out.Status = domain.StatusPending
	out.ReviewComment = ""
	out.ReviewedBy = ""
	out.ReviewedAt = nil
	out.CreatedAt = time.Time{}
	if out.Priority == "" {
		out.Priority = domain.PriorityMedium
	}
	out.Attachments = CompactURLs(out.Attachments)
	out.Links = CompactURLs(out.Links)
	return out
}

// CompactURLs drops blank entries and keeps the order of the rest.
func CompactURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}
