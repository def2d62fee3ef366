package domain

import (
	"strings"
	"time"
)

// ContentStatus is the workflow state of a task.
type ContentStatus string

const (
	StatusPending              ContentStatus = "PENDING"
	StatusToProduce            ContentStatus = "TO_PRODUCE"
	StatusInProduction         ContentStatus = "IN_PRODUCTION"
	StatusInReview             ContentStatus = "IN_REVIEW"
	StatusApproved             ContentStatus = "APPROVED"
	StatusRejected             ContentStatus = "REJECTED"
	StatusAdjustmentsRequested ContentStatus = "ADJUSTMENTS_REQUESTED"
	StatusDelivered            ContentStatus = "DELIVERED"
)

// Statuses lists every status in pipeline order.
var Statuses = []ContentStatus{
	StatusPending,
	StatusToProduce,
	StatusInProduction,
	StatusInReview,
	StatusApproved,
	StatusRejected,
	StatusAdjustmentsRequested,
	StatusDelivered,
}

func (s ContentStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsDone reports whether the status counts toward quota completion.
func (s ContentStatus) IsDone() bool {
	return s == StatusApproved || s == StatusDelivered
}

// IsReviewOutcome reports whether the status is settable only through review.
func (s ContentStatus) IsReviewOutcome() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusAdjustmentsRequested
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// DateLayout is the wire format of calendar dates such as deadlines.
const DateLayout = "2006-01-02"

// Task is one content item in production.
type Task struct {
	ID            string        `json:"id"`
	ClientID      string        `json:"client_id"`
	Title         string        `json:"title"`
	Briefing      string        `json:"briefing"`
	Format        string        `json:"format"`
	Channel       string        `json:"channel"`
	Priority      Priority      `json:"priority"`
	Status        ContentStatus `json:"status"`
	Deadline      time.Time     `json:"deadline"`
	AssignedTo    string        `json:"assigned_to,omitempty"`
	Attachments   []string      `json:"attachments"`
	Links         []string      `json:"links"`
	CreatedAt     time.Time     `json:"created_at"`
	ReviewComment string        `json:"review_comment,omitempty"`
	ReviewedBy    string        `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time    `json:"reviewed_at,omitempty"`
}

// Clone returns a deep copy so callers can derive new snapshots safely.
func (t Task) Clone() Task {
	out := t
	out.Attachments = append(make([]string, 0, len(t.Attachments)), t.Attachments...)
	out.Links = append(make([]string, 0, len(t.Links)), t.Links...)
	if t.ReviewedAt != nil {
		at := *t.ReviewedAt
		out.ReviewedAt = &at
	}
	return out
}

// Normalize replaces nil url lists with empty ones.
func (t *Task) Normalize() {
	if t.Attachments == nil {
		t.Attachments = []string{}
	}
	if t.Links == nil {
		t.Links = []string{}
	}
}

// DeadlineDate renders the deadline as a calendar date.
func (t Task) DeadlineDate() string {
	if t.Deadline.IsZero() {
		return ""
	}
	return t.Deadline.Format(DateLayout)
}

func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if t.ClientID == "" {
		return Invalidf("task must belong to a client")
	}
	if strings.TrimSpace(t.Title) == "" {
		return Invalidf("task title is required")
	}
	if !t.Priority.Valid() {
		return Invalidf("unknown priority %q", t.Priority)
	}
	return nil
}

// ParseDate reads a calendar date in DateLayout as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}
