package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/fastygo/contentflow/domain"
)

// Decode reads a JSON body into v. Unknown fields and trailing data are rejected.
func Decode(body []byte, v interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.Invalidf("request body is required")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "invalid payload: "+err.Error(), err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.Invalidf("invalid payload: unexpected data after JSON body")
	}
	return nil
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	Current string `json:"current_password"`
	Next    string `json:"new_password"`
}

type UserCreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar"`
	ClientID string `json:"client_id"`
	Password string `json:"password"`
}

// UserUpdateRequest carries only the fields to change.
type UserUpdateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Avatar   *string `json:"avatar"`
	ClientID *string `json:"client_id"`
}

type TargetPayload struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

func toTargets(in []TargetPayload) []domain.Target {
	out := make([]domain.Target, 0, len(in))
	for _, t := range in {
		out = append(out, domain.Target{Label: t.Label, Count: t.Count})
	}
	return out
}

// ClientRequest creates or patches a client. On update a missing targets
// field keeps the stored targets and an empty list clears them.
type ClientRequest struct {
	Name    *string          `json:"name"`
	Sector  *string          `json:"sector"`
	Logo    *string          `json:"logo"`
	Active  *bool            `json:"active"`
	Targets *[]TargetPayload `json:"targets"`
}

// ToClient builds a new client; active defaults to true.
func (r ClientRequest) ToClient() domain.Client {
	client := domain.Client{Active: true, Targets: []domain.Target{}}
	if r.Name != nil {
		client.Name = *r.Name
	}
	if r.Sector != nil {
		client.Sector = *r.Sector
	}
	if r.Logo != nil {
		client.Logo = *r.Logo
	}
	if r.Active != nil {
		client.Active = *r.Active
	}
	if r.Targets != nil {
		client.Targets = toTargets(*r.Targets)
	}
	return client
}

// TargetList returns the requested targets, or nil when the field was absent.
func (r ClientRequest) TargetList() *[]domain.Target {
	if r.Targets == nil {
		return nil
	}
	targets := toTargets(*r.Targets)
	return &targets
}

type TargetsRequest struct {
	Targets []TargetPayload `json:"targets"`
}

func (r TargetsRequest) ToTargets() []domain.Target {
	return toTargets(r.Targets)
}

type TaskCreateRequest struct {
	ClientID    string   `json:"client_id"`
	Title       string   `json:"title"`
	Briefing    string   `json:"briefing"`
	Format      string   `json:"format"`
	Channel     string   `json:"channel"`
	Priority    string   `json:"priority"`
	Deadline    string   `json:"deadline"`
	AssignedTo  string   `json:"assigned_to"`
	Attachments []string `json:"attachments"`
	Links       []string `json:"links"`
	// Status is accepted but a new task always starts PENDING.
	Status      string   `json:"status"`
}

func (r TaskCreateRequest) ToTask() (domain.Task, error) {
	deadline, err := ParseDeadline(r.Deadline)
	if err != nil {
		return domain.Task{}, err
	}
	return domain.Task{
		ClientID:    strings.TrimSpace(r.ClientID),
		Title:       r.Title,
		Briefing:    r.Briefing,
		Format:      strings.TrimSpace(r.Format),
		Channel:     strings.TrimSpace(r.Channel),
		Priority:    domain.Priority(strings.ToUpper(strings.TrimSpace(r.Priority))),
		Deadline:    deadline,
		AssignedTo:  strings.TrimSpace(r.AssignedTo),
		Attachments: r.Attachments,
		Links:       r.Links,
		Status:      domain.ContentStatus(strings.ToUpper(strings.TrimSpace(r.Status))),
	}, nil
}

// TaskUpdateRequest carries only the fields to change; status changes go
// through TransitionRequest.
type TaskUpdateRequest struct {
	ClientID    *string   `json:"client_id"`
	Title       *string   `json:"title"`
	Briefing    *string   `json:"briefing"`
	Format      *string   `json:"format"`
	Channel     *string   `json:"channel"`
	Priority    *string   `json:"priority"`
	Deadline    *string   `json:"deadline"`
	AssignedTo  *string   `json:"assigned_to"`
	Attachments *[]string `json:"attachments"`
	Links       *[]string `json:"links"`
}

type TransitionRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

type BriefingRequest struct {
	Title   string `json:"title"`
	Format  string `json:"format"`
	Channel string `json:"channel"`
}

type ThemeRequest struct {
	Theme string `json:"theme"`
}

// ParseDeadline reads a YYYY-MM-DD date; an empty value means no deadline.
func ParseDeadline(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	deadline, err := domain.ParseDate(value)
	if err != nil {
		return time.Time{}, domain.Invalidf("deadline %q must use the YYYY-MM-DD format", value)
	}
	return deadline, nil
}
