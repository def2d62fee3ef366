package transport

import (
	"encoding/json"

	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/domain/workflow"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// TaskView renders a task with its deadline as a calendar date.
type TaskView struct {
	domain.Task
	Deadline           string                 `json:"deadline"`
	AllowedTransitions []domain.ContentStatus `json:"allowed_transitions,omitempty"`
}

func NewTaskView(task domain.Task) TaskView {
	task.Normalize()
	return TaskView{Task: task, Deadline: task.DeadlineDate()}
}

func NewTaskViews(tasks []domain.Task) []TaskView {
	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskView(t))
	}
	return out
}

type DayAgendaView struct {
	Date  string     `json:"date"`
	Tasks []TaskView `json:"tasks"`
}

func NewAgendaView(days []workflow.DayAgenda) []DayAgendaView {
	out := make([]DayAgendaView, 0, len(days))
	for _, d := range days {
		out = append(out, DayAgendaView{Date: d.Date, Tasks: NewTaskViews(d.Tasks)})
	}
	return out
}

// SessionView is returned by the auth endpoints.
type SessionView struct {
	Session *domain.Session `json:"session"`
	User    *domain.User    `json:"user"`
	Token   string          `json:"token,omitempty"`
}
