package transport

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fastygo/contentflow/domain"
)

func TestDecodeRejectsUnknownFields(t *testing.T) {
	cases := []struct {
		name string
		body string
		ok   bool
	}{
		{name: "valid", body: `{"status":"IN_REVIEW","comment":""}`, ok: true},
		{name: "unknown field", body: `{"status":"APPROVED","reviewed_by":"me"}`},
		{name: "empty", body: "  "},
		{name: "trailing data", body: `{"status":"APPROVED"} {}`},
		{name: "wrong type", body: `{"status":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req TransitionRequest
			err := Decode([]byte(tc.body), &req)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if !tc.ok && !domain.IsDomainError(err, domain.ErrCodeInvalid) {
				t.Fatalf("expected INVALID, got %v", err)
			}
		})
	}
}

func TestTaskCreateRequestToTask(t *testing.T) {
	req := TaskCreateRequest{ClientID: " c1 ", Title: "Reel", Priority: "high", Deadline: "2024-06-25"}
	task, err := req.ToTask()
	if err != nil {
		t.Fatalf("to task: %v", err)
	}
	if task.ClientID != "c1" || task.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected task %+v", task)
	}
	if !task.Deadline.Equal(time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected deadline %v", task.Deadline)
	}

	req.Deadline = "25/06/2024"
	if _, err := req.ToTask(); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected INVALID deadline, got %v", err)
	}
}

func TestTaskCreateRequestAcceptsStatus(t *testing.T) {
	var req TaskCreateRequest
	if err := Decode([]byte(`{"client_id":"c1","title":"Reel","status":"approved"}`), &req); err != nil {
		t.Fatalf("status on create should decode, got %v", err)
	}
	task, err := req.ToTask()
	if err != nil {
		t.Fatalf("to task: %v", err)
	}
	if task.Status != domain.StatusApproved {
		t.Fatalf("expected the status to reach the engine untouched, got %q", task.Status)
	}
}

func TestTaskViewRendersDateAndEmptyLists(t *testing.T) {
	view := NewTaskView(domain.Task{ID: "t1", Deadline: time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC)})
	raw, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	if !strings.Contains(body, `"deadline":"2024-06-25"`) {
		t.Fatalf("expected calendar date, got %s", body)
	}
	if !strings.Contains(body, `"attachments":[]`) || !strings.Contains(body, `"links":[]`) {
		t.Fatalf("expected empty lists, got %s", body)
	}
}

func TestCatalogCoversEveryStatus(t *testing.T) {
	catalog := NewCatalog()
	if len(catalog.Statuses) != len(domain.Statuses) || len(catalog.Priorities) != 3 {
		t.Fatalf("unexpected catalog sizes %d %d", len(catalog.Statuses), len(catalog.Priorities))
	}
	for i, meta := range catalog.Statuses {
		if meta.Value != string(domain.Statuses[i]) || meta.Label == "" || meta.Color == "" {
			t.Fatalf("incomplete metadata %+v", meta)
		}
	}
}
