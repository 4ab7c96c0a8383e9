package domain

import (
	"testing"
	"time"
)

func TestNewTaskDefaults(t *testing.T) {
	now := time.Date(2026, 8, 14, 9, 30, 0, 0, time.UTC)
	task, err := NewTask(TaskInput{
		ID:    "t1",
		Title: "  Order tile  ",
		Tags:  []string{" Tile ", "kitchen", "tile"},
	}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if task.Title != "Order tile" {
		t.Fatalf("unexpected title %q", task.Title)
	}
	if task.Status != StatusSomeday {
		t.Fatalf("unexpected default status %q", task.Status)
	}
	if task.Priority != PriorityMedium {
		t.Fatalf("unexpected default priority %q", task.Priority)
	}
	if len(task.Tags) != 2 || task.Tags[0] != "tile" || task.Tags[1] != "kitchen" {
		t.Fatalf("unexpected tags %#v", task.Tags)
	}
	if !task.CreatedAt.Equal(task.UpdatedAt) {
		t.Fatal("expected created_at == updated_at on a fresh task")
	}
}

func TestNewTaskValidation(t *testing.T) {
	now := time.Now()
	if _, err := NewTask(TaskInput{Title: "ok"}, now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewTask(TaskInput{ID: "t1", Title: "   "}, now); err != ErrInvalidTitle {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
	if _, err := NewTask(TaskInput{ID: "t1", Title: "ok", Status: "shipped"}, now); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := NewTask(TaskInput{ID: "t1", Title: "ok", Priority: "urgent"}, now); err != ErrInvalidPriority {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestTaskSetStatusStampsUpdatedAt(t *testing.T) {
	now := time.Date(2026, 8, 14, 9, 30, 0, 0, time.UTC)
	task, err := NewTask(TaskInput{ID: "t1", Title: "Demo wall", Status: StatusPlanning}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	later := now.Add(time.Hour)
	if err := task.SetStatus(StatusBlocked, later); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if task.Status != StatusBlocked {
		t.Fatalf("unexpected status %q", task.Status)
	}
	if !task.UpdatedAt.Equal(later) {
		t.Fatalf("expected updated_at %v, got %v", later, task.UpdatedAt)
	}
	if err := task.SetStatus("shipped", later); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestTaskUpdateDetailsKeepsCurrentOnBlank(t *testing.T) {
	now := time.Now()
	task, err := NewTask(TaskInput{
		ID:       "t1",
		Title:    "Paint hallway",
		Status:   StatusReady,
		Priority: PriorityHigh,
	}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if err := task.UpdateDetails(TaskInput{Title: "Paint hallway and trim"}, now.Add(time.Minute)); err != nil {
		t.Fatalf("UpdateDetails() error = %v", err)
	}
	if task.Status != StatusReady {
		t.Fatalf("blank status should keep current, got %q", task.Status)
	}
	if task.Priority != PriorityHigh {
		t.Fatalf("blank priority should keep current, got %q", task.Priority)
	}
	if err := task.UpdateDetails(TaskInput{Title: "  "}, now); err != ErrInvalidTitle {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"planning", StatusPlanning},
		{"  In Progress ", StatusInProgress},
		{"in_progress", StatusInProgress},
		{"doing", StatusInProgress},
		{"todo", StatusReady},
		{"waiting", StatusBlocked},
		{"COMPLETED", StatusDone},
		{"later", StatusSomeday},
	}
	for _, tc := range cases {
		got, err := ParseStatus(tc.raw)
		if err != nil {
			t.Fatalf("ParseStatus(%q) error = %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
	if _, err := ParseStatus("shipped"); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestBoardStatusesOrder(t *testing.T) {
	statuses := BoardStatuses()
	if len(statuses) != 6 {
		t.Fatalf("expected 6 statuses, got %d", len(statuses))
	}
	for idx, status := range statuses {
		if status.Position() != idx {
			t.Fatalf("status %q position = %d, want %d", status, status.Position(), idx)
		}
		if !status.Valid() {
			t.Fatalf("status %q should be valid", status)
		}
	}
}

func TestNewProjectValidation(t *testing.T) {
	now := time.Now()
	if _, err := NewProject(ProjectInput{Name: "Kitchen"}, now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewProject(ProjectInput{ID: "p1", Name: "  "}, now); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := NewProject(ProjectInput{ID: "p1", Name: "Kitchen", Progress: 120}, now); err != ErrInvalidProgress {
		t.Fatalf("expected ErrInvalidProgress, got %v", err)
	}
	p, err := NewProject(ProjectInput{ID: "p1", Name: "Kitchen", Progress: 40}, now)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	if p.Status != "planning" || p.Priority != PriorityMedium {
		t.Fatalf("unexpected defaults %q/%q", p.Status, p.Priority)
	}
}

func TestNewEventAllDay(t *testing.T) {
	now := time.Now()
	event, err := NewEvent(EventInput{ID: "e1", Title: "Contractor visit", Date: "2026-09-02"}, now)
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	if !event.AllDay() {
		t.Fatal("zero duration should mean all-day")
	}
	if _, err := NewEvent(EventInput{ID: "e1", Title: "x", Date: " "}, now); err != ErrInvalidDate {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestNewDocumentDefaultsType(t *testing.T) {
	now := time.Now()
	doc, err := NewDocument(DocumentInput{ID: "d1", Title: "Tile quote", Type: " PDF "}, now)
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	if doc.Type != "pdf" {
		t.Fatalf("unexpected type %q", doc.Type)
	}
	doc, err = NewDocument(DocumentInput{ID: "d2", Title: "Permit"}, now)
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	if doc.Type != "document" {
		t.Fatalf("unexpected default type %q", doc.Type)
	}
}
