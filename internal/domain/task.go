package domain

import (
	"slices"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority normalizes raw input into a priority value.
func ParsePriority(raw string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(raw))) {
	case PriorityLow:
		return PriorityLow, nil
	case PriorityMedium, "":
		return PriorityMedium, nil
	case PriorityHigh:
		return PriorityHigh, nil
	default:
		return "", ErrInvalidPriority
	}
}

// Task is one renovation work item on the board. Project and Dependencies
// are raw references; they may point at entities that do not exist and
// consumers render placeholders for those instead of failing.
type Task struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       Status    `json:"status"`
	Project      string    `json:"project"`
	Priority     Priority  `json:"priority"`
	DueDate      string    `json:"dueDate,omitempty"`
	Estimate     float64   `json:"estimate,omitempty"`
	Tags         []string  `json:"tags"`
	Dependencies []string  `json:"dependencies"`
	Photos       []string  `json:"photos"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type TaskInput struct {
	ID           string
	Title        string
	Description  string
	Status       Status
	Project      string
	Priority     Priority
	DueDate      string
	Estimate     float64
	Tags         []string
	Dependencies []string
	Photos       []string
}

func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Project = strings.TrimSpace(in.Project)
	in.DueDate = strings.TrimSpace(in.DueDate)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if in.Status == "" {
		in.Status = StatusSomeday
	}
	if !in.Status.Valid() {
		return Task{}, ErrInvalidStatus
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !slices.Contains(validPriorities, in.Priority) {
		return Task{}, ErrInvalidPriority
	}
	if in.Estimate < 0 {
		in.Estimate = 0
	}

	ts := now.UTC()
	return Task{
		ID:           in.ID,
		Title:        in.Title,
		Description:  in.Description,
		Status:       in.Status,
		Project:      in.Project,
		Priority:     in.Priority,
		DueDate:      in.DueDate,
		Estimate:     in.Estimate,
		Tags:         normalizeTags(in.Tags),
		Dependencies: normalizeRefs(in.Dependencies),
		Photos:       normalizeRefs(in.Photos),
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}, nil
}

// SetStatus commits a status transition and stamps UpdatedAt. This is the
// only way a drop or an explicit move mutates a task's column.
func (t *Task) SetStatus(status Status, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	t.Status = status
	t.UpdatedAt = now.UTC()
	return nil
}

// UpdateDetails replaces the editable fields and stamps UpdatedAt.
func (t *Task) UpdateDetails(in TaskInput, now time.Time) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return ErrInvalidTitle
	}
	if in.Priority == "" {
		in.Priority = t.Priority
	}
	if !slices.Contains(validPriorities, in.Priority) {
		return ErrInvalidPriority
	}
	if in.Status == "" {
		in.Status = t.Status
	}
	if !in.Status.Valid() {
		return ErrInvalidStatus
	}
	if in.Estimate < 0 {
		in.Estimate = 0
	}

	t.Title = title
	t.Description = strings.TrimSpace(in.Description)
	t.Status = in.Status
	t.Project = strings.TrimSpace(in.Project)
	t.Priority = in.Priority
	t.DueDate = strings.TrimSpace(in.DueDate)
	t.Estimate = in.Estimate
	t.Tags = normalizeTags(in.Tags)
	t.Dependencies = normalizeRefs(in.Dependencies)
	t.Photos = normalizeRefs(in.Photos)
	t.UpdatedAt = now.UTC()
	return nil
}

// NormalizeTitle folds a title for index lookups: case-folded and trimmed.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// normalizeTags trims, lowercases, and de-duplicates while keeping order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, raw := range tags {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// normalizeRefs trims and de-duplicates opaque references, keeping order.
func normalizeRefs(refs []string) []string {
	out := make([]string, 0, len(refs))
	seen := map[string]struct{}{}
	for _, raw := range refs {
		ref := strings.TrimSpace(raw)
		if ref == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}
