package domain

import "strings"

// Status is one bucket of the fixed board column set.
type Status string

const (
	StatusSomeday    Status = "someday"
	StatusPlanning   Status = "planning"
	StatusReady      Status = "ready"
	StatusInProgress Status = "in-progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
)

// BoardStatuses lists every status in canonical column order.
func BoardStatuses() []Status {
	return []Status{
		StatusSomeday,
		StatusPlanning,
		StatusReady,
		StatusInProgress,
		StatusBlocked,
		StatusDone,
	}
}

// statusLabels maps statuses to their column display names.
var statusLabels = map[Status]string{
	StatusSomeday:    "Someday",
	StatusPlanning:   "Planning",
	StatusReady:      "Ready",
	StatusInProgress: "In Progress",
	StatusBlocked:    "Blocked",
	StatusDone:       "Done",
}

// Label returns the column display name for a status.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Valid reports whether the status belongs to the fixed set.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Position returns the column index of a status, or -1 when unknown.
func (s Status) Position() int {
	for idx, candidate := range BoardStatuses() {
		if candidate == s {
			return idx
		}
	}
	return -1
}

// ParseStatus normalizes raw input into a member of the fixed status set.
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, " ", "-")
	normalized = strings.ReplaceAll(normalized, "_", "-")
	switch normalized {
	case "someday", "later", "icebox":
		return StatusSomeday, nil
	case "planning", "plan":
		return StatusPlanning, nil
	case "ready", "todo", "to-do":
		return StatusReady, nil
	case "in-progress", "progress", "doing", "active":
		return StatusInProgress, nil
	case "blocked", "waiting", "on-hold":
		return StatusBlocked, nil
	case "done", "complete", "completed":
		return StatusDone, nil
	default:
		return "", ErrInvalidStatus
	}
}
