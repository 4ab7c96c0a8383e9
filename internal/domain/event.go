package domain

import (
	"strings"
	"time"
)

// Event is one dated calendar entry tied to a project by raw reference.
// DurationMinutes of zero means all-day.
type Event struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Date            string    `json:"date"`
	Project         string    `json:"project"`
	DurationMinutes int       `json:"durationMinutes"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type EventInput struct {
	ID              string
	Title           string
	Date            string
	Project         string
	DurationMinutes int
	Notes           string
}

func NewEvent(in EventInput, now time.Time) (Event, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Date = strings.TrimSpace(in.Date)

	if in.ID == "" {
		return Event{}, ErrInvalidID
	}
	if in.Title == "" {
		return Event{}, ErrInvalidTitle
	}
	if in.Date == "" {
		return Event{}, ErrInvalidDate
	}
	if in.DurationMinutes < 0 {
		in.DurationMinutes = 0
	}

	ts := now.UTC()
	return Event{
		ID:              in.ID,
		Title:           in.Title,
		Date:            in.Date,
		Project:         strings.TrimSpace(in.Project),
		DurationMinutes: in.DurationMinutes,
		Notes:           strings.TrimSpace(in.Notes),
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}, nil
}

// AllDay reports whether the event spans a whole day.
func (e Event) AllDay() bool {
	return e.DurationMinutes == 0
}
