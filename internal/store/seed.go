package store

import (
	"time"

	"github.com/lab-foster/ProjectAtlas2/internal/domain"
)

// Seed returns the fixed starter snapshot used when no persisted state
// exists: three renovation projects, eight tasks spread across all six
// board columns, and a handful of events and documents. Seed ids are
// deterministic so a fresh data directory always resolves the same way.
func Seed(now time.Time) Snapshot {
	return Snapshot{
		Projects: []domain.Project{
			seedProject(domain.ProjectInput{
				ID:       "proj-kitchen",
				Name:     "Kitchen Remodel",
				Status:   "in-progress",
				Progress: 45,
				Budget:   24000,
				Spent:    11250,
				Priority: domain.PriorityHigh,
			}, now),
			seedProject(domain.ProjectInput{
				ID:       "proj-bathroom",
				Name:     "Bathroom Refresh",
				Status:   "planning",
				Progress: 10,
				Budget:   8500,
				Spent:    600,
				Priority: domain.PriorityMedium,
			}, now),
			seedProject(domain.ProjectInput{
				ID:       "proj-deck",
				Name:     "Deck & Garden",
				Status:   "planning",
				Progress: 0,
				Budget:   6000,
				Priority: domain.PriorityLow,
			}, now),
		},
		Tasks: []domain.Task{
			seedTask(domain.TaskInput{
				ID:          "task-cabinet-quotes",
				Title:       "Collect cabinet quotes",
				Description: "Get at least three quotes for the new cabinet run, including installation.",
				Status:      domain.StatusDone,
				Project:     "proj-kitchen",
				Priority:    domain.PriorityHigh,
				Estimate:    4,
				Tags:        []string{"kitchen", "budget"},
			}, now),
			seedTask(domain.TaskInput{
				ID:           "task-order-counters",
				Title:        "Order countertops",
				Description:  "Quartz, template after cabinets are in.",
				Status:       domain.StatusBlocked,
				Project:      "proj-kitchen",
				Priority:     domain.PriorityHigh,
				DueDate:      "2026-09-15",
				Estimate:     2,
				Tags:         []string{"kitchen"},
				Dependencies: []string{"task-install-cabinets"},
			}, now),
			seedTask(domain.TaskInput{
				ID:          "task-install-cabinets",
				Title:       "Install base cabinets",
				Description: "Installer booked; clear the room the night before.",
				Status:      domain.StatusInProgress,
				Project:     "proj-kitchen",
				Priority:    domain.PriorityHigh,
				DueDate:     "2026-09-08",
				Estimate:    16,
				Tags:        []string{"kitchen", "contractor"},
			}, now),
			seedTask(domain.TaskInput{
				ID:          "task-pick-backsplash",
				Title:       "Pick backsplash tile",
				Description: "Narrow the shortlist to two and order samples.",
				Status:      domain.StatusReady,
				Project:     "proj-kitchen",
				Priority:    domain.PriorityMedium,
				Estimate:    3,
				Tags:        []string{"kitchen", "design"},
			}, now),
			seedTask(domain.TaskInput{
				ID:          "task-vanity-layout",
				Title:       "Sketch vanity layout",
				Description: "Measure twice; the drain sits off-center.",
				Status:      domain.StatusPlanning,
				Project:     "proj-bathroom",
				Priority:    domain.PriorityMedium,
				Estimate:    2,
				Tags:        []string{"bathroom", "design"},
			}, now),
			seedTask(domain.TaskInput{
				ID:       "task-regrout-shower",
				Title:    "Regrout shower",
				Status:   domain.StatusReady,
				Project:  "proj-bathroom",
				Priority: domain.PriorityLow,
				Estimate: 5,
				Tags:     []string{"bathroom"},
			}, now),
			seedTask(domain.TaskInput{
				ID:          "task-deck-permit",
				Title:       "Check deck permit rules",
				Description: "City site says decks under 30in may be exempt; confirm by phone.",
				Status:      domain.StatusSomeday,
				Project:     "proj-deck",
				Priority:    domain.PriorityLow,
				Tags:        []string{"deck", "permits"},
			}, now),
			seedTask(domain.TaskInput{
				ID:       "task-raised-beds",
				Title:    "Build raised garden beds",
				Status:   domain.StatusSomeday,
				Project:  "proj-deck",
				Priority: domain.PriorityLow,
				Estimate: 8,
				Tags:     []string{"garden"},
			}, now),
		},
		Events: []domain.Event{
			seedEvent(domain.EventInput{
				ID:              "event-installer",
				Title:           "Cabinet installer on site",
				Date:            "2026-09-08",
				Project:         "proj-kitchen",
				DurationMinutes: 480,
				Notes:           "Arrives 8am. Keep the driveway clear.",
			}, now),
			seedEvent(domain.EventInput{
				ID:              "event-template",
				Title:           "Countertop templating",
				Date:            "2026-09-16",
				Project:         "proj-kitchen",
				DurationMinutes: 90,
			}, now),
			seedEvent(domain.EventInput{
				ID:      "event-tile-sale",
				Title:   "Tile outlet end-of-season sale",
				Date:    "2026-09-20",
				Project: "proj-bathroom",
			}, now),
		},
		Documents: []domain.Document{
			seedDocument(domain.DocumentInput{
				ID:      "doc-cabinet-contract",
				Type:    "contract",
				Project: "proj-kitchen",
				Title:   "Cabinet supply & install contract",
				Date:    "2026-08-12",
				Size:    "240 KB",
			}, now),
			seedDocument(domain.DocumentInput{
				ID:      "doc-counter-quote",
				Type:    "quote",
				Project: "proj-kitchen",
				Title:   "Quartz countertop quote",
				Date:    "2026-08-20",
				Size:    "96 KB",
			}, now),
			seedDocument(domain.DocumentInput{
				ID:      "doc-bath-moodboard",
				Type:    "design",
				Project: "proj-bathroom",
				Title:   "Bathroom moodboard",
				Date:    "2026-08-25",
				Size:    "1.8 MB",
			}, now),
		},
	}
}

func seedTask(in domain.TaskInput, now time.Time) domain.Task {
	task, err := domain.NewTask(in, now)
	if err != nil {
		panic("store: invalid seed task: " + err.Error())
	}
	return task
}

func seedProject(in domain.ProjectInput, now time.Time) domain.Project {
	project, err := domain.NewProject(in, now)
	if err != nil {
		panic("store: invalid seed project: " + err.Error())
	}
	return project
}

func seedEvent(in domain.EventInput, now time.Time) domain.Event {
	event, err := domain.NewEvent(in, now)
	if err != nil {
		panic("store: invalid seed event: " + err.Error())
	}
	return event
}

func seedDocument(in domain.DocumentInput, now time.Time) domain.Document {
	doc, err := domain.NewDocument(in, now)
	if err != nil {
		panic("store: invalid seed document: " + err.Error())
	}
	return doc
}
