package store

import (
	"context"
	"slices"

	"github.com/lab-foster/ProjectAtlas2/internal/domain"
)

// Snapshot carries every entity collection as one unit. Persisting a
// snapshot is a total overwrite of the stored state, never a merge; the
// last writer wins across concurrently running instances.
type Snapshot struct {
	Tasks     []domain.Task     `json:"tasks"`
	Projects  []domain.Project  `json:"projects"`
	Events    []domain.Event    `json:"events"`
	Documents []domain.Document `json:"documents"`
}

// Persister reads and writes whole snapshots. Implementations report
// ok=false from LoadSnapshot when no usable state exists yet (missing or
// malformed), which the store answers with the seed set.
type Persister interface {
	LoadSnapshot(ctx context.Context) (Snapshot, bool, error)
	SaveSnapshot(ctx context.Context, snap Snapshot) error
}

// Notifier receives one change signal after a persisted mutation.
type Notifier interface {
	Notify(ctx context.Context)
}

// Clone returns a deep copy so callers can hold a snapshot without
// aliasing store-owned slices.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Tasks:     make([]domain.Task, len(s.Tasks)),
		Projects:  slices.Clone(s.Projects),
		Events:    slices.Clone(s.Events),
		Documents: slices.Clone(s.Documents),
	}
	for i, task := range s.Tasks {
		out.Tasks[i] = cloneTask(task)
	}
	return out
}

func cloneTask(t domain.Task) domain.Task {
	t.Tags = slices.Clone(t.Tags)
	t.Dependencies = slices.Clone(t.Dependencies)
	t.Photos = slices.Clone(t.Photos)
	return t
}
