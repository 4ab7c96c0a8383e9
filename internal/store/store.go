package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lab-foster/ProjectAtlas2/internal/domain"
)

// IDGenerator produces unique entity identifiers.
type IDGenerator func() string

// Clock reports the current time.
type Clock func() time.Time

// Store owns the in-memory entity collections and every mutation path.
// Mutations stamp UpdatedAt, rebuild the task index, persist the whole
// snapshot, and notify the sync bus; reads hand out copies so callers
// never alias store-owned state.
type Store struct {
	mu        sync.Mutex
	persister Persister
	bus       Notifier
	newID     IDGenerator
	now       Clock

	snap  Snapshot
	index Index
}

// New constructs a store over the given persister. The bus may be nil
// when no cross-instance sync is wanted.
func New(p Persister, bus Notifier, newID IDGenerator, now Clock) *Store {
	return &Store{persister: p, bus: bus, newID: newID, now: now}
}

// Load reads the persisted snapshot, or falls back to the seed set when
// nothing usable exists, and rebuilds the index. A fresh seed is
// persisted immediately, without a sync notification, so the next load
// finds real state instead of seeding again. Malformed persisted data is
// treated the same as missing data and never surfaces to the caller.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok, err := s.persister.LoadSnapshot(ctx)
	if err != nil || !ok {
		s.snap = Seed(s.now())
		s.index = buildIndex(s.snap.Tasks)
		if err := s.persister.SaveSnapshot(ctx, s.snap); err != nil {
			return fmt.Errorf("persist seed: %w", err)
		}
		return nil
	}
	s.snap = snap
	s.index = buildIndex(s.snap.Tasks)
	return nil
}

// Reload re-reads persisted state without seeding, for use when another
// instance signalled a change. Unreadable state keeps the current
// in-memory collections.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok, err := s.persister.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("reload snapshot: %w", err)
	}
	if !ok {
		return nil
	}
	s.snap = snap
	s.index = buildIndex(s.snap.Tasks)
	return nil
}

// Save persists the current snapshot. When emit is true the sync bus is
// notified after a successful write; loads and sync-triggered reloads
// save with emit=false to keep instances from waking each other forever.
func (s *Store) Save(ctx context.Context, emit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, emit)
}

func (s *Store) saveLocked(ctx context.Context, emit bool) error {
	if err := s.persister.SaveSnapshot(ctx, s.snap); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	if emit && s.bus != nil {
		s.bus.Notify(ctx)
	}
	return nil
}

// Snapshot returns a deep copy of the current collections.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Tasks returns a copy of the task collection in insertion order.
func (s *Store) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Task, len(s.snap.Tasks))
	for i, t := range s.snap.Tasks {
		out[i] = cloneTask(t)
	}
	return out
}

// Projects returns a copy of the project collection.
func (s *Store) Projects() []domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Project(nil), s.snap.Projects...)
}

// Events returns a copy of the event collection.
func (s *Store) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Event(nil), s.snap.Events...)
}

// Documents returns a copy of the document collection.
func (s *Store) Documents() []domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Document(nil), s.snap.Documents...)
}

// Index returns the current task index. The returned maps are replaced
// wholesale on every mutation, so a held Index stays internally
// consistent even as the store moves on.
func (s *Store) Index() Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// TaskByID looks up a task by id.
func (s *Store) TaskByID(id string) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.index.TaskByID(id)
	if !ok {
		return domain.Task{}, false
	}
	return cloneTask(task), true
}

// ProjectByID looks up a project by id.
func (s *Store) ProjectByID(id string) (domain.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.snap.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Project{}, false
}

// CreateTask validates in, appends the new task, and persists.
func (s *Store) CreateTask(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.ID == "" {
		in.ID = s.newID()
	}
	task, err := domain.NewTask(in, s.now())
	if err != nil {
		return domain.Task{}, err
	}
	s.snap.Tasks = append(s.snap.Tasks, task)
	s.index = buildIndex(s.snap.Tasks)
	if err := s.saveLocked(ctx, true); err != nil {
		return domain.Task{}, err
	}
	return cloneTask(task), nil
}

// UpdateTask applies in to the task with the given id and persists.
func (s *Store) UpdateTask(ctx context.Context, id string, in domain.TaskInput) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.taskIndexLocked(id)
	if err != nil {
		return domain.Task{}, err
	}
	task := s.snap.Tasks[i]
	if err := task.UpdateDetails(in, s.now()); err != nil {
		return domain.Task{}, err
	}
	s.snap.Tasks[i] = task
	s.index = buildIndex(s.snap.Tasks)
	if err := s.saveLocked(ctx, true); err != nil {
		return domain.Task{}, err
	}
	return cloneTask(task), nil
}

// MoveTask sets the task's status and persists. Moving a task onto the
// status it already has still stamps UpdatedAt and saves.
func (s *Store) MoveTask(ctx context.Context, id string, status domain.Status) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.taskIndexLocked(id)
	if err != nil {
		return domain.Task{}, err
	}
	task := s.snap.Tasks[i]
	if err := task.SetStatus(status, s.now()); err != nil {
		return domain.Task{}, err
	}
	s.snap.Tasks[i] = task
	s.index = buildIndex(s.snap.Tasks)
	if err := s.saveLocked(ctx, true); err != nil {
		return domain.Task{}, err
	}
	return cloneTask(task), nil
}

// DeleteTask removes the task with the given id and persists.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.taskIndexLocked(id)
	if err != nil {
		return err
	}
	s.snap.Tasks = append(s.snap.Tasks[:i], s.snap.Tasks[i+1:]...)
	s.index = buildIndex(s.snap.Tasks)
	return s.saveLocked(ctx, true)
}

// CreateProject validates in, appends the new project, and persists.
func (s *Store) CreateProject(ctx context.Context, in domain.ProjectInput) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.ID == "" {
		in.ID = s.newID()
	}
	project, err := domain.NewProject(in, s.now())
	if err != nil {
		return domain.Project{}, err
	}
	s.snap.Projects = append(s.snap.Projects, project)
	if err := s.saveLocked(ctx, true); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// UpdateProject applies in to the project with the given id and persists.
func (s *Store) UpdateProject(ctx context.Context, id string, in domain.ProjectInput) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.snap.Projects {
		if p.ID != id {
			continue
		}
		if err := p.UpdateDetails(in, s.now()); err != nil {
			return domain.Project{}, err
		}
		s.snap.Projects[i] = p
		if err := s.saveLocked(ctx, true); err != nil {
			return domain.Project{}, err
		}
		return p, nil
	}
	return domain.Project{}, domain.ErrProjectNotFound
}

// CreateEvent validates in, appends the new event, and persists.
func (s *Store) CreateEvent(ctx context.Context, in domain.EventInput) (domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.ID == "" {
		in.ID = s.newID()
	}
	event, err := domain.NewEvent(in, s.now())
	if err != nil {
		return domain.Event{}, err
	}
	s.snap.Events = append(s.snap.Events, event)
	if err := s.saveLocked(ctx, true); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

// CreateDocument validates in, appends the new document, and persists.
func (s *Store) CreateDocument(ctx context.Context, in domain.DocumentInput) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.ID == "" {
		in.ID = s.newID()
	}
	doc, err := domain.NewDocument(in, s.now())
	if err != nil {
		return domain.Document{}, err
	}
	s.snap.Documents = append(s.snap.Documents, doc)
	if err := s.saveLocked(ctx, true); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

func (s *Store) taskIndexLocked(id string) (int, error) {
	for i, t := range s.snap.Tasks {
		if t.ID == id {
			return i, nil
		}
	}
	return 0, domain.ErrTaskNotFound
}
