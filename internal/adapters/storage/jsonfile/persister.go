// Package jsonfile persists board snapshots as one JSON file per entity
// collection inside a data directory. Writes replace each file whole;
// there is no merging and no partial update.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lab-foster/ProjectAtlas2/internal/store"
)

const (
	tasksFile     = "tasks.json"
	projectsFile  = "projects.json"
	eventsFile    = "events.json"
	documentsFile = "documents.json"
)

// Persister reads and writes snapshot files under Dir.
type Persister struct {
	dir string
}

// New prepares a persister rooted at dir, creating it if needed.
func New(dir string) (*Persister, error) {
	if dir == "" {
		return nil, errors.New("jsonfile: empty data directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Persister{dir: dir}, nil
}

// Dir reports the data directory this persister writes into.
func (p *Persister) Dir() string { return p.dir }

// LoadSnapshot reads all collection files. A missing tasks file means no
// state has been written yet; any unreadable or malformed file also
// reports ok=false so the caller can fall back to seeding.
func (p *Persister) LoadSnapshot(ctx context.Context) (store.Snapshot, bool, error) {
	var snap store.Snapshot

	ok, err := p.readCollection(tasksFile, &snap.Tasks)
	if err != nil || !ok {
		return store.Snapshot{}, false, err
	}
	if ok, err = p.readCollection(projectsFile, &snap.Projects); err != nil || !ok {
		return store.Snapshot{}, false, err
	}
	// Events and documents were added after the first release; tolerate
	// a data directory that predates them.
	if _, err = p.readCollection(eventsFile, &snap.Events); err != nil {
		return store.Snapshot{}, false, err
	}
	if _, err = p.readCollection(documentsFile, &snap.Documents); err != nil {
		return store.Snapshot{}, false, err
	}
	return snap, true, nil
}

// SaveSnapshot overwrites every collection file with the given snapshot.
func (p *Persister) SaveSnapshot(ctx context.Context, snap store.Snapshot) error {
	if err := p.writeCollection(tasksFile, snap.Tasks); err != nil {
		return err
	}
	if err := p.writeCollection(projectsFile, snap.Projects); err != nil {
		return err
	}
	if err := p.writeCollection(eventsFile, snap.Events); err != nil {
		return err
	}
	return p.writeCollection(documentsFile, snap.Documents)
}

func (p *Persister) readCollection(name string, dst any) (bool, error) {
	raw, err := os.ReadFile(filepath.Join(p.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// Malformed state is treated as absent, not fatal.
		return false, nil
	}
	return true, nil
}

func (p *Persister) writeCollection(name string, src any) error {
	raw, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	raw = append(raw, '\n')

	// Write to a sibling temp file first so a crash mid-write never
	// leaves a truncated collection behind.
	path := filepath.Join(p.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
