// Package sqlite persists board snapshots in a single SQLite database.
// Saving replaces every row inside one transaction so the stored state
// always matches one whole snapshot, matching the overwrite semantics
// of the JSON file backend while surviving partial writes.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lab-foster/ProjectAtlas2/internal/domain"
	"github.com/lab-foster/ProjectAtlas2/internal/store"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// Persister stores snapshots in a SQLite database file.
type Persister struct {
	db *sql.DB
}

// Open opens (and migrates) the database at path.
func Open(path string) (*Persister, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	p := &Persister{db: db}
	if err := p.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

// OpenInMemory opens a throwaway in-memory database, used by tests.
func OpenInMemory() (*Persister, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	p := &Persister{db: db}
	if err := p.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

// Close closes the underlying database.
func (p *Persister) Close() error {
	return p.db.Close()
}

func (p *Persister) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			project TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL,
			due_date TEXT NOT NULL DEFAULT '',
			estimate REAL NOT NULL DEFAULT 0,
			tags_json TEXT NOT NULL DEFAULT '[]',
			dependencies_json TEXT NOT NULL DEFAULT '[]',
			photos_json TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			progress INTEGER NOT NULL DEFAULT 0,
			budget REAL NOT NULL DEFAULT 0,
			spent REAL NOT NULL DEFAULT 0,
			priority TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			date TEXT NOT NULL,
			project TEXT NOT NULL DEFAULT '',
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			doc_type TEXT NOT NULL,
			project TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			date TEXT NOT NULL DEFAULT '',
			size TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// LoadSnapshot reads every table back into one snapshot. An empty tasks
// table is taken to mean no state has been written yet.
func (p *Persister) LoadSnapshot(ctx context.Context) (store.Snapshot, bool, error) {
	var snap store.Snapshot

	tasks, err := p.loadTasks(ctx)
	if err != nil {
		return store.Snapshot{}, false, err
	}
	projects, err := p.loadProjects(ctx)
	if err != nil {
		return store.Snapshot{}, false, err
	}
	if len(tasks) == 0 && len(projects) == 0 {
		return store.Snapshot{}, false, nil
	}
	snap.Tasks = tasks
	snap.Projects = projects

	if snap.Events, err = p.loadEvents(ctx); err != nil {
		return store.Snapshot{}, false, err
	}
	if snap.Documents, err = p.loadDocuments(ctx); err != nil {
		return store.Snapshot{}, false, err
	}
	return snap, true, nil
}

// SaveSnapshot replaces every table's rows with the snapshot's contents
// in a single transaction.
func (p *Persister) SaveSnapshot(ctx context.Context, snap store.Snapshot) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"tasks", "projects", "events", "documents"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := insertTasks(ctx, tx, snap.Tasks); err != nil {
		return err
	}
	if err := insertProjects(ctx, tx, snap.Projects); err != nil {
		return err
	}
	if err := insertEvents(ctx, tx, snap.Events); err != nil {
		return err
	}
	if err := insertDocuments(ctx, tx, snap.Documents); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func insertTasks(ctx context.Context, tx *sql.Tx, tasks []domain.Task) error {
	const q = `INSERT INTO tasks
		(id, position, title, description, status, project, priority, due_date, estimate, tags_json, dependencies_json, photos_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i, t := range tasks {
		_, err := tx.ExecContext(ctx, q,
			t.ID, i, t.Title, t.Description, string(t.Status), t.Project, string(t.Priority),
			t.DueDate, t.Estimate, encodeList(t.Tags), encodeList(t.Dependencies), encodeList(t.Photos),
			ts(t.CreatedAt), ts(t.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}
	return nil
}

func insertProjects(ctx context.Context, tx *sql.Tx, projects []domain.Project) error {
	const q = `INSERT INTO projects
		(id, position, name, status, progress, budget, spent, priority, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i, p := range projects {
		_, err := tx.ExecContext(ctx, q,
			p.ID, i, p.Name, p.Status, p.Progress, p.Budget, p.Spent, string(p.Priority),
			ts(p.CreatedAt), ts(p.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert project %s: %w", p.ID, err)
		}
	}
	return nil
}

func insertEvents(ctx context.Context, tx *sql.Tx, events []domain.Event) error {
	const q = `INSERT INTO events
		(id, position, title, date, project, duration_minutes, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i, e := range events {
		_, err := tx.ExecContext(ctx, q,
			e.ID, i, e.Title, e.Date, e.Project, e.DurationMinutes, e.Notes,
			ts(e.CreatedAt), ts(e.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert event %s: %w", e.ID, err)
		}
	}
	return nil
}

func insertDocuments(ctx context.Context, tx *sql.Tx, docs []domain.Document) error {
	const q = `INSERT INTO documents
		(id, position, doc_type, project, title, date, size, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i, d := range docs {
		_, err := tx.ExecContext(ctx, q,
			d.ID, i, d.Type, d.Project, d.Title, d.Date, d.Size,
			ts(d.CreatedAt), ts(d.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert document %s: %w", d.ID, err)
		}
	}
	return nil
}

func (p *Persister) loadTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, title, description, status, project, priority, due_date, estimate, tags_json, dependencies_json, photos_json, created_at, updated_at
		FROM tasks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var out []domain.Task
	for rows.Next() {
		var t domain.Task
		var status, priority, tagsJSON, depsJSON, photosJSON, created, updated string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &status, &t.Project, &priority,
			&t.DueDate, &t.Estimate, &tagsJSON, &depsJSON, &photosJSON, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Status = domain.Status(status)
		t.Priority = domain.Priority(priority)
		t.Tags = decodeList(tagsJSON)
		t.Dependencies = decodeList(depsJSON)
		t.Photos = decodeList(photosJSON)
		t.CreatedAt = parseTS(created)
		t.UpdatedAt = parseTS(updated)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *Persister) loadProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, name, status, progress, budget, spent, priority, created_at, updated_at
		FROM projects ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var out []domain.Project
	for rows.Next() {
		var p domain.Project
		var priority, created, updated string
		if err := rows.Scan(&p.ID, &p.Name, &p.Status, &p.Progress, &p.Budget, &p.Spent, &priority, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.Priority = domain.Priority(priority)
		p.CreatedAt = parseTS(created)
		p.UpdatedAt = parseTS(updated)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (p *Persister) loadEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, title, date, project, duration_minutes, notes, created_at, updated_at
		FROM events ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		var created, updated string
		if err := rows.Scan(&e.ID, &e.Title, &e.Date, &e.Project, &e.DurationMinutes, &e.Notes, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.CreatedAt = parseTS(created)
		e.UpdatedAt = parseTS(updated)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *Persister) loadDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, doc_type, project, title, date, size, created_at, updated_at
		FROM documents ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		var d domain.Document
		var created, updated string
		if err := rows.Scan(&d.ID, &d.Type, &d.Project, &d.Title, &d.Date, &d.Size, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.CreatedAt = parseTS(created)
		d.UpdatedAt = parseTS(updated)
		out = append(out, d)
	}
	return out, rows.Err()
}

func encodeList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func decodeList(raw string) []string {
	// Non-nil empties match what task validation produces, so loaded
	// tasks compare equal to freshly constructed ones.
	if raw == "" || raw == "[]" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{}
	}
	return out
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(v string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}
