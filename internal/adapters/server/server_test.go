package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lab-foster/ProjectAtlas2/internal/store"
)

type memPersister struct {
	snap store.Snapshot
	ok   bool
}

func (m *memPersister) LoadSnapshot(ctx context.Context) (store.Snapshot, bool, error) {
	return m.snap.Clone(), m.ok, nil
}

func (m *memPersister) SaveSnapshot(ctx context.Context, snap store.Snapshot) error {
	m.snap = snap.Clone()
	m.ok = true
	return nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(&memPersister{}, nil,
		func() string { return "srv-1" },
		func() time.Time { return time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC) })
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return st
}

func TestNewHandlerRoutes(t *testing.T) {
	handler, cfg, err := NewHandler(Config{MCPEnabled: true}, newTestStore(t))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	if cfg.APIEndpoint != "/api/v1" || cfg.MCPEndpoint != "/mcp" {
		t.Fatalf("normalized endpoints = %q / %q", cfg.APIEndpoint, cfg.MCPEndpoint)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("api tasks status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestNewHandlerRejectsEndpointCollision(t *testing.T) {
	_, _, err := NewHandler(Config{APIEndpoint: "/same", MCPEndpoint: "/same", MCPEnabled: true}, newTestStore(t))
	if err == nil {
		t.Fatal("expected endpoint collision error")
	}
}

func TestNewHandlerRequiresStore(t *testing.T) {
	if _, _, err := NewHandler(Config{}, nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	st := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{HTTPBind: "127.0.0.1:0"}, st)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
