package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/lab-foster/ProjectAtlas2/internal/config"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("ATLAS_DEV_MODE", "false")
	os.Exit(m.Run())
}

// fakeProgram represents fake program data used by this package.
type fakeProgram struct {
	runErr error
}

// Run runs the requested command flow.
func (f fakeProgram) Run() (tea.Model, error) {
	return nil, f.runErr
}

// Send handles send.
func (f fakeProgram) Send(tea.Msg) {}

// TestRunVersion verifies behavior for the covered scenario.
func TestRunVersion(t *testing.T) {
	var out strings.Builder
	err := run(context.Background(), []string{"--version"}, &out, io.Discard)
	if err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if !strings.Contains(out.String(), "atlas") {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

// TestRunInvalidFlag verifies behavior for the covered scenario.
func TestRunInvalidFlag(t *testing.T) {
	err := run(context.Background(), []string{"--definitely-not-a-flag"}, io.Discard, io.Discard)
	if err == nil {
		t.Fatal("expected flag parse error")
	}
}

// TestRunUnknownCommand verifies behavior for the covered scenario.
func TestRunUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"launch"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

// TestRunPathsCommand verifies behavior for the covered scenario.
func TestRunPathsCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	var out strings.Builder
	err := run(context.Background(), []string{"paths"}, &out, io.Discard)
	if err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	for _, want := range []string{"config:", "data_dir:", "db:"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in paths output, got %q", want, out.String())
		}
	}
}

// TestRunStartsProgramAndSeedsState verifies behavior for the covered scenario.
func TestRunStartsProgramAndSeedsState(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program { return fakeProgram{} }

	dataDir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	err := run(context.Background(), []string{"--data", dataDir, "--config", cfgPath}, io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	// First launch persists the starter board.
	if _, err := os.Stat(filepath.Join(dataDir, "tasks.json")); err != nil {
		t.Fatalf("expected seeded tasks.json: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "projects.json")); err != nil {
		t.Fatalf("expected seeded projects.json: %v", err)
	}
}

// TestRunPropagatesProgramError verifies behavior for the covered scenario.
func TestRunPropagatesProgramError(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program {
		return fakeProgram{runErr: context.DeadlineExceeded}
	}

	dataDir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	err := run(context.Background(), []string{"--data", dataDir, "--config", cfgPath}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "run tui program") {
		t.Fatalf("expected wrapped program error, got %v", err)
	}
}

// TestRunEnvOverrides verifies behavior for the covered scenario.
func TestRunEnvOverrides(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program { return fakeProgram{} }

	dataDir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("ATLAS_CONFIG", cfgPath)
	t.Setenv("ATLAS_DATA_DIR", dataDir)

	if err := run(context.Background(), nil, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "tasks.json")); err != nil {
		t.Fatalf("expected state in env-selected data dir: %v", err)
	}
}

// TestRunServeRequiresHTTPEnabled verifies behavior for the covered scenario.
func TestRunServeRequiresHTTPEnabled(t *testing.T) {
	dataDir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	content := "[server]\nhttp_enabled = false\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	err := run(context.Background(), []string{"--data", dataDir, "--config", cfgPath, "serve"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "http_enabled") {
		t.Fatalf("expected http_enabled error, got %v", err)
	}
}

// TestOpenPersisterBackends verifies behavior for the covered scenario.
func TestOpenPersisterBackends(t *testing.T) {
	jsonCfg := config.Default(t.TempDir(), filepath.Join(t.TempDir(), "atlas.db"))
	p, closeFn, err := openPersister(jsonCfg)
	if err != nil {
		t.Fatalf("openPersister(json) error = %v", err)
	}
	if p == nil {
		t.Fatal("expected json persister")
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close json persister: %v", err)
	}

	sqliteCfg := jsonCfg
	sqliteCfg.Storage.Backend = config.BackendSQLite
	p, closeFn, err = openPersister(sqliteCfg)
	if err != nil {
		t.Fatalf("openPersister(sqlite) error = %v", err)
	}
	if p == nil {
		t.Fatal("expected sqlite persister")
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close sqlite persister: %v", err)
	}
}

// TestParseBoolEnv verifies behavior for the covered scenario.
func TestParseBoolEnv(t *testing.T) {
	t.Setenv("ATLAS_BOOL_TEST", "true")
	if v, ok := parseBoolEnv("ATLAS_BOOL_TEST"); !ok || !v {
		t.Fatalf("expected true, got v=%t ok=%t", v, ok)
	}
	t.Setenv("ATLAS_BOOL_TEST", "not-bool")
	if _, ok := parseBoolEnv("ATLAS_BOOL_TEST"); ok {
		t.Fatal("expected malformed bool to be ignored")
	}
	if _, ok := parseBoolEnv("ATLAS_BOOL_MISSING"); ok {
		t.Fatal("expected missing env to be ignored")
	}
}
