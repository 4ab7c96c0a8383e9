package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	charmLog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lab-foster/ProjectAtlas2/internal/adapters/server"
	"github.com/lab-foster/ProjectAtlas2/internal/adapters/storage/jsonfile"
	"github.com/lab-foster/ProjectAtlas2/internal/adapters/storage/sqlite"
	"github.com/lab-foster/ProjectAtlas2/internal/config"
	"github.com/lab-foster/ProjectAtlas2/internal/platform"
	"github.com/lab-foster/ProjectAtlas2/internal/store"
	"github.com/lab-foster/ProjectAtlas2/internal/syncbus"
	"github.com/lab-foster/ProjectAtlas2/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
	Send(tea.Msg)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("atlas", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath string
		dataDir    string
		appName    string
		devMode    bool
		showVer    bool
	)
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("ATLAS_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("ATLAS_APP_NAME")); envApp != "" {
		appName = envApp
	} else {
		appName = platform.DefaultAppName
	}
	fs.StringVar(&configPath, "config", "", "path to config TOML")
	fs.StringVar(&dataDir, "data", "", "path to the board state directory")
	fs.StringVar(&appName, "app", appName, "application name for config/data path resolution")
	fs.BoolVar(&devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	fs.BoolVar(&showVer, "version", false, "show version")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVer {
		_, _ = fmt.Fprintf(stdout, "atlas %s\n", version)
		return nil
	}

	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: appName,
		DevMode: devMode,
	})
	if err != nil {
		return err
	}

	command := firstArg(fs.Args())
	switch command {
	case "paths":
		_, _ = fmt.Fprintf(stdout, "app: %s\n", appName)
		_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", devMode)
		_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
		_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
		_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
		return nil
	case "", "serve":
		// Continue.
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	dataOverridden := strings.TrimSpace(dataDir) != ""
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("ATLAS_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	if !dataOverridden {
		if envPath := strings.TrimSpace(os.Getenv("ATLAS_DATA_DIR")); envPath != "" {
			dataDir = envPath
			dataOverridden = true
		} else {
			dataDir = paths.DataDir
		}
	}

	defaultCfg := config.Default(dataDir, paths.DBPath)
	cfg, err := config.Load(configPath, defaultCfg)
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dataOverridden {
		cfg.Storage.Dir = dataDir
	}

	logger, err := newRuntimeLogger(stderr, appName, cfg.Logging)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "" {
		// Keep TUI rendering clean: runtime logs stay off the terminal while the board is active.
		logger.SetConsoleEnabled(false)
	}

	logger.Info("startup configuration resolved", "app", appName, "dev_mode", devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", cfg.Storage.Dir, "db_path", cfg.Storage.DBPath)

	persister, closePersister, err := openPersister(cfg)
	if err != nil {
		logger.Error("storage open failed", "backend", cfg.Storage.Backend, "err", err)
		return fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	defer func() {
		if closeErr := closePersister(); closeErr != nil {
			logger.Warn("storage close failed", "backend", cfg.Storage.Backend, "err", closeErr)
		}
	}()
	logger.Info("storage ready", "backend", cfg.Storage.Backend, "dir", cfg.Storage.Dir)

	bus := syncbus.New(cfg.Storage.Dir, syncbus.WithLogger(logger.Sink()))
	st := store.New(persister, bus, uuid.NewString, time.Now)
	if err := st.Load(ctx); err != nil {
		logger.Error("state load failed", "err", err)
		return fmt.Errorf("load board state: %w", err)
	}
	logger.Info("board state loaded", "tasks", len(st.Tasks()), "projects", len(st.Projects()))

	switch command {
	case "serve":
		return runServe(ctx, cfg, st, bus, logger)
	default:
		return runTUI(ctx, cfg, st, bus, logger)
	}
}

// runTUI runs the interactive board until the user quits.
func runTUI(ctx context.Context, cfg config.Config, st *store.Store, bus *syncbus.Bus, logger *runtimeLogger) error {
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()

	m := tui.NewModel(
		st,
		tui.WithConfirmDelete(cfg.Board.ConfirmDelete),
		tui.WithDefaultFilters(cfg.Board.ProjectFilter, cfg.Board.PriorityFilter),
	)
	p := programFactory(m)

	// Notifications can arrive synchronously from a save that still
	// holds the store lock, so the refresh hops to its own goroutine.
	cancelSub := bus.Subscribe(func() {
		go func() {
			if err := st.Reload(watchCtx); err != nil {
				logger.Warn("state reload failed", "err", err)
				return
			}
			p.Send(tui.DataChangedMsg{})
		}()
	})
	defer cancelSub()

	go func() {
		if err := bus.Watch(watchCtx); err != nil && watchCtx.Err() == nil {
			logger.Warn("sync watch stopped", "err", err)
		}
	}()

	logger.Info("starting tui program loop")
	if _, err := p.Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// runServe runs the HTTP and MCP surface until interrupted.
func runServe(ctx context.Context, cfg config.Config, st *store.Store, bus *syncbus.Bus, logger *runtimeLogger) error {
	if !cfg.Server.HTTPEnabled {
		return fmt.Errorf("server.http_enabled is false; nothing to serve")
	}

	serveCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cancelSub := bus.Subscribe(func() {
		go func() {
			if err := st.Reload(serveCtx); err != nil {
				logger.Warn("state reload failed", "err", err)
			}
		}()
	})
	defer cancelSub()

	go func() {
		if err := bus.Watch(serveCtx); err != nil && serveCtx.Err() == nil {
			logger.Warn("sync watch stopped", "err", err)
		}
	}()

	logger.Info("command flow start", "command", "serve", "addr", cfg.Server.Addr, "mcp_enabled", cfg.Server.MCPEnabled)
	if err := server.Run(serveCtx, server.Config{
		HTTPBind:      cfg.Server.Addr,
		MCPEndpoint:   cfg.Server.MCPPath,
		MCPEnabled:    cfg.Server.MCPEnabled,
		ServerName:    "atlas",
		ServerVersion: version,
	}, st); err != nil {
		logger.Error("command flow failed", "command", "serve", "err", err)
		return fmt.Errorf("run server: %w", err)
	}
	logger.Info("command flow complete", "command", "serve")
	return nil
}

// openPersister builds the configured storage backend. The returned
// close func is a no-op for the JSON backend.
func openPersister(cfg config.Config) (store.Persister, func() error, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		p, err := sqlite.Open(cfg.Storage.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	default:
		p, err := jsonfile.New(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return p, func() error { return nil }, nil
	}
}

// firstArg handles first arg.
func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// runtimeLogger wraps the console sink so TUI runs can mute it without
// losing the configured level.
type runtimeLogger struct {
	sink           *charmLog.Logger
	consoleEnabled bool
}

// newRuntimeLogger configures the runtime log sink from config state.
func newRuntimeLogger(stderr io.Writer, appName string, cfg config.LoggingConfig) (*runtimeLogger, error) {
	levelRaw := cfg.Level
	if strings.TrimSpace(levelRaw) == "" {
		levelRaw = "info"
	}
	level, err := charmLog.ParseLevel(levelRaw)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if stderr == nil {
		stderr = io.Discard
	}
	sink := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})
	return &runtimeLogger{sink: sink, consoleEnabled: true}, nil
}

// Sink exposes a logger for components that take one. A muted console
// yields a discard sink so background watchers cannot scribble over
// the board.
func (l *runtimeLogger) Sink() *charmLog.Logger {
	if l == nil {
		return nil
	}
	if !l.consoleEnabled {
		return charmLog.New(io.Discard)
	}
	return l.sink
}

// SetConsoleEnabled toggles whether the console sink receives runtime events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

// Debug logs a debug event to the console sink.
func (l *runtimeLogger) Debug(msg string, keyvals ...any) {
	if l == nil || !l.consoleEnabled {
		return
	}
	l.sink.Debug(msg, keyvals...)
}

// Info logs an informational event to the console sink.
func (l *runtimeLogger) Info(msg string, keyvals ...any) {
	if l == nil || !l.consoleEnabled {
		return
	}
	l.sink.Info(msg, keyvals...)
}

// Warn logs a warning event to the console sink.
func (l *runtimeLogger) Warn(msg string, keyvals ...any) {
	if l == nil || !l.consoleEnabled {
		return
	}
	l.sink.Warn(msg, keyvals...)
}

// Error logs an error event to the console sink.
func (l *runtimeLogger) Error(msg string, keyvals ...any) {
	if l == nil || !l.consoleEnabled {
		return
	}
	l.sink.Error(msg, keyvals...)
}
