package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Backend selects where snapshots are persisted.
type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
)

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Board   BoardConfig   `toml:"board"`
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
}

type StorageConfig struct {
	Backend Backend `toml:"backend"`
	Dir     string  `toml:"dir"`
	DBPath  string  `toml:"db_path"`
}

type BoardConfig struct {
	ConfirmDelete  bool   `toml:"confirm_delete"`
	ProjectFilter  string `toml:"project_filter"`
	PriorityFilter string `toml:"priority_filter"`
}

type ServerConfig struct {
	Addr        string `toml:"addr"`
	HTTPEnabled bool   `toml:"http_enabled"`
	MCPEnabled  bool   `toml:"mcp_enabled"`
	MCPPath     string `toml:"mcp_path"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default builds the baseline config for a data directory and database
// path, usually from platform.DefaultPaths.
func Default(dataDir, dbPath string) Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendJSON,
			Dir:     dataDir,
			DBPath:  dbPath,
		},
		Board: BoardConfig{
			ConfirmDelete:  true,
			ProjectFilter:  "all",
			PriorityFilter: "all",
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:8575",
			HTTPEnabled: true,
			MCPEnabled:  true,
			MCPPath:     "/mcp",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path over defaults. A missing or empty file keeps the
// defaults; a present file must decode and validate.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendJSON:
		if strings.TrimSpace(c.Storage.Dir) == "" {
			return errors.New("storage.dir is required for the json backend")
		}
	case BackendSQLite:
		if strings.TrimSpace(c.Storage.DBPath) == "" {
			return errors.New("storage.db_path is required for the sqlite backend")
		}
		if strings.TrimSpace(c.Storage.Dir) == "" {
			return errors.New("storage.dir is required for sync markers")
		}
	default:
		return fmt.Errorf("invalid storage.backend: %q", c.Storage.Backend)
	}

	switch strings.TrimSpace(strings.ToLower(c.Board.PriorityFilter)) {
	case "", "all", "low", "medium", "high":
	default:
		return fmt.Errorf("invalid board.priority_filter: %q", c.Board.PriorityFilter)
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.MCPEnabled && !strings.HasPrefix(c.Server.MCPPath, "/") {
		return fmt.Errorf("server.mcp_path must start with /: %q", c.Server.MCPPath)
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	return nil
}

// EnsureConfigDir creates the directory holding path.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
