// Package mcpapi provides a stateless MCP streamable-HTTP adapter so
// assistants can read and mutate the board through the same store paths
// the TUI and REST API use.
package mcpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/lab-foster/ProjectAtlas2/internal/board"
	"github.com/lab-foster/ProjectAtlas2/internal/domain"
	"github.com/lab-foster/ProjectAtlas2/internal/resolve"
	"github.com/lab-foster/ProjectAtlas2/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds the MCP adapter over the shared store.
func NewHandler(cfg Config, st *store.Store) (*Handler, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerResolveTool(mcpSrv, st)
	registerBoardTool(mcpSrv, st)
	registerTaskTools(mcpSrv, st)
	registerProjectTools(mcpSrv, st)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "atlas"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerResolveTool registers the `atlas.resolve_task` tool.
func registerResolveTool(srv *mcpserver.MCPServer, st *store.Store) {
	srv.AddTool(
		mcp.NewTool(
			"atlas.resolve_task",
			mcp.WithDescription("Resolve a task by id, exact title, or fuzzy title. Always answers; an unknown query yields a placeholder."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Task id or title fragment")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			query, err := req.RequireString("query")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			res := resolve.Resolve(st.Tasks(), st.Index(), query)
			return toolJSON(map[string]any{
				"task":      res.Task,
				"resolved":  res.Resolved,
				"ambiguous": res.Ambiguous,
				"method":    string(res.Method),
			})
		},
	)
}

// registerBoardTool registers the `atlas.list_board` tool.
func registerBoardTool(srv *mcpserver.MCPServer, st *store.Store) {
	srv.AddTool(
		mcp.NewTool(
			"atlas.list_board",
			mcp.WithDescription("Return the board columns with per-column counts, optionally filtered."),
			mcp.WithString("project", mcp.Description("Project id filter, or all")),
			mcp.WithString("priority", mcp.Description("Priority filter"), mcp.Enum("all", "low", "medium", "high")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			ctrl := board.New(st)
			ctrl.SetProjectFilter(req.GetString("project", ""))
			ctrl.SetPriorityFilter(req.GetString("priority", ""))

			counts := ctrl.Counts()
			columns := make([]map[string]any, 0, len(domain.BoardStatuses()))
			for _, status := range domain.BoardStatuses() {
				columns = append(columns, map[string]any{
					"status": status,
					"label":  status.Label(),
					"count":  counts[status],
					"tasks":  ctrl.ColumnTasks(status),
				})
			}
			return toolJSON(map[string]any{"columns": columns})
		},
	)
}

// registerTaskTools registers create/move/delete task tools.
func registerTaskTools(srv *mcpserver.MCPServer, st *store.Store) {
	srv.AddTool(
		mcp.NewTool(
			"atlas.create_task",
			mcp.WithDescription("Create a task on the board."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
			mcp.WithString("description", mcp.Description("Task description, markdown allowed")),
			mcp.WithString("status", mcp.Description("Board column"), mcp.Enum("someday", "planning", "ready", "in-progress", "blocked", "done")),
			mcp.WithString("project", mcp.Description("Project id reference")),
			mcp.WithString("priority", mcp.Description("Task priority"), mcp.Enum("low", "medium", "high")),
			mcp.WithString("due_date", mcp.Description("Free-form due date")),
			mcp.WithNumber("estimate", mcp.Description("Estimated hours")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			in := domain.TaskInput{
				Title:       title,
				Description: req.GetString("description", ""),
				Project:     req.GetString("project", ""),
				DueDate:     req.GetString("due_date", ""),
				Estimate:    req.GetFloat("estimate", 0),
			}
			if raw := req.GetString("status", ""); raw != "" {
				status, err := domain.ParseStatus(raw)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				in.Status = status
			}
			if raw := req.GetString("priority", ""); raw != "" {
				priority, err := domain.ParsePriority(raw)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				in.Priority = priority
			}
			task, err := st.CreateTask(ctx, in)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return toolJSON(task)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"atlas.move_task",
			mcp.WithDescription("Move a task to another board column."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
			mcp.WithString("status", mcp.Required(), mcp.Description("Target column"), mcp.Enum("someday", "planning", "ready", "in-progress", "blocked", "done")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			raw, err := req.RequireString("status")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			status, err := domain.ParseStatus(raw)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := st.MoveTask(ctx, id, status)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return toolJSON(task)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"atlas.delete_task",
			mcp.WithDescription("Delete a task. Destructive: confirm must be true."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
			mcp.WithBoolean("confirm", mcp.Description("Must be true to actually delete")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if !req.GetBool("confirm", false) {
				return mcp.NewToolResultError("deleting a task requires confirm=true"), nil
			}
			if err := st.DeleteTask(ctx, id); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return toolJSON(map[string]any{"deleted": id})
		},
	)
}

// registerProjectTools registers project listing and creation.
func registerProjectTools(srv *mcpserver.MCPServer, st *store.Store) {
	srv.AddTool(
		mcp.NewTool(
			"atlas.list_projects",
			mcp.WithDescription("List every renovation project."),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return toolJSON(map[string]any{"projects": st.Projects()})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"atlas.create_project",
			mcp.WithDescription("Create a renovation project."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
			mcp.WithString("status", mcp.Description("Project status, defaults to planning")),
			mcp.WithNumber("budget", mcp.Description("Planned budget")),
			mcp.WithString("priority", mcp.Description("Project priority"), mcp.Enum("low", "medium", "high")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := req.RequireString("name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			in := domain.ProjectInput{
				Name:   name,
				Status: req.GetString("status", ""),
				Budget: req.GetFloat("budget", 0),
			}
			if raw := req.GetString("priority", ""); raw != "" {
				priority, err := domain.ParsePriority(raw)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				in.Priority = priority
			}
			project, err := st.CreateProject(ctx, in)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return toolJSON(project)
		},
	)
}

func toolJSON(payload any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return result, nil
}
