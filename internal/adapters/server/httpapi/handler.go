// Package httpapi provides the REST adapter mounted under `/api/v1`.
// It is the integration surface outside collaborators call; everything
// it does goes through the same store paths the TUI uses.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lab-foster/ProjectAtlas2/internal/board"
	"github.com/lab-foster/ProjectAtlas2/internal/domain"
	"github.com/lab-foster/ProjectAtlas2/internal/resolve"
	"github.com/lab-foster/ProjectAtlas2/internal/store"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// errInvalidRequest marks malformed request payloads.
var errInvalidRequest = errors.New("invalid request")

// Handler serves the versioned API subrouter.
type Handler struct {
	store *store.Store
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs the HTTP API adapter over the shared store.
func NewHandler(st *store.Store) *Handler {
	return &Handler{store: st}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := normalizePath(r.URL.Path)
	switch {
	case path == "tasks":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"tasks": h.store.Tasks()})
		case http.MethodPost:
			h.handleCreateTask(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	case path == "board":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleBoard(w, r)
	case path == "projects":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"projects": h.store.Projects()})
		case http.MethodPost:
			h.handleCreateProject(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	case path == "events":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": h.store.Events()})
	case path == "documents":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"documents": h.store.Documents()})
	case strings.HasPrefix(path, "tasks/"):
		h.routeTask(w, r, strings.TrimPrefix(path, "tasks/"))
	case strings.HasPrefix(path, "projects/"):
		h.routeProject(w, r, strings.TrimPrefix(path, "projects/"))
	default:
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	}
}

func (h *Handler) routeTask(w http.ResponseWriter, r *http.Request, rest string) {
	if id, ok := strings.CutSuffix(rest, "/move"); ok && id != "" {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleMoveTask(w, r, id)
		return
	}
	if rest == "" || strings.Contains(rest, "/") {
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.handleResolveTask(w, r, rest)
	case http.MethodPatch:
		h.handleUpdateTask(w, r, rest)
	case http.MethodDelete:
		h.handleDeleteTask(w, r, rest)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (h *Handler) routeProject(w http.ResponseWriter, r *http.Request, id string) {
	if id == "" || strings.Contains(id, "/") {
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
		return
	}
	switch r.Method {
	case http.MethodGet:
		project, ok := h.store.ProjectByID(id)
		if !ok {
			writeErrorFrom(w, domain.ErrProjectNotFound)
			return
		}
		writeJSON(w, http.StatusOK, project)
	case http.MethodPatch:
		h.handleUpdateProject(w, r, id)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPatch)
	}
}

// handleResolveTask serves GET `/tasks/{idOrName}`. Resolution never
// fails: an unknown query still answers 200 with a placeholder so
// template callers can render something.
func (h *Handler) handleResolveTask(w http.ResponseWriter, r *http.Request, idOrName string) {
	res := resolve.Resolve(h.store.Tasks(), h.store.Index(), idOrName)
	writeJSON(w, http.StatusOK, map[string]any{
		"task":      res.Task,
		"resolved":  res.Resolved,
		"ambiguous": res.Ambiguous,
		"method":    string(res.Method),
	})
}

// handleBoard serves GET `/board`, honoring project and priority query
// filters the way the board view does.
func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	ctrl := board.New(h.store)
	ctrl.SetProjectFilter(strings.TrimSpace(r.URL.Query().Get("project")))
	ctrl.SetPriorityFilter(strings.TrimSpace(r.URL.Query().Get("priority")))

	counts := ctrl.Counts()
	columns := make([]map[string]any, 0, len(domain.BoardStatuses()))
	for _, status := range domain.BoardStatuses() {
		tasks := ctrl.ColumnTasks(status)
		if tasks == nil {
			tasks = []domain.Task{}
		}
		columns = append(columns, map[string]any{
			"status": status,
			"label":  status.Label(),
			"count":  counts[status],
			"tasks":  tasks,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"columns":  columns,
		"project":  ctrl.ProjectFilter(),
		"priority": ctrl.PriorityFilter(),
	})
}

type taskPayload struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Status       string   `json:"status"`
	Project      string   `json:"project"`
	Priority     string   `json:"priority"`
	DueDate      string   `json:"dueDate"`
	Estimate     float64  `json:"estimate"`
	Tags         []string `json:"tags"`
	Dependencies []string `json:"dependencies"`
	Photos       []string `json:"photos"`
}

// taskPatch distinguishes fields absent from a PATCH body from fields
// explicitly set to an empty value.
type taskPatch struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Status       *string   `json:"status"`
	Project      *string   `json:"project"`
	Priority     *string   `json:"priority"`
	DueDate      *string   `json:"dueDate"`
	Estimate     *float64  `json:"estimate"`
	Tags         *[]string `json:"tags"`
	Dependencies *[]string `json:"dependencies"`
	Photos       *[]string `json:"photos"`
}

// apply overlays the patch onto the current task and returns the merged
// update input.
func (p taskPatch) apply(task domain.Task) (domain.TaskInput, error) {
	in := domain.TaskInput{
		Title:        task.Title,
		Description:  task.Description,
		Status:       task.Status,
		Project:      task.Project,
		Priority:     task.Priority,
		DueDate:      task.DueDate,
		Estimate:     task.Estimate,
		Tags:         task.Tags,
		Dependencies: task.Dependencies,
		Photos:       task.Photos,
	}
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Status != nil {
		status, err := domain.ParseStatus(*p.Status)
		if err != nil {
			return domain.TaskInput{}, err
		}
		in.Status = status
	}
	if p.Project != nil {
		in.Project = *p.Project
	}
	if p.Priority != nil {
		priority, err := domain.ParsePriority(*p.Priority)
		if err != nil {
			return domain.TaskInput{}, err
		}
		in.Priority = priority
	}
	if p.DueDate != nil {
		in.DueDate = *p.DueDate
	}
	if p.Estimate != nil {
		in.Estimate = *p.Estimate
	}
	if p.Tags != nil {
		in.Tags = *p.Tags
	}
	if p.Dependencies != nil {
		in.Dependencies = *p.Dependencies
	}
	if p.Photos != nil {
		in.Photos = *p.Photos
	}
	return in, nil
}

func (p taskPayload) input() (domain.TaskInput, error) {
	in := domain.TaskInput{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Project:      p.Project,
		DueDate:      p.DueDate,
		Estimate:     p.Estimate,
		Tags:         p.Tags,
		Dependencies: p.Dependencies,
		Photos:       p.Photos,
	}
	if p.Status != "" {
		status, err := domain.ParseStatus(p.Status)
		if err != nil {
			return domain.TaskInput{}, err
		}
		in.Status = status
	}
	if p.Priority != "" {
		priority, err := domain.ParsePriority(p.Priority)
		if err != nil {
			return domain.TaskInput{}, err
		}
		in.Priority = priority
	}
	return in, nil
}

// handleCreateTask serves POST `/tasks`.
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var payload taskPayload
	if err := decodeJSONBody(r.Context(), w, r, &payload); err != nil {
		writeErrorFrom(w, err)
		return
	}
	in, err := payload.input()
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	task, err := h.store.CreateTask(r.Context(), in)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// handleUpdateTask serves PATCH `/tasks/{id}`. Fields omitted from the
// body keep their current values; only the fields present are replaced.
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request, id string) {
	var patch taskPatch
	if err := decodeJSONBody(r.Context(), w, r, &patch); err != nil {
		writeErrorFrom(w, err)
		return
	}
	current, ok := h.store.TaskByID(id)
	if !ok {
		writeErrorFrom(w, domain.ErrTaskNotFound)
		return
	}
	in, err := patch.apply(current)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	task, err := h.store.UpdateTask(r.Context(), id, in)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleMoveTask serves POST `/tasks/{id}/move`.
func (h *Handler) handleMoveTask(w http.ResponseWriter, r *http.Request, id string) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := decodeJSONBody(r.Context(), w, r, &payload); err != nil {
		writeErrorFrom(w, err)
		return
	}
	status, err := domain.ParseStatus(payload.Status)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	task, err := h.store.MoveTask(r.Context(), id, status)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleDeleteTask serves DELETE `/tasks/{id}`. Deletion is
// destructive, so it refuses to act until the caller confirms.
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request, id string) {
	if r.URL.Query().Get("confirm") != "true" {
		writeJSONError(w, http.StatusConflict, APIError{
			Code:    "confirmation_required",
			Message: "deleting a task requires confirmation",
			Hint:    "Repeat the request with ?confirm=true.",
		})
		return
	}
	if err := h.store.DeleteTask(r.Context(), id); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type projectPayload struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Status   string  `json:"status"`
	Progress int     `json:"progress"`
	Budget   float64 `json:"budget"`
	Spent    float64 `json:"spent"`
	Priority string  `json:"priority"`
}

func (p projectPayload) input() (domain.ProjectInput, error) {
	in := domain.ProjectInput{
		ID:       p.ID,
		Name:     p.Name,
		Status:   p.Status,
		Progress: p.Progress,
		Budget:   p.Budget,
		Spent:    p.Spent,
	}
	if p.Priority != "" {
		priority, err := domain.ParsePriority(p.Priority)
		if err != nil {
			return domain.ProjectInput{}, err
		}
		in.Priority = priority
	}
	return in, nil
}

// handleCreateProject serves POST `/projects`.
func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var payload projectPayload
	if err := decodeJSONBody(r.Context(), w, r, &payload); err != nil {
		writeErrorFrom(w, err)
		return
	}
	in, err := payload.input()
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	project, err := h.store.CreateProject(r.Context(), in)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// handleUpdateProject serves PATCH `/projects/{id}`.
func (h *Handler) handleUpdateProject(w http.ResponseWriter, r *http.Request, id string) {
	var payload projectPayload
	if err := decodeJSONBody(r.Context(), w, r, &payload); err != nil {
		writeErrorFrom(w, err)
		return
	}
	in, err := payload.input()
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	project, err := h.store.UpdateProject(r.Context(), id, in)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func normalizePath(path string) string {
	return strings.Trim(strings.TrimPrefix(path, "/api/v1"), "/")
}

func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, domain.ErrTaskNotFound), errors.Is(err, domain.ErrProjectNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidProgress),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, errInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(errInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", errInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
