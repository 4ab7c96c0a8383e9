package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
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

func newTestHandler(t *testing.T) (*Handler, *store.Store) {
	t.Helper()
	n := 0
	st := store.New(&memPersister{}, nil,
		func() string { n++; return fmt.Sprintf("api-%03d", n) },
		func() time.Time { return time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC) })
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return NewHandler(st), st
}

func do(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestListTasks(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/api/v1/tasks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got struct {
		Tasks []struct{ ID string } `json:"tasks"`
	}
	decode(t, rec, &got)
	if len(got.Tasks) != 8 {
		t.Fatalf("tasks = %d, want seed set of 8", len(got.Tasks))
	}
}

func TestResolveTaskAlwaysAnswers(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/v1/tasks/task-regrout-shower", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var byID struct {
		Resolved bool   `json:"resolved"`
		Method   string `json:"method"`
		Task     struct{ ID string }
	}
	decode(t, rec, &byID)
	if !byID.Resolved || byID.Method != "id" {
		t.Fatalf("resolve by id = %+v", byID)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/tasks/regrout", "")
	var bySub struct {
		Resolved bool   `json:"resolved"`
		Method   string `json:"method"`
	}
	decode(t, rec, &bySub)
	if !bySub.Resolved || bySub.Method != "substring" {
		t.Fatalf("resolve by substring = %+v", bySub)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/tasks/no-such-thing", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unresolved status = %d, want 200 with placeholder", rec.Code)
	}
	var missing struct {
		Resolved bool `json:"resolved"`
		Task     struct{ Title string }
	}
	decode(t, rec, &missing)
	if missing.Resolved {
		t.Fatal("unknown query reported resolved")
	}
	if missing.Task.Title != "no-such-thing" {
		t.Fatalf("placeholder title = %q", missing.Task.Title)
	}
}

func TestBoardFiltersAndCounts(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/api/v1/board?project=proj-kitchen&priority=high", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got struct {
		Columns []struct {
			Status string `json:"status"`
			Count  int    `json:"count"`
			Tasks  []struct {
				Project  string `json:"project"`
				Priority string `json:"priority"`
			} `json:"tasks"`
		} `json:"columns"`
	}
	decode(t, rec, &got)
	if len(got.Columns) != 6 {
		t.Fatalf("columns = %d, want 6", len(got.Columns))
	}
	for _, col := range got.Columns {
		if col.Count != len(col.Tasks) {
			t.Fatalf("column %s count %d != %d tasks", col.Status, col.Count, len(col.Tasks))
		}
		for _, task := range col.Tasks {
			if task.Project != "proj-kitchen" || task.Priority != "high" {
				t.Fatalf("task leaked through filters in column %s: %+v", col.Status, task)
			}
		}
	}
}

func TestCreateMoveDeleteTask(t *testing.T) {
	h, st := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/v1/tasks", `{"title":"Paint bedroom","project":"proj-bathroom","priority":"low"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, rec, &created)
	if created.Status != "someday" {
		t.Fatalf("created status = %q, want default someday", created.Status)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/tasks/"+created.ID+"/move", `{"status":"ready"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("move status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodDelete, "/api/v1/tasks/"+created.ID, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("unconfirmed delete status = %d, want 409", rec.Code)
	}
	if _, ok := st.TaskByID(created.ID); !ok {
		t.Fatal("unconfirmed delete removed the task")
	}

	rec = do(t, h, http.MethodDelete, "/api/v1/tasks/"+created.ID+"?confirm=true", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("confirmed delete status = %d, want 204", rec.Code)
	}
	if _, ok := st.TaskByID(created.ID); ok {
		t.Fatal("confirmed delete left the task behind")
	}
}

func TestUpdateTaskKeepsOmittedFields(t *testing.T) {
	h, st := newTestHandler(t)
	before, ok := st.TaskByID("task-install-cabinets")
	if !ok {
		t.Fatal("seed task missing")
	}

	rec := do(t, h, http.MethodPatch, "/api/v1/tasks/task-install-cabinets", `{"title":"Install cabinet run","dueDate":"2026-09-12"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body %s", rec.Code, rec.Body.String())
	}

	after, _ := st.TaskByID("task-install-cabinets")
	if after.Title != "Install cabinet run" || after.DueDate != "2026-09-12" {
		t.Fatalf("patched fields = %q / %q", after.Title, after.DueDate)
	}
	if after.Description != before.Description {
		t.Fatalf("description changed: %q -> %q", before.Description, after.Description)
	}
	if after.Project != before.Project {
		t.Fatalf("project changed: %q -> %q", before.Project, after.Project)
	}
	if fmt.Sprint(after.Tags) != fmt.Sprint(before.Tags) {
		t.Fatalf("tags changed: %v -> %v", before.Tags, after.Tags)
	}
	if after.Status != before.Status || after.Priority != before.Priority {
		t.Fatalf("status/priority changed: %s/%s -> %s/%s", before.Status, before.Priority, after.Status, after.Priority)
	}
}

func TestUpdateTaskWithoutTitleSucceeds(t *testing.T) {
	h, st := newTestHandler(t)

	rec := do(t, h, http.MethodPatch, "/api/v1/tasks/task-regrout-shower", `{"priority":"low"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body %s", rec.Code, rec.Body.String())
	}
	after, _ := st.TaskByID("task-regrout-shower")
	if after.Title == "" {
		t.Fatal("title was wiped by a patch that omitted it")
	}
	if after.Priority != "low" {
		t.Fatalf("priority = %q, want low", after.Priority)
	}

	rec = do(t, h, http.MethodPatch, "/api/v1/tasks/task-regrout-shower", `{"title":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank title patch status = %d, want 400", rec.Code)
	}

	rec = do(t, h, http.MethodPatch, "/api/v1/tasks/ghost", `{"title":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id patch status = %d, want 404", rec.Code)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/v1/tasks", `{"title":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank title status = %d, want 400", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/tasks", `{"title":"x","status":"parked"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status status = %d, want 400", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/tasks", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d, want 400", rec.Code)
	}
}

func TestMoveUnknownTask(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(t, h, http.MethodPost, "/api/v1/tasks/ghost/move", `{"status":"done"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestProjectsEndpoints(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/v1/projects", `{"name":"Garage Storage","budget":1500,"priority":"low"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	decode(t, rec, &created)

	rec = do(t, h, http.MethodGet, "/api/v1/projects/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get project status = %d", rec.Code)
	}

	rec = do(t, h, http.MethodPatch, "/api/v1/projects/"+created.ID, `{"name":"Garage Storage","progress":25,"budget":1500}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch project status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/v1/projects/ghost", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing project status = %d, want 404", rec.Code)
	}
}

func TestEventsAndDocumentsEndpoints(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/v1/events", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("events status = %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/api/v1/documents", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("documents status = %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(t, h, http.MethodPut, "/api/v1/tasks", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
		t.Fatalf("Allow header = %q", allow)
	}
}

func TestUnknownEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/api/v1/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
