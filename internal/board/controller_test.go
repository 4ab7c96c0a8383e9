package board

import (
	"context"
	"testing"
	"time"

	"github.com/lab-foster/ProjectAtlas2/internal/domain"
)

type fakeSource struct {
	tasks []domain.Task
	moves []string
}

func (f *fakeSource) Tasks() []domain.Task {
	return append([]domain.Task(nil), f.tasks...)
}

func (f *fakeSource) MoveTask(ctx context.Context, id string, status domain.Status) (domain.Task, error) {
	f.moves = append(f.moves, id+"->"+string(status))
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i].Status = status
			return f.tasks[i], nil
		}
	}
	return domain.Task{}, domain.ErrTaskNotFound
}

func testTasks(t *testing.T) []domain.Task {
	t.Helper()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	specs := []domain.TaskInput{
		{ID: "t1", Title: "Demo old cabinets", Status: domain.StatusDone, Project: "kitchen", Priority: domain.PriorityHigh},
		{ID: "t2", Title: "Install cabinets", Status: domain.StatusInProgress, Project: "kitchen", Priority: domain.PriorityHigh},
		{ID: "t3", Title: "Pick tile", Status: domain.StatusReady, Project: "kitchen", Priority: domain.PriorityMedium},
		{ID: "t4", Title: "Regrout shower", Status: domain.StatusReady, Project: "bathroom", Priority: domain.PriorityLow},
		{ID: "t5", Title: "Sketch vanity", Status: domain.StatusPlanning, Project: "bathroom", Priority: domain.PriorityMedium},
	}
	out := make([]domain.Task, len(specs))
	for i, in := range specs {
		task, err := domain.NewTask(in, now)
		if err != nil {
			t.Fatalf("NewTask(%s) error = %v", in.ID, err)
		}
		out[i] = task
	}
	return out
}

func TestVisibleTasksIntersectsFilters(t *testing.T) {
	src := &fakeSource{tasks: testTasks(t)}
	c := New(src)

	c.SetProjectFilter("kitchen")
	c.SetPriorityFilter("high")

	got := c.VisibleTasks()
	if len(got) != 2 {
		t.Fatalf("visible = %d tasks, want 2", len(got))
	}
	for _, task := range got {
		if task.Project != "kitchen" || task.Priority != domain.PriorityHigh {
			t.Fatalf("task %s leaked through the filter intersection", task.ID)
		}
	}

	// Filtering must not have touched the source.
	if len(src.tasks) != 5 {
		t.Fatalf("source mutated by filtering: %d tasks", len(src.tasks))
	}
}

func TestClearFiltersRestoresFullSet(t *testing.T) {
	c := New(&fakeSource{tasks: testTasks(t)})
	c.SetProjectFilter("bathroom")
	c.ClearFilters()

	if got := len(c.VisibleTasks()); got != 5 {
		t.Fatalf("visible after clear = %d, want 5", got)
	}
}

func TestCountsMatchVisibleColumns(t *testing.T) {
	c := New(&fakeSource{tasks: testTasks(t)})
	c.SetProjectFilter("kitchen")

	counts := c.Counts()
	total := 0
	for _, status := range domain.BoardStatuses() {
		n, ok := counts[status]
		if !ok {
			t.Fatalf("counts missing column %s", status)
		}
		if got := len(c.ColumnTasks(status)); got != n {
			t.Fatalf("column %s count = %d, ColumnTasks = %d", status, n, got)
		}
		total += n
	}
	if want := len(c.VisibleTasks()); total != want {
		t.Fatalf("counts sum to %d, visible = %d", total, want)
	}
}

func TestDragCommitsExactlyOneMove(t *testing.T) {
	src := &fakeSource{tasks: testTasks(t)}
	c := New(src)
	ctx := context.Background()

	c.PointerDown("t3", domain.StatusReady, 10, 5)
	if dragging := c.PointerMove(11, 5); dragging {
		t.Fatal("one-cell travel already counts as a drag")
	}
	if !c.PointerMove(14, 6) {
		t.Fatal("travel past the threshold did not start a drag")
	}

	rel, err := c.DropOn(ctx, domain.StatusInProgress)
	if err != nil {
		t.Fatalf("DropOn() error = %v", err)
	}
	if !rel.Moved || rel.Clicked {
		t.Fatalf("release = %+v, want a move with click suppressed", rel)
	}
	if rel.Task.Status != domain.StatusInProgress {
		t.Fatalf("task status = %s, want in-progress", rel.Task.Status)
	}
	if len(src.moves) != 1 || src.moves[0] != "t3->in-progress" {
		t.Fatalf("moves = %v, want exactly one", src.moves)
	}
	if _, dragging := c.Dragging(); dragging {
		t.Fatal("controller still dragging after drop")
	}
}

func TestShortPressIsAClickWithNoWrite(t *testing.T) {
	src := &fakeSource{tasks: testTasks(t)}
	c := New(src)

	c.PointerDown("t2", domain.StatusInProgress, 4, 4)
	c.PointerMove(5, 4)

	rel, err := c.DropOn(context.Background(), domain.StatusDone)
	if err != nil {
		t.Fatalf("DropOn() error = %v", err)
	}
	if !rel.Clicked || rel.Moved {
		t.Fatalf("release = %+v, want a click with no move", rel)
	}
	if rel.TaskID != "t2" {
		t.Fatalf("clicked task = %q, want t2", rel.TaskID)
	}
	if len(src.moves) != 0 {
		t.Fatalf("click produced writes: %v", src.moves)
	}
}

func TestReleaseOutsideColumnsAbandonsDrag(t *testing.T) {
	src := &fakeSource{tasks: testTasks(t)}
	c := New(src)

	c.PointerDown("t4", domain.StatusReady, 0, 0)
	c.PointerMove(10, 10)
	rel := c.Release()

	if rel.Clicked || rel.Moved {
		t.Fatalf("release = %+v, want neither click nor move", rel)
	}
	if len(src.moves) != 0 {
		t.Fatalf("abandoned drag produced writes: %v", src.moves)
	}
	if src.tasks[3].Status != domain.StatusReady {
		t.Fatalf("task status changed to %s without a drop", src.tasks[3].Status)
	}
}

func TestCancelDuringDragLeavesStatusUnchanged(t *testing.T) {
	src := &fakeSource{tasks: testTasks(t)}
	c := New(src)

	c.PickUp("t5", domain.StatusPlanning)
	c.Cancel()

	if _, dragging := c.Dragging(); dragging {
		t.Fatal("still dragging after cancel")
	}
	if len(src.moves) != 0 {
		t.Fatalf("cancel produced writes: %v", src.moves)
	}
}

func TestKeyboardPickUpAndDrop(t *testing.T) {
	src := &fakeSource{tasks: testTasks(t)}
	c := New(src)

	c.PickUp("t1", domain.StatusDone)
	if id, dragging := c.Dragging(); !dragging || id != "t1" {
		t.Fatalf("Dragging() = (%q, %v), want (t1, true)", id, dragging)
	}
	if origin, ok := c.Origin(); !ok || origin != domain.StatusDone {
		t.Fatalf("Origin() = (%s, %v), want (done, true)", origin, ok)
	}

	rel, err := c.DropOn(context.Background(), domain.StatusSomeday)
	if err != nil {
		t.Fatalf("DropOn() error = %v", err)
	}
	if !rel.Moved {
		t.Fatalf("release = %+v, want a move", rel)
	}
	if src.tasks[0].Status != domain.StatusSomeday {
		t.Fatalf("status = %s, want someday", src.tasks[0].Status)
	}
}

func TestDropWhileIdleIsNoOp(t *testing.T) {
	src := &fakeSource{tasks: testTasks(t)}
	c := New(src)

	rel, err := c.DropOn(context.Background(), domain.StatusDone)
	if err != nil {
		t.Fatalf("DropOn() error = %v", err)
	}
	if rel.Clicked || rel.Moved {
		t.Fatalf("idle drop = %+v, want no-op", rel)
	}
	if len(src.moves) != 0 {
		t.Fatalf("idle drop produced writes: %v", src.moves)
	}
}
