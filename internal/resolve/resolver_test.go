package resolve

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lab-foster/ProjectAtlas2/internal/domain"
	"github.com/lab-foster/ProjectAtlas2/internal/store"
)

type memPersister struct{ snap store.Snapshot }

func (m *memPersister) LoadSnapshot(ctx context.Context) (store.Snapshot, bool, error) {
	return m.snap, len(m.snap.Tasks) > 0, nil
}

func (m *memPersister) SaveSnapshot(ctx context.Context, snap store.Snapshot) error {
	m.snap = snap
	return nil
}

func newTestStore(t *testing.T, titles ...string) *store.Store {
	t.Helper()
	n := 0
	s := store.New(&memPersister{}, nil,
		func() string { n++; return fmt.Sprintf("id-%03d", n) },
		func() time.Time { return time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC) })
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for _, title := range titles {
		if _, err := s.CreateTask(context.Background(), domain.TaskInput{Title: title}); err != nil {
			t.Fatalf("CreateTask(%q) error = %v", title, err)
		}
	}
	return s
}

func TestResolveByID(t *testing.T) {
	s := newTestStore(t)

	for _, task := range s.Tasks() {
		got := Resolve(s.Tasks(), s.Index(), task.ID)
		if !got.Resolved || got.Method != MethodID {
			t.Fatalf("Resolve(%q) = %+v, want id match", task.ID, got)
		}
		if got.Task.ID != task.ID {
			t.Fatalf("Resolve(%q) returned task %q", task.ID, got.Task.ID)
		}
	}
}

func TestResolveByExactTitleNormalizes(t *testing.T) {
	s := newTestStore(t)

	got := Resolve(s.Tasks(), s.Index(), "  INSTALL BASE CABINETS ")
	if !got.Resolved || got.Method != MethodTitle {
		t.Fatalf("Resolve() = %+v, want exact title match", got)
	}
	if got.Task.ID != "task-install-cabinets" {
		t.Fatalf("resolved id = %q, want task-install-cabinets", got.Task.ID)
	}
	if got.Ambiguous {
		t.Fatal("single title match flagged ambiguous")
	}
}

func TestResolveDuplicateTitleReturnsFirstInserted(t *testing.T) {
	s := newTestStore(t, "Hang drywall", "hang drywall")

	got := Resolve(s.Tasks(), s.Index(), "Hang Drywall")
	if !got.Resolved || got.Method != MethodTitle {
		t.Fatalf("Resolve() = %+v, want title match", got)
	}
	if got.Task.Title != "Hang drywall" {
		t.Fatalf("resolved title = %q, want the first inserted", got.Task.Title)
	}
	if !got.Ambiguous {
		t.Fatal("duplicate title not flagged ambiguous")
	}
}

func TestResolveSubstringBothDirections(t *testing.T) {
	s := newTestStore(t)

	// Query contained in a title.
	got := Resolve(s.Tasks(), s.Index(), "backsplash")
	if !got.Resolved || got.Method != MethodSubstring {
		t.Fatalf("Resolve(backsplash) = %+v, want substring match", got)
	}
	if got.Task.ID != "task-pick-backsplash" {
		t.Fatalf("resolved id = %q, want task-pick-backsplash", got.Task.ID)
	}

	// Title contained in the query.
	got = Resolve(s.Tasks(), s.Index(), "please regrout shower this week")
	if !got.Resolved || got.Method != MethodSubstring {
		t.Fatalf("Resolve(long query) = %+v, want substring match", got)
	}
	if got.Task.ID != "task-regrout-shower" {
		t.Fatalf("resolved id = %q, want task-regrout-shower", got.Task.ID)
	}
}

func TestResolveSubstringFirstInCollectionOrder(t *testing.T) {
	s := newTestStore(t, "Sand the floor", "Sand the railing")

	got := Resolve(s.Tasks(), s.Index(), "sand the")
	if !got.Resolved || got.Method != MethodSubstring {
		t.Fatalf("Resolve() = %+v, want substring match", got)
	}
	if got.Task.Title != "Sand the floor" {
		t.Fatalf("resolved title = %q, want first in collection order", got.Task.Title)
	}
	if !got.Ambiguous {
		t.Fatal("multiple substring matches not flagged ambiguous")
	}
}

func TestResolveUnknownYieldsPlaceholder(t *testing.T) {
	s := newTestStore(t)

	got := Resolve(s.Tasks(), s.Index(), "replace the roof")
	if got.Resolved || got.Method != MethodNone {
		t.Fatalf("Resolve() = %+v, want unresolved placeholder", got)
	}
	if got.Task.ID != "" {
		t.Fatalf("placeholder carries id %q, want empty", got.Task.ID)
	}
	if got.Task.Title != "replace the roof" {
		t.Fatalf("placeholder title = %q, want the query", got.Task.Title)
	}
	if got.Task.Description == "" {
		t.Fatal("placeholder has no stand-in description")
	}
}

func TestResolveEmptyQuery(t *testing.T) {
	s := newTestStore(t)

	got := Resolve(s.Tasks(), s.Index(), "   ")
	if got.Resolved {
		t.Fatalf("Resolve(blank) = %+v, want unresolved", got)
	}
	if got.Task.Title == "" {
		t.Fatal("placeholder for blank query has no title")
	}
}
