// Package board holds the drag/drop state machine and the filter logic
// the board view renders from. The controller never mutates tasks
// itself except through the one drop path that commits a status change.
package board

import (
	"context"

	"github.com/lab-foster/ProjectAtlas2/internal/domain"
)

// FilterAll is the sentinel meaning "no filter" for both dimensions.
const FilterAll = "all"

// DragThreshold is the pointer travel, in cells, that turns a press
// into a drag. Below it a release counts as a click.
const DragThreshold = 3

// TaskSource is the slice of the store the controller needs.
type TaskSource interface {
	Tasks() []domain.Task
	MoveTask(ctx context.Context, id string, status domain.Status) (domain.Task, error)
}

type phase int

const (
	phaseIdle phase = iota
	phasePressed
	phaseDragging
)

// Release reports what a pointer release amounted to.
type Release struct {
	// Clicked is set when the press never crossed the drag threshold;
	// the caller should open the task, not move it.
	Clicked bool
	// Moved is set when a drag committed a status change.
	Moved  bool
	TaskID string
	Task   domain.Task
}

// Controller tracks the drag gesture and the active filters.
type Controller struct {
	source TaskSource

	projectFilter  string
	priorityFilter string

	phase        phase
	dragID       string
	originStatus domain.Status
	pressX       int
	pressY       int
}

// New constructs a controller with both filters set to all.
func New(source TaskSource) *Controller {
	return &Controller{
		source:         source,
		projectFilter:  FilterAll,
		priorityFilter: FilterAll,
	}
}

// SetProjectFilter restricts the visible set to one project id, or
// clears the restriction when id is empty or FilterAll.
func (c *Controller) SetProjectFilter(id string) {
	if id == "" {
		id = FilterAll
	}
	c.projectFilter = id
}

// SetPriorityFilter restricts the visible set to one priority, or
// clears the restriction when p is empty or FilterAll.
func (c *Controller) SetPriorityFilter(p string) {
	if p == "" {
		p = FilterAll
	}
	c.priorityFilter = p
}

// ProjectFilter reports the active project filter.
func (c *Controller) ProjectFilter() string { return c.projectFilter }

// PriorityFilter reports the active priority filter.
func (c *Controller) PriorityFilter() string { return c.priorityFilter }

// ClearFilters resets both filter dimensions to all.
func (c *Controller) ClearFilters() {
	c.projectFilter = FilterAll
	c.priorityFilter = FilterAll
}

// VisibleTasks returns the tasks passing both filters, in collection
// order. Filtering never touches the underlying collections.
func (c *Controller) VisibleTasks() []domain.Task {
	var out []domain.Task
	for _, task := range c.source.Tasks() {
		if c.visible(task) {
			out = append(out, task)
		}
	}
	return out
}

// ColumnTasks returns the visible tasks in one column.
func (c *Controller) ColumnTasks(status domain.Status) []domain.Task {
	var out []domain.Task
	for _, task := range c.source.Tasks() {
		if task.Status == status && c.visible(task) {
			out = append(out, task)
		}
	}
	return out
}

// Counts returns the visible task count per board column. Tasks whose
// status falls outside the board enum are counted nowhere.
func (c *Controller) Counts() map[domain.Status]int {
	counts := make(map[domain.Status]int, len(domain.BoardStatuses()))
	for _, status := range domain.BoardStatuses() {
		counts[status] = 0
	}
	for _, task := range c.source.Tasks() {
		if !c.visible(task) {
			continue
		}
		if _, ok := counts[task.Status]; ok {
			counts[task.Status]++
		}
	}
	return counts
}

func (c *Controller) visible(task domain.Task) bool {
	if c.projectFilter != FilterAll && task.Project != c.projectFilter {
		return false
	}
	if c.priorityFilter != FilterAll && string(task.Priority) != c.priorityFilter {
		return false
	}
	return true
}

// PointerDown records a press on a task card. The gesture stays a
// potential click until the pointer travels past DragThreshold.
func (c *Controller) PointerDown(taskID string, origin domain.Status, x, y int) {
	c.phase = phasePressed
	c.dragID = taskID
	c.originStatus = origin
	c.pressX = x
	c.pressY = y
}

// PointerMove advances a press into a drag once the pointer has moved
// far enough from where it went down. It reports whether a drag is now
// in progress.
func (c *Controller) PointerMove(x, y int) bool {
	if c.phase == phasePressed {
		if abs(x-c.pressX)+abs(y-c.pressY) >= DragThreshold {
			c.phase = phaseDragging
		}
	}
	return c.phase == phaseDragging
}

// PickUp starts a drag directly, used by the keyboard move flow where
// there is no pointer threshold to cross.
func (c *Controller) PickUp(taskID string, origin domain.Status) {
	c.phase = phaseDragging
	c.dragID = taskID
	c.originStatus = origin
}

// DropOn releases the gesture onto a column. A drag commits the status
// change through the store; a press that never became a drag reports a
// click instead, with no write. Dropping while idle is a no-op.
func (c *Controller) DropOn(ctx context.Context, target domain.Status) (Release, error) {
	defer c.reset()

	switch c.phase {
	case phasePressed:
		return Release{Clicked: true, TaskID: c.dragID}, nil
	case phaseDragging:
		task, err := c.source.MoveTask(ctx, c.dragID, target)
		if err != nil {
			return Release{TaskID: c.dragID}, err
		}
		return Release{Moved: true, TaskID: c.dragID, Task: task}, nil
	default:
		return Release{}, nil
	}
}

// Release ends the gesture away from any column: a short press still
// counts as a click, a drag is abandoned without a write.
func (c *Controller) Release() Release {
	defer c.reset()
	if c.phase == phasePressed {
		return Release{Clicked: true, TaskID: c.dragID}
	}
	return Release{}
}

// Cancel abandons the gesture unconditionally with no write.
func (c *Controller) Cancel() {
	c.reset()
}

// Dragging reports whether a drag is in progress, and for which task.
func (c *Controller) Dragging() (string, bool) {
	if c.phase != phaseDragging {
		return "", false
	}
	return c.dragID, true
}

// Origin reports the column the current gesture started from.
func (c *Controller) Origin() (domain.Status, bool) {
	if c.phase == phaseIdle {
		return "", false
	}
	return c.originStatus, true
}

func (c *Controller) reset() {
	c.phase = phaseIdle
	c.dragID = ""
	c.originStatus = ""
	c.pressX = 0
	c.pressY = 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
