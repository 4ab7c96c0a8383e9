// Package tui renders the renovation board as a bubbletea program: six
// status columns, drag/drop with mouse or keyboard, and modal overlays
// for forms, task info, and delete confirmation. At most one overlay is
// open at a time.
package tui

import (
	"context"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/lab-foster/ProjectAtlas2/internal/board"
	"github.com/lab-foster/ProjectAtlas2/internal/domain"
)

// Service represents service data used by this package.
type Service interface {
	Tasks() []domain.Task
	Projects() []domain.Project
	Events() []domain.Event
	Documents() []domain.Document
	CreateTask(context.Context, domain.TaskInput) (domain.Task, error)
	UpdateTask(context.Context, string, domain.TaskInput) (domain.Task, error)
	MoveTask(context.Context, string, domain.Status) (domain.Task, error)
	DeleteTask(context.Context, string) error
	CreateProject(context.Context, domain.ProjectInput) (domain.Project, error)
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeAddTask
	modeEditTask
	modeTaskInfo
	modeConfirmDelete
	modeAddProject
	modeFilter
)

// task-form field indexes used throughout keyboard/update logic.
const (
	taskFieldTitle = iota
	taskFieldDescription
	taskFieldStatus
	taskFieldProject
	taskFieldPriority
	taskFieldDue
	taskFieldEstimate
	taskFieldTags
	taskFormFieldCount
)

// project-form field indexes used for focused form actions.
const (
	projectFieldName = iota
	projectFieldStatus
	projectFieldBudget
	projectFieldPriority
	projectFormFieldCount
)

// filter-form field indexes.
const (
	filterFieldProject = iota
	filterFieldPriority
	filterFormFieldCount
)

// taskFormLabels stores task-form labels in display order.
var taskFormLabels = []string{"title", "description", "status", "project", "priority", "due", "estimate", "tags"}

// projectFormLabels stores project-form labels in display order.
var projectFormLabels = []string{"name", "status", "budget", "priority"}

// filterFormLabels stores filter-form labels in display order.
var filterFormLabels = []string{"project", "priority"}

// Model represents model data used by this package.
type Model struct {
	svc   Service
	board *board.Controller

	ready  bool
	width  int
	height int
	err    error

	status string

	help help.Model
	keys keyMap
	md   *descriptionRenderer

	tasks     []domain.Task
	projects  []domain.Project
	events    []domain.Event
	documents []domain.Document

	selectedColumn int
	selectedTask   int

	mode       inputMode
	formInputs []textinput.Model
	formFocus  int

	editingTaskID  string
	taskInfoTaskID string

	confirmDelete bool
	pendingDelete domain.Task
	confirmChoice int

	pendingFocusTaskID string
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	tasks     []domain.Task
	projects  []domain.Project
	events    []domain.Event
	documents []domain.Document
}

// actionMsg carries message data through update handling.
type actionMsg struct {
	err         error
	status      string
	reload      bool
	focusTaskID string
}

// DataChangedMsg wakes the program after another instance persisted a
// change; the sync subscriber sends it from outside the event loop.
type DataChangedMsg struct{}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:           svc,
		board:         board.New(svc),
		status:        "loading...",
		help:          h,
		keys:          newKeyMap(),
		md:            &descriptionRenderer{},
		confirmDelete: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	return loadedMsg{
		tasks:     m.svc.Tasks(),
		projects:  m.svc.Projects(),
		events:    m.svc.Events(),
		documents: m.svc.Documents(),
	}
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		m.err = nil
		m.tasks = msg.tasks
		m.projects = msg.projects
		m.events = msg.events
		m.documents = msg.documents
		if m.pendingFocusTaskID != "" {
			m.focusTaskByID(m.pendingFocusTaskID)
			m.pendingFocusTaskID = ""
		}
		m.clampSelections()
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case DataChangedMsg:
		m.status = "synced"
		return m, m.loadData

	case actionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.focusTaskID != "" {
			m.pendingFocusTaskID = msg.focusTaskID
		}
		if msg.reload {
			return m, m.loadData
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseClickMsg:
		return m.handleMousePress(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	default:
		return m, nil
	}
}

// handleNormalModeKey handles key presses while no overlay is open.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		if m.help.ShowAll {
			m.status = "help"
		} else {
			m.status = "ready"
		}
		return m, nil
	case msg.String() == "esc":
		if m.help.ShowAll {
			m.help.ShowAll = false
			m.status = "ready"
			return m, nil
		}
		if _, dragging := m.board.Dragging(); dragging {
			m.board.Cancel()
			m.status = "move cancelled"
			return m, nil
		}
		if m.board.ProjectFilter() != board.FilterAll || m.board.PriorityFilter() != board.FilterAll {
			m.board.ClearFilters()
			m.status = "filters cleared"
			return m, nil
		}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.moveLeft):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		if m.selectedColumn < len(domain.BoardStatuses())-1 {
			m.selectedColumn++
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		tasks := m.currentColumnTasks()
		if len(tasks) > 0 && m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.selectedTask > 0 {
			m.selectedTask--
		}
		return m, nil
	case key.Matches(msg, m.keys.grabTask):
		if _, dragging := m.board.Dragging(); dragging {
			return m.dropOnSelectedColumn()
		}
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.board.PickUp(task.ID, task.Status)
		m.status = fmt.Sprintf("moving %q • h/l aim • m drop • esc cancel", truncate(task.Title, 28))
		return m, nil
	case key.Matches(msg, m.keys.taskInfo):
		if _, dragging := m.board.Dragging(); dragging {
			return m.dropOnSelectedColumn()
		}
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m.openTaskInfo(task.ID), nil
	case key.Matches(msg, m.keys.moveTaskLeft):
		return m.moveSelectedTask(-1)
	case key.Matches(msg, m.keys.moveTaskRight):
		return m.moveSelectedTask(1)
	case key.Matches(msg, m.keys.addTask):
		cmd := m.startTaskForm(nil)
		return m, cmd
	case key.Matches(msg, m.keys.editTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		cmd := m.startTaskForm(&task)
		return m, cmd
	case key.Matches(msg, m.keys.deleteTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		if !m.confirmDelete {
			return m.deleteTask(task)
		}
		m.closeOverlay()
		m.mode = modeConfirmDelete
		m.pendingDelete = task
		m.confirmChoice = 0
		m.status = "confirm delete"
		return m, nil
	case key.Matches(msg, m.keys.newProject):
		cmd := m.startProjectForm()
		return m, cmd
	case key.Matches(msg, m.keys.filter):
		cmd := m.startFilterForm()
		return m, cmd
	default:
		return m, nil
	}
}

// handleInputModeKey handles key presses while an overlay is open.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeTaskInfo {
		switch msg.String() {
		case "esc", "i", "q":
			m.closeOverlay()
			m.status = "ready"
			return m, nil
		case "e":
			task, ok := m.taskByID(m.taskInfoTaskID)
			if !ok {
				m.closeOverlay()
				m.status = "task info unavailable"
				return m, nil
			}
			cmd := m.startTaskForm(&task)
			return m, cmd
		case "d":
			task, ok := m.taskByID(m.taskInfoTaskID)
			if !ok {
				m.closeOverlay()
				return m, nil
			}
			if !m.confirmDelete {
				m.closeOverlay()
				return m.deleteTask(task)
			}
			m.closeOverlay()
			m.mode = modeConfirmDelete
			m.pendingDelete = task
			m.confirmChoice = 0
			m.status = "confirm delete"
			return m, nil
		default:
			return m, nil
		}
	}

	if m.mode == modeConfirmDelete {
		switch msg.String() {
		case "esc", "n":
			m.closeOverlay()
			m.status = "delete cancelled"
			return m, nil
		case "h", "left", "l", "right", "tab":
			m.confirmChoice = 1 - m.confirmChoice
			return m, nil
		case "y":
			task := m.pendingDelete
			m.closeOverlay()
			return m.deleteTask(task)
		case "enter":
			task := m.pendingDelete
			choice := m.confirmChoice
			m.closeOverlay()
			if choice == 1 {
				return m.deleteTask(task)
			}
			m.status = "delete cancelled"
			return m, nil
		default:
			return m, nil
		}
	}

	// Remaining modes are textinput forms.
	switch msg.String() {
	case "esc":
		m.closeOverlay()
		m.status = "cancelled"
		return m, nil
	case "tab", "down":
		return m.focusFormField(m.formFocus + 1)
	case "shift+tab", "up":
		return m.focusFormField(m.formFocus - 1)
	case "enter":
		switch m.mode {
		case modeAddTask, modeEditTask:
			return m.submitTaskForm()
		case modeAddProject:
			return m.submitProjectForm()
		case modeFilter:
			return m.submitFilterForm()
		}
		return m, nil
	default:
		if m.formFocus < 0 || m.formFocus >= len(m.formInputs) {
			return m, nil
		}
		var cmd tea.Cmd
		m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
		return m, cmd
	}
}

// handleMousePress starts a press gesture on a task card.
func (m Model) handleMousePress(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseLeft {
		return m, nil
	}
	if m.help.ShowAll {
		m.help.ShowAll = false
		m.status = "ready"
		return m, nil
	}
	if m.mode != modeNone {
		if !m.overlayContains(msg.X, msg.Y) {
			m.closeOverlay()
			m.status = "ready"
		}
		return m, nil
	}
	colIdx, ok := m.columnIndexAt(msg.X)
	if !ok {
		return m, nil
	}
	m.selectedColumn = colIdx
	tasks := m.currentColumnTasks()
	row := msg.Y - m.boardTop() - 2
	if row < 0 || len(tasks) == 0 {
		m.clampSelections()
		return m, nil
	}
	m.selectedTask = clamp(row/cardRows, 0, len(tasks)-1)
	task := tasks[m.selectedTask]
	m.board.PointerDown(task.ID, task.Status, msg.X, msg.Y)
	return m, nil
}

// handleMouseMotion advances a press into a drag once the pointer has
// travelled far enough.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone {
		return m, nil
	}
	if m.board.PointerMove(msg.X, msg.Y) {
		if colIdx, ok := m.columnIndexAt(msg.X); ok {
			m.selectedColumn = colIdx
			m.selectedTask = 0
		}
		if id, _ := m.board.Dragging(); id != "" {
			if task, ok := m.taskByID(id); ok {
				m.status = fmt.Sprintf("moving %q • release to drop • esc cancel", truncate(task.Title, 28))
			}
		}
	}
	return m, nil
}

// handleMouseRelease finishes the gesture: a short press opens the
// task, a drag over a column commits the move, anything else is a
// cancel.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone {
		return m, nil
	}
	colIdx, overColumn := m.columnIndexAt(msg.X)
	if !overColumn {
		rel := m.board.Release()
		if rel.Clicked {
			return m.openTaskInfo(rel.TaskID), nil
		}
		if rel.TaskID == "" {
			return m, nil
		}
		m.status = "move cancelled"
		return m, nil
	}

	target := domain.BoardStatuses()[clamp(colIdx, 0, len(domain.BoardStatuses())-1)]
	rel, err := m.board.DropOn(context.Background(), target)
	if err != nil {
		m.err = err
		return m, nil
	}
	switch {
	case rel.Clicked:
		return m.openTaskInfo(rel.TaskID), nil
	case rel.Moved:
		m.selectedColumn = colIdx
		m.status = fmt.Sprintf("moved %q to %s", truncate(rel.Task.Title, 28), target.Label())
		m.pendingFocusTaskID = rel.TaskID
		return m, m.loadData
	default:
		return m, nil
	}
}

// handleMouseWheel handles mouse wheel.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone || m.help.ShowAll {
		return m, nil
	}
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		if m.selectedTask > 0 {
			m.selectedTask--
		}
	case tea.MouseWheelDown:
		if m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
	}
	return m, nil
}

// dropOnSelectedColumn commits a keyboard grab onto the highlighted column.
func (m Model) dropOnSelectedColumn() (tea.Model, tea.Cmd) {
	target := m.currentColumnStatus()
	rel, err := m.board.DropOn(context.Background(), target)
	if err != nil {
		m.err = err
		return m, nil
	}
	if rel.Moved {
		m.status = fmt.Sprintf("moved %q to %s", truncate(rel.Task.Title, 28), target.Label())
		m.pendingFocusTaskID = rel.TaskID
		return m, m.loadData
	}
	return m, nil
}

// moveSelectedTask moves the focused task one column left or right.
func (m Model) moveSelectedTask(delta int) (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskInCurrentColumn()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	statuses := domain.BoardStatuses()
	idx := task.Status.Position() + delta
	if idx < 0 || idx >= len(statuses) {
		return m, nil
	}
	m.board.PickUp(task.ID, task.Status)
	rel, err := m.board.DropOn(context.Background(), statuses[idx])
	if err != nil {
		m.err = err
		return m, nil
	}
	m.selectedColumn = idx
	m.status = fmt.Sprintf("moved %q to %s", truncate(rel.Task.Title, 28), statuses[idx].Label())
	m.pendingFocusTaskID = task.ID
	return m, m.loadData
}

// deleteTask commits a delete through the store.
func (m Model) deleteTask(task domain.Task) (tea.Model, tea.Cmd) {
	return m, func() tea.Msg {
		if err := m.svc.DeleteTask(context.Background(), task.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: fmt.Sprintf("deleted %q", truncate(task.Title, 28)), reload: true}
	}
}

// openTaskInfo opens the task info overlay, replacing any open overlay.
func (m Model) openTaskInfo(taskID string) Model {
	if _, ok := m.taskByID(taskID); !ok {
		m.status = "task not found"
		return m
	}
	m.closeOverlay()
	m.mode = modeTaskInfo
	m.taskInfoTaskID = taskID
	m.status = "task info"
	return m
}

// closeOverlay resets all overlay state. Closing an already-closed
// overlay is a no-op.
func (m *Model) closeOverlay() {
	m.mode = modeNone
	m.formInputs = nil
	m.formFocus = 0
	m.editingTaskID = ""
	m.taskInfoTaskID = ""
	m.pendingDelete = domain.Task{}
	m.confirmChoice = 0
}

// startTaskForm opens the create/edit task overlay.
func (m *Model) startTaskForm(task *domain.Task) tea.Cmd {
	m.closeOverlay()
	m.formInputs = []textinput.Model{
		newModalInput("", "task title (required)", "", 120),
		newModalInput("", "short description, markdown ok", "", 480),
		newModalInput("", "someday | planning | ready | in-progress | blocked | done", "", 16),
		newModalInput("", "project id", "", 64),
		newModalInput("", "low | medium | high", "", 16),
		newModalInput("", "due date, free-form", "", 64),
		newModalInput("", "estimated hours", "", 8),
		newModalInput("", "csv tags", "", 160),
	}
	if task != nil {
		m.formInputs[taskFieldTitle].SetValue(task.Title)
		m.formInputs[taskFieldDescription].SetValue(task.Description)
		m.formInputs[taskFieldStatus].SetValue(string(task.Status))
		m.formInputs[taskFieldProject].SetValue(task.Project)
		m.formInputs[taskFieldPriority].SetValue(string(task.Priority))
		m.formInputs[taskFieldDue].SetValue(task.DueDate)
		if task.Estimate > 0 {
			m.formInputs[taskFieldEstimate].SetValue(strconv.FormatFloat(task.Estimate, 'f', -1, 64))
		}
		if len(task.Tags) > 0 {
			m.formInputs[taskFieldTags].SetValue(strings.Join(task.Tags, ","))
		}
		m.mode = modeEditTask
		m.editingTaskID = task.ID
		m.status = "edit task"
	} else {
		m.formInputs[taskFieldStatus].SetValue(string(m.currentColumnStatus()))
		m.mode = modeAddTask
		m.status = "new task"
	}
	m.formFocus = 0
	return m.formInputs[0].Focus()
}

// startProjectForm opens the create project overlay.
func (m *Model) startProjectForm() tea.Cmd {
	m.closeOverlay()
	m.formInputs = []textinput.Model{
		newModalInput("", "project name (required)", "", 120),
		newModalInput("", "planning | in-progress | done", "", 24),
		newModalInput("", "planned budget", "", 16),
		newModalInput("", "low | medium | high", "", 16),
	}
	m.mode = modeAddProject
	m.formFocus = 0
	m.status = "new project"
	return m.formInputs[0].Focus()
}

// startFilterForm opens the board filter overlay.
func (m *Model) startFilterForm() tea.Cmd {
	m.closeOverlay()
	m.formInputs = []textinput.Model{
		newModalInput("", "project id, or all", "", 64),
		newModalInput("", "all | low | medium | high", "", 16),
	}
	if f := m.board.ProjectFilter(); f != board.FilterAll {
		m.formInputs[filterFieldProject].SetValue(f)
	}
	if f := m.board.PriorityFilter(); f != board.FilterAll {
		m.formInputs[filterFieldPriority].SetValue(f)
	}
	m.mode = modeFilter
	m.formFocus = 0
	m.status = "filters"
	return m.formInputs[0].Focus()
}

// focusFormField moves focus between form inputs, wrapping at the ends.
func (m Model) focusFormField(idx int) (tea.Model, tea.Cmd) {
	if len(m.formInputs) == 0 {
		return m, nil
	}
	if idx < 0 {
		idx = len(m.formInputs) - 1
	}
	if idx >= len(m.formInputs) {
		idx = 0
	}
	for i := range m.formInputs {
		m.formInputs[i].Blur()
	}
	m.formFocus = idx
	return m, m.formInputs[idx].Focus()
}

// submitTaskForm validates and commits the create/edit task form.
// Invalid input keeps the form open with an inline message.
func (m Model) submitTaskForm() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.formInputs[taskFieldTitle].Value())
	if title == "" {
		m.status = "title is required"
		return m.focusFormField(taskFieldTitle)
	}

	in := domain.TaskInput{
		Title:       title,
		Description: m.formInputs[taskFieldDescription].Value(),
		Project:     m.formInputs[taskFieldProject].Value(),
		DueDate:     m.formInputs[taskFieldDue].Value(),
		Tags:        splitCSV(m.formInputs[taskFieldTags].Value()),
	}
	if raw := strings.TrimSpace(m.formInputs[taskFieldStatus].Value()); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			m.status = "unknown status " + strconv.Quote(raw)
			return m.focusFormField(taskFieldStatus)
		}
		in.Status = status
	}
	if raw := strings.TrimSpace(m.formInputs[taskFieldPriority].Value()); raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			m.status = "unknown priority " + strconv.Quote(raw)
			return m.focusFormField(taskFieldPriority)
		}
		in.Priority = priority
	}
	if raw := strings.TrimSpace(m.formInputs[taskFieldEstimate].Value()); raw != "" {
		estimate, err := strconv.ParseFloat(raw, 64)
		if err != nil || estimate < 0 {
			m.status = "estimate must be a number of hours"
			return m.focusFormField(taskFieldEstimate)
		}
		in.Estimate = estimate
	}

	editingID := m.editingTaskID
	m.closeOverlay()
	return m, func() tea.Msg {
		if editingID != "" {
			task, err := m.svc.UpdateTask(context.Background(), editingID, in)
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{status: "task updated", reload: true, focusTaskID: task.ID}
		}
		task, err := m.svc.CreateTask(context.Background(), in)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "task created", reload: true, focusTaskID: task.ID}
	}
}

// submitProjectForm validates and commits the create project form.
func (m Model) submitProjectForm() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.formInputs[projectFieldName].Value())
	if name == "" {
		m.status = "name is required"
		return m.focusFormField(projectFieldName)
	}
	in := domain.ProjectInput{
		Name:   name,
		Status: m.formInputs[projectFieldStatus].Value(),
	}
	if raw := strings.TrimSpace(m.formInputs[projectFieldBudget].Value()); raw != "" {
		budget, err := strconv.ParseFloat(raw, 64)
		if err != nil || budget < 0 {
			m.status = "budget must be a number"
			return m.focusFormField(projectFieldBudget)
		}
		in.Budget = budget
	}
	if raw := strings.TrimSpace(m.formInputs[projectFieldPriority].Value()); raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			m.status = "unknown priority " + strconv.Quote(raw)
			return m.focusFormField(projectFieldPriority)
		}
		in.Priority = priority
	}
	m.closeOverlay()
	return m, func() tea.Msg {
		project, err := m.svc.CreateProject(context.Background(), in)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: fmt.Sprintf("project %q created", truncate(project.Name, 28)), reload: true}
	}
}

// submitFilterForm applies the filter overlay to the board.
func (m Model) submitFilterForm() (tea.Model, tea.Cmd) {
	project := strings.TrimSpace(m.formInputs[filterFieldProject].Value())
	priority := strings.ToLower(strings.TrimSpace(m.formInputs[filterFieldPriority].Value()))
	switch priority {
	case "", board.FilterAll, "low", "medium", "high":
	default:
		m.status = "unknown priority " + strconv.Quote(priority)
		return m.focusFormField(filterFieldPriority)
	}
	m.board.SetProjectFilter(project)
	m.board.SetPriorityFilter(priority)
	m.closeOverlay()
	m.selectedTask = 0
	m.status = "filters applied"
	return m, nil
}

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		v := tea.NewView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}
	if !m.ready {
		v := tea.NewView("loading...")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	helpStyle := lipgloss.NewStyle().Foreground(muted)
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render("atlas") + "  renovation board"
	if f := m.board.ProjectFilter(); f != board.FilterAll {
		header += statusStyle.Render("  project: " + f)
	}
	if f := m.board.PriorityFilter(); f != board.FilterAll {
		header += statusStyle.Render("  priority: " + f)
	}
	if id, dragging := m.board.Dragging(); dragging {
		if task, ok := m.taskByID(id); ok {
			header += statusStyle.Render("  moving: " + truncate(task.Title, 32))
		}
	}

	statuses := domain.BoardStatuses()
	counts := m.board.Counts()
	colWidth := m.columnWidthFor(m.width)
	colHeight := m.columnHeight()

	baseColStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(1, 2).
		MarginRight(1).
		Width(colWidth)
	selColStyle := baseColStyle.BorderForeground(accent)
	colTitle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	selectedTaskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	itemSubStyle := lipgloss.NewStyle().Foreground(muted)

	columnViews := make([]string, 0, len(statuses))
	for colIdx, status := range statuses {
		colTasks := m.board.ColumnTasks(status)
		headerLine := colTitle.Render(fmt.Sprintf("%s (%d)", status.Label(), counts[status]))

		taskLines := make([]string, 0, max(1, len(colTasks)*cardRows))
		if len(colTasks) == 0 {
			taskLines = append(taskLines, emptyStyle.Render("(empty)"))
		} else {
			for taskIdx, task := range colTasks {
				selected := colIdx == m.selectedColumn && taskIdx == m.selectedTask
				prefix := "   "
				if selected {
					prefix = "│  "
				}
				title := prefix + truncate(task.Title, max(1, colWidth-10))
				if selected {
					title = selectedTaskStyle.Render(title)
				}
				taskLines = append(taskLines, title)
				if sub := m.cardSecondary(task); sub != "" {
					taskLines = append(taskLines, prefix+itemSubStyle.Render(truncate(sub, max(1, colWidth-10))))
				} else {
					taskLines = append(taskLines, "")
				}
				taskLines = append(taskLines, "")
			}
		}

		innerHeight := max(1, colHeight-4)
		content := fitLines(headerLine+"\n"+strings.Join(taskLines, "\n"), innerHeight)
		if colIdx == m.selectedColumn {
			columnViews = append(columnViews, selColStyle.Render(content))
		} else {
			columnViews = append(columnViews, baseColStyle.Render(content))
		}
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, columnViews...)

	sections := []string{header, "", body}
	if line := m.renderScheduleLine(statusStyle); line != "" {
		sections = append(sections, line)
	}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		helpHeight := lipgloss.Height(helpLine)
		content = fitLines(content, max(0, m.height-helpHeight))
	}

	fullContent := content + "\n" + helpLine
	overlay := m.renderModeOverlay(accent, muted, helpStyle, m.width-8)
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(accent, muted, m.width-8)
	}
	if overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}

	v := tea.NewView(fullContent)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// renderScheduleLine summarizes upcoming events and stored documents.
func (m Model) renderScheduleLine(style lipgloss.Style) string {
	if len(m.events) == 0 && len(m.documents) == 0 {
		return ""
	}
	parts := make([]string, 0, 3)
	if len(m.events) > 0 {
		next := m.events[0]
		for _, event := range m.events[1:] {
			if event.Date < next.Date {
				next = event
			}
		}
		when := next.Date
		if !next.AllDay() {
			when += fmt.Sprintf(" (%dm)", next.DurationMinutes)
		}
		parts = append(parts, fmt.Sprintf("next: %s %s", when, truncate(next.Title, 36)))
	}
	parts = append(parts, fmt.Sprintf("%d events", len(m.events)))
	parts = append(parts, fmt.Sprintf("%d documents", len(m.documents)))
	return style.Render(strings.Join(parts, " • "))
}

// renderModeOverlay renders the active overlay, if any.
func (m Model) renderModeOverlay(accent, muted color.Color, helpStyle lipgloss.Style, maxWidth int) string {
	switch m.mode {
	case modeTaskInfo:
		task, ok := m.taskByID(m.taskInfoTaskID)
		if !ok {
			return ""
		}
		boxStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
		if maxWidth > 0 {
			boxStyle = boxStyle.Width(clamp(maxWidth, 24, 76))
		}
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
		hintStyle := lipgloss.NewStyle().Foreground(muted)
		due := task.DueDate
		if due == "" {
			due = "-"
		}
		project := m.projectLabel(task.Project)
		lines := []string{
			titleStyle.Render("Task Info"),
			task.Title,
			hintStyle.Render("status: " + task.Status.Label() + " • priority: " + string(task.Priority)),
			hintStyle.Render("project: " + project + " • due: " + due),
		}
		if task.Estimate > 0 {
			lines = append(lines, hintStyle.Render(fmt.Sprintf("estimate: %.1fh", task.Estimate)))
		}
		if len(task.Tags) > 0 {
			lines = append(lines, hintStyle.Render("tags: "+strings.Join(task.Tags, ", ")))
		}
		if len(task.Dependencies) > 0 {
			lines = append(lines, hintStyle.Render("depends on: "+m.summarizeTaskRefs(task.Dependencies, 4)))
		}
		if len(task.Photos) > 0 {
			lines = append(lines, hintStyle.Render(fmt.Sprintf("%d photos", len(task.Photos))))
		}
		if desc := m.md.render(task.Description, clamp(maxWidth-4, 24, 72)); desc != "" {
			lines = append(lines, "", desc)
		}
		lines = append(lines, "", hintStyle.Render("e edit • d delete • esc close"))
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeConfirmDelete:
		boxStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("203")).
			Padding(0, 1)
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
		hintStyle := lipgloss.NewStyle().Foreground(muted)
		cancel := "[ cancel ]"
		confirm := "  delete  "
		if m.confirmChoice == 1 {
			cancel = "  cancel  "
			confirm = "[ delete ]"
		}
		lines := []string{
			titleStyle.Render("Delete Task"),
			truncate(m.pendingDelete.Title, 48),
			"",
			cancel + "   " + confirm,
			hintStyle.Render("y delete • n/esc cancel • tab switch"),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeAddTask, modeEditTask:
		title := "New Task"
		if m.mode == modeEditTask {
			title = "Edit Task"
		}
		return m.renderFormOverlay(title, taskFormLabels, accent, muted, maxWidth)

	case modeAddProject:
		return m.renderFormOverlay("New Project", projectFormLabels, accent, muted, maxWidth)

	case modeFilter:
		return m.renderFormOverlay("Board Filters", filterFormLabels, accent, muted, maxWidth)

	default:
		return ""
	}
}

// renderFormOverlay renders a labelled textinput form.
func (m Model) renderFormOverlay(title string, labels []string, accent, muted color.Color, maxWidth int) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	if maxWidth > 0 {
		boxStyle = boxStyle.Width(clamp(maxWidth, 32, 76))
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle := lipgloss.NewStyle().Foreground(muted)
	focusStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)

	lines := []string{titleStyle.Render(title)}
	for idx, input := range m.formInputs {
		label := ""
		if idx < len(labels) {
			label = labels[idx]
		}
		rendered := labelStyle.Render(label + ": ")
		if idx == m.formFocus {
			rendered = focusStyle.Render(label + ": ")
		}
		lines = append(lines, rendered+input.View())
	}
	lines = append(lines, "", labelStyle.Render("enter submit • tab next field • esc cancel"))
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// renderHelpOverlay renders the expanded keymap.
func (m Model) renderHelpOverlay(accent, muted color.Color, maxWidth int) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	if maxWidth > 0 {
		boxStyle = boxStyle.Width(clamp(maxWidth, 36, 80))
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	helpBubble := m.help
	helpBubble.ShowAll = true
	helpBubble.SetWidth(clamp(maxWidth-4, 32, 76))
	return boxStyle.Render(titleStyle.Render("Keys") + "\n" + helpBubble.View(m.keys))
}

// overlayContains reports whether a pointer position falls inside the
// centered overlay box.
func (m Model) overlayContains(x, y int) bool {
	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	overlay := m.renderModeOverlay(accent, muted, lipgloss.NewStyle(), m.width-8)
	if overlay == "" {
		return false
	}
	w := lipgloss.Width(overlay)
	h := lipgloss.Height(overlay)
	left := max(0, (m.width-w)/2)
	top := max(0, (m.height-h)/2)
	return x >= left && x < left+w && y >= top && y < top+h
}

// --- selection and lookup helpers ---

// cardRows is the rendered height of one task card: title, secondary
// line, spacer. Mouse hit testing divides by it.
const cardRows = 3

func (m Model) currentColumnStatus() domain.Status {
	statuses := domain.BoardStatuses()
	return statuses[clamp(m.selectedColumn, 0, len(statuses)-1)]
}

func (m Model) currentColumnTasks() []domain.Task {
	return m.board.ColumnTasks(m.currentColumnStatus())
}

func (m Model) selectedTaskInCurrentColumn() (domain.Task, bool) {
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		return domain.Task{}, false
	}
	return tasks[clamp(m.selectedTask, 0, len(tasks)-1)], true
}

func (m Model) taskByID(id string) (domain.Task, bool) {
	for _, task := range m.tasks {
		if task.ID == id {
			return task, true
		}
	}
	return domain.Task{}, false
}

// projectLabel resolves a project reference for display. Unresolved
// references render as-is rather than failing.
func (m Model) projectLabel(projectID string) string {
	if strings.TrimSpace(projectID) == "" {
		return "-"
	}
	for _, project := range m.projects {
		if project.ID == projectID {
			return project.Name
		}
	}
	return projectID + " (unknown)"
}

// summarizeTaskRefs renders dependency references, tolerating ids that
// no longer resolve.
func (m Model) summarizeTaskRefs(refs []string, maxRefs int) string {
	if len(refs) == 0 {
		return "-"
	}
	parts := make([]string, 0, min(len(refs), maxRefs))
	for idx, ref := range refs {
		if idx >= maxRefs {
			parts = append(parts, fmt.Sprintf("+%d more", len(refs)-idx))
			break
		}
		if task, ok := m.taskByID(ref); ok {
			parts = append(parts, truncate(task.Title, 24))
		} else {
			parts = append(parts, ref+" (missing)")
		}
	}
	return strings.Join(parts, ", ")
}

// cardSecondary renders the second card line: priority, due, project.
func (m Model) cardSecondary(task domain.Task) string {
	parts := []string{string(task.Priority)}
	if task.DueDate != "" {
		parts = append(parts, "due "+task.DueDate)
	}
	if task.Project != "" {
		parts = append(parts, truncate(m.projectLabel(task.Project), 18))
	}
	return strings.Join(parts, " • ")
}

// focusTaskByID moves the selection to the given task's card.
func (m *Model) focusTaskByID(taskID string) {
	for colIdx, status := range domain.BoardStatuses() {
		for taskIdx, task := range m.board.ColumnTasks(status) {
			if task.ID == taskID {
				m.selectedColumn = colIdx
				m.selectedTask = taskIdx
				return
			}
		}
	}
}

// clampSelections clamps selections.
func (m *Model) clampSelections() {
	statuses := domain.BoardStatuses()
	m.selectedColumn = clamp(m.selectedColumn, 0, len(statuses)-1)
	colTasks := m.currentColumnTasks()
	if len(colTasks) == 0 {
		m.selectedTask = 0
		return
	}
	m.selectedTask = clamp(m.selectedTask, 0, len(colTasks)-1)
}

// columnStride measures the horizontal footprint of one rendered column,
// right margin included, so pointer hit tests line up with what
// JoinHorizontal actually lays out.
func (m Model) columnStride() int {
	col := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 2).
		MarginRight(1).
		Width(m.columnWidthFor(m.width)).
		Render("")
	return lipgloss.Width(col)
}

// columnIndexAt maps a pointer x coordinate to a board column.
func (m Model) columnIndexAt(x int) (int, bool) {
	stride := m.columnStride()
	statuses := domain.BoardStatuses()
	for idx := range statuses {
		start := idx * stride
		end := start + stride
		if x >= start && x < end {
			return idx, true
		}
	}
	return 0, false
}

// columnWidthFor computes per-column width for the given board width.
func (m Model) columnWidthFor(boardWidth int) int {
	cols := len(domain.BoardStatuses())
	w := 24
	if boardWidth > 0 {
		// Per-column overhead: left/right border (2), horizontal padding (4), margin-right (1)
		const colOverhead = 7
		usable := boardWidth - cols*colOverhead
		candidate := usable / cols
		if candidate > 0 {
			w = candidate
		}
	}
	if w < 16 {
		return 16
	}
	if w > 40 {
		return 40
	}
	return w
}

// columnHeight returns column height.
func (m Model) columnHeight() int {
	headerLines := 3
	footerLines := 4
	h := m.height - headerLines - footerLines
	if h < 12 {
		return 12
	}
	return h
}

// boardTop handles board top.
func (m Model) boardTop() int {
	// header + spacer above the column borders
	return 2
}

// newModalInput builds a textinput with modal defaults.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// splitCSV splits a comma-separated field, dropping empties.
func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(rs[:maxLen])
	}
	return string(rs[:maxLen-1]) + "…"
}
