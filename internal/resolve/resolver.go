// Package resolve turns a free-form "id or title" query into a task.
// Resolution tries, in order: exact id, exact normalized title,
// bidirectional substring on normalized titles. A query that matches
// nothing still yields a usable placeholder so callers never have to
// branch on failure.
package resolve

import (
	"strings"

	"github.com/lab-foster/ProjectAtlas2/internal/domain"
	"github.com/lab-foster/ProjectAtlas2/internal/store"
)

// Method reports which resolution step produced a result.
type Method string

const (
	MethodID        Method = "id"
	MethodTitle     Method = "title"
	MethodSubstring Method = "substring"
	MethodNone      Method = "none"
)

// Result is the outcome of resolving one query.
type Result struct {
	Task      domain.Task
	Resolved  bool
	Ambiguous bool
	Method    Method
}

// Resolve looks query up against tasks and its index. Ties on a step
// go to the task inserted first, with Ambiguous set so callers can
// surface the collision. An unresolved query returns a placeholder task
// carrying the query as its title.
func Resolve(tasks []domain.Task, ix store.Index, query string) Result {
	trimmed := strings.TrimSpace(query)

	if task, ok := ix.TaskByID(trimmed); ok {
		return Result{Task: task, Resolved: true, Method: MethodID}
	}

	if ids := ix.IDsByTitle(trimmed); len(ids) > 0 {
		task, _ := ix.TaskByID(ids[0])
		return Result{
			Task:      task,
			Resolved:  true,
			Ambiguous: len(ids) > 1,
			Method:    MethodTitle,
		}
	}

	if norm := domain.NormalizeTitle(trimmed); norm != "" {
		var matches []domain.Task
		for _, task := range tasks {
			title := domain.NormalizeTitle(task.Title)
			if strings.Contains(title, norm) || strings.Contains(norm, title) {
				matches = append(matches, task)
			}
		}
		if len(matches) > 0 {
			return Result{
				Task:      matches[0],
				Resolved:  true,
				Ambiguous: len(matches) > 1,
				Method:    MethodSubstring,
			}
		}
	}

	return Result{
		Task:   placeholder(trimmed),
		Method: MethodNone,
	}
}

// placeholder builds the stand-in task for an unresolved query.
func placeholder(query string) domain.Task {
	title := query
	if title == "" {
		title = "Unknown task"
	}
	return domain.Task{
		Title:       title,
		Description: "This task has not been created yet.",
		Status:      domain.StatusSomeday,
		Priority:    domain.PriorityMedium,
	}
}
