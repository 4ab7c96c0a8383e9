package store

import "github.com/lab-foster/ProjectAtlas2/internal/domain"

// Index holds the task lookup tables rebuilt after every load and
// mutation: a map keyed by id and a map keyed by normalized title. The
// title map keeps ids in insertion order so duplicate titles resolve to
// the task added first.
type Index struct {
	byID    map[string]domain.Task
	byTitle map[string][]string
}

func buildIndex(tasks []domain.Task) Index {
	ix := Index{
		byID:    make(map[string]domain.Task, len(tasks)),
		byTitle: make(map[string][]string, len(tasks)),
	}
	for _, task := range tasks {
		if _, exists := ix.byID[task.ID]; exists {
			continue
		}
		ix.byID[task.ID] = task
		key := domain.NormalizeTitle(task.Title)
		ix.byTitle[key] = append(ix.byTitle[key], task.ID)
	}
	return ix
}

// TaskByID reports the indexed task for id, if any.
func (ix Index) TaskByID(id string) (domain.Task, bool) {
	task, ok := ix.byID[id]
	return task, ok
}

// IDsByTitle reports the ids whose normalized title equals the
// normalized form of title, in insertion order.
func (ix Index) IDsByTitle(title string) []string {
	return ix.byTitle[domain.NormalizeTitle(title)]
}

// Titles yields every normalized title together with its id list.
// Iteration order is unspecified.
func (ix Index) Titles() map[string][]string {
	return ix.byTitle
}

// Len reports how many tasks are indexed.
func (ix Index) Len() int {
	return len(ix.byID)
}
