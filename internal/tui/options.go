package tui

// Option configures a Model at construction.
type Option func(*Model)

// WithConfirmDelete toggles the delete confirmation dialog. When
// disabled, delete commits immediately.
func WithConfirmDelete(confirm bool) Option {
	return func(m *Model) {
		m.confirmDelete = confirm
	}
}

// WithDefaultFilters applies the configured startup filters.
func WithDefaultFilters(project, priority string) Option {
	return func(m *Model) {
		m.board.SetProjectFilter(project)
		m.board.SetPriorityFilter(priority)
	}
}
