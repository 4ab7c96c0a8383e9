package domain

import (
	"strings"
	"time"
)

// Project is one renovation effort tasks point at by raw reference.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	Budget    float64   `json:"budget"`
	Spent     float64   `json:"spent"`
	Priority  Priority  `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ProjectInput struct {
	ID       string
	Name     string
	Status   string
	Progress int
	Budget   float64
	Spent    float64
	Priority Priority
}

func NewProject(in ProjectInput, now time.Time) (Project, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	in.Status = strings.TrimSpace(in.Status)

	if in.ID == "" {
		return Project{}, ErrInvalidID
	}
	if in.Name == "" {
		return Project{}, ErrInvalidName
	}
	if in.Progress < 0 || in.Progress > 100 {
		return Project{}, ErrInvalidProgress
	}
	if in.Status == "" {
		in.Status = "planning"
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}

	ts := now.UTC()
	return Project{
		ID:        in.ID,
		Name:      in.Name,
		Status:    in.Status,
		Progress:  in.Progress,
		Budget:    in.Budget,
		Spent:     in.Spent,
		Priority:  in.Priority,
		CreatedAt: ts,
		UpdatedAt: ts,
	}, nil
}

// UpdateDetails replaces the editable fields and stamps UpdatedAt.
func (p *Project) UpdateDetails(in ProjectInput, now time.Time) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ErrInvalidName
	}
	if in.Progress < 0 || in.Progress > 100 {
		return ErrInvalidProgress
	}
	if in.Status == "" {
		in.Status = p.Status
	}
	if in.Priority == "" {
		in.Priority = p.Priority
	}

	p.Name = name
	p.Status = strings.TrimSpace(in.Status)
	p.Progress = in.Progress
	p.Budget = in.Budget
	p.Spent = in.Spent
	p.Priority = in.Priority
	p.UpdatedAt = now.UTC()
	return nil
}
