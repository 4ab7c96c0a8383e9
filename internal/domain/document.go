package domain

import (
	"strings"
	"time"
)

// Document is one reference record (quote, permit, plan) tied to a project
// by raw reference. The core never stores file contents, only metadata.
type Document struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Project   string    `json:"project"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Size      string    `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type DocumentInput struct {
	ID      string
	Type    string
	Project string
	Title   string
	Date    string
	Size    string
}

func NewDocument(in DocumentInput, now time.Time) (Document, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)

	if in.ID == "" {
		return Document{}, ErrInvalidID
	}
	if in.Title == "" {
		return Document{}, ErrInvalidTitle
	}
	docType := strings.TrimSpace(strings.ToLower(in.Type))
	if docType == "" {
		docType = "document"
	}

	ts := now.UTC()
	return Document{
		ID:        in.ID,
		Type:      docType,
		Project:   strings.TrimSpace(in.Project),
		Title:     in.Title,
		Date:      strings.TrimSpace(in.Date),
		Size:      strings.TrimSpace(in.Size),
		CreatedAt: ts,
		UpdatedAt: ts,
	}, nil
}
