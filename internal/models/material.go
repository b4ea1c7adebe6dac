package models

import "time"

// MaterialType enumerates supported study material kinds.
type MaterialType string

const (
	MaterialPDF   MaterialType = "pdf"
	MaterialVideo MaterialType = "video"
)

// Material is a subject-scoped content pointer.
type Material struct {
	ID          string       `db:"id" json:"id"`
	SubjectID   string       `db:"subject_id" json:"subject_id"`
	Title       string       `db:"title" json:"title"`
	Type        MaterialType `db:"type" json:"type"`
	Link        string       `db:"link" json:"link"`
	Description string       `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// MaterialRequest carries the payload for creating or updating a material.
type MaterialRequest struct {
	SubjectID   string       `json:"subject_id" validate:"required"`
	Title       string       `json:"title" validate:"required"`
	Type        MaterialType `json:"type" validate:"required,oneof=pdf video"`
	Link        string       `json:"link" validate:"required,url"`
	Description string       `json:"description"`
}
