package models

import "time"

// Subject is a purchasable catalog item. The id is derived deterministically
// from board, class tier and subject name (e.g. "icse-10-biology").
type Subject struct {
	ID             string    `db:"id" json:"id"`
	Board          string    `db:"board" json:"board"`
	ClassName      string    `db:"class_name" json:"class_name"`
	SubjectName    string    `db:"subject_name" json:"subject_name"`
	Price          int       `db:"price" json:"price"`
	DurationMonths int       `db:"duration_months" json:"duration_months"`
	IsVisible      bool      `db:"is_visible" json:"is_visible"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName renders the denormalized label stored on subscriptions.
func (s Subject) DisplayName() string {
	return s.Board + " - " + s.ClassName + " - " + s.SubjectName
}

// SubjectRequest carries the payload for creating or updating a subject.
type SubjectRequest struct {
	Board          string `json:"board" validate:"required"`
	ClassName      string `json:"class_name" validate:"required"`
	SubjectName    string `json:"subject_name" validate:"required"`
	Price          int    `json:"price" validate:"required,gt=0"`
	DurationMonths int    `json:"duration_months" validate:"required,gt=0"`
	IsVisible      *bool  `json:"is_visible"`
}

// SubjectVisibilityRequest toggles catalog visibility for a subject.
type SubjectVisibilityRequest struct {
	IsVisible *bool `json:"is_visible" validate:"required"`
}
