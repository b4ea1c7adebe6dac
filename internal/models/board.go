package models

import "time"

// Board is a named curriculum grouping. Subjects reference boards by name,
// not id, so renaming a board cascades over the subjects table.
type Board struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	FullName    string    `db:"full_name" json:"full_name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// BoardRequest carries the payload for creating or updating a board.
type BoardRequest struct {
	Name        string `json:"name" validate:"required"`
	FullName    string `json:"full_name" validate:"required"`
	Description string `json:"description"`
}
