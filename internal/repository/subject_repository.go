package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edustream/edustream-api/internal/models"
)

// SubjectRepository handles persistence for catalog subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectColumns = `id, board, class_name, subject_name, price, duration_months, is_visible, created_at, updated_at`

// ListVisible returns the public catalog: visible subjects only.
func (r *SubjectRepository) ListVisible(ctx context.Context) ([]models.Subject, error) {
	query := fmt.Sprintf(`SELECT %s FROM subjects WHERE is_visible = TRUE ORDER BY board, class_name, subject_name`, subjectColumns)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list visible subjects: %w", err)
	}
	return subjects, nil
}

// ListAll returns every subject regardless of visibility.
func (r *SubjectRepository) ListAll(ctx context.Context) ([]models.Subject, error) {
	query := fmt.Sprintf(`SELECT %s FROM subjects ORDER BY board, class_name, subject_name`, subjectColumns)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID returns a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	query := fmt.Sprintf(`SELECT %s FROM subjects WHERE id = $1`, subjectColumns)
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ExistsByID checks whether a subject id is already taken.
func (r *SubjectRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM subjects WHERE id = $1 LIMIT 1`, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject id: %w", err)
	}
	return true, nil
}

// Create persists a new subject. The caller derives the id.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now

	const query = `INSERT INTO subjects (id, board, class_name, subject_name, price, duration_months, is_visible, created_at, updated_at) VALUES (:id, :board, :class_name, :subject_name, :price, :duration_months, :is_visible, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update modifies a subject.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET board = :board, class_name = :class_name, subject_name = :subject_name, price = :price, duration_months = :duration_months, is_visible = :is_visible, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// SetVisibility toggles the public listing flag.
func (r *SubjectRepository) SetVisibility(ctx context.Context, id string, visible bool) error {
	const query = `UPDATE subjects SET is_visible = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, visible, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set subject visibility: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a subject; materials cascade at the schema level.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}

// ReplaceAll swaps the full catalog content, used by the seed endpoint.
func (r *SubjectRepository) ReplaceAll(ctx context.Context, subjects []models.Subject) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin subject seed: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM subjects`); err != nil {
		return fmt.Errorf("clear subjects: %w", err)
	}

	const query = `INSERT INTO subjects (id, board, class_name, subject_name, price, duration_months, is_visible, created_at, updated_at) VALUES (:id, :board, :class_name, :subject_name, :price, :duration_months, :is_visible, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range subjects {
		if subjects[i].CreatedAt.IsZero() {
			subjects[i].CreatedAt = now
		}
		subjects[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, subjects[i]); err != nil {
			return fmt.Errorf("seed subject %s: %w", subjects[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit subject seed: %w", err)
	}
	return nil
}
