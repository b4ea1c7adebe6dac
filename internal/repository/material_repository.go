package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edustream/edustream-api/internal/models"
)

// MaterialRepository handles persistence for study materials.
type MaterialRepository struct {
	db *sqlx.DB
}

// NewMaterialRepository creates a new repository instance.
func NewMaterialRepository(db *sqlx.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

const materialColumns = `id, subject_id, title, type, link, description, created_at, updated_at`

// ListBySubject returns materials for one subject.
func (r *MaterialRepository) ListBySubject(ctx context.Context, subjectID string) ([]models.Material, error) {
	query := fmt.Sprintf(`SELECT %s FROM materials WHERE subject_id = $1 ORDER BY created_at ASC`, materialColumns)
	var materials []models.Material
	if err := r.db.SelectContext(ctx, &materials, query, subjectID); err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materials, nil
}

// ListAll returns all materials across subjects for the admin view.
func (r *MaterialRepository) ListAll(ctx context.Context) ([]models.Material, error) {
	query := fmt.Sprintf(`SELECT %s FROM materials ORDER BY subject_id, created_at ASC`, materialColumns)
	var materials []models.Material
	if err := r.db.SelectContext(ctx, &materials, query); err != nil {
		return nil, fmt.Errorf("list all materials: %w", err)
	}
	return materials, nil
}

// FindByID returns a material by id.
func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*models.Material, error) {
	query := fmt.Sprintf(`SELECT %s FROM materials WHERE id = $1`, materialColumns)
	var material models.Material
	if err := r.db.GetContext(ctx, &material, query, id); err != nil {
		return nil, err
	}
	return &material, nil
}

// Create persists a new material.
func (r *MaterialRepository) Create(ctx context.Context, material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if material.CreatedAt.IsZero() {
		material.CreatedAt = now
	}
	material.UpdatedAt = now

	const query = `INSERT INTO materials (id, subject_id, title, type, link, description, created_at, updated_at) VALUES (:id, :subject_id, :title, :type, :link, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, material); err != nil {
		return fmt.Errorf("create material: %w", err)
	}
	return nil
}

// Update modifies a material.
func (r *MaterialRepository) Update(ctx context.Context, material *models.Material) error {
	material.UpdatedAt = time.Now().UTC()
	const query = `UPDATE materials SET subject_id = :subject_id, title = :title, type = :type, link = :link, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, material); err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	return nil
}

// Delete removes a material record.
func (r *MaterialRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM materials WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	return nil
}

// ReplaceAll swaps the full material set, used by the seed endpoint.
func (r *MaterialRepository) ReplaceAll(ctx context.Context, materials []models.Material) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin material seed: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM materials`); err != nil {
		return fmt.Errorf("clear materials: %w", err)
	}

	const query = `INSERT INTO materials (id, subject_id, title, type, link, description, created_at, updated_at) VALUES (:id, :subject_id, :title, :type, :link, :description, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range materials {
		if materials[i].ID == "" {
			materials[i].ID = uuid.NewString()
		}
		if materials[i].CreatedAt.IsZero() {
			materials[i].CreatedAt = now
		}
		materials[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, materials[i]); err != nil {
			return fmt.Errorf("seed material %s: %w", materials[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit material seed: %w", err)
	}
	return nil
}
