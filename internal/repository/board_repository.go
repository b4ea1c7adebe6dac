package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edustream/edustream-api/internal/models"
)

// BoardRepository handles persistence for curriculum boards.
type BoardRepository struct {
	db *sqlx.DB
}

// NewBoardRepository creates a new repository instance.
func NewBoardRepository(db *sqlx.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// List returns all boards ordered by name.
func (r *BoardRepository) List(ctx context.Context) ([]models.Board, error) {
	const query = `SELECT id, name, full_name, description, created_at, updated_at FROM boards ORDER BY name ASC`
	var boards []models.Board
	if err := r.db.SelectContext(ctx, &boards, query); err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return boards, nil
}

// FindByID returns a board by id.
func (r *BoardRepository) FindByID(ctx context.Context, id string) (*models.Board, error) {
	const query = `SELECT id, name, full_name, description, created_at, updated_at FROM boards WHERE id = $1`
	var board models.Board
	if err := r.db.GetContext(ctx, &board, query, id); err != nil {
		return nil, err
	}
	return &board, nil
}

// ExistsByName checks board name uniqueness.
func (r *BoardRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	query := `SELECT 1 FROM boards WHERE LOWER(name) = LOWER($1)`
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check board name: %w", err)
	}
	return true, nil
}

// Create persists a new board.
func (r *BoardRepository) Create(ctx context.Context, board *models.Board) error {
	if board.ID == "" {
		board.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if board.CreatedAt.IsZero() {
		board.CreatedAt = now
	}
	board.UpdatedAt = now

	const query = `INSERT INTO boards (id, name, full_name, description, created_at, updated_at) VALUES (:id, :name, :full_name, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, board); err != nil {
		return fmt.Errorf("create board: %w", err)
	}
	return nil
}

// Update modifies a board and, when the name changed, propagates the new
// name to every subject referencing the old one. Subjects hold the board
// name denormalized, so both writes happen in one transaction.
func (r *BoardRepository) Update(ctx context.Context, board *models.Board, previousName string) error {
	board.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin board update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const updateBoard = `UPDATE boards SET name = :name, full_name = :full_name, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, updateBoard, board); err != nil {
		return fmt.Errorf("update board: %w", err)
	}

	if previousName != "" && previousName != board.Name {
		const cascade = `UPDATE subjects SET board = $1, updated_at = $2 WHERE board = $3`
		if _, err := tx.ExecContext(ctx, cascade, board.Name, board.UpdatedAt, previousName); err != nil {
			return fmt.Errorf("cascade board rename: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit board update: %w", err)
	}
	return nil
}

// Delete removes a board record.
func (r *BoardRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	return nil
}
