package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edustream/edustream-api/internal/models"
	appErrors "github.com/edustream/edustream-api/pkg/errors"
)

type mockBoardRepo struct {
	boards           map[string]*models.Board
	lastPreviousName string
	updateCalls      int
}

func newMockBoardRepo(boards ...*models.Board) *mockBoardRepo {
	repo := &mockBoardRepo{boards: make(map[string]*models.Board)}
	for _, board := range boards {
		repo.boards[board.ID] = board
	}
	return repo
}

func (m *mockBoardRepo) List(ctx context.Context) ([]models.Board, error) {
	var all []models.Board
	for _, board := range m.boards {
		all = append(all, *board)
	}
	return all, nil
}

func (m *mockBoardRepo) FindByID(ctx context.Context, id string) (*models.Board, error) {
	board, ok := m.boards[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *board
	return &copied, nil
}

func (m *mockBoardRepo) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	for _, board := range m.boards {
		if board.ID == excludeID {
			continue
		}
		if strings.EqualFold(board.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBoardRepo) Create(ctx context.Context, board *models.Board) error {
	if board.ID == "" {
		board.ID = "b-" + board.Name
	}
	m.boards[board.ID] = board
	return nil
}

func (m *mockBoardRepo) Update(ctx context.Context, board *models.Board, previousName string) error {
	m.updateCalls++
	m.lastPreviousName = previousName
	m.boards[board.ID] = board
	return nil
}

func (m *mockBoardRepo) Delete(ctx context.Context, id string) error {
	delete(m.boards, id)
	return nil
}

func newBoardService(repo *mockBoardRepo) *BoardService {
	return NewBoardService(repo, nil, validator.New(), zap.NewNop())
}

func TestCreateBoard(t *testing.T) {
	repo := newMockBoardRepo()
	svc := newBoardService(repo)

	board, err := svc.Create(context.Background(), models.BoardRequest{Name: "ICSE", FullName: "Indian Certificate of Secondary Education"})
	require.NoError(t, err)
	assert.NotEmpty(t, board.ID)
	assert.Equal(t, "ICSE", board.Name)
}

func TestCreateBoardDuplicateName(t *testing.T) {
	repo := newMockBoardRepo(&models.Board{ID: "b1", Name: "ICSE"})
	svc := newBoardService(repo)

	_, err := svc.Create(context.Background(), models.BoardRequest{Name: "icse", FullName: "Dup"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUpdateBoardRenamePassesPreviousName(t *testing.T) {
	repo := newMockBoardRepo(&models.Board{ID: "b1", Name: "ICSE", FullName: "Old"})
	svc := newBoardService(repo)

	board, err := svc.Update(context.Background(), "b1", models.BoardRequest{Name: "ICSE-2026", FullName: "New"})
	require.NoError(t, err)
	assert.Equal(t, "ICSE-2026", board.Name)
	// The repository needs the old name to cascade the rename onto subjects.
	assert.Equal(t, "ICSE", repo.lastPreviousName)
}

func TestUpdateBoardNotFound(t *testing.T) {
	svc := newBoardService(newMockBoardRepo())

	_, err := svc.Update(context.Background(), "missing", models.BoardRequest{Name: "X", FullName: "Y"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpdateBoardRenameToTakenName(t *testing.T) {
	repo := newMockBoardRepo(
		&models.Board{ID: "b1", Name: "ICSE"},
		&models.Board{ID: "b2", Name: "CBSE"},
	)
	svc := newBoardService(repo)

	_, err := svc.Update(context.Background(), "b1", models.BoardRequest{Name: "CBSE", FullName: "Clash"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.updateCalls)
}

func TestDeleteBoard(t *testing.T) {
	repo := newMockBoardRepo(&models.Board{ID: "b1", Name: "ICSE"})
	svc := newBoardService(repo)

	require.NoError(t, svc.Delete(context.Background(), "b1"))
	assert.Empty(t, repo.boards)

	err := svc.Delete(context.Background(), "b1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
