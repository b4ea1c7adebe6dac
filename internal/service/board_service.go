package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edustream/edustream-api/internal/models"
	appErrors "github.com/edustream/edustream-api/pkg/errors"
)

type boardRepository interface {
	List(ctx context.Context) ([]models.Board, error)
	FindByID(ctx context.Context, id string) (*models.Board, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Create(ctx context.Context, board *models.Board) error
	Update(ctx context.Context, board *models.Board, previousName string) error
	Delete(ctx context.Context, id string) error
}

// BoardService manages curriculum boards.
type BoardService struct {
	repo      boardRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBoardService constructs a BoardService instance.
func NewBoardService(repo boardRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *BoardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BoardService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns every board.
func (s *BoardService) List(ctx context.Context) ([]models.Board, error) {
	boards, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list boards")
	}
	if boards == nil {
		boards = []models.Board{}
	}
	return boards, nil
}

// Get returns a single board by id.
func (s *BoardService) Get(ctx context.Context, id string) (*models.Board, error) {
	board, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "board not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load board")
	}
	return board, nil
}

// Create adds a new board. Names are unique case-insensitively.
func (s *BoardService) Create(ctx context.Context, req models.BoardRequest) (*models.Board, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid board payload")
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check board name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "board name already exists")
	}

	board := &models.Board{
		Name:        req.Name,
		FullName:    req.FullName,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, board); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create board")
	}

	s.invalidateCatalog(ctx)
	return board, nil
}

// Update modifies a board. A rename cascades to subjects referencing the
// old name inside the repository transaction.
func (s *BoardService) Update(ctx context.Context, id string, req models.BoardRequest) (*models.Board, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid board payload")
	}

	board, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "board not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load board")
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check board name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "board name already exists")
	}

	previousName := board.Name
	board.Name = req.Name
	board.FullName = req.FullName
	board.Description = req.Description

	if err := s.repo.Update(ctx, board, previousName); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update board")
	}

	if previousName != board.Name {
		s.logger.Info("board renamed, subjects cascaded",
			zap.String("board_id", board.ID),
			zap.String("from", previousName),
			zap.String("to", board.Name))
	}

	s.invalidateCatalog(ctx)
	return board, nil
}

// Delete removes a board. Subjects keep their denormalized board name.
func (s *BoardService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "board not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load board")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete board")
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *BoardService) invalidateCatalog(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, catalogSubjectsCacheKey)
	}
}
