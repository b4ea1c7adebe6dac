package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edustream/edustream-api/internal/models"
	appErrors "github.com/edustream/edustream-api/pkg/errors"
)

const catalogSubjectsCacheKey = "catalog:subjects:public"

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

type subjectRepository interface {
	ListVisible(ctx context.Context) ([]models.Subject, error)
	ListAll(ctx context.Context) ([]models.Subject, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	SetVisibility(ctx context.Context, id string, visible bool) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, subjects []models.Subject) error
}

// SubjectService manages the purchasable catalog.
type SubjectService struct {
	repo      subjectRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs a SubjectService instance.
func NewSubjectService(repo subjectRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubjectService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// ListPublic returns visible subjects, served from cache when warm.
func (s *SubjectService) ListPublic(ctx context.Context) ([]models.Subject, error) {
	if s.cache != nil && s.cache.Enabled() {
		var cached []models.Subject
		if s.cache.Get(ctx, catalogSubjectsCacheKey, &cached) {
			return cached, nil
		}
	}

	subjects, err := s.repo.ListVisible(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}

	if s.cache != nil && s.cache.Enabled() {
		s.cache.Set(ctx, catalogSubjectsCacheKey, subjects, 0)
	}
	return subjects, nil
}

// ListAll returns the full catalog including hidden subjects.
func (s *SubjectService) ListAll(ctx context.Context) ([]models.Subject, error) {
	subjects, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	return subjects, nil
}

// Get returns a subject by id.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

// Create adds a subject with a slug id derived from board, class and name.
func (s *SubjectService) Create(ctx context.Context, req models.SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	id := SubjectSlug(req.Board, req.ClassName, req.SubjectName)
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject id")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject already exists")
	}

	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}

	subject := &models.Subject{
		ID:             id,
		Board:          req.Board,
		ClassName:      req.ClassName,
		SubjectName:    req.SubjectName,
		Price:          req.Price,
		DurationMonths: req.DurationMonths,
		IsVisible:      visible,
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}

	s.invalidateCatalog(ctx)
	return subject, nil
}

// Update modifies a subject in place. The id is stable across updates so
// existing subscriptions keep pointing at the same subject.
func (s *SubjectService) Update(ctx context.Context, id string, req models.SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	subject.Board = req.Board
	subject.ClassName = req.ClassName
	subject.SubjectName = req.SubjectName
	subject.Price = req.Price
	subject.DurationMonths = req.DurationMonths
	if req.IsVisible != nil {
		subject.IsVisible = *req.IsVisible
	}

	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}

	s.invalidateCatalog(ctx)
	return subject, nil
}

// SetVisibility toggles whether a subject appears in the public catalog.
func (s *SubjectService) SetVisibility(ctx context.Context, id string, visible bool) error {
	if err := s.repo.SetVisibility(ctx, id, visible); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject visibility")
	}
	s.invalidateCatalog(ctx)
	return nil
}

// Delete removes a subject and, via schema cascade, its materials.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	s.invalidateCatalog(ctx)
	return nil
}

// Seed replaces the catalog with the default demo subjects.
func (s *SubjectService) Seed(ctx context.Context) (int, error) {
	subjects := defaultSubjects()
	if err := s.repo.ReplaceAll(ctx, subjects); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed subjects")
	}
	s.invalidateCatalog(ctx)
	s.logger.Info("subject catalog seeded", zap.Int("count", len(subjects)))
	return len(subjects), nil
}

func (s *SubjectService) invalidateCatalog(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, catalogSubjectsCacheKey)
	}
}

// SubjectSlug derives the deterministic catalog id, e.g. "icse-10-biology".
func SubjectSlug(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		slug := slugInvalidChars.ReplaceAllString(strings.ToLower(part), "-")
		slug = strings.Trim(slug, "-")
		if slug != "" {
			cleaned = append(cleaned, slug)
		}
	}
	return strings.Join(cleaned, "-")
}

func defaultSubjects() []models.Subject {
	specs := []struct {
		board    string
		class    string
		name     string
		price    int
		duration int
	}{
		{"ICSE", "9", "Biology", 299, 12},
		{"ICSE", "9", "Chemistry", 299, 12},
		{"ICSE", "9", "Physics", 299, 12},
		{"ICSE", "10", "Biology", 349, 12},
		{"ICSE", "10", "Chemistry", 349, 12},
		{"ICSE", "10", "Physics", 349, 12},
		{"CBSE", "9", "Science", 299, 12},
		{"CBSE", "9", "Mathematics", 299, 12},
		{"CBSE", "10", "Science", 349, 12},
		{"CBSE", "10", "Mathematics", 349, 12},
	}

	subjects := make([]models.Subject, 0, len(specs))
	for _, spec := range specs {
		subjects = append(subjects, models.Subject{
			ID:             SubjectSlug(spec.board, spec.class, spec.name),
			Board:          spec.board,
			ClassName:      spec.class,
			SubjectName:    spec.name,
			Price:          spec.price,
			DurationMonths: spec.duration,
			IsVisible:      true,
		})
	}
	return subjects
}
