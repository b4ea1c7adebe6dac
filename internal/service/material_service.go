package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edustream/edustream-api/internal/models"
	appErrors "github.com/edustream/edustream-api/pkg/errors"
)

type materialRepository interface {
	ListBySubject(ctx context.Context, subjectID string) ([]models.Material, error)
	ListAll(ctx context.Context) ([]models.Material, error)
	FindByID(ctx context.Context, id string) (*models.Material, error)
	Create(ctx context.Context, material *models.Material) error
	Update(ctx context.Context, material *models.Material) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, materials []models.Material) error
}

type entitlementChecker interface {
	CheckEntitlement(ctx context.Context, userEmail, subjectID string) (*models.EntitlementResult, error)
}

type materialSubjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// MaterialService serves study materials behind the subscription gate.
type MaterialService struct {
	repo         materialRepository
	subjects     materialSubjectReader
	entitlements entitlementChecker
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewMaterialService constructs a MaterialService instance.
func NewMaterialService(repo materialRepository, subjects materialSubjectReader, entitlements entitlementChecker, validate *validator.Validate, logger *zap.Logger) *MaterialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MaterialService{
		repo:         repo,
		subjects:     subjects,
		entitlements: entitlements,
		validator:    validate,
		logger:       logger,
	}
}

// ListForSubject returns a subject's materials for an entitled user. Admins
// bypass the subscription gate.
func (s *MaterialService) ListForSubject(ctx context.Context, userEmail string, role models.UserRole, subjectID string) ([]models.Material, error) {
	if _, err := s.subjects.FindByID(ctx, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	if role != models.RoleAdmin {
		entitlement, err := s.entitlements.CheckEntitlement(ctx, userEmail, subjectID)
		if err != nil {
			return nil, err
		}
		if !entitlement.HasSubscription {
			if entitlement.Subscription != nil {
				return nil, appErrors.Clone(appErrors.ErrForbidden, "subscription expired")
			}
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no active subscription for this subject")
		}
	}

	materials, err := s.repo.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list materials")
	}
	if materials == nil {
		materials = []models.Material{}
	}
	return materials, nil
}

// ListAll returns every material, for the admin surface.
func (s *MaterialService) ListAll(ctx context.Context) ([]models.Material, error) {
	materials, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list materials")
	}
	if materials == nil {
		materials = []models.Material{}
	}
	return materials, nil
}

// Create adds a material to an existing subject.
func (s *MaterialService) Create(ctx context.Context, req models.MaterialRequest) (*models.Material, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid material payload")
	}

	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	material := &models.Material{
		ID:          uuid.NewString(),
		SubjectID:   req.SubjectID,
		Title:       req.Title,
		Type:        req.Type,
		Link:        req.Link,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, material); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create material")
	}
	return material, nil
}

// Update modifies an existing material.
func (s *MaterialService) Update(ctx context.Context, id string, req models.MaterialRequest) (*models.Material, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid material payload")
	}

	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}

	if material.SubjectID != req.SubjectID {
		if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
		}
	}

	material.SubjectID = req.SubjectID
	material.Title = req.Title
	material.Type = req.Type
	material.Link = req.Link
	material.Description = req.Description

	if err := s.repo.Update(ctx, material); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update material")
	}
	return material, nil
}

// Delete removes a material.
func (s *MaterialService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete material")
	}
	return nil
}

// Seed replaces all materials with demo content for the seeded subjects.
func (s *MaterialService) Seed(ctx context.Context) (int, error) {
	materials := defaultMaterials()
	if err := s.repo.ReplaceAll(ctx, materials); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed materials")
	}
	s.logger.Info("materials seeded", zap.Int("count", len(materials)))
	return len(materials), nil
}

func defaultMaterials() []models.Material {
	subjects := []string{"icse-10-biology", "icse-10-chemistry", "icse-10-physics", "cbse-10-science"}
	materials := make([]models.Material, 0, len(subjects)*2)
	for _, subjectID := range subjects {
		materials = append(materials,
			models.Material{
				ID:          uuid.NewString(),
				SubjectID:   subjectID,
				Title:       "Chapter 1 Notes",
				Type:        models.MaterialPDF,
				Link:        "https://cdn.edustream.example/" + subjectID + "/chapter-1.pdf",
				Description: "Introductory chapter notes",
			},
			models.Material{
				ID:          uuid.NewString(),
				SubjectID:   subjectID,
				Title:       "Chapter 1 Lecture",
				Type:        models.MaterialVideo,
				Link:        "https://cdn.edustream.example/" + subjectID + "/chapter-1.mp4",
				Description: "Recorded walkthrough of chapter 1",
			},
		)
	}
	return materials
}
