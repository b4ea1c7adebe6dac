package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edustream/edustream-api/internal/models"
	appErrors "github.com/edustream/edustream-api/pkg/errors"
)

type mockSubjectRepo struct {
	subjects map[string]*models.Subject
	replaced []models.Subject
}

func newMockSubjectRepo(subjects ...*models.Subject) *mockSubjectRepo {
	repo := &mockSubjectRepo{subjects: make(map[string]*models.Subject)}
	for _, subject := range subjects {
		repo.subjects[subject.ID] = subject
	}
	return repo
}

func (m *mockSubjectRepo) ListVisible(ctx context.Context) ([]models.Subject, error) {
	var visible []models.Subject
	for _, subject := range m.subjects {
		if subject.IsVisible {
			visible = append(visible, *subject)
		}
	}
	return visible, nil
}

func (m *mockSubjectRepo) ListAll(ctx context.Context) ([]models.Subject, error) {
	var all []models.Subject
	for _, subject := range m.subjects {
		all = append(all, *subject)
	}
	return all, nil
}

func (m *mockSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	subject, ok := m.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return subject, nil
}

func (m *mockSubjectRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := m.subjects[id]
	return ok, nil
}

func (m *mockSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	m.subjects[subject.ID] = subject
	return nil
}

func (m *mockSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	m.subjects[subject.ID] = subject
	return nil
}

func (m *mockSubjectRepo) SetVisibility(ctx context.Context, id string, visible bool) error {
	subject, ok := m.subjects[id]
	if !ok {
		return sql.ErrNoRows
	}
	subject.IsVisible = visible
	return nil
}

func (m *mockSubjectRepo) Delete(ctx context.Context, id string) error {
	delete(m.subjects, id)
	return nil
}

func (m *mockSubjectRepo) ReplaceAll(ctx context.Context, subjects []models.Subject) error {
	m.replaced = subjects
	m.subjects = make(map[string]*models.Subject)
	for i := range subjects {
		m.subjects[subjects[i].ID] = &subjects[i]
	}
	return nil
}

func newSubjectService(repo *mockSubjectRepo) *SubjectService {
	return NewSubjectService(repo, nil, validator.New(), zap.NewNop())
}

func TestSubjectSlug(t *testing.T) {
	assert.Equal(t, "icse-10-biology", SubjectSlug("ICSE", "10", "Biology"))
	assert.Equal(t, "cbse-12-computer-science", SubjectSlug("CBSE", "12", "Computer Science"))
	assert.Equal(t, "state-board-9-maths", SubjectSlug("State Board", "9", "Maths"))
}

func TestCreateSubjectDerivesID(t *testing.T) {
	repo := newMockSubjectRepo()
	svc := newSubjectService(repo)

	subject, err := svc.Create(context.Background(), models.SubjectRequest{
		Board:          "ICSE",
		ClassName:      "10",
		SubjectName:    "Biology",
		Price:          349,
		DurationMonths: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, "icse-10-biology", subject.ID)
	assert.True(t, subject.IsVisible)
}

func TestCreateSubjectDuplicate(t *testing.T) {
	repo := newMockSubjectRepo(testSubject())
	svc := newSubjectService(repo)

	_, err := svc.Create(context.Background(), models.SubjectRequest{
		Board:          "ICSE",
		ClassName:      "10",
		SubjectName:    "Biology",
		Price:          349,
		DurationMonths: 12,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestListPublicExcludesHidden(t *testing.T) {
	hidden := testSubject()
	hidden.ID = "icse-10-chemistry"
	hidden.SubjectName = "Chemistry"
	hidden.IsVisible = false
	repo := newMockSubjectRepo(testSubject(), hidden)
	svc := newSubjectService(repo)

	subjects, err := svc.ListPublic(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "icse-10-biology", subjects[0].ID)
}

func TestSetVisibility(t *testing.T) {
	repo := newMockSubjectRepo(testSubject())
	svc := newSubjectService(repo)

	require.NoError(t, svc.SetVisibility(context.Background(), "icse-10-biology", false))
	assert.False(t, repo.subjects["icse-10-biology"].IsVisible)

	err := svc.SetVisibility(context.Background(), "missing", true)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpdateSubjectKeepsID(t *testing.T) {
	repo := newMockSubjectRepo(testSubject())
	svc := newSubjectService(repo)

	subject, err := svc.Update(context.Background(), "icse-10-biology", models.SubjectRequest{
		Board:          "ICSE",
		ClassName:      "10",
		SubjectName:    "Biology",
		Price:          399,
		DurationMonths: 6,
	})
	require.NoError(t, err)
	assert.Equal(t, "icse-10-biology", subject.ID)
	assert.Equal(t, 399, subject.Price)
	assert.Equal(t, 6, subject.DurationMonths)
}

func TestSeedSubjects(t *testing.T) {
	repo := newMockSubjectRepo()
	svc := newSubjectService(repo)

	count, err := svc.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(repo.replaced), count)
	assert.Contains(t, repo.subjects, "icse-10-biology")
}
