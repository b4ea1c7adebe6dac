package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustream/edustream-api/internal/models"
)

func TestSubjectListVisible(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "board", "class_name", "subject_name", "price", "duration_months", "is_visible", "created_at", "updated_at"}).
		AddRow("icse-10-biology", "ICSE", "10", "Biology", 349, 12, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, board, class_name, subject_name, price, duration_months, is_visible, created_at, updated_at FROM subjects WHERE is_visible = TRUE ORDER BY board, class_name, subject_name")).
		WillReturnRows(rows)

	subjects, err := repo.ListVisible(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "ICSE - 10 - Biology", subjects[0].DisplayName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectSetVisibility(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE subjects SET is_visible = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("icse-10-biology", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetVisibility(context.Background(), "icse-10-biology", false)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectSetVisibilityMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("UPDATE subjects SET is_visible").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetVisibility(context.Background(), "missing", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestSubjectReplaceAll(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM subjects").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO subjects").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO subjects").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReplaceAll(context.Background(), []models.Subject{
		{ID: "icse-10-biology", Board: "ICSE", ClassName: "10", SubjectName: "Biology", Price: 349, DurationMonths: 12, IsVisible: true},
		{ID: "icse-10-physics", Board: "ICSE", ClassName: "10", SubjectName: "Physics", Price: 349, DurationMonths: 12, IsVisible: true},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
