package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustream/edustream-api/internal/models"
)

func TestBoardUpdateRenameCascadesToSubjects(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBoardRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE boards SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE subjects SET board = $1, updated_at = $2 WHERE board = $3")).
		WithArgs("ICSE-2026", sqlmock.AnyArg(), "ICSE").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	board := &models.Board{ID: "b1", Name: "ICSE-2026", FullName: "Renamed"}
	err := repo.Update(context.Background(), board, "ICSE")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardUpdateWithoutRenameSkipsCascade(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBoardRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE boards SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	board := &models.Board{ID: "b1", Name: "ICSE", FullName: "Same name, new description"}
	err := repo.Update(context.Background(), board, "ICSE")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardExistsByName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBoardRepository(db)

	rows := sqlmock.NewRows([]string{"?column?"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM boards WHERE LOWER(name) = LOWER($1) LIMIT 1")).
		WithArgs("icse").
		WillReturnRows(rows)

	exists, err := repo.ExistsByName(context.Background(), "icse", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
