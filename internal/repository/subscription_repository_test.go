package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustream/edustream-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestSubscriptionCreateInserts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubscriptionRepository(db)

	mock.ExpectExec("INSERT INTO subscriptions").WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now().UTC()
	sub := &models.Subscription{
		OrderID:        "order_1",
		UserEmail:      "user@example.com",
		SubjectID:      "icse-10-biology",
		SubjectName:    "ICSE - 10 - Biology",
		Price:          349,
		DurationMonths: 12,
		StartDate:      now,
		EndDate:        now.AddDate(0, 0, 360),
	}
	inserted, err := repo.Create(context.Background(), sub)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, "sub-order_1", sub.ID)
	assert.Equal(t, models.SubscriptionCompleted, sub.PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionCreateConflictIsNoOp(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubscriptionRepository(db)

	// ON CONFLICT (order_id) DO NOTHING reports zero affected rows.
	mock.ExpectExec("INSERT INTO subscriptions").WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.Create(context.Background(), &models.Subscription{OrderID: "order_1"})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionFindCompleted(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubscriptionRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "order_id", "user_email", "subject_id", "subject_name", "price", "duration_months", "start_date", "end_date", "payment_status", "created_at"}).
		AddRow("sub-order_1", "order_1", "user@example.com", "icse-10-biology", "ICSE - 10 - Biology", 349, 12, now, now.AddDate(0, 0, 360), "completed", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, order_id, user_email, subject_id, subject_name, price, duration_months, start_date, end_date, payment_status, created_at FROM subscriptions WHERE user_email = $1 AND subject_id = $2 AND payment_status = $3 ORDER BY end_date DESC LIMIT 1")).
		WithArgs("user@example.com", "icse-10-biology", string(models.SubscriptionCompleted)).
		WillReturnRows(rows)

	sub, err := repo.FindCompleted(context.Background(), "user@example.com", "icse-10-biology")
	require.NoError(t, err)
	assert.Equal(t, "sub-order_1", sub.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionFindCompletedNone(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubscriptionRepository(db)

	mock.ExpectQuery("SELECT .* FROM subscriptions WHERE user_email").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindCompleted(context.Background(), "user@example.com", "icse-10-biology")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
