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

func TestPaymentCreateDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(0, 1))

	payment := &models.Payment{
		OrderID:   "order_1",
		UserEmail: "user@example.com",
		SubjectID: "icse-10-biology",
		Amount:    349,
		Currency:  "INR",
	}
	err := repo.Create(context.Background(), payment)
	require.NoError(t, err)
	assert.NotEmpty(t, payment.ID)
	assert.Equal(t, models.PaymentCreated, payment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentFindByOrderID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "order_id", "payment_id", "user_email", "subject_id", "amount", "currency", "status", "created_at", "updated_at"}).
		AddRow("p1", "order_1", "", "user@example.com", "icse-10-biology", 349, "INR", "created", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, order_id, payment_id, user_email, subject_id, amount, currency, status, created_at, updated_at FROM payments WHERE order_id = $1 LIMIT 1")).
		WithArgs("order_1").
		WillReturnRows(rows)

	payment, err := repo.FindByOrderID(context.Background(), "order_1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCreated, payment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentFindByOrderIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery("SELECT .* FROM payments WHERE order_id").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByOrderID(context.Background(), "order_missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestPaymentMarkStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE payments SET status = $2, payment_id = $3, updated_at = $4 WHERE order_id = $1")).
		WithArgs("order_1", string(models.PaymentCaptured), "pay_1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkStatus(context.Background(), "order_1", models.PaymentCaptured, "pay_1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
