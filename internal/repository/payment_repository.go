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

// PaymentRepository handles persistence for gateway payment orders.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new repository instance.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, order_id, payment_id, user_email, subject_id, amount, currency, status, created_at, updated_at`

// Create persists a new payment row in status created.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentCreated
	}
	now := time.Now().UTC()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now

	const query = `INSERT INTO payments (id, order_id, payment_id, user_email, subject_id, amount, currency, status, created_at, updated_at) VALUES (:id, :order_id, :payment_id, :user_email, :subject_id, :amount, :currency, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// FindByOrderID returns the payment for a gateway order id.
func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE order_id = $1 LIMIT 1`, paymentColumns)
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, orderID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find payment by order id: %w", err)
	}
	return &payment, nil
}

// MarkStatus records the terminal status and gateway payment id for an order.
func (r *PaymentRepository) MarkStatus(ctx context.Context, orderID string, status models.PaymentStatus, paymentID string) error {
	const query = `UPDATE payments SET status = $2, payment_id = $3, updated_at = $4 WHERE order_id = $1`
	if _, err := r.db.ExecContext(ctx, query, orderID, status, paymentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark payment %s: %w", status, err)
	}
	return nil
}

// ListByUser returns a user's payments, newest first.
func (r *PaymentRepository) ListByUser(ctx context.Context, userEmail string) ([]models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE user_email = $1 ORDER BY created_at DESC`, paymentColumns)
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, userEmail); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
