package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edustream/edustream-api/internal/models"
)

// SubscriptionRepository handles persistence for entitlements.
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository creates a new repository instance.
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `id, order_id, user_email, subject_id, subject_name, price, duration_months, start_date, end_date, payment_status, created_at`

// Create inserts a subscription keyed by order id. The insert is suppressed
// when a row for the order already exists, which keeps verification
// idempotent even when the webhook and client paths race. Returns whether a
// row was actually written.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) (bool, error) {
	if sub.ID == "" {
		sub.ID = "sub-" + sub.OrderID
	}
	if sub.PaymentStatus == "" {
		sub.PaymentStatus = models.SubscriptionCompleted
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO subscriptions (id, order_id, user_email, subject_id, subject_name, price, duration_months, start_date, end_date, payment_status, created_at) VALUES (:id, :order_id, :user_email, :subject_id, :subject_name, :price, :duration_months, :start_date, :end_date, :payment_status, :created_at) ON CONFLICT (order_id) DO NOTHING`
	result, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		return false, fmt.Errorf("create subscription: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create subscription rows: %w", err)
	}
	return affected > 0, nil
}

// FindByOrderID returns the subscription created for a gateway order, if any.
func (r *SubscriptionRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Subscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscriptions WHERE order_id = $1 LIMIT 1`, subscriptionColumns)
	var sub models.Subscription
	if err := r.db.GetContext(ctx, &sub, query, orderID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find subscription by order id: %w", err)
	}
	return &sub, nil
}

// FindCompleted returns the newest completed subscription for a user and
// subject pair.
func (r *SubscriptionRepository) FindCompleted(ctx context.Context, userEmail, subjectID string) (*models.Subscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscriptions WHERE user_email = $1 AND subject_id = $2 AND payment_status = $3 ORDER BY end_date DESC LIMIT 1`, subscriptionColumns)
	var sub models.Subscription
	if err := r.db.GetContext(ctx, &sub, query, userEmail, subjectID, models.SubscriptionCompleted); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find completed subscription: %w", err)
	}
	return &sub, nil
}

// ListByUser returns a user's subscriptions, newest first.
func (r *SubscriptionRepository) ListByUser(ctx context.Context, userEmail string) ([]models.Subscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscriptions WHERE user_email = $1 ORDER BY created_at DESC`, subscriptionColumns)
	var subs []models.Subscription
	if err := r.db.SelectContext(ctx, &subs, query, userEmail); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

// ListAll returns every subscription for admin reporting, newest first.
func (r *SubscriptionRepository) ListAll(ctx context.Context) ([]models.Subscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscriptions ORDER BY created_at DESC`, subscriptionColumns)
	var subs []models.Subscription
	if err := r.db.SelectContext(ctx, &subs, query); err != nil {
		return nil, fmt.Errorf("list all subscriptions: %w", err)
	}
	return subs, nil
}
