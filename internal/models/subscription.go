package models

import "time"

// SubscriptionStatus is the payment_status stored on a subscription. The
// only value written today is completed: a subscription row exists only
// after a successful verification. Richer lifecycle states (e.g. refunded)
// live on Payment and are deliberately not propagated here.
type SubscriptionStatus string

const SubscriptionCompleted SubscriptionStatus = "completed"

// Subscription is a time-bounded entitlement to one subject. At most one
// row exists per order id. "Active" is derived from EndDate at read time,
// never stored.
type Subscription struct {
	ID             string             `db:"id" json:"id"`
	OrderID        string             `db:"order_id" json:"order_id"`
	UserEmail      string             `db:"user_email" json:"user_email"`
	SubjectID      string             `db:"subject_id" json:"subject_id"`
	SubjectName    string             `db:"subject_name" json:"subject_name"`
	Price          int                `db:"price" json:"price"`
	DurationMonths int                `db:"duration_months" json:"duration_months"`
	StartDate      time.Time          `db:"start_date" json:"start_date"`
	EndDate        time.Time          `db:"end_date" json:"end_date"`
	PaymentStatus  SubscriptionStatus `db:"payment_status" json:"payment_status"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
}

// ActiveAt reports whether the entitlement covers the given instant. The
// boundary is exclusive: a subscription ending exactly now is expired.
func (s Subscription) ActiveAt(now time.Time) bool {
	return s.EndDate.After(now)
}

// EntitlementResult answers a subscription check for one user/subject pair.
// Subscription is populated when any completed subscription exists, even an
// expired one, so callers can tell "never purchased" from "lapsed".
type EntitlementResult struct {
	HasSubscription bool          `json:"has_subscription"`
	Subscription    *Subscription `json:"subscription,omitempty"`
}

// SubscriptionView decorates a subscription with its read-time activity.
type SubscriptionView struct {
	Subscription
	IsActive bool `json:"is_active"`
}
