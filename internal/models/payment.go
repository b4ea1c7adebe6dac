package models

import "time"

// PaymentStatus tracks the lifecycle of a gateway order. A payment is
// created, then transitions exactly once to captured (webhook path) or
// verified (client path). Both are terminal.
type PaymentStatus string

const (
	PaymentCreated  PaymentStatus = "created"
	PaymentCaptured PaymentStatus = "captured"
	PaymentVerified PaymentStatus = "verified"
	PaymentError    PaymentStatus = "error"
)

// Payment mirrors one gateway order. OrderID is the gateway-assigned id and
// is unique locally; PaymentID is recorded on the terminal transition.
type Payment struct {
	ID        string        `db:"id" json:"id"`
	OrderID   string        `db:"order_id" json:"order_id"`
	PaymentID string        `db:"payment_id" json:"payment_id,omitempty"`
	UserEmail string        `db:"user_email" json:"user_email"`
	SubjectID string        `db:"subject_id" json:"subject_id"`
	Amount    int           `db:"amount" json:"amount"`
	Currency  string        `db:"currency" json:"currency"`
	Status    PaymentStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// CreateOrderRequest is the payload for minting a gateway order.
type CreateOrderRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
	Amount    int    `json:"amount" validate:"required,gt=0"`
}

// CreateOrderResponse echoes the gateway order back to the client.
type CreateOrderResponse struct {
	OrderID   string `json:"order_id"`
	Amount    int    `json:"amount"`
	Currency  string `json:"currency"`
	SubjectID string `json:"subject_id"`
}

// VerifyPaymentRequest is the client-confirmed verification triple supplied
// by the payer's browser after checkout.
type VerifyPaymentRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
	OrderID   string `json:"order_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// WebhookEvent is the gateway's asynchronous event envelope. Unknown fields
// are ignored on decode per the permissive upstream contract.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}
