package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edustream/edustream-api/internal/gateway"
	"github.com/edustream/edustream-api/internal/models"
	"github.com/edustream/edustream-api/pkg/config"
	appErrors "github.com/edustream/edustream-api/pkg/errors"
)

const webhookPaymentCaptured = "payment.captured"

type paymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	MarkStatus(ctx context.Context, orderID string, status models.PaymentStatus, paymentID string) error
	ListByUser(ctx context.Context, userEmail string) ([]models.Payment, error)
}

type subscriptionWriter interface {
	Create(ctx context.Context, sub *models.Subscription) (bool, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Subscription, error)
}

type paymentSubjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// PaymentService owns the order lifecycle: minting gateway orders, settling
// them through the webhook or the client verification path, and activating
// the resulting subscription exactly once per order.
type PaymentService struct {
	payments      paymentRepository
	subscriptions subscriptionWriter
	subjects      paymentSubjectReader
	orders        gateway.OrderCreator
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	config        config.RazorpayConfig
	now           func() time.Time
}

// NewPaymentService constructs a PaymentService instance.
func NewPaymentService(
	payments paymentRepository,
	subscriptions subscriptionWriter,
	subjects paymentSubjectReader,
	orders gateway.OrderCreator,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.RazorpayConfig,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PaymentService{
		payments:      payments,
		subscriptions: subscriptions,
		subjects:      subjects,
		orders:        orders,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		config:        cfg,
		now:           time.Now,
	}
}

// CreateOrder mints a gateway order for a subject and records the pending
// payment locally.
func (s *PaymentService) CreateOrder(ctx context.Context, userEmail string, req models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid order payload")
	}

	subject, err := s.subjects.FindByID(ctx, req.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	if req.Amount != subject.Price {
		return nil, appErrors.Clone(appErrors.ErrValidation, "amount does not match subject price")
	}

	order, err := s.orders.CreateOrder(ctx, req.Amount, s.config.Currency, map[string]interface{}{
		"subject_id": subject.ID,
		"user_email": userEmail,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "payment gateway order creation failed")
	}

	payment := &models.Payment{
		OrderID:   order.ID,
		UserEmail: userEmail,
		SubjectID: subject.ID,
		Amount:    req.Amount,
		Currency:  s.config.Currency,
		Status:    models.PaymentCreated,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}

	s.recordEvent("order_created")
	s.logger.Info("payment order created",
		zap.String("order_id", order.ID),
		zap.String("subject_id", subject.ID),
		zap.String("user_email", userEmail))

	return &models.CreateOrderResponse{
		OrderID:   order.ID,
		Amount:    req.Amount,
		Currency:  s.config.Currency,
		SubjectID: subject.ID,
	}, nil
}

// HandleWebhook processes a gateway event delivered over the webhook. The
// signature covers the raw body and is only enforced when a webhook secret
// is configured. Unknown orders and subjects are acknowledged rather than
// errored so the gateway does not retry events we can never settle.
func (s *PaymentService) HandleWebhook(ctx context.Context, rawBody []byte, signature string) error {
	if s.config.WebhookSecret != "" {
		if !gateway.VerifyWebhookSignature(rawBody, signature, s.config.WebhookSecret) {
			s.recordEvent("webhook_invalid_signature")
			return appErrors.Clone(appErrors.ErrInvalidSignature, "invalid webhook signature")
		}
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed webhook payload")
	}

	if event.Event != webhookPaymentCaptured {
		s.logger.Debug("ignoring webhook event", zap.String("event", event.Event))
		return nil
	}

	orderID := event.Payload.Payment.Entity.OrderID
	paymentID := event.Payload.Payment.Entity.ID
	if orderID == "" {
		s.logger.Warn("captured event without order id")
		return nil
	}

	payment, err := s.payments.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("webhook for unknown order", zap.String("order_id", orderID))
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}

	if payment.Status == models.PaymentCaptured || payment.Status == models.PaymentVerified {
		s.logger.Info("webhook replay for settled order", zap.String("order_id", orderID))
	} else {
		if err := s.payments.MarkStatus(ctx, orderID, models.PaymentCaptured, paymentID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment status")
		}
		s.recordEvent("payment_captured")
	}

	// Activation runs even for redelivered events. A prior delivery may have
	// captured the payment and then failed to insert the subscription; the
	// retry is what recovers it, and the unique order id keeps the insert
	// from ever producing a second row.
	if _, err := s.activateSubscription(ctx, payment); err != nil {
		if appErr := appErrors.FromError(err); appErr.Code == appErrors.ErrNotFound.Code {
			s.logger.Warn("captured order references unknown subject",
				zap.String("order_id", orderID),
				zap.String("subject_id", payment.SubjectID))
			return nil
		}
		s.flagActivationGap(ctx, orderID, paymentID, err)
		return err
	}
	return nil
}

// flagActivationGap marks a payment whose subscription insert failed after
// capture so operators can scan for orders awaiting the gateway's retry.
func (s *PaymentService) flagActivationGap(ctx context.Context, orderID, paymentID string, cause error) {
	s.logger.Error("captured payment without subscription",
		zap.String("order_id", orderID),
		zap.Error(cause))
	if err := s.payments.MarkStatus(ctx, orderID, models.PaymentError, paymentID); err != nil {
		s.logger.Error("failed to flag payment", zap.String("order_id", orderID), zap.Error(err))
	}
}

// VerifyPayment settles an order through the client path. The signature is
// an HMAC over "order_id|payment_id" keyed by the gateway key secret.
func (s *PaymentService) VerifyPayment(ctx context.Context, userEmail string, req models.VerifyPaymentRequest) (*models.Subscription, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification payload")
	}

	if !gateway.VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature, s.config.KeySecret) {
		s.recordEvent("verify_invalid_signature")
		return nil, appErrors.Clone(appErrors.ErrInvalidSignature, "invalid payment signature")
	}

	payment, err := s.payments.FindByOrderID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "order not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}

	if payment.UserEmail != userEmail {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "order belongs to another user")
	}

	if payment.Status != models.PaymentCaptured && payment.Status != models.PaymentVerified {
		if err := s.payments.MarkStatus(ctx, req.OrderID, models.PaymentVerified, req.PaymentID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment status")
		}
		s.recordEvent("payment_verified")
	}

	return s.activateSubscription(ctx, payment)
}

// ListMine returns the caller's payment history.
func (s *PaymentService) ListMine(ctx context.Context, userEmail string) ([]models.Payment, error) {
	payments, err := s.payments.ListByUser(ctx, userEmail)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return payments, nil
}

// activateSubscription creates the entitlement for a settled payment. The
// unique order id constraint makes it safe against the webhook and client
// paths racing: the losing insert is a no-op and the surviving row is
// returned to both.
func (s *PaymentService) activateSubscription(ctx context.Context, payment *models.Payment) (*models.Subscription, error) {
	subject, err := s.subjects.FindByID(ctx, payment.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	start := s.now().UTC()
	sub := &models.Subscription{
		OrderID:        payment.OrderID,
		UserEmail:      payment.UserEmail,
		SubjectID:      subject.ID,
		SubjectName:    subject.DisplayName(),
		Price:          payment.Amount,
		DurationMonths: subject.DurationMonths,
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, subject.DurationMonths*30),
	}

	inserted, err := s.subscriptions.Create(ctx, sub)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate subscription")
	}
	if !inserted {
		existing, err := s.subscriptions.FindByOrderID(ctx, payment.OrderID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subscription")
		}
		return existing, nil
	}

	s.recordEvent("subscription_activated")
	s.logger.Info("subscription activated",
		zap.String("order_id", payment.OrderID),
		zap.String("subject_id", subject.ID),
		zap.String("user_email", payment.UserEmail),
		zap.Time("end_date", sub.EndDate))
	return sub, nil
}

func (s *PaymentService) recordEvent(event string) {
	if s.metrics != nil {
		s.metrics.RecordPaymentEvent(event)
	}
}
