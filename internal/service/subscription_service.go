package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/edustream/edustream-api/internal/models"
	appErrors "github.com/edustream/edustream-api/pkg/errors"
)

type subscriptionReader interface {
	FindCompleted(ctx context.Context, userEmail, subjectID string) (*models.Subscription, error)
	ListByUser(ctx context.Context, userEmail string) ([]models.Subscription, error)
	ListAll(ctx context.Context) ([]models.Subscription, error)
}

// SubscriptionService answers entitlement questions. Expiry is evaluated
// at read time, there is no background job flipping statuses.
type SubscriptionService struct {
	repo   subscriptionReader
	logger *zap.Logger
	now    func() time.Time
}

// NewSubscriptionService constructs a SubscriptionService instance.
func NewSubscriptionService(repo subscriptionReader, logger *zap.Logger) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{repo: repo, logger: logger, now: time.Now}
}

// ListMine returns the caller's subscriptions, newest first, each annotated
// with whether it is still active.
func (s *SubscriptionService) ListMine(ctx context.Context, userEmail string) ([]models.SubscriptionView, error) {
	subs, err := s.repo.ListByUser(ctx, userEmail)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subscriptions")
	}

	now := s.now().UTC()
	views := make([]models.SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, models.SubscriptionView{
			Subscription: sub,
			IsActive:     sub.ActiveAt(now),
		})
	}
	return views, nil
}

// ListAll returns every subscription, for the admin surface.
func (s *SubscriptionService) ListAll(ctx context.Context) ([]models.SubscriptionView, error) {
	subs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subscriptions")
	}

	now := s.now().UTC()
	views := make([]models.SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, models.SubscriptionView{
			Subscription: sub,
			IsActive:     sub.ActiveAt(now),
		})
	}
	return views, nil
}

// CheckEntitlement reports whether userEmail currently holds access to
// subjectID. A subscription whose end date equals the current instant is
// already expired.
func (s *SubscriptionService) CheckEntitlement(ctx context.Context, userEmail, subjectID string) (*models.EntitlementResult, error) {
	sub, err := s.repo.FindCompleted(ctx, userEmail, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.EntitlementResult{}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subscription")
	}

	result := &models.EntitlementResult{Subscription: sub}
	if sub.ActiveAt(s.now().UTC()) {
		result.HasSubscription = true
	}
	return result, nil
}
