package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edustream/edustream-api/internal/models"
)

type mockSubscriptionReader struct {
	completed map[string]*models.Subscription
	byUser    map[string][]models.Subscription
	all       []models.Subscription
}

func (m *mockSubscriptionReader) FindCompleted(ctx context.Context, userEmail, subjectID string) (*models.Subscription, error) {
	sub, ok := m.completed[userEmail+"|"+subjectID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return sub, nil
}

func (m *mockSubscriptionReader) ListByUser(ctx context.Context, userEmail string) ([]models.Subscription, error) {
	return m.byUser[userEmail], nil
}

func (m *mockSubscriptionReader) ListAll(ctx context.Context) ([]models.Subscription, error) {
	return m.all, nil
}

func TestCheckEntitlementActive(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockSubscriptionReader{completed: map[string]*models.Subscription{
		"user@example.com|icse-10-biology": {
			ID:        "sub-order_1",
			OrderID:   "order_1",
			UserEmail: "user@example.com",
			SubjectID: "icse-10-biology",
			StartDate: now.AddDate(0, 0, -10),
			EndDate:   now.AddDate(0, 0, 350),
		},
	}}
	svc := NewSubscriptionService(repo, zap.NewNop())
	svc.now = func() time.Time { return now }

	result, err := svc.CheckEntitlement(context.Background(), "user@example.com", "icse-10-biology")
	require.NoError(t, err)
	assert.True(t, result.HasSubscription)
	require.NotNil(t, result.Subscription)
	assert.Equal(t, "sub-order_1", result.Subscription.ID)
}

func TestCheckEntitlementNone(t *testing.T) {
	svc := NewSubscriptionService(&mockSubscriptionReader{}, zap.NewNop())

	result, err := svc.CheckEntitlement(context.Background(), "user@example.com", "icse-10-biology")
	require.NoError(t, err)
	assert.False(t, result.HasSubscription)
	assert.Nil(t, result.Subscription)
}

func TestCheckEntitlementExpired(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockSubscriptionReader{completed: map[string]*models.Subscription{
		"user@example.com|icse-10-biology": {
			ID:      "sub-order_1",
			EndDate: now.AddDate(0, 0, -1),
		},
	}}
	svc := NewSubscriptionService(repo, zap.NewNop())
	svc.now = func() time.Time { return now }

	result, err := svc.CheckEntitlement(context.Background(), "user@example.com", "icse-10-biology")
	require.NoError(t, err)
	assert.False(t, result.HasSubscription)
	// The lapsed subscription is still surfaced so callers can tell
	// "expired" apart from "never purchased".
	require.NotNil(t, result.Subscription)
}

func TestCheckEntitlementBoundaryIsExclusive(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockSubscriptionReader{completed: map[string]*models.Subscription{
		"user@example.com|icse-10-biology": {
			ID:      "sub-order_1",
			EndDate: now,
		},
	}}
	svc := NewSubscriptionService(repo, zap.NewNop())
	svc.now = func() time.Time { return now }

	result, err := svc.CheckEntitlement(context.Background(), "user@example.com", "icse-10-biology")
	require.NoError(t, err)
	assert.False(t, result.HasSubscription)
}

func TestListMineAnnotatesActivity(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockSubscriptionReader{byUser: map[string][]models.Subscription{
		"user@example.com": {
			{ID: "sub-a", EndDate: now.AddDate(0, 0, 30)},
			{ID: "sub-b", EndDate: now.AddDate(0, 0, -30)},
		},
	}}
	svc := NewSubscriptionService(repo, zap.NewNop())
	svc.now = func() time.Time { return now }

	views, err := svc.ListMine(context.Background(), "user@example.com")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.True(t, views[0].IsActive)
	assert.False(t, views[1].IsActive)
}
