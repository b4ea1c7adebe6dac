package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edustream/edustream-api/internal/models"
	appErrors "github.com/edustream/edustream-api/pkg/errors"
)

type mockStatsRepo struct {
	stats *models.AdminStats
}

func (m *mockStatsRepo) Overview(ctx context.Context) (*models.AdminStats, error) {
	return m.stats, nil
}

func statsFixtureSubscriptions() *mockSubscriptionReader {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	return &mockSubscriptionReader{all: []models.Subscription{
		{
			OrderID:     "order_1",
			UserEmail:   "user@example.com",
			SubjectName: "ICSE - 10 - Biology",
			Price:       349,
			StartDate:   now.AddDate(0, 0, -10),
			EndDate:     now.AddDate(0, 0, 350),
		},
	}}
}

func TestStatsOverview(t *testing.T) {
	repo := &mockStatsRepo{stats: &models.AdminStats{Users: 10, Subjects: 4, Revenue: 1396}}
	svc := NewStatsService(repo, statsFixtureSubscriptions(), zap.NewNop())

	stats, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Users)
	assert.Equal(t, 1396, stats.Revenue)
}

func TestExportSubscriptionsCSV(t *testing.T) {
	svc := NewStatsService(&mockStatsRepo{stats: &models.AdminStats{}}, statsFixtureSubscriptions(), zap.NewNop())

	payload, contentType, err := svc.ExportSubscriptions(context.Background(), ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.True(t, bytes.Contains(payload, []byte("order_1")))
	assert.True(t, bytes.Contains(payload, []byte("ICSE - 10 - Biology")))
}

func TestExportSubscriptionsPDF(t *testing.T) {
	svc := NewStatsService(&mockStatsRepo{stats: &models.AdminStats{}}, statsFixtureSubscriptions(), zap.NewNop())

	payload, contentType, err := svc.ExportSubscriptions(context.Background(), ExportPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestExportSubscriptionsUnknownFormat(t *testing.T) {
	svc := NewStatsService(&mockStatsRepo{stats: &models.AdminStats{}}, statsFixtureSubscriptions(), zap.NewNop())

	_, _, err := svc.ExportSubscriptions(context.Background(), ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
