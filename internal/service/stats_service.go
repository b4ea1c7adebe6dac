package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/edustream/edustream-api/internal/models"
	appErrors "github.com/edustream/edustream-api/pkg/errors"
	"github.com/edustream/edustream-api/pkg/export"
)

// ExportFormat selects an export renderer.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

type statsRepository interface {
	Overview(ctx context.Context) (*models.AdminStats, error)
}

// StatsService aggregates admin dashboard numbers and renders exports.
type StatsService struct {
	repo          statsRepository
	subscriptions subscriptionReader
	csv           *export.CSVExporter
	pdf           *export.PDFExporter
	logger        *zap.Logger
}

// NewStatsService constructs a StatsService instance.
func NewStatsService(repo statsRepository, subscriptions subscriptionReader, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		repo:          repo,
		subscriptions: subscriptions,
		csv:           export.NewCSVExporter(),
		pdf:           export.NewPDFExporter(),
		logger:        logger,
	}
}

// Overview returns the dashboard counters and total revenue.
func (s *StatsService) Overview(ctx context.Context) (*models.AdminStats, error) {
	stats, err := s.repo.Overview(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate stats")
	}
	return stats, nil
}

// ExportSubscriptions renders every subscription as CSV or PDF.
func (s *StatsService) ExportSubscriptions(ctx context.Context, format ExportFormat) ([]byte, string, error) {
	subs, err := s.subscriptions.ListAll(ctx)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subscriptions")
	}

	now := time.Now().UTC()
	data := export.Dataset{
		Headers: []string{"Order ID", "User", "Subject", "Price", "Start", "End", "Active"},
		Rows:    make([]map[string]string, 0, len(subs)),
	}
	for _, sub := range subs {
		data.Rows = append(data.Rows, map[string]string{
			"Order ID": sub.OrderID,
			"User":     sub.UserEmail,
			"Subject":  sub.SubjectName,
			"Price":    strconv.Itoa(sub.Price),
			"Start":    sub.StartDate.Format("2006-01-02"),
			"End":      sub.EndDate.Format("2006-01-02"),
			"Active":   strconv.FormatBool(sub.ActiveAt(now)),
		})
	}

	switch format {
	case ExportCSV:
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", nil
	case ExportPDF:
		title := fmt.Sprintf("Subscriptions Report %s", now.Format("2006-01-02"))
		payload, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
