package analytics

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"quotation-crm/internal/domain"
	"quotation-crm/internal/logger"
	analyticsrepo "quotation-crm/internal/repository/analytics"
)

// Service serves the dashboard summary.
type Service struct {
	repo   analyticsrepo.Repository
	logger *zap.Logger
}

func New(repo analyticsrepo.Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, logger: log.Named("analytics.service")}
}

// Summary returns the dashboard aggregates. Failures are *domain.Error.
func (s *Service) Summary(ctx context.Context) (*domain.Summary, error) {
	sum, err := s.repo.Summary(ctx)
	if err != nil {
		kind := domain.KindOf(err)
		logger.FromContext(ctx, s.logger).Error("summary failed", zap.String("kind", string(kind)), zap.Error(err))
		msg := "analytics query failed"
		if kind == domain.KindConnection {
			msg = "customer store is unavailable"
		}
		return nil, &domain.Error{Kind: kind, Message: msg, Err: err}
	}
	sum.ApprovalRate = ApprovalRate(sum.Approved, sum.TotalQuotations)
	return sum, nil
}

// ApprovalRate is approved/total as a percentage rounded to one decimal. Zero when total is zero.
func ApprovalRate(approved, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(approved).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		Round(1).
		InexactFloat64()
}
