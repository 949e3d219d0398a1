package analytics

import (
	"context"

	"quotation-crm/internal/domain"
)

// Repository aggregates customer records.
type Repository interface {
	// Summary returns totals and groupings computed from one snapshot.
	// ApprovalRate is left for the caller.
	Summary(ctx context.Context) (*domain.Summary, error)
}
