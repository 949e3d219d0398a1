package customer

import (
	"context"

	"quotation-crm/internal/domain"
)

// ListFilter narrows a customer listing.
type ListFilter struct {
	Limit int
	// Search matches company name, contact person, or email, case-insensitively.
	Search string
}

// Repository persists and fetches customers.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	// Update replaces every mutable field and returns the row as stored.
	// It returns domain.ErrNotFound when no row has the id.
	Update(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	// Delete returns domain.ErrNotFound when no row has the id.
	Delete(ctx context.Context, id string) error
}
