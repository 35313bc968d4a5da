package repository

import (
	"context"

	"github.com/helixir/apartment-listing-service/internal/domain"
)

// ApartmentRepository handles apartment listing persistence.
type ApartmentRepository interface {
	// FindAll returns listings matching params ordered by id ascending.
	// A nil Limit or Offset leaves that part of the page window unbounded.
	FindAll(ctx context.Context, params ListParams) ([]*domain.Apartment, error)

	// Count returns the number of listings matching search, ignoring any page window.
	Count(ctx context.Context, search string) (int64, error)

	// FindByID retrieves a listing by id.
	// Returns an error of kind domain.KindNotFound if no listing has that id.
	FindByID(ctx context.Context, id int64) (*domain.Apartment, error)

	// ExistsByUnitNumber reports whether any listing uses unitNumber.
	ExistsByUnitNumber(ctx context.Context, unitNumber string) (bool, error)

	// Create inserts a listing and returns it with the store-assigned id and timestamps.
	// Returns domain.ErrAlreadyExists if the unit number is taken.
	Create(ctx context.Context, apartment *domain.Apartment) (*domain.Apartment, error)
}

// ListParams selects a page of listings.
type ListParams struct {
	// Limit caps the number of rows. Nil means no cap; zero returns no rows.
	Limit *int
	// Offset skips rows after filtering. Nil means start at the first row.
	Offset *int
	// Search filters on project name, unit name or unit number, case-insensitively
	// and by substring. It is trimmed; an empty result disables the filter.
	Search string
}
