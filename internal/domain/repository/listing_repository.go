package repository

import (
	"context"

	"quickroom/internal/domain/entity"
)

// ListingRepository exposes reads only; listing CRUD is owned by the
// marketplace surface.
type ListingRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
}
