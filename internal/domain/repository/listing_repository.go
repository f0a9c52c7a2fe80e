package repository

import (
	"context"

	"github.com/rcmp123/marketplace/internal/domain/entity"
)

type ListingRepository interface {
	// Create inserts l and sets l.ID.
	Create(ctx context.Context, l *entity.Listing) error
	GetByID(ctx context.Context, id int64) (*entity.Listing, error)
}
