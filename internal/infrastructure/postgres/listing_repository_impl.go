package postgres

import (
	"context"

	"github.com/rcmp123/marketplace/internal/domain/entity"
	"github.com/rcmp123/marketplace/internal/domain/repository"
)

type ListingRepository struct {
	q querier
}

func (r *ListingRepository) Create(ctx context.Context, l *entity.Listing) error {
	const op = "postgres.ListingRepository.Create"
	row := r.q.QueryRow(ctx, `
		INSERT INTO listing (title, description, price, seller_id, image_path, sold)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, l.Title, l.Description, l.Price, l.SellerID, l.ImagePath, l.Sold)

	if err := row.Scan(&l.ID); err != nil {
		return mapErr(op, err)
	}
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*entity.Listing, error) {
	const op = "postgres.ListingRepository.GetByID"
	l := &entity.Listing{}

	row := r.q.QueryRow(ctx, `
		SELECT id, title, description, price, seller_id, image_path, sold
		FROM listing
		WHERE id = $1
	`, id)

	if err := row.Scan(&l.ID, &l.Title, &l.Description, &l.Price, &l.SellerID, &l.ImagePath, &l.Sold); err != nil {
		return nil, mapErr(op, err)
	}
	return l, nil
}

var _ repository.ListingRepository = (*ListingRepository)(nil)
