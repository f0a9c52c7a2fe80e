package sqlite

import (
	"context"

	"github.com/rcmp123/marketplace/internal/domain/entity"
	"github.com/rcmp123/marketplace/internal/domain/repository"
)

type ListingRepository struct {
	q querier
}

func (r *ListingRepository) Create(ctx context.Context, l *entity.Listing) error {
	const op = "sqlite.ListingRepository.Create"
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO listing (title, description, price, seller_id, image_path, sold)
		VALUES (?, ?, ?, ?, ?, ?)`,
		l.Title, l.Description, l.Price, l.SellerID, l.ImagePath, l.Sold)
	if err != nil {
		return mapErr(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return mapErr(op, err)
	}
	l.ID = id
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*entity.Listing, error) {
	const op = "sqlite.ListingRepository.GetByID"
	l := &entity.Listing{}
	err := r.q.QueryRowContext(ctx, `
		SELECT id, title, description, price, seller_id, image_path, sold
		FROM listing WHERE id = ?`, id).
		Scan(&l.ID, &l.Title, &l.Description, &l.Price, &l.SellerID, &l.ImagePath, &l.Sold)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return l, nil
}

var _ repository.ListingRepository = (*ListingRepository)(nil)
