package postgres

import (
	"context"

	"github.com/rcmp123/marketplace/internal/domain/entity"
	"github.com/rcmp123/marketplace/internal/domain/repository"
)

type UserRepository struct {
	q querier
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	const op = "postgres.UserRepository.Create"
	row := r.q.QueryRow(ctx, `
		INSERT INTO "user" (username, hashed_password)
		VALUES ($1, $2)
		RETURNING id
	`, u.Username, u.HashedPassword)

	if err := row.Scan(&u.ID); err != nil {
		return mapErr(op, err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	const op = "postgres.UserRepository.GetByUsername"
	u := &entity.User{}

	row := r.q.QueryRow(ctx, `
		SELECT id, username, hashed_password
		FROM "user"
		WHERE username = $1
	`, username)

	if err := row.Scan(&u.ID, &u.Username, &u.HashedPassword); err != nil {
		return nil, mapErr(op, err)
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
