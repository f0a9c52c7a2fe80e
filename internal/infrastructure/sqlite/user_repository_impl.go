package sqlite

import (
	"context"

	"github.com/rcmp123/marketplace/internal/domain/entity"
	"github.com/rcmp123/marketplace/internal/domain/repository"
)

type UserRepository struct {
	q querier
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	const op = "sqlite.UserRepository.Create"
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO "user" (username, hashed_password) VALUES (?, ?)`,
		u.Username, u.HashedPassword)
	if err != nil {
		return mapErr(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return mapErr(op, err)
	}
	u.ID = id
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	const op = "sqlite.UserRepository.GetByUsername"
	u := &entity.User{}
	err := r.q.QueryRowContext(ctx,
		`SELECT id, username, hashed_password FROM "user" WHERE username = ?`,
		username).Scan(&u.ID, &u.Username, &u.HashedPassword)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
