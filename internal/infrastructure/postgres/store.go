package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rcmp123/marketplace/internal/domain/repository"
)

const uniqueViolation = "23505"

// querier is the subset shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Users() repository.UserRepository       { return &UserRepository{q: s.pool} }
func (s *Store) Listings() repository.ListingRepository { return &ListingRepository{q: s.pool} }

func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(txRepos{q: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() { s.pool.Close() }

type txRepos struct {
	q querier
}

func (t txRepos) Users() repository.UserRepository       { return &UserRepository{q: t.q} }
func (t txRepos) Listings() repository.ListingRepository { return &ListingRepository{q: t.q} }

// mapErr translates driver errors into repository sentinels, wrapped with op.
func mapErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w: %s", op, repository.ErrDuplicate, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ repository.Store = (*Store)(nil)
