package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/rcmp123/marketplace/internal/domain/repository"
)

// querier is the subset shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() repository.UserRepository       { return &UserRepository{q: s.db} }
func (s *Store) Listings() repository.ListingRepository { return &ListingRepository{q: s.db} }

func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite.Store.WithTx: begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(txRepos{q: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite.Store.WithTx: commit: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() { _ = s.db.Close() }

type txRepos struct {
	q querier
}

func (t txRepos) Users() repository.UserRepository       { return &UserRepository{q: t.q} }
func (t txRepos) Listings() repository.ListingRepository { return &ListingRepository{q: t.q} }

func mapErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	var se sqlite3.Error
	if errors.As(err, &se) && (se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return fmt.Errorf("%s: %w: %s", op, repository.ErrDuplicate, se.Error())
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ repository.Store = (*Store)(nil)
