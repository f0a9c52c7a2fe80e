package repository

import (
	"context"
	"errors"

	"github.com/rcmp123/marketplace/internal/domain/entity"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// Create inserts u and sets u.ID.
	Create(ctx context.Context, u *entity.User) error
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}
