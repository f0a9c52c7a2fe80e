package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rcmp123/marketplace/internal/domain/entity"
	repo "github.com/rcmp123/marketplace/internal/domain/repository"
	"github.com/rcmp123/marketplace/pkg/helpers"
)

var (
	ErrUsernameTaken     = errors.New("username already exists")
	ErrMissingCredential = errors.New("username and password are required")
)

type UserService struct {
	Store  repo.Store
	Events EventPublisher
	Logger logrus.FieldLogger
}

func NewUserService(store repo.Store, events EventPublisher, logger logrus.FieldLogger) *UserService {
	return &UserService{Store: store, Events: events, Logger: logger}
}

// Register creates a user with a bcrypt-hashed password.
// A taken username yields ErrUsernameTaken whether it is caught by the
// lookup or by the unique constraint on insert.
func (s *UserService) Register(ctx context.Context, username, password string) (*entity.User, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredential
	}

	existing, err := s.Store.Users().GetByUsername(ctx, username)
	switch {
	case err == nil && existing != nil:
		return nil, ErrUsernameTaken
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{Username: username, HashedPassword: hash}
	err = s.Store.WithTx(ctx, func(tx repo.Tx) error {
		return tx.Users().Create(ctx, u)
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.Add("users_registered", 1)
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("user registered")
	publish(ctx, s.Events, s.Logger, entity.Event{
		Type:     entity.EventUserRegistered,
		UserID:   u.ID,
		Username: u.Username,
	})
	return u, nil
}
