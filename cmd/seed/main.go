package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/rcmp123/marketplace/config"
	"github.com/rcmp123/marketplace/internal/application"
	"github.com/rcmp123/marketplace/internal/container"
	"github.com/rcmp123/marketplace/internal/domain/repository"
	"github.com/rcmp123/marketplace/pkg/helpers"
)

// seed registers a demo seller through UserService.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx := context.Background()
	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer c.Close()

	username := envOr("SEED_USERNAME", "demo_seller")
	password := envOr("SEED_PASSWORD", "password123")
	if err := seedUser(ctx, c.Users, c.Store, os.Stdout, username, password); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

// seedUser registers username, or reports the existing account. Only id and
// username are written to out.
func seedUser(ctx context.Context, users *application.UserService, store repository.Store, out io.Writer, username, password string) error {
	u, err := users.Register(ctx, username, password)
	switch {
	case errors.Is(err, application.ErrUsernameTaken):
		existing, lookupErr := store.Users().GetByUsername(ctx, username)
		if lookupErr != nil {
			return fmt.Errorf("look up existing user: %w", lookupErr)
		}
		_, err = fmt.Fprintf(out, "user already present: id=%d username=%s\n", existing.ID, existing.Username)
		return err
	case err != nil:
		return fmt.Errorf("register user: %w", err)
	}
	_, err = fmt.Fprintf(out, "seeded user: id=%d username=%s\n", u.ID, u.Username)
	return err
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
