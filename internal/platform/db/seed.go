package db

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"c2ms/internal/domain/auth"
	"c2ms/internal/platform/config"
)

// Seed creates the bootstrap administrator when credentials are configured.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	email := strings.TrimSpace(cfg.SeedAdminEmail)
	if email == "" || strings.TrimSpace(cfg.SeedAdminPassword) == "" {
		slog.Info("seed skipped, no admin credentials configured")
		return nil
	}
	store := auth.NewStore(pool)
	if err := store.EnsureUser(ctx, email, "Administrator", auth.RoleAdmin, cfg.SeedAdminPassword); err != nil {
		return err
	}
	slog.Info("seed admin ensured", "email", email)
	return nil
}
