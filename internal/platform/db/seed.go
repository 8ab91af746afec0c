package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imlinkk/QLNS/internal/domain/auth"
	"github.com/imlinkk/QLNS/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	username := strings.TrimSpace(cfg.SeedAdminUsername)
	if username == "" {
		return nil
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE username = $1", username).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := cfg.SeedAdminPassword
	if password == "" {
		password = "admin123"
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (username, password, role, full_name)
    VALUES ($1, $2, 'admin', $3)
  `, username, hash, cfg.SeedAdminFullName)
	return err
}
