package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldforce/internal/platform/config"
)

// Seed makes sure an initial admin account exists. hash turns the configured
// password into the stored credential.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config, role string, hash func(string) (string, error)) error {
	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))
	if email == "" || cfg.SeedAdminPassword == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hashed, err := hash(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (name, email, password_hash, role, is_active)
    VALUES ($1,$2,$3,$4,true)
  `, "Administrator", email, hashed, role)
	return err
}
