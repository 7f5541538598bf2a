package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fieldforce/internal/domain/apperr"
	"fieldforce/internal/platform/db"
)

var ErrUserNotFound = apperr.NotFound("user_not_found", "user not found")

type Store struct {
	DB db.Queryer
}

func NewStore(conn db.Queryer) *Store {
	return &Store{DB: conn}
}

const userColumns = "id, name, email, role, COALESCE(manager_id::text, ''), is_active"

func (s *Store) Get(ctx context.Context, userID string) (User, error) {
	q := db.QueryerFromContext(ctx, s.DB)
	var u User
	err := q.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", userID).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.ManagerID, &u.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("directory store: get user: %w", err)
	}
	return u, nil
}

// ManagerOf returns the active direct manager of userID, or "" when none.
func (s *Store) ManagerOf(ctx context.Context, userID string) (string, error) {
	q := db.QueryerFromContext(ctx, s.DB)
	var managerID string
	err := q.QueryRow(ctx, `
    SELECT COALESCE(m.id::text, '')
    FROM users u
    LEFT JOIN users m ON m.id = u.manager_id AND m.is_active = true
    WHERE u.id = $1
  `, userID).Scan(&managerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("directory store: manager of: %w", err)
	}
	return managerID, nil
}

// ActiveAdmins lists active admin ids in a stable order.
func (s *Store) ActiveAdmins(ctx context.Context) ([]string, error) {
	q := db.QueryerFromContext(ctx, s.DB)
	rows, err := q.Query(ctx, "SELECT id FROM users WHERE role = 'admin' AND is_active = true ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("directory store: active admins: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) ActiveEmployees(ctx context.Context, role string) ([]User, error) {
	q := db.QueryerFromContext(ctx, s.DB)
	rows, err := q.Query(ctx, "SELECT "+userColumns+" FROM users WHERE role = $1 AND is_active = true ORDER BY name", role)
	if err != nil {
		return nil, fmt.Errorf("directory store: active employees: %w", err)
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.ManagerID, &u.IsActive); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) UpdatePresence(ctx context.Context, userID string, p Presence) error {
	q := db.QueryerFromContext(ctx, s.DB)
	_, err := q.Exec(ctx, `
    UPDATE users
    SET current_latitude = $2, current_longitude = $3, current_address = $4,
        is_online = $5, location_updated_at = $6
    WHERE id = $1
  `, userID, p.Location.Latitude, p.Location.Longitude, p.Location.Address, p.IsOnline, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("directory store: update presence: %w", err)
	}
	return nil
}
