package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const UserStatusActive = "active"

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID           string
	Email        string
	Name         string
	Role         string
	PasswordHash string
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (User, error) {
	var out User
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, name, role, password_hash
    FROM users
    WHERE lower(email) = lower($1) AND status = $2
  `, email, UserStatusActive).Scan(&out.ID, &out.Email, &out.Name, &out.Role, &out.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return out, err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

// EnsureUser creates the user unless one with the same email exists.
func (s *Store) EnsureUser(ctx context.Context, email, name, role, password string) error {
	if !ValidRole(role) {
		return fmt.Errorf("unknown role %q", role)
	}
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM users WHERE lower(email) = lower($1)", email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO users (email, name, password_hash, role)
    VALUES ($1,$2,$3,$4)
  `, email, name, hash, role)
	return err
}
