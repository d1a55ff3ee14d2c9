package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Store) CreateUser(ctx context.Context, username, password string, staff bool) error {
	if username == "" || password == "" {
		return errors.New("username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		s.rebind("INSERT INTO users (username, password_hash, is_staff, created_at) VALUES (?, ?, ?, ?)"),
		username, string(hash), staff, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) AuthenticateUser(ctx context.Context, username, password string) (*User, error) {
	var user User
	var hash string

	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT id, username, password_hash, is_staff, created_at FROM users WHERE username = ?"), username).
		Scan(&user.ID, &user.Username, &hash, &user.IsStaff, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
