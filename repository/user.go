// Package repository provides the data access layer over the shared
// database handle.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"quill/domain"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	ErrAuthorNotFound = errors.New("author not found")
)

type UserRepository interface {
	Create(ctx context.Context, name, email, hashedPassword string) (*domain.User, error)
	ByEmail(ctx context.Context, email string) (*domain.User, error)
	ByID(ctx context.Context, id string) (*domain.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user. The store's unique index on email is the
// authority on duplicates; a violation surfaces as ErrConflict.
func (r *userRepository) Create(ctx context.Context, name, email, hashedPassword string) (*domain.User, error) {
	now := time.Now().UTC()
	u := &domain.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Name, u.Email, u.Password, u.CreatedAt, u.UpdatedAt)
	if isUniqueErr(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return u, nil
}

func (r *userRepository) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password, image, created_at, updated_at FROM users WHERE email = $1`, email))
}

func (r *userRepository) ByID(ctx context.Context, id string) (*domain.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password, image, created_at, updated_at FROM users WHERE id = $1`, id))
}

func (r *userRepository) scanOne(row *sql.Row) (*domain.User, error) {
	u := domain.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Image, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}

// isUniqueErr matches unique-constraint violations from both drivers:
// modernc sqlite reports "UNIQUE constraint failed", pgx reports
// SQLSTATE 23505.
func isUniqueErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "23505")
}
