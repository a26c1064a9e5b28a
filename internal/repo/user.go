// Package repo contains all database access logic for the Barberbook API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"barberbook/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepo defines the persistence operations for user accounts.
// The auth gateway and the auth service depend on this interface, not the
// concrete Postgres implementation, so both can be unit-tested with a mock.
type UserRepo interface {
	// GetByID loads the public fields of a user for request authentication.
	// It selects only id, name, email, role, and is_active, never the
	// password hash. Returns domain.ErrNotFound if no user with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.User, error)

	// GetCredentialsByEmail loads the stored password hash for the login flow.
	// Returns domain.ErrNotFound if no user with that email exists.
	GetCredentialsByEmail(ctx context.Context, email string) (domain.Credentials, error)

	// Create inserts a new user and returns the persisted public record.
	// A duplicate email surfaces as the underlying unique-violation error
	// for the classifier to map; it is not translated here.
	Create(ctx context.Context, name, email, passwordHash string, role domain.Role) (domain.User, error)
}

// pgUserRepo is the Postgres implementation of UserRepo.
type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

// GetByID loads a user's public fields by primary key.
func (r *pgUserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	const q = `
		SELECT id, name, email, role, is_active
		FROM users
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", err)
	}
	return u, nil
}

// GetCredentialsByEmail loads the login credentials for an email address.
func (r *pgUserRepo) GetCredentialsByEmail(ctx context.Context, email string) (domain.Credentials, error) {
	const q = `
		SELECT id, password_hash, is_active
		FROM users
		WHERE email = @email`

	var c domain.Credentials
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"email": email}).
		Scan(&c.UserID, &c.PasswordHash, &c.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrNotFound
		}
		return domain.Credentials{}, fmt.Errorf("repo.UserRepo.GetCredentialsByEmail: %w", err)
	}
	return c, nil
}

// Create inserts a new user row and returns the public record.
func (r *pgUserRepo) Create(ctx context.Context, name, email, passwordHash string, role domain.Role) (domain.User, error) {
	const q = `
		INSERT INTO users (name, email, password_hash, role)
		VALUES (@name, @email, @password_hash, @role)
		RETURNING id, name, email, role, is_active`

	args := pgx.NamedArgs{
		"name":          name,
		"email":         email,
		"password_hash": passwordHash,
		"role":          role,
	}

	row := r.db.QueryRow(ctx, q, args)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", err)
	}
	return u, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scan helpers to
// be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanUser maps a single database row into a domain.User.
func scanUser(s scanner) (domain.User, error) {
	var u domain.User
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}
