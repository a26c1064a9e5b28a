package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"barberbook/internal/domain"
)

// OwnerRepo resolves the owner of a row for ownership checks.
// It is deliberately tiny: one read per call, no transaction.
type OwnerRepo interface {
	// OwnerOf returns the owning user id of the row identified by id under
	// the given locator. Returns domain.ErrNotFound when no such row exists.
	OwnerOf(ctx context.Context, loc domain.ResourceLocator, id int64) (int64, error)
}

// ownerQueries binds each table-backed locator to a constant query.
// Keeping the set closed here (rather than interpolating table and column
// names) means request data can never reach a SQL identifier position.
var ownerQueries = map[domain.ResourceLocator]string{
	domain.LocatorBarbershop:  `SELECT owner_id FROM barbershops WHERE id = @id`,
	domain.LocatorAppointment: `SELECT client_id FROM appointments WHERE id = @id`,
	domain.LocatorReview:      `SELECT client_id FROM reviews WHERE id = @id`,
}

// pgOwnerRepo is the Postgres implementation of OwnerRepo.
type pgOwnerRepo struct {
	db db
}

// NewOwnerRepo constructs an OwnerRepo backed by the provided db connection.
func NewOwnerRepo(db db) OwnerRepo {
	return &pgOwnerRepo{db: db}
}

// OwnerOf looks up the owner column for the locator's table.
func (r *pgOwnerRepo) OwnerOf(ctx context.Context, loc domain.ResourceLocator, id int64) (int64, error) {
	q, ok := ownerQueries[loc]
	if !ok {
		// LocatorSelf and future variants without a backing table are the
		// gate's job to resolve; reaching the store with one is a bug.
		return 0, fmt.Errorf("repo.OwnerRepo.OwnerOf: locator %s has no backing table", loc)
	}

	var ownerID int64
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrNotFound
		}
		return 0, fmt.Errorf("repo.OwnerRepo.OwnerOf: %s %d: %w", loc, id, err)
	}
	return ownerID, nil
}
