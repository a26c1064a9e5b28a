package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"barberbook/internal/domain"
)

// BarbershopRepo defines the persistence operations for barbershops.
type BarbershopRepo interface {
	// Create inserts a new barbershop and returns the persisted record.
	Create(ctx context.Context, shop domain.Barbershop) (domain.Barbershop, error)

	// GetByID retrieves a single barbershop by primary key.
	// Returns domain.ErrNotFound if no barbershop with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Barbershop, error)

	// ListPaged returns one page of barbershops ordered by name, plus the
	// total row count for pagination metadata.
	ListPaged(ctx context.Context, params domain.PaginationParams) ([]domain.Barbershop, int64, error)

	// Update overwrites the mutable fields of an existing barbershop and
	// returns the updated record. Returns domain.ErrNotFound if it does not exist.
	Update(ctx context.Context, shop domain.Barbershop) (domain.Barbershop, error)

	// Delete removes a barbershop by ID. Returns domain.ErrNotFound if it
	// does not exist.
	Delete(ctx context.Context, id int64) error

	// SetImageURL records the stored location of an uploaded shop image.
	// Returns domain.ErrNotFound if the barbershop does not exist.
	SetImageURL(ctx context.Context, id int64, url string) error
}

// pgBarbershopRepo is the Postgres implementation of BarbershopRepo.
type pgBarbershopRepo struct {
	db db
}

// NewBarbershopRepo constructs a BarbershopRepo backed by the provided db connection.
func NewBarbershopRepo(db db) BarbershopRepo {
	return &pgBarbershopRepo{db: db}
}

const barbershopColumns = `id, name, description, address, phone, image_url, owner_id, created_at, updated_at`

// Create inserts a new barbershop row and returns the full persisted record.
func (r *pgBarbershopRepo) Create(ctx context.Context, shop domain.Barbershop) (domain.Barbershop, error) {
	const q = `
		INSERT INTO barbershops (name, description, address, phone, owner_id)
		VALUES (@name, @description, @address, @phone, @owner_id)
		RETURNING ` + barbershopColumns

	args := pgx.NamedArgs{
		"name":        shop.Name,
		"description": shop.Description,
		"address":     shop.Address,
		"phone":       shop.Phone,
		"owner_id":    shop.OwnerID,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanBarbershop(row)
	if err != nil {
		return domain.Barbershop{}, fmt.Errorf("repo.BarbershopRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a barbershop by primary key.
func (r *pgBarbershopRepo) GetByID(ctx context.Context, id int64) (domain.Barbershop, error) {
	const q = `SELECT ` + barbershopColumns + ` FROM barbershops WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanBarbershop(row)
	if err != nil {
		return domain.Barbershop{}, fmt.Errorf("repo.BarbershopRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of barbershops ordered by name.
func (r *pgBarbershopRepo) ListPaged(ctx context.Context, params domain.PaginationParams) ([]domain.Barbershop, int64, error) {
	const countQ = `SELECT count(*) FROM barbershops`

	var total int64
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.BarbershopRepo.ListPaged: count: %w", err)
	}

	const q = `
		SELECT ` + barbershopColumns + `
		FROM barbershops
		ORDER BY name
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": params.Limit, "offset": params.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.BarbershopRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	var shops []domain.Barbershop
	for rows.Next() {
		s, err := scanBarbershop(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.BarbershopRepo.ListPaged: scan: %w", err)
		}
		shops = append(shops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.BarbershopRepo.ListPaged: rows: %w", err)
	}

	return shops, total, nil
}

// Update overwrites the mutable fields of a barbershop.
func (r *pgBarbershopRepo) Update(ctx context.Context, shop domain.Barbershop) (domain.Barbershop, error) {
	const q = `
		UPDATE barbershops
		SET name        = @name,
		    description = @description,
		    address     = @address,
		    phone       = @phone,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + barbershopColumns

	args := pgx.NamedArgs{
		"id":          shop.ID,
		"name":        shop.Name,
		"description": shop.Description,
		"address":     shop.Address,
		"phone":       shop.Phone,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanBarbershop(row)
	if err != nil {
		return domain.Barbershop{}, fmt.Errorf("repo.BarbershopRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a barbershop by primary key.
func (r *pgBarbershopRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM barbershops WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.BarbershopRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.BarbershopRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// SetImageURL stores the location of an uploaded shop image.
func (r *pgBarbershopRepo) SetImageURL(ctx context.Context, id int64, url string) error {
	const q = `UPDATE barbershops SET image_url = @url, updated_at = now() WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "url": url})
	if err != nil {
		return fmt.Errorf("repo.BarbershopRepo.SetImageURL: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.BarbershopRepo.SetImageURL: %w", domain.ErrNotFound)
	}
	return nil
}

// scanBarbershop maps a single database row into a domain.Barbershop.
// description, phone, and image_url are nullable in the schema.
func scanBarbershop(s scanner) (domain.Barbershop, error) {
	var (
		b           domain.Barbershop
		description *string
		phone       *string
		imageURL    *string
	)

	err := s.Scan(&b.ID, &b.Name, &description, &b.Address, &phone, &imageURL, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Barbershop{}, domain.ErrNotFound
		}
		return domain.Barbershop{}, err
	}

	if description != nil {
		b.Description = *description
	}
	if phone != nil {
		b.Phone = *phone
	}
	if imageURL != nil {
		b.ImageURL = *imageURL
	}

	return b, nil
}
