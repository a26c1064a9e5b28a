package service

import (
	"context"
	"fmt"

	"barberbook/internal/domain"
	"barberbook/internal/repo"
)

// BarbershopService implements business logic for barbershop operations.
// Access control is not decided here: the ownership and role gates run in
// the middleware chain before these methods are reached.
type BarbershopService struct {
	shops repo.BarbershopRepo
}

// NewBarbershopService constructs a BarbershopService.
func NewBarbershopService(shops repo.BarbershopRepo) *BarbershopService {
	return &BarbershopService{shops: shops}
}

// Create persists a new barbershop owned by ownerID.
func (s *BarbershopService) Create(ctx context.Context, shop domain.Barbershop, ownerID int64) (domain.Barbershop, error) {
	shop.OwnerID = ownerID
	result, err := s.shops.Create(ctx, shop)
	if err != nil {
		return domain.Barbershop{}, fmt.Errorf("service.BarbershopService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single barbershop by ID.
func (s *BarbershopService) GetByID(ctx context.Context, id int64) (domain.Barbershop, error) {
	result, err := s.shops.GetByID(ctx, id)
	if err != nil {
		return domain.Barbershop{}, fmt.Errorf("service.BarbershopService.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of barbershops and the total count.
// Always returns a non-nil slice so callers can safely range over it.
func (s *BarbershopService) ListPaged(ctx context.Context, params domain.PaginationParams) ([]domain.Barbershop, int64, error) {
	shops, total, err := s.shops.ListPaged(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("service.BarbershopService.ListPaged: %w", err)
	}
	if shops == nil {
		shops = []domain.Barbershop{}
	}
	return shops, total, nil
}

// Update overwrites the mutable fields of an existing barbershop.
func (s *BarbershopService) Update(ctx context.Context, shop domain.Barbershop) (domain.Barbershop, error) {
	result, err := s.shops.Update(ctx, shop)
	if err != nil {
		return domain.Barbershop{}, fmt.Errorf("service.BarbershopService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a barbershop by ID.
func (s *BarbershopService) Delete(ctx context.Context, id int64) error {
	if err := s.shops.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.BarbershopService.Delete: %w", err)
	}
	return nil
}

// SetImageURL records the stored location of an uploaded shop image.
func (s *BarbershopService) SetImageURL(ctx context.Context, id int64, url string) error {
	if err := s.shops.SetImageURL(ctx, id, url); err != nil {
		return fmt.Errorf("service.BarbershopService.SetImageURL: %w", err)
	}
	return nil
}
