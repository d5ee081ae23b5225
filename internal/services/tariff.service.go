package services

import (
	"context"

	"github.com/nimasrn/water-billing/internal/model"
)

type TariffService struct {
	tariffRepo TariffRepository
}

func NewTariffService(tariffRepo TariffRepository) *TariffService {
	return &TariffService{tariffRepo: tariffRepo}
}

func (s *TariffService) List(ctx context.Context, p model.Pagination) (model.Page[*model.Tariff], error) {
	p = p.Normalize(model.DefaultPerPage)
	items, total, err := s.tariffRepo.List(ctx, p)
	if err != nil {
		return model.Page[*model.Tariff]{}, err
	}
	return model.NewPage(items, total, p), nil
}

func (s *TariffService) Get(ctx context.Context, id int64) (*model.Tariff, error) {
	return s.tariffRepo.GetByID(ctx, id)
}

func (s *TariffService) Create(ctx context.Context, req model.TariffRequest) (*model.Tariff, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.tariffRepo.Create(ctx, &model.Tariff{
		Class:        req.Class,
		Category:     req.Category,
		PricePerUnit: *req.PricePerUnit,
	})
}

// Update replaces the tariff. Bills keep the price they were created with.
func (s *TariffService) Update(ctx context.Context, id int64, req model.TariffRequest) (*model.Tariff, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	t, err := s.tariffRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Class = req.Class
	t.Category = req.Category
	t.PricePerUnit = *req.PricePerUnit
	return s.tariffRepo.Update(ctx, t)
}

func (s *TariffService) Delete(ctx context.Context, id int64) error {
	return s.tariffRepo.Delete(ctx, id)
}
