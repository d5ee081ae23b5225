package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/pkg/pg"
	"gorm.io/gorm"
)

type TariffRepository struct {
	*pg.DB
}

func NewTariffRepository(db *pg.DB) *TariffRepository {
	return &TariffRepository{
		db,
	}
}

func (r *TariffRepository) Create(ctx context.Context, t *model.Tariff) (*model.Tariff, error) {
	entity := toTariffEntity(t)
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toTariffModel(entity), nil
}

func (r *TariffRepository) Update(ctx context.Context, t *model.Tariff) (*model.Tariff, error) {
	entity := toTariffEntity(t)
	if err := r.Write(ctx).WithContext(ctx).Save(entity).Error; err != nil {
		return nil, err
	}
	return toTariffModel(entity), nil
}

func (r *TariffRepository) GetByID(ctx context.Context, id int64) (*model.Tariff, error) {
	var entity TariffEntity
	err := r.Read(ctx).WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrTariffNotFound
		}
		return nil, err
	}
	return toTariffModel(&entity), nil
}

func (r *TariffRepository) List(ctx context.Context, p model.Pagination) ([]*model.Tariff, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&TariffEntity{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entities []*TariffEntity
	err := q.Order("class ASC").Order("id ASC").
		Scopes(pg.Paginate(p.Offset(), p.Limit())).
		Find(&entities).
		Error
	if err != nil {
		return nil, 0, err
	}
	return toTariffModels(entities), total, nil
}

func (r *TariffRepository) Delete(ctx context.Context, id int64) error {
	result := r.Write(ctx).WithContext(ctx).Where("id = ?", id).Delete(&TariffEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrTariffNotFound
	}
	return nil
}
