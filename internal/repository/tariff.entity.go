package repository

import (
	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/pkg/pg"
	"github.com/shopspring/decimal"
)

type TariffEntity struct {
	pg.Model
	Class        string          `gorm:"column:class;size:255;not null"`
	Category     *string         `gorm:"column:category;size:255"`
	PricePerUnit decimal.Decimal `gorm:"column:price_per_unit;type:numeric(12,2);not null"`
}

func (TariffEntity) TableName() string {
	return "tariffs"
}

func toTariffEntity(m *model.Tariff) *TariffEntity {
	if m == nil {
		return nil
	}
	return &TariffEntity{
		Model: pg.Model{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Class:        m.Class,
		Category:     m.Category,
		PricePerUnit: m.PricePerUnit,
	}
}

func toTariffModel(e *TariffEntity) *model.Tariff {
	if e == nil {
		return nil
	}
	return &model.Tariff{
		ID:           e.ID,
		Class:        e.Class,
		Category:     e.Category,
		PricePerUnit: e.PricePerUnit,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toTariffModels(entities []*TariffEntity) []*model.Tariff {
	if entities == nil {
		return nil
	}
	models := make([]*model.Tariff, len(entities))
	for i, e := range entities {
		models[i] = toTariffModel(e)
	}
	return models
}
