package repository

import (
	"time"

	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/pkg/pg"
	"github.com/shopspring/decimal"
)

type CustomerEntity struct {
	pg.Model
	SubscriberNumber string          `gorm:"column:subscriber_number;size:50;not null;uniqueIndex"`
	Name             string          `gorm:"column:name;size:255;not null"`
	Address          string          `gorm:"column:address;type:text;not null"`
	Phone            *string         `gorm:"column:phone;size:20"`
	Status           string          `gorm:"column:status;size:16;not null;default:active;index"`
	TariffPerUnit    decimal.Decimal `gorm:"column:tariff_per_unit;type:numeric(12,2);not null"`
	LastMeterReading int64           `gorm:"column:last_meter_reading;not null;default:0"`
	LastReadingDate  *time.Time      `gorm:"column:last_reading_date;type:date"`
}

func (CustomerEntity) TableName() string {
	return "customers"
}

func toCustomerEntity(m *model.Customer) *CustomerEntity {
	if m == nil {
		return nil
	}
	return &CustomerEntity{
		Model: pg.Model{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		SubscriberNumber: m.SubscriberNumber,
		Name:             m.Name,
		Address:          m.Address,
		Phone:            m.Phone,
		Status:           string(m.Status),
		TariffPerUnit:    m.TariffPerUnit,
		LastMeterReading: m.LastMeterReading,
		LastReadingDate:  m.LastReadingDate,
	}
}

func toCustomerModel(e *CustomerEntity) *model.Customer {
	if e == nil {
		return nil
	}
	return &model.Customer{
		ID:               e.ID,
		SubscriberNumber: e.SubscriberNumber,
		Name:             e.Name,
		Address:          e.Address,
		Phone:            e.Phone,
		Status:           model.CustomerStatus(e.Status),
		TariffPerUnit:    e.TariffPerUnit,
		LastMeterReading: e.LastMeterReading,
		LastReadingDate:  e.LastReadingDate,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func toCustomerModels(entities []*CustomerEntity) []*model.Customer {
	if entities == nil {
		return nil
	}
	models := make([]*model.Customer, len(entities))
	for i, e := range entities {
		models[i] = toCustomerModel(e)
	}
	return models
}
