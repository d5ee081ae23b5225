package repository

import (
	"time"

	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/pkg/pg"
	"github.com/shopspring/decimal"
)

type BillEntity struct {
	pg.Model
	CustomerID      int64           `gorm:"column:customer_id;not null;uniqueIndex:ux_bills_customer_period,priority:1"`
	Customer        *CustomerEntity `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	Period          string          `gorm:"column:period;size:7;not null;uniqueIndex:ux_bills_customer_period,priority:2;index"`
	MeterStart      int64           `gorm:"column:meter_start;not null;default:0"`
	MeterEnd        int64           `gorm:"column:meter_end;not null;default:0"`
	Usage           int64           `gorm:"column:usage;not null;default:0"`
	TariffPerUnit   decimal.Decimal `gorm:"column:tariff_per_unit;type:numeric(12,2);not null"`
	Amount          decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	DueDate         time.Time       `gorm:"column:due_date;type:date;not null"`
	Status          string          `gorm:"column:status;size:16;not null;default:unpaid;index"`
	AwaitingReading bool            `gorm:"column:awaiting_reading;not null;default:false"`
}

func (BillEntity) TableName() string {
	return "bills"
}

func toBillEntity(m *model.Bill) *BillEntity {
	if m == nil {
		return nil
	}
	return &BillEntity{
		Model: pg.Model{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		CustomerID:      m.CustomerID,
		Period:          m.Period,
		MeterStart:      m.MeterStart,
		MeterEnd:        m.MeterEnd,
		Usage:           m.Usage,
		TariffPerUnit:   m.TariffPerUnit,
		Amount:          m.Amount,
		DueDate:         m.DueDate,
		Status:          string(m.Status),
		AwaitingReading: m.AwaitingReading,
	}
}

func toBillModel(e *BillEntity) *model.Bill {
	if e == nil {
		return nil
	}
	return &model.Bill{
		ID:              e.ID,
		CustomerID:      e.CustomerID,
		Customer:        toCustomerModel(e.Customer),
		Period:          e.Period,
		MeterStart:      e.MeterStart,
		MeterEnd:        e.MeterEnd,
		Usage:           e.Usage,
		TariffPerUnit:   e.TariffPerUnit,
		Amount:          e.Amount,
		DueDate:         e.DueDate,
		Status:          model.BillStatus(e.Status),
		AwaitingReading: e.AwaitingReading,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func toBillModels(entities []*BillEntity) []*model.Bill {
	if entities == nil {
		return nil
	}
	models := make([]*model.Bill, len(entities))
	for i, e := range entities {
		models[i] = toBillModel(e)
	}
	return models
}
