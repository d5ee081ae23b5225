package repository

import (
	"time"

	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/pkg/pg"
	"github.com/shopspring/decimal"
)

type PaymentEntity struct {
	pg.Model
	BillID int64           `gorm:"column:bill_id;not null;index"`
	Bill   *BillEntity     `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE"`
	UserID int64           `gorm:"column:user_id;not null;index"`
	User   *UserEntity     `gorm:"foreignKey:UserID"`
	Amount decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Method string          `gorm:"column:method;size:16;not null;default:cash"`
	Note   *string         `gorm:"column:note;type:text"`
	PaidAt time.Time       `gorm:"column:paid_at;not null;index"`
}

func (PaymentEntity) TableName() string {
	return "payments"
}

func toPaymentEntity(m *model.Payment) *PaymentEntity {
	if m == nil {
		return nil
	}
	return &PaymentEntity{
		Model: pg.Model{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		BillID: m.BillID,
		UserID: m.UserID,
		Amount: m.Amount,
		Method: string(m.Method),
		Note:   m.Note,
		PaidAt: m.PaidAt,
	}
}

func toPaymentModel(e *PaymentEntity) *model.Payment {
	if e == nil {
		return nil
	}
	return &model.Payment{
		ID:        e.ID,
		BillID:    e.BillID,
		Bill:      toBillModel(e.Bill),
		UserID:    e.UserID,
		User:      toUserModel(e.User),
		Amount:    e.Amount,
		Method:    model.PaymentMethod(e.Method),
		Note:      e.Note,
		PaidAt:    e.PaidAt,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toPaymentModels(entities []*PaymentEntity) []*model.Payment {
	if entities == nil {
		return nil
	}
	models := make([]*model.Payment, len(entities))
	for i, e := range entities {
		models[i] = toPaymentModel(e)
	}
	return models
}
