package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository struct {
	*pg.DB
}

func NewPaymentRepository(db *pg.DB) *PaymentRepository {
	return &PaymentRepository{
		db,
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	entity := toPaymentEntity(p)

	if err := r.Write(ctx).WithContext(ctx).Omit(clause.Associations).Create(entity).Error; err != nil {
		return nil, err
	}

	return toPaymentModel(entity), nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	entity := toPaymentEntity(p)

	if err := r.Write(ctx).WithContext(ctx).Omit(clause.Associations).Save(entity).Error; err != nil {
		return nil, err
	}

	return toPaymentModel(entity), nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	var entity PaymentEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Bill.Customer").
		Preload("User").
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrPaymentNotFound
		}
		return nil, err
	}

	return toPaymentModel(&entity), nil
}

func (r *PaymentRepository) ListByBill(ctx context.Context, billID int64) ([]*model.Payment, error) {
	var entities []*PaymentEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("User").
		Where("bill_id = ?", billID).
		Order("paid_at DESC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toPaymentModels(entities), nil
}

func (r *PaymentRepository) CountByBill(ctx context.Context, billID int64) (int64, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&PaymentEntity{}).
		Where("bill_id = ?", billID).
		Count(&count).
		Error
	return count, err
}

func (r *PaymentRepository) List(ctx context.Context, f model.PaymentFilter) ([]*model.Payment, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&PaymentEntity{})

	if f.BillID != nil {
		q = q.Where("bill_id = ?", *f.BillID)
	}
	if f.Method != "" {
		q = q.Where("method = ?", string(f.Method))
	}
	if f.From != nil {
		q = q.Where("paid_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("paid_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entities []*PaymentEntity
	err := q.Preload("Bill.Customer").
		Preload("User").
		Order("paid_at DESC").Order("id DESC").
		Scopes(pg.Paginate(f.Offset(), f.Limit())).
		Find(&entities).
		Error
	if err != nil {
		return nil, 0, err
	}

	return toPaymentModels(entities), total, nil
}

// Recent returns the latest payments with bill, customer and cashier.
func (r *PaymentRepository) Recent(ctx context.Context, limit int) ([]*model.Payment, error) {
	var entities []*PaymentEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Bill.Customer").
		Preload("User").
		Order("paid_at DESC").Order("id DESC").
		Limit(limit).
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toPaymentModels(entities), nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id int64) error {
	result := r.Write(ctx).WithContext(ctx).Where("id = ?", id).Delete(&PaymentEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrPaymentNotFound
	}
	return nil
}
