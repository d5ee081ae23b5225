package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BillRepository struct {
	*pg.DB
}

func NewBillRepository(db *pg.DB) *BillRepository {
	return &BillRepository{
		db,
	}
}

func (r *BillRepository) Create(ctx context.Context, b *model.Bill) (*model.Bill, error) {
	entity := toBillEntity(b)

	err := r.Write(ctx).WithContext(ctx).Omit(clause.Associations).Create(entity).Error
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: bill for period %s", ErrDuplicate, b.Period)
		}
		return nil, err
	}

	return toBillModel(entity), nil
}

// CreateBatch inserts bills in chunks, all or nothing when called inside a transaction.
func (r *BillRepository) CreateBatch(ctx context.Context, bills []*model.Bill) error {
	if len(bills) == 0 {
		return nil
	}
	entities := make([]*BillEntity, len(bills))
	for i, b := range bills {
		entities[i] = toBillEntity(b)
	}

	err := r.Write(ctx).WithContext(ctx).Omit(clause.Associations).CreateInBatches(entities, 100).Error
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return fmt.Errorf("%w: bill batch", ErrDuplicate)
		}
		return err
	}
	for i, e := range entities {
		bills[i].ID = e.ID
		bills[i].CreatedAt = e.CreatedAt
		bills[i].UpdatedAt = e.UpdatedAt
	}
	return nil
}

func (r *BillRepository) Update(ctx context.Context, b *model.Bill) (*model.Bill, error) {
	entity := toBillEntity(b)

	err := r.Write(ctx).WithContext(ctx).Omit(clause.Associations).Save(entity).Error
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: bill for period %s", ErrDuplicate, b.Period)
		}
		return nil, err
	}

	return toBillModel(entity), nil
}

func (r *BillRepository) GetByID(ctx context.Context, id int64) (*model.Bill, error) {
	var entity BillEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Customer").
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrBillNotFound
		}
		return nil, err
	}

	return toBillModel(&entity), nil
}

// GetByIDForUpdate locks the bill row until the surrounding transaction ends.
func (r *BillRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Bill, error) {
	var entity BillEntity
	err := r.Write(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrBillNotFound
		}
		return nil, err
	}

	return toBillModel(&entity), nil
}

// GetForPeriodForUpdate returns the customer's bill of a period, locked.
func (r *BillRepository) GetForPeriodForUpdate(ctx context.Context, customerID int64, period string) (*model.Bill, error) {
	var entity BillEntity
	err := r.Write(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ? AND period = ?", customerID, period).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrBillNotFound
		}
		return nil, err
	}

	return toBillModel(&entity), nil
}

func (r *BillRepository) ExistsForPeriod(ctx context.Context, customerID int64, period string) (bool, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&BillEntity{}).
		Where("customer_id = ? AND period = ?", customerID, period).
		Count(&count).
		Error
	return count > 0, err
}

// CustomersWithPeriod returns the ids of customers already billed for period.
func (r *BillRepository) CustomersWithPeriod(ctx context.Context, period string) (map[int64]struct{}, error) {
	var ids []int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&BillEntity{}).
		Where("period = ?", period).
		Pluck("customer_id", &ids).
		Error
	if err != nil {
		return nil, err
	}

	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// FindLatestUnpaidForUpdate returns the newest unpaid bill by period that
// has something to pay, locked for the payment.
func (r *BillRepository) FindLatestUnpaidForUpdate(ctx context.Context, customerID int64) (*model.Bill, error) {
	var entity BillEntity
	err := r.Write(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ? AND status = ? AND amount > 0", customerID, string(model.BillUnpaid)).
		Order("period DESC").
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNoUnpaidBill
		}
		return nil, err
	}

	return toBillModel(&entity), nil
}

// LatestForCustomer returns the most recently created bill of a customer.
func (r *BillRepository) LatestForCustomer(ctx context.Context, customerID int64) (*model.Bill, error) {
	var entity BillEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").Order("id DESC").
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrBillNotFound
		}
		return nil, err
	}

	return toBillModel(&entity), nil
}

// MarkPaid flips an unpaid bill to paid. It fails with ErrBillAlreadyPaid
// when another payment got there first.
func (r *BillRepository) MarkPaid(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, model.BillUnpaid, model.BillPaid, model.ErrBillAlreadyPaid)
}

// MarkUnpaid reverts a paid bill, an already unpaid bill is left alone.
func (r *BillRepository) MarkUnpaid(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, model.BillPaid, model.BillUnpaid, nil)
}

func (r *BillRepository) setStatus(ctx context.Context, id int64, from, to model.BillStatus, onMiss error) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&BillEntity{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 && onMiss != nil {
		return onMiss
	}
	return nil
}

func (r *BillRepository) List(ctx context.Context, f model.BillFilter) ([]*model.Bill, int64, error) {
	q := r.filter(r.Read(ctx).WithContext(ctx).Model(&BillEntity{}), f.CustomerID, f.Period, f.Status)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entities []*BillEntity
	err := q.Preload("Customer").
		Order("period DESC").Order("id DESC").
		Scopes(pg.Paginate(f.Offset(), f.Limit())).
		Find(&entities).
		Error
	if err != nil {
		return nil, 0, err
	}

	return toBillModels(entities), total, nil
}

// ListForExport returns every matching bill with its customer.
func (r *BillRepository) ListForExport(ctx context.Context, f model.BillExportFilter) ([]*model.Bill, error) {
	q := r.filter(r.Read(ctx).WithContext(ctx).Model(&BillEntity{}), nil, f.Period, f.Status)

	var entities []*BillEntity
	err := q.Preload("Customer").
		Order("period DESC").Order("customer_id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toBillModels(entities), nil
}

func (r *BillRepository) filter(q *gorm.DB, customerID *int64, period string, status model.BillStatus) *gorm.DB {
	if customerID != nil {
		q = q.Where("customer_id = ?", *customerID)
	}
	if period != "" {
		q = q.Where("period = ?", period)
	}
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	return q
}

// Latest returns the most recently created bills with their customer.
func (r *BillRepository) Latest(ctx context.Context, limit int) ([]*model.Bill, error) {
	var entities []*BillEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Customer").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toBillModels(entities), nil
}

// Delete removes the bill and its payments.
func (r *BillRepository) Delete(ctx context.Context, id int64) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		db := r.Write(ctx).WithContext(ctx)

		if err := db.Where("bill_id = ?", id).Delete(&PaymentEntity{}).Error; err != nil {
			return fmt.Errorf("delete payments: %w", err)
		}

		result := db.Where("id = ?", id).Delete(&BillEntity{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return model.ErrBillNotFound
		}
		return nil
	})
}
