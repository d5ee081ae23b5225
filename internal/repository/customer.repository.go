package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("record already exists")
)

type CustomerRepository struct {
	*pg.DB
}

func NewCustomerRepository(db *pg.DB) *CustomerRepository {
	return &CustomerRepository{
		db,
	}
}

func (r *CustomerRepository) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	entity := toCustomerEntity(c)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: subscriber number %s", ErrDuplicate, c.SubscriberNumber)
		}
		return nil, err
	}

	return toCustomerModel(entity), nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	entity := toCustomerEntity(c)

	if err := r.Write(ctx).WithContext(ctx).Save(entity).Error; err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: subscriber number %s", ErrDuplicate, c.SubscriberNumber)
		}
		return nil, err
	}

	return toCustomerModel(entity), nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	var entity CustomerEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrCustomerNotFound
		}
		return nil, err
	}

	return toCustomerModel(&entity), nil
}

func (r *CustomerRepository) GetBySubscriberNumber(ctx context.Context, number string) (*model.Customer, error) {
	return r.findBySubscriberNumber(r.Read(ctx).WithContext(ctx), number)
}

// GetBySubscriberNumberForUpdate locks the customer row until the surrounding
// transaction ends.
func (r *CustomerRepository) GetBySubscriberNumberForUpdate(ctx context.Context, number string) (*model.Customer, error) {
	q := r.Write(ctx).WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.findBySubscriberNumber(q, number)
}

func (r *CustomerRepository) findBySubscriberNumber(q *gorm.DB, number string) (*model.Customer, error) {
	var entity CustomerEntity
	err := q.Where("subscriber_number = ?", strings.TrimSpace(number)).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrCustomerNotFound
		}
		return nil, err
	}

	return toCustomerModel(&entity), nil
}

func (r *CustomerRepository) ExistsBySubscriberNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&CustomerEntity{}).
		Where("subscriber_number = ?", number).
		Count(&count).
		Error
	return count > 0, err
}

func (r *CustomerRepository) List(ctx context.Context, f model.CustomerFilter) ([]*model.Customer, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&CustomerEntity{})

	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(subscriber_number) LIKE ? OR LOWER(name) LIKE ? OR LOWER(address) LIKE ?", like, like, like)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entities []*CustomerEntity
	err := q.Order("created_at DESC").Order("id DESC").
		Scopes(pg.Paginate(f.Offset(), f.Limit())).
		Find(&entities).
		Error
	if err != nil {
		return nil, 0, err
	}

	return toCustomerModels(entities), total, nil
}

// ListActive returns every active customer ordered by subscriber number.
func (r *CustomerRepository) ListActive(ctx context.Context) ([]*model.Customer, error) {
	var entities []*CustomerEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("status = ?", string(model.CustomerActive)).
		Order("subscriber_number ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toCustomerModels(entities), nil
}

func (r *CustomerRepository) FirstActive(ctx context.Context) (*model.Customer, error) {
	var entity CustomerEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("status = ?", string(model.CustomerActive)).
		Order("id ASC").
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrCustomerNotFound
		}
		return nil, err
	}
	return toCustomerModel(&entity), nil
}

// Latest returns the most recently created customers.
func (r *CustomerRepository) Latest(ctx context.Context, limit int) ([]*model.Customer, error) {
	var entities []*CustomerEntity
	err := r.Read(ctx).WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toCustomerModels(entities), nil
}

// UpdateReading stores the latest meter reading of a customer.
func (r *CustomerRepository) UpdateReading(ctx context.Context, id int64, reading int64, readAt time.Time) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&CustomerEntity{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_meter_reading": reading,
			"last_reading_date":  readAt,
			"updated_at":         time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrCustomerNotFound
	}
	return nil
}

// Delete removes the customer together with its bills and their payments.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		db := r.Write(ctx).WithContext(ctx)

		bills := db.Model(&BillEntity{}).Select("id").Where("customer_id = ?", id)
		if err := db.Where("bill_id IN (?)", bills).Delete(&PaymentEntity{}).Error; err != nil {
			return fmt.Errorf("delete payments: %w", err)
		}
		if err := db.Where("customer_id = ?", id).Delete(&BillEntity{}).Error; err != nil {
			return fmt.Errorf("delete bills: %w", err)
		}

		result := db.Where("id = ?", id).Delete(&CustomerEntity{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return model.ErrCustomerNotFound
		}
		return nil
	})
}
