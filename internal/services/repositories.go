package services

import (
	"context"
	"time"

	"github.com/nimasrn/water-billing/internal/model"
)

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) (*model.Customer, error)
	Update(ctx context.Context, c *model.Customer) (*model.Customer, error)
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
	GetBySubscriberNumber(ctx context.Context, number string) (*model.Customer, error)
	GetBySubscriberNumberForUpdate(ctx context.Context, number string) (*model.Customer, error)
	ExistsBySubscriberNumber(ctx context.Context, number string) (bool, error)
	List(ctx context.Context, f model.CustomerFilter) ([]*model.Customer, int64, error) // results, totalCount
	ListActive(ctx context.Context) ([]*model.Customer, error)
	FirstActive(ctx context.Context) (*model.Customer, error)
	Latest(ctx context.Context, limit int) ([]*model.Customer, error)
	UpdateReading(ctx context.Context, id int64, reading int64, readAt time.Time) error
	Delete(ctx context.Context, id int64) error
}

type BillRepository interface {
	Create(ctx context.Context, b *model.Bill) (*model.Bill, error)
	CreateBatch(ctx context.Context, bills []*model.Bill) error
	Update(ctx context.Context, b *model.Bill) (*model.Bill, error)
	GetByID(ctx context.Context, id int64) (*model.Bill, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Bill, error)
	GetForPeriodForUpdate(ctx context.Context, customerID int64, period string) (*model.Bill, error)
	ExistsForPeriod(ctx context.Context, customerID int64, period string) (bool, error)
	CustomersWithPeriod(ctx context.Context, period string) (map[int64]struct{}, error)
	FindLatestUnpaidForUpdate(ctx context.Context, customerID int64) (*model.Bill, error)
	LatestForCustomer(ctx context.Context, customerID int64) (*model.Bill, error)
	MarkPaid(ctx context.Context, id int64) error
	MarkUnpaid(ctx context.Context, id int64) error
	List(ctx context.Context, f model.BillFilter) ([]*model.Bill, int64, error)
	ListForExport(ctx context.Context, f model.BillExportFilter) ([]*model.Bill, error)
	Latest(ctx context.Context, limit int) ([]*model.Bill, error)
	Delete(ctx context.Context, id int64) error
}

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) (*model.Payment, error)
	Update(ctx context.Context, p *model.Payment) (*model.Payment, error)
	GetByID(ctx context.Context, id int64) (*model.Payment, error)
	ListByBill(ctx context.Context, billID int64) ([]*model.Payment, error)
	CountByBill(ctx context.Context, billID int64) (int64, error)
	List(ctx context.Context, f model.PaymentFilter) ([]*model.Payment, int64, error)
	Recent(ctx context.Context, limit int) ([]*model.Payment, error)
	Delete(ctx context.Context, id int64) error
}

type TariffRepository interface {
	Create(ctx context.Context, t *model.Tariff) (*model.Tariff, error)
	Update(ctx context.Context, t *model.Tariff) (*model.Tariff, error)
	GetByID(ctx context.Context, id int64) (*model.Tariff, error)
	List(ctx context.Context, p model.Pagination) ([]*model.Tariff, int64, error)
	Delete(ctx context.Context, id int64) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type StatsRepository interface {
	Dashboard(ctx context.Context, now time.Time) (*model.DashboardStats, error)
	Payments(ctx context.Context, now time.Time) (*model.PaymentStats, error)
}
