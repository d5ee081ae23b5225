package services

import (
	"context"
	"time"

	"github.com/nimasrn/water-billing/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) customer(args mock.Arguments) (*model.Customer, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerRepository) customers(args mock.Arguments) ([]*model.Customer, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	return m.customer(m.Called(ctx, c))
}

func (m *MockCustomerRepository) Update(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	return m.customer(m.Called(ctx, c))
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	return m.customer(m.Called(ctx, id))
}

func (m *MockCustomerRepository) GetBySubscriberNumber(ctx context.Context, number string) (*model.Customer, error) {
	return m.customer(m.Called(ctx, number))
}

func (m *MockCustomerRepository) GetBySubscriberNumberForUpdate(ctx context.Context, number string) (*model.Customer, error) {
	return m.customer(m.Called(ctx, number))
}

func (m *MockCustomerRepository) ExistsBySubscriberNumber(ctx context.Context, number string) (bool, error) {
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) List(ctx context.Context, f model.CustomerFilter) ([]*model.Customer, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerRepository) ListActive(ctx context.Context) ([]*model.Customer, error) {
	return m.customers(m.Called(ctx))
}

func (m *MockCustomerRepository) FirstActive(ctx context.Context) (*model.Customer, error) {
	return m.customer(m.Called(ctx))
}

func (m *MockCustomerRepository) Latest(ctx context.Context, limit int) ([]*model.Customer, error) {
	return m.customers(m.Called(ctx, limit))
}

func (m *MockCustomerRepository) UpdateReading(ctx context.Context, id int64, reading int64, readAt time.Time) error {
	return m.Called(ctx, id, reading, readAt).Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) bill(args mock.Arguments) (*model.Bill, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Bill), args.Error(1)
}

func (m *MockBillRepository) bills(args mock.Arguments) ([]*model.Bill, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Bill), args.Error(1)
}

func (m *MockBillRepository) Create(ctx context.Context, b *model.Bill) (*model.Bill, error) {
	return m.bill(m.Called(ctx, b))
}

func (m *MockBillRepository) CreateBatch(ctx context.Context, bills []*model.Bill) error {
	return m.Called(ctx, bills).Error(0)
}

func (m *MockBillRepository) Update(ctx context.Context, b *model.Bill) (*model.Bill, error) {
	return m.bill(m.Called(ctx, b))
}

func (m *MockBillRepository) GetByID(ctx context.Context, id int64) (*model.Bill, error) {
	return m.bill(m.Called(ctx, id))
}

func (m *MockBillRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Bill, error) {
	return m.bill(m.Called(ctx, id))
}

func (m *MockBillRepository) GetForPeriodForUpdate(ctx context.Context, customerID int64, period string) (*model.Bill, error) {
	return m.bill(m.Called(ctx, customerID, period))
}

func (m *MockBillRepository) ExistsForPeriod(ctx context.Context, customerID int64, period string) (bool, error) {
	args := m.Called(ctx, customerID, period)
	return args.Bool(0), args.Error(1)
}

func (m *MockBillRepository) CustomersWithPeriod(ctx context.Context, period string) (map[int64]struct{}, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]struct{}), args.Error(1)
}

func (m *MockBillRepository) FindLatestUnpaidForUpdate(ctx context.Context, customerID int64) (*model.Bill, error) {
	return m.bill(m.Called(ctx, customerID))
}

func (m *MockBillRepository) LatestForCustomer(ctx context.Context, customerID int64) (*model.Bill, error) {
	return m.bill(m.Called(ctx, customerID))
}

func (m *MockBillRepository) MarkPaid(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBillRepository) MarkUnpaid(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBillRepository) List(ctx context.Context, f model.BillFilter) ([]*model.Bill, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Bill), args.Get(1).(int64), args.Error(2)
}

func (m *MockBillRepository) ListForExport(ctx context.Context, f model.BillExportFilter) ([]*model.Bill, error) {
	return m.bills(m.Called(ctx, f))
}

func (m *MockBillRepository) Latest(ctx context.Context, limit int) ([]*model.Bill, error) {
	return m.bills(m.Called(ctx, limit))
}

func (m *MockBillRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) payment(args mock.Arguments) (*model.Payment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) payments(args mock.Arguments) ([]*model.Payment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	return m.payment(m.Called(ctx, p))
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	return m.payment(m.Called(ctx, p))
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	return m.payment(m.Called(ctx, id))
}

func (m *MockPaymentRepository) ListByBill(ctx context.Context, billID int64) ([]*model.Payment, error) {
	return m.payments(m.Called(ctx, billID))
}

func (m *MockPaymentRepository) CountByBill(ctx context.Context, billID int64) (int64, error) {
	args := m.Called(ctx, billID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, f model.PaymentFilter) ([]*model.Payment, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) Recent(ctx context.Context, limit int) ([]*model.Payment, error) {
	return m.payments(m.Called(ctx, limit))
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockTariffRepository struct {
	mock.Mock
}

func (m *MockTariffRepository) tariff(args mock.Arguments) (*model.Tariff, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tariff), args.Error(1)
}

func (m *MockTariffRepository) Create(ctx context.Context, t *model.Tariff) (*model.Tariff, error) {
	return m.tariff(m.Called(ctx, t))
}

func (m *MockTariffRepository) Update(ctx context.Context, t *model.Tariff) (*model.Tariff, error) {
	return m.tariff(m.Called(ctx, t))
}

func (m *MockTariffRepository) GetByID(ctx context.Context, id int64) (*model.Tariff, error) {
	return m.tariff(m.Called(ctx, id))
}

func (m *MockTariffRepository) List(ctx context.Context, p model.Pagination) ([]*model.Tariff, int64, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Tariff), args.Get(1).(int64), args.Error(2)
}

func (m *MockTariffRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Dashboard(ctx context.Context, now time.Time) (*model.DashboardStats, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DashboardStats), args.Error(1)
}

func (m *MockStatsRepository) Payments(ctx context.Context, now time.Time) (*model.PaymentStats, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentStats), args.Error(1)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, u *model.User) (*model.Session, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionStore) Get(ctx context.Context, token string) (*model.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockSessionStore) TTL() time.Duration {
	return m.Called().Get(0).(time.Duration)
}
