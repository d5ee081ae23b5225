package services

import (
	"context"
	"testing"

	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/internal/repository"
	"github.com/nimasrn/water-billing/pkg/pg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stack struct {
	db        *pg.DB
	bills     *repository.BillRepository
	payments  *repository.PaymentRepository
	customers *CustomerService
	billing   *BillService
	paying    *PaymentService
	cashier   *CashierService
	meter     *MeterService
	cashierID int64
}

func newStack(t *testing.T) *stack {
	t.Helper()
	db := repository.OpenTestDB(t)
	_, guard := setupGuard(t)

	customerRepo := repository.NewCustomerRepository(db)
	billRepo := repository.NewBillRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	tariffRepo := repository.NewTariffRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	cashier, err := repository.NewUserRepository(db).Create(context.Background(), &model.User{
		Name: "Kasir", Email: "kasir@water.com", Role: model.RoleCashier, PasswordHash: "x",
	})
	require.NoError(t, err)

	return &stack{
		db:        db,
		bills:     billRepo,
		payments:  paymentRepo,
		customers: NewCustomerService(db, customerRepo, tariffRepo, dec(5000)),
		billing:   NewBillService(db, billRepo, customerRepo, paymentRepo),
		paying:    NewPaymentService(db, paymentRepo, billRepo, statsRepo, clock),
		cashier:   NewCashierService(db, customerRepo, billRepo, paymentRepo, guard, clock),
		meter:     NewMeterService(db, customerRepo, billRepo, 30, clock),
		cashierID: cashier.ID,
	}
}

func TestBillingFlow_ReadPayAndRevert(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	customer, err := s.customers.Create(ctx, customerRow("PLG001"))
	require.NoError(t, err)

	reading, err := s.meter.Record(ctx, model.MeterReadingRequest{SubscriberNumber: "PLG001", MeterReading: i64(35)})
	require.NoError(t, err)
	assert.Equal(t, int64(35), reading.Usage)
	assert.True(t, reading.Amount.Equal(dec(175000)), reading.Amount.String())
	assert.Equal(t, model.BillUnpaid, reading.Bill.Status)

	lookup, err := s.cashier.Lookup(ctx, model.BillLookupRequest{SubscriberNumber: "PLG001"})
	require.NoError(t, err)
	assert.Equal(t, reading.Bill.ID, lookup.BillID)

	receipt, err := s.cashier.Pay(ctx, s.cashierID, model.CashierPaymentRequest{SubscriberNumber: "PLG001", Method: model.PaymentCash})
	require.NoError(t, err)
	assert.True(t, receipt.Amount.Equal(dec(175000)))

	bill, err := s.billing.Get(ctx, reading.Bill.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BillPaid, bill.Status)
	require.Len(t, bill.Payments, 1)
	assert.True(t, bill.Payments[0].Amount.Equal(dec(175000)))

	_, err = s.cashier.Lookup(ctx, model.BillLookupRequest{SubscriberNumber: "PLG001"})
	assert.ErrorIs(t, err, model.ErrNoUnpaidBill)

	_, err = s.paying.Create(ctx, s.cashierID, model.PaymentCreateRequest{BillID: bill.ID})
	assert.ErrorIs(t, err, model.ErrBillAlreadyPaid)

	require.NoError(t, s.paying.Delete(ctx, receipt.PaymentID))
	bill, err = s.billing.Get(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BillUnpaid, bill.Status)
	assert.Empty(t, bill.Payments)

	updated, err := s.customers.Get(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(35), updated.LastMeterReading)
	assert.NotNil(t, updated.LastReadingDate)
}

func TestBillingFlow_GenerateThenRecord(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	first, err := s.customers.Create(ctx, customerRow("PLG001"))
	require.NoError(t, err)
	_, err = s.customers.Create(ctx, customerRow("PLG002"))
	require.NoError(t, err)

	_, err = s.billing.Create(ctx, model.BillCreateRequest{
		CustomerID: first.ID, Period: "2025-08", MeterStart: i64(0), MeterEnd: i64(10), DueDate: "2025-09-03",
	})
	require.NoError(t, err)

	res, err := s.billing.Generate(ctx, model.BillGenerateRequest{Period: "2025-08", DueDate: "2025-09-03"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.BillsCreated)
	assert.Equal(t, 1, res.Skipped)

	// placeholders are not collectable until read
	_, err = s.cashier.Lookup(ctx, model.BillLookupRequest{SubscriberNumber: "PLG002"})
	assert.ErrorIs(t, err, model.ErrNoUnpaidBill)

	reading, err := s.meter.Record(ctx, model.MeterReadingRequest{SubscriberNumber: "PLG002", MeterReading: i64(12), Period: "2025-08"})
	require.NoError(t, err)
	assert.True(t, reading.Amount.Equal(dec(60000)))

	page, err := s.billing.List(ctx, model.BillFilter{Period: "2025-08"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	again, err := s.billing.Generate(ctx, model.BillGenerateRequest{Period: "2025-08", DueDate: "2025-09-03"})
	require.NoError(t, err)
	assert.Equal(t, 0, again.BillsCreated)
	assert.Equal(t, 2, again.Skipped)
}

func TestBillingFlow_SameReadingTwiceInAPeriod(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	_, err := s.customers.Create(ctx, customerRow("PLG001"))
	require.NoError(t, err)
	_, err = s.meter.Record(ctx, model.MeterReadingRequest{SubscriberNumber: "PLG001", MeterReading: i64(10), Period: "2025-07"})
	require.NoError(t, err)

	first, err := s.meter.Record(ctx, model.MeterReadingRequest{SubscriberNumber: "PLG001", MeterReading: i64(10), Period: "2025-08"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.Usage)

	_, err = s.meter.Record(ctx, model.MeterReadingRequest{SubscriberNumber: "PLG001", MeterReading: i64(40), Period: "2025-08"})
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "period")

	bill, err := s.bills.GetByID(ctx, first.Bill.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), bill.MeterEnd)
	assert.Equal(t, int64(0), bill.Usage)
}

func TestBillingFlow_ImportIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	_, err := s.customers.Create(ctx, customerRow("PLG001"))
	require.NoError(t, err)

	_, err = s.customers.Import(ctx, model.CustomerImportRequest{Customers: []model.CustomerCreateRequest{
		customerRow("PLG011"), customerRow("PLG012"), customerRow("PLG001"),
	}})
	var ie *model.ImportError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 4, ie.Row)

	page, err := s.customers.List(ctx, model.CustomerFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	res, err := s.customers.Import(ctx, model.CustomerImportRequest{Customers: []model.CustomerCreateRequest{
		customerRow("PLG011"), customerRow("PLG012"),
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.ImportedCount)

	row := func(number string, end int64) model.BillImportRow {
		start := int64(0)
		return model.BillImportRow{SubscriberNumber: number, Period: "2025-08", MeterStart: &start, MeterEnd: &end, DueDate: "2025-09-03"}
	}
	_, err = s.billing.Import(ctx, model.BillImportRequest{Bills: []model.BillImportRow{
		row("PLG011", 10), row("PLG011", 12),
	}})
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 3, ie.Row)

	bills, err := s.billing.List(ctx, model.BillFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), bills.Total)
}
