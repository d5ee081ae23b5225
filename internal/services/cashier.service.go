package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/pkg/logger"
)

type CashierService struct {
	tx           Transactor
	customerRepo CustomerRepository
	billRepo     BillRepository
	paymentRepo  PaymentRepository
	guard        *PaymentGuard
	now          func() time.Time
}

func NewCashierService(tx Transactor, customerRepo CustomerRepository, billRepo BillRepository, paymentRepo PaymentRepository, guard *PaymentGuard, now func() time.Time) *CashierService {
	if now == nil {
		now = time.Now
	}
	return &CashierService{
		tx:           tx,
		customerRepo: customerRepo,
		billRepo:     billRepo,
		paymentRepo:  paymentRepo,
		guard:        guard,
		now:          now,
	}
}

func (s *CashierService) activeCustomer(ctx context.Context, number string) (*model.Customer, error) {
	c, err := s.customerRepo.GetBySubscriberNumber(ctx, number)
	if err != nil {
		if errors.Is(err, model.ErrCustomerNotFound) {
			return nil, model.ErrCustomerInactive
		}
		return nil, err
	}
	if !c.IsActive() {
		return nil, model.ErrCustomerInactive
	}
	return c, nil
}

// Lookup finds the bill a cashier should collect next: the newest unpaid
// bill with a recorded usage.
func (s *CashierService) Lookup(ctx context.Context, req model.BillLookupRequest) (*model.BillLookup, error) {
	req.SubscriberNumber = strings.TrimSpace(req.SubscriberNumber)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.activeCustomer(ctx, req.SubscriberNumber)
	if err != nil {
		return nil, err
	}
	bill, err := s.billRepo.FindLatestUnpaidForUpdate(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	return &model.BillLookup{
		Name:             c.Name,
		SubscriberNumber: c.SubscriberNumber,
		BillID:           bill.ID,
		Period:           bill.Period,
		Usage:            bill.Usage,
		Amount:           bill.Amount,
		DueDate:          bill.DueDate,
	}, nil
}

// Pay collects the customer's newest unpaid bill in full. A retry by the
// same cashier for the same customer with the same idempotency key returns
// the first receipt.
func (s *CashierService) Pay(ctx context.Context, userID int64, req model.CashierPaymentRequest) (*model.PaymentReceipt, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if receipt, err := s.guard.Receipt(ctx, userID, req.SubscriberNumber, req.IdempotencyKey); err != nil {
		logger.Warn("failed to read payment receipt", "idempotency_key", req.IdempotencyKey, "error", err)
	} else if receipt != nil {
		logger.Info("payment replayed from receipt", "idempotency_key", req.IdempotencyKey, "payment_id", receipt.PaymentID)
		return receipt, nil
	}

	lock, err := s.guard.Acquire(ctx, req.SubscriberNumber)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			observePayment(req.Method, ChannelCashier, time.Now(), err)
		}
		return nil, err
	}
	defer lock.Release(ctx)

	start := time.Now()
	var (
		payment *model.Payment
		bill    *model.Bill
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.activeCustomer(ctx, req.SubscriberNumber)
		if err != nil {
			return err
		}
		bill, err = s.billRepo.FindLatestUnpaidForUpdate(ctx, c.ID)
		if err != nil {
			return err
		}
		payment, err = settle(ctx, s.paymentRepo, s.billRepo, bill, &model.Payment{
			BillID: bill.ID,
			UserID: userID,
			Amount: bill.Amount,
			Method: req.Method,
			PaidAt: s.now(),
		})
		return err
	})
	observePayment(req.Method, ChannelCashier, start, err)
	if err != nil {
		return nil, err
	}

	receipt := &model.PaymentReceipt{
		Message:   "Payment successful",
		PaymentID: payment.ID,
		BillID:    bill.ID,
		Period:    bill.Period,
		Amount:    payment.Amount,
		Method:    payment.Method,
		PaidAt:    payment.PaidAt,
	}
	if err := s.guard.StoreReceipt(ctx, userID, req.SubscriberNumber, req.IdempotencyKey, receipt); err != nil {
		logger.Warn("failed to store payment receipt", "idempotency_key", req.IdempotencyKey, "error", err)
	}

	logger.Info("payment recorded",
		"payment_id", payment.ID,
		"bill_id", bill.ID,
		"subscriber_number", req.SubscriberNumber,
		"user_id", userID,
		"channel", ChannelCashier)
	return receipt, nil
}
