package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/pkg/logger"
	"github.com/nimasrn/water-billing/pkg/prom"
)

// Payment channels, used as the metric label.
const (
	ChannelAdmin   = "admin"
	ChannelCashier = "cashier"
)

const recentPaymentsLimit = 10

type PaymentService struct {
	tx          Transactor
	paymentRepo PaymentRepository
	billRepo    BillRepository
	statsRepo   StatsRepository
	now         func() time.Time
}

func NewPaymentService(tx Transactor, paymentRepo PaymentRepository, billRepo BillRepository, statsRepo StatsRepository, now func() time.Time) *PaymentService {
	if now == nil {
		now = time.Now
	}
	return &PaymentService{
		tx:          tx,
		paymentRepo: paymentRepo,
		billRepo:    billRepo,
		statsRepo:   statsRepo,
		now:         now,
	}
}

// settle records p against its bill and flips the bill to paid. It must run
// inside a transaction with the bill row already locked.
func settle(ctx context.Context, payments PaymentRepository, bills BillRepository, bill *model.Bill, p *model.Payment) (*model.Payment, error) {
	if bill.Status == model.BillPaid {
		return nil, model.ErrBillAlreadyPaid
	}
	if !bill.Amount.IsPositive() {
		return nil, model.ErrBillNotPayable
	}

	created, err := payments.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	if err := bills.MarkPaid(ctx, bill.ID); err != nil {
		return nil, err
	}
	return created, nil
}

func observePayment(method model.PaymentMethod, channel string, start time.Time, err error) {
	switch {
	case err == nil:
		prom.ObservePayment(string(method), channel, time.Since(start).Seconds())
	case errors.Is(err, model.ErrConflict):
		prom.IncPaymentConflict()
	}
}

// Create pays a bill on behalf of userID. The amount defaults to the bill amount.
func (s *PaymentService) Create(ctx context.Context, userID int64, req model.PaymentCreateRequest) (*model.Payment, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	var created *model.Payment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetByIDForUpdate(ctx, req.BillID)
		if err != nil {
			return err
		}

		p := &model.Payment{
			BillID: bill.ID,
			UserID: userID,
			Amount: bill.Amount,
			Method: req.Method,
			Note:   req.Note,
			PaidAt: s.now(),
		}
		if req.Amount != nil {
			p.Amount = *req.Amount
		}
		created, err = settle(ctx, s.paymentRepo, s.billRepo, bill, p)
		return err
	})
	observePayment(req.Method, ChannelAdmin, start, err)
	if err != nil {
		return nil, err
	}

	logger.Info("payment recorded", "payment_id", created.ID, "bill_id", created.BillID, "user_id", userID, "channel", ChannelAdmin)
	return created, nil
}

func (s *PaymentService) Update(ctx context.Context, id int64, req model.PaymentUpdateRequest) (*model.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(p)
	return s.paymentRepo.Update(ctx, p)
}

// Delete removes the payment and reverts its bill to unpaid once no other
// payment is left for it.
func (s *PaymentService) Delete(ctx context.Context, id int64) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.paymentRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.paymentRepo.Delete(ctx, id); err != nil {
			return err
		}

		remaining, err := s.paymentRepo.CountByBill(ctx, p.BillID)
		if err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}
		if err := s.billRepo.MarkUnpaid(ctx, p.BillID); err != nil {
			return err
		}
		logger.Info("payment deleted, bill reverted to unpaid", "payment_id", id, "bill_id", p.BillID)
		return nil
	})
}

func (s *PaymentService) List(ctx context.Context, f model.PaymentFilter) (model.Page[*model.Payment], error) {
	f.Pagination = f.Pagination.Normalize(model.DefaultPerPage)
	items, total, err := s.paymentRepo.List(ctx, f)
	if err != nil {
		return model.Page[*model.Payment]{}, err
	}
	return model.NewPage(items, total, f.Pagination), nil
}

func (s *PaymentService) Get(ctx context.Context, id int64) (*model.Payment, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

func (s *PaymentService) Stats(ctx context.Context) (*model.PaymentStats, error) {
	return s.statsRepo.Payments(ctx, s.now())
}

// Recent returns the latest payments with bill, customer and cashier.
func (s *PaymentService) Recent(ctx context.Context) ([]*model.Payment, error) {
	return s.paymentRepo.Recent(ctx, recentPaymentsLimit)
}
