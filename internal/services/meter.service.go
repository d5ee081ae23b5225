package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nimasrn/water-billing/internal/billing"
	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/internal/repository"
	"github.com/nimasrn/water-billing/pkg/logger"
	"github.com/nimasrn/water-billing/pkg/prom"
)

type MeterService struct {
	tx           Transactor
	customerRepo CustomerRepository
	billRepo     BillRepository
	dueDays      int
	now          func() time.Time
}

func NewMeterService(tx Transactor, customerRepo CustomerRepository, billRepo BillRepository, dueDays int, now func() time.Time) *MeterService {
	if now == nil {
		now = time.Now
	}
	return &MeterService{
		tx:           tx,
		customerRepo: customerRepo,
		billRepo:     billRepo,
		dueDays:      dueDays,
		now:          now,
	}
}

// Record stores a new meter reading and bills the usage since the previous
// one. A generated placeholder bill for the period is completed instead of
// creating a second bill.
func (s *MeterService) Record(ctx context.Context, req model.MeterReadingRequest) (*model.MeterReadingResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	period := req.Period
	if period == "" {
		period = billing.CurrentPeriod(now)
	}
	reading := *req.MeterReading

	var (
		customer *model.Customer
		bill     *model.Bill
		previous int64
		created  bool
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.customerRepo.GetBySubscriberNumberForUpdate(ctx, req.SubscriberNumber)
		if err != nil {
			return err
		}
		if !c.IsActive() {
			return model.ErrCustomerNotActive
		}
		previous = c.LastMeterReading
		if reading < previous {
			return model.FieldError("meter_reading", fmt.Sprintf("The meter reading must be at least %d.", previous))
		}

		existing, err := s.billRepo.GetForPeriodForUpdate(ctx, c.ID, period)
		switch {
		case err == nil && existing.IsPlaceholder():
			existing.MeterStart = previous
			existing.MeterEnd = reading
			existing.AwaitingReading = false
			if err := existing.Recalculate(); err != nil {
				return model.FieldError("meter_reading", err.Error())
			}
			if bill, err = s.billRepo.Update(ctx, existing); err != nil {
				return fmt.Errorf("complete bill: %w", err)
			}
		case err == nil:
			return model.FieldError("period", fmt.Sprintf("A bill for period %s already exists for this customer.", period))
		case errors.Is(err, model.ErrBillNotFound):
			b := &model.Bill{
				CustomerID:    c.ID,
				Period:        period,
				MeterStart:    previous,
				MeterEnd:      reading,
				TariffPerUnit: c.TariffPerUnit,
				DueDate:       billing.DueDate(now, s.dueDays),
				Status:        model.BillUnpaid,
			}
			if err := b.Recalculate(); err != nil {
				return model.FieldError("meter_reading", err.Error())
			}
			if bill, err = s.billRepo.Create(ctx, b); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return model.FieldError("period", fmt.Sprintf("A bill for period %s already exists for this customer.", period))
				}
				return fmt.Errorf("create bill: %w", err)
			}
			created = true
		default:
			return err
		}

		if err := s.customerRepo.UpdateReading(ctx, c.ID, reading, now); err != nil {
			return err
		}
		readAt := billing.Day(now)
		c.LastMeterReading = reading
		c.LastReadingDate = &readAt
		customer = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		prom.AddBillsCreated(SourceMeter, 1)
	}
	logger.Info("meter reading recorded",
		"subscriber_number", customer.SubscriberNumber,
		"period", period,
		"previous", previous,
		"current", reading,
		"bill_id", bill.ID)

	return &model.MeterReadingResult{
		Message:       "Meter reading recorded",
		Customer:      customer,
		Bill:          bill,
		PreviousMeter: previous,
		CurrentMeter:  reading,
		Usage:         bill.Usage,
		Amount:        bill.Amount,
	}, nil
}

// CustomerInfo returns a customer with its most recent bill, if any.
func (s *MeterService) CustomerInfo(ctx context.Context, req model.CustomerInfoRequest) (*model.CustomerInfo, error) {
	req.SubscriberNumber = strings.TrimSpace(req.SubscriberNumber)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.customerRepo.GetBySubscriberNumber(ctx, req.SubscriberNumber)
	if err != nil {
		return nil, err
	}
	info := &model.CustomerInfo{Customer: c}

	latest, err := s.billRepo.LatestForCustomer(ctx, c.ID)
	switch {
	case err == nil:
		info.LatestBill = latest
	case !errors.Is(err, model.ErrBillNotFound):
		return nil, err
	}
	return info, nil
}
