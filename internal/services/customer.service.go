package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/internal/repository"
	"github.com/nimasrn/water-billing/pkg/logger"
	"github.com/nimasrn/water-billing/pkg/prom"
	"github.com/shopspring/decimal"
)

const (
	msgSubscriberTaken = "The subscriber number has already been taken."
	msgInvalidTariff   = "The selected tariff id is invalid."
)

type CustomerService struct {
	tx            Transactor
	customerRepo  CustomerRepository
	tariffRepo    TariffRepository
	defaultTariff decimal.Decimal
}

func NewCustomerService(tx Transactor, customerRepo CustomerRepository, tariffRepo TariffRepository, defaultTariff decimal.Decimal) *CustomerService {
	return &CustomerService{
		tx:            tx,
		customerRepo:  customerRepo,
		tariffRepo:    tariffRepo,
		defaultTariff: defaultTariff,
	}
}

func (s *CustomerService) List(ctx context.Context, f model.CustomerFilter) (model.Page[*model.Customer], error) {
	f.Pagination = f.Pagination.Normalize(model.DefaultPerPage)
	items, total, err := s.customerRepo.List(ctx, f)
	if err != nil {
		return model.Page[*model.Customer]{}, err
	}
	return model.NewPage(items, total, f.Pagination), nil
}

func (s *CustomerService) Get(ctx context.Context, id int64) (*model.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

// tariffFor resolves the price a customer is billed at: the referenced
// tariff wins over an explicit price, which wins over the default.
func (s *CustomerService) tariffFor(ctx context.Context, tariffID *int64, price *decimal.Decimal) (decimal.Decimal, error) {
	if tariffID != nil {
		t, err := s.tariffRepo.GetByID(ctx, *tariffID)
		if err != nil {
			if errors.Is(err, model.ErrTariffNotFound) {
				return decimal.Zero, model.FieldError("tariff_id", msgInvalidTariff)
			}
			return decimal.Zero, err
		}
		return t.PricePerUnit, nil
	}
	if price != nil {
		return *price, nil
	}
	return s.defaultTariff, nil
}

func (s *CustomerService) build(ctx context.Context, req model.CustomerCreateRequest) (*model.Customer, error) {
	tariff, err := s.tariffFor(ctx, req.TariffID, req.TariffPerUnit)
	if err != nil {
		return nil, err
	}
	c := &model.Customer{
		SubscriberNumber: req.SubscriberNumber,
		Name:             req.Name,
		Address:          req.Address,
		Phone:            req.Phone,
		Status:           req.Status,
		TariffPerUnit:    tariff,
	}
	if req.LastMeterReading != nil {
		c.LastMeterReading = *req.LastMeterReading
	}
	return c, nil
}

func (s *CustomerService) Create(ctx context.Context, req model.CustomerCreateRequest) (*model.Customer, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	created, err := s.customerRepo.Create(ctx, c)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.FieldError("subscriber_number", msgSubscriberTaken)
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}

func (s *CustomerService) Update(ctx context.Context, id int64, req model.CustomerUpdateRequest) (*model.Customer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(c)
	if req.TariffID != nil {
		price, err := s.tariffFor(ctx, req.TariffID, nil)
		if err != nil {
			return nil, err
		}
		c.TariffPerUnit = price
	}

	updated, err := s.customerRepo.Update(ctx, c)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.FieldError("subscriber_number", msgSubscriberTaken)
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return updated, nil
}

// Delete removes the customer with its bills and payments.
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	return s.customerRepo.Delete(ctx, id)
}

// Import creates every customer or none. Rows are checked for shape first,
// then inserted one by one in a single transaction that stops at the first
// rejected row.
func (s *CustomerService) Import(ctx context.Context, req model.CustomerImportRequest) (*model.ImportResult, error) {
	if len(req.Customers) == 0 {
		return nil, model.FieldError("customers", "The customers field is required.")
	}

	ve := model.NewValidationError()
	for i := range req.Customers {
		req.Customers[i].Normalize()
		if err := req.Customers[i].Validate(); err != nil {
			var rowErr *model.ValidationError
			if errors.As(err, &rowErr) {
				ve.Merge(fmt.Sprintf("customers.%d.", i), rowErr)
			}
		}
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for i, row := range req.Customers {
			exists, err := s.customerRepo.ExistsBySubscriberNumber(ctx, row.SubscriberNumber)
			if err != nil {
				return err
			}
			if exists {
				return &model.ImportError{Row: model.ImportRow(i), Reason: fmt.Sprintf("subscriber number %s already exists", row.SubscriberNumber)}
			}

			c, err := s.build(ctx, row)
			if err != nil {
				var fe *model.ValidationError
				if errors.As(err, &fe) {
					return &model.ImportError{Row: model.ImportRow(i), Reason: fmt.Sprintf("tariff %d not found", *row.TariffID)}
				}
				return err
			}
			if _, err := s.customerRepo.Create(ctx, c); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return &model.ImportError{Row: model.ImportRow(i), Reason: fmt.Sprintf("subscriber number %s already exists", row.SubscriberNumber)}
				}
				return fmt.Errorf("row %d: %w", model.ImportRow(i), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	n := len(req.Customers)
	prom.AddImportedRows("customers", n)
	logger.Info("customers imported", "count", n)
	return &model.ImportResult{
		Message:       fmt.Sprintf("Successfully imported %d customers", n),
		ImportedCount: n,
	}, nil
}
