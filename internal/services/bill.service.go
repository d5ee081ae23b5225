package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nimasrn/water-billing/internal/billing"
	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/internal/report"
	"github.com/nimasrn/water-billing/internal/repository"
	"github.com/nimasrn/water-billing/pkg/logger"
	"github.com/nimasrn/water-billing/pkg/prom"
)

const (
	msgPeriodTaken     = "The customer already has a bill for this period."
	msgInvalidCustomer = "The selected customer id is invalid."
)

// Bill sources, used as the metric label.
const (
	SourceManual   = "manual"
	SourceGenerate = "generate"
	SourceImport   = "import"
	SourceMeter    = "meter"
)

type BillService struct {
	tx           Transactor
	billRepo     BillRepository
	customerRepo CustomerRepository
	paymentRepo  PaymentRepository
}

func NewBillService(tx Transactor, billRepo BillRepository, customerRepo CustomerRepository, paymentRepo PaymentRepository) *BillService {
	return &BillService{
		tx:           tx,
		billRepo:     billRepo,
		customerRepo: customerRepo,
		paymentRepo:  paymentRepo,
	}
}

func (s *BillService) List(ctx context.Context, f model.BillFilter) (model.Page[*model.Bill], error) {
	f.Pagination = f.Pagination.Normalize(model.DefaultPerPage)
	items, total, err := s.billRepo.List(ctx, f)
	if err != nil {
		return model.Page[*model.Bill]{}, err
	}
	return model.NewPage(items, total, f.Pagination), nil
}

// Get returns the bill with its customer and payments.
func (s *BillService) Get(ctx context.Context, id int64) (*model.Bill, error) {
	b, err := s.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListByBill(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Payments = payments
	return b, nil
}

func (s *BillService) Create(ctx context.Context, req model.BillCreateRequest) (*model.Bill, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, model.ErrCustomerNotFound) {
			return nil, model.FieldError("customer_id", msgInvalidCustomer)
		}
		return nil, err
	}

	due, err := billing.ParseDate(req.DueDate)
	if err != nil {
		return nil, model.FieldError("due_date", "The due date is not a valid date.")
	}
	b := &model.Bill{
		CustomerID:    customer.ID,
		Period:        strings.TrimSpace(req.Period),
		MeterStart:    *req.MeterStart,
		MeterEnd:      *req.MeterEnd,
		TariffPerUnit: customer.TariffPerUnit,
		DueDate:       due,
		Status:        model.BillUnpaid,
	}
	if req.TariffPerUnit != nil {
		b.TariffPerUnit = *req.TariffPerUnit
	}
	if err := b.Recalculate(); err != nil {
		return nil, model.FieldError("meter_end", err.Error())
	}

	exists, err := s.billRepo.ExistsForPeriod(ctx, b.CustomerID, b.Period)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.FieldError("period", msgPeriodTaken)
	}

	created, err := s.billRepo.Create(ctx, b)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.FieldError("period", msgPeriodTaken)
		}
		return nil, fmt.Errorf("create bill: %w", err)
	}
	prom.AddBillsCreated(SourceManual, 1)
	created.Customer = customer
	return created, nil
}

// Update changes the present fields and derives usage and amount again.
func (s *BillService) Update(ctx context.Context, id int64, req model.BillUpdateRequest) (*model.Bill, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b, err := s.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CustomerID != nil && *req.CustomerID != b.CustomerID {
		customer, err := s.customerRepo.GetByID(ctx, *req.CustomerID)
		if err != nil {
			if errors.Is(err, model.ErrCustomerNotFound) {
				return nil, model.FieldError("customer_id", msgInvalidCustomer)
			}
			return nil, err
		}
		b.Customer = customer
	}
	if err := req.Apply(b); err != nil {
		return nil, err
	}

	updated, err := s.billRepo.Update(ctx, b)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.FieldError("period", msgPeriodTaken)
		}
		return nil, fmt.Errorf("update bill: %w", err)
	}
	updated.Customer = b.Customer
	return updated, nil
}

func (s *BillService) Delete(ctx context.Context, id int64) error {
	return s.billRepo.Delete(ctx, id)
}

// Generate creates a zero usage bill for every active customer that has
// none for the period yet. Operators complete them when recording meters.
func (s *BillService) Generate(ctx context.Context, req model.BillGenerateRequest) (*model.BillGenerateResult, error) {
	req.Period = strings.TrimSpace(req.Period)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	due, err := billing.ParseDate(req.DueDate)
	if err != nil {
		return nil, model.FieldError("due_date", "The due date is not a valid date.")
	}

	result := &model.BillGenerateResult{}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		customers, err := s.customerRepo.ListActive(ctx)
		if err != nil {
			return err
		}
		billed, err := s.billRepo.CustomersWithPeriod(ctx, req.Period)
		if err != nil {
			return err
		}

		bills := make([]*model.Bill, 0, len(customers))
		for _, c := range customers {
			if _, ok := billed[c.ID]; ok {
				result.Skipped++
				continue
			}
			bills = append(bills, &model.Bill{
				CustomerID:      c.ID,
				Period:          req.Period,
				MeterStart:      c.LastMeterReading,
				MeterEnd:        c.LastMeterReading,
				TariffPerUnit:   c.TariffPerUnit,
				DueDate:         due,
				Status:          model.BillUnpaid,
				AwaitingReading: true,
			})
		}
		if len(bills) == 0 {
			return nil
		}
		if err := s.billRepo.CreateBatch(ctx, bills); err != nil {
			return fmt.Errorf("generate bills: %w", err)
		}
		result.BillsCreated = len(bills)
		return nil
	})
	if err != nil {
		return nil, err
	}

	prom.AddBillsCreated(SourceGenerate, result.BillsCreated)
	logger.Info("bills generated", "period", req.Period, "created", result.BillsCreated, "skipped", result.Skipped)
	result.Message = fmt.Sprintf("Generated %d bills for period %s", result.BillsCreated, req.Period)
	return result, nil
}

// Import creates every bill or none, each priced with its customer's tariff.
func (s *BillService) Import(ctx context.Context, req model.BillImportRequest) (*model.ImportResult, error) {
	if len(req.Bills) == 0 {
		return nil, model.FieldError("bills", "The bills field is required.")
	}

	ve := model.NewValidationError()
	for i := range req.Bills {
		row := &req.Bills[i]
		row.SubscriberNumber = strings.TrimSpace(row.SubscriberNumber)
		row.Period = strings.TrimSpace(row.Period)
		if err := row.Validate(); err != nil {
			var rowErr *model.ValidationError
			if errors.As(err, &rowErr) {
				ve.Merge(fmt.Sprintf("bills.%d.", i), rowErr)
			}
		}
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for i, row := range req.Bills {
			if err := s.importRow(ctx, row); err != nil {
				var ie *model.ImportError
				if errors.As(err, &ie) {
					ie.Row = model.ImportRow(i)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	n := len(req.Bills)
	prom.AddBillsCreated(SourceImport, n)
	prom.AddImportedRows("bills", n)
	logger.Info("bills imported", "count", n)
	return &model.ImportResult{
		Message:       fmt.Sprintf("Successfully imported %d bills", n),
		ImportedCount: n,
	}, nil
}

func (s *BillService) importRow(ctx context.Context, row model.BillImportRow) error {
	customer, err := s.customerRepo.GetBySubscriberNumber(ctx, row.SubscriberNumber)
	if err != nil {
		if errors.Is(err, model.ErrCustomerNotFound) {
			return &model.ImportError{Reason: fmt.Sprintf("customer %s not found", row.SubscriberNumber)}
		}
		return err
	}

	due, err := billing.ParseDate(row.DueDate)
	if err != nil {
		return &model.ImportError{Reason: "invalid due date"}
	}
	b := &model.Bill{
		CustomerID:    customer.ID,
		Period:        row.Period,
		MeterStart:    *row.MeterStart,
		MeterEnd:      *row.MeterEnd,
		TariffPerUnit: customer.TariffPerUnit,
		DueDate:       due,
		Status:        model.BillUnpaid,
	}
	if err := b.Recalculate(); err != nil {
		return &model.ImportError{Reason: err.Error()}
	}

	exists, err := s.billRepo.ExistsForPeriod(ctx, customer.ID, row.Period)
	if err != nil {
		return err
	}
	if exists {
		return &model.ImportError{Reason: fmt.Sprintf("customer %s already has a bill for %s", row.SubscriberNumber, row.Period)}
	}
	if _, err := s.billRepo.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return &model.ImportError{Reason: fmt.Sprintf("customer %s already has a bill for %s", row.SubscriberNumber, row.Period)}
		}
		return err
	}
	return nil
}

// Template describes the bill import format with a sample row built from
// the first active customer.
func (s *BillService) Template(ctx context.Context, now time.Time) (model.BillTemplate, error) {
	sample := map[string]any{
		"subscriber_number": "PLG001",
		"period":            billing.CurrentPeriod(now),
		"meter_start":       int64(0),
		"meter_end":         int64(25),
		"due_date":          billing.DueDate(now, 30).Format(billing.DateLayout),
	}
	c, err := s.customerRepo.FirstActive(ctx)
	switch {
	case err == nil:
		sample["subscriber_number"] = c.SubscriberNumber
		sample["meter_start"] = c.LastMeterReading
		sample["meter_end"] = c.LastMeterReading + 25
	case !errors.Is(err, model.ErrCustomerNotFound):
		return model.BillTemplate{}, err
	}

	return model.BillTemplate{
		Headers:    []string{"subscriber_number", "period", "meter_start", "meter_end", "due_date"},
		SampleData: []map[string]any{sample},
		Instructions: []string{
			"Fill one bill per row, the first row must keep the column names.",
			"Usage and amount are calculated from the meter readings and the customer's tariff.",
			"The whole file is rejected when any row is invalid.",
		},
		ValidationRules: map[string]string{
			"subscriber_number": "required, must match an existing customer",
			"period":            "required, YYYY-MM, one bill per customer and period",
			"meter_start":       "required, integer >= 0",
			"meter_end":         "required, integer >= meter_start",
			"due_date":          "required, YYYY-MM-DD",
		},
	}, nil
}

// Export renders the matching bills as a spreadsheet.
func (s *BillService) Export(ctx context.Context, f model.BillExportFilter) (*bytes.Buffer, error) {
	bills, err := s.billRepo.ListForExport(ctx, f)
	if err != nil {
		return nil, err
	}
	return report.ExportBills(bills)
}
