package model

import (
	"errors"
	"strings"
	"time"

	"github.com/nimasrn/water-billing/internal/billing"
	"github.com/shopspring/decimal"
)

type BillStatus string

const (
	BillUnpaid BillStatus = "unpaid"
	BillPaid   BillStatus = "paid"
)

type Bill struct {
	ID              int64           `json:"id"`
	CustomerID      int64           `json:"customer_id"`
	Customer        *Customer       `json:"customer,omitempty"`
	Period          string          `json:"period"`
	MeterStart      int64           `json:"meter_start"`
	MeterEnd        int64           `json:"meter_end"`
	Usage           int64           `json:"usage"`
	TariffPerUnit   decimal.Decimal `json:"tariff_per_unit"`
	Amount          decimal.Decimal `json:"amount"`
	DueDate         time.Time       `json:"due_date"`
	Status          BillStatus      `json:"status"`
	AwaitingReading bool            `json:"awaiting_reading"`
	Payments        []*Payment      `json:"payments,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// IsPlaceholder reports a generated bill still waiting for its meter reading.
// A recorded reading of zero usage is a real bill, not a placeholder.
func (b *Bill) IsPlaceholder() bool {
	return b.AwaitingReading && b.Status == BillUnpaid
}

// Recalculate derives usage and amount from the readings and the tariff snapshot.
func (b *Bill) Recalculate() error {
	usage, amount, err := billing.Calculate(b.MeterStart, b.MeterEnd, b.TariffPerUnit)
	if err != nil {
		return err
	}
	b.Usage = usage
	b.Amount = amount
	return nil
}

type BillCreateRequest struct {
	CustomerID    int64            `json:"customer_id"`
	Period        string           `json:"period"`
	MeterStart    *int64           `json:"meter_start"`
	MeterEnd      *int64           `json:"meter_end"`
	TariffPerUnit *decimal.Decimal `json:"tariff_per_unit"`
	DueDate       string           `json:"due_date"`
}

func (r BillCreateRequest) Validate() error {
	ve := NewValidationError()
	if r.CustomerID <= 0 {
		ve.Add("customer_id", "The customer id field is required.")
	}
	validPeriod(ve, "period", strings.TrimSpace(r.Period))
	okStart := requireInt(ve, "meter_start", r.MeterStart)
	okEnd := requireInt(ve, "meter_end", r.MeterEnd)
	if okStart && okEnd && *r.MeterEnd < *r.MeterStart {
		ve.Add("meter_end", "The meter end must be greater than or equal to meter start.")
	}
	if r.TariffPerUnit != nil {
		validMoney(ve, "tariff_per_unit", *r.TariffPerUnit)
	}
	validDate(ve, "due_date", r.DueDate)
	return ve.Err()
}

// BillUpdateRequest only touches the fields that are present. Usage and
// amount are always derived again from the result.
type BillUpdateRequest struct {
	CustomerID    *int64           `json:"customer_id"`
	Period        *string          `json:"period"`
	MeterStart    *int64           `json:"meter_start"`
	MeterEnd      *int64           `json:"meter_end"`
	TariffPerUnit *decimal.Decimal `json:"tariff_per_unit"`
	DueDate       *string          `json:"due_date"`
	Status        *BillStatus      `json:"status"`
}

func (r BillUpdateRequest) Validate() error {
	ve := NewValidationError()
	if r.CustomerID != nil && *r.CustomerID <= 0 {
		ve.Add("customer_id", "The selected customer id is invalid.")
	}
	if r.Period != nil {
		validPeriod(ve, "period", strings.TrimSpace(*r.Period))
	}
	if r.MeterStart != nil {
		nonNegativeInt(ve, "meter_start", *r.MeterStart)
	}
	if r.MeterEnd != nil {
		nonNegativeInt(ve, "meter_end", *r.MeterEnd)
	}
	if r.TariffPerUnit != nil {
		validMoney(ve, "tariff_per_unit", *r.TariffPerUnit)
	}
	if r.DueDate != nil {
		validDate(ve, "due_date", *r.DueDate)
	}
	if r.Status != nil {
		oneOf(ve, "status", *r.Status, BillUnpaid, BillPaid)
	}
	return ve.Err()
}

// Apply copies the present fields onto b and recalculates it.
func (r BillUpdateRequest) Apply(b *Bill) error {
	if r.CustomerID != nil {
		b.CustomerID = *r.CustomerID
	}
	if r.Period != nil {
		b.Period = strings.TrimSpace(*r.Period)
	}
	if r.MeterStart != nil {
		b.MeterStart = *r.MeterStart
	}
	if r.MeterEnd != nil {
		b.MeterEnd = *r.MeterEnd
	}
	if r.MeterStart != nil || r.MeterEnd != nil {
		b.AwaitingReading = false
	}
	if r.TariffPerUnit != nil {
		b.TariffPerUnit = *r.TariffPerUnit
	}
	if r.DueDate != nil {
		d, err := billing.ParseDate(*r.DueDate)
		if err != nil {
			return FieldError("due_date", "The due date is not a valid date.")
		}
		b.DueDate = d
	}
	if r.Status != nil {
		b.Status = *r.Status
	}
	if err := b.Recalculate(); err != nil {
		if errors.Is(err, billing.ErrAmountTooLarge) {
			return FieldError("meter_end", "The amount for this usage exceeds the largest billable amount.")
		}
		return FieldError("meter_end", "The meter end must be greater than or equal to meter start.")
	}
	return nil
}

type BillFilter struct {
	CustomerID *int64
	Period     string
	Status     BillStatus
	Pagination
}

type BillGenerateRequest struct {
	Period  string `json:"period"`
	DueDate string `json:"due_date"`
}

func (r BillGenerateRequest) Validate() error {
	ve := NewValidationError()
	validPeriod(ve, "period", strings.TrimSpace(r.Period))
	validDate(ve, "due_date", r.DueDate)
	return ve.Err()
}

type BillGenerateResult struct {
	Message      string `json:"message"`
	BillsCreated int    `json:"bills_created"`
	Skipped      int    `json:"skipped"`
}

type BillImportRow struct {
	SubscriberNumber string `json:"subscriber_number"`
	Period           string `json:"period"`
	MeterStart       *int64 `json:"meter_start"`
	MeterEnd         *int64 `json:"meter_end"`
	DueDate          string `json:"due_date"`
}

// Validate checks the shape of the row only, customer lookups and
// duplicate checks happen while importing.
func (r BillImportRow) Validate() error {
	ve := NewValidationError()
	requireString(ve, "subscriber_number", r.SubscriberNumber)
	validPeriod(ve, "period", strings.TrimSpace(r.Period))
	requireInt(ve, "meter_start", r.MeterStart)
	requireInt(ve, "meter_end", r.MeterEnd)
	validDate(ve, "due_date", r.DueDate)
	return ve.Err()
}

type BillImportRequest struct {
	Bills []BillImportRow `json:"bills"`
}

type ImportResult struct {
	Message       string `json:"message"`
	ImportedCount int    `json:"imported_count"`
}

// BillTemplate describes the bill import format.
type BillTemplate struct {
	Headers         []string          `json:"headers"`
	SampleData      []map[string]any  `json:"sample_data"`
	Instructions    []string          `json:"instructions"`
	ValidationRules map[string]string `json:"validation_rules"`
}

type BillExportFilter struct {
	Period string
	Status BillStatus
}
