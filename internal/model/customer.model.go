package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "active"
	CustomerInactive CustomerStatus = "inactive"
)

type Customer struct {
	ID               int64           `json:"id"`
	SubscriberNumber string          `json:"subscriber_number"`
	Name             string          `json:"name"`
	Address          string          `json:"address"`
	Phone            *string         `json:"phone"`
	Status           CustomerStatus  `json:"status"`
	TariffPerUnit    decimal.Decimal `json:"tariff_per_unit"`
	LastMeterReading int64           `json:"last_meter_reading"`
	LastReadingDate  *time.Time      `json:"last_reading_date"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (c *Customer) IsActive() bool {
	return c.Status == CustomerActive
}

// CustomerCreateRequest is also the row shape of a customer import.
type CustomerCreateRequest struct {
	SubscriberNumber string           `json:"subscriber_number"`
	Name             string           `json:"name"`
	Address          string           `json:"address"`
	Phone            *string          `json:"phone"`
	Status           CustomerStatus   `json:"status"`
	TariffID         *int64           `json:"tariff_id"`
	TariffPerUnit    *decimal.Decimal `json:"tariff_per_unit"`
	LastMeterReading *int64           `json:"last_meter_reading"`
}

func (r *CustomerCreateRequest) Normalize() {
	r.SubscriberNumber = strings.TrimSpace(r.SubscriberNumber)
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	if r.Phone != nil {
		p := strings.TrimSpace(*r.Phone)
		if p == "" {
			r.Phone = nil
		} else {
			r.Phone = &p
		}
	}
	if r.Status == "" {
		r.Status = CustomerActive
	}
}

func (r CustomerCreateRequest) Validate() error {
	ve := NewValidationError()
	if requireString(ve, "subscriber_number", r.SubscriberNumber) {
		maxLength(ve, "subscriber_number", r.SubscriberNumber, 50)
	}
	if requireString(ve, "name", r.Name) {
		maxLength(ve, "name", r.Name, maxStringLen)
	}
	requireString(ve, "address", r.Address)
	if r.Phone != nil {
		maxLength(ve, "phone", *r.Phone, 20)
	}
	oneOf(ve, "status", r.Status, CustomerActive, CustomerInactive)
	if r.TariffPerUnit != nil {
		validMoney(ve, "tariff_per_unit", *r.TariffPerUnit)
	}
	if r.LastMeterReading != nil {
		nonNegativeInt(ve, "last_meter_reading", *r.LastMeterReading)
	}
	return ve.Err()
}

// CustomerUpdateRequest only touches the fields that are present.
type CustomerUpdateRequest struct {
	SubscriberNumber *string          `json:"subscriber_number"`
	Name             *string          `json:"name"`
	Address          *string          `json:"address"`
	Phone            *string          `json:"phone"`
	Status           *CustomerStatus  `json:"status"`
	TariffID         *int64           `json:"tariff_id"`
	TariffPerUnit    *decimal.Decimal `json:"tariff_per_unit"`
	LastMeterReading *int64           `json:"last_meter_reading"`
}

func (r CustomerUpdateRequest) Validate() error {
	ve := NewValidationError()
	if r.SubscriberNumber != nil && requireString(ve, "subscriber_number", *r.SubscriberNumber) {
		maxLength(ve, "subscriber_number", *r.SubscriberNumber, 50)
	}
	if r.Name != nil && requireString(ve, "name", *r.Name) {
		maxLength(ve, "name", *r.Name, maxStringLen)
	}
	if r.Address != nil {
		requireString(ve, "address", *r.Address)
	}
	if r.Phone != nil {
		maxLength(ve, "phone", *r.Phone, 20)
	}
	if r.Status != nil {
		oneOf(ve, "status", *r.Status, CustomerActive, CustomerInactive)
	}
	if r.TariffPerUnit != nil {
		validMoney(ve, "tariff_per_unit", *r.TariffPerUnit)
	}
	if r.LastMeterReading != nil {
		nonNegativeInt(ve, "last_meter_reading", *r.LastMeterReading)
	}
	return ve.Err()
}

// Apply copies the present fields onto c.
func (r CustomerUpdateRequest) Apply(c *Customer) {
	if r.SubscriberNumber != nil {
		c.SubscriberNumber = strings.TrimSpace(*r.SubscriberNumber)
	}
	if r.Name != nil {
		c.Name = strings.TrimSpace(*r.Name)
	}
	if r.Address != nil {
		c.Address = strings.TrimSpace(*r.Address)
	}
	if r.Phone != nil {
		p := strings.TrimSpace(*r.Phone)
		if p == "" {
			c.Phone = nil
		} else {
			c.Phone = &p
		}
	}
	if r.Status != nil {
		c.Status = *r.Status
	}
	if r.TariffPerUnit != nil {
		c.TariffPerUnit = *r.TariffPerUnit
	}
	if r.LastMeterReading != nil {
		c.LastMeterReading = *r.LastMeterReading
	}
}

type CustomerFilter struct {
	Search string // matches subscriber number, name or address
	Status CustomerStatus
	Pagination
}

type CustomerImportRequest struct {
	Customers []CustomerCreateRequest `json:"customers"`
}

// CustomerInfo is the operator view of a customer before a reading.
type CustomerInfo struct {
	Customer   *Customer `json:"customer"`
	LatestBill *Bill     `json:"latest_bill"`
}
