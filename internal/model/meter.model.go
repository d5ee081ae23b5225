package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

type MeterReadingRequest struct {
	SubscriberNumber string `json:"subscriber_number"`
	MeterReading     *int64 `json:"meter_reading"`
	// Period defaults to the current month.
	Period string `json:"period"`
}

func (r *MeterReadingRequest) Normalize() {
	r.SubscriberNumber = strings.TrimSpace(r.SubscriberNumber)
	r.Period = strings.TrimSpace(r.Period)
}

func (r MeterReadingRequest) Validate() error {
	ve := NewValidationError()
	requireString(ve, "subscriber_number", r.SubscriberNumber)
	requireInt(ve, "meter_reading", r.MeterReading)
	if r.Period != "" {
		validPeriod(ve, "period", r.Period)
	}
	return ve.Err()
}

type MeterReadingResult struct {
	Message       string          `json:"message"`
	Customer      *Customer       `json:"customer"`
	Bill          *Bill           `json:"bill"`
	PreviousMeter int64           `json:"previous_meter"`
	CurrentMeter  int64           `json:"current_meter"`
	Usage         int64           `json:"usage"`
	Amount        decimal.Decimal `json:"amount"`
}

type CustomerInfoRequest struct {
	SubscriberNumber string `json:"subscriber_number"`
}

func (r CustomerInfoRequest) Validate() error {
	ve := NewValidationError()
	requireString(ve, "subscriber_number", r.SubscriberNumber)
	return ve.Err()
}
