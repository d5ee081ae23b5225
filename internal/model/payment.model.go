package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCard     PaymentMethod = "card"
)

type Payment struct {
	ID        int64           `json:"id"`
	BillID    int64           `json:"bill_id"`
	Bill      *Bill           `json:"bill,omitempty"`
	UserID    int64           `json:"user_id"`
	User      *User           `json:"user,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Note      *string         `json:"note"`
	PaidAt    time.Time       `json:"paid_at"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type PaymentCreateRequest struct {
	BillID int64            `json:"bill_id"`
	Amount *decimal.Decimal `json:"amount"` // defaults to the bill amount
	Method PaymentMethod    `json:"method"`
	Note   *string          `json:"note"`
}

func (r *PaymentCreateRequest) Normalize() {
	if r.Method == "" {
		r.Method = PaymentCash
	}
	r.Note = trimOptional(r.Note)
}

func (r PaymentCreateRequest) Validate() error {
	ve := NewValidationError()
	if r.BillID <= 0 {
		ve.Add("bill_id", "The bill id field is required.")
	}
	if r.Amount != nil {
		validMoney(ve, "amount", *r.Amount)
	}
	oneOf(ve, "method", r.Method, PaymentCash, PaymentTransfer, PaymentCard)
	if r.Note != nil {
		maxLength(ve, "note", *r.Note, maxStringLen)
	}
	return ve.Err()
}

type PaymentUpdateRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Method *PaymentMethod   `json:"method"`
	Note   *string          `json:"note"`
}

func (r PaymentUpdateRequest) Validate() error {
	ve := NewValidationError()
	if r.Amount != nil {
		validMoney(ve, "amount", *r.Amount)
	}
	if r.Method != nil {
		oneOf(ve, "method", *r.Method, PaymentCash, PaymentTransfer, PaymentCard)
	}
	if r.Note != nil {
		maxLength(ve, "note", *r.Note, maxStringLen)
	}
	return ve.Err()
}

func (r PaymentUpdateRequest) Apply(p *Payment) {
	if r.Amount != nil {
		p.Amount = *r.Amount
	}
	if r.Method != nil {
		p.Method = *r.Method
	}
	if r.Note != nil {
		p.Note = trimOptional(r.Note)
	}
}

type PaymentFilter struct {
	BillID *int64
	Method PaymentMethod
	From   *time.Time
	To     *time.Time
	Pagination
}

type PaymentStats struct {
	TotalPayments   int64           `json:"total_payments"`
	TodayPayments   int64           `json:"today_payments"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TodayAmount     decimal.Decimal `json:"today_amount"`
	ThisMonthAmount decimal.Decimal `json:"this_month_amount"`
}

// BillLookupRequest is the cashier's "check bill" input.
type BillLookupRequest struct {
	SubscriberNumber string `json:"subscriber_number"`
}

func (r BillLookupRequest) Validate() error {
	ve := NewValidationError()
	requireString(ve, "subscriber_number", r.SubscriberNumber)
	return ve.Err()
}

type BillLookup struct {
	Name             string          `json:"name"`
	SubscriberNumber string          `json:"subscriber_number"`
	BillID           int64           `json:"bill_id"`
	Period           string          `json:"period"`
	Usage            int64           `json:"usage"`
	Amount           decimal.Decimal `json:"amount"`
	DueDate          time.Time       `json:"due_date"`
}

type CashierPaymentRequest struct {
	SubscriberNumber string        `json:"subscriber_number"`
	Method           PaymentMethod `json:"method"`
	// IdempotencyKey comes from the Idempotency-Key header.
	IdempotencyKey string `json:"-"`
}

func (r *CashierPaymentRequest) Normalize() {
	r.SubscriberNumber = strings.TrimSpace(r.SubscriberNumber)
	if r.Method == "" {
		r.Method = PaymentCash
	}
}

func (r CashierPaymentRequest) Validate() error {
	ve := NewValidationError()
	requireString(ve, "subscriber_number", r.SubscriberNumber)
	oneOf(ve, "method", r.Method, PaymentCash, PaymentTransfer, PaymentCard)
	return ve.Err()
}

type PaymentReceipt struct {
	Message   string          `json:"message"`
	PaymentID int64           `json:"payment_id"`
	BillID    int64           `json:"bill_id"`
	Period    string          `json:"period"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	PaidAt    time.Time       `json:"paid_at"`
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
