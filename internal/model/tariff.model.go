package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Tariff is a price list entry. Customers and bills copy the price, so
// changing a tariff never touches existing bills.
type Tariff struct {
	ID           int64           `json:"id"`
	Class        string          `json:"class"`
	Category     *string         `json:"category"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type TariffRequest struct {
	Class        string           `json:"class"`
	Category     *string          `json:"category"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit"`
}

func (r *TariffRequest) Normalize() {
	r.Class = strings.TrimSpace(r.Class)
	r.Category = trimOptional(r.Category)
}

func (r TariffRequest) Validate() error {
	ve := NewValidationError()
	if requireString(ve, "class", r.Class) {
		maxLength(ve, "class", r.Class, maxStringLen)
	}
	if r.Category != nil {
		maxLength(ve, "category", *r.Category, maxStringLen)
	}
	if r.PricePerUnit == nil {
		ve.Add("price_per_unit", "The price per unit field is required.")
	} else {
		validMoney(ve, "price_per_unit", *r.PricePerUnit)
	}
	return ve.Err()
}
