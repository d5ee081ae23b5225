package model

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/nimasrn/water-billing/internal/billing"
	"github.com/shopspring/decimal"
)

const maxStringLen = 255

func requireString(ve *ValidationError, field, value string) bool {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, fmt.Sprintf("The %s field is required.", label(field)))
		return false
	}
	return true
}

func maxLength(ve *ValidationError, field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		ve.Add(field, fmt.Sprintf("The %s may not be greater than %d characters.", label(field), max))
	}
}

func requireInt(ve *ValidationError, field string, value *int64) bool {
	if value == nil {
		ve.Add(field, fmt.Sprintf("The %s field is required.", label(field)))
		return false
	}
	return nonNegativeInt(ve, field, *value)
}

func nonNegativeInt(ve *ValidationError, field string, value int64) bool {
	if value < 0 {
		ve.Add(field, fmt.Sprintf("The %s must be at least 0.", label(field)))
		return false
	}
	return true
}

func validMoney(ve *ValidationError, field string, value decimal.Decimal) bool {
	if value.IsNegative() {
		ve.Add(field, fmt.Sprintf("The %s must be at least 0.", label(field)))
		return false
	}
	if value.GreaterThan(billing.MaxMoney) {
		ve.Add(field, fmt.Sprintf("The %s may not be greater than %s.", label(field), billing.MaxMoney.StringFixed(billing.MoneyScale)))
		return false
	}
	return true
}

func validPeriod(ve *ValidationError, field, value string) bool {
	if !requireString(ve, field, value) {
		return false
	}
	if err := billing.ValidatePeriod(value); err != nil {
		ve.Add(field, fmt.Sprintf("The %s format is invalid, expected YYYY-MM.", label(field)))
		return false
	}
	return true
}

func validDate(ve *ValidationError, field, value string) bool {
	if !requireString(ve, field, value) {
		return false
	}
	if _, err := billing.ParseDate(value); err != nil {
		ve.Add(field, fmt.Sprintf("The %s is not a valid date.", label(field)))
		return false
	}
	return true
}

func validEmail(ve *ValidationError, field, value string) bool {
	if !requireString(ve, field, value) {
		return false
	}
	if _, err := mail.ParseAddress(value); err != nil {
		ve.Add(field, fmt.Sprintf("The %s must be a valid email address.", label(field)))
		return false
	}
	return true
}

func oneOf[T ~string](ve *ValidationError, field string, value T, allowed ...T) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	ve.Add(field, fmt.Sprintf("The selected %s is invalid.", label(field)))
	return false
}

func label(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
