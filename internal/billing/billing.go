// Package billing holds the arithmetic shared by every path that creates or
// changes a bill: usage from two meter readings, amount from usage and a
// per unit tariff, billing periods and due dates.
package billing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PeriodLayout = "2006-01"
	DateLayout   = "2006-01-02"

	// MoneyScale is the number of decimal places stored for money columns.
	MoneyScale = 2
)

// MaxMoney is the largest value a NUMERIC(12,2) money column holds.
var MaxMoney = decimal.RequireFromString("9999999999.99")

var (
	ErrNegativeReading = errors.New("meter readings must not be negative")
	ErrMeterDecreased  = errors.New("meter end must be greater than or equal to meter start")
	ErrNegativeTariff  = errors.New("tariff must not be negative")
	ErrAmountTooLarge  = errors.New("amount exceeds the largest billable amount")
	ErrInvalidPeriod   = errors.New("period must use the YYYY-MM format")
	ErrInvalidDate     = errors.New("date must use the YYYY-MM-DD format")
)

// Calculate returns usage = meterEnd - meterStart and amount = usage * tariff
// rounded to MoneyScale places.
func Calculate(meterStart, meterEnd int64, tariff decimal.Decimal) (int64, decimal.Decimal, error) {
	if meterStart < 0 || meterEnd < 0 {
		return 0, decimal.Zero, ErrNegativeReading
	}
	if meterEnd < meterStart {
		return 0, decimal.Zero, ErrMeterDecreased
	}
	if tariff.IsNegative() {
		return 0, decimal.Zero, ErrNegativeTariff
	}
	usage := meterEnd - meterStart
	amount := Amount(usage, tariff)
	if amount.GreaterThan(MaxMoney) {
		return 0, decimal.Zero, ErrAmountTooLarge
	}
	return usage, amount, nil
}

// Amount multiplies usage by tariff.
func Amount(usage int64, tariff decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(usage).Mul(tariff).Round(MoneyScale)
}

// ValidatePeriod accepts YYYY-MM with a real month.
func ValidatePeriod(period string) error {
	if len(period) != len(PeriodLayout) {
		return ErrInvalidPeriod
	}
	if _, err := time.Parse(PeriodLayout, period); err != nil {
		return ErrInvalidPeriod
	}
	return nil
}

// CurrentPeriod formats t as a billing period.
func CurrentPeriod(t time.Time) string {
	return t.Format(PeriodLayout)
}

// PeriodBounds returns the first instant of the period and of the next one.
func PeriodBounds(period string, loc *time.Location) (time.Time, time.Time, error) {
	if err := ValidatePeriod(period); err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, _ := time.ParseInLocation(PeriodLayout, period, loc)
	return start, start.AddDate(0, 1, 0), nil
}

// ParseDate reads a YYYY-MM-DD date, RFC3339 timestamps are truncated to their day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Day(t), nil
	}
	return time.Time{}, ErrInvalidDate
}

// Day truncates t to midnight UTC of the same calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DueDate is days after from, at day precision.
func DueDate(from time.Time, days int) time.Time {
	return Day(from).AddDate(0, 0, days)
}

// FormatRupiah renders an amount as "Rp 175.000", fractions are rounded away.
func FormatRupiah(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	digits := amount.Abs().Round(0).StringFixed(0)

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return fmt.Sprintf("-Rp %s", b.String())
	}
	return "Rp " + b.String()
}
