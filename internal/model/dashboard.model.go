package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	TotalCustomers        int64           `json:"total_customers"`
	ActiveCustomers       int64           `json:"active_customers"`
	TotalBills            int64           `json:"total_bills"`
	MonthlyBills          int64           `json:"monthly_bills"`
	TotalPayments         int64           `json:"total_payments"`
	UnpaidBills           int64           `json:"unpaid_bills"`
	TodayPayments         int64           `json:"today_payments"`
	TodayPaymentsAmount   decimal.Decimal `json:"today_payments_amount"`
	MonthlyPaymentsAmount decimal.Decimal `json:"monthly_payments_amount"`
}

type ActivityType string

const (
	ActivityPayment  ActivityType = "payment"
	ActivityCustomer ActivityType = "customer"
	ActivityBill     ActivityType = "bill"
)

type Activity struct {
	ID       int64        `json:"id"`
	Type     ActivityType `json:"type"`
	Action   string       `json:"action"`
	Customer string       `json:"customer"`
	Amount   *string      `json:"amount"`
	Date     time.Time    `json:"date"`
}
