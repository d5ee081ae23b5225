package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nimasrn/water-billing/internal/billing"
	"github.com/nimasrn/water-billing/internal/model"
)

const (
	activityPayments  = 10
	activityCustomers = 5
	activityBills     = 5
	activityLimit     = 15
)

type DashboardService struct {
	statsRepo    StatsRepository
	paymentRepo  PaymentRepository
	customerRepo CustomerRepository
	billRepo     BillRepository
	now          func() time.Time
}

func NewDashboardService(statsRepo StatsRepository, paymentRepo PaymentRepository, customerRepo CustomerRepository, billRepo BillRepository, now func() time.Time) *DashboardService {
	if now == nil {
		now = time.Now
	}
	return &DashboardService{
		statsRepo:    statsRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		billRepo:     billRepo,
		now:          now,
	}
}

func (s *DashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	return s.statsRepo.Dashboard(ctx, s.now())
}

// Activities merges the latest payments, customers and bills into one feed,
// newest first.
func (s *DashboardService) Activities(ctx context.Context) ([]model.Activity, error) {
	payments, err := s.paymentRepo.Recent(ctx, activityPayments)
	if err != nil {
		return nil, err
	}
	customers, err := s.customerRepo.Latest(ctx, activityCustomers)
	if err != nil {
		return nil, err
	}
	bills, err := s.billRepo.Latest(ctx, activityBills)
	if err != nil {
		return nil, err
	}

	out := make([]model.Activity, 0, len(payments)+len(customers)+len(bills))
	for _, p := range payments {
		a := model.Activity{
			ID:     p.ID,
			Type:   model.ActivityPayment,
			Action: "Payment received",
			Amount: ptrString(billing.FormatRupiah(p.Amount)),
			Date:   p.PaidAt,
		}
		if p.Bill != nil && p.Bill.Customer != nil {
			a.Customer = p.Bill.Customer.Name
			a.Action = fmt.Sprintf("Payment for period %s", p.Bill.Period)
		}
		out = append(out, a)
	}
	for _, c := range customers {
		out = append(out, model.Activity{
			ID:       c.ID,
			Type:     model.ActivityCustomer,
			Action:   "New customer registered",
			Customer: c.Name,
			Date:     c.CreatedAt,
		})
	}
	for _, b := range bills {
		a := model.Activity{
			ID:     b.ID,
			Type:   model.ActivityBill,
			Action: fmt.Sprintf("Bill issued for period %s", b.Period),
			Amount: ptrString(billing.FormatRupiah(b.Amount)),
			Date:   b.CreatedAt,
		}
		if b.Customer != nil {
			a.Customer = b.Customer.Name
		}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	if len(out) > activityLimit {
		out = out[:activityLimit]
	}
	return out, nil
}

func ptrString(s string) *string {
	return &s
}
