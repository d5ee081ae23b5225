package repository

import (
	"context"
	"time"

	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/pkg/pg"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatsRepository runs the aggregate queries behind the dashboard and the
// payment statistics.
type StatsRepository struct {
	*pg.DB
}

func NewStatsRepository(db *pg.DB) *StatsRepository {
	return &StatsRepository{
		db,
	}
}

type sumRow struct {
	Total decimal.Decimal
}

func dayBounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

func monthBounds(now time.Time) (time.Time, time.Time) {
	y, m, _ := now.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}

func (r *StatsRepository) count(q *gorm.DB, out *int64) error {
	return q.Count(out).Error
}

func (r *StatsRepository) sumPayments(q *gorm.DB) (decimal.Decimal, error) {
	var row sumRow
	if err := q.Model(&PaymentEntity{}).Select("COALESCE(SUM(amount), 0) AS total").Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

func (r *StatsRepository) Dashboard(ctx context.Context, now time.Time) (*model.DashboardStats, error) {
	db := r.Read(ctx).WithContext(ctx)
	dayStart, dayEnd := dayBounds(now)
	monthStart, monthEnd := monthBounds(now)

	var s model.DashboardStats
	counts := []struct {
		q   *gorm.DB
		out *int64
	}{
		{db.Model(&CustomerEntity{}), &s.TotalCustomers},
		{db.Model(&CustomerEntity{}).Where("status = ?", string(model.CustomerActive)), &s.ActiveCustomers},
		{db.Model(&BillEntity{}), &s.TotalBills},
		{db.Model(&BillEntity{}).Where("created_at >= ? AND created_at < ?", monthStart, monthEnd), &s.MonthlyBills},
		{db.Model(&PaymentEntity{}), &s.TotalPayments},
		{db.Model(&BillEntity{}).Where("status = ?", string(model.BillUnpaid)), &s.UnpaidBills},
		{db.Model(&PaymentEntity{}).Where("paid_at >= ? AND paid_at < ?", dayStart, dayEnd), &s.TodayPayments},
	}
	for _, c := range counts {
		if err := r.count(c.q, c.out); err != nil {
			return nil, err
		}
	}

	var err error
	if s.TodayPaymentsAmount, err = r.sumPayments(db.Where("paid_at >= ? AND paid_at < ?", dayStart, dayEnd)); err != nil {
		return nil, err
	}
	if s.MonthlyPaymentsAmount, err = r.sumPayments(db.Where("paid_at >= ? AND paid_at < ?", monthStart, monthEnd)); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StatsRepository) Payments(ctx context.Context, now time.Time) (*model.PaymentStats, error) {
	db := r.Read(ctx).WithContext(ctx)
	dayStart, dayEnd := dayBounds(now)
	monthStart, monthEnd := monthBounds(now)

	var s model.PaymentStats
	if err := r.count(db.Model(&PaymentEntity{}), &s.TotalPayments); err != nil {
		return nil, err
	}
	if err := r.count(db.Model(&PaymentEntity{}).Where("paid_at >= ? AND paid_at < ?", dayStart, dayEnd), &s.TodayPayments); err != nil {
		return nil, err
	}

	var err error
	if s.TotalAmount, err = r.sumPayments(db); err != nil {
		return nil, err
	}
	if s.TodayAmount, err = r.sumPayments(db.Where("paid_at >= ? AND paid_at < ?", dayStart, dayEnd)); err != nil {
		return nil, err
	}
	if s.ThisMonthAmount, err = r.sumPayments(db.Where("paid_at >= ? AND paid_at < ?", monthStart, monthEnd)); err != nil {
		return nil, err
	}
	return &s, nil
}
