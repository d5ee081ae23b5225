// Package seed loads the default users, tariffs and customers of a fresh
// installation. Running it twice leaves existing rows alone.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nimasrn/water-billing/internal/auth"
	"github.com/nimasrn/water-billing/internal/billing"
	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/internal/repository"
	"github.com/nimasrn/water-billing/pkg/logger"
	"github.com/nimasrn/water-billing/pkg/pg"
	"github.com/shopspring/decimal"
)

const DefaultPassword = "password"

type user struct {
	name  string
	email string
	role  model.Role
}

var users = []user{
	{"Admin User", "admin@water.com", model.RoleAdmin},
	{"Operator User", "operator@water.com", model.RoleOperator},
	{"Kasir User", "kasir@water.com", model.RoleCashier},
}

type tariff struct {
	class    string
	category string
	price    int64
}

var tariffs = []tariff{
	{"Sosial Umum", "450 VA", 1500},
	{"Rumah Tangga A1", "450 VA", 2500},
	{"Rumah Tangga A2", "900 VA", 3500},
	{"Niaga Kecil", "900 VA", 5000},
}

var customers = []struct {
	name    string
	address string
}{
	{"Budi Santoso", "Jl. Merdeka No. 10, Jakarta"},
	{"Siti Aminah", "Jl. Pahlawan No. 25, Surabaya"},
	{"Ahmad Dahlan", "Jl. Gajah Mada No. 5, Bandung"},
	{"Dewi Lestari", "Jl. Sudirman No. 12, Medan"},
	{"Eko Prasetyo", "Jl. Diponegoro No. 88, Semarang"},
	{"Fitriani", "Jl. Kartini No. 21, Yogyakarta"},
	{"Gunawan", "Jl. Imam Bonjol No. 45, Makassar"},
	{"Herlina", "Jl. Teuku Umar No. 3, Denpasar"},
	{"Irfan Hakim", "Jl. Patimura No. 7, Palembang"},
	{"Joko Susilo", "Jl. Gatot Subroto No. 1, Bekasi"},
}

// Result counts the rows created by one run.
type Result struct {
	Users     int
	Tariffs   int
	Customers int
	Bills     int
}

type Seeder struct {
	db        *pg.DB
	users     *repository.UserRepository
	tariffs   *repository.TariffRepository
	customers *repository.CustomerRepository
	bills     *repository.BillRepository
	dueDays   int
}

func New(db *pg.DB, dueDays int) *Seeder {
	return &Seeder{
		db:        db,
		users:     repository.NewUserRepository(db),
		tariffs:   repository.NewTariffRepository(db),
		customers: repository.NewCustomerRepository(db),
		bills:     repository.NewBillRepository(db),
		dueDays:   dueDays,
	}
}

// Run seeds everything in one transaction. Every customer gets an unpaid
// bill for the month before now.
func (s *Seeder) Run(ctx context.Context, now time.Time) (Result, error) {
	var res Result
	err := s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if res.Users, err = s.seedUsers(ctx); err != nil {
			return err
		}
		prices, n, err := s.seedTariffs(ctx)
		if err != nil {
			return err
		}
		res.Tariffs = n
		res.Customers, res.Bills, err = s.seedCustomers(ctx, prices, now)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	logger.Info("[seed] done", "users", res.Users, "tariffs", res.Tariffs, "customers", res.Customers, "bills", res.Bills)
	return res, nil
}

func (s *Seeder) seedUsers(ctx context.Context) (int, error) {
	created := 0
	for _, u := range users {
		_, err := s.users.GetByEmail(ctx, u.email)
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrUserNotFound) {
			return created, err
		}
		hash, err := auth.HashPassword(DefaultPassword)
		if err != nil {
			return created, err
		}
		if _, err := s.users.Create(ctx, &model.User{Name: u.name, Email: u.email, Role: u.role, PasswordHash: hash}); err != nil {
			return created, fmt.Errorf("create user %s: %w", u.email, err)
		}
		created++
	}
	return created, nil
}

// seedTariffs returns the price of every default class, existing or new.
func (s *Seeder) seedTariffs(ctx context.Context) ([]decimal.Decimal, int, error) {
	existing, _, err := s.tariffs.List(ctx, model.Pagination{Page: 1, PerPage: model.MaxPerPage})
	if err != nil {
		return nil, 0, err
	}
	byClass := make(map[string]decimal.Decimal, len(existing))
	for _, t := range existing {
		byClass[t.Class] = t.PricePerUnit
	}

	created := 0
	prices := make([]decimal.Decimal, 0, len(tariffs))
	for _, t := range tariffs {
		if price, ok := byClass[t.class]; ok {
			prices = append(prices, price)
			continue
		}
		category := t.category
		row, err := s.tariffs.Create(ctx, &model.Tariff{Class: t.class, Category: &category, PricePerUnit: decimal.NewFromInt(t.price)})
		if err != nil {
			return nil, created, fmt.Errorf("create tariff %s: %w", t.class, err)
		}
		prices = append(prices, row.PricePerUnit)
		created++
	}
	return prices, created, nil
}

func (s *Seeder) seedCustomers(ctx context.Context, prices []decimal.Decimal, now time.Time) (int, int, error) {
	period := billing.CurrentPeriod(time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location()))
	customersCreated, billsCreated := 0, 0

	for i, c := range customers {
		number := fmt.Sprintf("PLG%03d", i+1)
		exists, err := s.customers.ExistsBySubscriberNumber(ctx, number)
		if err != nil {
			return customersCreated, billsCreated, err
		}
		if exists {
			continue
		}

		start := int64(100 + 35*i)
		end := start + int64(20+7*i)
		customer, err := s.customers.Create(ctx, &model.Customer{
			SubscriberNumber: number,
			Name:             c.name,
			Address:          c.address,
			Status:           model.CustomerActive,
			TariffPerUnit:    prices[i%len(prices)],
			LastMeterReading: end,
		})
		if err != nil {
			return customersCreated, billsCreated, fmt.Errorf("create customer %s: %w", number, err)
		}
		customersCreated++

		bill := &model.Bill{
			CustomerID:    customer.ID,
			Period:        period,
			MeterStart:    start,
			MeterEnd:      end,
			TariffPerUnit: customer.TariffPerUnit,
			DueDate:       billing.DueDate(now, s.dueDays),
			Status:        model.BillUnpaid,
		}
		if err := bill.Recalculate(); err != nil {
			return customersCreated, billsCreated, err
		}
		if _, err := s.bills.Create(ctx, bill); err != nil {
			return customersCreated, billsCreated, fmt.Errorf("create bill for %s: %w", number, err)
		}
		billsCreated++
	}
	return customersCreated, billsCreated, nil
}
