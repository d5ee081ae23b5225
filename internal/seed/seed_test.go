package seed

import (
	"context"
	"testing"
	"time"

	"github.com/nimasrn/water-billing/internal/auth"
	"github.com/nimasrn/water-billing/internal/billing"
	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	db := repository.OpenTestDB(t)
	now := time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC)
	s := New(db, 30)

	res, err := s.Run(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 3, Tariffs: 4, Customers: 10, Bills: 10}, res)

	kasir, err := repository.NewUserRepository(db).GetByEmail(ctx, "kasir@water.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCashier, kasir.Role)
	assert.True(t, auth.VerifyPassword(DefaultPassword, kasir.PasswordHash))

	customers := repository.NewCustomerRepository(db)
	first, err := customers.GetBySubscriberNumber(ctx, "PLG001")
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", first.Name)
	assert.Equal(t, "1500", first.TariffPerUnit.String())
	assert.Equal(t, int64(120), first.LastMeterReading)

	bills, total, err := repository.NewBillRepository(db).List(ctx, model.BillFilter{
		Period:     "2025-02",
		Pagination: model.Pagination{Page: 1, PerPage: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
	for _, b := range bills {
		assert.Equal(t, model.BillUnpaid, b.Status)
		assert.True(t, b.Amount.Equal(billing.Amount(b.Usage, b.TariffPerUnit)))
	}

	t.Run("second run creates nothing", func(t *testing.T) {
		again, err := s.Run(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, Result{}, again)
	})
}
