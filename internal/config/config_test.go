package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("POSTGRES_WRITE_HOST", "db")
		require.NoError(t, Load(""))

		c := Get()
		assert.Equal(t, "dev", c.AppEnv)
		assert.Equal(t, ":8080", c.HttpListenAddr)
		assert.Equal(t, 24*time.Hour, c.SessionTTL)
		assert.Equal(t, 30, c.BillDueDays)
		assert.Equal(t, 30*time.Second, c.PaymentLockTTL)
		assert.True(t, decimal.NewFromInt(5000).Equal(c.TariffDefault()))
		assert.Equal(t, "db", c.WriteDB().Host)
		assert.Equal(t, "5432", c.ReadDB().Port)
	})

	t.Run("from dotenv file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ".env")
		content := "BILL_DUE_DAYS=14\nSESSION_TTL=2h\nDEFAULT_TARIFF_PER_UNIT=2500.50\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		t.Cleanup(func() {
			os.Unsetenv("BILL_DUE_DAYS")
			os.Unsetenv("SESSION_TTL")
			os.Unsetenv("DEFAULT_TARIFF_PER_UNIT")
		})

		require.NoError(t, Load(path))
		c := Get()
		assert.Equal(t, 14, c.BillDueDays)
		assert.Equal(t, 2*time.Hour, c.SessionTTL)
		assert.Equal(t, "2500.5", c.TariffDefault().String())
	})

	t.Run("missing file", func(t *testing.T) {
		err := Load(filepath.Join(t.TempDir(), "nope.env"))
		assert.Error(t, err)
	})

	t.Run("invalid tariff", func(t *testing.T) {
		t.Setenv("DEFAULT_TARIFF_PER_UNIT", "five thousand")
		err := Load("")
		assert.ErrorContains(t, err, "DEFAULT_TARIFF_PER_UNIT")
	})
}
