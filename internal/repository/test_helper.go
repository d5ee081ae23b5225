package repository

import (
	"testing"

	"github.com/nimasrn/water-billing/pkg/pg"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testDB struct {
	*pg.DB
	rawDB *gorm.DB
}

// Entities lists every table entity in dependency order.
func Entities() []any {
	return []any{&UserEntity{}, &TariffEntity{}, &CustomerEntity{}, &BillEntity{}, &PaymentEntity{}}
}

// OpenTestDB opens an in-memory sqlite database with the full schema.
// A single connection keeps every statement on the same in-memory database.
func OpenTestDB(t testing.TB) *pg.DB {
	t.Helper()
	return setupTestDB(t).DB
}

func setupTestDB(t testing.TB) *testDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), pg.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(Entities()...)
	require.NoError(t, err)

	return &testDB{
		DB:    pg.New(db, db),
		rawDB: db,
	}
}
