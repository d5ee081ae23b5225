package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func fieldsOf(t *testing.T, err error) map[string][]string {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
	return ve.Fields
}

func TestErrorKinds(t *testing.T) {
	assert.ErrorIs(t, ErrCustomerNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrNoUnpaidBill, ErrNotFound)
	assert.ErrorIs(t, ErrBillAlreadyPaid, ErrConflict)
	assert.ErrorIs(t, ErrBillNotPayable, ErrUnprocessable)
	assert.ErrorIs(t, ErrInvalidCredentials, ErrUnauthenticated)
	assert.NotErrorIs(t, ErrBillAlreadyPaid, ErrNotFound)
	assert.Equal(t, "customer not found", ErrCustomerNotFound.Error())
}

func TestValidationError(t *testing.T) {
	ve := NewValidationError()
	assert.NoError(t, ve.Err())

	ve.Add("name", "required")
	row := FieldError("period", "bad")
	ve.Merge("bills.3.", row)

	assert.Equal(t, 2, ve.Count())
	assert.Equal(t, []string{"bad"}, ve.Fields["bills.3.period"])
	assert.Equal(t, "validation failed: bills.3.period: bad; name: required", ve.Error())

	var nilVE *ValidationError
	assert.NoError(t, nilVE.Err())
}

func TestImportError(t *testing.T) {
	err := &ImportError{Row: ImportRow(1), Reason: "customer PLG404 not found"}
	assert.Equal(t, "row 3: customer PLG404 not found", err.Error())
}

func TestCustomerCreateRequest_Validate(t *testing.T) {
	t.Run("valid with defaults", func(t *testing.T) {
		r := CustomerCreateRequest{SubscriberNumber: " PLG011 ", Name: "Budi", Address: "Jl. Mawar 1", Phone: ptr("  ")}
		r.Normalize()
		require.NoError(t, r.Validate())
		assert.Equal(t, "PLG011", r.SubscriberNumber)
		assert.Equal(t, CustomerActive, r.Status)
		assert.Nil(t, r.Phone)
	})

	t.Run("missing fields", func(t *testing.T) {
		r := CustomerCreateRequest{Status: "sleeping", TariffPerUnit: ptr(decimal.NewFromInt(-5))}
		fields := fieldsOf(t, r.Validate())
		assert.Contains(t, fields, "subscriber_number")
		assert.Contains(t, fields, "name")
		assert.Contains(t, fields, "address")
		assert.Contains(t, fields, "status")
		assert.Contains(t, fields, "tariff_per_unit")
	})

	t.Run("negative reading", func(t *testing.T) {
		r := CustomerCreateRequest{SubscriberNumber: "PLG1", Name: "A", Address: "B", Status: CustomerActive, LastMeterReading: ptr(int64(-1))}
		fields := fieldsOf(t, r.Validate())
		assert.Equal(t, []string{"The last meter reading must be at least 0."}, fields["last_meter_reading"])
	})
}

func TestCustomerUpdateRequest_Apply(t *testing.T) {
	c := &Customer{Name: "Old", Status: CustomerActive, Phone: ptr("0812")}
	r := CustomerUpdateRequest{Name: ptr(" New "), Status: ptr(CustomerInactive), Phone: ptr("")}
	require.NoError(t, r.Validate())
	r.Apply(c)

	assert.Equal(t, "New", c.Name)
	assert.Equal(t, CustomerInactive, c.Status)
	assert.Nil(t, c.Phone)

	bad := CustomerUpdateRequest{Name: ptr(""), Status: ptr(CustomerStatus("gone"))}
	fields := fieldsOf(t, bad.Validate())
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "status")
}

func TestBillCreateRequest_Validate(t *testing.T) {
	valid := BillCreateRequest{CustomerID: 1, Period: "2025-08", MeterStart: ptr(int64(0)), MeterEnd: ptr(int64(35)), DueDate: "2025-09-03"}
	assert.NoError(t, valid.Validate())

	t.Run("end below start", func(t *testing.T) {
		r := valid
		r.MeterEnd = ptr(int64(10))
		r.MeterStart = ptr(int64(20))
		fields := fieldsOf(t, r.Validate())
		assert.Contains(t, fields, "meter_end")
	})

	t.Run("bad period and date", func(t *testing.T) {
		r := valid
		r.Period = "08-2025"
		r.DueDate = "tomorrow"
		fields := fieldsOf(t, r.Validate())
		assert.Contains(t, fields, "period")
		assert.Contains(t, fields, "due_date")
	})

	t.Run("missing readings", func(t *testing.T) {
		r := valid
		r.MeterStart = nil
		r.MeterEnd = nil
		r.CustomerID = 0
		fields := fieldsOf(t, r.Validate())
		assert.Contains(t, fields, "meter_start")
		assert.Contains(t, fields, "meter_end")
		assert.Contains(t, fields, "customer_id")
	})
}

func TestBillUpdateRequest_Apply(t *testing.T) {
	b := &Bill{MeterStart: 0, MeterEnd: 10, TariffPerUnit: decimal.NewFromInt(5000), Status: BillUnpaid}
	require.NoError(t, b.Recalculate())
	assert.Equal(t, "50000", b.Amount.String())

	r := BillUpdateRequest{MeterEnd: ptr(int64(35)), DueDate: ptr("2025-09-03"), Status: ptr(BillPaid)}
	require.NoError(t, r.Validate())
	require.NoError(t, r.Apply(b))

	assert.Equal(t, int64(35), b.Usage)
	assert.Equal(t, "175000", b.Amount.String())
	assert.Equal(t, BillPaid, b.Status)
	assert.Equal(t, time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC), b.DueDate)

	r = BillUpdateRequest{MeterStart: ptr(int64(100))}
	err := r.Apply(b)
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "meter_end")

	r = BillUpdateRequest{MeterStart: ptr(int64(0)), MeterEnd: ptr(int64(1) << 40)}
	fields = fieldsOf(t, r.Apply(b))
	assert.Equal(t, []string{"The amount for this usage exceeds the largest billable amount."}, fields["meter_end"])
}

func TestMoneyUpperBound(t *testing.T) {
	ok := TariffRequest{Class: "Niaga", PricePerUnit: ptr(decimal.RequireFromString("9999999999.99"))}
	assert.NoError(t, ok.Validate())

	tooBig := TariffRequest{Class: "Niaga", PricePerUnit: ptr(decimal.RequireFromString("10000000000"))}
	fields := fieldsOf(t, tooBig.Validate())
	assert.Equal(t, []string{"The price per unit may not be greater than 9999999999.99."}, fields["price_per_unit"])
}

func TestBill_IsPlaceholder(t *testing.T) {
	assert.True(t, (&Bill{MeterStart: 40, MeterEnd: 40, Status: BillUnpaid, AwaitingReading: true}).IsPlaceholder())
	assert.False(t, (&Bill{MeterStart: 40, MeterEnd: 40, Status: BillPaid, AwaitingReading: true}).IsPlaceholder())
	assert.False(t, (&Bill{MeterStart: 40, MeterEnd: 45, Usage: 5, Status: BillUnpaid}).IsPlaceholder())

	// a recorded reading equal to the previous one is still a real bill
	assert.False(t, (&Bill{MeterStart: 40, MeterEnd: 40, Status: BillUnpaid}).IsPlaceholder())

	b := &Bill{MeterStart: 40, MeterEnd: 40, TariffPerUnit: decimal.NewFromInt(5000), Status: BillUnpaid, AwaitingReading: true}
	require.NoError(t, BillUpdateRequest{MeterEnd: ptr(int64(40))}.Apply(b))
	assert.False(t, b.IsPlaceholder())
}

func TestBillImportRow_Validate(t *testing.T) {
	ok := BillImportRow{SubscriberNumber: "PLG001", Period: "2025-08", MeterStart: ptr(int64(0)), MeterEnd: ptr(int64(5)), DueDate: "2025-09-03"}
	assert.NoError(t, ok.Validate())

	// business rules are not checked here
	reversed := ok
	reversed.MeterStart = ptr(int64(9))
	assert.NoError(t, reversed.Validate())

	bad := BillImportRow{Period: "2025-8"}
	fields := fieldsOf(t, bad.Validate())
	assert.Len(t, fields, 5)
}

func TestPaymentRequests(t *testing.T) {
	r := PaymentCreateRequest{BillID: 4, Note: ptr("  ")}
	r.Normalize()
	require.NoError(t, r.Validate())
	assert.Equal(t, PaymentCash, r.Method)
	assert.Nil(t, r.Note)

	bad := PaymentCreateRequest{Method: "cheque", Amount: ptr(decimal.NewFromInt(-1))}
	fields := fieldsOf(t, bad.Validate())
	assert.Contains(t, fields, "bill_id")
	assert.Contains(t, fields, "method")
	assert.Contains(t, fields, "amount")

	c := CashierPaymentRequest{SubscriberNumber: " PLG001 "}
	c.Normalize()
	require.NoError(t, c.Validate())
	assert.Equal(t, "PLG001", c.SubscriberNumber)
	assert.Equal(t, PaymentCash, c.Method)

	p := &Payment{Amount: decimal.NewFromInt(1), Method: PaymentCash}
	PaymentUpdateRequest{Method: ptr(PaymentCard), Note: ptr("receipt #9")}.Apply(p)
	assert.Equal(t, PaymentCard, p.Method)
	assert.Equal(t, "receipt #9", *p.Note)
}

func TestTariffRequest_Validate(t *testing.T) {
	r := TariffRequest{Class: " Rumah Tangga A1 ", PricePerUnit: ptr(decimal.NewFromInt(2500))}
	r.Normalize()
	require.NoError(t, r.Validate())
	assert.Equal(t, "Rumah Tangga A1", r.Class)

	fields := fieldsOf(t, TariffRequest{}.Validate())
	assert.Contains(t, fields, "class")
	assert.Contains(t, fields, "price_per_unit")
}

func TestLoginRequest_Validate(t *testing.T) {
	r := LoginRequest{Email: " Admin@Water.com ", Password: "password"}
	r.Normalize()
	require.NoError(t, r.Validate())
	assert.Equal(t, "admin@water.com", r.Email)

	fields := fieldsOf(t, LoginRequest{Email: "not-an-email"}.Validate())
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestMeterReadingRequest_Validate(t *testing.T) {
	r := MeterReadingRequest{SubscriberNumber: "PLG001", MeterReading: ptr(int64(35))}
	assert.NoError(t, r.Validate())

	fields := fieldsOf(t, MeterReadingRequest{MeterReading: ptr(int64(-3)), Period: "2025-99"}.Validate())
	assert.Contains(t, fields, "subscriber_number")
	assert.Contains(t, fields, "meter_reading")
	assert.Contains(t, fields, "period")
}

func TestPagination(t *testing.T) {
	p := Pagination{}.Normalize(10)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.PerPage)
	assert.Equal(t, 0, p.Offset())

	p = Pagination{Page: 3, PerPage: 500}.Normalize(10)
	assert.Equal(t, MaxPerPage, p.PerPage)
	assert.Equal(t, 200, p.Offset())

	page := NewPage([]int{1, 2}, 31, Pagination{Page: 1, PerPage: 15})
	assert.Equal(t, 3, page.LastPage)

	empty := NewPage[int](nil, 0, Pagination{Page: 1, PerPage: 15})
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 1, empty.LastPage)
}
