package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nimasrn/water-billing/internal/billing"
	"github.com/nimasrn/water-billing/internal/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var (
	customerColumns = []string{"subscriber_number", "name", "address"}
	billColumns     = []string{"subscriber_number", "period", "meter_start", "meter_end", "due_date"}
)

// sheet is the first worksheet of an upload, indexed by normalized header.
type sheet struct {
	columns map[string]int
	rows    [][]string
}

func readSheet(r io.Reader, required []string) (*sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, model.FieldError("file", "The file must be a valid xlsx spreadsheet.")
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, model.FieldError("file", "The file does not contain any sheet.")
	}
	rows, err := f.GetRows(names[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", names[0], err)
	}
	if len(rows) == 0 {
		return nil, model.FieldError("file", "The file is empty.")
	}

	s := &sheet{columns: make(map[string]int)}
	for i, h := range rows[0] {
		key := strings.ToLower(strings.Join(strings.Fields(h), "_"))
		if key != "" {
			s.columns[key] = i
		}
	}

	ve := model.NewValidationError()
	for _, c := range required {
		if _, ok := s.columns[c]; !ok {
			ve.Add("file", fmt.Sprintf("The file is missing the %s column.", c))
		}
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	for _, row := range rows[1:] {
		if !blank(row) {
			s.rows = append(s.rows, row)
		}
	}
	return s, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (s *sheet) cell(row []string, column string) string {
	i, ok := s.columns[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (s *sheet) optional(row []string, column string) *string {
	v := s.cell(row, column)
	if v == "" {
		return nil
	}
	return &v
}

func (s *sheet) integer(ve *model.ValidationError, key string, row []string, column string) *int64 {
	v := s.cell(row, column)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int64(f)) {
		ve.Add(key+column, fmt.Sprintf("The %s must be an integer.", strings.ReplaceAll(column, "_", " ")))
		return nil
	}
	n := int64(f)
	return &n
}

// maxDateSerial is 2173-10-14, larger numbers are not read as dates.
const maxDateSerial = 100000

// date accepts text dates and spreadsheet date serials.
func (s *sheet) date(row []string, column, layout string) string {
	v := s.cell(row, column)
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil || serial <= 0 || serial >= maxDateSerial {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	return t.Format(layout)
}

// ParseCustomers reads a customer import sheet. Cells that cannot be read
// are reported under customers.<index>.<column>.
func ParseCustomers(r io.Reader) ([]model.CustomerCreateRequest, error) {
	s, err := readSheet(r, customerColumns)
	if err != nil {
		return nil, err
	}

	ve := model.NewValidationError()
	out := make([]model.CustomerCreateRequest, 0, len(s.rows))
	for i, row := range s.rows {
		key := fmt.Sprintf("customers.%d.", i)
		c := model.CustomerCreateRequest{
			SubscriberNumber: s.cell(row, "subscriber_number"),
			Name:             s.cell(row, "name"),
			Address:          s.cell(row, "address"),
			Phone:            s.optional(row, "phone"),
			Status:           model.CustomerStatus(strings.ToLower(s.cell(row, "status"))),
			LastMeterReading: s.integer(ve, key, row, "last_meter_reading"),
		}
		if v := s.cell(row, "tariff_per_unit"); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				ve.Add(key+"tariff_per_unit", "The tariff per unit must be a number.")
			} else {
				c.TariffPerUnit = &d
			}
		}
		out = append(out, c)
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseBills reads a bill import sheet.
func ParseBills(r io.Reader) ([]model.BillImportRow, error) {
	s, err := readSheet(r, billColumns)
	if err != nil {
		return nil, err
	}

	ve := model.NewValidationError()
	out := make([]model.BillImportRow, 0, len(s.rows))
	for i, row := range s.rows {
		key := fmt.Sprintf("bills.%d.", i)
		out = append(out, model.BillImportRow{
			SubscriberNumber: s.cell(row, "subscriber_number"),
			Period:           s.date(row, "period", billing.PeriodLayout),
			MeterStart:       s.integer(ve, key, row, "meter_start"),
			MeterEnd:         s.integer(ve, key, row, "meter_end"),
			DueDate:          s.date(row, "due_date", billing.DateLayout),
		})
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
