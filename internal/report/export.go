// Package report reads and writes the spreadsheets exchanged with the
// billing office: bill exports, the bill import template and the customer
// and bill import files.
package report

import (
	"bytes"
	"fmt"

	"github.com/nimasrn/water-billing/internal/billing"
	"github.com/nimasrn/water-billing/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	billSheet = "Bills"
)

var billExportHeaders = []string{
	"Subscriber Number", "Customer Name", "Period", "Meter Start", "Meter End",
	"Usage", "Tariff Per Unit", "Amount", "Status", "Due Date",
}

type generator struct {
	file *excelize.File
}

func newGenerator() *generator {
	return &generator{file: excelize.NewFile()}
}

// ExportBills writes one row per bill. An empty list still produces the header.
func ExportBills(bills []*model.Bill) (*bytes.Buffer, error) {
	g := newGenerator()
	defer g.file.Close()

	if err := g.file.SetSheetName("Sheet1", billSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := g.header(billSheet, billExportHeaders); err != nil {
		return nil, err
	}

	for i, b := range bills {
		var number, name string
		if b.Customer != nil {
			number, name = b.Customer.SubscriberNumber, b.Customer.Name
		}
		tariff, _ := b.TariffPerUnit.Float64()
		amount, _ := b.Amount.Float64()
		row := []any{
			number,
			name,
			b.Period,
			b.MeterStart,
			b.MeterEnd,
			b.Usage,
			tariff,
			amount,
			string(b.Status),
			b.DueDate.Format(billing.DateLayout),
		}
		if err := g.row(billSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if len(bills) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(billExportHeaders), len(bills)+1)
		if err := g.file.AddTable(billSheet, &excelize.Table{
			Range:     "A1:" + last,
			Name:      "bills",
			StyleName: "TableStyleMedium9",
		}); err != nil {
			return nil, fmt.Errorf("failed to add table: %w", err)
		}
	}

	buffer, err := g.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buffer, nil
}

func (g *generator) header(sheet string, headers []string) error {
	style, err := g.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := g.file.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := g.file.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := g.file.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

func (g *generator) row(sheet string, rowNum int, values []any) error {
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)
	if err := g.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}
