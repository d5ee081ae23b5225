package report

import (
	"bytes"
	"fmt"

	"github.com/nimasrn/water-billing/internal/model"
)

const (
	templateSheet     = "Template"
	instructionsSheet = "Instructions"
)

// BillTemplate renders the bill import template: the header and sample rows
// on the first sheet, instructions and validation rules on the second.
func BillTemplate(t model.BillTemplate) (*bytes.Buffer, error) {
	g := newGenerator()
	defer g.file.Close()

	if err := g.file.SetSheetName("Sheet1", templateSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := g.header(templateSheet, t.Headers); err != nil {
		return nil, err
	}
	for i, sample := range t.SampleData {
		values := make([]any, len(t.Headers))
		for j, h := range t.Headers {
			values[j] = sample[h]
		}
		if err := g.row(templateSheet, i+2, values); err != nil {
			return nil, err
		}
	}

	if _, err := g.file.NewSheet(instructionsSheet); err != nil {
		return nil, fmt.Errorf("failed to add sheet %q: %w", instructionsSheet, err)
	}
	if err := g.header(instructionsSheet, []string{"Instruction"}); err != nil {
		return nil, err
	}
	rowNum := 2
	for _, line := range t.Instructions {
		if err := g.row(instructionsSheet, rowNum, []any{line}); err != nil {
			return nil, err
		}
		rowNum++
	}
	for _, h := range t.Headers {
		rule, ok := t.ValidationRules[h]
		if !ok {
			continue
		}
		if err := g.row(instructionsSheet, rowNum, []any{h + ": " + rule}); err != nil {
			return nil, err
		}
		rowNum++
	}

	g.file.SetActiveSheet(0)
	buffer, err := g.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buffer, nil
}
