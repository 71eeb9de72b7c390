package presenter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ladder-calculator/internal/ladder"
)

// SheetName is the worksheet WriteXLSX fills.
const SheetName = "Ladder"

// Built-in number formats: 4 is "#,##0.00", 10 is "0.00%".
const (
	numFmtAmount     = 4
	numFmtPercentage = 10
)

const numFmtLot = "0.0000"

// WriteXLSX writes t as a single-sheet workbook. Cells hold numbers, not the
// display strings, so the sheet stays usable for further calculation.
func WriteXLSX(w io.Writer, t Table) error {
	f, err := BuildWorkbook(t)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// BuildWorkbook lays out the header, one row per step and a bold totals row.
func BuildWorkbook(t Table) (*excelize.File, error) {
	return buildWorkbook(SheetName, t)
}

func buildWorkbook(sheet string, t Table) (_ *excelize.File, err error) {
	f := excelize.NewFile()
	defer func() {
		if err != nil {
			f.Close()
		}
	}()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range t.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	if t.Empty() {
		return f, nil
	}

	res := t.Result
	for i, s := range res.Steps {
		row := i + 2
		values := []any{s.Step}
		switch res.Mode {
		case ladder.LotAndAmount:
			values = append(values, s.LotSize, s.Amount)
		default:
			values = append(values, s.Amount, s.Percentage/100)
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return nil, fmt.Errorf("set row %d: %w", row, err)
		}
	}

	last := len(res.Steps) + 1
	totalsRow := last + 1

	var totals []any
	switch res.Mode {
	case ladder.LotAndAmount:
		totals = []any{"Total", res.Totals.LotSize, res.Totals.Amount}
	default:
		totals = []any{"Total", res.Totals.Amount, 1.0}
	}
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", totalsRow), &totals); err != nil {
		return nil, fmt.Errorf("set totals row: %w", err)
	}

	if err := styleColumns(f, sheet, res.Mode, last, totalsRow); err != nil {
		return nil, err
	}

	return f, nil
}

func styleColumns(f *excelize.File, sheet string, mode ladder.Mode, last, totalsRow int) error {
	amount := excelize.Style{NumFmt: numFmtAmount}
	lot := excelize.Style{CustomNumFmt: ptr(numFmtLot)}
	pct := excelize.Style{NumFmt: numFmtPercentage}

	formats := map[string]excelize.Style{"B": amount, "C": pct}
	if mode == ladder.LotAndAmount {
		formats = map[string]excelize.Style{"B": lot, "C": amount}
	}

	bold := &excelize.Font{Bold: true}

	label, err := f.NewStyle(&excelize.Style{Font: bold})
	if err != nil {
		return fmt.Errorf("create totals style: %w", err)
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", totalsRow), fmt.Sprintf("A%d", totalsRow), label); err != nil {
		return fmt.Errorf("style totals label: %w", err)
	}

	for col, format := range formats {
		body, err := f.NewStyle(&format)
		if err != nil {
			return fmt.Errorf("create column %s style: %w", col, err)
		}
		if err := f.SetCellStyle(sheet, col+"2", fmt.Sprintf("%s%d", col, last), body); err != nil {
			return fmt.Errorf("style column %s: %w", col, err)
		}

		format.Font = bold
		total, err := f.NewStyle(&format)
		if err != nil {
			return fmt.Errorf("create column %s totals style: %w", col, err)
		}
		cell := fmt.Sprintf("%s%d", col, totalsRow)
		if err := f.SetCellStyle(sheet, cell, cell, total); err != nil {
			return fmt.Errorf("style total %s: %w", cell, err)
		}
	}

	return nil
}

func ptr[T any](v T) *T {
	return &v
}
