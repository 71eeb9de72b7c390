// Package presenter renders ladder results as tables with a totals row.
package presenter

import (
	"fmt"

	"ladder-calculator/internal/ladder"
)

// Table is a rendered ladder: display strings for every cell plus the result
// they were formatted from.
type Table struct {
	Header []string
	Rows   [][]string
	Totals []string

	Result ladder.Result
}

// Empty reports whether there is nothing to show.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// NewTable formats res for display. Percentage mode shows Step, Amount and
// Percentage; LotAndAmount shows Step, Lot size and Amount.
func NewTable(res ladder.Result) Table {
	t := Table{Header: header(res.Mode), Result: res}
	if res.Empty() {
		return t
	}

	t.Rows = make([][]string, 0, len(res.Steps))
	for _, s := range res.Steps {
		step := fmt.Sprintf("%d", s.Step)

		switch res.Mode {
		case ladder.LotAndAmount:
			t.Rows = append(t.Rows, []string{step, FormatLot(s.LotSize), FormatAmount(s.Amount)})
		default:
			t.Rows = append(t.Rows, []string{step, FormatAmount(s.Amount), FormatPercentage(s.Percentage)})
		}
	}

	switch res.Mode {
	case ladder.LotAndAmount:
		t.Totals = []string{"Total", FormatLot(res.Totals.LotSize), FormatAmount(res.Totals.Amount)}
	default:
		t.Totals = []string{"Total", FormatAmount(res.Totals.Amount), "100%"}
	}

	return t
}

func header(mode ladder.Mode) []string {
	if mode == ladder.LotAndAmount {
		return []string{"Step", "Lot size", "Amount"}
	}
	return []string{"Step", "Amount", "Percentage"}
}

// FormatAmount renders a currency cell, e.g. "$142.86".
func FormatAmount(v float64) string {
	return fmt.Sprintf("$%.*f", ladder.AmountDecimals, v)
}

// FormatLot renders a lot size cell, e.g. "1.0000".
func FormatLot(v float64) string {
	return fmt.Sprintf("%.*f", ladder.LotSizeDecimals, v)
}

// FormatPercentage renders a share cell, e.g. "14.29%".
func FormatPercentage(v float64) string {
	return fmt.Sprintf("%.*f%%", ladder.PercentageDecimals, v)
}
