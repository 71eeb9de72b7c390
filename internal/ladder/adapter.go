package ladder

// Column precision.
const (
	AmountDecimals     = 2
	LotSizeDecimals    = 4
	PercentageDecimals = 2
)

// StepResult is one row of the ladder. LotSize is meaningful only in
// LotAndAmount mode and Percentage only in Percentage mode.
type StepResult struct {
	Step       int
	Amount     float64
	LotSize    float64
	Percentage float64
}

// Totals is the summary row.
type Totals struct {
	Amount     float64
	LotSize    float64
	Percentage float64
}

// Result is the full ordered ladder for one Input snapshot.
type Result struct {
	Mode   Mode
	Steps  []StepResult
	Totals Totals
}

// Empty reports whether the result holds no rows.
func (r Result) Empty() bool {
	return len(r.Steps) == 0
}

// Compute builds the ladder for a validated input. Both modes run the same
// Solve; LotAndAmount runs it twice and zips the series by step.
func Compute(in Input) Result {
	amounts := Solve(in.TotalAmount, in.StepCount, in.Coefficient, AmountDecimals)

	var lots []float64
	if in.Mode == LotAndAmount {
		lots = Solve(in.TotalLotVolume, in.StepCount, in.Coefficient, LotSizeDecimals)
	}

	steps := make([]StepResult, len(amounts))
	for i, amount := range amounts {
		row := StepResult{Step: i + 1, Amount: amount}

		switch in.Mode {
		case Percentage:
			row.Percentage = Round(amount/in.TotalAmount*100, PercentageDecimals)
		case LotAndAmount:
			row.LotSize = lots[i]
		}

		steps[i] = row
	}

	return Result{
		Mode:   in.Mode,
		Steps:  steps,
		Totals: Summarize(in.Mode, steps),
	}
}

// Summarize sums the amount and lot columns. The percentage total is fixed at
// 100 rather than summed, since per-row rounding rarely adds up exactly.
func Summarize(mode Mode, steps []StepResult) Totals {
	var t Totals
	if len(steps) == 0 {
		return t
	}

	for _, s := range steps {
		t.Amount += s.Amount
		t.LotSize += s.LotSize
	}

	t.Amount = Round(t.Amount, AmountDecimals)

	switch mode {
	case Percentage:
		t.LotSize = 0
		t.Percentage = 100
	case LotAndAmount:
		t.LotSize = Round(t.LotSize, LotSizeDecimals)
	}

	return t
}
