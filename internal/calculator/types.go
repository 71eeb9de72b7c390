package calculator

import "ladder-calculator/internal/ladder"

// LadderRequest is the JSON body for POST /calculator/ladder and
// PUT /calculator/sessions/{id}. Field values are raw form text.
type LadderRequest = ladder.RawInput

// StepRow is one ladder row. Only the columns of the response mode are set.
type StepRow struct {
	Step       int      `json:"step"`
	LotSize    *float64 `json:"lot_size,omitempty"`
	Amount     float64  `json:"amount"`
	Percentage *string  `json:"percentage,omitempty"` // "14.29"
}

// TotalsRow mirrors the table footer.
type TotalsRow struct {
	LotSize    *float64 `json:"lot_size,omitempty"`
	Amount     float64  `json:"amount"`
	Percentage *string  `json:"percentage,omitempty"` // always "100"
}

// LadderResponse is the JSON response for POST /calculator/ladder.
type LadderResponse struct {
	Mode      ladder.Mode `json:"mode"`
	Steps     []StepRow   `json:"steps"`
	Totals    *TotalsRow  `json:"totals,omitempty"`
	RequestID string      `json:"request_id"`
}

// SessionResponse is the JSON response for the /calculator/sessions routes.
type SessionResponse struct {
	ID        string      `json:"id"`
	Mode      ladder.Mode `json:"mode"`
	Steps     []StepRow   `json:"steps"`
	Totals    *TotalsRow  `json:"totals,omitempty"`
	Updated   bool        `json:"updated"`
	RequestID string      `json:"request_id"`
}

// CreateSessionRequest is the optional JSON body for POST /calculator/sessions.
type CreateSessionRequest struct {
	Mode ladder.Mode `json:"mode"`
}

func newLadderResponse(res ladder.Result, requestID string) LadderResponse {
	return LadderResponse{
		Mode:      res.Mode,
		Steps:     stepRows(res),
		Totals:    totalsRow(res),
		RequestID: requestID,
	}
}

func newSessionResponse(id string, res ladder.Result, updated bool, requestID string) SessionResponse {
	return SessionResponse{
		ID:        id,
		Mode:      res.Mode,
		Steps:     stepRows(res),
		Totals:    totalsRow(res),
		Updated:   updated,
		RequestID: requestID,
	}
}

func stepRows(res ladder.Result) []StepRow {
	rows := make([]StepRow, 0, len(res.Steps))
	for _, s := range res.Steps {
		row := StepRow{Step: s.Step, Amount: s.Amount}
		switch res.Mode {
		case ladder.LotAndAmount:
			lot := s.LotSize
			row.LotSize = &lot
		default:
			pct := formatPercentage(s.Percentage)
			row.Percentage = &pct
		}
		rows = append(rows, row)
	}
	return rows
}

func totalsRow(res ladder.Result) *TotalsRow {
	if res.Empty() {
		return nil
	}

	t := &TotalsRow{Amount: res.Totals.Amount}
	switch res.Mode {
	case ladder.LotAndAmount:
		lot := res.Totals.LotSize
		t.LotSize = &lot
	default:
		pct := "100"
		t.Percentage = &pct
	}
	return t
}
