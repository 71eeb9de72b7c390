package ladder

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Mode selects how a ladder is distributed and which columns a row carries.
type Mode int

const (
	// Percentage distributes a single total and reports each step's share.
	Percentage Mode = iota
	// LotAndAmount distributes a lot volume and an amount in parallel.
	LotAndAmount
)

func (m Mode) String() string {
	switch m {
	case Percentage:
		return "percentage"
	case LotAndAmount:
		return "lot_and_amount"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	switch m {
	case Percentage, LotAndAmount:
		return []byte(m.String()), nil
	}
	return nil, fmt.Errorf("unknown mode %d", int(m))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ErrUnknownMode is returned by ParseMode for names it does not recognise.
var ErrUnknownMode = errors.New("unknown mode")

// ParseMode maps a mode name to a Mode. The empty string selects Percentage.
// "all-steps", "forex" and "crypto" are accepted as legacy names.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "percentage", "all-steps", "forex":
		return Percentage, nil
	case "lot_and_amount", "lot-and-amount", "crypto":
		return LotAndAmount, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// RawInput holds the unparsed text fields exactly as a form supplies them.
type RawInput struct {
	Mode        Mode   `json:"mode"`
	Amount      string `json:"amount"`
	LotVolume   string `json:"lot_volume"`
	Steps       string `json:"steps"`
	Coefficient string `json:"coefficient"`
}

// Input is a validated calculation snapshot.
type Input struct {
	Mode           Mode
	TotalAmount    float64
	TotalLotVolume float64 // LotAndAmount only
	StepCount      int
	Coefficient    float64
}

// ErrInvalidInput is the single error class of the calculator. Every
// validation failure wraps it.
var ErrInvalidInput = errors.New("invalid input")

// FieldError names the raw field that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidInput
}

// Field names used in FieldError.
const (
	FieldAmount      = "amount"
	FieldLotVolume   = "lot_volume"
	FieldSteps       = "steps"
	FieldCoefficient = "coefficient"
)

// Validator gates the solver: only inputs it accepts are ever computed.
type Validator interface {
	Validate(raw RawInput) (Input, error)
}

// TextValidator parses form text. A zero MaxSteps means no upper bound.
type TextValidator struct {
	MaxSteps int
}

var _ Validator = TextValidator{}

// Validate implements Validator.
func (v TextValidator) Validate(raw RawInput) (Input, error) {
	in := Input{Mode: raw.Mode}

	var err error

	switch raw.Mode {
	case Percentage, LotAndAmount:
	default:
		return Input{}, fmt.Errorf("%w: %s", ErrInvalidInput, raw.Mode)
	}

	if in.TotalAmount, err = parseTotal(FieldAmount, raw.Amount, AmountDecimals); err != nil {
		return Input{}, err
	}

	if raw.Mode == LotAndAmount {
		if in.TotalLotVolume, err = parseTotal(FieldLotVolume, raw.LotVolume, LotSizeDecimals); err != nil {
			return Input{}, err
		}
	}

	if in.StepCount, err = ParseStepCount(raw.Steps); err != nil {
		return Input{}, &FieldError{Field: FieldSteps, Reason: err.Error()}
	}
	if in.StepCount <= 0 {
		return Input{}, &FieldError{Field: FieldSteps, Reason: "must be greater than 0"}
	}
	if v.MaxSteps > 0 && in.StepCount > v.MaxSteps {
		return Input{}, &FieldError{Field: FieldSteps, Reason: fmt.Sprintf("must not exceed %d", v.MaxSteps)}
	}

	if in.Coefficient, err = parseFinite(FieldCoefficient, raw.Coefficient); err != nil {
		return Input{}, err
	}
	if !(in.Coefficient > 1) {
		return Input{}, &FieldError{Field: FieldCoefficient, Reason: "must be greater than 1"}
	}

	// c^n must stay finite and the first term must survive the division,
	// otherwise every term collapses to zero.
	if !representable(in.TotalAmount, in.StepCount, in.Coefficient) ||
		(in.Mode == LotAndAmount && !representable(in.TotalLotVolume, in.StepCount, in.Coefficient)) {
		return Input{}, &FieldError{Field: FieldSteps, Reason: "too many steps for this coefficient"}
	}

	return in, nil
}

func representable(total float64, stepCount int, coefficient float64) bool {
	if math.IsInf(math.Pow(coefficient, float64(stepCount)), 0) {
		return false
	}
	a := FirstTerm(total, stepCount, coefficient)
	return a > 0 && !math.IsInf(a, 0)
}

func parseFinite(field, text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, &FieldError{Field: field, Reason: "required"}
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &FieldError{Field: field, Reason: "not a number"}
	}

	return v, nil
}

func parsePositive(field, text string) (float64, error) {
	v, err := parseFinite(field, text)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, &FieldError{Field: field, Reason: "must be greater than 0"}
	}
	return v, nil
}

// parseTotal reads a positive total that can still be rounded to
// decimalPlaces; Round scales by 10^decimalPlaces, which must stay finite.
func parseTotal(field, text string, decimalPlaces int) (float64, error) {
	v, err := parsePositive(field, text)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v*math.Pow10(decimalPlaces), 0) {
		return 0, &FieldError{Field: field, Reason: "too large"}
	}
	return v, nil
}

// ParseStepCount reads a leading integer and ignores whatever follows it, so
// "3.7" is 3 and "7 steps" is 7. Text without leading digits is an error.
func ParseStepCount(text string) (int, error) {
	s := strings.TrimLeft(text, " \t\r\n")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}

	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	if end == digitsStart {
		if strings.TrimSpace(text) == "" {
			return 0, errors.New("required")
		}
		return 0, errors.New("not an integer")
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, errors.New("out of range")
	}

	return n, nil
}
