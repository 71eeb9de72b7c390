// Command ladder prints a martingale step ladder to the terminal.
//
//	ladder -amount 1000 -steps 3 -coefficient 2
//	ladder -mode crypto -lot 7 -amount 700 -steps 3 -coefficient 2 -xlsx ladder.xlsx
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"ladder-calculator/internal/ladder"
	"ladder-calculator/internal/presenter"
)

const exitInvalidInput = 2

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ladder", flag.ContinueOnError)
	fs.SetOutput(stderr)

	mode := fs.String("mode", "percentage", "percentage or lot_and_amount (aliases: forex, crypto)")
	amount := fs.String("amount", "", "total amount to distribute")
	lot := fs.String("lot", "", "total lot volume (lot_and_amount mode)")
	steps := fs.String("steps", "", "number of steps")
	coefficient := fs.String("coefficient", "", "growth factor between steps, greater than 1")
	maxSteps := fs.Int("max-steps", 1000, "upper bound on -steps, 0 for none")
	xlsxPath := fs.String("xlsx", "", "also write the table to this .xlsx file")

	if err := fs.Parse(args); err != nil {
		return exitInvalidInput
	}

	m, err := ladder.ParseMode(*mode)
	if err != nil {
		fmt.Fprintf(stderr, "ladder: %v\n", err)
		return exitInvalidInput
	}

	in, err := ladder.TextValidator{MaxSteps: *maxSteps}.Validate(ladder.RawInput{
		Mode:        m,
		Amount:      *amount,
		LotVolume:   *lot,
		Steps:       *steps,
		Coefficient: *coefficient,
	})
	if err != nil {
		var fe *ladder.FieldError
		if errors.As(err, &fe) {
			fmt.Fprintf(stderr, "ladder: -%s: %s\n", flagName(fe.Field), fe.Reason)
		} else {
			fmt.Fprintf(stderr, "ladder: %v\n", err)
		}
		return exitInvalidInput
	}

	table := presenter.NewTable(ladder.Compute(in))

	if err := presenter.WriteText(stdout, table); err != nil {
		fmt.Fprintf(stderr, "ladder: %v\n", err)
		return 1
	}

	if *xlsxPath != "" {
		if err := writeXLSX(*xlsxPath, table); err != nil {
			fmt.Fprintf(stderr, "ladder: %v\n", err)
			return 1
		}
	}

	return 0
}

func writeXLSX(path string, table presenter.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := presenter.WriteXLSX(f, table); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func flagName(field string) string {
	if field == ladder.FieldLotVolume {
		return "lot"
	}
	return field
}
