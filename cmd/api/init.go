package main

import (
	"context"
	"fmt"

	"ladder-calculator/internal/calculator"
	"ladder-calculator/internal/observability"
)

// initMetrics starts the OTLP meter provider and then creates the ladder
// instruments against it, so they export from the first request on.
func initMetrics(ctx context.Context) (func(context.Context) error, error) {
	shutdown, err := observability.InitMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("init metric provider: %w", err)
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, fmt.Errorf("init calculator metrics: %w", err)
	}

	return shutdown, nil
}
