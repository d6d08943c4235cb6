// Command hazardmap runs the road hazard map session server and offers
// one-shot commands against the hazard API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/hazard-map/internal/config"
	"github.com/couchcryptid/hazard-map/internal/observability"
)

// newMetrics is swapped in tests to avoid duplicate registration.
var newMetrics = observability.NewMetrics

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hazardmap",
		Short:         "Crowd-sourced road hazard map",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newListCmd(), newReportCmd(), newLayersCmd())
	return root
}

// loadCLI loads config and a stderr logger for one-shot commands.
func loadCLI() (*config.Config, *slog.Logger, *observability.Metrics, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, observability.NewCLILogger(cfg), newMetrics(), nil
}
