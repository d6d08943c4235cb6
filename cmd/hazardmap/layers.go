package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/hazard-map/internal/session"
)

func newLayersCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "layers",
		Short: "Print the heatmap and symbol layers for the current hazards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, metrics, err := loadCLI()
			if err != nil {
				return err
			}
			store := newStore(cfg, metrics, logger)
			fc, err := store.ListHazards(cmd.Context())
			if err != nil {
				return fmt.Errorf("list hazards: %w", err)
			}
			layers := session.Project(fc)

			out := cmd.OutOrStdout()
			if asYAML {
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(layers); err != nil {
					return fmt.Errorf("encode layers: %w", err)
				}
				return enc.Close()
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(layers)
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "output as YAML")
	return cmd
}
