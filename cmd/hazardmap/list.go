package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/hazard-map/internal/domain"
)

func newListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reported hazards",
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
			hazards := domain.HazardsFromCollection(fc)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(hazards)
			}
			return writeHazardTable(cmd.OutOrStdout(), hazards)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func writeHazardTable(w io.Writer, hazards []domain.Hazard) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tLAT\tLNG\tREPORTED\tNOTES")
	for _, h := range hazards {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%s\t%s\n", h.Type.Label(), h.Lat, h.Lng, domain.TimeAgo(h.CreatedAt), h.Notes)
	}
	fmt.Fprintf(tw, "\n%d hazards\n", len(hazards))
	return tw.Flush()
}
