package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-lookup/internal/bootstrap"
	"github.com/i474232898/weather-lookup/internal/location"
	"github.com/i474232898/weather-lookup/internal/present"
)

func newLookupCommand(g *globals) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "lookup <location>",
		Short:   "Print current conditions and the 5-day forecast for a location",
		Example: "  weather-lookup lookup \"Baxter, IA\"\n  weather-lookup lookup 50401 --json",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.Join(args, " ")
			if err := location.Validate(raw); err != nil {
				return err
			}

			built, err := bootstrap.Build(cmd.Context(), g.cfg, g.logger)
			if err != nil {
				return err
			}
			defer built.Close()

			report, err := built.Service.Lookup(cmd.Context(), raw)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return present.WriteReport(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func newResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <location>",
		Short: "Show how a free-text location is classified",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.Join(args, " ")
			if err := location.Validate(raw); err != nil {
				return err
			}
			q := location.Resolve(raw)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				location.Query
				Key     string `json:"key"`
				Display string `json:"display"`
			}{q, q.Key(), q.String()})
		},
	}
}
