package cli

import (
	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdlinkify/internal/core"
)

type statsOptions struct {
	format string
	fields string
}

// NewStatsCmd creates the stats command.
func NewStatsCmd(g *globalOptions) *cobra.Command {
	opts := &statsOptions{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show title index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format (json or text)")
	cmd.Flags().StringVar(&opts.fields, "fields", "", "Comma-separated fields to output")

	return cmd
}

func runStats(cmd *cobra.Command, g *globalOptions, opts *statsOptions) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}

	fieldList := parseFields(opts.fields)
	if err := validateFields(fieldList, validStatsFieldsCLI, "stats"); err != nil {
		return err
	}

	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	result, err := core.IndexStats(g.vault, cfg, core.StatsOptions{Fields: fieldList})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch opts.format {
	case "json":
		return printStatsJSON(w, result, fieldList)
	default:
		return printStatsText(w, result, fieldList)
	}
}
