package cli

import (
	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdlinkify/internal/core"
)

type scanOptions struct {
	file   string
	format string
}

// NewScanCmd creates the scan command.
func NewScanCmd(g *globalOptions) *cobra.Command {
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List the titles a note mentions without linking",
		Example: `  mdlinkify scan --file "Daily/2024-05-01.md"
  mdlinkify scan --file Note.md --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Note to scan, relative to the vault (required)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format (json or text)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runScan(cmd *cobra.Command, g *globalOptions, opts *scanOptions) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	result, err := core.Scan(g.vault, cfg, core.ScanOptions{File: opts.file})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch opts.format {
	case "json":
		return printScanJSON(w, result)
	default:
		newLinePresenter(w, g.messages(cfg)).ShowMatches(result.Title, result.Hits, cfg.ShowDetails)
		return nil
	}
}
