package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdlinkify/internal/core"
	"github.com/ryotapoi/mdlinkify/internal/locale"
)

type convertOptions struct {
	files  []string
	dryRun bool
	format string
}

// NewConvertCmd creates the convert command.
func NewConvertCmd(g *globalOptions) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: envMessages().T(locale.ConvertShort),
		Long: `Rewrites every unlinked mention of a note title as [[title]].

Without --file, every note that is not excluded is converted. All notes are
planned before any is written; if a write fails, notes already written are
restored.`,
		Example: `  mdlinkify convert --dry-run
  mdlinkify convert --file Note.md --file "Projects/Plan.md"
  mdlinkify convert --lang zh`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, g, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.files, "file", nil, "Note to convert (can be specified multiple times)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Show what would be converted without making changes")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format (json or text)")

	return cmd
}

func runConvert(cmd *cobra.Command, g *globalOptions, opts *convertOptions) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	msgs := g.messages(cfg)

	result, err := core.Convert(g.vault, cfg, core.ConvertOptions{
		Files:  opts.files,
		DryRun: opts.dryRun,
	})
	if err != nil {
		return err
	}
	log.Debug().Int("files", len(result.Files)).Int("mentions", len(result.Converted)).Bool("dry_run", opts.dryRun).Msg("convert finished")

	w := cmd.OutOrStdout()
	switch opts.format {
	case "json":
		return printConvertJSON(w, result, opts.dryRun)
	default:
		printConvertText(w, result, opts.dryRun, msgs)
		return nil
	}
}
