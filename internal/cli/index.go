package cli

import (
	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdlinkify/internal/core"
	"github.com/ryotapoi/mdlinkify/internal/locale"
)

// NewIndexCmd creates the index command.
func NewIndexCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Build the title index",
		Long: `Walks the vault and stores every note title in .mdlinkify/index.sqlite.

Once the index exists, scan and convert read titles from it instead of walking
the vault, and watch keeps it up to date.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			n, err := core.BuildIndex(g.vault)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), g.messages(cfg).T(locale.IndexedSummary), n)
			return nil
		},
	}
}
