package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdlinkify/internal/core"
	"github.com/ryotapoi/mdlinkify/internal/locale"
	"github.com/ryotapoi/mdlinkify/internal/watch"
)

type watchOptions struct {
	autoConvert bool
	delay       time.Duration
}

// NewWatchCmd creates the watch command.
func NewWatchCmd(g *globalOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Scan notes as they change and optionally convert them",
		Long: `Watches the vault and scans each note when it is saved, printing the
titles it mentions. Renamed and deleted notes update the title list (and the
index, if one was built). Editing mdlinkify.yaml reloads the config.

With --auto-convert, a note is converted once it has been quiet for --delay.`,
		Example: `  mdlinkify watch
  mdlinkify watch --auto-convert --delay 2s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, g, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.autoConvert, "auto-convert", false, "Convert notes automatically after --delay (overrides config)")
	cmd.Flags().DurationVar(&opts.delay, "delay", core.DefaultAutoConvertDelay*time.Millisecond, "Auto-convert debounce (overrides config)")

	return cmd
}

func runWatch(cmd *cobra.Command, g *globalOptions, opts *watchOptions) error {
	flags := cmd.Flags()
	load := func() (core.Config, error) {
		cfg, err := g.loadConfig()
		if err != nil {
			return core.Config{}, err
		}
		if flags.Changed("auto-convert") {
			cfg.AutoConvert = opts.autoConvert
		}
		if flags.Changed("delay") {
			cfg.AutoConvertDelay = int(opts.delay / time.Millisecond)
		}
		return cfg, nil
	}

	cfg, err := load()
	if err != nil {
		return err
	}
	msgs := g.messages(cfg)
	w := cmd.OutOrStdout()

	logger := log.Logger
	session, err := core.NewSession(core.SessionOptions{
		Config:    cfg,
		Source:    core.OpenSource(g.vault),
		Presenter: newLinePresenter(w, msgs),
		Logger:    &logger,
		OnAutoConvert: func(r core.AutoConvertResult) {
			if r.Err != nil {
				fmt.Fprintf(w, "%s %s\n", errorIcon, r.Err)
				return
			}
			if r.Edits > 0 {
				printSuccess(w, msgs.T(locale.AutoConverted), r.Edits, r.Title)
			}
		},
	})
	if err != nil {
		return err
	}
	defer session.Close()

	watcher, err := watch.New(watch.Options{
		Vault:        g.vault,
		Session:      session,
		Logger:       logger,
		ReloadConfig: load,
	})
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printSuccess(w, msgs.T(locale.Watching), g.vault)
	log.Debug().Int("titles", len(session.Titles())).Strs("dirs", watcher.WatchList()).Msg("watching")
	return watcher.Run(ctx)
}
