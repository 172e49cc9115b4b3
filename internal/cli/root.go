// Package cli implements the mdlinkify command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdlinkify/internal/core"
	"github.com/ryotapoi/mdlinkify/internal/locale"
)

var (
	// Version is set at build time.
	Version = "dev"

	// Output helpers.
	successIcon = color.New(color.FgGreen).Sprint("✓")
	warningIcon = color.New(color.FgYellow).Sprint("⚠")
	errorIcon   = color.New(color.FgRed).Sprint("✗")

	info = color.New(color.FgCyan).SprintFunc()
	dim  = color.New(color.Faint).SprintFunc()
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	vault   string
	verbose bool
	lang    string
	scripts string
	exclude string
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "mdlinkify",
		Short: "Turn plain mentions of note titles into wiki links",
		Long: `mdlinkify finds where a note mentions the title of another note in the
same vault and rewrites those mentions as [[wiki links]].

Titles ending in CJK characters match anywhere; other titles must end at a
word boundary. Existing links are left alone.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(g.verbose)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.vault, "vault", ".", "Vault root directory")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&g.lang, "lang", "", "Output language (en, zh); defaults to config, then $LANG")
	pf.StringVar(&g.scripts, "scripts", "", "Scripts that need no word boundary, e.g. \"Han,Hiragana\" (overrides config)")
	pf.StringVar(&g.exclude, "exclude", "", "Extra note names and folder/ prefixes to exclude, comma-separated")

	rootCmd.AddCommand(NewScanCmd(g))
	rootCmd.AddCommand(NewConvertCmd(g))
	rootCmd.AddCommand(NewIndexCmd(g))
	rootCmd.AddCommand(NewStatsCmd(g))
	rootCmd.AddCommand(NewWatchCmd(g))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	v := Version
	if v == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v = bi.Main.Version
		}
	}
	fmt.Fprintf(w, "mdlinkify version %s\n", v)
}

// Execute runs the CLI.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorIcon, err.Error())
		if he, ok := err.(interface{ HintText() string }); ok {
			if hint := he.HintText(); hint != "" {
				fmt.Fprintf(os.Stderr, "  %s\n", dim(hint))
			}
		}
		return err
	}
	return nil
}

func setupLogging(verbose bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// loadConfig reads mdlinkify.yaml from the vault and applies flag overrides.
func (g *globalOptions) loadConfig() (core.Config, error) {
	cfg, err := core.LoadConfig(g.vault)
	if err != nil {
		return core.Config{}, err
	}
	if g.scripts != "" {
		cfg.NonBoundaryScripts = core.SplitList(g.scripts)
	}
	if g.exclude != "" {
		cfg.Excludes = append(cfg.Excludes, core.SplitList(g.exclude)...)
	}
	if g.lang != "" {
		cfg.Language = g.lang
	}
	return cfg, nil
}

// messages picks the output language: --lang, then config, then $LANG.
func (g *globalOptions) messages(cfg core.Config) *locale.Table {
	return locale.Resolve(g.lang, cfg.Language, os.Getenv("LC_ALL"), os.Getenv("LANG"))
}

// envMessages picks the help language before flags are parsed.
func envMessages() *locale.Table {
	return locale.Resolve(os.Getenv("LC_ALL"), os.Getenv("LANG"))
}

// printSuccess prints a success message.
func printSuccess(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", successIcon, fmt.Sprintf(format, args...))
}

// printWarning prints a warning message.
func printWarning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", warningIcon, fmt.Sprintf(format, args...))
}
