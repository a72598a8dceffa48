// Package cli provides the typesmith command tree.
//
// Applications build the root command around their own declaration
// registry, so the binary they ship generates exactly their types:
//
//	reg := registry.New()
//	reg.MustRegister(models.Declarations()...)
//	os.Exit(cli.Execute(cli.NewRootCommand(reg)))
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/artpar/typesmith/config"
	"github.com/artpar/typesmith/core/formatter"
	"github.com/artpar/typesmith/core/registry"
)

// DefaultConfigFile is read when --config is not given. A missing default
// file is not an error; environment variables and defaults apply instead.
const DefaultConfigFile = "typesmith.yaml"

// BuildInfo identifies the binary for the version command.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// Option configures the root command.
type Option func(*Channel)

// WithBuildInfo sets what the version command prints.
func WithBuildInfo(info BuildInfo) Option {
	return func(c *Channel) { c.build = info }
}

// WithFormatters replaces the output formatter registry.
func WithFormatters(r *formatter.Registry) Option {
	return func(c *Channel) { c.formatters = r }
}

// Channel implements the CLI channel for a declaration registry.
type Channel struct {
	registry   *registry.Registry
	formatters *formatter.Registry
	build      BuildInfo
	cfgFile    string
}

// NewRootCommand builds the typesmith command tree for reg.
func NewRootCommand(reg *registry.Registry, opts ...Option) *cobra.Command {
	c := &Channel{
		registry:   reg,
		formatters: formatter.DefaultRegistry,
		build:      BuildInfo{Version: "dev", Commit: "none", BuildDate: "unknown"},
	}
	for _, opt := range opts {
		opt(c)
	}

	root := &cobra.Command{
		Use:   "typesmith",
		Short: "Generate TypeScript interfaces from declared data shapes",
		Long: `typesmith turns the data shapes registered with it into TypeScript
interface files, one file per shape plus an index file per directory.

Quick start:
  typesmith list                   # Show registered shapes
  typesmith render Shop::Customer  # Print one generated file
  typesmith generate               # Write every file under output.base_path

Validation:
  typesmith instantiate Billing::Invoice invoice.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", DefaultConfigFile, "config file path")

	root.AddCommand(
		c.generateCommand(),
		c.cleanCommand(),
		c.listCommand(),
		c.renderCommand(),
		c.instantiateCommand(),
		c.serveCommand(),
		c.versionCommand(),
	)
	return root
}

// Name returns the channel name.
func (c *Channel) Name() string {
	return "cli"
}

// Execute runs root and returns the process exit code. Errors already
// written through a formatter are not printed twice.
func Execute(root *cobra.Command) int {
	if err := root.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		}
		return 1
	}
	return 0
}

// reportedError marks an error the formatter has already shown.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// loadConfig reads --config, falling back to the environment when the
// file does not exist.
func (c *Channel) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithFallback(c.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the command logger from the logging section. Logs go to
// w so that stdout carries only command output.
func newLogger(cfg config.LoggingConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// addOutputFlags adds common output format flags to a command.
func (c *Channel) addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Output format: "+strings.Join(c.formatters.List(), ", "))
	cmd.Flags().Bool("no-header", false, "Disable header row (table format)")
	cmd.Flags().Bool("compact", false, "Compact output (json)")
	cmd.Flags().StringSlice("columns", nil, "Only show these columns")
}

// getFormatter returns the formatter selected by --output.
func (c *Channel) getFormatter(cmd *cobra.Command) (formatter.Formatter, error) {
	outputFmt, _ := cmd.Flags().GetString("output")
	return c.formatters.Lookup(outputFmt)
}

// getFormatOptions builds format options from command flags.
func (c *Channel) getFormatOptions(cmd *cobra.Command) formatter.FormatOptions {
	noHeader, _ := cmd.Flags().GetBool("no-header")
	compact, _ := cmd.Flags().GetBool("compact")
	columns, _ := cmd.Flags().GetStringSlice("columns")

	return formatter.FormatOptions{
		Columns:  columns,
		NoHeader: noHeader,
		Compact:  compact,
		MaxWidth: 60,
	}
}

// formatError writes err through the selected formatter to stderr.
func (c *Channel) formatError(cmd *cobra.Command, err error) error {
	f, lookupErr := c.getFormatter(cmd)
	if lookupErr != nil {
		return err
	}
	if fmtErr := f.FormatError(cmd.ErrOrStderr(), err); fmtErr != nil {
		return err
	}
	return &reportedError{err: err}
}
