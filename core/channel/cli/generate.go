package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/artpar/typesmith/config"
	"github.com/artpar/typesmith/core/codegen"
	"github.com/artpar/typesmith/core/exporter"
	"github.com/artpar/typesmith/core/sink"
)

func (c *Channel) generateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write TypeScript files for every registered shape",
		Long: `Generate one TypeScript file per registered shape plus an index file
per directory under output.base_path.

The output directory is wiped first unless output.clean is false.

Examples:
  typesmith generate
  typesmith generate --base-path frontend/src/types
  typesmith generate --dry-run -o json
  typesmith generate --watch --config typesmith.yaml`,
		Args: cobra.NoArgs,
		RunE: c.runGenerate,
	}

	cmd.Flags().String("base-path", "", "override output.base_path")
	cmd.Flags().Bool("dry-run", false, "render and log every file without writing")
	cmd.Flags().Bool("watch", false, "regenerate whenever the config file changes")
	c.addOutputFlags(cmd)

	return cmd
}

func (c *Channel) runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	basePath, _ := cmd.Flags().GetString("base-path")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	watch, _ := cmd.Flags().GetBool("watch")

	override := func(cfg *config.Config) *config.Config {
		if basePath == "" {
			return cfg
		}
		out := *cfg
		out.Output.BasePath = basePath
		return &out
	}

	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())

	summaries, err := c.generate(cmd.Context(), override(cfg), logger, dryRun)
	if err != nil {
		return c.formatError(cmd, err)
	}

	f, err := c.getFormatter(cmd)
	if err != nil {
		return err
	}
	if err := f.FormatSummaries(cmd.OutOrStdout(), summaries, c.getFormatOptions(cmd)); err != nil {
		return err
	}

	if !watch {
		return nil
	}

	r := &regenerator{
		logger: logger,
		w:      cmd.ErrOrStderr(),
		run: func(cfg *config.Config, logger zerolog.Logger) error {
			_, err := c.generate(cmd.Context(), override(cfg), logger, dryRun)
			return err
		},
	}
	return c.watch(cmd.Context(), logger, r.apply)
}

// regenerator applies reloaded configuration to a watching generate run.
// Output changes regenerate, logging changes rebuild the logger and
// settings generate never reads are reported and otherwise ignored.
type regenerator struct {
	logger zerolog.Logger
	w      io.Writer
	run    func(*config.Config, zerolog.Logger) error
}

func (r *regenerator) apply(change config.Change) {
	if change.Touches("logging") {
		r.logger = newLogger(change.New.Logging, r.w)
	}
	if restart := change.RestartRequired(); len(restart) > 0 {
		r.logger.Warn().Strs("fields", restart).Msg("settings not used by generate, ignoring")
	}
	if !change.Touches("output") {
		return
	}
	if err := r.run(change.New, r.logger); err != nil {
		r.logger.Error().Err(err).Msg("regeneration failed")
	}
}

// generate plans every registered declaration, then wipes and writes the
// output base. A planning error leaves the previous output untouched.
func (c *Channel) generate(ctx context.Context, cfg *config.Config, logger zerolog.Logger, dryRun bool) ([]codegen.Summary, error) {
	gen := codegen.New(
		codegen.WithExtension(cfg.Output.Extension),
		codegen.WithLogger(logger),
		codegen.WithMetrics(exporter.NewLogExporter(logger)),
	)

	plan, err := gen.Plan(c.registry)
	if err != nil {
		return nil, fmt.Errorf("plan generation: %w", err)
	}

	var target sink.Sink
	if !dryRun {
		fs := sink.NewFS(cfg.Output.BasePath)
		if cfg.Output.ShouldClean() {
			if err := fs.Clean(); err != nil {
				return nil, fmt.Errorf("clean output: %w", err)
			}
			logger.Info().Str("base_path", fs.Base()).Msg("cleaned output directory")
		}
		target = fs
	}

	return gen.Write(ctx, plan, sink.NewLog(target, logger))
}

// watch reloads the config file on change and hands each change to
// onChange until the context ends or the process is interrupted.
func (c *Channel) watch(ctx context.Context, logger zerolog.Logger, onChange func(config.Change)) error {
	holder, err := config.NewHolder(c.cfgFile, logger)
	if err != nil {
		return fmt.Errorf("watch needs a config file: %w", err)
	}
	defer holder.Stop()

	holder.OnChange(onChange)
	if err := holder.WatchFile(); err != nil {
		return err
	}
	holder.WatchSignals()
	logger.Info().
		Strs("reloadable", config.ReloadableFields()).
		Strs("restart_required", config.NonReloadableFields()).
		Msg("watching for config changes")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("stopped watching")
	return nil
}

func (c *Channel) cleanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the generated output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			fs := sink.NewFS(cfg.Output.BasePath)

			force, _ := cmd.Flags().GetBool("force")
			if !force {
				p := NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				ok, err := p.Confirm(fmt.Sprintf("Remove %s and everything in it?", fs.Base()))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			if err := fs.Clean(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", fs.Base())
			return nil
		},
	}

	cmd.Flags().BoolP("force", "f", false, "Remove without confirmation")

	return cmd
}
