package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/joeycumines/go-syncscope/internal/stress"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvariant       = errors.New("invariant failed")
)

// NewRootCmd builds the syncstress command tree.
func NewRootCmd(name, shortDesc, longDesc string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           name,
		Short:         shortDesc,
		Long:          longDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaults := stress.DefaultConfig()
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Load the scenario from a YAML file; flags override it")
	flags.Int("workers", defaults.Workers, "Number of concurrent workers")
	flags.Int("iterations", defaults.Iterations, "Operations per worker")
	flags.Int64("permits", defaults.Permits, "Semaphore permits")
	flags.String("platform", defaults.Platform, "Execution platform (host, futex, lane)")
	flags.String("scope", defaults.Scope, "Synchronization scope (lane, group, device, system)")
	flags.Int("groups", defaults.Groups, "Lane groups, for the lane platform")
	flags.Bool("metrics", defaults.Metrics, "Collect and report wait metrics")
	flags.String("log_level", "warn", "Set the log level (trace, debug, info, notice, warn, error)")
	flags.Bool("plain", false, "Disable styled output")

	cmd.AddCommand(newPrimitiveCmd(stress.PrimitiveSemaphore, "Stress a counting semaphore"))
	cmd.AddCommand(newPrimitiveCmd(stress.PrimitiveLatch, "Stress single-use latches"))
	cmd.AddCommand(newPrimitiveCmd(stress.PrimitiveBarrier, "Stress a cyclic barrier"))
	cmd.AddCommand(newPrimitiveCmd("", "Run the scenario as configured"))

	return cmd
}

func newPrimitiveCmd(primitive, short string) *cobra.Command {
	use := primitive
	if use == "" {
		use = "run"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			cfg, opts, err := loadConfig(cc)
			if err != nil {
				return err
			}
			if primitive != "" {
				cfg.Primitive = primitive
			}

			level, err := parseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			logger := newLogger(cc.ErrOrStderr(), level)

			undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
				logger.Debug().Logf(format, args...)
			}))
			defer undo()
			if err != nil {
				logger.Warning().Err(err).Log("failed to set GOMAXPROCS")
			}

			result, err := stress.Run(cc.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("%s: %w", cfg.Primitive, err)
			}

			out := cc.OutOrStdout()
			styled := false
			if f, ok := out.(*os.File); ok && !opts.plain {
				styled = isatty.IsTerminal(f.Fd())
			}
			if err := renderReport(out, result, styled); err != nil {
				return err
			}
			if !result.OK() {
				return fmt.Errorf("%s: %w: %d failures", cfg.Primitive, ErrInvariant, result.Failures)
			}
			return nil
		},
	}
}

type outputOptions struct {
	logLevel string
	plain    bool
}

// loadConfig resolves the scenario: defaults, then the config file, then any
// flags set explicitly.
func loadConfig(cc *cobra.Command) (stress.Config, outputOptions, error) {
	var (
		merr error
		opts outputOptions
		cfg  = stress.DefaultConfig()
	)
	flags := cc.Flags()

	path, err := flags.GetString("config")
	if err != nil {
		merr = multierror.Append(merr, err)
	} else if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			merr = multierror.Append(merr, err)
		}
	}

	if opts.logLevel, err = flags.GetString("log_level"); err != nil {
		merr = multierror.Append(merr, err)
	}
	if opts.plain, err = flags.GetBool("plain"); err != nil {
		merr = multierror.Append(merr, err)
	}

	for _, f := range []struct {
		name string
		get  func() error
	}{
		{"workers", func() (err error) { cfg.Workers, err = flags.GetInt("workers"); return }},
		{"iterations", func() (err error) { cfg.Iterations, err = flags.GetInt("iterations"); return }},
		{"permits", func() (err error) { cfg.Permits, err = flags.GetInt64("permits"); return }},
		{"platform", func() (err error) { cfg.Platform, err = flags.GetString("platform"); return }},
		{"scope", func() (err error) { cfg.Scope, err = flags.GetString("scope"); return }},
		{"groups", func() (err error) { cfg.Groups, err = flags.GetInt("groups"); return }},
		{"metrics", func() (err error) { cfg.Metrics, err = flags.GetBool("metrics"); return }},
	} {
		if !flags.Changed(f.name) {
			continue
		}
		if err := f.get(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}

	if merr != nil {
		return cfg, opts, fmt.Errorf("%w: %w", ErrInvalidArgument, merr)
	}
	return cfg, opts, nil
}

func loadConfigFile(path string, cfg *stress.Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return stress.LoadConfig(f, cfg)
}
