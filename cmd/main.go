package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	service "github.com/okian/bookpop/internal/app"
	"github.com/okian/bookpop/internal/adapters/source"
	"github.com/okian/bookpop/internal/config"
	"github.com/okian/bookpop/internal/domain/scoring"
	"github.com/okian/bookpop/pkg/logger"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// cli carries state shared by all subcommands.
type cli struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "bookpop",
		Short: "Popular books ranked by Bayesian-smoothed ratings",
		Long: "bookpop ranks books by their average rating shrunk towards the global mean,\n" +
			"so a handful of perfect ratings cannot outrank a well-liked popular book.",
		Version:       version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for version
			if cmd.Name() == "version" {
				return nil
			}
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to a YAML config file (overrides BOOKPOP_CONFIG)")

	root.AddCommand(
		newServeCmd(c),
		newTopCmd(c),
		newImportCmd(c),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and initializes logging on stderr, keeping
// stdout free for command output.
func (c *cli) setup(cmd *cobra.Command) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(cmd.Context(), c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.cfg = cfg

	// Initialize logging
	if err := logger.InitWithWriter(cmd.ErrOrStderr(), cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

// openSource returns the configured ranking source and a function that
// releases it.
func openSource(cfg *config.Config) (source.Source, func() error, error) {
	switch cfg.Source {
	case "sqlite":
		db, err := source.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		src := source.NewCSV(cfg.RatingsPath, cfg.BooksPath, cfg.UsersPath,
			source.WithDelimiter(cfg.Delimiter()),
		)
		return src, func() error { return nil }, nil
	}
}

// newService wires a Service over src using the ranking settings of cfg.
func newService(cfg *config.Config, src source.Source) (*service.Service, error) {
	tieBreak, err := scoring.ParseTieBreak(cfg.TieBreak)
	if err != nil {
		return nil, err
	}
	return service.New(
		service.WithLogger(logger.Get()),
		service.WithSource(src),
		service.WithMMin(cfg.MMin),
		service.WithTieBreak(tieBreak),
	), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "bookpop", version)
		},
	}
}
