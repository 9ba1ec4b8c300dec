package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/mocktrade/broker"
	"github.com/rustyeddy/mocktrade/broker/rest"
	"github.com/rustyeddy/mocktrade/broker/sim"
	"github.com/rustyeddy/mocktrade/config"
	"github.com/rustyeddy/mocktrade/internal/logging"
	"github.com/rustyeddy/mocktrade/screen"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// RootConfig holds the global flags.
type RootConfig struct {
	ConfigPath string
	EnvPath    string
	BaseURL    string
	LogLevel   string
	Sim        bool
}

// app is what every subcommand gets after the root has loaded config and
// built the logger.
type app struct {
	rc  RootConfig
	cfg *config.Config
	log *zap.Logger
	loc *time.Location

	engine *sim.Engine
}

func NewRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}

	cmd := &cobra.Command{
		Use:           "mocktrade",
		Short:         "Order entry and trade booking desk for a mock trading API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global / persistent flags
	cmd.PersistentFlags().StringVar(&a.rc.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&a.rc.EnvPath, "env", "", "Path to .env file (default ./.env)")
	cmd.PersistentFlags().StringVar(&a.rc.BaseURL, "base-url", "", "Backend base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&a.rc.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().BoolVar(&a.rc.Sim, "sim", false, "Use the in-process simulator instead of the REST backend")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.load()
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = a.log.Sync()
	}

	cmd.AddCommand(
		newOrdersCmd(a),
		newTradesCmd(a),
		newServeCmd(a),
		newJournalCmd(a),
		newConfigCmd(),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mocktrade %s\n", Version)
		},
	})

	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// load reads the config file (or defaults), applies .env and environment
// overrides, then flags.
func (a *app) load() error {
	cfg := config.Default()
	if a.rc.ConfigPath != "" {
		loaded, err := config.LoadFromFile(a.rc.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(a.rc.EnvPath)

	if a.rc.BaseURL != "" {
		cfg.Backend.BaseURL = a.rc.BaseURL
	}
	if a.rc.LogLevel != "" {
		cfg.Log.Level = a.rc.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	loc, err := cfg.Display.Location()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	a.cfg = cfg
	a.loc = loc
	a.log = log
	return nil
}

// backend is the REST client, or with --sim one simulator shared by every
// screen in this process.
func (a *app) backend() (broker.Broker, error) {
	if a.rc.Sim {
		if a.engine == nil {
			a.engine = sim.NewEngine()
		}
		return a.engine, nil
	}

	timeout, err := a.cfg.Backend.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return rest.NewClient(a.cfg.Backend.BaseURL, timeout)
}

func (a *app) screenOptions() []screen.Option {
	return []screen.Option{
		screen.WithLogger(a.log),
		screen.WithLocation(a.loc),
		screen.WithSink(screen.DirSink(a.cfg.Export.Dir)),
	}
}
