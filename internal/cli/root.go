package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/bootstrap"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/config"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/observability/logging"
)

const serviceName = "yatra-cli"

// env carries what every subcommand needs after the root pre-run.
type env struct {
	cfgFile  string
	logLevel string

	cfg    config.Config
	logger *slog.Logger
	out    io.Writer
	in     io.Reader
}

func (e *env) openApp(ctx context.Context) (*bootstrap.App, error) {
	app, err := bootstrap.New(ctx, e.cfg, bootstrap.Options{Logger: e.logger})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return app, nil
}

func NewRootCommand() *cobra.Command {
	e := &env{out: os.Stdout, in: os.Stdin}

	root := &cobra.Command{
		Use:           "yatra",
		Short:         "yatra: multilingual financial-literacy RAG assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFile(e.cfgFile)
			if err != nil {
				return err
			}
			level := cfg.LogLevel
			if cmd.Flags().Changed("log-level") {
				level = e.logLevel
			}
			// Logs go to stderr so stdout stays clean for answers and MCP frames.
			e.cfg = cfg
			e.logger = logging.NewLogger(os.Stderr, serviceName, level, "text")
			e.out = cmd.OutOrStdout()
			e.in = cmd.InOrStdin()
			slog.SetDefault(e.logger)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&e.cfgFile, "config", "c", "", "config file (yaml or json); environment variables override it")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newQueryCommand(e),
		newStatsCommand(e),
		newLanguagesCommand(e),
		newIngestCommand(e),
		newMCPCommand(e),
	)
	return root
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, errorColor.Sprint("error: "), err)
		os.Exit(1)
	}
}
