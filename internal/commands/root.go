package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"github.com/cardview-dev/cardview/internal/buildinfo"
	"github.com/cardview-dev/cardview/internal/config"
	"github.com/cardview-dev/cardview/internal/logging"
	"github.com/cardview-dev/cardview/internal/source"
)

// DefaultConfigFile is read from the working directory unless --config says otherwise.
const DefaultConfigFile = "cardview.yaml"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "cardview",
		Short:   "View an issued card and its transactions",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", DefaultConfigFile, "config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newCardCommand(opts))
	rootCmd.AddCommand(newTransactionsCommand(opts))
	rootCmd.AddCommand(newServeCommand(opts))

	return rootCmd
}

// setup resolves configuration (file, then .env and CARDVIEW_* variables,
// then flags) and builds the logger. Logs go to stderr.
func (o *globalOptions) setup(stderr io.Writer) (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, nil, err
	}

	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := config.ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, nil, fmt.Errorf("reading environment: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	logger, err := logging.New(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("configuring logging: %w", err)
	}
	return cfg, logger, nil
}

func newClient(cfg *config.Config, logger *slog.Logger) *source.Client {
	return source.NewClient(logger, cfg.Endpoints.Card, cfg.Endpoints.Transactions, cfg.HTTP.Timeout.Std())
}
