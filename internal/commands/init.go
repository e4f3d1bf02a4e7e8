package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cardview-dev/cardview/internal/config"
)

func newInitCommand() *cobra.Command {
	var cardURL string
	var transactionsURL string
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default cardview.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, cardURL, transactionsURL, force)
		},
	}

	cmd.Flags().StringVar(&cardURL, "card-url", config.DefaultCardURL, "card endpoint")
	cmd.Flags().StringVar(&transactionsURL, "transactions-url", config.DefaultTransactionsURL, "transactions endpoint")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")

	return cmd
}

func runInit(out io.Writer, dir, cardURL, transactionsURL string, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	path := filepath.Join(dir, DefaultConfigFile)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking config: %w", err)
		}
	}

	cfg := config.Default()
	cfg.Endpoints.Card = cardURL
	cfg.Endpoints.Transactions = transactionsURL
	if err := config.Save(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}
