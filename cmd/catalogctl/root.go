package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Cupcake005/sku-app/config"
	"github.com/Cupcake005/sku-app/internal/bootstrap"
	"github.com/Cupcake005/sku-app/internal/logging"
)

// cli carries what every subcommand needs once the config is loaded
type cli struct {
	cfg *config.Config
	app *bootstrap.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Manage the shop catalog and export list from the command line",
		Long: `catalogctl works on the same catalog store and export list as the
server, configured through config.yaml, .env or SKUAPP_* variables.`,
		SilenceUsage: true,
	}

	root.AddCommand(newImportCmd(c))
	root.AddCommand(newExportCmd(c))
	root.AddCommand(newScanCmd(c))
	root.AddCommand(newNextSKUCmd(c))
	root.AddCommand(newExportListCmd(c))

	return root
}

// withApp loads the configuration and wires the services around fn,
// releasing them when fn returns
func (c *cli) withApp(fn func(ctx context.Context, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

		ctx := cmd.Context()
		app, err := bootstrap.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		c.cfg, c.app = cfg, app
		return fn(ctx, cmd, args)
	}
}

// writeOutput writes data to path, or to the command's stdout when path
// is empty or "-"
func writeOutput(cmd *cobra.Command, path string, data *bytes.Buffer) error {
	if path == "" || path == "-" {
		_, err := io.Copy(cmd.OutOrStdout(), data)
		return err
	}
	if err := os.WriteFile(path, data.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
