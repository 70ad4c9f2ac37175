package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Cupcake005/sku-app/internal/domain"
)

func newImportCmd(c *cli) *cobra.Command {
	var (
		file    string
		replace bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a catalog CSV file",
		Long: `Import a six-column catalog CSV file. Rows with a known SKU are
updated and the rest inserted; --replace deletes the whole catalog first.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog CSV file to import (required)")
	cmd.Flags().BoolVar(&replace, "replace", false, "delete the existing catalog before importing")
	_ = cmd.MarkFlagRequired("file")

	cmd.RunE = c.withApp(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", file, err)
		}
		defer f.Close()

		mode := domain.ImportUpsert
		if replace {
			mode = domain.ImportReplace
		}

		report, err := c.app.Catalog.Import(ctx, f, mode)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d products from %s (%d parsed, %d dropped, mode %s)\n",
			report.Written, file, report.Parsed, report.Dropped, report.Mode)
		return nil
	})

	return cmd
}
