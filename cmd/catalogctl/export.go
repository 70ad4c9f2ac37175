package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd(c *cli) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog as CSV",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	cmd.RunE = c.withApp(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		var buf bytes.Buffer
		n, err := c.app.Catalog.ExportCSV(ctx, &buf)
		if err != nil {
			return err
		}

		if err := writeOutput(cmd, out, &buf); err != nil {
			return err
		}
		if out != "" && out != "-" {
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d products to %s\n", n, out)
		}
		return nil
	})

	return cmd
}

func newNextSKUCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next-sku BASE",
		Short: "Print the first free variant SKU for BASE (BASE+A ... BASE+Z)",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = c.withApp(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		sku, err := c.app.Catalog.NextVariantSKU(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), sku)
		return nil
	})

	return cmd
}
