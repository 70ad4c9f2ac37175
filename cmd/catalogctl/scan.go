package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cupcake005/sku-app/internal/domain"
	"github.com/Cupcake005/sku-app/internal/infrastructure/scanner"
	"github.com/Cupcake005/sku-app/internal/usecase"
)

func newScanCmd(c *cli) *cobra.Command {
	var add bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Look up barcodes read from stdin, one per line",
		Long: `Look up barcodes read from stdin, one per line, as sent by a USB
barcode reader in keyboard mode. The same code repeated within
scanner.dedupe_window is ignored.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&add, "add", false, "add every found product to the export list")

	cmd.RunE = c.withApp(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		decoder := scanner.NewLineDecoder(cmd.InOrStdin(), c.cfg.Scanner.DedupeWindow)
		out := cmd.OutOrStdout()

		err := c.app.Scan.Consume(ctx, decoder, add, func(r *domain.ScanResult) error {
			if !r.Found {
				_, err := fmt.Fprintf(out, "%s\tNOT FOUND\n", r.Code)
				return err
			}
			line := fmt.Sprintf("%s\t%s\t%s", r.Code, r.Product.DisplayName(), usecase.FormatPrice(r.Product.Price))
			if r.AddedToList {
				line += "\tADDED"
			}
			_, err := fmt.Fprintln(out, line)
			return err
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return cmd
}
