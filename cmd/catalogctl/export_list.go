package main

import (
	"bytes"
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Cupcake005/sku-app/internal/usecase"
)

func newExportListCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-list",
		Short: "Show, export or clear the scratch export list",
	}

	cmd.AddCommand(newExportListShowCmd(c))
	cmd.AddCommand(newExportListExportCmd(c))
	cmd.AddCommand(newExportListClearCmd(c))

	return cmd
}

func newExportListShowCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the export list, most recent first",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = c.withApp(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		entries, err := c.app.ExportList.List(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Export list is empty")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SKU\tITEM\tPRICE\tSCANNED")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				e.SKU, e.DisplayName(), usecase.FormatPrice(e.Price), e.ScanTime.Format(time.DateTime))
		}
		return tw.Flush()
	})

	return cmd
}

func newExportListExportCmd(c *cli) *cobra.Command {
	var (
		out     string
		scanLog bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the list as catalog CSV, or with scan times using --scan-log",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&scanLog, "scan-log", false, "include the scan time of every entry")

	cmd.RunE = c.withApp(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		var (
			buf bytes.Buffer
			n   int
			err error
		)
		if scanLog {
			n, err = c.app.ExportList.ExportScanLog(ctx, &buf)
		} else {
			n, err = c.app.ExportList.ExportCSV(ctx, &buf)
		}
		if err != nil {
			return err
		}

		if err := writeOutput(cmd, out, &buf); err != nil {
			return err
		}
		if out != "" && out != "-" {
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", n, out)
		}
		return nil
	})

	return cmd
}

func newExportListClearCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry from the export list",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = c.withApp(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		if err := c.app.ExportList.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Export list cleared")
		return nil
	})

	return cmd
}
