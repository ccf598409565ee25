package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ramunasnognys/offshore-mate-v3/internal/export"
	"github.com/ramunasnognys/offshore-mate-v3/internal/rotation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the rotation to other calendar tools",
	}
	cmd.AddCommand(exportICSCmd())
	return cmd
}

func exportICSCmd() *cobra.Command {
	var (
		output  string
		cycles  int
		summary string
	)

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Write on-duty blocks as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := activeRotation(cmd.Context())
			if err != nil {
				return err
			}

			opts := export.ICSOptions{
				Cycles:  appConfig.Export.Cycles,
				Summary: appConfig.Export.Summary,
				Domain:  appConfig.Export.Domain,
			}
			if cmd.Flags().Changed("cycles") {
				opts.Cycles = cycles
			}
			if summary != "" {
				opts.Summary = summary
			}

			n, err := writeICSFile(cmd.OutOrStdout(), output, cfg, opts)
			if err != nil {
				return err
			}
			logger.Info("Calendar exported",
				zap.String("file", output),
				zap.Int("events", n),
				zap.String("schedule", cfg.String()))
			if output != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "iCal file exported: %s (%d hitches)\n", output, n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "offshore-schedule.ics", "Output file, - for stdout")
	cmd.Flags().IntVar(&cycles, "cycles", export.DefaultCycles, "Number of rotation cycles to export")
	cmd.Flags().StringVar(&summary, "summary", "", "Event title (default from config)")
	return cmd
}

// writeICSFile writes the calendar to path, or to stdout when path is "-".
// The file is closed before returning so a failed flush is reported.
func writeICSFile(stdout io.Writer, path string, cfg rotation.Config, opts export.ICSOptions) (int, error) {
	if path == "-" {
		return export.WriteICS(stdout, cfg, opts)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	n, err := export.WriteICS(f, cfg, opts)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close %s: %w", path, closeErr)
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}
