package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/ramunasnognys/offshore-mate-v3/internal/render"
	"github.com/ramunasnognys/offshore-mate-v3/internal/rotation"
	"github.com/ramunasnognys/offshore-mate-v3/internal/tui"
	"github.com/ramunasnognys/offshore-mate-v3/pkg/dateutil"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func statusCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "status [date]",
		Short: "Show the rotation status of a day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(args)
			if err != nil {
				return err
			}
			cal, err := activeCalendar(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if days < 1 {
				days = 1
			}
			for i := 0; i < days; i++ {
				fmt.Fprintln(out, render.Day(cal.GetDayInfo(dateutil.AddDays(date, i))))
			}

			cfg := cal.Config()
			horizon := dateutil.AddDays(date, 2*cfg.Pattern.CycleLength())
			for _, b := range rotation.BlocksBetween(cfg, date, horizon) {
				if b.Contains(date) {
					last := dateutil.AddDays(b.End, -1)
					fmt.Fprintf(out, "Hitch ends: %s (%d of %d days done)\n",
						last.Format("Mon 2006-01-02"), dateutil.DaysBetween(b.Start, date)+1, b.Days())
					continue
				}
				if b.Start.After(date) {
					fmt.Fprintf(out, "Next hitch: %s (in %d days)\n",
						b.Start.Format("Mon 2006-01-02"), dateutil.DaysBetween(date, b.Start))
					break
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "n", 1, "Number of consecutive days to show")
	return cmd
}

func monthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Print a month calendar (default current month)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := monthArg(args)
			if err != nil {
				return err
			}
			cal, err := activeCalendar(cmd.Context())
			if err != nil {
				return err
			}

			styles := render.DefaultStyles()
			info := cal.GetMonthInfo(year, month)
			view := lipgloss.JoinHorizontal(lipgloss.Top,
				styles.Box.Render(styles.Month(info)),
				" ",
				styles.Summary(cal.Config(), info, rotation.AnnualOnDuty(cal.Config())),
			)
			fmt.Fprintln(cmd.OutOrStdout(), view)
			fmt.Fprintln(cmd.OutOrStdout(), styles.Legend())
			return nil
		},
	}
}

func yearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "year [YYYY]",
		Short: "Print a year overview (default current year)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year := dateutil.Today().Year()
			if len(args) == 1 {
				y, err := strconv.Atoi(args[0])
				if err != nil || y < 1 {
					return fmt.Errorf("unrecognized year %q", args[0])
				}
				year = y
			}
			cal, err := activeCalendar(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Year(cal.GetYearInfo(year)))
			return nil
		},
	}
}

// monthStats is the machine-readable form of the stats command
type monthStats struct {
	Schedule     string  `json:"schedule" yaml:"schedule"`
	Month        string  `json:"month" yaml:"month"`
	OnDuty       int     `json:"onDuty" yaml:"onDuty"`
	OffDuty      int     `json:"offDuty" yaml:"offDuty"`
	Transit      int     `json:"transit" yaml:"transit"`
	Undefined    int     `json:"undefined" yaml:"undefined"`
	OnDutyShare  float64 `json:"onDutyShare" yaml:"onDutyShare"`
	AnnualOnDuty int     `json:"annualOnDuty" yaml:"annualOnDuty"`
}

func statsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "stats [YYYY-MM]",
		Short: "Count on-duty, transit and off-duty days of a month",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := monthArg(args)
			if err != nil {
				return err
			}
			cfg, err := activeRotation(cmd.Context())
			if err != nil {
				return err
			}

			counts := rotation.MonthlyCounts(cfg, year, month)
			stats := monthStats{
				Schedule:     cfg.String(),
				Month:        dateutil.StartOfMonth(year, month).Format("2006-01"),
				OnDuty:       counts.OnDuty,
				OffDuty:      counts.OffDuty,
				Transit:      counts.Transit,
				Undefined:    counts.Undefined,
				OnDutyShare:  counts.OnDutyShare(),
				AnnualOnDuty: rotation.AnnualOnDuty(cfg),
			}
			return writeOutput(cmd.OutOrStdout(), output, stats, func(w io.Writer) {
				fmt.Fprintf(w, "Schedule:         %s\n", stats.Schedule)
				fmt.Fprintf(w, "Month:            %s\n", render.MonthTitle(year, month))
				fmt.Fprintf(w, "  On-duty days:   %d\n", stats.OnDuty)
				fmt.Fprintf(w, "  Transit days:   %d\n", stats.Transit)
				fmt.Fprintf(w, "  Off-duty days:  %d\n", stats.OffDuty)
				if stats.Undefined > 0 {
					fmt.Fprintf(w, "  Before start:   %d\n", stats.Undefined)
				}
				fmt.Fprintf(w, "  On-duty share:  %.0f%%\n", stats.OnDutyShare*100)
				fmt.Fprintf(w, "Work days (1yr):  %d\n", stats.AnnualOnDuty)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json or yaml")
	return cmd
}

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the calendar interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := activeCalendar(cmd.Context())
			if err != nil {
				return err
			}
			return tui.Run(cal, time.Now())
		},
	}
}

// writeOutput encodes v as json or yaml, or calls table for the human format
func writeOutput(w io.Writer, format string, v any, table func(io.Writer)) error {
	switch format {
	case "", "table":
		table(w)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q, want table, json or yaml", format)
	}
}
