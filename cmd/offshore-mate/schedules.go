package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/ramunasnognys/offshore-mate-v3/internal/schedule"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func schedulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedules",
		Aliases: []string{"schedule"},
		Short:   "Manage saved schedules",
	}
	cmd.AddCommand(schedulesListCmd(), schedulesAddCmd(), schedulesDeleteCmd())
	return cmd
}

func openRepository(cmd *cobra.Command) (schedule.Repository, error) {
	repo, err := schedule.Open(cmd.Context(), appConfig.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open schedule storage: %w", err)
	}
	return repo, nil
}

func schedulesListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved schedules, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			saved, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, saved, func(w io.Writer) {
				if len(saved) == 0 {
					fmt.Fprintln(w, "No saved schedules.")
					return
				}
				fmt.Fprintln(w, schedulesTable(saved))
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json or yaml")
	return cmd
}

func schedulesTable(saved []schedule.Schedule) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers("ID", "NAME", "PATTERN", "START", "CREATED")
	for _, s := range saved {
		t.Row(s.ID, s.Name, s.Pattern, s.StartDate, s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return t.String()
}

func schedulesAddCmd() *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "add <start-date> <pattern>",
		Short: "Save a schedule",
		Example: `  offshore-mate schedules add 2024-01-01 14/14 --name "North Sea"
  offshore-mate schedules add 2024-03-04 21/21`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := schedule.New(name, description, args[0], args[1], time.Now())
			if err != nil {
				return err
			}

			repo, err := openRepository(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.Add(cmd.Context(), s); err != nil {
				return err
			}
			logger.Info("Schedule saved",
				zap.String("id", s.ID),
				zap.String("pattern", s.Pattern),
				zap.String("start_date", s.StartDate))
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %q (%s from %s) as %s\n", s.Name, s.Pattern, s.StartDate, s.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Schedule name (default \"Rotation (<pattern>)\")")
	cmd.Flags().StringVar(&description, "description", "", "Optional description")
	return cmd
}

func schedulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved schedule",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("schedule %s: %w", args[0], err)
			}
			logger.Info("Schedule deleted", zap.String("id", args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
