package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ramunasnognys/offshore-mate-v3/internal/briefing"
	"github.com/ramunasnognys/offshore-mate-v3/internal/rotation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func briefingCmd() *cobra.Command {
	var raw bool
	var width int

	cmd := &cobra.Command{
		Use:   "briefing [date]",
		Short: "Generate an AI daily briefing for a day of the rotation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(args)
			if err != nil {
				return err
			}
			cfg, err := activeRotation(cmd.Context())
			if err != nil {
				return err
			}

			prompt, err := briefing.BuildPrompt(rotation.Classify(date, cfg))
			if err != nil {
				return fmt.Errorf("%s: %w", date.Format("2006-01-02"), err)
			}

			doc, err := generateBriefing(cmd.Context(), prompt)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if raw {
				fmt.Fprintln(out, doc)
				return nil
			}
			rendered, err := briefing.RenderTerminal(doc, width)
			if err != nil {
				logger.Warn("Markdown rendering failed, printing raw", zap.Error(err))
				fmt.Fprintln(out, doc)
				return nil
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print Markdown without terminal styling")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width")
	return cmd
}

// generateBriefing returns the briefing document, or the unavailable notice
// when no API key is configured
func generateBriefing(ctx context.Context, prompt briefing.Prompt) (string, error) {
	gen, err := briefing.NewGeminiGenerator(ctx,
		appConfig.Briefing.APIKey,
		appConfig.Briefing.Model,
		appConfig.Briefing.GetTimeout(),
		logger)
	if errors.Is(err, briefing.ErrUnavailable) {
		return briefing.UnavailableNotice, nil
	}
	if err != nil {
		return "", err
	}

	b, err := gen.Generate(ctx, prompt)
	if err != nil {
		logger.Error("Briefing generation failed", zap.Error(err))
		return "", fmt.Errorf("the AI assistant is currently unavailable, please try again later: %w", err)
	}
	return "# " + b.Title + "\n\n" + b.Document(), nil
}
