package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"slidecast/internal/api"
	"slidecast/internal/config"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show the full record of one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(service *api.Service, cfg *config.Config, logger *slog.Logger) error {
				view, err := service.Describe(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, view)
				}
				printJobView(cmd, view)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func printJobView(cmd *cobra.Command, view api.JobView) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job:        %s\n", view.JobID)
	fmt.Fprintf(out, "Status:     %s\n", view.Status)
	fmt.Fprintf(out, "URL:        %s\n", view.URL)
	if view.Title != "" {
		fmt.Fprintf(out, "Title:      %s\n", view.Title)
	}
	if view.Subtitle != "" {
		fmt.Fprintf(out, "Subtitle:   %s\n", view.Subtitle)
	}
	fmt.Fprintf(out, "Threshold:  %.2f\n", view.SimilarityThreshold)
	fmt.Fprintf(out, "Interval:   %.1fs\n", view.MinIntervalSeconds)
	if view.SkipFirstSeconds > 0 {
		fmt.Fprintf(out, "Skip:       %.1fs\n", view.SkipFirstSeconds)
	}
	if view.DurationSeconds > 0 {
		fmt.Fprintf(out, "Duration:   %.1fs\n", view.DurationSeconds)
	}
	if view.SlideCount > 0 {
		fmt.Fprintf(out, "Slides:     %d\n", view.SlideCount)
	}
	if view.VideoPath != "" {
		fmt.Fprintf(out, "Video:      %s\n", view.VideoPath)
	}
	if view.DeckPath != "" {
		fmt.Fprintf(out, "Deck:       %s\n", view.DeckPath)
	}
	if view.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:      %s\n", view.ErrorMessage)
	}
	if view.CreatedAt != "" {
		fmt.Fprintf(out, "Created:    %s\n", displayTime(view.CreatedAt))
	}
	if view.StartedAt != "" {
		fmt.Fprintf(out, "Started:    %s\n", displayTime(view.StartedAt))
	}
	if view.CompletedAt != "" {
		fmt.Fprintf(out, "Completed:  %s\n", displayTime(view.CompletedAt))
	}
}
