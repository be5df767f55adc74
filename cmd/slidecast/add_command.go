package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"slidecast/internal/api"
	"slidecast/internal/config"
	"slidecast/internal/pipeline"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var (
		jobID       string
		title       string
		subtitle    string
		threshold   float64
		interval    float64
		skip        float64
		imageFormat string
		quality     int
		fit         bool
		pattern     string
		extraArgs   []string
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Queue a video URL for conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := pipeline.EnqueueRequest{
				JobID:             jobID,
				URL:               args[0],
				Title:             title,
				Subtitle:          subtitle,
				ImageFormat:       imageFormat,
				FilePattern:       pattern,
				ExtraDownloadArgs: extraArgs,
			}
			if cmd.Flags().Changed("threshold") {
				req.SimilarityThreshold = &threshold
			}
			if cmd.Flags().Changed("interval") {
				req.MinIntervalSeconds = &interval
			}
			if cmd.Flags().Changed("skip") {
				req.SkipFirstSeconds = &skip
			}
			if cmd.Flags().Changed("quality") {
				req.ImageQuality = &quality
			}
			if cmd.Flags().Changed("fit") {
				fill := !fit
				req.Fill = &fill
			}

			return ctx.withService(func(service *api.Service, cfg *config.Config, logger *slog.Logger) error {
				view, err := service.Enqueue(cmd.Context(), req)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, view)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Queued job %s\n", view.JobID)
				fmt.Fprintf(out, "Run it with: slidecast run %s\n", view.JobID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&jobID, "job-id", "", "Job identifier (generated when omitted)")
	cmd.Flags().StringVar(&title, "title", "", "Deck title (defaults to the video title)")
	cmd.Flags().StringVar(&subtitle, "subtitle", "", "Deck subtitle")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Similarity threshold between 0 and 1")
	cmd.Flags().Float64Var(&interval, "interval", 0, "Minimum seconds between retained frames")
	cmd.Flags().Float64Var(&skip, "skip", 0, "Seconds to skip at the start of the video")
	cmd.Flags().StringVar(&imageFormat, "format", "", "Slide image format (jpg or png)")
	cmd.Flags().IntVar(&quality, "quality", 0, "Slide image quality between 1 and 100")
	cmd.Flags().BoolVar(&fit, "fit", false, "Letterbox images instead of filling the slide")
	cmd.Flags().StringVar(&pattern, "pattern", "", "Downloaded file name pattern")
	cmd.Flags().StringArrayVar(&extraArgs, "download-arg", nil, "Extra argument passed to the downloader (repeatable)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}
