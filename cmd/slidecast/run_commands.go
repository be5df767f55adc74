package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"slidecast/internal/api"
	"slidecast/internal/config"
	"slidecast/internal/queue"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "run <job-id>",
		Short: "Process one pending job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(service *api.Service, cfg *config.Config, logger *slog.Logger) error {
				view, err := service.Process(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, view)
				}
				out := cmd.OutOrStdout()
				switch view.Status {
				case string(queue.StatusCompleted):
					fmt.Fprintf(out, "Job %s completed with %d slides\n", view.JobID, view.SlideCount)
					fmt.Fprintf(out, "Deck: %s\n", view.DeckPath)
				case string(queue.StatusFailed):
					fmt.Fprintf(out, "Job %s failed: %s\n", view.JobID, view.ErrorMessage)
				default:
					fmt.Fprintf(out, "Job %s is %s\n", view.JobID, view.Status)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func newRunQueueCommand(ctx *commandContext) *cobra.Command {
	var (
		workers int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "run-queue",
		Short: "Process every pending job, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(service *api.Service, cfg *config.Config, logger *slog.Logger) error {
				// Jobs stranded in running state by a previous crash are
				// failed before new work is dispatched.
				if _, err := service.RecoverInterrupted(cmd.Context()); err != nil {
					return err
				}

				response, err := service.ProcessQueue(cmd.Context(), workers)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, response)
				}
				out := cmd.OutOrStdout()
				if response.Dispatched == 0 {
					fmt.Fprintln(out, "No pending jobs")
					return nil
				}
				fmt.Fprintf(out, "Processed %d job(s): %d completed, %d failed\n",
					response.Dispatched, response.Completed, response.Failed)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent jobs (defaults to the configured worker count)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func newReprocessCommand(ctx *commandContext) *cobra.Command {
	var (
		now     bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "reprocess <job-id>",
		Short: "Re-arm a completed or failed job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(service *api.Service, cfg *config.Config, logger *slog.Logger) error {
				view, err := service.Reprocess(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if now {
					view, err = service.Process(cmd.Context(), view.JobID)
					if err != nil {
						return err
					}
				}
				if jsonOut {
					return writeJSON(cmd, view)
				}
				out := cmd.OutOrStdout()
				if now {
					fmt.Fprintf(out, "Job %s reprocessed; status is now %s\n", view.JobID, view.Status)
				} else {
					fmt.Fprintf(out, "Job %s reset to pending\n", view.JobID)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&now, "now", false, "Process the job immediately after resetting it")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show job counts per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(service *api.Service, cfg *config.Config, logger *slog.Logger) error {
				response, err := service.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, response)
				}
				out := cmd.OutOrStdout()
				total := 0
				for _, status := range queue.AllStatuses() {
					count := response.Counts[string(status)]
					total += count
					fmt.Fprintf(out, "%-10s %d\n", status, count)
				}
				fmt.Fprintf(out, "%-10s %d\n", "total", total)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}
