package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"slidecast/internal/api"
	"slidecast/internal/config"
	"slidecast/internal/queue"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		statusFilter string
		jsonOut      bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []queue.Status
			if trimmed := strings.TrimSpace(statusFilter); trimmed != "" {
				status, ok := queue.ParseStatus(trimmed)
				if !ok {
					return fmt.Errorf("unknown status %q", trimmed)
				}
				statuses = append(statuses, status)
			}

			return ctx.withService(func(service *api.Service, cfg *config.Config, logger *slog.Logger) error {
				response, err := service.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				jobs := api.SortJobsNewestFirst(response.Jobs)
				if jsonOut {
					return writeJSON(cmd, api.JobListResponse{Jobs: jobs})
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs found")
					return nil
				}

				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					rows = append(rows, []string{
						job.JobID,
						job.Status,
						displayTitle(job),
						strconv.Itoa(job.SlideCount),
						displayTime(job.CreatedAt),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"JOB", "STATUS", "TITLE", "SLIDES", "CREATED"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Filter by status (pending, running, completed, failed)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func displayTitle(job api.JobView) string {
	if job.Title != "" {
		return truncate(job.Title, 40)
	}
	return truncate(job.URL, 40)
}

func displayTime(value string) string {
	t := api.ParseJobTime(value)
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
