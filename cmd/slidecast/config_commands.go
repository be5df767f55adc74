package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"slidecast/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if overwrite {
				if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("remove existing config: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to point at your BBDown, yt-dlp, and ffmpeg binaries if they are not on PATH.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			out := cmd.OutOrStdout()
			if exists {
				fmt.Fprintf(out, "Configuration at %s is valid\n", path)
			} else {
				fmt.Fprintln(out, "No configuration file found; built-in defaults are valid")
			}
			return nil
		},
	}
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			if exists {
				fmt.Fprintf(out, "# loaded from %s\n", path)
			} else {
				fmt.Fprintln(out, "# built-in defaults (no config file found)")
			}
			fmt.Fprintf(out, "data_dir             = %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "log_dir              = %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "bbdown               = %s\n", cfg.Tools.BBDown)
			fmt.Fprintf(out, "yt_dlp               = %s\n", cfg.Tools.YtDlp)
			fmt.Fprintf(out, "ffmpeg               = %s\n", cfg.Tools.FFmpeg)
			fmt.Fprintf(out, "ffprobe              = %s\n", cfg.Tools.FFprobe)
			fmt.Fprintf(out, "similarity_threshold = %.2f\n", cfg.Extraction.SimilarityThreshold)
			fmt.Fprintf(out, "min_interval_seconds = %.1f\n", cfg.Extraction.MinIntervalSeconds)
			fmt.Fprintf(out, "scan_fps             = %.1f\n", cfg.Extraction.ScanFPS)
			fmt.Fprintf(out, "image_format         = %s\n", cfg.Extraction.ImageFormat)
			fmt.Fprintf(out, "image_quality        = %d\n", cfg.Extraction.ImageQuality)
			fmt.Fprintf(out, "fill_mode            = %t\n", cfg.Extraction.FillMode)
			fmt.Fprintf(out, "workers              = %d\n", cfg.Workflow.Workers)
			fmt.Fprintf(out, "keep_downloads       = %t\n", cfg.Workflow.KeepDownloads)
			fmt.Fprintf(out, "log_level            = %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "log_format           = %s\n", cfg.Logging.Format)
			return nil
		},
	}
}
