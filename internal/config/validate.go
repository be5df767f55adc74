package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateExtraction() error {
	e := c.Extraction
	if e.SimilarityThreshold < 0 || e.SimilarityThreshold > 1 {
		return errors.New("extraction.similarity_threshold must be between 0 and 1")
	}
	if e.MinIntervalSeconds <= 0 {
		return errors.New("extraction.min_interval_seconds must be greater than 0")
	}
	if e.SkipFirstSeconds < 0 {
		return errors.New("extraction.skip_first_seconds must not be negative")
	}
	if e.ScanFPS <= 0 {
		return errors.New("extraction.scan_fps must be greater than 0")
	}
	if e.ImageFormat != "jpg" && e.ImageFormat != "png" {
		return fmt.Errorf("extraction.image_format must be jpg or png, got %q", e.ImageFormat)
	}
	if e.ImageQuality < 1 || e.ImageQuality > 100 {
		return errors.New("extraction.image_quality must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Workers < 1 {
		return errors.New("workflow.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
