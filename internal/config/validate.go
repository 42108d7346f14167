package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateExtractor(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.ArchiveRoot) == "" {
		return errors.New("paths.archive_root must be set")
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.StagingDir == c.Paths.ArchiveRoot {
		return errors.New("paths.staging_dir must differ from paths.archive_root")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.Workers <= 0 {
		return errors.New("ingest.workers must be positive")
	}
	total := len(c.Ingest.ImageExtensions) + len(c.Ingest.VideoExtensions) + len(c.Ingest.DocumentExtensions)
	if total == 0 {
		return errors.New("ingest extension lists must name at least one extension")
	}
	seen := make(map[string]string, total)
	for listName, list := range map[string][]string{
		"ingest.image_extensions":    c.Ingest.ImageExtensions,
		"ingest.video_extensions":    c.Ingest.VideoExtensions,
		"ingest.document_extensions": c.Ingest.DocumentExtensions,
	} {
		for _, ext := range list {
			if prior, ok := seen[ext]; ok && prior != listName {
				return fmt.Errorf("extension %q listed in both %s and %s", ext, prior, listName)
			}
			seen[ext] = listName
		}
	}
	return nil
}

func (c *Config) validateExtractor() error {
	if strings.TrimSpace(c.Extractor.Binary) == "" {
		return errors.New("extractor.binary must be set")
	}
	if c.Extractor.TimeoutSeconds <= 0 {
		return errors.New("extractor.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
