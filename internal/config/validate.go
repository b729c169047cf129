package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Exiftool.Binary == "" {
		return errors.New("exiftool.binary must be set")
	}
	if c.Fix.Workers < 1 {
		return errors.New("fix.workers must be positive")
	}
	if err := validateDays("fix.future_modified_days", c.Fix.FutureModifiedDays); err != nil {
		return err
	}
	if err := validateDays("fix.future_exif_days", c.Fix.FutureExifDays); err != nil {
		return err
	}
	if c.Journal.Enabled && c.Paths.JournalPath == "" {
		return errors.New("paths.journal_path must be set when the journal is enabled")
	}
	return c.validateLogging()
}

func validateDays(field string, days int) error {
	if days < DisabledDays {
		return fmt.Errorf("%s must be %d (disabled) or a non-negative number of days", field, DisabledDays)
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
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognised", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must not be negative")
	}
	return nil
}
