package config

import (
	"os"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExiftool()
	if err := c.normalizeFix(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	for _, p := range []*string{&c.Paths.LogDir, &c.Paths.JournalPath, &c.Paths.LockPath} {
		*p = strings.TrimSpace(*p)
		expanded, err := expandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

func (c *Config) normalizeExiftool() {
	if env := strings.TrimSpace(os.Getenv(EnvExiftool)); env != "" {
		c.Exiftool.Binary = env
	}
	c.Exiftool.Binary = strings.TrimSpace(c.Exiftool.Binary)
	if c.Exiftool.Binary == "" {
		c.Exiftool.Binary = defaultBinary
	}
}

func (c *Config) normalizeFix() error {
	if c.Fix.Workers <= 0 {
		c.Fix.Workers = runtime.NumCPU()
	}
	excludes := make([]string, 0, len(c.Fix.Exclude))
	for _, raw := range c.Fix.Exclude {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		expanded, err := expandPath(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		excludes = append(excludes, expanded)
	}
	c.Fix.Exclude = excludes
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
