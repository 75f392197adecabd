package config

import (
	"fmt"
	"os"
	"strings"
)

// Normalize trims values, applies environment fallbacks, and expands paths.
// Load calls it; callers that mutate a Config afterwards (flag overrides)
// call it again before Validate.
func (c *Config) Normalize() error {
	c.normalizeLabel()
	c.normalizeInput()
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeLabel() {
	c.Label.Font = strings.TrimSpace(c.Label.Font)
	c.Label.FontWeight = strings.TrimSpace(c.Label.FontWeight)
	if c.Label.FontWeight == "" {
		c.Label.FontWeight = defaultFontWeight
	}
	dirs := make([]string, 0, len(c.Label.FontDirs))
	for _, dir := range c.Label.FontDirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		// Unresolvable font directories are skipped by the font scanner.
		if expanded, err := expandPath(dir); err == nil {
			dir = expanded
		}
		dirs = append(dirs, dir)
	}
	c.Label.FontDirs = dirs
}

func (c *Config) normalizeInput() {
	if c.Input.Delimiter == "" {
		c.Input.Delimiter = defaultDelimiter
	}
	if strings.EqualFold(c.Input.Delimiter, `\t`) || strings.EqualFold(c.Input.Delimiter, "tab") {
		c.Input.Delimiter = "\t"
	}
	c.Input.Encoding = strings.ToLower(strings.TrimSpace(c.Input.Encoding))
	if c.Input.Encoding == "" {
		c.Input.Encoding = defaultEncoding
	}
	c.Input.Sheet = strings.TrimSpace(c.Input.Sheet)
}

func (c *Config) normalizeStore() error {
	var err error
	c.Store.BaseURL = strings.TrimSpace(c.Store.BaseURL)
	if value, ok := os.LookupEnv(storeURLEnv); ok && strings.TrimSpace(value) != "" {
		c.Store.BaseURL = strings.TrimSpace(value)
	}
	if c.Store.BaseURL == "" {
		c.Store.BaseURL = defaultStoreBaseURL
	}
	c.Store.BaseURL = strings.TrimRight(c.Store.BaseURL, "/")
	c.Store.Table = strings.TrimSpace(c.Store.Table)
	if c.Store.Table == "" {
		c.Store.Table = defaultStoreTable
	}
	if c.Store.TimeoutSeconds <= 0 {
		c.Store.TimeoutSeconds = defaultStoreTimeout
	}

	c.Store.CredentialsPath = strings.TrimSpace(c.Store.CredentialsPath)
	if c.Store.CredentialsPath == "" {
		if value, ok := os.LookupEnv(credentialsEnv); ok {
			c.Store.CredentialsPath = strings.TrimSpace(value)
		}
	}
	if c.Store.CredentialsPath, err = expandPath(c.Store.CredentialsPath); err != nil {
		return fmt.Errorf("store.credentials_path: %w", err)
	}

	if strings.TrimSpace(c.Store.LockPath) == "" {
		c.Store.LockPath = defaultLockPath()
	}
	if c.Store.LockPath, err = expandPath(c.Store.LockPath); err != nil {
		return fmt.Errorf("store.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
