package config

import (
	"errors"
	"fmt"
	"net/url"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTape(); err != nil {
		return err
	}
	if err := c.validateLabel(); err != nil {
		return err
	}
	if err := c.validateInput(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTape() error {
	if err := ensurePositiveMap(map[string]int{
		"tape.height":   c.Tape.Height,
		"tape.qr_pixel": c.Tape.QRPixel,
	}); err != nil {
		return err
	}
	if c.Tape.Separator < 0 {
		return errors.New("tape.separator must be >= 0")
	}
	return nil
}

func (c *Config) validateLabel() error {
	if c.Label.FontSize <= 0 {
		return errors.New("label.font_size must be positive")
	}
	return nil
}

func (c *Config) validateInput() error {
	if utf8.RuneCountInString(c.Input.Delimiter) != 1 {
		return fmt.Errorf("input.delimiter must be a single character, got %q", c.Input.Delimiter)
	}
	if r, _ := utf8.DecodeRuneInString(c.Input.Delimiter); r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return fmt.Errorf("input.delimiter %q is not allowed", c.Input.Delimiter)
	}
	if _, err := htmlindex.Get(c.Input.Encoding); err != nil {
		return fmt.Errorf("input.encoding %q is not a known character set", c.Input.Encoding)
	}
	return nil
}

func (c *Config) validateStore() error {
	parsed, err := url.Parse(c.Store.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("store.base_url %q must be an absolute URL", c.Store.BaseURL)
	}
	if c.Store.TimeoutSeconds <= 0 {
		return errors.New("store.timeout_seconds must be positive")
	}
	if c.Store.Table == "" {
		return errors.New("store.table must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
