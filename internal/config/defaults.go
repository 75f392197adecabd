package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// AutoCaption selects the Label column, or Value followed by Unit.
	AutoCaption = "auto"

	defaultTapeHeight       = 64
	defaultSeparator        = 5
	defaultQRPixel          = 2
	defaultLabelFormat      = AutoCaption
	defaultFontSize         = 12
	defaultFontWeight       = "Regular"
	defaultDelimiter        = ","
	defaultEncoding         = "utf-8"
	defaultStoreBaseURL     = "https://api.appsheet.com/api/v2"
	defaultStoreTable       = "Items"
	defaultStoreTimeout     = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	credentialsEnv          = "TAPEGEN_APPSHEET_CREDENTIALS"
	storeURLEnv             = "TAPEGEN_APPSHEET_URL"
	defaultLockRelativePath = "tapegen/sync.lock"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Tape: Tape{
			Height:    defaultTapeHeight,
			Separator: defaultSeparator,
			QRPixel:   defaultQRPixel,
		},
		Label: Label{
			Format:     defaultLabelFormat,
			FontSize:   defaultFontSize,
			FontWeight: defaultFontWeight,
			FontDirs:   defaultFontDirs(),
		},
		Input: Input{
			Delimiter: defaultDelimiter,
			Encoding:  defaultEncoding,
		},
		Store: Store{
			BaseURL:        defaultStoreBaseURL,
			Table:          defaultStoreTable,
			TimeoutSeconds: defaultStoreTimeout,
			LockPath:       defaultLockPath(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultFontDirs() []string {
	return []string{
		"~/.local/share/fonts",
		"~/.fonts",
		"/usr/local/share/fonts",
		"/usr/share/fonts",
		"/Library/Fonts",
		"/System/Library/Fonts",
	}
}

func defaultLockPath() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, defaultLockRelativePath)
	}
	return filepath.Join("~", ".cache", defaultLockRelativePath)
}
