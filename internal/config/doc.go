// Package config loads, normalizes, and validates tapegen configuration data.
//
// It supplies repository defaults for tape geometry, caption fonts, spreadsheet
// parsing, and the remote store, reads TOML files from ~/.config/tapegen or the
// working directory, and honours environment fallbacks such as
// TAPEGEN_APPSHEET_CREDENTIALS. The CLI layers explicitly set flags on top and
// re-runs Normalize and Validate before any work starts.
package config
