// Package main hosts the tapegen CLI.
//
// The root command reads an inventory spreadsheet, renders the label tape and
// optionally posts new rows to AppSheet. Flags override the TOML defaults file
// only when set explicitly. The config subcommands scaffold and inspect that
// file.
package main
