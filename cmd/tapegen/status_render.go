package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"tapegen/internal/config"
	"tapegen/internal/services"
	"tapegen/internal/workflow"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 10
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// summaryLines renders the outcome of a run, one status line per phase.
func summaryLines(summary *workflow.Summary, cfg *config.Config, runErr error, colorize bool) []string {
	lines := renderSectionHeader("tapegen "+shortRunID(summary.RunID), colorize)

	lines = append(lines, renderStatusLine("Input", statusInfo,
		fmt.Sprintf("%s (%d records)", summary.InputPath, len(summary.Records)), colorize))

	switch {
	case summary.OutputPath != "":
		msg := fmt.Sprintf("%s (%dx%d px", summary.OutputPath, summary.Width, summary.Height)
		if summary.Font != "" {
			msg += ", font " + summary.Font
		}
		lines = append(lines, renderStatusLine("Tape", statusOK, msg+")", colorize))
	default:
		lines = append(lines, renderStatusLine("Tape", statusInfo, "not rendered", colorize))
	}

	switch {
	case summary.Sync != nil:
		kind := statusOK
		if summary.Sync.Inserted == 0 {
			kind = statusInfo
		}
		lines = append(lines, renderStatusLine("Sync", kind,
			fmt.Sprintf("%s: %d inserted, %d skipped", cfg.Store.Table, summary.Sync.Inserted, summary.Sync.Skipped), colorize))
	default:
		lines = append(lines, renderStatusLine("Sync", statusInfo, "not requested", colorize))
	}

	if runErr != nil {
		lines = append(lines, renderStatusLine("Result", statusError, services.Category(runErr), colorize))
		return lines
	}
	lines = append(lines, renderStatusLine("Result", statusOK,
		fmt.Sprintf("done in %s, %d remote reads", summary.Duration.Round(time.Millisecond), summary.Fetches), colorize))
	return lines
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
