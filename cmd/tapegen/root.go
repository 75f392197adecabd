package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tapegen/internal/config"
	"tapegen/internal/logging"
	"tapegen/internal/services"
	"tapegen/internal/workflow"
)

type runFlags struct {
	input            string
	output           string
	onlyLabel        bool
	labelFormat      string
	qrPixel          int
	separator        int
	tapeHeight       int
	font             string
	fontSize         int
	fontHeightOffset int
	fontWeight       string
	post             bool
	credentials      string
	table            string
	delimiter        string
	encoding         string
	sheet            string
	preview          bool
	logLevel         string
	logFormat        string
}

// flagAliases maps the short long-form spellings to canonical flag names.
var flagAliases = map[string]string{
	"lf":  "label_format",
	"qs":  "qrcode_pixel",
	"sw":  "separator",
	"th":  "tape_height",
	"fs":  "font_size",
	"fho": "font_height_offset",
	"fw":  "font_weight",
}

// legacyArgs rewrites single-dash aliases such as -lf or -th=90 to their
// double-dash form. Without it pflag would read -th as -t h. Arguments after
// "--" are left alone.
func legacyArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if strings.HasPrefix(arg, "-") && !strings.HasPrefix(arg, "--") {
			name, _, _ := strings.Cut(arg[1:], "=")
			if _, ok := flagAliases[name]; ok {
				arg = "-" + arg
			}
		}
		out = append(out, arg)
	}
	return out
}

func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	name = strings.ReplaceAll(name, "-", "_")
	if canonical, ok := flagAliases[name]; ok {
		name = canonical
	}
	return pflag.NormalizedName(name)
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var flags runFlags

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "tapegen",
		Short: "Render QR label tapes from an inventory sheet and sync new rows to AppSheet",
		Long: `tapegen reads a delimited inventory sheet whose second row holds per-column
directives (int, none, ref:<table>:<column>), derives a barcode for every row,
renders a printable tape of QR symbols and captions, and optionally posts rows
that are not yet in the remote table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runTapegen(cmd, cfg, flags)
		},
	}

	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log_level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log_format", "", "Log format (console, json)")

	f := rootCmd.Flags()
	f.StringVarP(&flags.input, "input", "i", "", "Inventory spreadsheet (CSV, TSV or XLSX)")
	f.StringVarP(&flags.output, "qrcode", "q", "", "Output tape image (.png, .bmp, .tif); omit to skip rendering")
	f.BoolVar(&flags.onlyLabel, "only_label", false, "Render captions without QR symbols")
	f.StringVar(&flags.labelFormat, "label_format", "", `Caption template with :Field: placeholders, "auto", or "" for none (alias --lf)`)
	f.IntVar(&flags.qrPixel, "qrcode_pixel", 0, "Pixel size of one QR module (alias --qs)")
	f.IntVar(&flags.separator, "separator", 0, "Gap in pixels after each symbol and caption (alias --sw)")
	f.IntVarP(&flags.tapeHeight, "tape_height", "t", 0, "Tape height in pixels (alias --th)")
	f.StringVarP(&flags.font, "font", "f", "", "Caption font family")
	f.IntVar(&flags.fontSize, "font_size", 0, "Caption font size in pixels (alias --fs)")
	f.IntVar(&flags.fontHeightOffset, "font_height_offset", 0, "Vertical caption shift in pixels (alias --fho)")
	f.StringVar(&flags.fontWeight, "font_weight", "", "Caption font weight, e.g. Regular or Bold (alias --fw)")
	f.BoolVarP(&flags.post, "post", "p", false, "Insert rows whose BarCode is not yet in the remote table")
	f.StringVarP(&flags.credentials, "api_key", "k", "", "AppSheet credentials JSON file (ApplicationId, ApplicationKey)")
	f.StringVar(&flags.table, "table", "", "Remote table receiving new rows")
	f.StringVarP(&flags.delimiter, "delimiter", "d", "", `CSV column separator ("tab" for TSV)`)
	f.StringVar(&flags.encoding, "encoding", "", "CSV character set, e.g. utf-8 or windows-1250")
	f.StringVar(&flags.sheet, "sheet", "", "Worksheet name for XLSX input")
	f.BoolVar(&flags.preview, "preview", false, "Print the normalized records as a table")
	_ = rootCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

func runTapegen(cmd *cobra.Command, cfg *config.Config, flags runFlags) error {
	if err := applyFlags(cmd.Flags(), cfg, flags); err != nil {
		return err
	}

	runID := workflow.NewRunID()
	logger, err := logging.NewFromConfig(cfg, runID, cmd.ErrOrStderr())
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "cli", "logging", "", err)
	}

	runner := workflow.NewRunner(cfg, logger, workflow.WithRunID(runID))
	summary, runErr := runner.Run(cmd.Context(), workflow.Request{
		InputPath:  flags.input,
		OutputPath: flags.output,
		Post:       flags.post,
	})

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	if flags.preview && len(summary.Records) > 0 {
		fmt.Fprintln(out, recordsTable(summary.Records))
	}
	for _, line := range summaryLines(summary, cfg, runErr, colorize) {
		fmt.Fprintln(out, line)
	}
	return runErr
}

// applyFlags copies explicitly set flags over the loaded configuration and
// re-validates it.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config, flags runFlags) error {
	set := fs.Changed
	if set("only_label") {
		cfg.Tape.OnlyLabel = flags.onlyLabel
	}
	if set("label_format") {
		cfg.Label.Format = flags.labelFormat
	}
	if set("qrcode_pixel") {
		cfg.Tape.QRPixel = flags.qrPixel
	}
	if set("separator") {
		cfg.Tape.Separator = flags.separator
	}
	if set("tape_height") {
		cfg.Tape.Height = flags.tapeHeight
	}
	if set("font") {
		cfg.Label.Font = flags.font
	}
	if set("font_size") {
		cfg.Label.FontSize = flags.fontSize
	}
	if set("font_height_offset") {
		cfg.Label.FontHeightOffset = flags.fontHeightOffset
	}
	if set("font_weight") {
		cfg.Label.FontWeight = flags.fontWeight
	}
	if set("api_key") {
		cfg.Store.CredentialsPath = flags.credentials
	}
	if set("table") {
		cfg.Store.Table = flags.table
	}
	if set("delimiter") {
		cfg.Input.Delimiter = flags.delimiter
	}
	if set("encoding") {
		cfg.Input.Encoding = flags.encoding
	}
	if set("sheet") {
		cfg.Input.Sheet = flags.sheet
	}
	if set("log_level") {
		cfg.Logging.Level = flags.logLevel
	}
	if set("log_format") {
		cfg.Logging.Format = flags.logFormat
	}

	if err := cfg.Normalize(); err != nil {
		return services.Wrap(services.ErrConfiguration, "cli", "apply flags", "", err)
	}
	if err := cfg.Validate(); err != nil {
		return services.Wrap(services.ErrConfiguration, "cli", "apply flags", "", err)
	}
	if cfg.Store.CredentialsPath == "" {
		return services.Wrap(services.ErrConfiguration, "cli", "apply flags",
			"--api_key is required (or set store.credentials_path / TAPEGEN_APPSHEET_CREDENTIALS)", nil)
	}
	return nil
}
