package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	rootNamespace string
	indentGlyph   string
	strict        bool
	format        string
	logLevel      string

	cfg    Config
	logger zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ctrldef",
	Short: "Compile declarative control tables",
	Long: `ctrldef reads a control table (a header row, template rows and
indented data rows) and compiles it into a registry of control
descriptors.

Commands:
  ctrldef compile <table>   # print the compiled descriptors
  ctrldef check <table>     # validate and summarize namespaces
  ctrldef watch <table>     # recompile whenever the table changes`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file path (YAML)")
	flags.StringVar(&rootNamespace, "root-namespace", "", "namespace of depth-0 rows")
	flags.StringVar(&indentGlyph, "indent", "", "glyph marking one level of depth")
	flags.BoolVar(&strict, "strict", false, "reject values in excluded columns")
	flags.StringVarP(&format, "format", "f", "", "output format: json, yaml or spew")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}

// setup merges the config file with the flags set on the command line and
// builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("root-namespace") {
		loaded.RootNamespace = rootNamespace
	}
	if flags.Changed("indent") {
		loaded.IndentGlyph = indentGlyph
	}
	if flags.Changed("strict") {
		loaded.Strict = strict
	}
	if flags.Changed("format") {
		loaded.Format = format
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = *loaded

	logger, err = newLogger(cfg.LogLevel)
	return err
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().
		Timestamp().
		Logger(), nil
}
