package main

import (
	"fmt"
	"os"

	"github.com/SimonDaKappa/go-ctrldef"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile <table>",
	Short: "Compile a control table and print the descriptors",
	Long: `Compile a control table and print every registered descriptor in
load order, followed by the namespace index.

Examples:
  ctrldef compile controls.csv
  ctrldef compile controls.csv --format yaml --root-namespace settings`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	reg, err := compileFile(args[0])
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), cfg.Format, newDocument(reg))
}

// compileFile compiles the table at path with the current config.
func compileFile(path string) (*ctrldef.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	opts := cfg.CompileOpts()
	opts.Logger = &logger

	reg, _, err := ctrldef.Compile(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}
