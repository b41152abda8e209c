package main

import (
	"fmt"
	"io"

	"github.com/SimonDaKappa/go-ctrldef"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <table>",
	Short: "Validate a control table",
	Long: `Compile a control table and print a summary per namespace.
Exits non-zero when the table does not compile.

Examples:
  ctrldef check controls.csv
  ctrldef check controls.csv --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	reg, err := compileFile(args[0])
	if err != nil {
		return err
	}
	summarize(cmd.OutOrStdout(), reg)
	return nil
}

// summarize prints one line per namespace, then its members.
func summarize(w io.Writer, reg *ctrldef.Registry) {
	fmt.Fprintf(w, "%d controls in %d namespaces\n", reg.Len(), len(reg.Namespaces()))

	for _, ns := range reg.Namespaces() {
		members, _ := reg.Members(ns)
		owner, _ := reg.Owner(ns)
		fmt.Fprintf(w, "\n%s (%s): %d\n", ns, owner.ControlName, len(members))

		for _, name := range members {
			d, _ := reg.Get(name)
			fmt.Fprintf(w, "  %-4d %-10s %s\n", d.LoadOrder, d.Category, name)
		}
	}
}
