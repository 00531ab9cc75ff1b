// cmd/tools/triage-cli/root.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "triage-cli",
		Short: "Run the maintenance diagnosis engine offline",
		Long: "triage-cli diagnoses a maintenance ticket from the command line and manages the\n" +
			"activity registry the triage workers validate their job variables against.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.AddCommand(newDiagnoseCmd())
	root.AddCommand(newRegistryCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
