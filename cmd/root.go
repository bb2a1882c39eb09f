package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/codelens/codelens/pkg/codelens"
	"github.com/codelens/codelens/pkg/version"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "codelens",
	Short:   "codelens - surface code-quality findings ranked by risk",
	Long:    "codelens scans a codebase's structure, history, and concepts and reports\na ranked list of findings: hubs, hotspots, silos, clones, and architectural\ndrift. It fuses graph, temporal, and semantic signals into one risk score\nper file rather than scoring any one dimension in isolation.",
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.SilenceErrors = true
}

// Execute runs the root command and exits with code 1 on error.
// codelens.ExitError is handled specially: its Code is used as the exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *codelens.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
