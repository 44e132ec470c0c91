// Command brule compiles, matches and reverses route rules without running a server.
package main

import (
	"fmt"
	"os"

	"github.com/advdv/broute"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var typesFile string

	rootCmd := &cobra.Command{
		Use:   "brule",
		Short: "Inspect broute rules",
		Long: `brule compiles route rules the same way the router does at registration time.

Use it to check a rule for errors, to see which paths it matches and
which URL it builds for a set of parameters. Custom placeholder types can
be loaded from a YAML file:

  types:
    hex: "[0-9a-f]+"
    year: "\\d{4}"`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&typesFile, "types", "t", "",
		"YAML file with additional placeholder types")

	types := func() (*broute.TypeRegistry, error) { return loadTypes(typesFile) }

	rootCmd.AddCommand(
		compileCmd(types),
		matchCmd(types),
		urlCmd(types),
		typesCmd(types),
	)

	return rootCmd
}
