// Rodbus-cli is a command line Modbus master client.
//
// It provides gateway discovery, one-shot reads and writes against the four
// Modbus data tables, and a registry of named devices so frequently used
// endpoints don't have to be retyped.
//
// Usage:
//
//	rodbus-cli [command] [flags]
//
// See 'rodbus-cli --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fossabot/rodbus/internal/logging"
	"github.com/fossabot/rodbus/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rodbus-cli",
	Short: "Modbus Master Client",
	Long: `A command line Modbus master client.

Provides gateway discovery, one-shot reads and writes for coils, discrete
inputs, and registers, and a registry of named devices.

Set RODBUS_LOG_LEVEL=debug to see wire-level frame logging.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.InitializeFromEnv()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rodbus-cli %s (commit: %s)\n", version.Version, version.Commit)
	},
}
