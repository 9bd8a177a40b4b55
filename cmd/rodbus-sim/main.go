// Rodbus-sim is a Modbus TCP device simulator.
//
// It serves the four standard data tables over plain TCP (or TLS) and
// answers the read and single-write function codes, which makes it a
// convenient endpoint for testing rodbus-cli and rodbus-mon without
// real hardware.
//
// Usage:
//
//	rodbus-sim serve [flags]
//
// See 'rodbus-sim serve --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fossabot/rodbus/internal/sim"
	"github.com/fossabot/rodbus/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rodbus-sim",
	Short: "Modbus TCP Device Simulator",
	Long: `A standalone Modbus TCP device simulator.

The simulator exposes the four standard data tables and answers the
read function codes (0x01-0x04) and the single-write function codes
(0x05, 0x06). Out-of-range requests receive IllegalDataAddress
exception responses, matching the behavior of real devices.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	host      string
	port      int
	certPath  string
	keyPath   string
	enableTLS bool
	logLevel  string
	coils     int
	discrete  int
	holding   int
	input     int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulator",
	Long: `Start the Modbus TCP simulator and accept client connections.

By default the simulator serves plain TCP on port 502. Pass --tls to
serve over TLS with an auto-generated self-signed certificate, or
provide your own certificate and key with --cert and --key.`,
	Example: `  # Serve plain Modbus TCP on the default port
  rodbus-sim serve

  # Serve on an unprivileged port with debug logging
  rodbus-sim serve --port 10502 --log-level debug

  # Serve with small data tables
  rodbus-sim serve --coils 100 --holding 100

  # Serve over TLS with provided certificates
  rodbus-sim serve --cert cert.pem --key key.pem`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", 502, "Listen port")
	serveCmd.Flags().StringVar(&certPath, "cert", "", "Path to TLS certificate file")
	serveCmd.Flags().StringVar(&keyPath, "key", "", "Path to TLS private key file")
	serveCmd.Flags().BoolVar(&enableTLS, "tls", false, "Serve TLS with an auto-generated self-signed certificate")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().IntVar(&coils, "coils", 0, "Coil table size (0 = default)")
	serveCmd.Flags().IntVar(&discrete, "discrete", 0, "Discrete input table size (0 = default)")
	serveCmd.Flags().IntVar(&holding, "holding", 0, "Holding register table size (0 = default)")
	serveCmd.Flags().IntVar(&input, "input", 0, "Input register table size (0 = default)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if (certPath != "") != (keyPath != "") {
		return fmt.Errorf("both --cert and --key must be provided together")
	}
	if certPath != "" {
		if _, err := os.Stat(certPath); os.IsNotExist(err) {
			return fmt.Errorf("certificate file not found: %s", certPath)
		}
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			return fmt.Errorf("private key file not found: %s", keyPath)
		}
	}

	server, err := sim.New(&sim.Config{
		Host:             host,
		Port:             port,
		CertPath:         certPath,
		KeyPath:          keyPath,
		GenerateCert:     enableTLS && certPath == "",
		LogLevel:         logLevel,
		Coils:            coils,
		DiscreteInputs:   discrete,
		HoldingRegisters: holding,
		InputRegisters:   input,
	})
	if err != nil {
		return fmt.Errorf("failed to create simulator: %w", err)
	}

	return server.Start()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rodbus-sim %s (commit: %s)\n", version.Version, version.Commit)
	},
}
