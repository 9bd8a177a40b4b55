package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fossabot/rodbus/internal/config"
	"github.com/fossabot/rodbus/internal/discovery"
	"github.com/fossabot/rodbus/modbus"
)

// Shared command flags
var (
	endpointFlag string
	deviceFlag   string
	unitFlag     uint8
	timeoutMS    int
	scanTimeout  int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&endpointFlag, "endpoint", "", "Channel endpoint (e.g., tcp://192.168.1.40:502 or ws://gw.local/modbus)")
	rootCmd.PersistentFlags().StringVar(&deviceFlag, "device", "", "Named device from the registry (alternative to --endpoint)")
	rootCmd.PersistentFlags().Uint8Var(&unitFlag, "unit", uint8(modbus.DefaultUnitID), "Modbus unit identifier")
	rootCmd.PersistentFlags().IntVar(&timeoutMS, "timeout", 1000, "Response timeout in milliseconds")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(devicesCmd)
}

// openSession resolves --device/--endpoint into a live channel and session.
// The caller owns the returned channel.
func openSession() (*modbus.Channel, modbus.Session, error) {
	endpoint := endpointFlag
	unit := modbus.UnitID(unitFlag)
	timeout := time.Duration(timeoutMS) * time.Millisecond

	if deviceFlag != "" {
		registry, err := config.LoadRegistry()
		if err != nil {
			return nil, modbus.Session{}, fmt.Errorf("failed to load device registry: %w", err)
		}
		device := registry.GetDevice(deviceFlag)
		if device == nil {
			return nil, modbus.Session{}, fmt.Errorf("unknown device %q (use 'rodbus-cli devices' to list)", deviceFlag)
		}
		endpoint = device.Endpoint
		unit = modbus.UnitID(device.UnitID)
		timeout = device.Timeout()
	}

	if endpoint == "" {
		return nil, modbus.Session{}, fmt.Errorf("no endpoint: pass --endpoint, or --device with a registered device")
	}

	channel, err := modbus.NewChannel(endpoint)
	if err != nil {
		return nil, modbus.Session{}, err
	}
	return channel, channel.Session(unit, timeout), nil
}

func parseUint16Arg(name, arg string) (uint16, error) {
	v, err := strconv.ParseUint(arg, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, arg, err)
	}
	return uint16(v), nil
}

// scanCmd discovers Modbus gateways on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for Modbus gateways on the network",
	Long: `Scan for Modbus TCP gateways using mDNS/DNS-SD discovery.

This command listens for "_modbus._tcp" service advertisements and displays
all discovered gateways with their addresses and metadata. Devices that do
not advertise over mDNS will not appear; use --endpoint for those.`,
	Example: `  # Scan for 10 seconds (default)
  rodbus-cli scan

  # Quick 3-second scan
  rodbus-cli scan --scan-timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "scan-timeout", 10, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for Modbus gateways (timeout: %ds)...\n\n", scanTimeout)

	gateways, err := discovery.ScanForGateways(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(gateways) == 0 {
		fmt.Println("No gateways found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Not every Modbus device advertises over mDNS; try --endpoint directly")
		fmt.Println("  - Check that the gateway is on the same network segment")
		fmt.Println("  - Verify your firewall allows mDNS (UDP port 5353)")
		fmt.Println("  - Try increasing --scan-timeout for slower networks")
		return nil
	}

	fmt.Printf("Found %d gateway(s):\n\n", len(gateways))
	for i, gw := range gateways {
		fmt.Printf("%d. %s\n", i+1, gw.Name)
		fmt.Printf("   Host:     %s\n", gw.Hostname)
		fmt.Printf("   Endpoint: %s\n", gw.Endpoint())
		if len(gw.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", gw.Metadata)
		}
		fmt.Println()
	}

	fmt.Println("Use 'rodbus-cli read holding 0 10 --endpoint <endpoint>' to read from a gateway")
	return nil
}

// readCmd reads a span from one of the four data tables
var readCmd = &cobra.Command{
	Use:   "read [coils|discrete|holding|input] [start] [count]",
	Short: "Read a span of coils, discrete inputs, or registers",
	Long: `Read a contiguous span from one of the four Modbus data tables.

Tables:
  coils     Read Coils (function code 0x01)
  discrete  Read Discrete Inputs (function code 0x02)
  holding   Read Holding Registers (function code 0x03)
  input     Read Input Registers (function code 0x04)

The protocol limits one read to 2000 bits or 125 registers.`,
	Example: `  # Read 16 coils starting at address 0
  rodbus-cli read coils 0 16 --endpoint tcp://192.168.1.40:502 --unit 1

  # Read 10 holding registers from a registered device
  rodbus-cli read holding 100 10 --device boiler`,
	Args: cobra.ExactArgs(3),
	RunE: runRead,
}

func runRead(cmd *cobra.Command, args []string) error {
	start, err := parseUint16Arg("start address", args[1])
	if err != nil {
		return err
	}
	count, err := parseUint16Arg("count", args[2])
	if err != nil {
		return err
	}
	r := modbus.AddressRange{Start: start, Count: count}

	channel, session, err := openSession()
	if err != nil {
		return err
	}
	defer channel.Close()

	ctx := context.Background()

	switch args[0] {
	case "coils", "discrete":
		var values []modbus.Indexed[bool]
		if args[0] == "coils" {
			values, err = session.ReadCoils(ctx, r)
		} else {
			values, err = session.ReadDiscreteInputs(ctx, r)
		}
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
		for _, v := range values {
			state := "OFF"
			if v.Value {
				state = "ON"
			}
			fmt.Printf("%6d  %s\n", v.Index, state)
		}

	case "holding", "input":
		var values []modbus.Indexed[modbus.RegisterValue]
		if args[0] == "holding" {
			values, err = session.ReadHoldingRegisters(ctx, r)
		} else {
			values, err = session.ReadInputRegisters(ctx, r)
		}
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
		for _, v := range values {
			fmt.Printf("%6d  %5d  0x%04X\n", v.Index, v.Value.Uint16(), v.Value.Uint16())
		}

	default:
		return fmt.Errorf("unknown table %q (expected coils, discrete, holding, or input)", args[0])
	}

	return nil
}

// writeCmd writes a single coil or register
var writeCmd = &cobra.Command{
	Use:   "write [coil|register] [address] [value]",
	Short: "Write a single coil or holding register",
	Long: `Write one coil (function code 0x05) or one holding register (0x06).

Coil values are "on"/"off" (or 1/0). Register values are 16-bit unsigned
integers, decimal or 0x-prefixed hex. The device echoes the write back; the
command fails if the echo does not match.`,
	Example: `  # Switch coil 20 on
  rodbus-cli write coil 20 on --device pump-skid

  # Set holding register 100 to 1500
  rodbus-cli write register 100 1500 --endpoint tcp://192.168.1.40:502`,
	Args: cobra.ExactArgs(3),
	RunE: runWrite,
}

func runWrite(cmd *cobra.Command, args []string) error {
	address, err := parseUint16Arg("address", args[1])
	if err != nil {
		return err
	}

	channel, session, err := openSession()
	if err != nil {
		return err
	}
	defer channel.Close()

	ctx := context.Background()

	switch args[0] {
	case "coil":
		var state modbus.CoilState
		switch args[2] {
		case "on", "1", "true":
			state = modbus.CoilOn
		case "off", "0", "false":
			state = modbus.CoilOff
		default:
			return fmt.Errorf("invalid coil value %q (expected on or off)", args[2])
		}
		echo, err := session.WriteSingleCoil(ctx, modbus.Indexed[modbus.CoilState]{Index: address, Value: state})
		if err != nil {
			return fmt.Errorf("write failed: %w", err)
		}
		fmt.Printf("coil %d confirmed %s\n", echo.Index, echo.Value)

	case "register":
		value, err := parseUint16Arg("value", args[2])
		if err != nil {
			return err
		}
		echo, err := session.WriteSingleRegister(ctx, modbus.Indexed[modbus.RegisterValue]{Index: address, Value: modbus.RegisterValue(value)})
		if err != nil {
			return fmt.Errorf("write failed: %w", err)
		}
		fmt.Printf("register %d confirmed %d (0x%04X)\n", echo.Index, echo.Value.Uint16(), echo.Value.Uint16())

	default:
		return fmt.Errorf("unknown write target %q (expected coil or register)", args[0])
	}

	return nil
}

// devicesCmd lists the registered devices
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices from the registry",
	Long:  `List the named devices stored in the rodbus configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load device registry: %w", err)
		}

		if len(registry.Devices) == 0 {
			path, _ := config.GetConfigPath()
			fmt.Println("No devices registered.")
			fmt.Printf("Add devices to %s\n", path)
			return nil
		}

		for name, device := range registry.Devices {
			fmt.Printf("%s\n", name)
			if device.Nickname != "" {
				fmt.Printf("   Nickname: %s\n", device.Nickname)
			}
			fmt.Printf("   Endpoint: %s (unit %d, timeout %s)\n", device.Endpoint, device.UnitID, device.Timeout())
			for pointName, point := range device.Points {
				fmt.Printf("   Point %-16s %s @ %d\n", pointName, point.Type, point.Address)
			}
			fmt.Println()
		}
		return nil
	},
}
