// wwctl is a small CLI over the Wattwatchers client library: list devices,
// inspect device status and firmware, and export energy time series.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rayve/wattwatchers-client/pkg/config"
	"github.com/rayve/wattwatchers-client/pkg/interval"
	"github.com/rayve/wattwatchers-client/pkg/logging"
	"github.com/rayve/wattwatchers-client/pkg/ops"
	"github.com/rayve/wattwatchers-client/pkg/public"
)

var (
	flagFrom        string
	flagTo          string
	flagGranularity string
	flagUnit        string
	flagShort       bool
)

func main() {
	root := &cobra.Command{
		Use:           "wwctl",
		Short:         "Wattwatchers energy-metering API client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	energyCmd := &cobra.Command{
		Use:   "energy <device-id>",
		Short: "Export energy data for a device over a time range",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnergy,
	}
	energyCmd.Flags().StringVar(&flagFrom, "from", "", "range start (RFC 3339)")
	energyCmd.Flags().StringVar(&flagTo, "to", "", "range end (RFC 3339)")
	energyCmd.Flags().StringVar(&flagGranularity, "granularity", "5m", "sampling resolution (5m, 15m, 30m, hour, day, week, month)")
	energyCmd.Flags().StringVar(&flagUnit, "unit", "kWh", "energy unit conversion (kW, kWh)")
	energyCmd.Flags().BoolVar(&flagShort, "short", false, "query short energy instead of long energy")
	energyCmd.MarkFlagRequired("from")
	energyCmd.MarkFlagRequired("to")

	root.AddCommand(
		&cobra.Command{
			Use:   "devices",
			Short: "List device ids associated with the API key",
			RunE:  runDevices,
		},
		&cobra.Command{
			Use:   "status <device-id>",
			Short: "Show the status of a device",
			Args:  cobra.ExactArgs(1),
			RunE:  runStatus,
		},
		&cobra.Command{
			Use:   "firmware <device-id>",
			Short: "Show the installed firmware version of a device",
			Args:  cobra.ExactArgs(1),
			RunE:  runFirmware,
		},
		energyCmd,
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and initializes logging.
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})
	return cfg, nil
}

func publicClient(cfg *config.Config) (*public.Client, error) {
	return public.New(public.Config{
		Environment:          cfg.Environment,
		APIKey:               cfg.PublicAPIKey,
		MaxRequestsPerSecond: cfg.MaxRequestsPerSecond,
	})
}

func opsClient(cfg *config.Config) (*ops.Client, error) {
	if cfg.OpsAPIKey == "" {
		return nil, fmt.Errorf("WW_OPS_API_KEY is required for ops commands")
	}
	return ops.New(ops.Config{
		Environment:          cfg.Environment,
		APIKey:               cfg.OpsAPIKey,
		MaxRequestsPerSecond: cfg.MaxRequestsPerSecond,
	})
}

func runDevices(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	client, err := publicClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	devices, err := client.Devices(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(devices)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	client, err := publicClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	status, err := client.Device(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(status)
}

func runFirmware(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	client, err := opsClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	firmware, err := client.CurrentFirmwareVersion(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(firmware)
}

func runEnergy(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	fromTs, err := parseTimestamp(flagFrom)
	if err != nil {
		return fmt.Errorf("parse --from: %w", err)
	}
	toTs, err := parseTimestamp(flagTo)
	if err != nil {
		return fmt.Errorf("parse --to: %w", err)
	}

	client, err := publicClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	deviceID := args[0]
	unit := public.EnergyUnit(flagUnit)

	var data []any
	if flagShort {
		data, err = client.LoadShortEnergy(cmd.Context(), deviceID, fromTs, toTs, unit)
	} else {
		granularity := interval.Granularity(flagGranularity)
		data, err = client.LoadLongEnergy(cmd.Context(), deviceID, fromTs, toTs, granularity, unit)
	}
	if err != nil {
		return err
	}
	return printJSON(data)
}

func parseTimestamp(value string) (int64, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return 0, err
	}
	return ts.Unix(), nil
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
