package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wowsimlabs/simops/internal/faultctl"
)

func controlClient(cmd *cobra.Command) (*faultctl.Client, error) {
	host := flagStr(cmd, "host", cfg.Server.GameHost)
	port := flagInt(cmd, "port", cfg.Server.ControlPort)
	return faultctl.NewClient(faultctl.Config{Host: host, Port: port})
}

func runFaultActivate(cmd *cobra.Command, args []string) error {
	faultID := args[0]

	// Only explicitly set params travel; the server fills per-fault defaults.
	params := map[string]any{}
	if cmd.Flags().Changed("delay-ms") {
		params["delay_ms"] = faultDelayMs
	}
	if cmd.Flags().Changed("megabytes") {
		params["megabytes"] = faultMegabytes
	}
	if cmd.Flags().Changed("multiplier") {
		params["multiplier"] = faultMultiplier
	}

	var durationTicks uint64
	if faultDuration != "" {
		var err error
		durationTicks, err = faultctl.ParseTickDuration(faultDuration)
		if err != nil {
			return err
		}
	}

	client, err := controlClient(cmd)
	if err != nil {
		return err
	}
	opts := faultctl.ActivateOptions{
		Params:        params,
		TargetZoneID:  faultZone,
		DurationTicks: durationTicks,
	}
	if err := client.Activate(cmd.Context(), faultID, opts); err != nil {
		return err
	}
	fmt.Printf("Activated %s\n", faultID)
	return nil
}

func runFaultDeactivate(cmd *cobra.Command, args []string) error {
	faultID := args[0]
	client, err := controlClient(cmd)
	if err != nil {
		return err
	}
	if err := client.Deactivate(cmd.Context(), faultID); err != nil {
		return err
	}
	fmt.Printf("Deactivated %s\n", faultID)
	return nil
}

func runFaultDeactivateAll(cmd *cobra.Command, args []string) error {
	client, err := controlClient(cmd)
	if err != nil {
		return err
	}
	if err := client.DeactivateAll(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("All faults deactivated")
	return nil
}

func runFaultStatus(cmd *cobra.Command, args []string) error {
	client, err := controlClient(cmd)
	if err != nil {
		return err
	}
	info, err := client.Status(cmd.Context(), args[0])
	if errors.Is(err, faultctl.ErrNoStatus) {
		fmt.Printf("No status returned for %s\n", args[0])
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println(renderFaultInfo(info))
	return nil
}

func runFaultList(cmd *cobra.Command, args []string) error {
	client, err := controlClient(cmd)
	if err != nil {
		return err
	}
	faults, err := client.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(faults) == 0 {
		fmt.Println("No faults registered")
		return nil
	}
	fmt.Println(renderFaultList(faults))
	return nil
}
