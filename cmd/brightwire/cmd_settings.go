package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/brightwire-networks/brightwire/pkg/cli"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent CLI settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(userSettings)
		}
		t := cli.NewTable(os.Stdout, "SETTING", "VALUE")
		t.Row("device", cli.Dash(userSettings.DefaultDevice))
		t.Row("ssh_user", cli.Dash(userSettings.SSHUser))
		t.Row("tag", formatTag(userSettings.DefaultTag))
		t.Row("vrf", cli.Dash(userSettings.DefaultVRF))
		t.Flush()
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Set a setting (device, ssh_user, tag, vrf)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, value := args[0], args[1]
		switch name {
		case "device":
			userSettings.DefaultDevice = value
		case "ssh_user":
			userSettings.SSHUser = value
		case "tag":
			tag, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return fmt.Errorf("tag must be a number: %v", err)
			}
			userSettings.DefaultTag = uint32(tag)
		case "vrf":
			userSettings.DefaultVRF = value
		default:
			return fmt.Errorf("unknown setting '%s' (device, ssh_user, tag, vrf)", name)
		}
		if err := userSettings.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Printf("Setting %s saved\n", name)
		return nil
	},
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset <name>",
	Short: "Clear a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "device":
			userSettings.DefaultDevice = ""
		case "ssh_user":
			userSettings.SSHUser = ""
		case "tag":
			userSettings.DefaultTag = 0
		case "vrf":
			userSettings.DefaultVRF = ""
		default:
			return fmt.Errorf("unknown setting '%s' (device, ssh_user, tag, vrf)", args[0])
		}
		if err := userSettings.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Printf("Setting %s cleared\n", args[0])
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsUnsetCmd)
}
