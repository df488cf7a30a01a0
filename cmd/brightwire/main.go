// Brightwire - switch state CLI
//
// A CLI for inspecting and configuring switch state through the brightwire
// SDK: interface status and counters, and the static route table with its
// tag-scoped resync workflow.
//
// Context flags select the device; commands are verbs on its state:
//
//	brightwire -d <device> route list
//	brightwire -d <device> route set 10.1.0.0/24 --persistent
//	brightwire -d <device> route add-via 10.1.0.0/24 --hop 192.0.2.1
//	brightwire -d <device> --tag 100 route resync -f routes.yaml
//	brightwire -d <device> interface list
//	brightwire -d <device> interface counters Ethernet0
//
// The -d value is a Redis address ("10.0.0.5:6379"); with --ssh it is an
// SSH host and the connection is tunneled to the device's internal Redis.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brightwire-networks/brightwire/pkg/settings"
	"github.com/brightwire-networks/brightwire/pkg/util"
)

var (
	// Global context flags
	deviceAddr string // -d, --device
	useSSH     bool   // --ssh
	sshUser    string // --ssh-user
	routeTag   uint32 // --tag
	vrfName    string // --vrf

	// Global option flags
	jsonOutput bool
	verbose    bool

	// Global state
	userSettings *settings.Settings
)

var rootCmd = &cobra.Command{
	Use:           "brightwire",
	Short:         "Inspect and configure switch state",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			if err := util.SetLogLevel("debug"); err != nil {
				return err
			}
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		if deviceAddr == "" {
			deviceAddr = userSettings.DefaultDevice
		}
		if sshUser == "" {
			sshUser = userSettings.SSHUser
		}
		if !cmd.Flags().Changed("tag") && userSettings.DefaultTag != 0 {
			routeTag = userSettings.DefaultTag
		}
		if vrfName == "" {
			vrfName = userSettings.DefaultVRF
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&deviceAddr, "device", "d", "", "device Redis address, or SSH host with --ssh")
	pf.BoolVar(&useSSH, "ssh", false, "reach the device's Redis through an SSH tunnel")
	pf.StringVar(&sshUser, "ssh-user", "", "username for --ssh (default from settings)")
	pf.Uint32Var(&routeTag, "tag", 0, "scope route operations to this tag (0 = unscoped)")
	pf.StringVar(&vrfName, "vrf", "", "VRF for durable routes (default \"default\")")
	pf.BoolVar(&jsonOutput, "json", false, "output JSON instead of tables")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(viaCmd)
	rootCmd.AddCommand(interfaceCmd)
	rootCmd.AddCommand(settingsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
