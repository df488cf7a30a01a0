package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brightwire-networks/brightwire/pkg/cli"
	"github.com/brightwire-networks/brightwire/pkg/intf"
)

var (
	intfAdminState  string
	intfDescription string
)

var interfaceCmd = &cobra.Command{
	Use:     "interface",
	Aliases: []string{"intf"},
	Short:   "Inspect and configure interfaces",
}

var interfaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all interfaces with status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		dev, err := connectDevice(ctx)
		if err != nil {
			return err
		}
		defer dev.Close()

		mgr := intf.NewMgr(dev.IntfSource())
		ids, err := mgr.Interfaces(ctx)
		if err != nil {
			return err
		}

		type intfOut struct {
			Name  string     `json:"name"`
			State intf.State `json:"state"`
		}
		var out []intfOut
		for _, id := range ids {
			st, err := mgr.State(ctx, id)
			if err != nil {
				return err
			}
			out = append(out, intfOut{Name: id.String(), State: st})
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(out)
		}
		if len(out) == 0 {
			fmt.Println("No interfaces")
			return nil
		}

		t := cli.NewTable(os.Stdout, "INTERFACE", "ADMIN", "OPER", "SPEED", "MTU", "DESCRIPTION")
		for _, io := range out {
			admin := "down"
			if io.State.AdminEnabled {
				admin = "up"
			}
			t.Row(
				io.Name,
				cli.Status(admin),
				cli.Status(io.State.Oper.String()),
				cli.Dash(io.State.Speed),
				cli.Dash(io.State.MTU),
				cli.Dash(io.State.Description),
			)
		}
		t.Flush()
		return nil
	},
}

var interfaceShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one interface's state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		id, err := intf.Parse(args[0])
		if err != nil {
			return err
		}

		dev, err := connectDevice(ctx)
		if err != nil {
			return err
		}
		defer dev.Close()

		st, err := intf.NewMgr(dev.IntfSource()).State(ctx, id)
		if err != nil {
			return err
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(struct {
				Name  string     `json:"name"`
				State intf.State `json:"state"`
			}{id.String(), st})
		}

		admin := "down"
		if st.AdminEnabled {
			admin = "up"
		}
		fmt.Printf("Interface:   %s\n", id)
		fmt.Printf("Admin:       %s\n", cli.Status(admin))
		fmt.Printf("Oper:        %s\n", cli.Status(st.Oper.String()))
		fmt.Printf("Speed:       %s\n", cli.Dash(st.Speed))
		fmt.Printf("MTU:         %s\n", cli.Dash(st.MTU))
		fmt.Printf("Description: %s\n", cli.Dash(st.Description))
		return nil
	},
}

var interfaceCountersCmd = &cobra.Command{
	Use:   "counters <name>",
	Short: "Show one interface's counters and traffic rates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		id, err := intf.Parse(args[0])
		if err != nil {
			return err
		}

		dev, err := connectDevice(ctx)
		if err != nil {
			return err
		}
		defer dev.Close()

		cm := intf.NewCounterMgr(dev.IntfSource())
		c, err := cm.Counters(ctx, id)
		if err != nil {
			return err
		}
		rates, err := cm.TrafficRates(ctx, id)
		if err != nil {
			return err
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(struct {
				Name     string            `json:"name"`
				Counters intf.Counters     `json:"counters"`
				Rates    intf.TrafficRates `json:"rates"`
			}{id.String(), c, rates})
		}

		t := cli.NewTable(os.Stdout, "COUNTER", "RX", "TX")
		t.Row("Octets", fmt.Sprintf("%d", c.InOctets), fmt.Sprintf("%d", c.OutOctets))
		t.Row("Unicast packets", fmt.Sprintf("%d", c.InUcastPkts), fmt.Sprintf("%d", c.OutUcastPkts))
		t.Row("Multicast packets", fmt.Sprintf("%d", c.InMulticastPkts), fmt.Sprintf("%d", c.OutMulticastPkts))
		t.Row("Broadcast packets", fmt.Sprintf("%d", c.InBroadcastPkts), fmt.Sprintf("%d", c.OutBroadcastPkts))
		t.Row("Discards", fmt.Sprintf("%d", c.InDiscards), fmt.Sprintf("%d", c.OutDiscards))
		t.Row("Errors", fmt.Sprintf("%d", c.InErrors), fmt.Sprintf("%d", c.OutErrors))
		t.Row("Packet rate (pps)", fmt.Sprintf("%.1f", rates.InPktsRate), fmt.Sprintf("%.1f", rates.OutPktsRate))
		t.Row("Bit rate (bps)", fmt.Sprintf("%.0f", rates.InBitsRate), fmt.Sprintf("%.0f", rates.OutBitsRate))
		t.Flush()
		return nil
	},
}

var interfaceSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Configure an interface's admin status or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := intf.Parse(args[0])
		if err != nil {
			return err
		}
		if intfAdminState == "" && !cmd.Flags().Changed("description") {
			return fmt.Errorf("nothing to set: use --admin and/or --description")
		}
		if intfAdminState != "" && intfAdminState != "up" && intfAdminState != "down" {
			return fmt.Errorf("--admin must be 'up' or 'down', got '%s'", intfAdminState)
		}

		ctx := context.Background()
		dev, err := connectDevice(ctx)
		if err != nil {
			return err
		}
		defer dev.Close()

		mgr := intf.NewMgr(dev.IntfSource())
		if intfAdminState != "" {
			if err := mgr.AdminEnabledIs(ctx, id, intfAdminState == "up"); err != nil {
				return err
			}
			fmt.Printf("Interface %s admin status set to %s\n", id, intfAdminState)
		}
		if cmd.Flags().Changed("description") {
			if err := mgr.DescriptionIs(ctx, id, intfDescription); err != nil {
				return err
			}
			fmt.Printf("Interface %s description set\n", id)
		}
		return nil
	},
}

func init() {
	interfaceSetCmd.Flags().StringVar(&intfAdminState, "admin", "", "admin status: up or down")
	interfaceSetCmd.Flags().StringVar(&intfDescription, "description", "", "interface description")

	interfaceCmd.AddCommand(interfaceListCmd)
	interfaceCmd.AddCommand(interfaceShowCmd)
	interfaceCmd.AddCommand(interfaceCountersCmd)
	interfaceCmd.AddCommand(interfaceSetCmd)
}
