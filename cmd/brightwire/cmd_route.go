package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/brightwire-networks/brightwire/pkg/cli"
	"github.com/brightwire-networks/brightwire/pkg/intf"
	"github.com/brightwire-networks/brightwire/pkg/iproute"
	"github.com/brightwire-networks/brightwire/pkg/util"
)

var (
	routePref     uint16
	routeMetric   uint32
	routePersist  bool
	viaHop        string
	viaIntf       string
	viaGroup      string
	viaMPLSLabel  uint32
	resyncFile    string
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Manage static routes",
	Long: `Manage the device's static route table.

Routes are keyed by prefix and preference. With --tag, accessor commands
only see routes carrying that tag; 'route list' always shows the whole
table and marks each route's tag.

Examples:
  brightwire -d leaf1:6379 route list
  brightwire -d leaf1:6379 route set 10.1.0.0/24 --persistent
  brightwire -d leaf1:6379 route add-via 10.1.0.0/24 --hop 192.0.2.1
  brightwire -d leaf1:6379 --tag 100 route resync -f routes.yaml`,
}

var routeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all routes in the table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		dev, err := connectDevice(ctx)
		if err != nil {
			return err
		}
		defer dev.Close()

		m, err := newRouteManager(ctx, dev)
		if err != nil {
			return err
		}

		type routeOut struct {
			Route iproute.Route `json:"route"`
			Vias  []iproute.Via `json:"vias,omitempty"`
		}
		var out []routeOut
		// Iteration is never tag-filtered; apply --tag here so the
		// behavior is visible and explicit.
		for r := range m.RouteIter() {
			if routeTag != 0 && r.Tag != routeTag {
				continue
			}
			var vias []iproute.Via
			for v := range m.ViaIter(r.Key) {
				vias = append(vias, v)
			}
			out = append(out, routeOut{Route: r, Vias: vias})
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(out)
		}
		if len(out) == 0 {
			fmt.Println("No routes")
			return nil
		}

		t := cli.NewTable(os.Stdout, "PREFIX", "PREF", "TAG", "METRIC", "PERSIST", "VIAS")
		for _, ro := range out {
			t.Row(
				ro.Route.Key.Prefix.String(),
				strconv.Itoa(int(ro.Route.Key.Preference)),
				formatTag(ro.Route.Tag),
				strconv.FormatUint(uint64(ro.Route.Metric), 10),
				formatBool(ro.Route.Persistent),
				formatVias(ro.Vias),
			)
		}
		t.Flush()
		return nil
	},
}

var routeShowCmd = &cobra.Command{
	Use:   "show <prefix>",
	Short: "Show one route and its vias",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		key, err := parseRouteKey(args[0], routePref)
		if err != nil {
			return err
		}

		dev, err := connectDevice(ctx)
		if err != nil {
			return err
		}
		defer dev.Close()

		m, err := newRouteManager(ctx, dev)
		if err != nil {
			return err
		}

		r, err := m.Route(key)
		if err != nil {
			return err
		}
		var vias []iproute.Via
		for v := range m.ViaIter(key) {
			vias = append(vias, v)
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(struct {
				Route iproute.Route `json:"route"`
				Vias  []iproute.Via `json:"vias,omitempty"`
			}{r, vias})
		}

		fmt.Printf("Route:      %s\n", r.Key.Prefix)
		fmt.Printf("Preference: %d\n", r.Key.Preference)
		fmt.Printf("Tag:        %s\n", formatTag(r.Tag))
		fmt.Printf("Metric:     %d\n", r.Metric)
		fmt.Printf("Persistent: %s\n", formatBool(r.Persistent))
		if len(vias) == 0 {
			fmt.Println("Vias:       none")
			return nil
		}
		fmt.Println("Vias:")
		for _, v := range vias {
			fmt.Printf("  %s\n", formatVia(v))
		}
		return nil
	},
}

var routeSetCmd = &cobra.Command{
	Use:   "set <prefix>",
	Short: "Insert or update a route",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		key, err := parseRouteKey(args[0], routePref)
		if err != nil {
			return err
		}

		dev, err := connectDevice(ctx)
		if err != nil {
			return err
		}
		defer dev.Close()

		m, err := newRouteManager(ctx, dev)
		if err != nil {
			return err
		}

		m.RouteSet(iproute.Route{
			Key:        key,
			Tag:        routeTag,
			Metric:     routeMetric,
			Persistent: routePersist,
		})
		if err := m.Flush(ctx); err != nil {
			return err
		}
		fmt.Printf("Route %s set\n", key)
		return nil
	},
}

var routeDelCmd = &cobra.Command{
	Use:   "del <prefix>",
	Short: "Delete a route and all of its vias",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		key, err := parseRouteKey(args[0], routePref)
		if err != nil {
			return err
		}

		dev, err := connectDevice(ctx)
		if err != nil {
			return err
		}
		defer dev.Close()

		m, err := newRouteManager(ctx, dev)
		if err != nil {
			return err
		}
		if !m.Exists(key) {
			return util.NewNotFoundError("route", key.String())
		}

		m.RouteDel(key)
		if err := m.Flush(ctx); err != nil {
			return err
		}
		fmt.Printf("Route %s deleted\n", key)
		return nil
	},
}

var routeAddViaCmd = &cobra.Command{
	Use:   "add-via <prefix>",
	Short: "Add a nexthop to a route",
	Long: `Add a nexthop to a route. Exactly one of --hop/--intf (together
allowed) or --nexthop-group must be given; --intf Null0 installs a drop
route. Repeating with a different nexthop builds an ECMP set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runViaMutation(args[0], func(m *iproute.Manager, v iproute.Via) error {
			return m.ViaSet(v)
		}, "added")
	},
}

var routeRemoveViaCmd = &cobra.Command{
	Use:   "remove-via <prefix>",
	Short: "Remove a nexthop from a route",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runViaMutation(args[0], func(m *iproute.Manager, v iproute.Via) error {
			return m.ViaDel(v)
		}, "removed")
	},
}

func runViaMutation(prefixArg string, op func(*iproute.Manager, iproute.Via) error, verb string) error {
	ctx := context.Background()
	key, err := parseRouteKey(prefixArg, routePref)
	if err != nil {
		return err
	}

	v := iproute.Via{RouteKey: key, NexthopGroup: viaGroup, MPLSLabel: viaMPLSLabel}
	if viaHop != "" {
		if v.Hop, err = util.ParseAddr(viaHop); err != nil {
			return err
		}
	}
	if viaIntf != "" {
		if v.Intf, err = intf.Parse(viaIntf); err != nil {
			return err
		}
	}
	if err := v.Validate(); err != nil {
		return err
	}

	dev, err := connectDevice(ctx)
	if err != nil {
		return err
	}
	defer dev.Close()

	m, err := newRouteManager(ctx, dev)
	if err != nil {
		return err
	}
	if err := op(m, v); err != nil {
		return err
	}
	if err := m.Flush(ctx); err != nil {
		return err
	}
	fmt.Printf("Via %s %s\n", verb, formatVia(v))
	return nil
}

var viaCmd = &cobra.Command{
	Use:   "via",
	Short: "Inspect route nexthops",
}

var viaListCmd = &cobra.Command{
	Use:   "list <prefix>",
	Short: "List the nexthops of one route",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		key, err := parseRouteKey(args[0], routePref)
		if err != nil {
			return err
		}

		dev, err := connectDevice(ctx)
		if err != nil {
			return err
		}
		defer dev.Close()

		m, err := newRouteManager(ctx, dev)
		if err != nil {
			return err
		}

		var vias []iproute.Via
		for v := range m.ViaIter(key) {
			vias = append(vias, v)
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(vias)
		}
		if len(vias) == 0 {
			fmt.Printf("No vias on %s\n", key)
			return nil
		}

		t := cli.NewTable(os.Stdout, "HOP", "INTF", "GROUP", "LABEL")
		for _, v := range vias {
			hop := "-"
			if v.Hop.IsValid() {
				hop = v.Hop.String()
			}
			in := "-"
			if v.Intf.Valid() {
				in = v.Intf.String()
			}
			label := "-"
			if v.MPLSLabel != 0 {
				label = strconv.FormatUint(uint64(v.MPLSLabel), 10)
			}
			t.Row(hop, in, cli.Dash(v.NexthopGroup), label)
		}
		t.Flush()
		return nil
	},
}

var routeResyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Replace the table contents from a declaration file",
	Long: `Declare the full desired route set from a YAML file. Routes and
vias in the current tag scope that the file does not declare are deleted;
routes outside the scope are untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		f, err := iproute.LoadDeclFile(resyncFile)
		if err != nil {
			return err
		}

		dev, err := connectDevice(ctx)
		if err != nil {
			return err
		}
		defer dev.Close()

		m, err := newRouteManager(ctx, dev)
		if err != nil {
			return err
		}
		if err := f.Declare(m); err != nil {
			return err
		}
		if err := m.Flush(ctx); err != nil {
			return err
		}

		n := 0
		for range m.RouteIter() {
			n++
		}
		fmt.Printf("Resync complete: table now holds %d routes\n", n)
		return nil
	},
}

func formatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatVia(v iproute.Via) string {
	switch {
	case v.NexthopGroup != "":
		return "group " + v.NexthopGroup
	case v.IsDrop():
		return "drop (Null0)"
	}
	s := ""
	if v.Hop.IsValid() {
		s = v.Hop.String()
	}
	if v.Intf.Valid() {
		if s != "" {
			s += " "
		}
		s += v.Intf.String()
	}
	if v.MPLSLabel != 0 {
		s += fmt.Sprintf(" label %d", v.MPLSLabel)
	}
	return s
}

func formatVias(vias []iproute.Via) string {
	if len(vias) == 0 {
		return "-"
	}
	out := ""
	for i, v := range vias {
		if i > 0 {
			out += ", "
		}
		out += formatVia(v)
	}
	return out
}

func init() {
	for _, c := range []*cobra.Command{routeShowCmd, routeSetCmd, routeDelCmd, routeAddViaCmd, routeRemoveViaCmd, viaListCmd} {
		c.Flags().Uint16Var(&routePref, "pref", uint16(iproute.DefaultPreference), "route preference (0-255)")
	}
	routeSetCmd.Flags().Uint32Var(&routeMetric, "metric", 0, "route metric")
	routeSetCmd.Flags().BoolVar(&routePersist, "persistent", false, "retain the route in durable configuration")

	for _, c := range []*cobra.Command{routeAddViaCmd, routeRemoveViaCmd} {
		c.Flags().StringVar(&viaHop, "hop", "", "nexthop IP address")
		c.Flags().StringVar(&viaIntf, "intf", "", "egress interface (Null0 drops traffic)")
		c.Flags().StringVar(&viaGroup, "nexthop-group", "", "nexthop group name")
		c.Flags().Uint32Var(&viaMPLSLabel, "mpls-label", 0, "MPLS label to push")
	}

	routeResyncCmd.Flags().StringVarP(&resyncFile, "file", "f", "", "route declaration YAML file")
	routeResyncCmd.MarkFlagRequired("file")

	routeCmd.AddCommand(routeListCmd)
	routeCmd.AddCommand(routeShowCmd)
	routeCmd.AddCommand(routeSetCmd)
	routeCmd.AddCommand(routeDelCmd)
	routeCmd.AddCommand(routeAddViaCmd)
	routeCmd.AddCommand(routeRemoveViaCmd)
	routeCmd.AddCommand(routeResyncCmd)

	viaCmd.AddCommand(viaListCmd)
}
