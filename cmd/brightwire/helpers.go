package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/term"

	"github.com/brightwire-networks/brightwire/pkg/device"
	"github.com/brightwire-networks/brightwire/pkg/iproute"
	"github.com/brightwire-networks/brightwire/pkg/util"
)

// connectDevice opens the device selected by -d, tunneling over SSH when
// --ssh is set.
func connectDevice(ctx context.Context) (*device.Device, error) {
	if deviceAddr == "" {
		return nil, fmt.Errorf("no device: use -d or set a default with 'brightwire settings set device <addr>'")
	}
	if !useSSH {
		return device.Connect(ctx, deviceAddr)
	}

	if sshUser == "" {
		return nil, fmt.Errorf("--ssh requires --ssh-user or an ssh_user setting")
	}
	pass, err := sshPassword()
	if err != nil {
		return nil, err
	}
	return device.ConnectSSH(ctx, deviceAddr, sshUser, pass)
}

// sshPassword takes the SSH password from BRIGHTWIRE_SSH_PASS, or prompts
// on the terminal without echoing.
func sshPassword() (string, error) {
	if pass := os.Getenv("BRIGHTWIRE_SSH_PASS"); pass != "" {
		return pass, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no terminal for password prompt; set BRIGHTWIRE_SSH_PASS")
	}
	fmt.Fprintf(os.Stderr, "%s@%s password: ", sshUser, deviceAddr)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pass), nil
}

// newRouteManager builds a route manager over the device's durable route
// store, seeded from it, scoped to the --tag flag.
func newRouteManager(ctx context.Context, dev *device.Device) (*iproute.Manager, error) {
	m := iproute.NewManager()
	m.UseStore(dev.RouteStore(vrfName))
	if err := m.Restore(ctx); err != nil {
		return nil, err
	}
	m.TagIs(routeTag)
	return m, nil
}

// parseRouteKey builds a route key from a prefix argument and the --pref
// flag value.
func parseRouteKey(prefixArg string, pref uint16) (iproute.RouteKey, error) {
	prefix, err := util.ParsePrefixOrAddr(prefixArg)
	if err != nil {
		return iproute.RouteKey{}, err
	}
	if pref > 255 {
		return iproute.RouteKey{}, util.NewInvalidArgumentError("route key", "preference %d out of range 0-255", pref)
	}
	return iproute.RouteKey{Prefix: prefix, Preference: uint8(pref)}, nil
}

func formatTag(tag uint32) string {
	if tag == 0 {
		return "-"
	}
	return strconv.FormatUint(uint64(tag), 10)
}
