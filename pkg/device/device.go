package device

import (
	"context"
	"fmt"

	"github.com/brightwire-networks/brightwire/pkg/util"
)

// Device bundles the per-database clients for one switch.
type Device struct {
	Config   *ConfigDBClient
	State    *StateDBClient
	Counters *CountersDBClient

	addr   string
	tunnel *SSHTunnel
}

// Connect opens clients against a directly reachable Redis address and
// verifies connectivity.
func Connect(ctx context.Context, addr string) (*Device, error) {
	d := &Device{
		Config:   NewConfigDBClient(addr),
		State:    NewStateDBClient(addr),
		Counters: NewCountersDBClient(addr),
		addr:     addr,
	}
	if err := d.Config.Connect(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("%w: %s: %v", util.ErrNotConnected, addr, err)
	}
	util.WithDevice(addr).Debug("connected")
	return d, nil
}

// ConnectSSH reaches the device's Redis through an SSH port forward, for
// devices that do not expose Redis off-box.
func ConnectSSH(ctx context.Context, host, user, pass string) (*Device, error) {
	tunnel, err := NewSSHTunnel(host, user, pass)
	if err != nil {
		return nil, err
	}
	d, err := Connect(ctx, tunnel.LocalAddr())
	if err != nil {
		tunnel.Close()
		return nil, err
	}
	d.addr = host
	d.tunnel = tunnel
	return d, nil
}

// Addr returns the address the device was connected as.
func (d *Device) Addr() string {
	return d.addr
}

// Close closes all clients and any SSH tunnel.
func (d *Device) Close() error {
	d.Config.Close()
	d.State.Close()
	d.Counters.Close()
	if d.tunnel != nil {
		return d.tunnel.Close()
	}
	return nil
}

// RouteStore returns an iproute.RouteStore over this device's CONFIG_DB.
func (d *Device) RouteStore(vrf string) *ConfigDBRouteStore {
	return NewConfigDBRouteStore(d.Config, vrf)
}

// IntfSource returns an adapter implementing intf.StateSource and
// intf.CounterSource over this device.
func (d *Device) IntfSource() *IntfSource {
	return &IntfSource{dev: d}
}
