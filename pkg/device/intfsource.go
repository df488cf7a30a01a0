package device

import (
	"context"

	"github.com/brightwire-networks/brightwire/pkg/intf"
)

// IntfSource adapts a Device to intf.StateSource and intf.CounterSource.
// Reads come from STATE_DB (operational truth); admin and description
// writes go to CONFIG_DB, where the device's own daemons pick them up.
type IntfSource struct {
	dev *Device
}

// Interfaces lists the interface names present in the state store.
func (s *IntfSource) Interfaces(ctx context.Context) ([]string, error) {
	return s.dev.State.PortNames(ctx)
}

// State reads one interface's state.
func (s *IntfSource) State(ctx context.Context, name string) (intf.State, bool, error) {
	e, ok, err := s.dev.State.Port(ctx, name)
	if err != nil || !ok {
		return intf.State{}, ok, err
	}
	return intf.State{
		AdminEnabled: e.AdminStatus == "up",
		Oper:         intf.ParseOperStatus(e.OperStatus),
		Description:  e.Description,
		Speed:        e.Speed,
		MTU:          e.MTU,
	}, true, nil
}

// SetAdminStatus configures an interface's admin status.
func (s *IntfSource) SetAdminStatus(ctx context.Context, name string, enabled bool) error {
	status := "down"
	if enabled {
		status = "up"
	}
	return s.dev.Config.SetPortField(ctx, name, "admin_status", status)
}

// SetDescription configures an interface's description.
func (s *IntfSource) SetDescription(ctx context.Context, name, desc string) error {
	return s.dev.Config.SetPortField(ctx, name, "description", desc)
}

// Counters reads one interface's counters.
func (s *IntfSource) Counters(ctx context.Context, name string) (intf.Counters, error) {
	return s.dev.Counters.PortCounters(ctx, name)
}

// TrafficRates reads one interface's traffic rates.
func (s *IntfSource) TrafficRates(ctx context.Context, name string) (intf.TrafficRates, error) {
	return s.dev.Counters.PortRates(ctx, name)
}
