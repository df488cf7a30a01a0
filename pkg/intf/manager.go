package intf

import (
	"context"
	"fmt"
	"sort"

	"github.com/brightwire-networks/brightwire/pkg/util"
)

// StateSource provides interface state from the switch's state store.
// pkg/device implements it over the device databases; tests use a fake.
type StateSource interface {
	// Interfaces returns the canonical names of all interfaces present.
	Interfaces(ctx context.Context) ([]string, error)
	// State returns the state of one interface, or ok=false if it is absent.
	State(ctx context.Context, name string) (State, bool, error)
	// SetAdminStatus configures the interface's enabled state.
	SetAdminStatus(ctx context.Context, name string, enabled bool) error
	// SetDescription configures the interface's description.
	SetDescription(ctx context.Context, name string, desc string) error
}

// CounterSource provides interface counters from the switch's counter store.
type CounterSource interface {
	Counters(ctx context.Context, name string) (Counters, error)
	TrafficRates(ctx context.Context, name string) (TrafficRates, error)
}

// Mgr inspects and configures base interface attributes. It is a facade
// over a StateSource; it holds no interface state of its own.
type Mgr struct {
	src StateSource
}

// NewMgr creates an interface manager over the given state source.
func NewMgr(src StateSource) *Mgr {
	return &Mgr{src: src}
}

// Interfaces enumerates all interfaces in the system, ordered by ID.
// Names the source reports that do not parse as canonical interface names
// are skipped with a warning rather than failing the whole enumeration.
func (m *Mgr) Interfaces(ctx context.Context) ([]ID, error) {
	names, err := m.src.Interfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing interfaces: %w", err)
	}
	ids := make([]ID, 0, len(names))
	for _, name := range names {
		id, err := Parse(name)
		if err != nil {
			util.Warnf("skipping unrecognized interface name '%s'", name)
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Exists reports whether the interface is present in the system.
func (m *Mgr) Exists(ctx context.Context, id ID) (bool, error) {
	if !id.Valid() {
		return false, nil
	}
	_, ok, err := m.src.State(ctx, id.String())
	if err != nil {
		return false, fmt.Errorf("reading interface %s: %w", id, err)
	}
	return ok, nil
}

// State returns the full state of an interface.
func (m *Mgr) State(ctx context.Context, id ID) (State, error) {
	st, ok, err := m.src.State(ctx, id.String())
	if err != nil {
		return State{}, fmt.Errorf("reading interface %s: %w", id, err)
	}
	if !ok {
		return State{}, util.NewNotFoundError("interface", id.String())
	}
	return st, nil
}

// AdminEnabled reports whether the interface is configured to be enabled.
func (m *Mgr) AdminEnabled(ctx context.Context, id ID) (bool, error) {
	st, err := m.State(ctx, id)
	if err != nil {
		return false, err
	}
	return st.AdminEnabled, nil
}

// AdminEnabledIs configures the enabled status of the interface.
func (m *Mgr) AdminEnabledIs(ctx context.Context, id ID, enabled bool) error {
	if !id.Valid() {
		return util.NewInvalidArgumentError("admin enabled", "no interface given")
	}
	return m.src.SetAdminStatus(ctx, id.String(), enabled)
}

// DescriptionIs configures the description of the interface.
func (m *Mgr) DescriptionIs(ctx context.Context, id ID, desc string) error {
	if !id.Valid() {
		return util.NewInvalidArgumentError("description", "no interface given")
	}
	return m.src.SetDescription(ctx, id.String(), desc)
}

// OperStatus returns the current operational status of the interface.
func (m *Mgr) OperStatus(ctx context.Context, id ID) (OperStatus, error) {
	st, err := m.State(ctx, id)
	if err != nil {
		return OperNull, err
	}
	return st.Oper, nil
}

// CounterMgr inspects interface counters and traffic rates.
type CounterMgr struct {
	src CounterSource
}

// NewCounterMgr creates a counter manager over the given counter source.
func NewCounterMgr(src CounterSource) *CounterMgr {
	return &CounterMgr{src: src}
}

// Counters returns the current counters of the given interface.
func (m *CounterMgr) Counters(ctx context.Context, id ID) (Counters, error) {
	if !id.Valid() {
		return Counters{}, util.NewInvalidArgumentError("counters", "no interface given")
	}
	return m.src.Counters(ctx, id.String())
}

// TrafficRates returns the current traffic rates of the given interface.
func (m *CounterMgr) TrafficRates(ctx context.Context, id ID) (TrafficRates, error) {
	if !id.Valid() {
		return TrafficRates{}, util.NewInvalidArgumentError("traffic rates", "no interface given")
	}
	return m.src.TrafficRates(ctx, id.String())
}
