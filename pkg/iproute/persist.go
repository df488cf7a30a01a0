package iproute

import (
	"context"
	"errors"
	"fmt"
)

// ErrResyncActive is returned by store operations that must not run while
// a resync session is underway.
var ErrResyncActive = errors.New("resync in progress")

// RouteStore persists a route set durably. pkg/device implements it over
// the device's configuration database; an in-memory implementation exists
// for tests and embedding.
type RouteStore interface {
	// Load returns the stored route set.
	Load(ctx context.Context) ([]Route, []Via, error)
	// Save replaces the stored route set.
	Save(ctx context.Context, routes []Route, vias []Via) error
}

// Flush writes the live table's persistent routes, with their vias, to the
// attached store, replacing whatever the store held. Routes not marked
// Persistent are skipped. Flush reads the live table only, so flushing
// during a resync session would persist pre-resync state; it is rejected
// instead.
func (m *Manager) Flush(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	if m.shadow != nil {
		return ErrResyncActive
	}

	var routes []Route
	var vias []Via
	for _, k := range m.live.routeKeys() {
		r, _ := m.live.route(k)
		if !r.Persistent {
			continue
		}
		routes = append(routes, r)
		vias = append(vias, m.live.viasOf(k)...)
	}

	if err := m.store.Save(ctx, routes, vias); err != nil {
		return fmt.Errorf("flushing %d routes: %w", len(routes), err)
	}
	m.log.Debugf("flushed %d routes, %d vias", len(routes), len(vias))
	return nil
}

// Restore seeds the live table from the attached store. Restored routes
// keep their Persistent flag so a later Flush round-trips them. Restore
// applies directly to the live table and is rejected during resync.
func (m *Manager) Restore(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	if m.shadow != nil {
		return ErrResyncActive
	}

	routes, vias, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading stored routes: %w", err)
	}
	for _, r := range routes {
		m.live.setRoute(r)
	}
	for _, v := range vias {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("stored via %s: %w", v, err)
		}
		m.live.setVia(v)
	}
	m.log.Debugf("restored %d routes, %d vias", len(routes), len(vias))
	return nil
}
