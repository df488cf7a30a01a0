package device

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/brightwire-networks/brightwire/pkg/intf"
	"github.com/brightwire-networks/brightwire/pkg/iproute"
	"github.com/brightwire-networks/brightwire/pkg/util"
)

// ConfigDBRouteStore persists a route set in CONFIG_DB's STATIC_ROUTE
// table. It implements iproute.RouteStore.
//
// STATIC_ROUTE keys by prefix alone, so when two persistent routes share a
// prefix with different preferences only one survives a save; the route
// manager keys by (prefix, preference) but the durable table cannot.
type ConfigDBRouteStore struct {
	cdb *ConfigDBClient
	vrf string
}

// NewConfigDBRouteStore creates a store writing to the given VRF's routes.
// An empty vrf means "default".
func NewConfigDBRouteStore(cdb *ConfigDBClient, vrf string) *ConfigDBRouteStore {
	if vrf == "" {
		vrf = "default"
	}
	return &ConfigDBRouteStore{cdb: cdb, vrf: vrf}
}

// Load reads the stored route set.
func (s *ConfigDBRouteStore) Load(ctx context.Context) ([]iproute.Route, []iproute.Via, error) {
	entries, err := s.cdb.StaticRoutes(ctx)
	if err != nil {
		return nil, nil, err
	}

	// Deterministic order keeps log output and tests stable.
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var routes []iproute.Route
	var vias []iproute.Via
	for _, name := range names {
		vrf, prefix, ok := strings.Cut(name, "|")
		if !ok || vrf != s.vrf {
			continue
		}
		r, rvias, err := routeFromEntry(prefix, entries[name])
		if err != nil {
			return nil, nil, fmt.Errorf("%s|%s: %w", staticRouteTable, name, err)
		}
		routes = append(routes, r)
		vias = append(vias, rvias...)
	}
	return routes, vias, nil
}

// Save replaces the stored route set for this VRF.
func (s *ConfigDBRouteStore) Save(ctx context.Context, routes []iproute.Route, vias []iproute.Via) error {
	byKey := make(map[iproute.RouteKey][]iproute.Via)
	for _, v := range vias {
		byKey[v.RouteKey] = append(byKey[v.RouteKey], v)
	}

	entries := make(map[string]StaticRouteEntry, len(routes))
	for _, r := range routes {
		entries[s.vrf+"|"+r.Key.Prefix.String()] = entryFromRoute(r, byKey[r.Key])
	}
	return s.cdb.ReplaceStaticRoutes(ctx, entries)
}

// entryFromRoute encodes a route and its vias as one STATIC_ROUTE hash.
// Vias become position-correlated comma-separated lists.
func entryFromRoute(r iproute.Route, vias []iproute.Via) StaticRouteEntry {
	e := StaticRouteEntry{
		Distance: strconv.Itoa(int(r.Key.Preference)),
	}
	if r.Tag != 0 {
		e.Tag = strconv.FormatUint(uint64(r.Tag), 10)
	}
	if r.Metric != 0 {
		e.Metric = strconv.FormatUint(uint64(r.Metric), 10)
	}
	if len(vias) == 0 {
		return e
	}

	hops := make([]string, len(vias))
	intfs := make([]string, len(vias))
	groups := make([]string, len(vias))
	labels := make([]string, len(vias))
	anyLabel := false
	for i, v := range vias {
		if v.Hop.IsValid() {
			hops[i] = v.Hop.String()
		}
		intfs[i] = v.Intf.String() // zero ID renders as ""
		groups[i] = v.NexthopGroup
		if v.MPLSLabel != 0 {
			labels[i] = strconv.FormatUint(uint64(v.MPLSLabel), 10)
			anyLabel = true
		}
	}
	e.NextHop = joinColumn(hops)
	e.Interface = joinColumn(intfs)
	e.NexthopGroup = joinColumn(groups)
	if anyLabel {
		e.MPLSLabel = strings.Join(labels, ",")
	}
	return e
}

// joinColumn joins one positional column, collapsing to "" when every
// position is empty so unused fields stay absent from the hash.
func joinColumn(col []string) string {
	for _, s := range col {
		if s != "" {
			return strings.Join(col, ",")
		}
	}
	return ""
}

// routeFromEntry decodes one STATIC_ROUTE hash back into a route and its
// vias. Everything in the durable table is persistent by definition.
func routeFromEntry(prefix string, e StaticRouteEntry) (iproute.Route, []iproute.Via, error) {
	p, err := util.ParsePrefix(prefix)
	if err != nil {
		return iproute.Route{}, nil, err
	}
	key := iproute.RouteKey{Prefix: p, Preference: iproute.DefaultPreference}
	if e.Distance != "" {
		d, err := strconv.ParseUint(e.Distance, 10, 8)
		if err != nil {
			return iproute.Route{}, nil, util.NewInvalidArgumentError("route store", "bad distance '%s'", e.Distance)
		}
		key.Preference = uint8(d)
	}

	r := iproute.Route{Key: key, Persistent: true}
	if e.Tag != "" {
		tag, err := strconv.ParseUint(e.Tag, 10, 32)
		if err != nil {
			return iproute.Route{}, nil, util.NewInvalidArgumentError("route store", "bad tag '%s'", e.Tag)
		}
		r.Tag = uint32(tag)
	}
	if e.Metric != "" {
		m, err := strconv.ParseUint(e.Metric, 10, 32)
		if err != nil {
			return iproute.Route{}, nil, util.NewInvalidArgumentError("route store", "bad metric '%s'", e.Metric)
		}
		r.Metric = uint32(m)
	}

	hops := splitColumn(e.NextHop)
	intfs := splitColumn(e.Interface)
	groups := splitColumn(e.NexthopGroup)
	labels := splitColumn(e.MPLSLabel)
	n := len(hops)
	for _, col := range [][]string{intfs, groups, labels} {
		if len(col) > n {
			n = len(col)
		}
	}

	var vias []iproute.Via
	for i := 0; i < n; i++ {
		v := iproute.Via{RouteKey: key, NexthopGroup: at(groups, i)}
		if hop := at(hops, i); hop != "" {
			if v.Hop, err = util.ParseAddr(hop); err != nil {
				return iproute.Route{}, nil, err
			}
		}
		if name := at(intfs, i); name != "" {
			if v.Intf, err = intf.Parse(name); err != nil {
				return iproute.Route{}, nil, err
			}
		}
		if label := at(labels, i); label != "" {
			l, err := strconv.ParseUint(label, 10, 32)
			if err != nil {
				return iproute.Route{}, nil, util.NewInvalidArgumentError("route store", "bad mpls label '%s'", label)
			}
			v.MPLSLabel = uint32(l)
		}
		if err := v.Validate(); err != nil {
			return iproute.Route{}, nil, err
		}
		vias = append(vias, v)
	}
	return r, vias, nil
}

// splitColumn is the inverse of joinColumn: "" means no positions at all.
func splitColumn(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func at(col []string, i int) string {
	if i < len(col) {
		return col[i]
	}
	return ""
}

// MemoryRouteStore is an in-memory iproute.RouteStore for tests and
// embedding.
type MemoryRouteStore struct {
	mu     sync.Mutex
	routes []iproute.Route
	vias   []iproute.Via
}

// Load returns a copy of the stored route set.
func (s *MemoryRouteStore) Load(ctx context.Context) ([]iproute.Route, []iproute.Via, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]iproute.Route(nil), s.routes...), append([]iproute.Via(nil), s.vias...), nil
}

// Save replaces the stored route set.
func (s *MemoryRouteStore) Save(ctx context.Context, routes []iproute.Route, vias []iproute.Via) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = append([]iproute.Route(nil), routes...)
	s.vias = append([]iproute.Via(nil), vias...)
	return nil
}
