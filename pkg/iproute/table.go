package iproute

import "sort"

// table is one in-memory route table: routes keyed by RouteKey, vias stored
// per route as a set keyed by nexthop identity. The Manager owns a live
// table and, during resync, a shadow table; table itself knows nothing
// about tags or resync.
type table struct {
	routes map[RouteKey]Route
	vias   map[RouteKey]map[viaID]Via
}

func newTable() *table {
	return &table{
		routes: make(map[RouteKey]Route),
		vias:   make(map[RouteKey]map[viaID]Via),
	}
}

func (t *table) route(k RouteKey) (Route, bool) {
	r, ok := t.routes[k]
	return r, ok
}

// setRoute upserts a route record. It does not touch the route's vias.
func (t *table) setRoute(r Route) {
	r.Key = r.Key.normalize()
	t.routes[r.Key] = r
}

// delRoute removes the route and all vias stored under its key.
func (t *table) delRoute(k RouteKey) {
	delete(t.routes, k)
	delete(t.vias, k)
}

func (t *table) via(v Via) (Via, bool) {
	set, ok := t.vias[v.RouteKey]
	if !ok {
		return Via{}, false
	}
	got, ok := set[v.id()]
	return got, ok
}

// setVia upserts a via by its nexthop identity under its route key.
func (t *table) setVia(v Via) {
	v = v.normalize()
	set, ok := t.vias[v.RouteKey]
	if !ok {
		set = make(map[viaID]Via)
		t.vias[v.RouteKey] = set
	}
	set[v.id()] = v
}

// delVia removes one via by nexthop identity. The owning route, if any,
// is untouched.
func (t *table) delVia(v Via) {
	set, ok := t.vias[v.RouteKey]
	if !ok {
		return
	}
	delete(set, v.id())
	if len(set) == 0 {
		delete(t.vias, v.RouteKey)
	}
}

// routeKeys returns all route keys in a stable order: by address family,
// prefix address, prefix length, then preference.
func (t *table) routeKeys() []RouteKey {
	keys := make([]RouteKey, 0, len(t.routes))
	for k := range t.routes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return compareKeys(keys[i], keys[j]) < 0
	})
	return keys
}

// viasOf returns the vias under a key in a stable order.
func (t *table) viasOf(k RouteKey) []Via {
	set := t.vias[k]
	vias := make([]Via, 0, len(set))
	for _, v := range set {
		vias = append(vias, v)
	}
	sort.Slice(vias, func(i, j int) bool {
		return compareVias(vias[i], vias[j]) < 0
	})
	return vias
}

func compareKeys(a, b RouteKey) int {
	if c := a.Prefix.Addr().Compare(b.Prefix.Addr()); c != 0 {
		return c
	}
	if a.Prefix.Bits() != b.Prefix.Bits() {
		return a.Prefix.Bits() - b.Prefix.Bits()
	}
	return int(a.Preference) - int(b.Preference)
}

func compareVias(a, b Via) int {
	if c := a.Hop.Compare(b.Hop); c != 0 {
		return c
	}
	if a.Intf != b.Intf {
		if a.Intf < b.Intf {
			return -1
		}
		return 1
	}
	switch {
	case a.NexthopGroup < b.NexthopGroup:
		return -1
	case a.NexthopGroup > b.NexthopGroup:
		return 1
	}
	return 0
}
