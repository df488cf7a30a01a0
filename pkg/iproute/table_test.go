package iproute

import (
	"testing"

	"github.com/brightwire-networks/brightwire/pkg/intf"
)

func TestTableRouteUpsert(t *testing.T) {
	tbl := newTable()
	key := NewRouteKey(mustPrefix(t, "10.0.0.0/24"))

	if _, ok := tbl.route(key); ok {
		t.Fatal("route present in empty table")
	}

	tbl.setRoute(Route{Key: key, Tag: 1})
	r, ok := tbl.route(key)
	if !ok || r.Tag != 1 {
		t.Fatalf("route = %+v, ok = %v", r, ok)
	}

	// Upsert by key: last write wins.
	tbl.setRoute(Route{Key: key, Tag: 2, Persistent: true})
	r, _ = tbl.route(key)
	if r.Tag != 2 || !r.Persistent {
		t.Errorf("after upsert route = %+v", r)
	}
	if len(tbl.routes) != 1 {
		t.Errorf("table has %d routes, want 1", len(tbl.routes))
	}
}

func TestTableViaSet(t *testing.T) {
	tbl := newTable()
	key := NewRouteKey(mustPrefix(t, "10.0.0.0/24"))
	tbl.setRoute(Route{Key: key})

	v1 := Via{RouteKey: key, Hop: mustAddr(t, "192.0.2.1")}
	v2 := Via{RouteKey: key, Hop: mustAddr(t, "192.0.2.2")}
	tbl.setVia(v1)
	tbl.setVia(v2)

	if got := tbl.viasOf(key); len(got) != 2 {
		t.Fatalf("viasOf returned %d vias, want 2 (ECMP)", len(got))
	}

	// Same nexthop identity overwrites instead of duplicating.
	v1.MPLSLabel = 42
	tbl.setVia(v1)
	got := tbl.viasOf(key)
	if len(got) != 2 {
		t.Fatalf("after upsert viasOf returned %d vias, want 2", len(got))
	}
	found, ok := tbl.via(v1)
	if !ok || found.MPLSLabel != 42 {
		t.Errorf("via = %+v, ok = %v", found, ok)
	}
}

func TestTableDelRouteDropsVias(t *testing.T) {
	tbl := newTable()
	key := NewRouteKey(mustPrefix(t, "10.0.0.0/24"))
	tbl.setRoute(Route{Key: key})
	tbl.setVia(Via{RouteKey: key, Hop: mustAddr(t, "192.0.2.1")})
	tbl.setVia(Via{RouteKey: key, Intf: intf.Null0})

	tbl.delRoute(key)

	if _, ok := tbl.route(key); ok {
		t.Error("route still present after delRoute")
	}
	if got := tbl.viasOf(key); len(got) != 0 {
		t.Errorf("delRoute left %d vias behind", len(got))
	}
}

func TestTableDelViaKeepsRoute(t *testing.T) {
	tbl := newTable()
	key := NewRouteKey(mustPrefix(t, "10.0.0.0/24"))
	tbl.setRoute(Route{Key: key})
	v := Via{RouteKey: key, Hop: mustAddr(t, "192.0.2.1")}
	tbl.setVia(v)

	tbl.delVia(v)

	if got := tbl.viasOf(key); len(got) != 0 {
		t.Errorf("via still present after delVia: %v", got)
	}
	if _, ok := tbl.route(key); !ok {
		t.Error("route must survive removal of its last via")
	}

	// Deleting again is harmless.
	tbl.delVia(v)
}

func TestTableStableOrder(t *testing.T) {
	tbl := newTable()
	prefixes := []string{"192.168.0.0/16", "10.0.0.0/8", "10.0.0.0/24", "172.16.0.0/12"}
	for _, p := range prefixes {
		tbl.setRoute(Route{Key: NewRouteKey(mustPrefix(t, p))})
	}
	hi := RouteKey{Prefix: mustPrefix(t, "10.0.0.0/24"), Preference: 200}
	tbl.setRoute(Route{Key: hi})

	want := []string{
		"10.0.0.0 pref 1",    // /8
		"10.0.0.0 pref 1",    // /24
		"10.0.0.0 pref 200",  // /24, higher preference after
		"172.16.0.0 pref 1",
		"192.168.0.0 pref 1",
	}
	keys := tbl.routeKeys()
	if len(keys) != len(want) {
		t.Fatalf("routeKeys returned %d keys, want %d", len(keys), len(want))
	}
	// /8 sorts before /24 for the same address.
	if keys[0].Prefix.Bits() != 8 || keys[1].Prefix.Bits() != 24 {
		t.Errorf("prefix length ordering wrong: %v", keys)
	}
	if keys[2] != hi {
		t.Errorf("keys[2] = %v, want the preference-200 key", keys[2])
	}

	// Two passes agree.
	again := tbl.routeKeys()
	for i := range keys {
		if keys[i] != again[i] {
			t.Fatalf("iteration order unstable at %d: %v vs %v", i, keys[i], again[i])
		}
	}
}
