package iproute

import (
	"errors"
	"testing"

	"github.com/brightwire-networks/brightwire/pkg/intf"
	"github.com/brightwire-networks/brightwire/pkg/util"
)

func key(t *testing.T, prefix string) RouteKey {
	t.Helper()
	return NewRouteKey(mustPrefix(t, prefix))
}

func collectRoutes(m *Manager) []Route {
	var out []Route
	for r := range m.RouteIter() {
		out = append(out, r)
	}
	return out
}

func collectVias(m *Manager, k RouteKey) []Via {
	var out []Via
	for v := range m.ViaIter(k) {
		out = append(out, v)
	}
	return out
}

func TestRouteSetGetRoundTrip(t *testing.T) {
	m := NewManager()
	r := Route{Key: key(t, "10.0.0.0/24"), Tag: 7, Metric: 20, Persistent: true}
	m.RouteSet(r)

	got, err := m.Route(r.Key)
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if got != r {
		t.Errorf("Route() = %+v, want %+v", got, r)
	}
	if !m.Exists(r.Key) {
		t.Error("Exists() = false after RouteSet")
	}
}

func TestRouteNotFound(t *testing.T) {
	m := NewManager()
	_, err := m.Route(key(t, "10.9.9.0/24"))
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("Route() on missing key: error = %v, want ErrNotFound", err)
	}
	if m.Exists(key(t, "10.9.9.0/24")) {
		t.Error("Exists() = true on empty table")
	}
}

func TestViaSetUpsertAndECMP(t *testing.T) {
	m := NewManager()
	k := key(t, "10.0.0.0/24")
	m.RouteSet(Route{Key: k})

	v := Via{RouteKey: k, Hop: mustAddr(t, "192.0.2.1")}
	if err := m.ViaSet(v); err != nil {
		t.Fatalf("ViaSet error = %v", err)
	}

	vias := collectVias(m, k)
	if len(vias) != 1 || vias[0] != v {
		t.Fatalf("ViaIter = %v, want exactly [%v]", vias, v)
	}
	if !m.ViaExists(v) {
		t.Error("ViaExists = false after ViaSet")
	}

	// Same nexthop identity overwrites rather than duplicates.
	v.MPLSLabel = 42
	if err := m.ViaSet(v); err != nil {
		t.Fatalf("ViaSet (upsert) error = %v", err)
	}
	vias = collectVias(m, k)
	if len(vias) != 1 || vias[0].MPLSLabel != 42 {
		t.Fatalf("after upsert ViaIter = %v", vias)
	}

	// A different hop accumulates as an ECMP path.
	if err := m.ViaSet(Via{RouteKey: k, Hop: mustAddr(t, "192.0.2.2")}); err != nil {
		t.Fatalf("ViaSet (ecmp) error = %v", err)
	}
	if vias = collectVias(m, k); len(vias) != 2 {
		t.Errorf("ECMP set has %d vias, want 2", len(vias))
	}
}

func TestViaSetInvalidLeavesTableUnchanged(t *testing.T) {
	m := NewManager()
	k := key(t, "10.0.0.0/24")
	m.RouteSet(Route{Key: k})
	if err := m.ViaSet(Via{RouteKey: k, Hop: mustAddr(t, "192.0.2.1")}); err != nil {
		t.Fatal(err)
	}

	bad := Via{
		RouteKey:     k,
		Intf:         intf.MustParse("Ethernet0"),
		NexthopGroup: "nhg-edge",
	}
	err := m.ViaSet(bad)
	if !errors.Is(err, util.ErrInvalidArgument) {
		t.Fatalf("ViaSet(both kinds) error = %v, want ErrInvalidArgument", err)
	}
	if vias := collectVias(m, k); len(vias) != 1 {
		t.Errorf("rejected ViaSet mutated the table: %v", vias)
	}

	err = m.ViaSet(Via{RouteKey: k})
	if !errors.Is(err, util.ErrInvalidArgument) {
		t.Errorf("ViaSet(nothing set) error = %v, want ErrInvalidArgument", err)
	}
}

func TestViaSetMissingRoute(t *testing.T) {
	m := NewManager()
	err := m.ViaSet(Via{RouteKey: key(t, "10.0.0.0/24"), Hop: mustAddr(t, "192.0.2.1")})
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("ViaSet without its route: error = %v, want ErrNotFound", err)
	}
}

func TestViaDelKeepsRoute(t *testing.T) {
	m := NewManager()
	k := key(t, "10.0.0.0/24")
	m.RouteSet(Route{Key: k})
	v := Via{RouteKey: k, Hop: mustAddr(t, "192.0.2.1")}
	if err := m.ViaSet(v); err != nil {
		t.Fatal(err)
	}

	if err := m.ViaDel(v); err != nil {
		t.Fatalf("ViaDel error = %v", err)
	}
	if vias := collectVias(m, k); len(vias) != 0 {
		t.Errorf("via survived ViaDel: %v", vias)
	}
	if !m.Exists(k) {
		t.Error("route must persist with zero vias")
	}

	// Absent via: no-op, no error.
	if err := m.ViaDel(v); err != nil {
		t.Errorf("ViaDel of absent via: error = %v", err)
	}
}

func TestRouteDelDropsAllVias(t *testing.T) {
	m := NewManager()
	k := key(t, "10.0.0.0/24")
	m.RouteSet(Route{Key: k})
	m.ViaSet(Via{RouteKey: k, Hop: mustAddr(t, "192.0.2.1")})
	m.ViaSet(Via{RouteKey: k, Hop: mustAddr(t, "192.0.2.2")})

	m.RouteDel(k)

	if m.Exists(k) {
		t.Error("route still exists after RouteDel")
	}
	if vias := collectVias(m, k); len(vias) != 0 {
		t.Errorf("ViaIter after RouteDel = %v, want empty", vias)
	}
}

func TestTagScopesAccessorsButNotIteration(t *testing.T) {
	m := NewManager()
	r1 := Route{Key: key(t, "10.1.0.0/24"), Tag: 1}
	r2 := Route{Key: key(t, "10.2.0.0/24"), Tag: 2}
	m.RouteSet(r1)
	m.RouteSet(r2)

	m.TagIs(1)
	if m.Tag() != 1 {
		t.Fatalf("Tag() = %d, want 1", m.Tag())
	}

	if !m.Exists(r1.Key) {
		t.Error("matching-tag route invisible")
	}
	if m.Exists(r2.Key) {
		t.Error("other-tag route visible to Exists")
	}
	if _, err := m.Route(r2.Key); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("Route() on other-tag key: error = %v, want ErrNotFound", err)
	}

	// Deleting an other-tag route is a no-op, not an effect.
	m.RouteDel(r2.Key)
	m.TagIs(0)
	if !m.Exists(r2.Key) {
		t.Error("RouteDel under mismatched tag removed the route")
	}

	// Iteration ignores the tag filter: both routes are always yielded,
	// and callers scope themselves via the Tag field.
	m.TagIs(1)
	routes := collectRoutes(m)
	if len(routes) != 2 {
		t.Errorf("RouteIter with tag set yielded %d routes, want 2 (unfiltered)", len(routes))
	}
}

func TestViaMutationTagMismatchPanics(t *testing.T) {
	m := NewManager()
	k := key(t, "10.1.0.0/24")
	m.RouteSet(Route{Key: k, Tag: 2})
	m.TagIs(1)

	assertContractPanic := func(t *testing.T, fn func()) {
		t.Helper()
		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("expected panic on tag-mismatched via mutation")
			}
			if _, ok := r.(*util.ContractError); !ok {
				t.Fatalf("panic value %T, want *util.ContractError", r)
			}
		}()
		fn()
	}

	v := Via{RouteKey: k, Hop: mustAddr(t, "192.0.2.1")}
	assertContractPanic(t, func() { m.ViaSet(v) })
	assertContractPanic(t, func() { m.ViaDel(v) })

	// The mismatched route is merely invisible to reads, never fatal.
	if m.ViaExists(v) {
		t.Error("ViaExists = true across tags")
	}
}

func TestResyncReplacesUndeclaredRoutes(t *testing.T) {
	m := NewManager()
	a := Route{Key: key(t, "10.0.1.0/24")}
	b := Route{Key: key(t, "10.0.2.0/24")}
	c := Route{Key: key(t, "10.0.3.0/24")}
	for _, r := range []Route{a, b, c} {
		m.RouteSet(r)
	}

	m.ResyncInit()
	aPrime := a
	aPrime.Metric = 99
	m.RouteSet(aPrime)
	d := Route{Key: key(t, "10.0.4.0/24")}
	m.RouteSet(d)
	m.ResyncComplete()

	routes := collectRoutes(m)
	if len(routes) != 2 {
		t.Fatalf("after resync table has %d routes, want 2: %v", len(routes), routes)
	}
	got, err := m.Route(a.Key)
	if err != nil || got != aPrime {
		t.Errorf("Route(A) = %+v, %v; want modified A", got, err)
	}
	if !m.Exists(d.Key) {
		t.Error("route declared during resync missing")
	}
	for _, gone := range []RouteKey{b.Key, c.Key} {
		if m.Exists(gone) {
			t.Errorf("undeclared route %s survived resync", gone)
		}
	}
}

func TestResyncHonorsTagScope(t *testing.T) {
	m := NewManager()
	a := Route{Key: key(t, "10.0.1.0/24"), Tag: 1}
	b := Route{Key: key(t, "10.0.2.0/24"), Tag: 2}
	m.RouteSet(a)
	m.RouteSet(b)

	m.TagIs(1)
	m.ResyncInit()
	aPrime := a
	aPrime.Metric = 5
	m.RouteSet(aPrime)
	m.ResyncComplete()

	got, err := m.Route(a.Key)
	if err != nil || got != aPrime {
		t.Errorf("Route(A) = %+v, %v; want replaced A", got, err)
	}

	// B carries another tag: untouched by this manager's resync.
	m.TagIs(0)
	got, err = m.Route(b.Key)
	if err != nil || got != b {
		t.Errorf("other-tag route B = %+v, %v; want untouched", got, err)
	}
}

func TestResyncShadowsAccessorsButNotIteration(t *testing.T) {
	m := NewManager()
	old := Route{Key: key(t, "10.0.1.0/24")}
	m.RouteSet(old)
	m.RouteSet(Route{Key: key(t, "10.0.2.0/24")})

	m.ResyncInit()
	if !m.ResyncActive() {
		t.Fatal("ResyncActive = false after ResyncInit")
	}

	// The session table starts empty: pre-resync entries are invisible to
	// getters even though they were never touched.
	if m.Exists(old.Key) {
		t.Error("pre-resync route visible to Exists during resync")
	}
	if _, err := m.Route(old.Key); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("Route() during resync: error = %v, want ErrNotFound", err)
	}

	// Writes land in the session table.
	fresh := Route{Key: key(t, "10.0.9.0/24")}
	m.RouteSet(fresh)
	if !m.Exists(fresh.Key) {
		t.Error("session write invisible to Exists")
	}

	// Iteration still reads the live table: stale by design.
	routes := collectRoutes(m)
	if len(routes) != 2 {
		t.Fatalf("RouteIter during resync yielded %d routes, want the 2 live ones", len(routes))
	}
	for _, r := range routes {
		if r.Key == fresh.Key {
			t.Error("RouteIter during resync yielded a session-only route")
		}
	}

	m.ResyncComplete()
	if m.ResyncActive() {
		t.Error("ResyncActive = true after ResyncComplete")
	}
}

func TestResyncViaSweep(t *testing.T) {
	m := NewManager()
	k := key(t, "10.0.1.0/24")
	m.RouteSet(Route{Key: k})
	keep := Via{RouteKey: k, Hop: mustAddr(t, "192.0.2.1")}
	drop := Via{RouteKey: k, Hop: mustAddr(t, "192.0.2.2")}
	m.ViaSet(keep)
	m.ViaSet(drop)

	m.ResyncInit()
	m.RouteSet(Route{Key: k})
	if err := m.ViaSet(keep); err != nil {
		t.Fatal(err)
	}
	m.ResyncComplete()

	vias := collectVias(m, k)
	if len(vias) != 1 || vias[0] != keep {
		t.Errorf("after resync vias = %v, want only the re-declared one", vias)
	}
}

func TestResyncInitRestartsSession(t *testing.T) {
	m := NewManager()
	m.ResyncInit()
	discarded := Route{Key: key(t, "10.0.1.0/24")}
	m.RouteSet(discarded)

	// Re-entering resync discards prior session writes.
	m.ResyncInit()
	if m.Exists(discarded.Key) {
		t.Error("session restart kept a write from the discarded session")
	}
	kept := Route{Key: key(t, "10.0.2.0/24")}
	m.RouteSet(kept)
	m.ResyncComplete()

	if m.Exists(discarded.Key) {
		t.Error("discarded session write survived to the live table")
	}
	if !m.Exists(kept.Key) {
		t.Error("second session write missing from the live table")
	}
}

func TestResyncCompleteWhileIdleIsNoOp(t *testing.T) {
	m := NewManager()
	r := Route{Key: key(t, "10.0.1.0/24")}
	m.RouteSet(r)

	// No session underway: nothing happens, nothing is swept.
	m.ResyncComplete()

	if got, err := m.Route(r.Key); err != nil || got != r {
		t.Errorf("idle ResyncComplete changed the table: %+v, %v", got, err)
	}
}

func TestRouteIterStableWithinPass(t *testing.T) {
	m := NewManager()
	for _, p := range []string{"10.3.0.0/24", "10.1.0.0/24", "10.2.0.0/24"} {
		m.RouteSet(Route{Key: key(t, p)})
	}

	first := collectRoutes(m)
	second := collectRoutes(m)
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("iteration yielded %d/%d routes, want 3", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("iteration order differs at %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestRouteIterEarlyStop(t *testing.T) {
	m := NewManager()
	for _, p := range []string{"10.1.0.0/24", "10.2.0.0/24", "10.3.0.0/24"} {
		m.RouteSet(Route{Key: key(t, p)})
	}
	n := 0
	for range m.RouteIter() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("early break yielded %d routes, want 2", n)
	}
}
