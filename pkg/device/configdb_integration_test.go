//go:build integration

package device

import (
	"context"
	"net/netip"
	"testing"

	"github.com/brightwire-networks/brightwire/internal/testutil"
	"github.com/brightwire-networks/brightwire/pkg/iproute"
)

// Round-trips a route set through a real Redis CONFIG_DB.
func TestConfigDBRouteStoreRoundTrip(t *testing.T) {
	addr := testutil.RedisAddr(t)
	testutil.FlushDB(t, addr, 4)

	ctx := context.Background()
	cdb := NewConfigDBClient(addr)
	if err := cdb.Connect(ctx); err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer cdb.Close()

	store := NewConfigDBRouteStore(cdb, "")

	key := iproute.RouteKey{Prefix: netip.MustParsePrefix("10.1.0.0/24"), Preference: 1}
	routes := []iproute.Route{{Key: key, Tag: 100, Persistent: true}}
	vias := []iproute.Via{
		{RouteKey: key, Hop: netip.MustParseAddr("192.0.2.1")},
		{RouteKey: key, Hop: netip.MustParseAddr("192.0.2.5")},
	}
	if err := store.Save(ctx, routes, vias); err != nil {
		t.Fatalf("Save: %v", err)
	}

	gotRoutes, gotVias, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(gotRoutes) != 1 || gotRoutes[0] != routes[0] {
		t.Errorf("Load routes = %+v, want %+v", gotRoutes, routes)
	}
	if len(gotVias) != 2 {
		t.Errorf("Load vias = %+v, want 2", gotVias)
	}

	// A save without the route removes its entry.
	if err := store.Save(ctx, nil, nil); err != nil {
		t.Fatalf("Save (empty): %v", err)
	}
	gotRoutes, _, err = store.Load(ctx)
	if err != nil || len(gotRoutes) != 0 {
		t.Errorf("after empty save Load = %+v, %v; want empty", gotRoutes, err)
	}
}
