// Package iproute implements the static route table manager: a typed route
// table with tag-scoped access and a resync protocol for bulk replacement
// of the table's contents.
//
// Tag scoping has a deliberate asymmetry inherited from the SDK contract:
// accessors and mutators (Route, Exists, RouteDel, ViaSet, ...) are scoped
// to the manager's current tag, but RouteIter and ViaIter are not — they
// traverse the whole table and callers filter by each route's Tag field
// themselves. Downstream code must not assume iteration is tag-filtered.
package iproute

import (
	"fmt"
	"net/netip"

	"github.com/brightwire-networks/brightwire/pkg/intf"
	"github.com/brightwire-networks/brightwire/pkg/util"
)

// DefaultPreference is the preference assigned to routes that do not
// specify one.
const DefaultPreference uint8 = 1

// RouteKey identifies a route: a network prefix plus a preference ranking
// competing routes to the same prefix. Keys are structural values; two keys
// with the same masked prefix and preference are the same key.
type RouteKey struct {
	Prefix     netip.Prefix
	Preference uint8
}

// NewRouteKey creates a key with the default preference.
func NewRouteKey(prefix netip.Prefix) RouteKey {
	return RouteKey{Prefix: prefix.Masked(), Preference: DefaultPreference}
}

// Valid reports whether the key carries a usable prefix.
func (k RouteKey) Valid() bool {
	return k.Prefix.IsValid()
}

func (k RouteKey) String() string {
	return fmt.Sprintf("%s pref %d", k.Prefix, k.Preference)
}

// normalize masks host bits off the prefix so structurally equal keys are
// also equal as map keys.
func (k RouteKey) normalize() RouteKey {
	k.Prefix = k.Prefix.Masked()
	return k
}

// Route is a static route. Its nexthops ("vias") are stored separately and
// associated by RouteKey; a route with zero vias is still a route.
type Route struct {
	Key RouteKey

	// Tag is a numbered scope used for table segregation; 0 means untagged.
	Tag uint32

	// Metric ranks routes of equal preference.
	Metric uint32

	// Persistent routes are flushed to the device's durable configuration
	// and survive restarts.
	Persistent bool
}

// Via describes one nexthop for a route: a nexthop address and/or egress
// interface, or the name of a nexthop group. Multiple vias under one key
// form an ECMP set.
type Via struct {
	RouteKey RouteKey

	// Hop is the nexthop IP address, if any.
	Hop netip.Addr

	// Intf is the egress interface, if any. Intf Null0 makes this a drop
	// route for the key's prefix.
	Intf intf.ID

	// NexthopGroup names a nexthop group to forward through. When set,
	// Hop and Intf must be left at their defaults.
	NexthopGroup string

	// MPLSLabel is pushed onto matching traffic when nonzero.
	MPLSLabel uint32
}

// Validate checks the via invariant: exactly one of {Hop/Intf,
// NexthopGroup} must be populated. Violations are configuration errors
// surfaced as InvalidArgument, never silently merged.
func (v Via) Validate() error {
	if !v.RouteKey.Valid() {
		return util.NewInvalidArgumentError("via", "no route key")
	}
	hasTarget := v.Hop.IsValid() || v.Intf.Valid()
	hasGroup := v.NexthopGroup != ""
	switch {
	case hasGroup && hasTarget:
		return util.NewInvalidArgumentError("via",
			"nexthop group '%s' excludes a nexthop address or interface on %s", v.NexthopGroup, v.RouteKey)
	case !hasGroup && !hasTarget:
		return util.NewInvalidArgumentError("via",
			"no nexthop address, interface or nexthop group on %s", v.RouteKey)
	}
	return nil
}

// IsDrop reports whether this via drops matching traffic.
func (v Via) IsDrop() bool {
	return v.Intf.IsNull0()
}

func (v Via) String() string {
	switch {
	case v.NexthopGroup != "":
		return fmt.Sprintf("%s via group %s", v.RouteKey, v.NexthopGroup)
	case v.Hop.IsValid() && v.Intf.Valid():
		return fmt.Sprintf("%s via %s %s", v.RouteKey, v.Hop, v.Intf)
	case v.Hop.IsValid():
		return fmt.Sprintf("%s via %s", v.RouteKey, v.Hop)
	default:
		return fmt.Sprintf("%s via %s", v.RouteKey, v.Intf)
	}
}

// viaID is a via's nexthop identity within its route: vias that differ in
// any of these coexist as ECMP paths, vias that match all of them upsert.
type viaID struct {
	hop   netip.Addr
	intf  intf.ID
	group string
}

func (v Via) id() viaID {
	return viaID{hop: v.Hop, intf: v.Intf, group: v.NexthopGroup}
}

// normalize masks the route key so vias land under the same key as their
// route regardless of how the caller spelled the prefix.
func (v Via) normalize() Via {
	v.RouteKey = v.RouteKey.normalize()
	return v
}
