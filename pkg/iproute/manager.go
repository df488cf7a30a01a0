package iproute

import (
	"iter"

	"github.com/sirupsen/logrus"

	"github.com/brightwire-networks/brightwire/pkg/util"
)

// Manager is the static route manager facade. It owns the live route table
// and coordinates tag scoping and resync sessions over it.
//
// A Manager is a single-owner, synchronous API: one logical writer issues
// sequential calls, and there is no internal locking. Callers sharing a
// Manager across goroutines must serialize access themselves; behavior
// under concurrent mutation, including mutation during iteration, is
// undefined.
type Manager struct {
	tag  uint32
	live *table

	// shadow is non-nil exactly while a resync session is active. All
	// non-iteration operations dispatch here when set; iteration always
	// reads live.
	shadow *table

	store RouteStore
	log   *logrus.Entry
}

// NewManager creates a manager with an empty live table, no tag, and no
// active resync session.
func NewManager() *Manager {
	return &Manager{
		live: newTable(),
		log:  util.WithField("component", "iproute"),
	}
}

// UseStore attaches a durable route store. Persistent routes are written to
// it by Flush and read back by Restore.
func (m *Manager) UseStore(s RouteStore) {
	m.store = s
}

// TagIs sets the manager's scope tag. With a nonzero tag, accessors and
// mutators only see and affect routes carrying that tag; 0 clears the
// filter. Iteration is never tag-filtered (see the package comment).
func (m *Manager) TagIs(tag uint32) {
	m.tag = tag
}

// Tag returns the current scope tag, or 0 if none is set.
func (m *Manager) Tag() uint32 {
	return m.tag
}

// target returns the table non-iteration operations act on: the shadow
// table during resync, the live table otherwise. This is the single
// dispatch point for resync mode.
func (m *Manager) target() *table {
	if m.shadow != nil {
		return m.shadow
	}
	return m.live
}

func (m *Manager) tagVisible(r Route) bool {
	return m.tag == 0 || r.Tag == m.tag
}

// ResyncInit starts a resync session. From here until ResyncComplete, the
// manager acts against a temporary table that starts off empty: set, del,
// exists and getters reference only entries written during the session,
// regardless of the live table's contents. Calling ResyncInit while a
// session is already active discards the session's writes and restarts it
// with a fresh empty table.
func (m *Manager) ResyncInit() {
	if m.shadow != nil {
		m.log.Debug("resync restarted, discarding pending session writes")
	}
	m.shadow = newTable()
}

// ResyncComplete ends the resync session: live entries visible under the
// current tag that were not re-declared during the session are deleted,
// session entries are merged into the live table, and entries outside the
// tag scope are left untouched. Completing with no session underway is a
// no-op.
func (m *Manager) ResyncComplete() {
	if m.shadow == nil {
		return
	}
	shadow := m.shadow
	m.shadow = nil

	var droppedRoutes, droppedVias int

	// Sweep: anything tag-visible in live and not re-declared goes away.
	for _, k := range m.live.routeKeys() {
		r, _ := m.live.route(k)
		if !m.tagVisible(r) {
			continue
		}
		if _, ok := shadow.route(k); !ok {
			droppedVias += len(m.live.vias[k])
			m.live.delRoute(k)
			droppedRoutes++
			continue
		}
		for _, v := range m.live.viasOf(k) {
			if _, ok := shadow.via(v); !ok {
				m.live.delVia(v)
				droppedVias++
			}
		}
	}

	// Merge: session entries overwrite live by key and via identity.
	var merged int
	for _, k := range shadow.routeKeys() {
		r, _ := shadow.route(k)
		m.live.setRoute(r)
		for _, v := range shadow.viasOf(k) {
			m.live.setVia(v)
		}
		merged++
	}

	m.log.WithFields(logrus.Fields{
		"tag":            m.tag,
		"merged_routes":  merged,
		"dropped_routes": droppedRoutes,
		"dropped_vias":   droppedVias,
	}).Debug("resync complete")
}

// ResyncActive reports whether a resync session is underway.
func (m *Manager) ResyncActive() bool {
	return m.shadow != nil
}

// RouteIter iterates over all routes in the live table, in a stable order
// for the duration of one pass. It is not tag-filtered and it reads the
// live table even during resync; callers scope themselves by checking each
// route's Tag field. Each call starts a fresh pass.
func (m *Manager) RouteIter() iter.Seq[Route] {
	keys := m.live.routeKeys()
	return func(yield func(Route) bool) {
		for _, k := range keys {
			r, ok := m.live.route(k)
			if !ok {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// ViaIter iterates over the vias of one route key in the live table, in a
// stable order for the duration of one pass. Like RouteIter, it is not
// tag-filtered and ignores any active resync session.
func (m *Manager) ViaIter(key RouteKey) iter.Seq[Via] {
	vias := m.live.viasOf(key.normalize())
	return func(yield func(Via) bool) {
		for _, v := range vias {
			if !yield(v) {
				return
			}
		}
	}
}

// Exists reports whether a route with this key exists within the current
// tag scope.
func (m *Manager) Exists(key RouteKey) bool {
	r, ok := m.target().route(key.normalize())
	return ok && m.tagVisible(r)
}

// ViaExists reports whether this via exists, scoped by the owning route's
// tag. A malformed via never exists.
func (m *Manager) ViaExists(v Via) bool {
	if v.Validate() != nil {
		return false
	}
	v = v.normalize()
	t := m.target()
	r, ok := t.route(v.RouteKey)
	if !ok || !m.tagVisible(r) {
		return false
	}
	_, ok = t.via(v)
	return ok
}

// Route returns the route for a key, or NotFound if no route with that key
// is visible under the current tag.
func (m *Manager) Route(key RouteKey) (Route, error) {
	key = key.normalize()
	r, ok := m.target().route(key)
	if !ok || !m.tagVisible(r) {
		return Route{}, util.NewNotFoundError("route", key.String())
	}
	return r, nil
}

// RouteSet inserts or updates a route. The route's vias are untouched.
func (m *Manager) RouteSet(r Route) {
	m.target().setRoute(r)
}

// RouteDel removes the route and all of its vias. A key that is absent or
// outside the current tag scope is left alone.
func (m *Manager) RouteDel(key RouteKey) {
	key = key.normalize()
	t := m.target()
	r, ok := t.route(key)
	if !ok || !m.tagVisible(r) {
		return
	}
	t.delRoute(key)
}

// ViaSet adds or updates a via on an existing route. Vias with distinct
// nexthop identities accumulate as ECMP paths; setting a via with the same
// identity overwrites it.
//
// A via that sets neither a nexthop address/interface nor a nexthop group,
// or both, is rejected with InvalidArgument before any state changes.
// Setting a via on a route outside the manager's current tag scope is a
// caller contract violation and panics.
func (m *Manager) ViaSet(v Via) error {
	if err := v.Validate(); err != nil {
		return err
	}
	v = v.normalize()
	t := m.target()
	r, ok := t.route(v.RouteKey)
	if !ok {
		return util.NewNotFoundError("route", v.RouteKey.String())
	}
	if !m.tagVisible(r) {
		util.Contract("via set", "route %s has tag %d, manager tag is %d", v.RouteKey, r.Tag, m.tag)
	}
	t.setVia(v)
	return nil
}

// ViaDel removes one via by nexthop identity. When the last via is removed
// the route remains, with no nexthop information. Deleting a via that is
// not present is a no-op; deleting a via from a route outside the current
// tag scope panics, as with ViaSet.
func (m *Manager) ViaDel(v Via) error {
	if err := v.Validate(); err != nil {
		return err
	}
	v = v.normalize()
	t := m.target()
	r, ok := t.route(v.RouteKey)
	if !ok {
		return nil
	}
	if !m.tagVisible(r) {
		util.Contract("via del", "route %s has tag %d, manager tag is %d", v.RouteKey, r.Tag, m.tag)
	}
	t.delVia(v)
	return nil
}
