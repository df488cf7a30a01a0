package intf

import (
	"context"
	"time"

	"github.com/brightwire-networks/brightwire/pkg/util"
)

// Handler receives interface change notifications from a Watcher.
// Implementations should return quickly; callbacks run on the watcher's
// polling goroutine.
type Handler interface {
	// OnIntfCreate is called when a new interface appears.
	OnIntfCreate(ID)
	// OnIntfDelete is called when an interface disappears.
	OnIntfDelete(ID)
	// OnOperStatus is called when an interface's operational status changes.
	OnOperStatus(ID, OperStatus)
}

// Watcher polls a Mgr and notifies a Handler about interface lifecycle and
// operational status changes. The state store has no event channel, so
// change detection is by periodic snapshot diffing.
type Watcher struct {
	mgr      *Mgr
	handler  Handler
	interval time.Duration

	known map[ID]OperStatus
}

// NewWatcher creates a watcher polling at the given interval.
func NewWatcher(mgr *Mgr, handler Handler, interval time.Duration) *Watcher {
	return &Watcher{
		mgr:      mgr,
		handler:  handler,
		interval: interval,
		known:    make(map[ID]OperStatus),
	}
}

// Run polls until ctx is cancelled. The first poll establishes the baseline
// snapshot; no callbacks fire for interfaces that already existed.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.baseline(ctx); err != nil {
		return err
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.poll(ctx); err != nil {
				util.Warnf("interface watch poll failed: %v", err)
			}
		}
	}
}

func (w *Watcher) baseline(ctx context.Context) error {
	snap, err := w.snapshot(ctx)
	if err != nil {
		return err
	}
	w.known = snap
	return nil
}

// poll diffs the current snapshot against the previous one and fires
// handler callbacks for every difference.
func (w *Watcher) poll(ctx context.Context) error {
	snap, err := w.snapshot(ctx)
	if err != nil {
		return err
	}

	for id, oper := range snap {
		prev, ok := w.known[id]
		if !ok {
			w.handler.OnIntfCreate(id)
			w.handler.OnOperStatus(id, oper)
			continue
		}
		if prev != oper {
			w.handler.OnOperStatus(id, oper)
		}
	}
	for id := range w.known {
		if _, ok := snap[id]; !ok {
			w.handler.OnIntfDelete(id)
		}
	}

	w.known = snap
	return nil
}

func (w *Watcher) snapshot(ctx context.Context) (map[ID]OperStatus, error) {
	ids, err := w.mgr.Interfaces(ctx)
	if err != nil {
		return nil, err
	}
	snap := make(map[ID]OperStatus, len(ids))
	for _, id := range ids {
		oper, err := w.mgr.OperStatus(ctx, id)
		if err != nil {
			// Interface vanished between list and read; treat as absent.
			continue
		}
		snap[id] = oper
	}
	return snap, nil
}
