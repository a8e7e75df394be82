package domain

import "time"

// NodeEvent describes one tick of one node.
type NodeEvent struct {
	Timestamp time.Time
	TreeID    string
	Path      string
	Name      string
	Kind      NodeKind
	// Status is the result of the tick; undefined for OnNodeTick.
	Status NodeStatus
	// Elapsed is how long the tick took; only set for OnNodeResult.
	Elapsed time.Duration
}

// TreeEvent describes one root tick.
type TreeEvent struct {
	Timestamp time.Time
	TreeID    string
	Status    NodeStatus
	Elapsed   time.Duration
}

// LifecycleHooks carries observability callbacks. All fields are optional;
// hooks run synchronously on the ticking goroutine and must not block.
type LifecycleHooks struct {
	OnNodeTick   func(*NodeEvent)
	OnNodeResult func(*NodeEvent)
	OnTreeTick   func(*TreeEvent)
}

// NodeTicked invokes OnNodeTick if set.
func (h *LifecycleHooks) NodeTicked(ev *NodeEvent) {
	if h != nil && h.OnNodeTick != nil {
		h.OnNodeTick(ev)
	}
}

// NodeReturned invokes OnNodeResult if set.
func (h *LifecycleHooks) NodeReturned(ev *NodeEvent) {
	if h != nil && h.OnNodeResult != nil {
		h.OnNodeResult(ev)
	}
}

// TreeTicked invokes OnTreeTick if set.
func (h *LifecycleHooks) TreeTicked(ev *TreeEvent) {
	if h != nil && h.OnTreeTick != nil {
		h.OnTreeTick(ev)
	}
}
