package canopy

import (
	"log/slog"
	"time"

	"github.com/aretw0/canopy/pkg/blackboard"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// Tree is a runnable behavior tree. It exclusively owns its nodes and the
// root blackboard; a tree must be ticked by one caller at a time.
type Tree struct {
	root       node.TreeNode
	blackboard *blackboard.Blackboard
	treeID     string
	logger     *slog.Logger
	hooks      *domain.LifecycleHooks
}

// ID returns the BehaviorTree ID the tree was instantiated from.
func (t *Tree) ID() string { return t.treeID }

// Root exposes the root node for inspection and rendering.
func (t *Tree) Root() node.TreeNode { return t.root }

// RootBlackboard returns the tree's root scope.
func (t *Tree) RootBlackboard() *blackboard.Blackboard { return t.blackboard }

// TickOnce ticks the root exactly once and returns its status. A completed
// root is returned to Idle so the next call starts a fresh pass.
func (t *Tree) TickOnce() (domain.NodeStatus, error) {
	start := time.Now()

	status, err := node.ExecuteTick(t.root)
	if err != nil {
		return domain.StatusIdle, err
	}

	if status.IsCompleted() {
		t.root.SetStatus(domain.StatusIdle)
	}

	t.logger.Debug("tree tick", "tree", t.treeID, "status", status.String())
	t.hooks.TreeTicked(&domain.TreeEvent{
		Timestamp: start,
		TreeID:    t.treeID,
		Status:    status,
		Elapsed:   time.Since(start),
	})

	return status, nil
}

// TickExactlyOnce is an alias of TickOnce; the engine has no wake-up
// mechanism that would make the two differ.
func (t *Tree) TickExactlyOnce() (domain.NodeStatus, error) {
	return t.TickOnce()
}

// TickWhileRunning ticks repeatedly, sleeping period between ticks while
// the root reports Running, and returns the first terminal status.
func (t *Tree) TickWhileRunning(period time.Duration) (domain.NodeStatus, error) {
	for {
		status, err := t.TickOnce()
		if err != nil {
			return domain.StatusIdle, err
		}
		if status != domain.StatusRunning {
			return status, nil
		}
		if period > 0 {
			time.Sleep(period)
		}
	}
}

// Halt aborts any in-progress work and resets every node to Idle.
func (t *Tree) Halt() {
	node.Reset(t.root)
}
