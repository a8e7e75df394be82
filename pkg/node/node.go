// Package node defines the uniform contract every tree node satisfies and
// the building blocks leaves and composites are assembled from: the port
// system, the per-instance NodeConfig, and the action dispatch shapes.
package node

import (
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
)

// TreeNode is the uniform contract of every node in a behavior tree.
//
// Tick advances the node and returns Running, Success, Failure or Skipped —
// never Idle. Halt aborts in-progress work; it must be idempotent, and on a
// Running node it recursively halts running descendants. Status reports the
// last stored result, Idle before the first tick.
type TreeNode interface {
	Tick() (domain.NodeStatus, error)
	Halt()
	Status() domain.NodeStatus
	SetStatus(domain.NodeStatus)
	Kind() domain.NodeKind
	Name() string
	Config() *NodeConfig
	Children() []TreeNode
}

// ExecuteTick is the bookkeeping wrapper around TreeNode.Tick: it fires
// lifecycle hooks, stores the returned status on the node, and rejects Idle
// as a tick result. Composites tick their children through it.
func ExecuteTick(n TreeNode) (domain.NodeStatus, error) {
	cfg := n.Config()
	start := time.Now()

	cfg.Hooks.NodeTicked(&domain.NodeEvent{
		Timestamp: start,
		TreeID:    cfg.TreeID,
		Path:      cfg.Path,
		Name:      n.Name(),
		Kind:      n.Kind(),
	})

	status, err := n.Tick()
	if err != nil {
		return domain.StatusIdle, err
	}
	if status == domain.StatusIdle {
		return domain.StatusIdle, fmt.Errorf("%w: [%s] returned Idle", domain.ErrBadStatus, cfg.Path)
	}

	n.SetStatus(status)

	cfg.Logger.Debug("tick", "node", cfg.Path, "status", status.String())
	cfg.Hooks.NodeReturned(&domain.NodeEvent{
		Timestamp: time.Now(),
		TreeID:    cfg.TreeID,
		Path:      cfg.Path,
		Name:      n.Name(),
		Kind:      n.Kind(),
		Status:    status,
		Elapsed:   time.Since(start),
	})

	return status, nil
}

// Reset halts n if it is running and returns its status to Idle. Parents use
// it on their children; repeated calls are no-ops.
func Reset(n TreeNode) {
	if n.Status() == domain.StatusRunning {
		n.Halt()
	}
	n.SetStatus(domain.StatusIdle)
}

// Base carries the state common to all node implementations. Concrete nodes
// embed it and implement Tick/Halt.
type Base struct {
	name     string
	kind     domain.NodeKind
	config   *NodeConfig
	status   domain.NodeStatus
	children []TreeNode
}

// NewBase constructs the embedded core of a node.
func NewBase(kind domain.NodeKind, name string, cfg *NodeConfig) Base {
	return Base{name: name, kind: kind, config: cfg}
}

func (b *Base) Name() string                  { return b.name }
func (b *Base) Kind() domain.NodeKind         { return b.kind }
func (b *Base) Config() *NodeConfig           { return b.config }
func (b *Base) Status() domain.NodeStatus     { return b.status }
func (b *Base) SetStatus(s domain.NodeStatus) { b.status = s }
func (b *Base) Children() []TreeNode          { return b.children }

// AddChild appends one child; the compiler uses SetChildren instead.
func (b *Base) AddChild(child TreeNode) { b.children = append(b.children, child) }

// SetChildren installs the ordered child list at build time.
func (b *Base) SetChildren(children []TreeNode) { b.children = children }

// ResetChildren halts and resets every child.
func (b *Base) ResetChildren() {
	for _, c := range b.children {
		Reset(c)
	}
}

// ResetChildrenFrom halts and resets children from index start on.
func (b *Base) ResetChildrenFrom(start int) {
	for i := start; i < len(b.children); i++ {
		Reset(b.children[i])
	}
}

// ResetChild resets the child at index i; out-of-range is a no-op.
func (b *Base) ResetChild(i int) {
	if i >= 0 && i < len(b.children) {
		Reset(b.children[i])
	}
}

// Child returns the first child, the single child of a decorator.
func (b *Base) Child() TreeNode {
	if len(b.children) == 0 {
		return nil
	}
	return b.children[0]
}

// engineSentinels are the error kinds produced by the engine itself; leaf
// errors outside this set get wrapped in domain.UserError by the action
// dispatchers so callers can tell the two apart.
var engineSentinels = []error{
	domain.ErrPortNotProvided,
	domain.ErrPortNotWritable,
	domain.ErrKeyMissing,
	domain.ErrTypeMismatch,
	domain.ErrParse,
	domain.ErrBadStatus,
	domain.ErrNodeStructure,
	domain.ErrChildMissing,
}

func isEngineError(err error) bool {
	for _, sentinel := range engineSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	var pe *domain.PortError
	var ue *domain.UserError
	return errors.As(err, &pe) || errors.As(err, &ue)
}
