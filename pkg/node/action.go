package node

import (
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
)

// TickFunc is the body of a synchronous leaf.
type TickFunc func(*NodeConfig) (domain.NodeStatus, error)

// SyncActionNode runs its body to completion within a single tick. Returning
// Running is a contract violation.
type SyncActionNode struct {
	Base
	tick TickFunc
}

// NewSyncAction wraps fn as an action leaf.
func NewSyncAction(name string, cfg *NodeConfig, fn TickFunc) *SyncActionNode {
	return &SyncActionNode{Base: NewBase(domain.KindAction, name, cfg), tick: fn}
}

func (n *SyncActionNode) Tick() (domain.NodeStatus, error) {
	status, err := n.tick(n.Config())
	if err != nil {
		if isEngineError(err) {
			return domain.StatusIdle, err
		}
		return domain.StatusIdle, &domain.UserError{Node: n.Config().Path, Err: err}
	}
	if status == domain.StatusRunning || status == domain.StatusIdle {
		return domain.StatusIdle, fmt.Errorf("%w: synchronous action [%s] returned %s",
			domain.ErrBadStatus, n.Config().Path, status)
	}
	return status, nil
}

func (n *SyncActionNode) Halt() {}

// ConditionNode is a sync leaf restricted to Success and Failure.
type ConditionNode struct {
	Base
	tick TickFunc
}

// NewCondition wraps fn as a condition leaf.
func NewCondition(name string, cfg *NodeConfig, fn TickFunc) *ConditionNode {
	return &ConditionNode{Base: NewBase(domain.KindCondition, name, cfg), tick: fn}
}

func (n *ConditionNode) Tick() (domain.NodeStatus, error) {
	status, err := n.tick(n.Config())
	if err != nil {
		if isEngineError(err) {
			return domain.StatusIdle, err
		}
		return domain.StatusIdle, &domain.UserError{Node: n.Config().Path, Err: err}
	}
	if !status.IsCompleted() {
		return domain.StatusIdle, fmt.Errorf("%w: condition [%s] returned %s",
			domain.ErrBadStatus, n.Config().Path, status)
	}
	return status, nil
}

func (n *ConditionNode) Halt() {}

// Stateful is the three-hook shape of an action that spans multiple ticks.
// OnStart is called when entering from a non-Running status, OnRunning when
// resuming, OnHalted when the node is aborted while Running.
type Stateful interface {
	OnStart(*NodeConfig) (domain.NodeStatus, error)
	OnRunning(*NodeConfig) (domain.NodeStatus, error)
	OnHalted(*NodeConfig)
}

// StatefulActionNode adapts a Stateful implementation to the node contract.
// A completed status latches until the parent resets the node.
type StatefulActionNode struct {
	Base
	impl Stateful
}

// NewStatefulAction wraps impl as an action leaf.
func NewStatefulAction(name string, cfg *NodeConfig, impl Stateful) *StatefulActionNode {
	return &StatefulActionNode{Base: NewBase(domain.KindAction, name, cfg), impl: impl}
}

func (n *StatefulActionNode) Tick() (domain.NodeStatus, error) {
	var status domain.NodeStatus
	var err error

	switch prev := n.Status(); prev {
	case domain.StatusIdle:
		status, err = n.impl.OnStart(n.Config())
	case domain.StatusRunning:
		status, err = n.impl.OnRunning(n.Config())
	default:
		return prev, nil
	}

	if err != nil {
		if isEngineError(err) {
			return domain.StatusIdle, err
		}
		return domain.StatusIdle, &domain.UserError{Node: n.Config().Path, Err: err}
	}
	if status == domain.StatusIdle {
		return domain.StatusIdle, fmt.Errorf("%w: stateful action [%s] returned Idle",
			domain.ErrBadStatus, n.Config().Path)
	}
	return status, nil
}

func (n *StatefulActionNode) Halt() {
	if n.Status() == domain.StatusRunning {
		n.impl.OnHalted(n.Config())
	}
}
