package decorator

import (
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// ForceSuccess rewrites any completed child status to Success; Running and
// Skipped pass through.
type ForceSuccess struct {
	base
}

func NewForceSuccess(name string, cfg *node.NodeConfig) *ForceSuccess {
	return &ForceSuccess{base: newBase(name, cfg)}
}

func (n *ForceSuccess) Tick() (domain.NodeStatus, error) {
	status, err := n.tickChild()
	if err != nil {
		return domain.StatusIdle, err
	}
	if status.IsCompleted() {
		n.resetChild()
		return domain.StatusSuccess, nil
	}
	return status, nil
}

func (n *ForceSuccess) Halt() {
	n.resetChild()
}

// ForceFailure rewrites any completed child status to Failure; Running and
// Skipped pass through.
type ForceFailure struct {
	base
}

func NewForceFailure(name string, cfg *node.NodeConfig) *ForceFailure {
	return &ForceFailure{base: newBase(name, cfg)}
}

func (n *ForceFailure) Tick() (domain.NodeStatus, error) {
	status, err := n.tickChild()
	if err != nil {
		return domain.StatusIdle, err
	}
	if status.IsCompleted() {
		n.resetChild()
		return domain.StatusFailure, nil
	}
	return status, nil
}

func (n *ForceFailure) Halt() {
	n.resetChild()
}
