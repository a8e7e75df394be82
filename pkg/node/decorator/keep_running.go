package decorator

import (
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// KeepRunningUntilFailure turns its child's Success into Running so the
// child executes again on the next tick; only a Failure terminates it.
type KeepRunningUntilFailure struct {
	base
}

func NewKeepRunningUntilFailure(name string, cfg *node.NodeConfig) *KeepRunningUntilFailure {
	return &KeepRunningUntilFailure{base: newBase(name, cfg)}
}

func (n *KeepRunningUntilFailure) Tick() (domain.NodeStatus, error) {
	status, err := n.tickChild()
	if err != nil {
		return domain.StatusIdle, err
	}

	switch status {
	case domain.StatusSuccess:
		n.resetChild()
		return domain.StatusRunning, nil
	case domain.StatusFailure:
		n.resetChild()
		return domain.StatusFailure, nil
	default:
		return domain.StatusRunning, nil
	}
}

func (n *KeepRunningUntilFailure) Halt() {
	n.resetChild()
}
