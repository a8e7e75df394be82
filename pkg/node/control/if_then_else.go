package control

import (
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// IfThenElse takes 2 or 3 children: condition, then-branch, optional
// else-branch. The condition is evaluated until it completes; once a branch
// has been entered, later ticks resume that branch without re-evaluating
// the condition. With 2 children, a failed condition fails the node.
type IfThenElse struct {
	node.Base
	childIdx int
}

func NewIfThenElse(name string, cfg *node.NodeConfig) *IfThenElse {
	return &IfThenElse{Base: node.NewBase(domain.KindControl, name, cfg)}
}

func (n *IfThenElse) Tick() (domain.NodeStatus, error) {
	children := n.Children()
	if len(children) < 2 || len(children) > 3 {
		return domain.StatusIdle, fmt.Errorf("%w: IfThenElse [%s] must have 2 or 3 children, has %d",
			domain.ErrNodeStructure, n.Config().Path, len(children))
	}

	if n.childIdx == 0 {
		status, err := node.ExecuteTick(children[0])
		if err != nil {
			return domain.StatusIdle, err
		}
		switch status {
		case domain.StatusRunning:
			return domain.StatusRunning, nil
		case domain.StatusSuccess:
			n.childIdx = 1
		case domain.StatusFailure:
			if len(children) == 3 {
				n.childIdx = 2
			} else {
				return domain.StatusFailure, nil
			}
		case domain.StatusSkipped:
			return domain.StatusSkipped, nil
		}
	}

	status, err := node.ExecuteTick(children[n.childIdx])
	if err != nil {
		return domain.StatusIdle, err
	}
	if status == domain.StatusRunning {
		return domain.StatusRunning, nil
	}

	n.ResetChildren()
	n.childIdx = 0
	return status, nil
}

func (n *IfThenElse) Halt() {
	n.childIdx = 0
	n.ResetChildren()
}
