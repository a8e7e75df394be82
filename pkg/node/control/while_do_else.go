package control

import (
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// WhileDoElse is the reactive form of IfThenElse: the condition (child 0) is
// re-evaluated on every tick. If its result flips while a branch is Running,
// that branch is halted before the sibling starts.
type WhileDoElse struct {
	node.Base
}

func NewWhileDoElse(name string, cfg *node.NodeConfig) *WhileDoElse {
	return &WhileDoElse{Base: node.NewBase(domain.KindControl, name, cfg)}
}

func (n *WhileDoElse) Tick() (domain.NodeStatus, error) {
	children := n.Children()
	if len(children) < 2 || len(children) > 3 {
		return domain.StatusIdle, fmt.Errorf("%w: WhileDoElse [%s] must have 2 or 3 children, has %d",
			domain.ErrNodeStructure, n.Config().Path, len(children))
	}

	condition, err := node.ExecuteTick(children[0])
	if err != nil {
		return domain.StatusIdle, err
	}

	var status domain.NodeStatus
	switch condition {
	case domain.StatusRunning:
		return domain.StatusRunning, nil
	case domain.StatusSkipped:
		return domain.StatusSkipped, nil
	case domain.StatusSuccess:
		if len(children) == 3 {
			n.ResetChild(2)
		}
		status, err = node.ExecuteTick(children[1])
	case domain.StatusFailure:
		if len(children) == 3 {
			n.ResetChild(1)
			status, err = node.ExecuteTick(children[2])
		} else {
			status = domain.StatusFailure
		}
	}
	if err != nil {
		return domain.StatusIdle, err
	}

	if status == domain.StatusRunning {
		return domain.StatusRunning, nil
	}

	n.ResetChildren()
	return status, nil
}

func (n *WhileDoElse) Halt() {
	n.ResetChildren()
}
