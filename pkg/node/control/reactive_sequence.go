package control

import (
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// ReactiveSequence restarts from the first child on every tick, so earlier
// children act as continuously re-checked conditions. When a child returns
// Running, the children before it are halted and the node returns Running.
// At most one child may be asynchronous.
type ReactiveSequence struct {
	node.Base
	runningChild int
}

func NewReactiveSequence(name string, cfg *node.NodeConfig) *ReactiveSequence {
	return &ReactiveSequence{
		Base:         node.NewBase(domain.KindControl, name, cfg),
		runningChild: -1,
	}
}

func (n *ReactiveSequence) Tick() (domain.NodeStatus, error) {
	allSkipped := true
	children := n.Children()

	for i, child := range children {
		status, err := node.ExecuteTick(child)
		if err != nil {
			return domain.StatusIdle, err
		}

		allSkipped = allSkipped && status == domain.StatusSkipped

		switch status {
		case domain.StatusRunning:
			for j := 0; j < i; j++ {
				node.Reset(children[j])
			}
			if n.runningChild == -1 {
				n.runningChild = i
			} else if n.runningChild != i {
				return domain.StatusIdle, fmt.Errorf(
					"%w: [%s] only a single child of a ReactiveSequence may return Running",
					domain.ErrNodeStructure, n.Config().Path)
			}
			return domain.StatusRunning, nil
		case domain.StatusFailure:
			n.ResetChildren()
			n.runningChild = -1
			return domain.StatusFailure, nil
		case domain.StatusSuccess:
			// Keep going.
		case domain.StatusSkipped:
			node.Reset(child)
		}
	}

	n.ResetChildren()
	n.runningChild = -1

	if allSkipped {
		return domain.StatusSkipped, nil
	}
	return domain.StatusSuccess, nil
}

func (n *ReactiveSequence) Halt() {
	n.runningChild = -1
	n.ResetChildren()
}
