package control

import (
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// ReactiveFallback restarts from the first child on every tick. A Running
// child halts its earlier siblings; a Success resets everything and
// succeeds; Failure moves on to the next child.
type ReactiveFallback struct {
	node.Base
}

func NewReactiveFallback(name string, cfg *node.NodeConfig) *ReactiveFallback {
	return &ReactiveFallback{Base: node.NewBase(domain.KindControl, name, cfg)}
}

func (n *ReactiveFallback) Tick() (domain.NodeStatus, error) {
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
			return domain.StatusRunning, nil
		case domain.StatusSuccess:
			n.ResetChildren()
			return domain.StatusSuccess, nil
		case domain.StatusFailure:
			// Keep going.
		case domain.StatusSkipped:
			node.Reset(child)
		}
	}

	n.ResetChildren()

	if allSkipped {
		return domain.StatusSkipped, nil
	}
	return domain.StatusFailure, nil
}

func (n *ReactiveFallback) Halt() {
	n.ResetChildren()
}
