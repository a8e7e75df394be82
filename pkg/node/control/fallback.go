package control

import (
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// Fallback tries children in order until one succeeds. Failure and Skipped
// advance the cursor, Success resets it and succeeds the whole node, and
// when every child has failed the node fails.
type Fallback struct {
	node.Base
	childIdx   int
	allSkipped bool
}

func NewFallback(name string, cfg *node.NodeConfig) *Fallback {
	return &Fallback{Base: node.NewBase(domain.KindControl, name, cfg)}
}

func (n *Fallback) Tick() (domain.NodeStatus, error) {
	if n.Status() == domain.StatusIdle {
		n.allSkipped = true
	}

	children := n.Children()
	for n.childIdx < len(children) {
		status, err := node.ExecuteTick(children[n.childIdx])
		if err != nil {
			return domain.StatusIdle, err
		}

		n.allSkipped = n.allSkipped && status == domain.StatusSkipped

		switch status {
		case domain.StatusRunning:
			return domain.StatusRunning, nil
		case domain.StatusSuccess:
			n.ResetChildren()
			n.childIdx = 0
			return domain.StatusSuccess, nil
		case domain.StatusFailure, domain.StatusSkipped:
			n.childIdx++
		}
	}

	n.ResetChildren()
	n.childIdx = 0

	if n.allSkipped {
		return domain.StatusSkipped, nil
	}
	return domain.StatusFailure, nil
}

func (n *Fallback) Halt() {
	n.childIdx = 0
	n.ResetChildren()
}
