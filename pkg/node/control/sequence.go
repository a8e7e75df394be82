// Package control implements the built-in composite nodes: the Sequence and
// Fallback families, the conditional composites, and the Parallel variants.
// Each owns an ordered child list and a cursor or bitmap that survives
// across ticks; state resets only on a terminal return or a halt.
package control

import (
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// Sequence ticks children left to right starting at the cursor. Success and
// Skipped advance the cursor, Running holds it, Failure resets it and fails
// the whole node. Previously completed children are not ticked again while a
// later child is Running.
type Sequence struct {
	node.Base
	childIdx   int
	allSkipped bool
}

func NewSequence(name string, cfg *node.NodeConfig) *Sequence {
	return &Sequence{Base: node.NewBase(domain.KindControl, name, cfg)}
}

func (n *Sequence) Tick() (domain.NodeStatus, error) {
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
		case domain.StatusFailure:
			n.ResetChildren()
			n.childIdx = 0
			return domain.StatusFailure, nil
		case domain.StatusSuccess, domain.StatusSkipped:
			n.childIdx++
		case domain.StatusRunning:
			return domain.StatusRunning, nil
		}
	}

	n.ResetChildren()
	n.childIdx = 0

	if n.allSkipped {
		return domain.StatusSkipped, nil
	}
	return domain.StatusSuccess, nil
}

func (n *Sequence) Halt() {
	n.childIdx = 0
	n.ResetChildren()
}
