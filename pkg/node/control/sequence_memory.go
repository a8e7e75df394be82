package control

import (
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// SequenceWithMemory (XML name "SequenceStar") behaves like Sequence but
// keeps its cursor on Failure: a later tick resumes at the failed child
// instead of restarting from the beginning. The cursor resets only after a
// fully successful pass or a halt.
type SequenceWithMemory struct {
	node.Base
	childIdx   int
	allSkipped bool
}

func NewSequenceWithMemory(name string, cfg *node.NodeConfig) *SequenceWithMemory {
	return &SequenceWithMemory{Base: node.NewBase(domain.KindControl, name, cfg)}
}

func (n *SequenceWithMemory) Tick() (domain.NodeStatus, error) {
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
		case domain.StatusFailure:
			// Cursor is deliberately kept; only the failed child and the
			// ones after it are reset.
			n.ResetChildrenFrom(n.childIdx)
			return domain.StatusFailure, nil
		case domain.StatusSuccess, domain.StatusSkipped:
			n.childIdx++
		}
	}

	n.ResetChildren()
	n.childIdx = 0

	if n.allSkipped {
		return domain.StatusSkipped, nil
	}
	return domain.StatusSuccess, nil
}

func (n *SequenceWithMemory) Halt() {
	n.childIdx = 0
	n.ResetChildren()
}
