package decorator

import (
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// Repeat ticks its child up to "num_cycles" times, requiring Success each
// cycle. The child fails once and the whole node fails. -1 repeats forever.
// Synchronous children are looped within a single tick.
type Repeat struct {
	base
	numCycles   int
	repeatCount int
	allSkipped  bool
}

// RepeatPorts declares the cycle-count port.
func RepeatPorts() node.PortsList {
	return node.NewPortsList(
		node.InputPort("num_cycles", "successes needed; -1 to repeat forever").WithDefault(-1),
	)
}

func NewRepeat(name string, cfg *node.NodeConfig) *Repeat {
	return &Repeat{base: newBase(name, cfg), numCycles: -1}
}

func (n *Repeat) Tick() (domain.NodeStatus, error) {
	var err error
	if n.numCycles, err = node.GetInput[int](n.Config(), "num_cycles"); err != nil {
		return domain.StatusIdle, err
	}

	if n.Status() == domain.StatusIdle {
		n.allSkipped = true
	}

	for n.repeatCount < n.numCycles || n.numCycles == -1 {
		status, err := n.tickChild()
		if err != nil {
			return domain.StatusIdle, err
		}

		n.allSkipped = n.allSkipped && status == domain.StatusSkipped

		switch status {
		case domain.StatusSuccess:
			n.repeatCount++
			n.resetChild()
		case domain.StatusFailure:
			n.repeatCount = 0
			n.resetChild()
			return domain.StatusFailure, nil
		case domain.StatusRunning:
			return domain.StatusRunning, nil
		case domain.StatusSkipped:
			n.resetChild()
			return domain.StatusSkipped, nil
		}
	}

	n.repeatCount = 0

	if n.allSkipped {
		return domain.StatusSkipped, nil
	}
	return domain.StatusSuccess, nil
}

func (n *Repeat) Halt() {
	n.repeatCount = 0
	n.resetChild()
}
