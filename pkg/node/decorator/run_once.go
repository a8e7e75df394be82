package decorator

import (
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// RunOnce ticks its child until it completes, then never again: with port
// "then_skip" true (the default) later ticks return Skipped, otherwise they
// return the latched status forever. A halt clears the latch.
type RunOnce struct {
	base
	alreadyTicked  bool
	returnedStatus domain.NodeStatus
}

// RunOncePorts declares the latch-behavior port.
func RunOncePorts() node.PortsList {
	return node.NewPortsList(
		node.InputPort("then_skip", "return Skipped after the first completion").WithDefault(true),
	)
}

func NewRunOnce(name string, cfg *node.NodeConfig) *RunOnce {
	return &RunOnce{base: newBase(name, cfg)}
}

func (n *RunOnce) Tick() (domain.NodeStatus, error) {
	skip, err := node.GetInput[bool](n.Config(), "then_skip")
	if err != nil {
		return domain.StatusIdle, err
	}

	if n.alreadyTicked {
		if skip {
			return domain.StatusSkipped, nil
		}
		return n.returnedStatus, nil
	}

	status, err := n.tickChild()
	if err != nil {
		return domain.StatusIdle, err
	}

	if status.IsCompleted() {
		n.alreadyTicked = true
		n.returnedStatus = status
		n.resetChild()
	}

	return status, nil
}

func (n *RunOnce) Halt() {
	n.alreadyTicked = false
	n.returnedStatus = domain.StatusIdle
	n.resetChild()
}
