package decorator

import (
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// Retry re-ticks its child after a Failure, up to "num_attempts" tries. A
// Success stops the loop and succeeds the node. -1 retries forever.
type Retry struct {
	base
	maxAttempts int
	tryCount    int
	allSkipped  bool
}

// RetryPorts declares the attempt-count port.
func RetryPorts() node.PortsList {
	return node.NewPortsList(
		node.InputPort("num_attempts", "attempts allowed; -1 to retry forever").WithDefault(-1),
	)
}

func NewRetry(name string, cfg *node.NodeConfig) *Retry {
	return &Retry{base: newBase(name, cfg), maxAttempts: -1}
}

func (n *Retry) Tick() (domain.NodeStatus, error) {
	var err error
	if n.maxAttempts, err = node.GetInput[int](n.Config(), "num_attempts"); err != nil {
		return domain.StatusIdle, err
	}

	if n.Status() == domain.StatusIdle {
		n.allSkipped = true
	}

	for n.tryCount < n.maxAttempts || n.maxAttempts == -1 {
		status, err := n.tickChild()
		if err != nil {
			return domain.StatusIdle, err
		}

		n.allSkipped = n.allSkipped && status == domain.StatusSkipped

		switch status {
		case domain.StatusSuccess:
			n.tryCount = 0
			n.resetChild()
			return domain.StatusSuccess, nil
		case domain.StatusFailure:
			n.tryCount++
			n.resetChild()
		case domain.StatusRunning:
			return domain.StatusRunning, nil
		case domain.StatusSkipped:
			n.resetChild()
			return domain.StatusSkipped, nil
		}
	}

	n.tryCount = 0

	if n.allSkipped {
		return domain.StatusSkipped, nil
	}
	return domain.StatusFailure, nil
}

func (n *Retry) Halt() {
	n.tryCount = 0
	n.resetChild()
}
