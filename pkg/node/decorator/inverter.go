package decorator

import (
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// Inverter swaps Success and Failure; Running and Skipped pass through.
type Inverter struct {
	base
}

func NewInverter(name string, cfg *node.NodeConfig) *Inverter {
	return &Inverter{base: newBase(name, cfg)}
}

func (n *Inverter) Tick() (domain.NodeStatus, error) {
	status, err := n.tickChild()
	if err != nil {
		return domain.StatusIdle, err
	}

	switch status {
	case domain.StatusSuccess:
		n.resetChild()
		return domain.StatusFailure, nil
	case domain.StatusFailure:
		n.resetChild()
		return domain.StatusSuccess, nil
	default:
		return status, nil
	}
}

func (n *Inverter) Halt() {
	n.resetChild()
}
