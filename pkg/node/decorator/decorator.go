// Package decorator implements the built-in single-child nodes that
// transform their child's status: the inverters and forcers, the counted
// Repeat/Retry loops, RunOnce latching, and KeepRunningUntilFailure.
package decorator

import (
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// base adds the single-child accessor shared by every decorator.
type base struct {
	node.Base
}

func newBase(name string, cfg *node.NodeConfig) base {
	return base{Base: node.NewBase(domain.KindDecorator, name, cfg)}
}

// tickChild ticks the single child, or errors when the tree was assembled
// without one.
func (b *base) tickChild() (domain.NodeStatus, error) {
	child := b.Child()
	if child == nil {
		return domain.StatusIdle, fmt.Errorf("%w: [%s]", domain.ErrChildMissing, b.Config().Path)
	}
	return node.ExecuteTick(child)
}

// resetChild halts the child if running and returns it to Idle.
func (b *base) resetChild() {
	if child := b.Child(); child != nil {
		node.Reset(child)
	}
}
