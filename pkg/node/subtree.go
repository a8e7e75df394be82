package node

import (
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
)

// SubTreeNode is the boundary between a tree and an included BehaviorTree.
// Its single child is the included tree's root, built against a child
// blackboard whose remapping rules were installed from the <SubTree>
// attributes. Ticks and halts pass straight through.
type SubTreeNode struct {
	Base
}

// NewSubTree wraps root as the body of a subtree instance.
func NewSubTree(name string, cfg *NodeConfig, root TreeNode) *SubTreeNode {
	n := &SubTreeNode{Base: NewBase(domain.KindSubTree, name, cfg)}
	n.AddChild(root)
	return n
}

func (n *SubTreeNode) Tick() (domain.NodeStatus, error) {
	child := n.Child()
	if child == nil {
		return domain.StatusIdle, fmt.Errorf("%w: [%s]", domain.ErrChildMissing, n.Config().Path)
	}
	return ExecuteTick(child)
}

func (n *SubTreeNode) Halt() {
	if child := n.Child(); child != nil {
		Reset(child)
	}
}
