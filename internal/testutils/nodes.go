// Package testutils provides scripted leaf nodes for exercising composites
// and decorators without going through the XML factory.
package testutils

import (
	"github.com/aretw0/canopy/pkg/blackboard"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// ScriptedLeaf returns a fixed sequence of statuses, one per tick, latching
// on the last entry. It counts ticks and halts so tests can assert on the
// exact interaction pattern.
type ScriptedLeaf struct {
	node.Base
	script []domain.NodeStatus
	next   int

	Ticks int
	Halts int
}

// NewScripted builds a leaf that plays back statuses in order.
func NewScripted(name string, statuses ...domain.NodeStatus) *ScriptedLeaf {
	cfg := node.NewConfig(blackboard.New())
	cfg.Path = name
	return &ScriptedLeaf{
		Base:   node.NewBase(domain.KindAction, name, cfg),
		script: statuses,
	}
}

func (s *ScriptedLeaf) Tick() (domain.NodeStatus, error) {
	s.Ticks++
	idx := s.next
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	} else {
		s.next++
	}
	return s.script[idx], nil
}

func (s *ScriptedLeaf) Halt() {
	s.Halts++
}

// Rewind restarts the script from the beginning.
func (s *ScriptedLeaf) Rewind() {
	s.next = 0
}

// ErrLeaf fails its tick with the given error.
type ErrLeaf struct {
	node.Base
	Err error
}

// NewErrLeaf builds a leaf whose tick always errors.
func NewErrLeaf(name string, err error) *ErrLeaf {
	cfg := node.NewConfig(blackboard.New())
	cfg.Path = name
	return &ErrLeaf{Base: node.NewBase(domain.KindAction, name, cfg), Err: err}
}

func (e *ErrLeaf) Tick() (domain.NodeStatus, error) {
	return domain.StatusIdle, e.Err
}

func (e *ErrLeaf) Halt() {}

// NewConfig returns a fresh config over its own root blackboard, for nodes
// constructed directly in tests.
func NewConfig() *node.NodeConfig {
	return node.NewConfig(blackboard.New())
}
