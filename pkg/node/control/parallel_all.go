package control

import (
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// ParallelAll ticks every child each round and, unlike Parallel, always lets
// all of them run to completion. Once every child has completed the node
// returns Failure if at least "max_failures" children failed, Success
// otherwise. The threshold indexes Python-style like Parallel's.
type ParallelAll struct {
	node.Base
	failureThreshold int
	completed        map[int]bool
	failureCount     int
}

// ParallelAllPorts declares the threshold port of ParallelAll.
func ParallelAllPorts() node.PortsList {
	return node.NewPortsList(
		node.InputPort("max_failures", "failures tolerated before the node fails").WithDefault(1),
	)
}

func NewParallelAll(name string, cfg *node.NodeConfig) *ParallelAll {
	return &ParallelAll{
		Base:             node.NewBase(domain.KindControl, name, cfg),
		failureThreshold: 1,
		completed:        make(map[int]bool),
	}
}

func (n *ParallelAll) requiredFailures() int {
	return resolveThreshold(n.failureThreshold, len(n.Children()))
}

func (n *ParallelAll) Tick() (domain.NodeStatus, error) {
	cfg := n.Config()

	var err error
	if n.failureThreshold, err = node.GetInput[int](cfg, "max_failures"); err != nil {
		return domain.StatusIdle, err
	}

	children := n.Children()
	if len(children) < n.failureThreshold {
		return domain.StatusIdle, fmt.Errorf("%w: ParallelAll [%s] has fewer children than max_failures, it can never fail",
			domain.ErrNodeStructure, cfg.Path)
	}

	skipped := 0
	for i, child := range children {
		if n.completed[i] {
			continue
		}
		status, err := node.ExecuteTick(child)
		if err != nil {
			return domain.StatusIdle, err
		}
		switch status {
		case domain.StatusSuccess:
			n.completed[i] = true
		case domain.StatusFailure:
			n.completed[i] = true
			n.failureCount++
		case domain.StatusSkipped:
			skipped++
		case domain.StatusRunning:
		}
	}

	if skipped == len(children) {
		return domain.StatusSkipped, nil
	}

	if skipped+len(n.completed) >= len(children) {
		n.ResetChildren()
		n.completed = make(map[int]bool)

		status := domain.StatusSuccess
		if n.failureCount >= n.requiredFailures() {
			status = domain.StatusFailure
		}
		n.failureCount = 0
		return status, nil
	}

	return domain.StatusRunning, nil
}

func (n *ParallelAll) Halt() {
	n.completed = make(map[int]bool)
	n.failureCount = 0
	n.ResetChildren()
}
