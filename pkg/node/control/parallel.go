package control

import (
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// Parallel ticks every not-yet-completed child each tick; several children
// may be Running at once across ticks. It completes as soon as the success
// or failure threshold is reached (ports "success_count" and
// "failure_count"), halting the children still running. Thresholds index
// Python-style: -1 means all children, -2 all but one, and so on.
//
// Failure wins ties: the failure check also fires when the remaining
// children can no longer reach the success threshold.
type Parallel struct {
	node.Base
	successThreshold int
	failureThreshold int
	completed        map[int]bool
	successCount     int
	failureCount     int
}

// ParallelPorts declares the threshold ports of Parallel.
func ParallelPorts() node.PortsList {
	return node.NewPortsList(
		node.InputPort("success_count", "number of successful children required").WithDefault(-1),
		node.InputPort("failure_count", "number of failed children required").WithDefault(1),
	)
}

func NewParallel(name string, cfg *node.NodeConfig) *Parallel {
	return &Parallel{
		Base:             node.NewBase(domain.KindControl, name, cfg),
		successThreshold: -1,
		failureThreshold: 1,
		completed:        make(map[int]bool),
	}
}

func (n *Parallel) requiredSuccesses() int {
	return resolveThreshold(n.successThreshold, len(n.Children()))
}

func (n *Parallel) requiredFailures() int {
	return resolveThreshold(n.failureThreshold, len(n.Children()))
}

// resolveThreshold maps a negative threshold onto the child count.
func resolveThreshold(threshold, children int) int {
	if threshold < 0 {
		if v := children + threshold + 1; v > 0 {
			return v
		}
		return 0
	}
	return threshold
}

func (n *Parallel) clear() {
	n.completed = make(map[int]bool)
	n.successCount = 0
	n.failureCount = 0
}

func (n *Parallel) Tick() (domain.NodeStatus, error) {
	cfg := n.Config()

	var err error
	if n.successThreshold, err = node.GetInput[int](cfg, "success_count"); err != nil {
		return domain.StatusIdle, err
	}
	if n.failureThreshold, err = node.GetInput[int](cfg, "failure_count"); err != nil {
		return domain.StatusIdle, err
	}

	children := n.Children()
	if len(children) < n.requiredSuccesses() {
		return domain.StatusIdle, fmt.Errorf("%w: Parallel [%s] has fewer children than success_count, it can never succeed",
			domain.ErrNodeStructure, cfg.Path)
	}
	if len(children) < n.requiredFailures() {
		return domain.StatusIdle, fmt.Errorf("%w: Parallel [%s] has fewer children than failure_count, it can never fail",
			domain.ErrNodeStructure, cfg.Path)
	}

	skipped := 0
	for i, child := range children {
		if !n.completed[i] {
			status, err := node.ExecuteTick(child)
			if err != nil {
				return domain.StatusIdle, err
			}
			switch status {
			case domain.StatusSkipped:
				skipped++
			case domain.StatusSuccess:
				n.completed[i] = true
				n.successCount++
			case domain.StatusFailure:
				n.completed[i] = true
				n.failureCount++
			case domain.StatusRunning:
			}
		}

		required := n.requiredSuccesses()

		// Skipped children count toward a relative threshold: with
		// success_count=-1 a tree of skipping children still completes.
		if n.successCount >= required ||
			(n.successThreshold < 0 && n.successCount+skipped >= required) {
			n.clear()
			n.ResetChildren()
			return domain.StatusSuccess, nil
		}

		if len(children)-n.failureCount < required || n.failureCount == n.requiredFailures() {
			n.clear()
			n.ResetChildren()
			return domain.StatusFailure, nil
		}
	}

	if skipped == len(children) {
		return domain.StatusSkipped, nil
	}
	return domain.StatusRunning, nil
}

func (n *Parallel) Halt() {
	n.clear()
	n.ResetChildren()
}
