package node

import (
	"time"

	"github.com/aretw0/canopy/pkg/domain"
)

// Stock leaves usable from any tree without registering user code. They are
// the standard stubs: fixed-status conditions, a blackboard writer, and a
// timed sleep. The CLI registers all of them; tests lean on them too.

// AlwaysSuccessTick returns Success unconditionally.
func AlwaysSuccessTick(*NodeConfig) (domain.NodeStatus, error) {
	return domain.StatusSuccess, nil
}

// AlwaysFailureTick returns Failure unconditionally.
func AlwaysFailureTick(*NodeConfig) (domain.NodeStatus, error) {
	return domain.StatusFailure, nil
}

// SetBlackboardPorts declares the ports of the SetBlackboard stock node.
func SetBlackboardPorts() PortsList {
	return NewPortsList(
		InputPort("value", "value to write"),
		OutputPort("output_key", "blackboard entry to write into"),
	)
}

// SetBlackboardTick copies the "value" input into the "output_key" entry.
func SetBlackboardTick(cfg *NodeConfig) (domain.NodeStatus, error) {
	value, err := GetInput[string](cfg, "value")
	if err != nil {
		return domain.StatusIdle, err
	}
	if err := cfg.SetOutput("output_key", value); err != nil {
		return domain.StatusIdle, err
	}
	return domain.StatusSuccess, nil
}

// SleepPorts declares the ports of the Sleep stock node.
func SleepPorts() PortsList {
	return NewPortsList(InputPort("msec", "time to sleep").WithDefault(0))
}

// SleepAction suspends for "msec" milliseconds without blocking the tick
// loop: it returns Running until the deadline passes.
type SleepAction struct {
	deadline time.Time
}

func (s *SleepAction) OnStart(cfg *NodeConfig) (domain.NodeStatus, error) {
	msec, err := GetInput[int64](cfg, "msec")
	if err != nil {
		return domain.StatusIdle, err
	}
	if msec <= 0 {
		return domain.StatusSuccess, nil
	}
	s.deadline = time.Now().Add(time.Duration(msec) * time.Millisecond)
	return domain.StatusRunning, nil
}

func (s *SleepAction) OnRunning(*NodeConfig) (domain.NodeStatus, error) {
	if time.Now().Before(s.deadline) {
		return domain.StatusRunning, nil
	}
	return domain.StatusSuccess, nil
}

func (s *SleepAction) OnHalted(*NodeConfig) {
	s.deadline = time.Time{}
}
