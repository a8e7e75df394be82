package decorator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/canopy/internal/testutils"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
	"github.com/aretw0/canopy/pkg/node/decorator"
)

func setChild(n node.TreeNode, child node.TreeNode) {
	n.(interface{ SetChildren([]node.TreeNode) }).SetChildren([]node.TreeNode{child})
}

func tick(t *testing.T, n node.TreeNode) domain.NodeStatus {
	t.Helper()
	status, err := node.ExecuteTick(n)
	require.NoError(t, err)
	return status
}

func portedConfig(registration string, ports node.PortsList, bindings map[string]string) *node.NodeConfig {
	cfg := testutils.NewConfig()
	cfg.Manifest = &node.Manifest{
		Kind:           domain.KindDecorator,
		RegistrationID: registration,
		Ports:          ports,
	}
	for name, value := range bindings {
		cfg.AddPort(domain.DirectionInput, name, value)
	}
	return cfg
}

func TestInverter(t *testing.T) {
	cases := []struct {
		child domain.NodeStatus
		want  domain.NodeStatus
	}{
		{domain.StatusSuccess, domain.StatusFailure},
		{domain.StatusFailure, domain.StatusSuccess},
		{domain.StatusRunning, domain.StatusRunning},
		{domain.StatusSkipped, domain.StatusSkipped},
	}

	for _, tc := range cases {
		inv := decorator.NewInverter("inv", testutils.NewConfig())
		setChild(inv, testutils.NewScripted("child", tc.child))
		assert.Equal(t, tc.want, tick(t, inv), "child=%s", tc.child)
	}
}

func TestForceSuccess(t *testing.T) {
	fs := decorator.NewForceSuccess("fs", testutils.NewConfig())
	setChild(fs, testutils.NewScripted("child", domain.StatusFailure))
	assert.Equal(t, domain.StatusSuccess, tick(t, fs))

	fs = decorator.NewForceSuccess("fs", testutils.NewConfig())
	setChild(fs, testutils.NewScripted("child", domain.StatusRunning))
	assert.Equal(t, domain.StatusRunning, tick(t, fs))
}

func TestForceFailure(t *testing.T) {
	ff := decorator.NewForceFailure("ff", testutils.NewConfig())
	setChild(ff, testutils.NewScripted("child", domain.StatusSuccess))
	assert.Equal(t, domain.StatusFailure, tick(t, ff))
}

func TestRepeat_CountsSuccesses(t *testing.T) {
	child := testutils.NewScripted("child", domain.StatusSuccess)
	rep := decorator.NewRepeat("rep",
		portedConfig("Repeat", decorator.RepeatPorts(), map[string]string{"num_cycles": "3"}))
	setChild(rep, child)

	// Synchronous children loop inside one tick.
	assert.Equal(t, domain.StatusSuccess, tick(t, rep))
	assert.Equal(t, 3, child.Ticks)
}

func TestRepeat_FailureStops(t *testing.T) {
	child := testutils.NewScripted("child",
		domain.StatusSuccess, domain.StatusFailure)
	rep := decorator.NewRepeat("rep",
		portedConfig("Repeat", decorator.RepeatPorts(), map[string]string{"num_cycles": "5"}))
	setChild(rep, child)

	assert.Equal(t, domain.StatusFailure, tick(t, rep))
	assert.Equal(t, 2, child.Ticks)
}

func TestRepeat_RunningChildSpansTicks(t *testing.T) {
	child := testutils.NewScripted("child", domain.StatusRunning, domain.StatusSuccess)
	rep := decorator.NewRepeat("rep",
		portedConfig("Repeat", decorator.RepeatPorts(), map[string]string{"num_cycles": "1"}))
	setChild(rep, child)

	assert.Equal(t, domain.StatusRunning, tick(t, rep))
	assert.Equal(t, domain.StatusSuccess, tick(t, rep))
}

func TestRetry_RetriesOnFailure(t *testing.T) {
	child := testutils.NewScripted("child",
		domain.StatusFailure, domain.StatusFailure, domain.StatusSuccess)
	ret := decorator.NewRetry("ret",
		portedConfig("Retry", decorator.RetryPorts(), map[string]string{"num_attempts": "3"}))
	setChild(ret, child)

	assert.Equal(t, domain.StatusSuccess, tick(t, ret))
	assert.Equal(t, 3, child.Ticks)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	child := testutils.NewScripted("child", domain.StatusFailure)
	ret := decorator.NewRetry("ret",
		portedConfig("Retry", decorator.RetryPorts(), map[string]string{"num_attempts": "2"}))
	setChild(ret, child)

	assert.Equal(t, domain.StatusFailure, tick(t, ret))
	assert.Equal(t, 2, child.Ticks)
}

func TestRunOnce_SkipsAfterCompletion(t *testing.T) {
	child := testutils.NewScripted("child", domain.StatusSuccess)
	ro := decorator.NewRunOnce("ro",
		portedConfig("RunOnce", decorator.RunOncePorts(), nil))
	setChild(ro, child)

	assert.Equal(t, domain.StatusSuccess, tick(t, ro))
	assert.Equal(t, domain.StatusSkipped, tick(t, ro))
	assert.Equal(t, domain.StatusSkipped, tick(t, ro))
	assert.Equal(t, 1, child.Ticks)
}

func TestRunOnce_LatchesResultWhenSkipDisabled(t *testing.T) {
	child := testutils.NewScripted("child", domain.StatusFailure)
	ro := decorator.NewRunOnce("ro",
		portedConfig("RunOnce", decorator.RunOncePorts(), map[string]string{"then_skip": "false"}))
	setChild(ro, child)

	assert.Equal(t, domain.StatusFailure, tick(t, ro))
	assert.Equal(t, domain.StatusFailure, tick(t, ro))
	assert.Equal(t, 1, child.Ticks)
}

func TestRunOnce_HaltClearsLatch(t *testing.T) {
	child := testutils.NewScripted("child", domain.StatusSuccess)
	ro := decorator.NewRunOnce("ro",
		portedConfig("RunOnce", decorator.RunOncePorts(), nil))
	setChild(ro, child)

	assert.Equal(t, domain.StatusSuccess, tick(t, ro))
	ro.Halt()

	assert.Equal(t, domain.StatusSuccess, tick(t, ro))
	assert.Equal(t, 2, child.Ticks)
}

func TestKeepRunningUntilFailure(t *testing.T) {
	child := testutils.NewScripted("child",
		domain.StatusSuccess, domain.StatusSuccess, domain.StatusFailure)
	kr := decorator.NewKeepRunningUntilFailure("kr", testutils.NewConfig())
	setChild(kr, child)

	assert.Equal(t, domain.StatusRunning, tick(t, kr))
	assert.Equal(t, domain.StatusRunning, tick(t, kr))
	assert.Equal(t, domain.StatusFailure, tick(t, kr))
}

func TestDecorator_MissingChild(t *testing.T) {
	inv := decorator.NewInverter("inv", testutils.NewConfig())

	_, err := node.ExecuteTick(inv)
	assert.ErrorIs(t, err, domain.ErrChildMissing)
}

func TestDecorator_HaltResetsChild(t *testing.T) {
	child := testutils.NewScripted("child", domain.StatusRunning)
	ret := decorator.NewRetry("ret",
		portedConfig("Retry", decorator.RetryPorts(), map[string]string{"num_attempts": "1"}))
	setChild(ret, child)

	assert.Equal(t, domain.StatusRunning, tick(t, ret))

	node.Reset(ret)
	assert.Equal(t, domain.StatusIdle, child.Status())
	assert.GreaterOrEqual(t, child.Halts, 1)
}
