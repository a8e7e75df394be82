package canopy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/blackboard"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// registerStatusNode adds a leaf that returns the status named by its
// "status" port and counts its ticks in counters[node path].
func registerStatusNode(f *canopy.Factory, counters map[string]*int) {
	f.RegisterSyncAction("StatusNode",
		node.NewPortsList(node.InputPort("status")),
		func(cfg *node.NodeConfig) (domain.NodeStatus, error) {
			if counters != nil {
				if c, ok := counters[cfg.Path]; ok {
					*c++
				}
			}
			return node.GetInput[domain.NodeStatus](cfg, "status")
		})
}

func buildTree(t *testing.T, f *canopy.Factory, xml, mainID string) *canopy.Tree {
	t.Helper()
	require.NoError(t, f.RegisterTreesFromText(xml))
	tree, err := f.CreateTree(mainID)
	require.NoError(t, err)
	return tree
}

func TestSimpleSequence(t *testing.T) {
	ticksA, ticksB := 0, 0
	factory := canopy.NewFactory()
	registerStatusNode(factory, map[string]*int{
		"Sequence/A": &ticksA,
		"Sequence/B": &ticksB,
	})

	tree := buildTree(t, factory, `
		<root>
			<BehaviorTree ID="main">
				<Sequence>
					<StatusNode name="A" status="Success" />
					<StatusNode name="B" status="Success" />
				</Sequence>
			</BehaviorTree>
		</root>
	`, "main")

	status, err := tree.TickOnce()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, status)
	assert.Equal(t, 1, ticksA)
	assert.Equal(t, 1, ticksB)
}

// slowSuccess returns Running a fixed number of times before succeeding.
type slowSuccess struct {
	remaining int
	halted    *int
}

func (s *slowSuccess) OnStart(*node.NodeConfig) (domain.NodeStatus, error) {
	if s.remaining <= 0 {
		return domain.StatusSuccess, nil
	}
	return domain.StatusRunning, nil
}

func (s *slowSuccess) OnRunning(*node.NodeConfig) (domain.NodeStatus, error) {
	s.remaining--
	if s.remaining <= 0 {
		return domain.StatusSuccess, nil
	}
	return domain.StatusRunning, nil
}

func (s *slowSuccess) OnHalted(*node.NodeConfig) {
	if s.halted != nil {
		*s.halted++
	}
}

func TestRunningHold(t *testing.T) {
	ticksA := 0
	factory := canopy.NewFactory()
	registerStatusNode(factory, map[string]*int{"Sequence/A": &ticksA})
	factory.RegisterStatefulAction("SlowSuccess", nil, func() node.Stateful {
		return &slowSuccess{remaining: 1}
	})

	tree := buildTree(t, factory, `
		<root>
			<BehaviorTree ID="main">
				<Sequence>
					<StatusNode name="A" status="Success" />
					<SlowSuccess name="B" />
				</Sequence>
			</BehaviorTree>
		</root>
	`, "main")

	status, err := tree.TickOnce()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, status)

	status, err = tree.TickOnce()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, status)

	// A completed on the first tick and was never re-ticked.
	assert.Equal(t, 1, ticksA)
}

// neverDone always reports Running and records halts.
type neverDone struct {
	halted *int
}

func (n *neverDone) OnStart(*node.NodeConfig) (domain.NodeStatus, error) {
	return domain.StatusRunning, nil
}

func (n *neverDone) OnRunning(*node.NodeConfig) (domain.NodeStatus, error) {
	return domain.StatusRunning, nil
}

func (n *neverDone) OnHalted(*node.NodeConfig) {
	*n.halted++
}

func TestReactivePreemption(t *testing.T) {
	condTicks := 0
	halts := 0

	factory := canopy.NewFactory()
	factory.RegisterCondition("FlipsAtThree", nil,
		func(cfg *node.NodeConfig) (domain.NodeStatus, error) {
			condTicks++
			if condTicks >= 3 {
				return domain.StatusFailure, nil
			}
			return domain.StatusSuccess, nil
		})
	factory.RegisterStatefulAction("Spin", nil, func() node.Stateful {
		return &neverDone{halted: &halts}
	})

	tree := buildTree(t, factory, `
		<root>
			<BehaviorTree ID="main">
				<ReactiveSequence>
					<FlipsAtThree />
					<Spin />
				</ReactiveSequence>
			</BehaviorTree>
		</root>
	`, "main")

	for i := 0; i < 2; i++ {
		status, err := tree.TickOnce()
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRunning, status)
	}

	status, err := tree.TickOnce()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailure, status)
	assert.Equal(t, 1, halts)
}

func TestRetryScenario(t *testing.T) {
	ticks := 0
	factory := canopy.NewFactory()
	factory.RegisterSyncAction("FailsTwice", nil,
		func(*node.NodeConfig) (domain.NodeStatus, error) {
			ticks++
			if ticks <= 2 {
				return domain.StatusFailure, nil
			}
			return domain.StatusSuccess, nil
		})

	tree := buildTree(t, factory, `
		<root>
			<BehaviorTree ID="main">
				<Retry num_attempts="3">
					<FailsTwice />
				</Retry>
			</BehaviorTree>
		</root>
	`, "main")

	status, err := tree.TickWhileRunning(time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, status)
	assert.Equal(t, 3, ticks)
}

func TestSubTreeRemap(t *testing.T) {
	factory := canopy.NewFactory()
	factory.RegisterSyncAction("TripleInPlace",
		node.NewPortsList(node.InputPort("y"), node.OutputPort("out")),
		func(cfg *node.NodeConfig) (domain.NodeStatus, error) {
			v, err := node.GetInput[int](cfg, "y")
			if err != nil {
				return domain.StatusIdle, err
			}
			if err := cfg.SetOutput("out", v*3); err != nil {
				return domain.StatusIdle, err
			}
			return domain.StatusSuccess, nil
		})

	require.NoError(t, factory.RegisterTreesFromText(`
		<root main_tree_to_execute="main">
			<BehaviorTree ID="main">
				<Sequence>
					<SubTree ID="inner" y="{x}" />
				</Sequence>
			</BehaviorTree>
			<BehaviorTree ID="inner">
				<TripleInPlace y="{y}" out="{y}" />
			</BehaviorTree>
		</root>
	`))

	bb := blackboard.New()
	bb.Set("x", 7)

	tree, err := factory.CreateTreeWithBlackboard("", bb)
	require.NoError(t, err)

	status, err := tree.TickOnce()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, status)

	// The write through the remapped key is visible in the outer scope.
	v, err := blackboard.Get[int](bb, "x")
	require.NoError(t, err)
	assert.Equal(t, 21, v)
}

func TestSubTreeLiteralSeedsChildScope(t *testing.T) {
	factory := canopy.NewFactory()
	factory.RegisterSyncAction("ReadGreeting",
		node.NewPortsList(node.InputPort("msg"), node.OutputPort("seen")),
		func(cfg *node.NodeConfig) (domain.NodeStatus, error) {
			v, err := node.GetInput[string](cfg, "msg")
			if err != nil {
				return domain.StatusIdle, err
			}
			if err := cfg.SetOutput("seen", v); err != nil {
				return domain.StatusIdle, err
			}
			return domain.StatusSuccess, nil
		})

	require.NoError(t, factory.RegisterTreesFromText(`
		<root main_tree_to_execute="main">
			<BehaviorTree ID="main">
				<SubTree ID="inner" greeting="hello" out="{result}" />
			</BehaviorTree>
			<BehaviorTree ID="inner">
				<ReadGreeting msg="{greeting}" seen="{out}" />
			</BehaviorTree>
		</root>
	`))

	bb := blackboard.New()
	tree, err := factory.CreateTreeWithBlackboard("", bb)
	require.NoError(t, err)

	status, err := tree.TickOnce()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, status)

	v, err := blackboard.Get[string](bb, "result")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestAutoRemap(t *testing.T) {
	factory := canopy.NewFactory()
	factory.RegisterSyncAction("ReadX",
		node.NewPortsList(node.InputPort("x")),
		func(cfg *node.NodeConfig) (domain.NodeStatus, error) {
			v, err := node.GetInput[int](cfg, "x")
			if err != nil {
				return domain.StatusIdle, err
			}
			if v != 7 {
				return domain.StatusFailure, nil
			}
			return domain.StatusSuccess, nil
		})

	require.NoError(t, factory.RegisterTreesFromText(`
		<root main_tree_to_execute="main">
			<BehaviorTree ID="main">
				<SubTree ID="inner" _autoremap="true" />
			</BehaviorTree>
			<BehaviorTree ID="inner">
				<ReadX x="{x}" />
			</BehaviorTree>
		</root>
	`))

	bb := blackboard.New()
	bb.Set("x", 7)
	tree, err := factory.CreateTreeWithBlackboard("", bb)
	require.NoError(t, err)

	status, err := tree.TickOnce()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, status)
}

func TestPortDefault(t *testing.T) {
	factory := canopy.NewFactory()
	factory.RegisterSyncAction("CheckSize",
		node.NewPortsList(node.InputPort("size").WithDefault("16")),
		func(cfg *node.NodeConfig) (domain.NodeStatus, error) {
			v, err := node.GetInput[int](cfg, "size")
			if err != nil {
				return domain.StatusIdle, err
			}
			if v == 16 {
				return domain.StatusSuccess, nil
			}
			return domain.StatusFailure, nil
		})

	tree := buildTree(t, factory, `
		<root>
			<BehaviorTree ID="main">
				<CheckSize />
			</BehaviorTree>
		</root>
	`, "")

	status, err := tree.TickOnce()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, status)
}

func TestParallelScenario(t *testing.T) {
	factory := canopy.NewFactory()
	registerStatusNode(factory, nil)
	factory.RegisterStatefulAction("EventualFailure", nil, func() node.Stateful {
		return &slowFailure{remaining: 1}
	})

	tree := buildTree(t, factory, `
		<root>
			<BehaviorTree ID="main">
				<Parallel success_count="2" failure_count="2">
					<StatusNode name="A" status="Success" />
					<StatusNode name="B" status="Failure" />
					<EventualFailure name="C" />
				</Parallel>
			</BehaviorTree>
		</root>
	`, "main")

	status, err := tree.TickOnce()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, status)

	status, err = tree.TickOnce()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailure, status)
}

type slowFailure struct {
	remaining int
}

func (s *slowFailure) OnStart(*node.NodeConfig) (domain.NodeStatus, error) {
	return domain.StatusRunning, nil
}

func (s *slowFailure) OnRunning(*node.NodeConfig) (domain.NodeStatus, error) {
	s.remaining--
	if s.remaining <= 0 {
		return domain.StatusFailure, nil
	}
	return domain.StatusRunning, nil
}

func (s *slowFailure) OnHalted(*node.NodeConfig) {}

func TestStockNodes(t *testing.T) {
	factory := canopy.NewFactory()
	factory.RegisterStockNodes()

	bb := blackboard.New()
	require.NoError(t, factory.RegisterTreesFromText(`
		<root>
			<BehaviorTree ID="main">
				<Sequence>
					<AlwaysSuccess />
					<Inverter>
						<AlwaysFailure />
					</Inverter>
					<SetBlackboard value="42" output_key="{answer}" />
				</Sequence>
			</BehaviorTree>
		</root>
	`))

	tree, err := factory.CreateTreeWithBlackboard("main", bb)
	require.NoError(t, err)

	status, err := tree.TickOnce()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, status)

	v, err := blackboard.Get[int](bb, "answer")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestTreeHalt(t *testing.T) {
	halts := 0
	factory := canopy.NewFactory()
	factory.RegisterStatefulAction("Spin", nil, func() node.Stateful {
		return &neverDone{halted: &halts}
	})

	tree := buildTree(t, factory, `
		<root>
			<BehaviorTree ID="main">
				<Sequence>
					<Spin />
				</Sequence>
			</BehaviorTree>
		</root>
	`, "main")

	status, err := tree.TickOnce()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, status)

	tree.Halt()
	assert.Equal(t, 1, halts)
	assert.Equal(t, domain.StatusIdle, tree.Root().Status())

	tree.Halt()
	assert.Equal(t, 1, halts)
}

func TestBuildErrors(t *testing.T) {
	t.Run("unknown node type", func(t *testing.T) {
		factory := canopy.NewFactory()
		require.NoError(t, factory.RegisterTreesFromText(`
			<root>
				<BehaviorTree ID="main">
					<NoSuchNode />
				</BehaviorTree>
			</root>
		`))
		_, err := factory.CreateTree("main")
		assert.ErrorIs(t, err, domain.ErrUnknownNode)
	})

	t.Run("cyclic subtree", func(t *testing.T) {
		factory := canopy.NewFactory()
		require.NoError(t, factory.RegisterTreesFromText(`
			<root main_tree_to_execute="a">
				<BehaviorTree ID="a">
					<Sequence>
						<SubTree ID="b" />
					</Sequence>
				</BehaviorTree>
				<BehaviorTree ID="b">
					<Sequence>
						<SubTree ID="a" />
					</Sequence>
				</BehaviorTree>
			</root>
		`))
		_, err := factory.CreateTree("a")
		assert.ErrorIs(t, err, domain.ErrCyclicSubTree)
	})

	t.Run("missing subtree", func(t *testing.T) {
		factory := canopy.NewFactory()
		require.NoError(t, factory.RegisterTreesFromText(`
			<root>
				<BehaviorTree ID="main">
					<SubTree ID="nowhere" />
				</BehaviorTree>
			</root>
		`))
		_, err := factory.CreateTree("main")
		assert.ErrorIs(t, err, domain.ErrUnknownTree)
	})

	t.Run("decorator child count", func(t *testing.T) {
		factory := canopy.NewFactory()
		factory.RegisterStockNodes()
		require.NoError(t, factory.RegisterTreesFromText(`
			<root>
				<BehaviorTree ID="main">
					<Inverter>
						<AlwaysSuccess />
						<AlwaysSuccess />
					</Inverter>
				</BehaviorTree>
			</root>
		`))
		_, err := factory.CreateTree("main")
		assert.ErrorIs(t, err, domain.ErrChildCount)
	})

	t.Run("leaf with children", func(t *testing.T) {
		factory := canopy.NewFactory()
		factory.RegisterStockNodes()
		require.NoError(t, factory.RegisterTreesFromText(`
			<root>
				<BehaviorTree ID="main">
					<AlwaysSuccess>
						<AlwaysSuccess />
					</AlwaysSuccess>
				</BehaviorTree>
			</root>
		`))
		_, err := factory.CreateTree("main")
		assert.ErrorIs(t, err, domain.ErrChildCount)
	})

	t.Run("undeclared port attribute", func(t *testing.T) {
		factory := canopy.NewFactory()
		factory.RegisterStockNodes()
		require.NoError(t, factory.RegisterTreesFromText(`
			<root>
				<BehaviorTree ID="main">
					<AlwaysSuccess speed="3" />
				</BehaviorTree>
			</root>
		`))
		_, err := factory.CreateTree("main")
		assert.ErrorIs(t, err, domain.ErrInvalidPort)
	})
}

func TestLeafErrorPropagatesToDriver(t *testing.T) {
	factory := canopy.NewFactory()
	factory.RegisterSyncAction("Broken", nil,
		func(*node.NodeConfig) (domain.NodeStatus, error) {
			return domain.StatusIdle, assert.AnError
		})

	tree := buildTree(t, factory, `
		<root>
			<BehaviorTree ID="main">
				<Sequence>
					<Broken />
				</Sequence>
			</BehaviorTree>
		</root>
	`, "main")

	_, err := tree.TickOnce()
	var userErr *domain.UserError
	require.ErrorAs(t, err, &userErr)
	assert.ErrorIs(t, err, assert.AnError)
}
