// Package canopy is a behavior-tree execution engine: it loads a declarative
// tree of control, decorator and action nodes from an XML description and
// ticks it cyclically to drive an external agent. Execution semantics follow
// BehaviorTree.CPP.
//
// Consumers construct a Factory, register their leaf node types, register
// one or more XML documents, and instantiate a Tree:
//
//	factory := canopy.NewFactory()
//	factory.RegisterCondition("BatteryOK", nil, checkBattery)
//	if err := factory.RegisterTreesFromText(xml); err != nil { ... }
//	tree, err := factory.CreateTree("main")
//	status, err := tree.TickWhileRunning(10 * time.Millisecond)
package canopy

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/canopy/internal/compiler"
	"github.com/aretw0/canopy/pkg/blackboard"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// Factory holds the node type registry and the registered tree documents,
// and instantiates runnable trees from them.
type Factory struct {
	registry *compiler.Registry
	parser   *compiler.Parser
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets a structured logger for build and tick diagnostics. The
// default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks fired on every node
// tick and tree tick.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(f *Factory) {
		f.hooks = hooks
	}
}

// NewFactory creates a Factory with the built-in node set registered.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{
		registry: compiler.NewRegistry(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f.parser = compiler.NewParser(f.registry, f.logger)
	return f
}

// RegisterSyncAction registers a synchronous action leaf under name. The
// tick function must complete in one call; returning Running is an error.
func (f *Factory) RegisterSyncAction(name string, ports node.PortsList, fn node.TickFunc) {
	f.registry.Register(name, domain.KindAction, ports,
		func(instance string, cfg *node.NodeConfig) node.TreeNode {
			return node.NewSyncAction(instance, cfg, fn)
		})
}

// RegisterCondition registers a condition leaf under name; its tick may
// only return Success or Failure.
func (f *Factory) RegisterCondition(name string, ports node.PortsList, fn node.TickFunc) {
	f.registry.Register(name, domain.KindCondition, ports,
		func(instance string, cfg *node.NodeConfig) node.TreeNode {
			return node.NewCondition(instance, cfg, fn)
		})
}

// RegisterStatefulAction registers an action leaf that spans multiple ticks.
// newImpl runs once per node instance so per-node state is not shared.
func (f *Factory) RegisterStatefulAction(name string, ports node.PortsList, newImpl func() node.Stateful) {
	f.registry.Register(name, domain.KindAction, ports,
		func(instance string, cfg *node.NodeConfig) node.TreeNode {
			return node.NewStatefulAction(instance, cfg, newImpl())
		})
}

// RegisterStockNodes adds the standard stub leaves (AlwaysSuccess,
// AlwaysFailure, SetBlackboard, Sleep) so trees run without user code.
func (f *Factory) RegisterStockNodes() {
	f.RegisterCondition("AlwaysSuccess", nil, node.AlwaysSuccessTick)
	f.RegisterCondition("AlwaysFailure", nil, node.AlwaysFailureTick)
	f.RegisterSyncAction("SetBlackboard", node.SetBlackboardPorts(), node.SetBlackboardTick)
	f.RegisterStatefulAction("Sleep", node.SleepPorts(), func() node.Stateful {
		return &node.SleepAction{}
	})
}

// RegisterTreesFromText scans an XML document and registers every
// BehaviorTree definition in it.
func (f *Factory) RegisterTreesFromText(xml string) error {
	return f.parser.RegisterDocument(xml)
}

// RegisterTreesFromFile reads path and registers its tree definitions.
func (f *Factory) RegisterTreesFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read tree document: %w", err)
	}
	return f.parser.RegisterDocument(string(data))
}

// TreeIDs lists the registered BehaviorTree IDs.
func (f *Factory) TreeIDs() []string { return f.parser.TreeIDs() }

// CreateTree instantiates the tree registered under mainID against a fresh
// root blackboard. An empty mainID falls back to the document's
// main_tree_to_execute attribute, or to the only registered tree.
func (f *Factory) CreateTree(mainID string) (*Tree, error) {
	return f.CreateTreeWithBlackboard(mainID, blackboard.New())
}

// CreateTreeWithBlackboard is CreateTree with a caller-seeded root
// blackboard.
func (f *Factory) CreateTreeWithBlackboard(mainID string, bb *blackboard.Blackboard) (*Tree, error) {
	root, err := f.parser.Build(mainID, bb, &f.hooks)
	if err != nil {
		return nil, err
	}
	id := mainID
	if id == "" {
		id = root.Config().TreeID
	}
	f.logger.Info("tree instantiated", "tree", id)
	return &Tree{
		root:       root,
		blackboard: bb,
		treeID:     id,
		logger:     f.logger,
		hooks:      &f.hooks,
	}, nil
}
