package compiler

import (
	"sync"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
	"github.com/aretw0/canopy/pkg/node/control"
	"github.com/aretw0/canopy/pkg/node/decorator"
)

// Constructor builds a node instance from its XML name and wiring. For
// composites the compiler attaches children afterwards.
type Constructor func(name string, cfg *node.NodeConfig) node.TreeNode

// Registration pairs a node type's manifest with its constructor.
type Registration struct {
	Manifest  *node.Manifest
	Construct Constructor
}

// Registry maps XML element names to node types. The built-in control and
// decorator nodes are pre-registered under their reserved names.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]Registration
}

// NewRegistry creates a registry holding the built-in node set.
func NewRegistry() *Registry {
	r := &Registry{nodes: make(map[string]Registration)}
	registerBuiltins(r)
	return r
}

// Register adds (or replaces) a node type.
func (r *Registry) Register(name string, kind domain.NodeKind, ports node.PortsList, construct Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[name] = Registration{
		Manifest: &node.Manifest{
			Kind:           kind,
			RegistrationID: name,
			Ports:          ports,
		},
		Construct: construct,
	}
}

// Lookup resolves an XML element name.
func (r *Registry) Lookup(name string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.nodes[name]
	return reg, ok
}

func registerBuiltins(r *Registry) {
	controls := map[string]Constructor{
		"Sequence":         func(n string, c *node.NodeConfig) node.TreeNode { return control.NewSequence(n, c) },
		"ReactiveSequence": func(n string, c *node.NodeConfig) node.TreeNode { return control.NewReactiveSequence(n, c) },
		"SequenceStar":     func(n string, c *node.NodeConfig) node.TreeNode { return control.NewSequenceWithMemory(n, c) },
		"Fallback":         func(n string, c *node.NodeConfig) node.TreeNode { return control.NewFallback(n, c) },
		"ReactiveFallback": func(n string, c *node.NodeConfig) node.TreeNode { return control.NewReactiveFallback(n, c) },
		"IfThenElse":       func(n string, c *node.NodeConfig) node.TreeNode { return control.NewIfThenElse(n, c) },
		"WhileDoElse":      func(n string, c *node.NodeConfig) node.TreeNode { return control.NewWhileDoElse(n, c) },
	}
	for name, construct := range controls {
		r.Register(name, domain.KindControl, nil, construct)
	}

	r.Register("Parallel", domain.KindControl, control.ParallelPorts(),
		func(n string, c *node.NodeConfig) node.TreeNode { return control.NewParallel(n, c) })
	r.Register("ParallelAll", domain.KindControl, control.ParallelAllPorts(),
		func(n string, c *node.NodeConfig) node.TreeNode { return control.NewParallelAll(n, c) })

	decorators := map[string]Constructor{
		"Inverter":                func(n string, c *node.NodeConfig) node.TreeNode { return decorator.NewInverter(n, c) },
		"ForceSuccess":            func(n string, c *node.NodeConfig) node.TreeNode { return decorator.NewForceSuccess(n, c) },
		"ForceFailure":            func(n string, c *node.NodeConfig) node.TreeNode { return decorator.NewForceFailure(n, c) },
		"KeepRunningUntilFailure": func(n string, c *node.NodeConfig) node.TreeNode { return decorator.NewKeepRunningUntilFailure(n, c) },
	}
	for name, construct := range decorators {
		r.Register(name, domain.KindDecorator, nil, construct)
	}

	r.Register("Repeat", domain.KindDecorator, decorator.RepeatPorts(),
		func(n string, c *node.NodeConfig) node.TreeNode { return decorator.NewRepeat(n, c) })
	r.Register("Retry", domain.KindDecorator, decorator.RetryPorts(),
		func(n string, c *node.NodeConfig) node.TreeNode { return decorator.NewRetry(n, c) })
	r.Register("RunOnce", domain.KindDecorator, decorator.RunOncePorts(),
		func(n string, c *node.NodeConfig) node.TreeNode { return decorator.NewRunOnce(n, c) })
}
