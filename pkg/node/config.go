package node

import (
	"io"
	"log/slog"

	"github.com/aretw0/canopy/pkg/blackboard"
	"github.com/aretw0/canopy/pkg/domain"
)

// Manifest is the per-type metadata shared by all instances of a registered
// node type.
type Manifest struct {
	Kind           domain.NodeKind
	RegistrationID string
	Ports          PortsList
	Description    string
}

// NodeConfig is the per-instance wiring of a node: its blackboard handle,
// the raw port bindings taken from XML attributes, and tree bookkeeping.
// The compiler creates it at build time; it is read-only afterwards.
type NodeConfig struct {
	Blackboard *blackboard.Blackboard

	// InputPorts and OutputPorts map port name to the raw XML attribute
	// value: "{key}" for a blackboard reference, anything else a literal.
	InputPorts  map[string]string
	OutputPorts map[string]string

	Manifest *Manifest

	// Path is the slash-separated position of the node in the tree, used
	// in logs and errors.
	Path   string
	TreeID string
	UID    uint16

	Logger *slog.Logger
	Hooks  *domain.LifecycleHooks
}

// NewConfig creates a config bound to bb with a discard logger.
func NewConfig(bb *blackboard.Blackboard) *NodeConfig {
	return &NodeConfig{
		Blackboard:  bb,
		InputPorts:  make(map[string]string),
		OutputPorts: make(map[string]string),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// AddPort records a raw binding under the port's declared direction. InOut
// ports are recorded in both maps. Used during XML parsing.
func (c *NodeConfig) AddPort(dir domain.PortDirection, name, value string) {
	switch dir {
	case domain.DirectionInput:
		c.InputPorts[name] = value
	case domain.DirectionOutput:
		c.OutputPorts[name] = value
	case domain.DirectionInOut:
		c.InputPorts[name] = value
		c.OutputPorts[name] = value
	}
}

// HasPort reports whether a binding exists for name in the given direction.
func (c *NodeConfig) HasPort(dir domain.PortDirection, name string) bool {
	switch dir {
	case domain.DirectionInput:
		_, ok := c.InputPorts[name]
		return ok
	case domain.DirectionOutput:
		_, ok := c.OutputPorts[name]
		return ok
	case domain.DirectionInOut:
		_, in := c.InputPorts[name]
		_, out := c.OutputPorts[name]
		return in && out
	default:
		return false
	}
}

// GetInput resolves the input port as T. The read ladder:
//  1. a "{key}" binding reads the blackboard;
//  2. a literal binding parses as T;
//  3. a declared default parses as T;
//  4. otherwise the port was not provided.
func GetInput[T any](c *NodeConfig, port string) (T, error) {
	var zero T

	raw, bound := c.InputPorts[port]
	if !bound || raw == "" {
		if c.Manifest != nil {
			if info, ok := c.Manifest.Ports[port]; ok && info.HasDefault {
				v, err := blackboard.ParseString[T](info.Default)
				if err != nil {
					return zero, &domain.PortError{Node: c.Path, Port: port, Err: domain.ErrParse}
				}
				return v, nil
			}
		}
		return zero, &domain.PortError{Node: c.Path, Port: port, Err: domain.ErrPortNotProvided}
	}

	if key, ok := blackboard.StripPointer(raw); ok {
		v, err := blackboard.Get[T](c.Blackboard, key)
		if err != nil {
			return zero, &domain.PortError{Node: c.Path, Port: port, Err: err}
		}
		return v, nil
	}

	v, err := blackboard.ParseString[T](raw)
	if err != nil {
		return zero, &domain.PortError{Node: c.Path, Port: port, Err: err}
	}
	return v, nil
}

// SetOutput writes value through the output port. Only "{key}" bindings are
// writable; the special value "=" uses the port name itself as the key.
func (c *NodeConfig) SetOutput(port string, value any) error {
	raw, bound := c.OutputPorts[port]
	if !bound {
		return &domain.PortError{Node: c.Path, Port: port, Err: domain.ErrPortNotProvided}
	}

	var key string
	if raw == "=" {
		key = port
	} else {
		stripped, ok := blackboard.StripPointer(raw)
		if !ok {
			return &domain.PortError{Node: c.Path, Port: port, Err: domain.ErrPortNotWritable}
		}
		key = stripped
	}

	c.Blackboard.Set(key, value)
	return nil
}
