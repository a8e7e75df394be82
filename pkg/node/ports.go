package node

import (
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
)

// PortInfo describes one declared slot on a node type.
type PortInfo struct {
	Direction   domain.PortDirection
	Description string
	// Default is the string form of the default value; parsed per typed
	// read. Only meaningful when HasDefault is true.
	Default    string
	HasDefault bool
}

// PortsList maps port name to its descriptor. It is declared once per node
// type and shared by every instance through the manifest.
type PortsList map[string]PortInfo

// Port pairs a name with its descriptor while a PortsList is being built.
type Port struct {
	Name string
	Info PortInfo
}

// NewPortsList assembles a PortsList from Port declarations.
func NewPortsList(ports ...Port) PortsList {
	list := make(PortsList, len(ports))
	for _, p := range ports {
		list[p.Name] = p.Info
	}
	return list
}

// InputPort declares an input slot. An optional description follows the name.
func InputPort(name string, description ...string) Port {
	return newPort(domain.DirectionInput, name, description)
}

// OutputPort declares an output slot.
func OutputPort(name string, description ...string) Port {
	return newPort(domain.DirectionOutput, name, description)
}

// InOutPort declares a slot used in both directions.
func InOutPort(name string, description ...string) Port {
	return newPort(domain.DirectionInOut, name, description)
}

func newPort(dir domain.PortDirection, name string, description []string) Port {
	info := PortInfo{Direction: dir}
	if len(description) > 0 {
		info.Description = description[0]
	}
	return Port{Name: name, Info: info}
}

// WithDefault attaches a default value, stored in string form.
func (p Port) WithDefault(value any) Port {
	p.Info.Default = fmt.Sprintf("%v", value)
	p.Info.HasDefault = true
	return p
}

// IsAllowedPortName reports whether an XML attribute name may denote a port.
// "name" and "ID" are reserved, and a port must start with an ASCII letter.
// "_autoremap" is allowed; the compiler treats it specially.
func IsAllowedPortName(name string) bool {
	if name == "" {
		return false
	}
	if name == "_autoremap" {
		return true
	}
	c := name[0]
	if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
		return false
	}
	return name != "name" && name != "ID"
}
