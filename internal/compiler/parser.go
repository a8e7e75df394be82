// Package compiler turns XML behavior-tree descriptions into runnable node
// trees: it scans documents for <BehaviorTree> definitions, resolves element
// names against the type registry, wires port bindings, and instantiates
// subtrees with their own remapped blackboards.
package compiler

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/aretw0/canopy/pkg/blackboard"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// element is the parsed form of one XML element.
type element struct {
	name     string
	attrs    map[string]string
	children []*element
}

// Parser accumulates registered BehaviorTree definitions and builds node
// trees from them.
type Parser struct {
	registry *Registry
	trees    map[string]*element
	mainID   string
	logger   *slog.Logger
	uid      uint16
}

// NewParser creates a parser over the given registry.
func NewParser(registry *Registry, logger *slog.Logger) *Parser {
	return &Parser{
		registry: registry,
		trees:    make(map[string]*element),
		logger:   logger,
	}
}

// MainTreeID returns the document-declared main tree, if any.
func (p *Parser) MainTreeID() string { return p.mainID }

// TreeIDs lists the registered BehaviorTree IDs.
func (p *Parser) TreeIDs() []string {
	ids := make([]string, 0, len(p.trees))
	for id := range p.trees {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// RegisterDocument scans an XML document and stores every <BehaviorTree>
// definition it contains. The top-level element must be <root>; its
// main_tree_to_execute attribute, when present, selects the main tree.
func (p *Parser) RegisterDocument(text string) error {
	root, err := parseElement(text)
	if err != nil {
		return err
	}
	if root.name != "root" {
		return fmt.Errorf("%w: found <%s> instead", domain.ErrMissingRoot, root.name)
	}

	if id, ok := root.attrs["main_tree_to_execute"]; ok {
		p.logger.Info("found main tree ID", "tree", id)
		p.mainID = id
	}

	for _, child := range root.children {
		switch child.name {
		case "TreeNodesModel":
			// Model sections are informational only.
		case "BehaviorTree":
			id, ok := child.attrs["ID"]
			if !ok {
				return fmt.Errorf("%w: BehaviorTree definition without ID", domain.ErrMissingAttribute)
			}
			if len(child.children) != 1 {
				return fmt.Errorf("%w: BehaviorTree [%s] must have exactly one root child, has %d",
					domain.ErrChildCount, id, len(child.children))
			}
			p.trees[id] = child.children[0]
		default:
			return fmt.Errorf("%w: unexpected <%s> under <root>", domain.ErrXMLMalformed, child.name)
		}
	}

	return nil
}

// parseElement decodes the document into an element tree, ignoring
// character data, comments and processing instructions.
func parseElement(text string) (*element, error) {
	decoder := xml.NewDecoder(strings.NewReader(text))

	var stack []*element
	var root *element

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrXMLMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{
				name:  t.Name.Local,
				attrs: make(map[string]string, len(t.Attr)),
			}
			for _, a := range t.Attr {
				el.attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("%w: multiple top-level elements", domain.ErrXMLMalformed)
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: unbalanced end tag </%s>", domain.ErrXMLMalformed, t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) != 0 {
		return nil, fmt.Errorf("%w: unexpected end of document", domain.ErrXMLMalformed)
	}
	if root == nil {
		return nil, domain.ErrMissingRoot
	}
	return root, nil
}

// buildContext carries the per-build wiring shared by every node instance.
type buildContext struct {
	treeID string
	hooks  *domain.LifecycleHooks
	logger *slog.Logger
	// visiting is the subtree visit stack used for cycle detection.
	visiting []string
}

// Build instantiates the tree registered under treeID against bb. When
// treeID is empty the document-declared main tree is used, or the only
// registered tree when there is exactly one.
func (p *Parser) Build(treeID string, bb *blackboard.Blackboard, hooks *domain.LifecycleHooks) (node.TreeNode, error) {
	if treeID == "" {
		treeID = p.mainID
	}
	if treeID == "" {
		if len(p.trees) != 1 {
			return nil, domain.ErrNoMainTree
		}
		for id := range p.trees {
			treeID = id
		}
	}

	root, ok := p.trees[treeID]
	if !ok {
		return nil, fmt.Errorf("%w: [%s]", domain.ErrUnknownTree, treeID)
	}

	ctx := &buildContext{
		treeID:   treeID,
		hooks:    hooks,
		logger:   p.logger,
		visiting: []string{treeID},
	}
	return p.buildNode(ctx, root, bb, "")
}

func (p *Parser) buildNode(ctx *buildContext, el *element, bb *blackboard.Blackboard, pathPrefix string) (node.TreeNode, error) {
	if el.name == "SubTree" {
		return p.buildSubTree(ctx, el, bb, pathPrefix)
	}

	reg, ok := p.registry.Lookup(el.name)
	if !ok {
		return nil, fmt.Errorf("%w: <%s>", domain.ErrUnknownNode, el.name)
	}

	instanceName := el.name
	if n, ok := el.attrs["name"]; ok {
		instanceName = n
	}

	cfg := p.newConfig(ctx, bb, pathPrefix+instanceName)
	cfg.Manifest = reg.Manifest

	if err := bindPorts(cfg, reg.Manifest, el); err != nil {
		return nil, err
	}

	n := reg.Construct(instanceName, cfg)

	switch reg.Manifest.Kind {
	case domain.KindControl:
		if len(el.children) == 0 {
			return nil, fmt.Errorf("%w: control node <%s> has no children", domain.ErrChildCount, el.name)
		}
		children := make([]node.TreeNode, 0, len(el.children))
		for _, childEl := range el.children {
			child, err := p.buildNode(ctx, childEl, bb, cfg.Path+"/")
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		n.(childSetter).SetChildren(children)
	case domain.KindDecorator:
		if len(el.children) != 1 {
			return nil, fmt.Errorf("%w: decorator node <%s> must have exactly one child, has %d",
				domain.ErrChildCount, el.name, len(el.children))
		}
		child, err := p.buildNode(ctx, el.children[0], bb, cfg.Path+"/")
		if err != nil {
			return nil, err
		}
		n.(childSetter).SetChildren([]node.TreeNode{child})
	default:
		if len(el.children) != 0 {
			return nil, fmt.Errorf("%w: leaf node <%s> cannot have children", domain.ErrChildCount, el.name)
		}
	}

	p.logger.Debug("built node", "type", el.name, "path", cfg.Path)
	return n, nil
}

// childSetter is satisfied by every node embedding node.Base.
type childSetter interface {
	SetChildren([]node.TreeNode)
}

func (p *Parser) buildSubTree(ctx *buildContext, el *element, bb *blackboard.Blackboard, pathPrefix string) (node.TreeNode, error) {
	id, ok := el.attrs["ID"]
	if !ok {
		return nil, fmt.Errorf("%w: SubTree without ID", domain.ErrMissingAttribute)
	}
	if len(el.children) != 0 {
		return nil, fmt.Errorf("%w: SubTree <%s> cannot have children", domain.ErrChildCount, id)
	}
	if slices.Contains(ctx.visiting, id) {
		return nil, fmt.Errorf("%w: [%s] includes itself through %v", domain.ErrCyclicSubTree, id, ctx.visiting)
	}

	target, ok := p.trees[id]
	if !ok {
		return nil, fmt.Errorf("%w: [%s]", domain.ErrUnknownTree, id)
	}

	childBB := blackboard.NewWithParent(bb)
	for attr, value := range el.attrs {
		if attr == "_autoremap" {
			enabled, err := blackboard.ParseString[bool](value)
			if err != nil {
				return nil, fmt.Errorf("%w: _autoremap=%q", domain.ErrParse, value)
			}
			childBB.EnableAutoRemapping(enabled)
			continue
		}
		if !node.IsAllowedPortName(attr) {
			continue
		}
		if key, ok := blackboard.StripPointer(value); ok {
			childBB.AddSubtreeRemapping(attr, key)
		} else {
			// A bare value seeds the child scope directly.
			childBB.Set(attr, value)
		}
	}

	instanceName, named := el.attrs["name"]
	if !named {
		instanceName = fmt.Sprintf("%s::%d", id, p.nextUID())
	}

	path := pathPrefix + instanceName

	ctx.visiting = append(ctx.visiting, id)
	root, err := p.buildNode(ctx, target, childBB, path+"/")
	ctx.visiting = ctx.visiting[:len(ctx.visiting)-1]
	if err != nil {
		return nil, err
	}

	cfg := p.newConfig(ctx, childBB, path)
	cfg.Manifest = &node.Manifest{Kind: domain.KindSubTree, RegistrationID: "SubTree"}
	return node.NewSubTree(instanceName, cfg, root), nil
}

func (p *Parser) newConfig(ctx *buildContext, bb *blackboard.Blackboard, path string) *node.NodeConfig {
	cfg := node.NewConfig(bb)
	cfg.Path = path
	cfg.TreeID = ctx.treeID
	cfg.UID = p.nextUID()
	if ctx.logger != nil {
		cfg.Logger = ctx.logger
	}
	cfg.Hooks = ctx.hooks
	return cfg
}

func (p *Parser) nextUID() uint16 {
	p.uid++
	return p.uid
}

// bindPorts validates the element's attributes against the manifest and
// records them as raw bindings on the config.
func bindPorts(cfg *node.NodeConfig, manifest *node.Manifest, el *element) error {
	for attr, value := range el.attrs {
		if attr == "name" || attr == "ID" {
			continue
		}
		info, ok := manifest.Ports[attr]
		if !ok {
			return fmt.Errorf("%w: [%s] on <%s>, declared ports: %v",
				domain.ErrInvalidPort, attr, el.name, portNames(manifest.Ports))
		}
		cfg.AddPort(info.Direction, attr, value)
	}
	return nil
}

func portNames(ports node.PortsList) []string {
	names := make([]string, 0, len(ports))
	for name := range ports {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
