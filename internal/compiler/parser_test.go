package compiler_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/canopy/internal/compiler"
	"github.com/aretw0/canopy/pkg/blackboard"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

func newParser() *compiler.Parser {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return compiler.NewParser(compiler.NewRegistry(), logger)
}

const twoTrees = `
<root main_tree_to_execute="second">
	<TreeNodesModel>
		<Action ID="Whatever" />
	</TreeNodesModel>
	<BehaviorTree ID="first">
		<Sequence>
			<AlwaysSuccess />
		</Sequence>
	</BehaviorTree>
	<BehaviorTree ID="second">
		<Fallback>
			<AlwaysFailure />
			<AlwaysSuccess />
		</Fallback>
	</BehaviorTree>
</root>
`

func TestRegisterDocument(t *testing.T) {
	p := newParser()
	require.NoError(t, p.RegisterDocument(twoTrees))

	assert.Equal(t, "second", p.MainTreeID())
	assert.Equal(t, []string{"first", "second"}, p.TreeIDs())
}

func TestRegisterDocument_Errors(t *testing.T) {
	t.Run("missing root element", func(t *testing.T) {
		err := newParser().RegisterDocument(`<BehaviorTree ID="x"><Sequence /></BehaviorTree>`)
		assert.ErrorIs(t, err, domain.ErrMissingRoot)
	})

	t.Run("behavior tree without ID", func(t *testing.T) {
		err := newParser().RegisterDocument(`<root><BehaviorTree><AlwaysSuccess /></BehaviorTree></root>`)
		assert.ErrorIs(t, err, domain.ErrMissingAttribute)
	})

	t.Run("behavior tree with two roots", func(t *testing.T) {
		err := newParser().RegisterDocument(
			`<root><BehaviorTree ID="x"><AlwaysSuccess /><AlwaysSuccess /></BehaviorTree></root>`)
		assert.ErrorIs(t, err, domain.ErrChildCount)
	})

	t.Run("unexpected element under root", func(t *testing.T) {
		err := newParser().RegisterDocument(`<root><Banana /></root>`)
		assert.ErrorIs(t, err, domain.ErrXMLMalformed)
	})

	t.Run("unbalanced document", func(t *testing.T) {
		err := newParser().RegisterDocument(`<root><BehaviorTree ID="x">`)
		assert.ErrorIs(t, err, domain.ErrXMLMalformed)
	})
}

func TestBuild_TreeSelection(t *testing.T) {
	reg := compiler.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	stock := func() *compiler.Parser {
		p := compiler.NewParser(reg, logger)
		registerStubs(reg)
		return p
	}

	t.Run("explicit ID wins", func(t *testing.T) {
		p := stock()
		require.NoError(t, p.RegisterDocument(twoTrees))

		root, err := p.Build("first", blackboard.New(), &domain.LifecycleHooks{})
		require.NoError(t, err)
		assert.Equal(t, domain.KindControl, root.Kind())
		assert.Equal(t, "first", root.Config().TreeID)
	})

	t.Run("falls back to main_tree_to_execute", func(t *testing.T) {
		p := stock()
		require.NoError(t, p.RegisterDocument(twoTrees))

		root, err := p.Build("", blackboard.New(), &domain.LifecycleHooks{})
		require.NoError(t, err)
		assert.Equal(t, "second", root.Config().TreeID)
	})

	t.Run("unknown tree", func(t *testing.T) {
		p := stock()
		require.NoError(t, p.RegisterDocument(twoTrees))

		_, err := p.Build("third", blackboard.New(), &domain.LifecycleHooks{})
		assert.ErrorIs(t, err, domain.ErrUnknownTree)
	})

	t.Run("no main tree among several", func(t *testing.T) {
		p := stock()
		require.NoError(t, p.RegisterDocument(`<root><BehaviorTree ID="a"><AlwaysSuccess /></BehaviorTree><BehaviorTree ID="b"><AlwaysSuccess /></BehaviorTree></root>`))

		_, err := p.Build("", blackboard.New(), &domain.LifecycleHooks{})
		assert.ErrorIs(t, err, domain.ErrNoMainTree)
	})
}

func TestBuild_UnknownNode(t *testing.T) {
	p := newParser()
	require.NoError(t, p.RegisterDocument(`<root><BehaviorTree ID="x"><Mystery /></BehaviorTree></root>`))

	_, err := p.Build("x", blackboard.New(), &domain.LifecycleHooks{})
	assert.ErrorIs(t, err, domain.ErrUnknownNode)
}

func TestBuild_ControlWithoutChildren(t *testing.T) {
	p := newParser()
	require.NoError(t, p.RegisterDocument(`<root><BehaviorTree ID="x"><Sequence /></BehaviorTree></root>`))

	_, err := p.Build("x", blackboard.New(), &domain.LifecycleHooks{})
	assert.ErrorIs(t, err, domain.ErrChildCount)
}

// registerStubs adds the fixed-status leaves the fixtures reference.
func registerStubs(r *compiler.Registry) {
	register := func(name string, status domain.NodeStatus) {
		r.Register(name, domain.KindCondition, nil,
			func(instance string, cfg *node.NodeConfig) node.TreeNode {
				return node.NewCondition(instance, cfg,
					func(*node.NodeConfig) (domain.NodeStatus, error) { return status, nil })
			})
	}
	register("AlwaysSuccess", domain.StatusSuccess)
	register("AlwaysFailure", domain.StatusFailure)
}
