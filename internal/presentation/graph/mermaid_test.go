package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/canopy/internal/presentation/graph"
	"github.com/aretw0/canopy/internal/testutils"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
	"github.com/aretw0/canopy/pkg/node/control"
	"github.com/aretw0/canopy/pkg/node/decorator"
)

func TestGenerateMermaid(t *testing.T) {
	seq := control.NewSequence("patrol", testutils.NewConfig())
	inv := decorator.NewInverter("not", testutils.NewConfig())
	leaf := testutils.NewScripted("check", domain.StatusSuccess)
	inv.SetChildren([]node.TreeNode{leaf})
	seq.SetChildren([]node.TreeNode{inv})

	out := graph.GenerateMermaid(seq)

	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, `n0["patrol"]`)
	assert.Contains(t, out, `n1{{"not"}}`)
	assert.Contains(t, out, `n2[["check"]]`)
	assert.Contains(t, out, "n0 --> n1")
	assert.Contains(t, out, "n1 --> n2")
}
