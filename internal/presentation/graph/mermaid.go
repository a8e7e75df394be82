// Package graph renders a built behavior tree as a Mermaid flowchart for
// documentation and debugging.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// GenerateMermaid produces Mermaid flowchart syntax for the tree rooted at
// root. Node shapes follow the kind:
//   - Control: rectangle
//   - Decorator: hexagon
//   - SubTree: circle
//   - Condition: parallelogram
//   - Action: subroutine
func GenerateMermaid(root node.TreeNode) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	counter := 0
	writeNode(&sb, root, &counter)

	return sb.String()
}

func writeNode(sb *strings.Builder, n node.TreeNode, counter *int) string {
	id := fmt.Sprintf("n%d", *counter)
	*counter++

	opener, closer := "[", "]"
	switch n.Kind() {
	case domain.KindDecorator:
		opener, closer = "{{", "}}"
	case domain.KindSubTree:
		opener, closer = "((", "))"
	case domain.KindCondition:
		opener, closer = "[/", "/]"
	case domain.KindAction:
		opener, closer = "[[", "]]"
	}

	label := n.Name()
	if cfg := n.Config(); cfg != nil && cfg.Manifest != nil &&
		cfg.Manifest.RegistrationID != "" && cfg.Manifest.RegistrationID != label {
		label = fmt.Sprintf("%s: %s", cfg.Manifest.RegistrationID, label)
	}

	fmt.Fprintf(sb, "    %s%s\"%s\"%s\n", id, opener, sanitize(label), closer)

	for _, child := range n.Children() {
		childID := writeNode(sb, child, counter)
		fmt.Fprintf(sb, "    %s --> %s\n", id, childID)
	}

	return id
}

func sanitize(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}
