package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph <tree.xml>",
	Short: "Render a tree as a Mermaid flowchart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		treeID, _ := cmd.Flags().GetString("tree")

		factory := canopy.NewFactory(canopy.WithLogger(newLogger(cmd)))
		factory.RegisterStockNodes()

		if err := factory.RegisterTreesFromFile(args[0]); err != nil {
			return err
		}

		tree, err := factory.CreateTree(treeID)
		if err != nil {
			return err
		}

		fmt.Fprint(os.Stdout, graph.GenerateMermaid(tree.Root()))
		return nil
	},
}

func init() {
	graphCmd.Flags().String("tree", "", "ID of the BehaviorTree to render (default: main_tree_to_execute)")
	rootCmd.AddCommand(graphCmd)
}
