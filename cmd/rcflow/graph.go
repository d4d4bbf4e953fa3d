package main

import (
	"fmt"

	"github.com/aretw0/rcflow/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <project-id|file>",
	Short: "Export the dialogue graph as a Mermaid diagram",
	Long:  `Prints a Mermaid flowchart (graph TD) of the project. With --session the nodes the interaction visited are highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		eng, stores, _, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer stores.Close()

		ctx := commandContext(cmd)
		p, err := resolveProject(ctx, eng, args[0])
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if sessionID != "" {
			it, err := eng.Sessions().Load(ctx, sessionID)
			if err != nil {
				return err
			}
			overlay = &graph.GraphOverlay{VisitedNodes: it.History, CurrentNode: it.CurrentNodeID}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(p.Data, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the path of this session")
}
