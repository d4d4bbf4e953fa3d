package main

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/aretw0/rcflow"
	"github.com/aretw0/rcflow/internal/presentation/tui"
	"github.com/aretw0/rcflow/pkg/adapters/memory"
	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <project-id|file>",
	Short: "Play through a dialogue project in the terminal",
	Long: `Starts an interaction on a stored project, or on a project file that is
loaded without touching the store, and prompts for choices until it closes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		headless, _ := cmd.Flags().GetBool("headless")
		plain, _ := cmd.Flags().GetBool("plain")

		ref := args[0]
		var extra []rcflow.Option
		if isFile(ref) {
			p, err := readProjectFile(ref)
			if err != nil {
				return err
			}
			extra = append(extra, rcflow.WithProjectStore(memory.NewProjectStore(p)))
			ref = p.ID
		}

		eng, stores, _, err := openEngine(cmd, extra...)
		if err != nil {
			return err
		}
		defer stores.Close()

		if !headless && !term.IsTerminal(int(os.Stdin.Fd())) {
			headless = true
		}

		runner := rcflow.NewRunner(cmd.InOrStdin(), cmd.OutOrStdout())
		runner.Headless = headless
		if !headless {
			tui.PrintBanner(cmd.OutOrStdout())
			runner.SpeakerFormat = tui.Speaker
			if !plain {
				runner.Renderer = tui.NewRenderer()
			}
		}

		out, err := runner.Run(commandContext(cmd), eng, ref, sessionID)
		if err != nil {
			return err
		}
		if headless && out != nil && out.Interaction != nil {
			printMemory(cmd, out.Interaction.Memory)
		}
		return nil
	},
}

func printMemory(cmd *cobra.Command, mem domain.GameMemory) {
	for _, k := range slices.Sorted(maps.Keys(mem)) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, mem.Lookup(k))
	}
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().String("session", "", "Session ID (generated when empty)")
	simulateCmd.Flags().Bool("headless", false, "Plain prompts without banner or markdown; prints final memory")
	simulateCmd.Flags().Bool("plain", false, "Do not render dialogue text as markdown")
}
