package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/rcflow/pkg/project"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input> [output]",
	Short: "Convert a project document between JSON and YAML",
	Long: `Reads a project document (export envelope, bare project or bare graph),
validates it and writes it as an export envelope. The output format follows
the output extension, or --to when writing to stdout.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")

		p, err := readProjectFile(args[0])
		if err != nil {
			return err
		}

		format := project.ParseFormat(to)
		if len(args) == 2 && !cmd.Flags().Changed("to") {
			format = project.ParseFormat(filepath.Ext(args[1]))
		}
		data, err := project.Export(p, format, time.Now())
		if err != nil {
			return err
		}

		if len(args) == 1 {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(args[1], data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", args[1], err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s)\n", args[1], format)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().String("to", "yaml", "Output format when it cannot be taken from the output file: json or yaml")
}
