package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/rcflow"
	"github.com/aretw0/rcflow/internal/cli"
	"github.com/aretw0/rcflow/internal/validator"
	"github.com/spf13/cobra"
)

var errInvalid = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate [project-id|file ...]",
	Short: "Lint dialogue graphs",
	Long: `Checks graphs for a Start node, dangling connections, ports a node kind
does not have, and nodes unreachable from Start. Without arguments every
stored project is checked. With --watch (loam store only) the check reruns
whenever a project document changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")

		eng, stores, logger, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer stores.Close()

		ctx := commandContext(cmd)
		out := cmd.OutOrStdout()

		if !watch {
			return validateAll(ctx, out, eng, args)
		}
		if stores.Source == nil {
			return fmt.Errorf("--watch needs the loam store driver")
		}
		return cli.Watch(ctx, stores.Source, cli.DefaultDebounce, func(changed string) {
			if changed != "" {
				logger.Info("project changed", "document", changed)
			}
			if err := validateAll(ctx, out, eng, args); err != nil && !errors.Is(err, errInvalid) {
				logger.Error("validate", "error", err)
			}
		})
	},
}

func validateAll(ctx context.Context, out io.Writer, eng *rcflow.Engine, refs []string) error {
	if len(refs) == 0 {
		summaries, err := eng.Projects().List(ctx)
		if err != nil {
			return err
		}
		for _, s := range summaries {
			refs = append(refs, s.ID)
		}
		if len(refs) == 0 {
			fmt.Fprintln(out, "no projects to validate")
			return nil
		}
	}

	ok := true
	for _, ref := range refs {
		p, err := resolveProject(ctx, eng, ref)
		if err != nil {
			return fmt.Errorf("%s: %w", ref, err)
		}
		if !cli.PrintReport(out, p.Name, validator.ValidateGraph(p.Data)) {
			ok = false
		}
	}
	if !ok {
		return errInvalid
	}
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolP("watch", "w", false, "Revalidate on every change (loam store)")
}
