package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/rcflow/internal/validator"
	"github.com/muesli/termenv"
)

// PrintReport writes a lint report for one project. It returns false when
// the report has errors.
func PrintReport(w io.Writer, name string, r validator.Report) bool {
	out := termenv.NewOutput(w)
	red := out.Color("1")
	yellow := out.Color("3")
	green := out.Color("2")

	for _, f := range r.Errors {
		fmt.Fprintf(w, "%s %s: %s\n", out.String("error").Foreground(red).Bold(), name, f)
	}
	for _, f := range r.Warnings {
		fmt.Fprintf(w, "%s %s: %s\n", out.String("warn").Foreground(yellow), name, f)
	}
	if r.OK() {
		fmt.Fprintf(w, "%s %s is valid (%d warnings)\n", out.String("ok").Foreground(green), name, len(r.Warnings))
		return true
	}
	return false
}
