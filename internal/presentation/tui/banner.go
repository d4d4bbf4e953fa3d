package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// Tagline is printed under the banner.
const Tagline = "dialogue flows for interactive NPCs"

// PrintBanner writes the rcflow ASCII banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"                __  _              ", "#34d399"},
		{"   _ __ ___    / _|| |  ___ __ __ __", "#2dd4bf"},
		{"  | '__/ __|  | |_ | | / _ \\\\ V  V /", "#22d3ee"},
		{"  | | | (__   |  _|| || (_) |\\_/\\_/ ", "#38bdf8"},
		{"  |_|  \\___|  |_|  |_| \\___/        ", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  "+Tagline).Faint())
	fmt.Fprintln(w)
}

// Speaker formats a speaker name for the simulator prompt.
func Speaker(name string) string {
	if name == "" {
		name = "???"
	}
	p := termenv.ColorProfile()
	return termenv.String(name).Bold().Foreground(p.Color("#fbbf24")).String()
}
