package rcflow

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/rcflow/pkg/domain"
)

// Runner plays an interaction in a line-oriented terminal.
// This allows for easy testing and integration with different frontends.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	// SpeakerFormat decorates the speaker name. Defaults to "name:".
	SpeakerFormat func(string) string
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner over the given IO.
func NewRunner(in io.Reader, out io.Writer) *Runner {
	return &Runner{Input: in, Output: out}
}

// Run starts an interaction on projectID and plays it until it closes, the
// player types exit or quit, or the input ends. It returns the last outcome.
func (r *Runner) Run(ctx context.Context, engine *Engine, projectID, sessionID string) (*domain.Outcome, error) {
	if r.Input == nil {
		return nil, fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return nil, fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewReader(r.Input)

	if !r.Headless {
		fmt.Fprintln(r.Output, "--- rcflow simulator ---")
	}

	outcome, err := engine.StartInteraction(ctx, projectID, sessionID)
	if err != nil {
		return nil, err
	}
	sessionID = outcome.Interaction.SessionID

	for {
		if outcome.Closed {
			if !r.Headless {
				fmt.Fprintf(r.Output, "[interaction closed: %s]\n", outcome.Reason)
			}
			return outcome, nil
		}
		r.show(outcome.View)

		choice, quit, err := r.ask(lines, outcome.View)
		if err != nil {
			return outcome, err
		}
		if quit {
			fmt.Fprintln(r.Output, "Bye!")
			return engine.CancelInteraction(ctx, sessionID)
		}

		outcome, err = engine.SelectChoice(ctx, sessionID, outcome.View.NodeID, choice)
		if err != nil {
			return nil, err
		}
	}
}

func (r *Runner) show(view *domain.DialogueView) {
	text := view.Text
	if r.Renderer != nil {
		if rendered, err := r.Renderer(text); err == nil {
			text = rendered
		}
	}

	speaker := view.Name + ":"
	if r.SpeakerFormat != nil {
		speaker = r.SpeakerFormat(view.Name)
	}
	if view.Name != "" {
		fmt.Fprintln(r.Output, speaker)
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(text))

	for i, c := range view.Choices {
		fmt.Fprintf(r.Output, "  %d) %s\n", i+1, c.Text)
	}
}

// ask reads lines until one names a choice. quit is true on exit, quit or EOF.
func (r *Runner) ask(lines *bufio.Reader, view *domain.DialogueView) (string, bool, error) {
	for {
		fmt.Fprint(r.Output, "> ")
		text, err := lines.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", false, fmt.Errorf("input error: %w", err)
		}
		input := strings.TrimSpace(text)

		switch {
		case input == "exit" || input == "quit":
			return "", true, nil
		case input == "" && errors.Is(err, io.EOF):
			return "", true, nil
		}

		if n, convErr := strconv.Atoi(input); convErr == nil && n >= 1 && n <= len(view.Choices) {
			return view.Choices[n-1].ID, false, nil
		}
		fmt.Fprintf(r.Output, "Pick a number between 1 and %d.\n", len(view.Choices))
		if errors.Is(err, io.EOF) {
			return "", true, nil
		}
	}
}
