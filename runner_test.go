package rcflow_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/rcflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_PlaysToEnd(t *testing.T) {
	eng, _ := newEngine(t)
	var out bytes.Buffer
	r := rcflow.NewRunner(strings.NewReader("1\n1\n"), &out)
	r.Headless = true

	final, err := r.Run(context.Background(), eng, "proj_docks", "s1")
	require.NoError(t, err)
	assert.True(t, final.Closed)
	assert.Equal(t, "end", final.Reason)
	assert.Equal(t, "docks", final.Interaction.Memory.Lookup("job"))

	text := out.String()
	assert.Contains(t, text, "Marcus:\nGood to see you.")
	assert.Contains(t, text, "  1) Any work?\n  2) Bye\n")
	assert.Contains(t, text, "Unload the boat.")
}

func TestRunner_RetriesInvalidInput(t *testing.T) {
	eng, _ := newEngine(t)
	var out bytes.Buffer
	r := rcflow.NewRunner(strings.NewReader("7\nabc\n2\n"), &out)

	final, err := r.Run(context.Background(), eng, "proj_docks", "s1")
	require.NoError(t, err)
	assert.Equal(t, "end", final.Reason)
	assert.Equal(t, 2, strings.Count(out.String(), "Pick a number between 1 and 2."))
	assert.Contains(t, out.String(), "[interaction closed: end]")
}

func TestRunner_QuitCancels(t *testing.T) {
	for _, input := range []string{"quit\n", "exit\n", ""} {
		eng, sessions := newEngine(t)
		var out bytes.Buffer
		r := rcflow.NewRunner(strings.NewReader(input), &out)

		final, err := r.Run(context.Background(), eng, "proj_docks", "s1")
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, "cancelled", final.Reason)
		assert.Contains(t, out.String(), "Bye!")

		ids, err := sessions.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, ids)
	}
}

func TestRunner_Renderer(t *testing.T) {
	eng, _ := newEngine(t)
	var out bytes.Buffer
	r := rcflow.NewRunner(strings.NewReader("2\n"), &out)
	r.Renderer = func(s string) (string, error) { return strings.ToUpper(s), nil }
	r.SpeakerFormat = func(name string) string { return "[" + name + "]" }

	_, err := r.Run(context.Background(), eng, "proj_docks", "s1")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[Marcus]\nGOOD TO SEE YOU.")
}

func TestRunner_RequiresIO(t *testing.T) {
	eng, _ := newEngine(t)
	_, err := (&rcflow.Runner{}).Run(context.Background(), eng, "proj_docks", "s1")
	assert.Error(t, err)
}
