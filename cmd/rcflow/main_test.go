package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/rcflow"
	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/dsl"
	"github.com/aretw0/rcflow/pkg/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(bytes.NewBufferString("1\n"))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeProject(t *testing.T, name string, p *domain.Project) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	data, err := project.Export(p, project.ParseFormat(filepath.Ext(name)), time.Now())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func greeting() *domain.Project {
	b := dsl.New()
	b.Add("start").Start().Go("hello")
	b.Add("hello").Dialogue("Marcus", "Hi.").Choice("c_bye", "Bye", "end")
	b.Add("end").End()
	return b.Project("proj_greeting", "Greeting")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "rcflow version "+rcflow.Version+"\n", out)
}

func TestValidateCommand(t *testing.T) {
	good := writeProject(t, "greeting.json", greeting())

	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "Greeting is valid (0 warnings)")

	broken := greeting()
	broken.Data.Nodes = broken.Data.Nodes[1:]
	bad := writeProject(t, "broken.json", broken)

	out, err = execute(t, "validate", bad)
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "error Greeting:")
}

func TestConvertCommand(t *testing.T) {
	in := writeProject(t, "greeting.json", greeting())
	target := filepath.Join(t.TempDir(), "greeting.yaml")

	_, err := execute(t, "convert", in, target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	p, err := project.Import(data, project.FormatYAML, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "proj_greeting", p.ID)
	assert.Len(t, p.Data.Nodes, 3)
}

func TestGraphCommand(t *testing.T) {
	in := writeProject(t, "greeting.yaml", greeting())

	out, err := execute(t, "graph", in)
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "hello")
}

func TestSimulateCommand_Headless(t *testing.T) {
	in := writeProject(t, "greeting.json", greeting())

	out, err := execute(t, "simulate", "--headless", in)
	require.NoError(t, err)
	assert.Contains(t, out, "Hi.")
	assert.Contains(t, out, "1) Bye")
}
