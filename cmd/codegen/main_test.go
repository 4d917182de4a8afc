package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/indexer-codegen/internal/testutil"
)

func TestSchemaCommand(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	require.NoError(t, app.Run([]string{"codegen", "schema"}))

	want, err := os.ReadFile(filepath.Join("..", "..", "pkg", "humanconfig", "testdata", "evm.schema.json"))
	require.NoError(t, err)
	assert.Equal(t, string(want), out.String())
}

func TestGenerateCommand(t *testing.T) {
	dir := testutil.WriteGreeterProject(t)
	metricsFile := filepath.Join(dir, "codegen.prom")

	err := newApp().Run([]string{
		"codegen",
		"--project-root", dir,
		"--generated", "out",
		"--log-level", "error",
		"--metrics-file", metricsFile,
		"generate",
	})
	require.NoError(t, err)

	for _, name := range []string{"model.json", "schema.graphql"} {
		_, err := os.Stat(filepath.Join(dir, "out", name))
		assert.NoError(t, err, name)
	}

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "indexer_codegen_contracts_total 2")
}

func TestValidateCommand(t *testing.T) {
	dir := testutil.WriteGreeterProject(t)

	err := newApp().Run([]string{"codegen", "--project-root", dir, "--log-level", "error", "validate"})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "generated"))
	assert.True(t, os.IsNotExist(err))
}

func TestValidateCommand_ReportsConfigErrors(t *testing.T) {
	dir := testutil.WriteProject(t, "name: broken\nnetworks: []\n", nil)

	err := newApp().Run([]string{"codegen", "--project-root", dir, "--log-level", "error", "validate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation error")
}

func TestGenerateCommand_RejectsEscapingOutput(t *testing.T) {
	dir := testutil.WriteGreeterProject(t)

	err := newApp().Run([]string{"codegen", "--project-root", dir, "--generated", "../out", "generate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be inside the project root")
}
