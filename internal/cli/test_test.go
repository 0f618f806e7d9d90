package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const colorScenario = `
name: color_once
description: "a color message replaces the panel"
steps:
  - batch:
      - { type: color, time_stamp: 1, device_id: dev-1, device_nr: 0, color: "00FF00" }
assertions:
  - type: color
    value: "#00ff00"
`

const failingScenario = `
name: wrong_color
description: "expects the wrong color"
steps:
  - batch:
      - { type: color, time_stamp: 1, device_id: dev-1, device_nr: 0, color: red }
assertions:
  - type: color
    value: blue
`

func writeScenarios(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := executeRoot(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestTestCommandNonExistentPath(t *testing.T) {
	_, err := executeRoot(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenario path not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, err := executeRoot(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandPassingScenario(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"color.yaml": colorScenario})

	out, err := executeRoot(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ color_once")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"color.yaml": colorScenario,
		"wrong.yaml": failingScenario,
	})

	out, err := executeRoot(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_color")
	assert.Contains(t, out, "expected blue, got red")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
}

func TestTestCommandFilter(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"color.yaml": colorScenario,
		"wrong.yaml": failingScenario,
	})

	out, err := executeRoot(t, "test", dir, "--filter", "col*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommandGoldenUpdateAndCompare(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"color.yaml": colorScenario})

	out, err := executeRoot(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "golden updated")

	goldenPath := filepath.Join(dir, "golden", "color_once.golden")
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"color":"#00ff00"`)

	_, err = executeRoot(t, "test", dir)
	require.NoError(t, err, "fresh golden must match")

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{}`), 0644))
	out, err = executeRoot(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "does not match golden file")
}

func TestTestCommandJSON(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"wrong.yaml": failingScenario})

	out, err := executeRoot(t, "test", filepath.Join(dir, "wrong.yaml"), "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.NotContains(t, out, "\n  ", "JSON output is canonical, not indented")
	assert.Equal(t, 1, strings.Count(out, "\n"))
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "wrong_color", resp.Data.Scenarios[0].Name)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
}
