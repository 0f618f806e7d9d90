package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(map[string]int{"zeta": 1, "alpha": 2})
	require.NoError(t, err)

	assert.Equal(t, `{"data":{"alpha":2,"zeta":1},"status":"ok"}`+"\n", buf.String(), "JSON output is canonical")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E_VIOLATIONS", "2 violation(s)", map[string]int{"line": 3})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_VIOLATIONS", resp.Error.Code)
	assert.Equal(t, "2 violation(s)", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_ReportKeepsDataOnError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Report(map[string]int{"failed": 1}, "E_TEST_FAILED", "1 scenario(s) failed"))
	assert.Equal(t,
		`{"data":{"failed":1},"error":{"code":"E_TEST_FAILED","message":"1 scenario(s) failed"},"status":"error"}`+"\n",
		buf.String())

	buf.Reset()
	require.NoError(t, formatter.Report([]int{1}, "", ""))
	assert.Equal(t, `{"data":[1],"status":"ok"}`+"\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	require.NoError(t, formatter.Error("E001", "broken", "line 3"))
	assert.Equal(t, "Error [E001]: broken\nDetails: line 3\n", buf.String())
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "json",
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   true,
	}

	formatter.VerboseLog("line %d skipped", 4)
	assert.Empty(t, out.String())
	assert.Equal(t, "line 4 skipped\n", errOut.String())

	formatter.Verbose = false
	formatter.VerboseLog("hidden")
	assert.Equal(t, "line 4 skipped\n", errOut.String())
}
