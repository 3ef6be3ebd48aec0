package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(name string) string {
	return filepath.Join("testdata", name)
}

// execute runs a subcommand and returns stdout, stderr and the error.
func execute(t *testing.T, newCmd func(*RootOptions) *cobra.Command, format string, args ...string) (string, string, error) {
	t.Helper()
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := newCmd(&RootOptions{Format: format})
	cmd.SetOut(out)
	cmd.SetErr(diag)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), diag.String(), err
}

func TestEval_Text(t *testing.T) {
	out, _, err := execute(t, NewEvalCommand, "text", fixture("adults.yaml"), fixture("records.json"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"age":30,"id":"bob","name":"bob","tags":["a","b"]}`, lines[0])
	assert.Contains(t, lines[1], `"id":"cid"`)
}

func TestEval_JSON(t *testing.T) {
	out, _, err := execute(t, NewEvalCommand, "json", fixture("adults.json"), fixture("records.json"))
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   EvalResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Matched)
	assert.Equal(t, 4, resp.Data.Total)
	assert.Equal(t, `gte(/age, 18)&lt(/age, 65)|eq(/role, "admin")`, resp.Data.Query)
	assert.Equal(t, "bob", resp.Data.Records[0]["id"])
}

func TestEval_GeneratedIDs(t *testing.T) {
	out, _, err := execute(t, NewEvalCommand, "text", fixture("adults.yaml"), fixture("records.yaml"))
	require.NoError(t, err)
	assert.Equal(t, `{"age":30,"id":"rec-2","name":"bob","role":"admin"}`+"\n", out)
}

func TestEval_CustomExpressions(t *testing.T) {
	out, _, err := execute(t, NewEvalCommand, "json", fixture("custom.yaml"), fixture("records.json"))
	require.NoError(t, err)

	var resp struct {
		Data EvalResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.Data.Matched)
	assert.Empty(t, resp.Data.Query, "custom filters have no query string")
}

func TestEval_VerboseExplainsMissingQuery(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewEvalCommand(&RootOptions{Format: "json", Verbose: true})
	cmd.SetOut(out)
	cmd.SetErr(diag)
	cmd.SetArgs([]string{fixture("custom.yaml"), fixture("records.json")})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, diag.String(), "Query has no string form")
	assert.NotContains(t, out.String(), `"query"`)
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"missing filter", []string{fixture("nope.yaml"), fixture("records.json")}, ErrCodeNotFound},
		{"invalid filter", []string{fixture("invalid.yaml"), fixture("records.json")}, ErrCodeInvalidFilter},
		{"records not a list", []string{fixture("adults.yaml"), fixture("adults.json")}, ErrCodeInvalidRecords},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, NewEvalCommand, "text", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantCode)
			assert.Contains(t, out, "Error ["+tt.wantCode+"]")
		})
	}
}

func TestSerialize(t *testing.T) {
	out, _, err := execute(t, NewSerializeCommand, "json", fixture("adults.cue"))
	require.NoError(t, err)

	var resp struct {
		Data SerializeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, `gte(/age, 18)&lt(/age, 65)|eq(/role, "admin")`, resp.Data.Query)
}

func TestSerialize_Unserializable(t *testing.T) {
	out, _, err := execute(t, NewSerializeCommand, "text", fixture("custom.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeUnserializable+"]")
}

func TestValidate(t *testing.T) {
	out, _, err := execute(t, NewValidateCommand, "text", fixture("adults.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Filter is portable")
}

func TestValidate_Warnings(t *testing.T) {
	out, _, err := execute(t, NewValidateCommand, "text", fixture("custom.yaml"))
	require.NoError(t, err, "warnings do not fail without --strict")
	assert.Contains(t, out, "2 portability warning(s)")
	assert.Contains(t, out, "Custom")
	assert.Contains(t, out, "Matches")

	out, _, err = execute(t, NewValidateCommand, "json", fixture("dangling.yaml"))
	require.NoError(t, err)
	var resp struct {
		Data ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Data.Portable)
	require.Len(t, resp.Data.Warnings, 1)
	assert.Contains(t, resp.Data.Warnings[0], "trailing")
}

func TestValidate_Strict(t *testing.T) {
	_, _, err := execute(t, NewValidateCommand, "text", "--strict", fixture("custom.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotPortable)
}

func TestValidate_InvalidDocument(t *testing.T) {
	_, _, err := execute(t, NewValidateCommand, "text", fixture("invalid.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSQL(t *testing.T) {
	out, _, err := execute(t, NewSQLCommand, "text", fixture("adults.yaml"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "SELECT id, doc FROM records WHERE "))
	assert.True(t, strings.HasSuffix(lines[0], "ORDER BY id COLLATE BINARY ASC"))
	assert.True(t, strings.HasPrefix(lines[1], `-- params: ["$.\"age\""`))
}

func TestSQL_WhereOnlyJSON(t *testing.T) {
	out, _, err := execute(t, NewSQLCommand, "json", "--where-only", "--doc-column", "body", fixture("adults.yaml"))
	require.NoError(t, err)

	var resp struct {
		Data SQLResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.NotContains(t, resp.Data.SQL, "SELECT id")
	assert.Contains(t, resp.Data.SQL, "json_extract(body, ?)")
	assert.NotEmpty(t, resp.Data.Params)
}

func TestSQL_Errors(t *testing.T) {
	_, _, err := execute(t, NewSQLCommand, "text", fixture("custom.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNoSQL)

	_, _, err = execute(t, NewSQLCommand, "text", "--table", "bad name", fixture("adults.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
