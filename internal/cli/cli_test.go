package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tychoish/flow/ers"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		val, ok := env[key]
		return val, ok
	}
}

// execute runs the CLI with the given environment, and no dotenv
// file unless the arguments name one.
func execute(t *testing.T, env map[string]string, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(&RootOptions{Lookup: lookupFrom(env)})

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "flowcollect", cmd.Use)

	sub, _, err := cmd.Find([]string{"collect"})
	require.NoError(t, err)
	assert.Equal(t, "collect", sub.Name())

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("format").DefValue)
	assert.Equal(t, DefaultEnvFile, cmd.PersistentFlags().Lookup("env-file").DefValue)

	for _, name := range []string{"input", "join", "limit"} {
		assert.NotNil(t, sub.Flags().Lookup(name), name)
	}
}

func TestCollectCommand(t *testing.T) {
	t.Run("List", func(t *testing.T) {
		out, _, err := execute(t, nil, "", "collect", "1", "2", "3")
		require.NoError(t, err)
		assert.Equal(t, "1\n2\n3\n", out)
	})
	t.Run("Join", func(t *testing.T) {
		out, _, err := execute(t, nil, "", "collect", "--join", "-", "1", "2", "3")
		require.NoError(t, err)
		assert.Equal(t, "1-2-3\n", out)
	})
	t.Run("JoinEmptyElements", func(t *testing.T) {
		out, _, err := execute(t, nil, "", "collect", "--join", ",", "", "a")
		require.NoError(t, err)
		assert.Equal(t, ",a\n", out)

		out, _, err = execute(t, nil, "", "collect", "--join", ",", "a", "", "b")
		require.NoError(t, err)
		assert.Equal(t, "a,,b\n", out)
	})
	t.Run("JoinLimit", func(t *testing.T) {
		_, _, err := execute(t, nil, "", "collect", "--join", ",", "--limit", "1", "", "a")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrLimitExceeded)
	})
	t.Run("Empty", func(t *testing.T) {
		out, _, err := execute(t, nil, "", "collect", "--format", "json")
		require.NoError(t, err)

		var res Result
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, 0, res.Count)
		assert.Equal(t, []any{}, res.Value)
	})
	t.Run("JSON", func(t *testing.T) {
		out, _, err := execute(t, nil, "", "collect", "--format", "json", "a", "b")
		require.NoError(t, err)

		var res Result
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, 2, res.Count)
		assert.Equal(t, []any{"a", "b"}, res.Value)
		id, err := uuid.Parse(res.Run)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), id.Version())
	})
	t.Run("YAML", func(t *testing.T) {
		out, _, err := execute(t, nil, "", "collect", "--format", "yaml", "--join", ",", "a", "b")
		require.NoError(t, err)

		var res Result
		require.NoError(t, yaml.Unmarshal([]byte(out), &res))
		assert.Equal(t, "a,b", res.Value)
		assert.Equal(t, 2, res.Count)
	})
	t.Run("StdinSequence", func(t *testing.T) {
		out, _, err := execute(t, nil, "- 1\n- two\n- 3.5\n", "collect", "--input", "-", "--join", "|")
		require.NoError(t, err)
		assert.Equal(t, "1|two|3.5\n", out)
	})
	t.Run("JSONFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "input.json")
		require.NoError(t, os.WriteFile(path, []byte(`[1, 2, {"a": "b"}]`), 0o600))

		out, _, err := execute(t, nil, "", "collect", "--input", path, "--format", "json")
		require.NoError(t, err)

		var res Result
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, 3, res.Count)
		assert.Len(t, res.Value, 3)
	})
	t.Run("Limit", func(t *testing.T) {
		_, _, err := execute(t, nil, "", "collect", "--limit", "2", "a", "b")
		require.NoError(t, err)

		out, _, err := execute(t, nil, "", "collect", "--limit", "2", "a", "b", "c")
		require.Error(t, err)
		assert.Empty(t, out)
		assert.ErrorIs(t, err, ErrLimitExceeded)
		assert.Equal(t, ExitFailure, GetExitCode(err))
	})
	t.Run("VerboseLogsRun", func(t *testing.T) {
		_, logs, err := execute(t, nil, "", "--verbose", "collect", "a")
		require.NoError(t, err)
		assert.Contains(t, logs, "level=DEBUG")
		assert.Contains(t, logs, "msg=collecting")
		assert.Contains(t, logs, "run=")
	})
}

func TestCollectCommandErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		stdin string
		args  []string
	}{
		"UnknownFlag":    {args: []string{"collect", "--nope"}},
		"BadFormat":      {args: []string{"--format", "xml", "collect", "a"}},
		"InputAndValues": {args: []string{"collect", "--input", "-", "a"}},
		"NegativeLimit":  {args: []string{"collect", "--limit", "-1"}},
		"MissingFile":    {args: []string{"collect", "--input", "/does/not/exist.yaml"}},
		"NotASequence":   {stdin: "a: b\n", args: []string{"collect", "--input", "-"}},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := execute(t, nil, tc.stdin, tc.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}

	t.Run("NotASequenceIsInvalidInput", func(t *testing.T) {
		_, _, err := execute(t, nil, "just a string", "collect", "--input", "-")
		assert.ErrorIs(t, err, ers.ErrInvalidInput)
	})
}

func TestEnvironmentDefaults(t *testing.T) {
	t.Run("Process", func(t *testing.T) {
		out, _, err := execute(t, map[string]string{EnvSeparator: "+", EnvFormat: "text"}, "", "collect", "1", "2")
		require.NoError(t, err)
		assert.Equal(t, "1+2\n", out)
	})
	t.Run("FlagsWin", func(t *testing.T) {
		out, _, err := execute(t, map[string]string{EnvSeparator: "+", EnvFormat: "json"}, "",
			"--format", "text", "collect", "--join", ":", "1", "2")
		require.NoError(t, err)
		assert.Equal(t, "1:2\n", out)
	})
	t.Run("DotenvFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flow.env")
		require.NoError(t, os.WriteFile(path, []byte("FLOW_SEPARATOR=/\nFLOW_VERBOSE=true\n"), 0o600))

		out, logs, err := execute(t, nil, "", "--env-file", path, "collect", "x", "y")
		require.NoError(t, err)
		assert.Equal(t, "x/y\n", out)
		assert.Contains(t, logs, "level=DEBUG")
	})
	t.Run("BadVerbose", func(t *testing.T) {
		_, _, err := execute(t, map[string]string{EnvVerbose: "loud"}, "", "collect")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.ErrorIs(t, err, ers.ErrInvalidInput)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		conf, err := LoadConfig(filepath.Join(t.TempDir(), "none"), nil)
		require.NoError(t, err)
		assert.Equal(t, &Config{}, conf)
	})
	t.Run("EnvironmentOverridesFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("FLOW_FORMAT=yaml\nFLOW_SEPARATOR=\n"), 0o600))

		conf, err := LoadConfig(path, lookupFrom(map[string]string{EnvFormat: "json"}))
		require.NoError(t, err)
		assert.Equal(t, "json", conf.Format)
		assert.True(t, conf.SeparatorSet)
		assert.Equal(t, "", conf.Separator)
		assert.False(t, conf.Verbose)
	})
	t.Run("UnreadableFile", func(t *testing.T) {
		_, err := LoadConfig(t.TempDir(), nil)
		require.Error(t, err)
	})
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	inner := errors.New("inner")
	err := WrapExitError(ExitCommandError, "outer", inner)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "outer: inner", err.Error())
	assert.Equal(t, "bare", NewExitError(ExitFailure, "bare").Error())
}

func TestRender(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, Render(buf, "text", Result{Value: "joined"}))
	assert.Equal(t, "joined\n", buf.String())

	assert.Error(t, Render(buf, "toml", Result{}))
}
