package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkock/bootseq/v3/internal/config"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunCommand(t *testing.T) {
	t.Parallel()

	t.Run("it prints the results of a healthy run", func(t *testing.T) {
		t.Parallel()

		out, logs, err := execute(t, "run", "-f", "testdata/ok.yaml", "--log-format", "json")
		require.NoError(t, err)

		assert.Contains(t, out, "STARTUP")
		assert.Contains(t, out, "SHUTDOWN")
		assert.Regexp(t, `api\s+okay\s+-`, out)
		assert.Contains(t, out, "Order: ")
		assert.Contains(t, logs, `"sequence":"ok"`)
	})

	t.Run("it fails on a degraded start", func(t *testing.T) {
		t.Parallel()

		out, _, err := execute(t, "run", "-f", "testdata/degraded.yaml", "--log-level", "error")
		require.ErrorIs(t, err, ErrDegraded)

		assert.Regexp(t, `db\s+failed\s+simulated failure`, out)
		assert.Regexp(t, `api\s+dependency-error`, out)
	})

	t.Run("it prints metrics on request", func(t *testing.T) {
		t.Parallel()

		out, _, err := execute(t, "run", "-f", "testdata/ok.yaml", "--metrics", "--workers", "2")
		require.NoError(t, err)

		assert.Contains(t, out, `bootseq_results_total{kind="okay",phase="up",sequence="ok"} 3`)
		assert.Contains(t, out, "bootseq_action_duration_seconds_bucket")
	})

	t.Run("it requires a file", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, "run")
		assert.ErrorContains(t, err, `required flag(s) "file" not set`)
	})

	t.Run("it rejects an invalid log level", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, "run", "-f", "testdata/ok.yaml", "--log-level", "loud")
		assert.ErrorContains(t, err, "invalid log level: loud")
	})
}

func TestGraphCommand(t *testing.T) {
	t.Parallel()

	t.Run("it prints the levels", func(t *testing.T) {
		t.Parallel()

		out, _, err := execute(t, "graph", "-f", "testdata/ok.yaml")
		require.NoError(t, err)
		assert.Equal(t, "(cache : db) > (api)\n", out)
	})

	t.Run("it prints the edges on request", func(t *testing.T) {
		t.Parallel()

		out, _, err := execute(t, "graph", "-f", "testdata/ok.yaml", "--edges")
		require.NoError(t, err)
		assert.Contains(t, out, "api <- cache (no keep-alive), db\n")
		assert.Contains(t, out, "db\n")
	})
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "bootseq "+Version+"\n", out)
}

func TestSetupLog(t *testing.T) {
	t.Parallel()

	t.Run("flags take priority over the file", func(t *testing.T) {
		t.Parallel()

		logger, err := setupLog(&bytes.Buffer{}, config.LogConfig{Level: "warn"}, "debug", "")
		require.NoError(t, err)
		assert.Equal(t, "debug", logger.GetLevel().String())
	})

	t.Run("it falls back to the file and then to info", func(t *testing.T) {
		t.Parallel()

		logger, err := setupLog(&bytes.Buffer{}, config.LogConfig{Level: "warn"}, "", "")
		require.NoError(t, err)
		assert.Equal(t, "warning", logger.GetLevel().String())

		logger, err = setupLog(&bytes.Buffer{}, config.LogConfig{}, "", "")
		require.NoError(t, err)
		assert.Equal(t, "info", logger.GetLevel().String())
	})

	t.Run("it rejects unknown formats", func(t *testing.T) {
		t.Parallel()

		_, err := setupLog(&bytes.Buffer{}, config.LogConfig{}, "", "xml")
		assert.ErrorContains(t, err, "invalid log format: xml")
	})
}
