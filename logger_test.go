package bootseq

import (
	"bytes"
	"log"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrusLogger(t *testing.T) {
	t.Parallel()

	t.Run("it tags every entry with the sequence and run id", func(t *testing.T) {
		t.Parallel()

		logger, hook := test.NewNullLogger()
		mgr := New("tagged", WithLogger(NewLogrusLogger(logger)), WithRunID("run-7"))
		Must(mgr.Register("db", NoOp, NoOp))
		startStop(t, mgr)

		entries := hook.AllEntries()
		require.NotEmpty(t, entries)
		for _, e := range entries {
			assert.Equal(t, "tagged", e.Data["sequence"])
			assert.Equal(t, "run-7", e.Data["run_id"])
		}
	})

	t.Run("it logs failed actions at error level", func(t *testing.T) {
		t.Parallel()

		logger, hook := test.NewNullLogger()
		mgr := New("failing", WithLogger(NewLogrusLogger(logger)))
		Must(mgr.Register("db", errOp, NoOp))
		await(t, mgr.Start(t.Context(), GoExecutor{}))

		var failures int
		for _, e := range hook.AllEntries() {
			if e.Level == logrus.ErrorLevel {
				failures++
				assert.Contains(t, e.Message, errService.Error())
			}
		}
		assert.Equal(t, 1, failures)
	})
}

func TestStdLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewStdLogger(log.New(&buf, "", 0))
	logger.Info("hello")
	logger.Error("oops")

	assert.Equal(t, "info: hello\nerror: oops\n", buf.String())
}
