package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, logrus.PanicLevel, ParseLevel("silent"))
	require.Equal(t, logrus.InfoLevel, ParseLevel("info"))
	require.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	require.Equal(t, logrus.ErrorLevel, ParseLevel("loud"))
}

func TestFileLogger_WritesJSONLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "roster.log")
	closer, log, err := FileLogger(logrus.InfoLevel, path)
	require.NoError(t, err)

	log.WithField("run_id", "abc").Info("import finished")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), `"msg":"import finished"`)
	require.Contains(t, string(b), `"run_id":"abc"`)
}
