package asynclog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultLogger exercises the package-level wrappers end to end
func TestDefaultLogger(t *testing.T) {
	tmpDir := t.TempDir()

	err := InitWithDefaults(
		"directory="+tmpDir,
		"name=global",
		"backend=file",
		"level=debug",
		"internal_errors_to_stderr=false",
	)
	require.NoError(t, err)
	defer Shutdown()

	assert.Same(t, defaultLogger, Default())

	Debug("global debug")
	Info("global info")
	Warn("global warn")
	Error("global error")
	Message("global message")
	Push([]byte("global push\n"))

	require.NoError(t, Flush(time.Second))

	content, err := os.ReadFile(filepath.Join(tmpDir, "global.log"))
	require.NoError(t, err)
	for _, want := range []string{
		"DEBUG global debug",
		"INFO global info",
		"WARN global warn",
		"ERROR global error",
		"global message",
		"global push",
	} {
		assert.Contains(t, string(content), want)
	}

	require.NoError(t, Shutdown(time.Second))
	assert.True(t, Default().state.ShutdownCalled.Load())
}

func TestInitWithDefaultsInvalidOverride(t *testing.T) {
	err := InitWithDefaults("missing_separator")
	assert.Error(t, err)

	err = InitWithDefaults("no_such_key=1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_key")
}
