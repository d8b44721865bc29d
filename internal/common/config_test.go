package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, []string{"stdout"}, config.Logging.Output)
	assert.Equal(t, "WARNING", config.Runner.Severity)
	require.NoError(t, Validate(config))
}

func TestLoadFromFilesMerges(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.toml")
	require.NoError(t, os.WriteFile(first, []byte(`
[logging]
level = "debug"
`), 0644))
	second := filepath.Join(dir, "b.toml")
	require.NoError(t, os.WriteFile(second, []byte(`
[runner]
severity = "TRACE"

[[schedules]]
name = "nightly"
file = "procedures/check.xml"
schedule = "0 2 * * *"
`), 0644))

	config, err := LoadFromFiles(first, second)
	require.NoError(t, err)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "TRACE", config.Runner.Severity)
	require.Len(t, config.Schedules, 1)
	assert.Equal(t, "nightly", config.Schedules[0].Name)
}

func TestLoadFromFilesRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte(`
[logging]
level = "shout"
`), 0644))

	_, err := LoadFromFiles(bad)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OACTREE_LOG_LEVEL", "WARN")
	t.Setenv("OACTREE_SEVERITY", "debug")

	config, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, "DEBUG", config.Runner.Severity)
}

func TestValidateUnknownSeverity(t *testing.T) {
	config := DefaultConfig()
	config.Runner.Severity = "LOUD"
	assert.Error(t, Validate(config))
}
