package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/lvacfs-go/internal/buildinfo"
	"github.com/tphakala/lvacfs-go/internal/conf"
	"github.com/tphakala/lvacfs-go/internal/logger"
)

// executeRoot runs the command line with args against a config file holding configYAML.
// Not parallel: a run installs the global logger.
func executeRoot(t *testing.T, configYAML string, args ...string) (*conf.Settings, string, error) {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configYAML), 0o600))

	settings := &conf.Settings{}
	rootCmd, cleanup := RootCommand(conf.NewViper(), settings, buildinfo.NewContext("1.0.0", "", ""))
	t.Cleanup(func() {
		cleanup()
		logger.SetGlobal(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := rootCmd.Execute()
	return settings, out.String(), err
}

const quietConfig = `
logging:
  console:
    enabled: false
`

func TestConfigCommandWritesEffectiveSettings(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.yaml")

	settings, out, err := executeRoot(t, quietConfig+"stream:\n  samplerate: 16000\n", "config", outPath, "--debug")
	require.NoError(t, err)
	assert.Contains(t, out, "configuration written to")
	assert.True(t, settings.Debug)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var written conf.Settings
	require.NoError(t, yaml.Unmarshal(data, &written))
	assert.True(t, written.Debug, "flag override is written")
	assert.Equal(t, 16000, written.Stream.SampleRate, "config file value is written")
	assert.Equal(t, 480, written.Stream.PeriodFrames, "defaults fill the rest")
}

func TestConfigCommandDefaults(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.yaml")

	_, _, err := executeRoot(t, quietConfig+"stream:\n  samplerate: 16000\n", "config", outPath, "--defaults")
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var written conf.Settings
	require.NoError(t, yaml.Unmarshal(data, &written))
	assert.Equal(t, 48000, written.Stream.SampleRate)
}

func TestFileFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	settings, _, err := executeRoot(t, quietConfig+"stream:\n  zoom: 1.5\n  profile: 2\n",
		"file", filepath.Join(dir, "missing.wav"), filepath.Join(dir, "out.wav"),
		"--zoom", "2.5", "--direction", "back")

	require.Error(t, err, "input file does not exist")
	assert.InDelta(t, 2.5, settings.Stream.Zoom, 1e-9)
	assert.Equal(t, "back", settings.Stream.Direction)
	assert.Equal(t, 2, settings.Stream.Profile, "unset flag keeps the config value")
}

func TestInvalidConfigFails(t *testing.T) {
	_, _, err := executeRoot(t, quietConfig+"stream:\n  channels: 0\n", "config", filepath.Join(t.TempDir(), "out.yaml"))
	require.Error(t, err)
}
