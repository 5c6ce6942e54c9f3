package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zuxichen/dg/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, int(config.InfoLevel), cfg.LogLevel)
	assert.Zero(t, cfg.MaxSteps)
	assert.False(t, cfg.ValidateGraph)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log-level: 4
max-steps: 500
validate-graph: true
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, int(config.DebugLevel), cfg.LogLevel)
	assert.Equal(t, 500, cfg.MaxSteps)
	assert.True(t, cfg.ValidateGraph)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "max-steps: 10\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, int(config.InfoLevel), cfg.LogLevel)
	assert.Equal(t, 10, cfg.MaxSteps)
}

func TestLoadErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = config.Load(writeConfig(t, "log-level: [broken\n"))
	assert.Error(t, err)

	_, err = config.Load(writeConfig(t, "log-level: 9\n"))
	assert.ErrorContains(t, err, "out of range")
}

func TestLogGroupLevels(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = int(config.WarnLevel)

	var buf bytes.Buffer
	l := config.NewLogGroup(cfg)
	l.SetAllOutput(&buf)
	l.SetAllFlags(0)

	l.Errorf("e")
	l.Warnf("w")
	l.Infof("i")
	l.Debugf("d")
	l.Tracef("t")

	assert.Equal(t, "[ERROR] e\n[WARN] w\n", buf.String())
}
