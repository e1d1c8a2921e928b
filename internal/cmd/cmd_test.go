package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProfile = `
name: straight line
period: 100ms
duration: 600ms
steps:
  - at: 0s
    y: 0.5
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestSimulate(t *testing.T) {
	path := writeFile(t, "profile.yaml", testProfile)
	cfg := writeFile(t, "drivetrain.yaml", "drive:\n  max_y_acceleration: 1\n")

	out, _, err := run(t, "--config", cfg, "simulate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "straight line")
	assert.Contains(t, out, "0.100")
	assert.Contains(t, out, "accelerating")
}

func TestSimulate_NoRateLimit(t *testing.T) {
	path := writeFile(t, "profile.yaml", testProfile)

	out, _, err := run(t, "simulate", "--no-rate-limit", path)
	require.NoError(t, err)
	assert.Contains(t, out, "0.500")
	assert.NotContains(t, out, "accelerating")
}

func TestSimulate_Errors(t *testing.T) {
	path := writeFile(t, "profile.yaml", testProfile)

	_, _, err := run(t, "simulate", "--filter", "jerk", path)
	assert.Error(t, err)

	_, _, err = run(t, "simulate", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, _, err = run(t, "simulate")
	assert.Error(t, err)

	bad := writeFile(t, "drivetrain.yaml", "loop:\n  period: 0s\n")
	_, _, err = run(t, "--config", bad, "simulate", path)
	assert.Error(t, err)
}

func TestSimulate_Record(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	t.Setenv("DRIVETRAIN_REDIS_ADDR", server.Addr())
	path := writeFile(t, "profile.yaml", testProfile)

	_, stderr, err := run(t, "simulate", "--record", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "recorded run ")
	assert.NotEmpty(t, server.Keys())
}

func TestVersion(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123")
	defer SetVersionInfo("", "")

	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "drivetrain 1.2.3 (abc123)\n", out)
}
