package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chTempDir points the config loader at an isolated working directory.
func chTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
	return dir
}

func TestStateCommand(t *testing.T) {
	dir := chTempDir(t)
	yaml := `
dart:
  api_key: test-key
store:
  driver: json
  path: ` + filepath.Join(dir, "state.json") + `
  max_seen: 100
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"state"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "driver: json")
	assert.Contains(t, out.String(), "seen filings: 0")
}

func TestScanCommand_RejectsUnknownFormat(t *testing.T) {
	dir := chTempDir(t)
	yaml := `
dart:
  api_key: test-key
store:
  driver: json
  path: ` + filepath.Join(dir, "state.json") + `
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"scan", "--format", "yaml", "--from", "20260101", "--to", "20260101"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
