package main

import (
	"bytes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestHistoryCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.hst")
	require.NoError(t, os.WriteFile(path, []byte(`# Athena++ history data
# [1]=time [2]=dt [3]=mass
0 0.1 1
1 0.1 2
0.5 0.1 1.5
2 0.1 3
`), 0o644))

	out, err := execute(t, "history", path, "time", "mass")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"time", "mass"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"0.5", "1.5"}, strings.Fields(lines[2]))

	_, err = execute(t, "history", path, "nope")
	assert.Error(t, err)
}

func TestArguments(t *testing.T) {
	t.Cleanup(func() { device = "auto" })
	_, err := execute(t, "sum", "only-a-file.athdf")
	assert.Error(t, err)
	_, err = execute(t, "--device", "tpu", "history", "x.hst")
	assert.Error(t, err)
}
