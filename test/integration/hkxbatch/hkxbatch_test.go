package hkxbatch_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inthkxbatch "github.com/slok/hkxbatch/test/integration/hkxbatch"
)

type eventLine struct {
	Kind      string `json:"kind"`
	File      string `json:"file"`
	Index     int    `json:"index"`
	Total     int    `json:"total"`
	Cause     string `json:"cause"`
	BatchID   string `json:"batch_id"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

type historyItem struct {
	BatchID   string `json:"batch_id"`
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

func parseLines(t *testing.T, out []byte) []eventLine {
	t.Helper()

	var lines []eventLine
	for _, l := range bytes.Split(bytes.TrimSpace(out), []byte("\n")) {
		var ev eventLine
		require.NoError(t, json.Unmarshal(l, &ev), "line: %s", l)
		lines = append(lines, ev)
	}
	return lines
}

func TestIntegrationTools(t *testing.T) {
	config := inthkxbatch.NewConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stdout, stderr, err := inthkxbatch.RunCmd(ctx, config, t.TempDir(), "tools", "--format", "json")
	require.NoError(t, err, "stderr: %s", stderr)

	var tools []map[string]any
	require.NoError(t, json.Unmarshal(stdout, &tools))
	assert.Len(t, tools, 5)
}

func TestIntegrationConvertAndHistory(t *testing.T) {
	config := inthkxbatch.NewConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	dataDir := inthkxbatch.NewDataDir(t)
	in := t.TempDir()
	out := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	inthkxbatch.WriteInputs(t, in, "walk.hkx", "sub/run.hkx", "sub/broken.hkx")

	stdout, stderr, err := inthkxbatch.RunCmd(ctx, config, dataDir,
		"convert", "--tool", "hkxcmd", "--to", "se", "--output", out, "--recursive",
		"--history-db", dbPath, "--format", "json", in)

	// A failed file fails the command but not the rest of the batch.
	require.Error(t, err, "stdout: %s", stdout)
	assert.Contains(t, string(stderr), "1 of 3 files failed")

	lines := parseLines(t, stdout)
	summary := lines[len(lines)-1]
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	failed := 0
	for _, l := range lines[:len(lines)-1] {
		if l.Kind == "failed" {
			failed++
			assert.Contains(t, l.Cause, "corrupted havok file")
		}
	}
	assert.Equal(t, 1, failed)

	assert.FileExists(t, filepath.Join(out, "walk.hkx"))
	assert.FileExists(t, filepath.Join(out, "sub", "run.hkx"))
	assert.NoFileExists(t, filepath.Join(out, "sub", "broken.hkx"))

	// The batch was saved.
	stdout, stderr, err = inthkxbatch.RunCmd(ctx, config, dataDir, "history", "--history-db", dbPath, "--format", "json")
	require.NoError(t, err, "stderr: %s", stderr)

	var items []historyItem
	require.NoError(t, json.Unmarshal(stdout, &items))
	require.Len(t, items, 1)
	assert.Equal(t, summary.BatchID, items[0].BatchID)
	assert.Equal(t, 3, items[0].Total)
	assert.Equal(t, 1, items[0].Failed)
}

func TestIntegrationConvertInvalidBatch(t *testing.T) {
	config := inthkxbatch.NewConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	in := t.TempDir()
	inthkxbatch.WriteInputs(t, in, "walk.hkx")

	// KF output without skeleton is rejected before running anything.
	stdout, stderr, err := inthkxbatch.RunCmd(ctx, config, inthkxbatch.NewDataDir(t),
		"convert", "--tool", "hkxcmd", "--to", "kf", "--output", filepath.Join(in, "out"), in)
	require.Error(t, err)
	assert.Contains(t, string(stderr), "skeleton file is required")
	assert.Empty(t, stdout)

	_, statErr := os.Stat(filepath.Join(in, "out"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestIntegrationDoctor(t *testing.T) {
	config := inthkxbatch.NewConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dataDir := inthkxbatch.NewDataDir(t)

	_, stderr, err := inthkxbatch.RunCmd(ctx, config, dataDir, "doctor", "--tool", "hkxcmd")
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, _, err := inthkxbatch.RunCmd(ctx, config, dataDir, "doctor", "--tool", "hct", "--format", "json")
	require.Error(t, err)
	assert.Contains(t, string(stdout), `"hct_executable"`)
}
