// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCheckpointMissingFile(t *testing.T) {
	cp, err := LoadCheckpoint(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cp.CompletedYears)
	assert.Empty(t, cp.Keywords)
}

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "checkpoint.yaml")

	cp := &Checkpoint{}
	cp.Complete(2015, []string{"fixed effects", "panel data"})
	cp.Complete(2016, []string{"fixed effects"})
	require.NoError(t, cp.Save(path))

	loaded, err := LoadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, []int{2015, 2016}, loaded.CompletedYears)
	assert.Equal(t, []string{"fixed effects", "panel data", "fixed effects"}, loaded.Keywords)
	assert.True(t, loaded.Done(2015))
	assert.False(t, loaded.Done(2017))
}

func TestLoadCheckpointCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - not: [valid"), 0o644))

	_, err := LoadCheckpoint(path)
	assert.Error(t, err, "corrupt state must surface, not be silently reset")
}

func TestCheckpointSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkpoint.yaml")

	cp := &Checkpoint{CompletedYears: []int{2020}}
	require.NoError(t, cp.Save(path))
	require.NoError(t, cp.Save(path)) // overwrite is atomic too

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "checkpoint.yaml", entries[0].Name())
}
