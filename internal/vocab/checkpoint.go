// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vocab

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Checkpoint is the persisted harvest state: which year partitions have
// fully completed and every keyword occurrence accumulated so far. It is
// read whole at startup and written whole after each completed year; a
// year interrupted mid-flight is simply redone on the next run.
type Checkpoint struct {
	// CompletedYears lists the fully processed partitions.
	CompletedYears []int `yaml:"completed_years"`

	// Keywords is the accumulated occurrence multiset, in insertion order.
	Keywords []string `yaml:"keywords"`
}

// Done reports whether year has already been completed.
func (c *Checkpoint) Done(year int) bool {
	for _, y := range c.CompletedYears {
		if y == year {
			return true
		}
	}
	return false
}

// Complete records year as finished and appends its keyword occurrences.
func (c *Checkpoint) Complete(year int, keywords []string) {
	c.Keywords = append(c.Keywords, keywords...)
	c.CompletedYears = append(c.CompletedYears, year)
}

// LoadCheckpoint reads the checkpoint at path. A missing file yields an
// empty checkpoint; a corrupt file is an error so a previous valid state
// is never silently discarded.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Checkpoint{}, nil
		}
		return nil, fmt.Errorf("reading checkpoint %s: %w", path, err)
	}

	var cp Checkpoint
	if err := yaml.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parsing checkpoint %s: %w", path, err)
	}
	return &cp, nil
}

// Save writes the checkpoint atomically: marshal to a temp file in the
// destination directory, then rename over path. A failed write never
// clobbers the previous state.
func (c *Checkpoint) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating checkpoint directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling checkpoint: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing checkpoint: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming checkpoint: %w", err)
	}
	return nil
}
