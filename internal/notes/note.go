// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// frontmatter is the YAML metadata header of a generated note.
type frontmatter struct {
	Title  string   `yaml:"title"`
	Author string   `yaml:"author"`
	Year   string   `yaml:"year"`
	Date   string   `yaml:"date"`
	Tags   []string `yaml:"tags"`
	Source string   `yaml:"source"`
}

// renderNote builds the full note file: YAML frontmatter followed by
// the summary body.
func renderNote(fm frontmatter, body string) ([]byte, error) {
	meta, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(meta)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// writeNote writes the note into the vault directory.
func writeNote(vaultDir, name string, content []byte) error {
	if err := os.MkdirAll(vaultDir, 0o755); err != nil {
		return fmt.Errorf("creating vault directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(vaultDir, name), content, 0o644); err != nil {
		return fmt.Errorf("writing note %s: %w", name, err)
	}
	return nil
}
