// Package essays manages essay drafts as structured file trees: an
// outline, a metadata file, and named sections under sections/.
package essays

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// Manager reads and writes essay file trees under a root directory.
type Manager struct {
	root string
}

// NewManager creates a manager rooted at dir.
func NewManager(dir string) *Manager {
	return &Manager{root: dir}
}

// Dir returns the directory path for an essay.
func (m *Manager) Dir(essaySlug string) string {
	return filepath.Join(m.root, essaySlug)
}

// EnsureDir creates the essay directory (and its sections/ subdirectory)
// if absent and returns its path.
func (m *Manager) EnsureDir(essaySlug string) (string, error) {
	dir := m.Dir(essaySlug)
	if err := os.MkdirAll(filepath.Join(dir, "sections"), 0o755); err != nil {
		return "", fmt.Errorf("creating essay directory: %w", err)
	}
	return dir, nil
}

// SaveOutline writes the essay outline and returns the file path.
func (m *Manager) SaveOutline(essaySlug, content string) (string, error) {
	dir, err := m.EnsureDir(essaySlug)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "outline.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing outline: %w", err)
	}
	return path, nil
}

// Outline reads the essay outline. A missing outline is normal:
// ok=false without an error.
func (m *Manager) Outline(essaySlug string) (content string, ok bool, err error) {
	return m.readFile(filepath.Join(m.Dir(essaySlug), "outline.md"))
}

// SaveSection writes a named section, mapping the name through Slugify
// for the filename, and returns the file path.
func (m *Manager) SaveSection(essaySlug, sectionName, content string) (string, error) {
	dir, err := m.EnsureDir(essaySlug)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "sections", Slugify(sectionName)+".md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing section: %w", err)
	}
	return path, nil
}

// Section reads a named section. ok=false when the section does not exist.
func (m *Manager) Section(essaySlug, sectionName string) (content string, ok bool, err error) {
	return m.readFile(filepath.Join(m.Dir(essaySlug), "sections", Slugify(sectionName)+".md"))
}

// ListSections returns the sorted section slugs for an essay. An essay
// without sections yields an empty list.
func (m *Manager) ListSections(essaySlug string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(m.Dir(essaySlug), "sections"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}

	var sections []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		sections = append(sections, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(sections)
	return sections, nil
}

// CreateMetadata writes the essay metadata file from the standard
// template and returns its path.
func (m *Manager) CreateMetadata(essaySlug, title, createdAt string) (string, error) {
	dir, err := m.EnsureDir(essaySlug)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "metadata.md")

	content := fmt.Sprintf(`# %s

**Created**: %s
**Status**: In Progress

## Overview

[Essay description and notes]

## Research Notes

[Key findings and insights]
`, title, createdAt)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}
	return path, nil
}

func (m *Manager) readFile(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// Slugify converts text to a filename-safe slug: lowercase, spaces to
// hyphens, non-alphanumeric characters dropped, repeated hyphens collapsed.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = strings.ReplaceAll(s, " ", "-")

	var b strings.Builder
	for _, r := range s {
		if r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	var parts []string
	for _, p := range strings.Split(b.String(), "-") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}
