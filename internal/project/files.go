package project

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar"

	"bulkfix/internal/source"
)

// skipDirs are never descended into.
var skipDirs = map[string]bool{".git": true, ".hg": true, ".svn": true, "node_modules": true}

func checkPattern(pattern string) error {
	if _, err := doublestar.Match(pattern, "x"); err != nil {
		return fmt.Errorf("bad glob %q: %w", pattern, err)
	}
	return nil
}

// Matches reports whether rel (slash separated, relative to the root) is
// selected by the include and exclude globs.
func (m *Manifest) Matches(rel string) bool {
	included := false
	for _, pattern := range m.Config.Project.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pattern := range m.Config.Project.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	return true
}

// Files lists the project documents in lexical order. Nested projects,
// binary files and the manifest itself are left out.
func (m *Manifest) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(m.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == m.Root {
				return nil
			}
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			if _, statErr := os.Stat(filepath.Join(path, ManifestName)); statErr == nil {
				return filepath.SkipDir // вложенный проект обрабатывается отдельно
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(m.Root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == ManifestName || !m.Matches(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// Snapshot loads every project document plus the manifest (as a config
// artifact) into version 1 of a snapshot.
func (m *Manifest) Snapshot() (*source.Snapshot, error) {
	files, err := m.Files()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Root, err)
	}
	b := source.NewBuilder(m.Root)
	for _, rel := range files {
		binary, err := isBinary(filepath.Join(m.Root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		if binary {
			continue
		}
		if _, err := b.Load(rel, source.KindDocument); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", rel, err)
		}
	}
	if _, err := b.Load(ManifestName, source.KindConfig); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", ManifestName, err)
	}
	return b.Snapshot(), nil
}

// isBinary sniffs the first 8000 bytes for NUL, like git does.
func isBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	buf := make([]byte, 8000)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return false, nil
	}
	return bytes.IndexByte(buf[:n], 0) >= 0, nil
}

// Discover finds every bulkfix.toml under dir, sorted by path.
func Discover(dir string) ([]string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", dir, err)
	}
	var manifests []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != root && skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		if !d.IsDir() && d.Name() == ManifestName {
			manifests = append(manifests, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(manifests)
	return manifests, nil
}
