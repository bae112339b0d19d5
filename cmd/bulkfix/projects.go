package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"bulkfix/internal/builtin"
	"bulkfix/internal/dcache"
	"bulkfix/internal/diag"
	"bulkfix/internal/project"
	"bulkfix/internal/provider"
	"bulkfix/internal/source"
)

// loadedProject is one manifest with everything needed to run it.
type loadedProject struct {
	manifest *project.Manifest
	snapshot *source.Snapshot
	registry *provider.Registry
	filter   diag.CodeSet
	prefer   string
}

func (p *loadedProject) name() string {
	return p.manifest.Config.Project.Name
}

// findManifests returns the manifest governing path, or every manifest
// below it when recursive is set.
func findManifests(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	dir := path
	if !info.IsDir() {
		dir = filepath.Dir(path)
	}
	if recursive {
		found, err := project.Discover(dir)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no %s found under %s", project.ManifestName, dir)
		}
		return found, nil
	}
	manifestPath, ok, err := project.FindManifest(dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no %s found in %s or any parent directory", project.ManifestName, dir)
	}
	return []string{manifestPath}, nil
}

// loadProject reads the manifest and its files and registers providers.
// ids and prefer override [fix].only and [fix].prefer when non-empty. With a
// category filter the registry is narrowed to providers declaring it.
func loadProject(manifestPath string, ids []string, prefer string, warns *warnings) (*loadedProject, error) {
	m, err := project.LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	snap, err := m.Snapshot()
	if err != nil {
		return nil, err
	}
	reg := provider.NewRegistry()
	err = builtin.Register(reg, builtin.Config{
		TabWidth: m.Config.Rules.TabWidth,
		MaxLine:  m.Config.Rules.MaxLine,
		Rename:   m.Config.Rename,
	})
	if err != nil {
		return nil, err
	}

	filter, err := m.Config.Filter()
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		if filter, err = diag.ParseCodes(ids...); err != nil {
			return nil, fmt.Errorf("--id: %w", err)
		}
	}
	if len(filter) > 0 {
		reg = reg.Filter(filter, warns.forProject(m.Config.Project.Name))
	}
	if prefer == "" {
		prefer = m.Config.Fix.Prefer
	}
	return &loadedProject{manifest: m, snapshot: snap, registry: reg, filter: filter, prefer: prefer}, nil
}

// openCache opens the diagnostic cache when enabled. A cache that cannot
// be opened is reported and skipped.
func openCache(enabled bool, warn func(error)) *dcache.Cache {
	if !enabled {
		return nil
	}
	cache, err := dcache.Open("bulkfix")
	if err != nil {
		warn(fmt.Errorf("diagnostic cache disabled: %w", err))
		return nil
	}
	return cache
}

// warnings buffers provider warnings from concurrent runs so they do not
// interleave with the progress view.
type warnings struct {
	mu    sync.Mutex
	items []string
}

func (w *warnings) add(project string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if project == "" {
		w.items = append(w.items, err.Error())
		return
	}
	w.items = append(w.items, project+": "+err.Error())
}

func (w *warnings) forProject(project string) provider.WarnFunc {
	return func(err error) { w.add(project, err) }
}

func (w *warnings) flush(out io.Writer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, item := range w.items {
		fmt.Fprintf(out, "warning: %s\n", item)
	}
	w.items = nil
}
