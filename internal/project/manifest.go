package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"bulkfix/internal/diag"
)

// ManifestName is the file that marks a project root.
const ManifestName = "bulkfix.toml"

// DefaultInclude is used when [project].include is not set.
var DefaultInclude = []string{"**/*"}

// Manifest is a loaded bulkfix.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the manifest layout.
type Config struct {
	Project ProjectConfig     `toml:"project"`
	Fix     FixConfig         `toml:"fix"`
	Rules   RulesConfig       `toml:"rules"`
	Rename  map[string]string `toml:"rename"`
}

type ProjectConfig struct {
	Name    string   `toml:"name"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

type FixConfig struct {
	Only   []string `toml:"only"`
	Prefer string   `toml:"prefer"`
}

type RulesConfig struct {
	TabWidth int `toml:"tab_width"`
	MaxLine  int `toml:"max_line"`
}

// Filter returns the category allow-list from [fix].only.
func (c Config) Filter() (diag.CodeSet, error) {
	return diag.ParseCodes(c.Fix.Only...)
}

// FindManifest walks up from startDir to locate bulkfix.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest decodes and validates the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	var cfg Config
	meta, err := toml.DecodeFile(abs, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", abs, err)
	}
	if !meta.IsDefined("project") {
		return nil, fmt.Errorf("%s: missing [project]", abs)
	}
	if !meta.IsDefined("project", "name") || strings.TrimSpace(cfg.Project.Name) == "" {
		return nil, fmt.Errorf("%s: missing [project].name", abs)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", abs, undecoded[0])
	}
	if len(cfg.Project.Include) == 0 {
		cfg.Project.Include = append([]string(nil), DefaultInclude...)
	}
	for _, pattern := range append(append([]string(nil), cfg.Project.Include...), cfg.Project.Exclude...) {
		if err := checkPattern(pattern); err != nil {
			return nil, fmt.Errorf("%s: %w", abs, err)
		}
	}
	if cfg.Rules.TabWidth < 0 || cfg.Rules.MaxLine < 0 {
		return nil, fmt.Errorf("%s: [rules] values must not be negative", abs)
	}
	if _, err := cfg.Filter(); err != nil {
		return nil, fmt.Errorf("%s: [fix].only: %w", abs, err)
	}
	return &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
}
