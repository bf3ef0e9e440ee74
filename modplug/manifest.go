package modplug

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ParseManifest decodes and validates a single manifest payload.
func ParseManifest(data []byte) (Definition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Definition{}, fmt.Errorf("modplug: manifest payload is empty")
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("modplug: decode manifest: %w", err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def.Normalized(), nil
}

// LoadManifestFile reads one manifest from fsys.
func LoadManifestFile(fsys afero.Fs, path string) (Definition, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return Definition{}, fmt.Errorf("modplug: read %s: %w", path, err)
	}
	def, err := ParseManifest(data)
	if err != nil {
		return Definition{}, fmt.Errorf("modplug: %s: %w", path, err)
	}
	return def, nil
}

// LoadDir scans a directory for view modules and returns their definitions
// sorted by id. Two spellings are accepted: a *.yaml manifest pointing at a
// source file, and a bare *.go file, which declares a module whose id is the
// file name and whose symbol is DefaultSymbol. A Go file already claimed by
// a manifest is not declared twice. A missing directory means no modules.
func LoadDir(fsys afero.Fs, dir string) ([]Definition, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := afero.ReadDir(fsys, trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("modplug: read %s: %w", trimmed, err)
	}

	var defs []Definition
	claimed := map[string]string{}
	seen := map[string]bool{}
	for _, entry := range entries {
		if entry.IsDir() || !isManifest(entry.Name()) {
			continue
		}
		path := filepath.Join(trimmed, entry.Name())
		def, err := LoadManifestFile(fsys, path)
		if err != nil {
			return nil, err
		}
		if seen[def.ID] {
			return nil, fmt.Errorf("modplug: duplicate module id %s in %s", def.ID, path)
		}
		seen[def.ID] = true
		claimed[def.Source] = def.ID
		defs = append(defs, def)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		if _, ok := claimed[entry.Name()]; ok {
			continue
		}
		def := Definition{
			ID:     strings.TrimSuffix(entry.Name(), ".go"),
			Source: entry.Name(),
			Symbol: DefaultSymbol,
		}
		if seen[def.ID] {
			return nil, fmt.Errorf("modplug: duplicate module id %s from %s", def.ID, entry.Name())
		}
		seen[def.ID] = true
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		return nil, nil
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs, nil
}

func isManifest(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
