package usi

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	yaml "gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetFiles embed.FS

// Preset bundles search depth and engine options under a name a request can
// ask for.
type Preset struct {
	Name    string `yaml:"-"`
	Depth   int    `yaml:"depth"`
	Threads int    `yaml:"threads"`
	HashMB  int    `yaml:"hash_mb"`
}

func (p Preset) Options(variant string) Options {
	return Options{Variant: variant, Threads: p.Threads, HashMB: p.HashMB}
}

var (
	presetOnce sync.Once
	presets    map[string]Preset
	presetErr  error
)

func loadPresets() {
	raw, err := presetFiles.ReadFile("presets.yaml")
	if err != nil {
		presetErr = fmt.Errorf("read embedded presets: %w", err)
		return
	}
	parsed := map[string]Preset{}
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		presetErr = fmt.Errorf("parse presets: %w", err)
		return
	}
	for name, p := range parsed {
		p.Name = name
		parsed[name] = p
	}
	presets = parsed
}

// GetPreset looks up a named preset.
func GetPreset(name string) (Preset, error) {
	presetOnce.Do(loadPresets)
	if presetErr != nil {
		return Preset{}, presetErr
	}
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q (available: %v)", name, PresetNames())
	}
	return p, nil
}

// PresetNames returns the available preset names, sorted.
func PresetNames() []string {
	presetOnce.Do(loadPresets)
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
