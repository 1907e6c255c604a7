package metadata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// snapshotEntry is the serialized form of an Entry. Sections is a pointer so
// that a composition entry without sections still encodes "sections: []"
// while plain entries omit the key.
type snapshotEntry struct {
	ResourceType    string         `yaml:"resource_type"`
	ResourceProfile string         `yaml:"resource_profile,omitempty"`
	Title           string         `yaml:"title"`
	Min             int            `yaml:"min"`
	Max             string         `yaml:"max"`
	Sections        *[]SectionSpec `yaml:"sections,omitempty"`
}

// MarshalSnapshot encodes entries as YAML.
func MarshalSnapshot(entries []Entry) ([]byte, error) {
	out := make([]snapshotEntry, 0, len(entries))
	for _, e := range entries {
		base := e.Common()
		se := snapshotEntry{
			ResourceType:    base.ResourceType,
			ResourceProfile: base.ResourceProfile,
			Title:           base.Title,
			Min:             base.Min,
			Max:             base.Max,
		}
		if c, ok := e.(*CompositionEntry); ok {
			sections := c.Sections
			if sections == nil {
				sections = []SectionSpec{}
			}
			se.Sections = &sections
		}
		out = append(out, se)
	}

	data, err := yaml.MarshalWithOptions(out, yaml.IndentSequence(true))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata snapshot: %w", err)
	}
	return data, nil
}

// WriteSnapshot writes entries to path, creating its directory. The file is
// for inspection only; nothing reads it back.
func WriteSnapshot(path string, entries []Entry) error {
	data, err := MarshalSnapshot(entries)
	if err != nil {
		return err
	}
	//nolint:gosec // G301: generated output is meant to be shared
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	//nolint:gosec // G306: generated output is meant to be shared
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata snapshot: %w", err)
	}
	return nil
}
