// Package metadata extracts the entity model of a summary document guide
// from its container (Bundle) and composition definitions.
//
// The model is an ordered list of entries, one per member slot of the
// container. The entry whose resource type is the composition type carries
// the composition's sections; every other entry carries none. The two cases
// are distinct types so that callers branch on them explicitly:
//
//	for _, e := range entries {
//	    switch e := e.(type) {
//	    case *metadata.CompositionEntry:
//	        // e.Sections
//	    case *metadata.PlainEntry:
//	        // e.ResourceProfile
//	    }
//	}
package metadata

import (
	"github.com/gofhir/suitegen/pkg/definition"
)

// EntryReference is one resource a section may reference.
type EntryReference struct {
	Profile      string `yaml:"profile"`
	ResourceType string `yaml:"resource_type"`
}

// SectionSpec is one coded section of the composition.
type SectionSpec struct {
	Title      string            `yaml:"title"`
	Definition string            `yaml:"definition"`
	Min        int               `yaml:"min"`
	Max        string            `yaml:"max"`
	Code       definition.Coding `yaml:"code"`
	Entries    []EntryReference  `yaml:"entries"`
}

// Optional reports whether the section may be omitted.
func (s *SectionSpec) Optional() bool {
	return s.Min == 0
}

// Entry is one member slot of the container, either a *PlainEntry or a
// *CompositionEntry.
type Entry interface {
	Common() *EntryBase
	entry()
}

// EntryBase holds the fields every entry has.
type EntryBase struct {
	ResourceType    string
	ResourceProfile string // Canonical URL, empty when the slot names no profile
	Title           string
	Min             int
	Max             string
}

// Common returns the shared entry fields.
func (e *EntryBase) Common() *EntryBase { return e }

func (e *EntryBase) entry() {}

// Optional reports whether the entry may be omitted.
func (e *EntryBase) Optional() bool {
	return e.Min == 0
}

// PlainEntry is an entry of any resource type except the composition type.
type PlainEntry struct {
	EntryBase
}

// CompositionEntry is the entry holding the composition and its sections.
type CompositionEntry struct {
	EntryBase
	Sections []SectionSpec
}

// FindComposition returns the first composition entry in entries.
func FindComposition(entries []Entry) (*CompositionEntry, bool) {
	for _, e := range entries {
		if c, ok := e.(*CompositionEntry); ok {
			return c, true
		}
	}
	return nil, false
}

// PlainEntries returns the plain entries of entries, in order.
func PlainEntries(entries []Entry) []*PlainEntry {
	var out []*PlainEntry
	for _, e := range entries {
		if p, ok := e.(*PlainEntry); ok {
			out = append(out, p)
		}
	}
	return out
}
