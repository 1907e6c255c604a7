package definition

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gofhir/fhir/r4"

	"github.com/gofhir/suitegen/pkg/loader"
)

// Index holds the definitions of one input package, indexed by declared
// type and by canonical URL. It is built once and only read afterwards.
type Index struct {
	byURL  map[string]*Definition
	byType map[string][]*Definition
	count  int

	skipped []Skipped
}

// Skipped is a StructureDefinition Load could not decode.
type Skipped struct {
	Ref string // Canonical URL, or the resource id when the URL is unknown
	Err error
}

// NewIndex creates a new empty Index.
func NewIndex() *Index {
	return &Index{
		byURL:  make(map[string]*Definition),
		byType: make(map[string][]*Definition),
	}
}

// Load builds an Index from the StructureDefinitions of pkg that filter
// admits. Definitions that do not decode as R4 are left out and reported
// by Skipped.
func Load(pkg *loader.Package, filter *Filter) (*Index, error) {
	idx := NewIndex()
	converter := NewR4Converter()

	for _, res := range pkg.ResourcesOfType("StructureDefinition") {
		ok, err := filter.Admit(res.Raw)
		if err != nil {
			return nil, fmt.Errorf("filtering %s: %w", res.URL, err)
		}
		if !ok {
			continue
		}

		var sd r4.StructureDefinition
		if err := json.Unmarshal(res.Raw, &sd); err != nil {
			ref := res.URL
			if ref == "" {
				ref = res.ID
			}
			idx.skipped = append(idx.skipped, Skipped{Ref: ref, Err: err})
			continue
		}
		idx.Add(converter.ConvertStructureDefinition(&sd))
	}

	return idx, nil
}

// Add indexes def. For a URL seen before, the first definition wins.
func (idx *Index) Add(def *Definition) {
	if def == nil {
		return
	}
	idx.count++
	if def.URL != "" {
		if _, exists := idx.byURL[def.URL]; !exists {
			idx.byURL[def.URL] = def
		}
	}
	if def.Type != "" {
		idx.byType[def.Type] = append(idx.byType[def.Type], def)
	}
}

// ByType returns the definitions declaring typeName, in load order.
func (idx *Index) ByType(typeName string) []*Definition {
	return idx.byType[typeName]
}

// ByURL returns the definition whose canonical URL equals url exactly,
// or nil.
func (idx *Index) ByURL(url string) *Definition {
	return idx.byURL[url]
}

// Skipped returns the definitions Load left out, in package order.
func (idx *Index) Skipped() []Skipped {
	return idx.skipped
}

// Len returns the number of indexed definitions.
func (idx *Index) Len() int {
	return idx.count
}

// Types returns the indexed type names, sorted.
func (idx *Index) Types() []string {
	types := make([]string, 0, len(idx.byType))
	for t := range idx.byType {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
