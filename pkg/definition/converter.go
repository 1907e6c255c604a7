package definition

import (
	"github.com/gofhir/fhir/r4"
)

// R4Converter converts R4 FHIR models to Definitions.
type R4Converter struct{}

// NewR4Converter creates a new R4 converter.
func NewR4Converter() *R4Converter {
	return &R4Converter{}
}

// ConvertStructureDefinition converts an r4.StructureDefinition to a Definition.
// Only snapshot elements are kept; a definition without a snapshot converts
// to one with no elements.
func (c *R4Converter) ConvertStructureDefinition(sd *r4.StructureDefinition) *Definition {
	if sd == nil {
		return nil
	}

	result := &Definition{
		URL:   derefString(sd.Url),
		Name:  derefString(sd.Name),
		Title: derefString(sd.Title),
		Type:  derefString(sd.Type),
	}

	if sd.Snapshot != nil {
		result.Elements = c.convertElementDefinitions(sd.Snapshot.Element)
	}

	return result
}

func (c *R4Converter) convertElementDefinitions(elements []r4.ElementDefinition) []Element {
	if len(elements) == 0 {
		return nil
	}

	result := make([]Element, 0, len(elements))
	for i := range elements {
		result = append(result, c.convertElementDefinition(&elements[i]))
	}
	return result
}

func (c *R4Converter) convertElementDefinition(ed *r4.ElementDefinition) Element {
	return Element{
		ID:           derefString(ed.Id),
		Path:         derefString(ed.Path),
		BasePath:     c.convertBasePath(ed.Base),
		Min:          c.convertMin(ed.Min),
		Max:          derefString(ed.Max),
		Short:        derefString(ed.Short),
		Definition:   derefString(ed.Definition),
		Types:        c.convertTypes(ed.Type),
		FixedCodings: c.extractCodings(ed),
	}
}

func (c *R4Converter) convertTypes(types []r4.ElementDefinitionType) []TypeRef {
	if len(types) == 0 {
		return nil
	}

	result := make([]TypeRef, 0, len(types))
	for i := range types {
		t := &types[i]
		result = append(result, TypeRef{
			Code:           derefString(t.Code),
			Profiles:       t.Profile,
			TargetProfiles: t.TargetProfile,
		})
	}
	return result
}

func (c *R4Converter) convertBasePath(base *r4.ElementDefinitionBase) string {
	if base == nil {
		return ""
	}
	return derefString(base.Path)
}

func (c *R4Converter) convertMin(minVal *uint32) int {
	if minVal == nil {
		return 0
	}
	return int(*minVal)
}

// extractCodings returns the codings carried by pattern[x] or fixed[x].
// Pattern wins over fixed and CodeableConcept wins over Coding.
func (c *R4Converter) extractCodings(ed *r4.ElementDefinition) []Coding {
	if ed.PatternCodeableConcept != nil {
		return c.convertCodings(ed.PatternCodeableConcept.Coding)
	}
	if ed.FixedCodeableConcept != nil {
		return c.convertCodings(ed.FixedCodeableConcept.Coding)
	}
	if ed.PatternCoding != nil {
		return []Coding{c.convertCoding(ed.PatternCoding)}
	}
	if ed.FixedCoding != nil {
		return []Coding{c.convertCoding(ed.FixedCoding)}
	}
	return nil
}

func (c *R4Converter) convertCodings(codings []r4.Coding) []Coding {
	if len(codings) == 0 {
		return nil
	}
	result := make([]Coding, 0, len(codings))
	for i := range codings {
		result = append(result, c.convertCoding(&codings[i]))
	}
	return result
}

func (c *R4Converter) convertCoding(coding *r4.Coding) Coding {
	return Coding{
		Code:   derefString(coding.Code),
		System: derefString(coding.System),
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
