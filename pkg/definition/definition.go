// Package definition provides the profile model the generator works on,
// the conversion from R4 StructureDefinitions into it, and the index that
// resolves definitions by declared type and canonical URL.
package definition

// Definition is a named schema: one StructureDefinition reduced to what
// extraction needs. Elements keep snapshot order.
type Definition struct {
	URL      string
	Name     string
	Title    string
	Type     string // The declared resource type
	Elements []Element
}

// Element is one node of a definition's flattened snapshot.
type Element struct {
	ID         string
	Path       string
	BasePath   string
	Min        int
	Max        string // Integer or "*"
	Short      string
	Definition string
	Types      []TypeRef

	// FixedCodings holds the codings of the element's fixed or pattern value,
	// when that value is a Coding or a CodeableConcept.
	FixedCodings []Coding
}

// TypeRef represents an allowed type for an element.
type TypeRef struct {
	Code           string
	Profiles       []string
	TargetProfiles []string
}

// Coding is a code/system pair.
type Coding struct {
	Code   string `yaml:"code"`
	System string `yaml:"system"`
}

// TypeCode returns the code of the element's first type, or "".
func (e *Element) TypeCode() string {
	if len(e.Types) == 0 {
		return ""
	}
	return e.Types[0].Code
}

// Profile returns the first profile of the element's first type, or "".
func (e *Element) Profile() string {
	if len(e.Types) == 0 || len(e.Types[0].Profiles) == 0 {
		return ""
	}
	return e.Types[0].Profiles[0]
}

// TargetProfile returns the first target profile of the element's first
// type, or "".
func (e *Element) TargetProfile() string {
	if len(e.Types) == 0 || len(e.Types[0].TargetProfiles) == 0 {
		return ""
	}
	return e.Types[0].TargetProfiles[0]
}
