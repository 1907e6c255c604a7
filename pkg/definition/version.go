package definition

import "strings"

// FHIRVersion represents a FHIR specification release.
type FHIRVersion string

// Known FHIR releases.
const (
	// R4 is FHIR Release 4 (4.0.x)
	R4 FHIRVersion = "R4"
	// R4B is FHIR Release 4B (4.3.x)
	R4B FHIRVersion = "R4B"
	// R5 is FHIR Release 5 (5.0.x)
	R5 FHIRVersion = "R5"
)

// String returns the release name.
func (v FHIRVersion) String() string {
	return string(v)
}

// releasePrefixes maps version string prefixes to releases.
var releasePrefixes = []struct {
	prefix  string
	release FHIRVersion
}{
	{"4.0.", R4},
	{"4.3.", R4B},
	{"5.0.", R5},
}

// ReleaseOf returns the release of a package fhirVersion string such as
// "4.0.1", or "" when it is not recognized.
func ReleaseOf(fhirVersion string) FHIRVersion {
	for _, rp := range releasePrefixes {
		if strings.HasPrefix(fhirVersion, rp.prefix) {
			return rp.release
		}
	}
	return ""
}

// IsSupportedFHIRVersion reports whether definitions of a package declaring
// fhirVersion decode with the R4 model. An undeclared version is accepted.
// R4B StructureDefinitions share the R4 snapshot shape.
func IsSupportedFHIRVersion(fhirVersion string) bool {
	if fhirVersion == "" {
		return true
	}
	switch ReleaseOf(fhirVersion) {
	case R4, R4B:
		return true
	default:
		return false
	}
}
