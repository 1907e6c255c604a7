package testutil

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// Canonical URLs used by the fixture guide.
const (
	BundleURL      = "http://example.org/StructureDefinition/bundle-ex"
	CompositionURL = "http://example.org/StructureDefinition/composition-ex"
	ObservationURL = "http://example.org/StructureDefinition/observation-ex"
)

// BundleSD is a Bundle profile with a Composition slice (1..1) followed by an
// Observation slice (0..*).
const BundleSD = `{
  "resourceType": "StructureDefinition",
  "id": "bundle-ex",
  "url": "` + BundleURL + `",
  "name": "BundleEx",
  "title": "Example Bundle",
  "status": "active",
  "kind": "resource",
  "abstract": false,
  "type": "Bundle",
  "baseDefinition": "http://hl7.org/fhir/StructureDefinition/Bundle",
  "derivation": "constraint",
  "snapshot": {
    "element": [
      {"id": "Bundle", "path": "Bundle", "min": 0, "max": "*", "base": {"path": "Bundle", "min": 0, "max": "*"}},
      {"id": "Bundle.entry", "path": "Bundle.entry", "min": 2, "max": "*", "base": {"path": "Bundle.entry", "min": 0, "max": "*"}},
      {"id": "Bundle.entry.resource", "path": "Bundle.entry.resource", "min": 1, "max": "1", "base": {"path": "Bundle.entry.resource", "min": 0, "max": "1"}, "type": [{"code": "Resource"}]},
      {"id": "Bundle.entry:composition", "path": "Bundle.entry", "sliceName": "composition", "min": 1, "max": "1", "base": {"path": "Bundle.entry", "min": 0, "max": "*"}},
      {"id": "Bundle.entry:composition.resource", "path": "Bundle.entry.resource", "min": 1, "max": "1", "base": {"path": "Bundle.entry.resource", "min": 0, "max": "1"}, "type": [{"code": "Composition", "profile": ["` + CompositionURL + `"]}]},
      {"id": "Bundle.entry:observation", "path": "Bundle.entry", "sliceName": "observation", "min": 0, "max": "*", "base": {"path": "Bundle.entry", "min": 0, "max": "*"}},
      {"id": "Bundle.entry:observation.resource", "path": "Bundle.entry.resource", "min": 1, "max": "1", "base": {"path": "Bundle.entry.resource", "min": 0, "max": "1"}, "type": [{"code": "Observation", "profile": ["` + ObservationURL + `"]}]}
    ]
  }
}`

// CompositionSD is a Composition profile with one coded medications section
// whose single entry slice targets ObservationURL.
const CompositionSD = `{
  "resourceType": "StructureDefinition",
  "id": "composition-ex",
  "url": "` + CompositionURL + `",
  "name": "CompositionEx",
  "title": "Example Composition",
  "status": "active",
  "kind": "resource",
  "abstract": false,
  "type": "Composition",
  "baseDefinition": "http://hl7.org/fhir/StructureDefinition/Composition",
  "derivation": "constraint",
  "snapshot": {
    "element": [
      {"id": "Composition", "path": "Composition", "min": 0, "max": "*", "base": {"path": "Composition", "min": 0, "max": "*"}},
      {"id": "Composition.section", "path": "Composition.section", "min": 1, "max": "*", "base": {"path": "Composition.section", "min": 0, "max": "*"}},
      {"id": "Composition.section:sectionMedications", "path": "Composition.section", "sliceName": "sectionMedications", "short": "Medication Summary section", "definition": "The medication summary section contains a description of the patient's medications.", "min": 1, "max": "1", "base": {"path": "Composition.section", "min": 0, "max": "*"}},
      {"id": "Composition.section:sectionMedications.code", "path": "Composition.section.code", "min": 1, "max": "1", "base": {"path": "Composition.section.code", "min": 0, "max": "1"}, "type": [{"code": "CodeableConcept"}], "patternCodeableConcept": {"coding": [{"system": "http://x", "code": "meds"}]}},
      {"id": "Composition.section:sectionMedications.entry", "path": "Composition.section.entry", "min": 1, "max": "*", "base": {"path": "Composition.section.entry", "min": 0, "max": "*"}, "type": [{"code": "Reference"}]},
      {"id": "Composition.section:sectionMedications.entry:observation", "path": "Composition.section.entry", "sliceName": "observation", "min": 0, "max": "*", "base": {"path": "Composition.section.entry", "min": 0, "max": "*"}, "type": [{"code": "Reference", "targetProfile": ["` + ObservationURL + `"]}]}
    ]
  }
}`

// ObservationSD is the profile both the Bundle and the section reference.
const ObservationSD = `{
  "resourceType": "StructureDefinition",
  "id": "observation-ex",
  "url": "` + ObservationURL + `",
  "name": "ObservationEx",
  "title": "Example Observation",
  "status": "active",
  "kind": "resource",
  "abstract": false,
  "type": "Observation",
  "baseDefinition": "http://hl7.org/fhir/StructureDefinition/Observation",
  "derivation": "constraint",
  "snapshot": {
    "element": [
      {"id": "Observation", "path": "Observation", "min": 0, "max": "*", "base": {"path": "Observation", "min": 0, "max": "*"}}
    ]
  }
}`

// PackageJSON returns a package.json manifest for the fixture guide.
func PackageJSON(name, version string) string {
	return `{"name": "` + name + `", "version": "` + version + `", "fhirVersions": ["4.0.1"]}`
}

// SummaryGuide returns the files of a complete fixture guide keyed by their
// name inside the archive's package/ folder.
func SummaryGuide(name, version string) map[string]string {
	return map[string]string{
		"package.json":                            PackageJSON(name, version),
		"StructureDefinition-bundle-ex.json":      BundleSD,
		"StructureDefinition-composition-ex.json": CompositionSD,
		"StructureDefinition-observation-ex.json": ObservationSD,
		"ImplementationGuide-example.json":        `{"resourceType": "ImplementationGuide", "id": "example", "url": "http://example.org/ImplementationGuide/example"}`,
		"other/notes.txt":                         "not a resource",
	}
}

// Tgz packs files into a gzipped tar under package/, in file-name order.
func Tgz(t testing.TB, files map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, name := range names {
		body := []byte(files[name])
		hdr := &tar.Header{
			Name:     "package/" + name,
			Mode:     0o644,
			Size:     int64(len(body)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write tar header %s: %v", name, err)
		}
		if _, err := tw.Write(body); err != nil {
			t.Fatalf("write tar body %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return buf.Bytes()
}

// WriteTgz writes the archive for files to dir/name and returns its path.
func WriteTgz(t testing.TB, dir, name string, files map[string]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, Tgz(t, files), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteDir writes files unpacked under dir/package and returns dir.
func WriteDir(t testing.TB, dir string, files map[string]string) string {
	t.Helper()

	for name, body := range files {
		path := filepath.Join(dir, "package", name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return dir
}

// Without returns a copy of files with the named entries removed.
func Without(files map[string]string, names ...string) map[string]string {
	out := make(map[string]string, len(files))
	for k, v := range files {
		out[k] = v
	}
	for _, n := range names {
		delete(out, n)
	}
	return out
}
