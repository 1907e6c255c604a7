package definition

import (
	"testing"

	"github.com/gofhir/suitegen/internal/testutil"
	"github.com/gofhir/suitegen/pkg/loader"
)

func loadFixture(t *testing.T, files map[string]string) *loader.Package {
	t.Helper()
	path := testutil.WriteTgz(t, t.TempDir(), "guide.tgz", files)
	pkg, err := loader.NewLoader("").LoadFromTgz(path)
	if err != nil {
		t.Fatalf("LoadFromTgz failed: %v", err)
	}
	return pkg
}

func TestIndexAdd(t *testing.T) {
	idx := NewIndex()
	first := &Definition{URL: "http://x/a", Type: "Observation", Title: "first"}
	second := &Definition{URL: "http://x/a", Type: "Observation", Title: "second"}
	other := &Definition{URL: "http://x/b", Type: "Patient"}

	idx.Add(first)
	idx.Add(second)
	idx.Add(other)
	idx.Add(nil)

	if idx.Len() != 3 {
		t.Errorf("Len() = %d; want 3", idx.Len())
	}
	if got := idx.ByURL("http://x/a"); got != first {
		t.Errorf("ByURL kept %v; want the first definition", got)
	}
	if got := idx.ByType("Observation"); len(got) != 2 || got[0] != first || got[1] != second {
		t.Errorf("ByType(Observation) = %v", got)
	}
	if got := idx.Types(); len(got) != 2 || got[0] != "Observation" || got[1] != "Patient" {
		t.Errorf("Types() = %v", got)
	}
}

func TestIndexByURLExactMatch(t *testing.T) {
	idx := NewIndex()
	idx.Add(&Definition{URL: "http://x/observation-ex", Type: "Observation"})

	for _, url := range []string{"http://x/observation", "http://x/observation-ex|1.0", "observation-ex", ""} {
		if got := idx.ByURL(url); got != nil {
			t.Errorf("ByURL(%q) = %v; want nil", url, got)
		}
	}
}

func TestLoad(t *testing.T) {
	pkg := loadFixture(t, testutil.SummaryGuide("example", "1.0.0"))

	filter, err := NewFilter("")
	if err != nil {
		t.Fatalf("NewFilter failed: %v", err)
	}
	idx, err := Load(pkg, filter)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if idx.Len() != 3 {
		t.Errorf("Len() = %d; want 3", idx.Len())
	}

	bundles := idx.ByType("Bundle")
	if len(bundles) != 1 {
		t.Fatalf("ByType(Bundle) = %d; want 1", len(bundles))
	}
	if bundles[0].Title != "Example Bundle" {
		t.Errorf("Bundle title = %q", bundles[0].Title)
	}
	if len(bundles[0].Elements) != 7 {
		t.Errorf("Bundle elements = %d; want 7", len(bundles[0].Elements))
	}

	obs := idx.ByURL(testutil.ObservationURL)
	if obs == nil || obs.Type != "Observation" {
		t.Fatalf("ByURL(observation) = %v", obs)
	}

	comp := idx.ByType("Composition")[0]
	var code *Element
	for i := range comp.Elements {
		if comp.Elements[i].ID == "Composition.section:sectionMedications.code" {
			code = &comp.Elements[i]
		}
	}
	if code == nil {
		t.Fatal("section code element missing")
	}
	if len(code.FixedCodings) != 1 || code.FixedCodings[0].Code != "meds" || code.FixedCodings[0].System != "http://x" {
		t.Errorf("FixedCodings = %+v", code.FixedCodings)
	}
}

func TestLoadFilterExcludes(t *testing.T) {
	pkg := loadFixture(t, testutil.SummaryGuide("example", "1.0.0"))

	filter, err := NewFilter("type = 'Bundle'")
	if err != nil {
		t.Fatalf("NewFilter failed: %v", err)
	}
	idx, err := Load(pkg, filter)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if idx.Len() != 1 {
		t.Errorf("Len() = %d; want 1", idx.Len())
	}
	if len(idx.ByType("Composition")) != 0 {
		t.Error("Composition should have been filtered out")
	}
}

func TestLoadNilFilterAdmitsAll(t *testing.T) {
	pkg := loadFixture(t, testutil.SummaryGuide("example", "1.0.0"))

	idx, err := Load(pkg, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if idx.Len() != 3 {
		t.Errorf("Len() = %d; want 3", idx.Len())
	}
}

func TestLoadReportsUndecodableDefinitions(t *testing.T) {
	files := testutil.SummaryGuide("example", "1.0.0")
	files["StructureDefinition-broken.json"] = `{
  "resourceType": "StructureDefinition",
  "id": "broken",
  "url": "http://example.org/StructureDefinition/broken",
  "title": 42,
  "type": "Composition",
  "snapshot": {"element": [{"id": "Composition", "path": "Composition"}]}
}`
	idx, err := Load(loadFixture(t, files), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if idx.Len() != 3 {
		t.Errorf("Len() = %d; want 3", idx.Len())
	}
	skipped := idx.Skipped()
	if len(skipped) != 1 {
		t.Fatalf("Skipped() = %v; want one definition", skipped)
	}
	if skipped[0].Ref != "http://example.org/StructureDefinition/broken" || skipped[0].Err == nil {
		t.Errorf("Skipped()[0] = %+v", skipped[0])
	}
	if got := idx.ByType("Composition"); len(got) != 1 || got[0].URL != testutil.CompositionURL {
		t.Errorf("ByType(Composition) = %v; want only the fixture composition", got)
	}
}
