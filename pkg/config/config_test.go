package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofhir/suitegen/pkg/definition"
	"github.com/gofhir/suitegen/pkg/metadata"
)

const sampleYAML = `output_path: out
igs_path: igs
version: v1.1.0
test_kit_module_name: IPSTestKit
test_module_name: IPS
test_id_prefix: ips
test_suite_class_name: IPS
suite_id: ips_v110
suite_title: IPS v1.1.0
tx_server_url: https://tx.example.org/r4
specific_profiles:
  bundle: http://hl7.org/fhir/uv/ips/StructureDefinition/Bundle-uv-ips
  composition: http://hl7.org/fhir/uv/ips/StructureDefinition/Composition-uv-ips
static_tests:
  - id: ips_bundle_validation_test
    class_name: IPSBundleValidationTest
    title: Validate the Bundle
    profile: bundle
  - id: ips_composition_validation_test
    class_name: IPSCompositionValidationTest
    title: Validate the Composition
    template: static_validation
    profile: composition
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suitegen.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(NewViper(), writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.OutputPath != "out" || cfg.IGsPath != "igs" || cfg.TestIDPrefix != "ips" {
		t.Errorf("paths = (%q, %q, %q)", cfg.OutputPath, cfg.IGsPath, cfg.TestIDPrefix)
	}
	if cfg.TxServerURL != "https://tx.example.org/r4" {
		t.Errorf("TxServerURL = %q", cfg.TxServerURL)
	}
	if got := cfg.ProfileURL("Bundle"); got != "http://hl7.org/fhir/uv/ips/StructureDefinition/Bundle-uv-ips" {
		t.Errorf("ProfileURL(Bundle) = %q", got)
	}
	if len(cfg.StaticTests) != 2 {
		t.Fatalf("StaticTests = %d; want 2", len(cfg.StaticTests))
	}
	if cfg.StaticTests[0].Template != DefaultStaticTemplate {
		t.Errorf("default template = %q; want %q", cfg.StaticTests[0].Template, DefaultStaticTemplate)
	}
	if cfg.StaticTests[1].ClassName != "IPSCompositionValidationTest" {
		t.Errorf("StaticTests[1].ClassName = %q", cfg.StaticTests[1].ClassName)
	}

	// Unset keys keep their defaults.
	if cfg.DefinitionFilter != DefaultDefinitionFilter || cfg.ContainerType != "Bundle" || cfg.CompositionType != "Composition" {
		t.Errorf("defaults = (%q, %q, %q)", cfg.DefinitionFilter, cfg.ContainerType, cfg.CompositionType)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SUITEGEN_OUTPUT_PATH", "/tmp/elsewhere")
	t.Setenv("SUITEGEN_TEST_ID_PREFIX", "eps")

	cfg, err := Load(NewViper(), writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OutputPath != "/tmp/elsewhere" {
		t.Errorf("OutputPath = %q; want env value", cfg.OutputPath)
	}
	if cfg.TestIDPrefix != "eps" {
		t.Errorf("TestIDPrefix = %q; want env value", cfg.TestIDPrefix)
	}
}

func TestLoadOverride(t *testing.T) {
	v := NewViper()
	v.Set("version", "2.0.0")

	cfg, err := Load(v, writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Version != "2.0.0" {
		t.Errorf("Version = %q; want the explicit override", cfg.Version)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Load of a missing file succeeded; want error")
	}
}

func TestLoadNoFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(NewViper(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := DefaultConfig()
	if cfg.OutputPath != want.OutputPath || cfg.DefinitionFilter != want.DefinitionFilter {
		t.Errorf("cfg = %+v; want defaults", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr []string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name: "missing required",
			mutate: func(c *Config) {
				c.OutputPath = ""
				c.IGsPath = ""
				c.TestIDPrefix = ""
			},
			wantErr: []string{"output_path", "igs_path", "test_id_prefix"},
		},
		{
			name: "unknown profile key",
			mutate: func(c *Config) {
				c.StaticTests = append(c.StaticTests, StaticTest{ID: "x", ClassName: "X", Profile: "patient"})
			},
			wantErr: []string{`profile "patient"`},
		},
		{
			name: "static test without id",
			mutate: func(c *Config) {
				c.StaticTests = []StaticTest{{ClassName: "X"}}
			},
			wantErr: []string{"static_tests[0]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				OutputPath:       "out",
				IGsPath:          "igs",
				TestIDPrefix:     "ips",
				SpecificProfiles: map[string]string{"bundle": "http://x/bundle"},
				StaticTests:      []StaticTest{{ID: "b", ClassName: "B", Profile: "bundle"}},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("Validate() = %v; want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil; want error")
			}
			for _, w := range tt.wantErr {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("Validate() = %q; want mention of %q", err.Error(), w)
				}
			}
		})
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		raw  string
		want Version
	}{
		{"v1.1.0", Version{Label: "v1.1.0", Suffix: "V110"}},
		{"1.1.0", Version{Label: "v1.1.0", Suffix: "V110"}},
		{"2.0", Version{Label: "v2.0.0", Suffix: "V200"}},
		{"v2.0.0-ballot", Version{Label: "v2.0.0-ballot", Suffix: "V200BALLOT"}},
		{"current", Version{Label: "current", Suffix: "CURRENT"}},
		{"", Version{}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ParseVersion(tt.raw); got != tt.want {
				t.Errorf("ParseVersion(%q) = %+v; want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestResolveVersion(t *testing.T) {
	cfg := &Config{TestModuleName: "IPS"}
	v := cfg.ResolveVersion("1.1.0")
	if v.Label != "v1.1.0" {
		t.Errorf("package version label = %q", v.Label)
	}
	if got := cfg.ModuleName(v); got != "IPSV110" {
		t.Errorf("ModuleName = %q; want IPSV110", got)
	}

	cfg.Version = "v2.0.0"
	if got := cfg.ResolveVersion("1.1.0").Label; got != "v2.0.0" {
		t.Errorf("configured version label = %q; want v2.0.0", got)
	}
}

func TestValidateUnwraps(t *testing.T) {
	err := (&Config{}).Validate()
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 3 {
		t.Errorf("Validate() = %v; want three joined errors", err)
	}
}

func TestDefaultsFollowExtraction(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ContainerType != metadata.DefaultContainerType || cfg.CompositionType != metadata.DefaultCompositionType {
		t.Errorf("types = %q, %q; want %q, %q", cfg.ContainerType, cfg.CompositionType,
			metadata.DefaultContainerType, metadata.DefaultCompositionType)
	}
	if cfg.DefinitionFilter != definition.DefaultFilterExpression {
		t.Errorf("DefinitionFilter = %q; want %q", cfg.DefinitionFilter, definition.DefaultFilterExpression)
	}
}
