package render

import (
	"errors"
	"strings"
	"testing"
)

func TestNewTemplates(t *testing.T) {
	tmpl, err := NewTemplates()
	if err != nil {
		t.Fatalf("NewTemplates failed: %v", err)
	}

	want := []string{Entry, Group, Section, StaticValidation, Suite}
	got := tmpl.Names()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Names() = %v; want %v", got, want)
	}
	for _, name := range want {
		if !tmpl.Has(name) {
			t.Errorf("Has(%q) = false", name)
		}
	}
	if tmpl.Has("") || tmpl.Has("missing") {
		t.Error("Has reports templates that were never loaded")
	}
}

func TestRenderUnknown(t *testing.T) {
	_, err := MustTemplates().Render("missing", nil)
	if !errors.Is(err, ErrUnknownTemplate) {
		t.Errorf("Render(missing) error = %v; want ErrUnknownTemplate", err)
	}
}

func TestRenderSection(t *testing.T) {
	tests := []struct {
		name     string
		optional bool
		want     []string
		wantNot  []string
	}{
		{
			name: "required",
			want: []string{
				"module IPSTestKit",
				"  module IPSV110",
				"class IPSMedicationSummarySectionCompositionSectionTest < Inferno::Test",
				"id :ips_medication_summary_section_composition_section_test",
				"title 'Validate Medication Summary section'",
				"'meds'",
				"'Observation::http://x/obs;MedicationStatement::http://x/ms'",
				"assert section.present?",
			},
			wantNot: []string{"      optional\n"},
		},
		{
			name:     "optional",
			optional: true,
			want:     []string{"      optional\n", "omit_if section.nil?"},
			wantNot:  []string{"assert section.present?"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MustTemplates().Render(Section, SectionContext{
				TestID:                     "ips_medication_summary_section_composition_section_test",
				ClassName:                  "IPSMedicationSummarySectionCompositionSectionTest",
				ModuleName:                 "IPSV110",
				TestKitModuleName:          "IPSTestKit",
				Title:                      "Validate Medication Summary section",
				Description:                "Checks the section.",
				SectionCode:                "meds",
				TargetResourcesAndProfiles: "Observation::http://x/obs;MedicationStatement::http://x/ms",
				Optional:                   tt.optional,
			})
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			text := string(out)
			for _, w := range tt.want {
				if !strings.Contains(text, w) {
					t.Errorf("output missing %q:\n%s", w, text)
				}
			}
			for _, w := range tt.wantNot {
				if strings.Contains(text, w) {
					t.Errorf("output contains %q:\n%s", w, text)
				}
			}
		})
	}
}

func TestRenderEntry(t *testing.T) {
	out, err := MustTemplates().Render(Entry, EntryContext{
		TestID:            "ips_patient_entry_test",
		ClassName:         "PatientEntryTest",
		ModuleName:        "IPSV110",
		TestKitModuleName: "IPSTestKit",
		ResourceType:      "Patient",
		ProfileURL:        "http://x/patient",
		Title:             "Patient (IPS)",
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	text := string(out)
	for _, w := range []string{
		"class PatientEntryTest < Inferno::Test",
		"id :ips_patient_entry_test",
		"title 'Patient (IPS)'",
		"'http://x/patient'",
		"Validates every Patient entry",
	} {
		if !strings.Contains(text, w) {
			t.Errorf("output missing %q:\n%s", w, text)
		}
	}
}

func TestRenderAggregators(t *testing.T) {
	tests := []TestRef{
		{ID: "ips_a_entry_test", File: "../entries_group/a_entry_test"},
		{ID: "ips_b_entry_test", File: "../entries_group/b_entry_test"},
	}

	group, err := MustTemplates().Render(Group, GroupContext{
		GroupID:           "ips_entries_group",
		ClassName:         "IPSEntriesGroup",
		ModuleName:        "IPSV110",
		TestKitModuleName: "IPSTestKit",
		Title:             "Entries",
		Tests:             tests,
	})
	if err != nil {
		t.Fatalf("Render(group) failed: %v", err)
	}
	text := string(group)
	for _, w := range []string{
		"require_relative '../entries_group/a_entry_test'",
		"require_relative '../entries_group/b_entry_test'",
		"test from: :ips_a_entry_test",
		"test from: :ips_b_entry_test",
	} {
		if !strings.Contains(text, w) {
			t.Errorf("group output missing %q:\n%s", w, text)
		}
	}
	if strings.Index(text, "ips_a_entry_test") > strings.Index(text, "ips_b_entry_test") {
		t.Error("group output does not keep test order")
	}
	if strings.Contains(text, "optional") {
		t.Errorf("group output marks the group optional:\n%s", text)
	}

	suite, err := MustTemplates().Render(Suite, SuiteContext{
		SuiteID:     "ips_v110",
		ClassName:   "IPSSuite",
		TxServerURL: "https://tx.example.org/r4",
		IGs:         "hl7.fhir.uv.ips#1.1.0",
		Groups:      []TestRef{{ID: "ips_entries_group", File: "groups/entries_group"}},
	})
	if err != nil {
		t.Fatalf("Render(suite) failed: %v", err)
	}
	text = string(suite)
	for _, w := range []string{
		"id :ips_v110",
		"igs 'hl7.fhir.uv.ips#1.1.0'",
		"txServer 'https://tx.example.org/r4'",
		"group from: :ips_entries_group",
		"require_relative 'groups/entries_group'",
	} {
		if !strings.Contains(text, w) {
			t.Errorf("suite output missing %q:\n%s", w, text)
		}
	}
}

func TestRubyQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"it's", `'it\'s'`},
		{`a\b`, `'a\\b'`},
		{"#{x}", "'#{x}'"},
		{"", "''"},
	}
	for _, tt := range tests {
		if got := RubyQuote(tt.in); got != tt.want {
			t.Errorf("RubyQuote(%q) = %s; want %s", tt.in, got, tt.want)
		}
	}
}
