// Package naming derives artifact identifiers and symbolic names from
// human-readable titles.
//
// Every function here is pure: the same title yields the same names on every
// run, whatever order artifacts are generated in. Uniqueness is not implied;
// callers run CheckCollisions over a whole batch before writing anything.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scheme holds the configured prefixes of one artifact family.
type Scheme struct {
	IDPrefix    string // e.g. "ips"
	ClassPrefix string // e.g. "IPS"; empty for entries
}

// Role is the fixed suffix pair of one artifact category.
type Role struct {
	IDSuffix    string
	ClassSuffix string
}

// Roles of the generated test artifacts.
var (
	EntryRole   = Role{IDSuffix: "entry_test", ClassSuffix: "EntryTest"}
	SectionRole = Role{IDSuffix: "composition_section_test", ClassSuffix: "CompositionSectionTest"}
)

// Name is the full set of names derived for one artifact.
type Name struct {
	Identifier string // normalized title, e.g. "medication_summary"
	ArtifactID string // e.g. "ips_medication_summary_entry_test"
	Symbol     string // e.g. "MedicationSummaryEntryTest"
	FileBase   string // file name without extension, e.g. "medication_summary_entry_test"
}

var stripped = strings.NewReplacer("(", "", ")", "", "/", "", " - ", " ")

// Normalize lowercases title, removes the characters ( ) / and joins the
// remaining words with single underscores. Normalize is idempotent.
//
//	Normalize("Medication Summary (IPS)") == "medication_summary_ips"
//	Normalize("Results - Laboratory/Pathology") == "results_laboratorypathology"
func Normalize(title string) string {
	words := strings.FieldsFunc(stripped.Replace(title), func(r rune) bool {
		return unicode.IsSpace(r) || r == '_'
	})
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// Camel converts an underscore-separated identifier to upper camel case by
// capitalizing the first letter of each word.
func Camel(identifier string) string {
	var b strings.Builder
	for _, w := range strings.Split(identifier, "_") {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(w[size:])
	}
	return b.String()
}

// Underscore converts a camel-case symbol to lower snake case, splitting
// acronyms the way Rails does:
//
//	Underscore("IPSMedicationSummaryCompositionSectionTest") == "ips_medication_summary_composition_section_test"
func Underscore(symbol string) string {
	runes := []rune(symbol)
	var b strings.Builder
	b.Grow(len(symbol) + 8)

	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			switch {
			case unicode.IsLower(prev) || unicode.IsDigit(prev):
				b.WriteByte('_')
			case unicode.IsUpper(prev) && nextLower:
				b.WriteByte('_')
			}
		}
		if r == '-' {
			r = '_'
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Resolve derives the names of the artifact titled title.
func Resolve(title string, scheme Scheme, role Role) Name {
	ident := Normalize(title)
	symbol := scheme.ClassPrefix + Camel(ident) + role.ClassSuffix
	return Name{
		Identifier: ident,
		ArtifactID: joinNonEmpty("_", scheme.IDPrefix, ident, role.IDSuffix),
		Symbol:     symbol,
		FileBase:   Underscore(symbol),
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
