package metadata

import (
	"errors"
	"fmt"
)

var (
	// ErrExtraction is the sentinel wrapped by ExtractionError.
	ErrExtraction = errors.New("metadata extraction failed")
	// ErrNotFound is returned when a required definition or element is absent.
	ErrNotFound = errors.New("not found")
	// ErrUnresolvedProfile is returned when a canonical URL matches no definition.
	ErrUnresolvedProfile = errors.New("unresolved profile")
	// ErrMissingRequiredCoding is returned when a section carries no required coding.
	ErrMissingRequiredCoding = errors.New("missing required coding")
	// ErrAmbiguousRequiredCoding is returned when a section carries more than one coding.
	ErrAmbiguousRequiredCoding = errors.New("ambiguous required coding")
)

// NotFoundError reports an absent definition or element.
// It wraps ErrNotFound for errors.Is() compatibility.
type NotFoundError struct {
	Kind  string // "definition", "element", "type" or "target profile"
	Name  string
	Found int // Number of candidates found when exactly one was required
}

func (e *NotFoundError) Error() string {
	if e.Found > 1 {
		return fmt.Sprintf("expected exactly one %s %s, found %d", e.Name, e.Kind, e.Found)
	}
	return fmt.Sprintf("%s %s not found", e.Kind, e.Name)
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// UnresolvedProfileError reports a canonical URL with no matching definition.
// It wraps ErrUnresolvedProfile for errors.Is() compatibility.
type UnresolvedProfileError struct {
	URL     string
	Element string // Id of the element carrying the reference
}

func (e *UnresolvedProfileError) Error() string {
	return fmt.Sprintf("profile %s referenced by %s is not in the package", e.URL, e.Element)
}

// Unwrap returns ErrUnresolvedProfile.
func (e *UnresolvedProfileError) Unwrap() error { return ErrUnresolvedProfile }

// RequiredCodingError reports a section whose code element does not carry
// exactly one coding.
type RequiredCodingError struct {
	Section        string
	Count          int
	ElementMissing bool
}

func (e *RequiredCodingError) Error() string {
	switch {
	case e.ElementMissing:
		return fmt.Sprintf("section %s has no code element", e.Section)
	case e.Count == 0:
		return fmt.Sprintf("section %s code element has no fixed coding", e.Section)
	default:
		return fmt.Sprintf("section %s code element has %d codings, want 1", e.Section, e.Count)
	}
}

// Unwrap returns ErrAmbiguousRequiredCoding for more than one coding and
// ErrMissingRequiredCoding otherwise. A missing code element also matches
// ErrNotFound.
func (e *RequiredCodingError) Unwrap() []error {
	if e.Count > 1 {
		return []error{ErrAmbiguousRequiredCoding}
	}
	if e.ElementMissing {
		return []error{ErrMissingRequiredCoding, ErrNotFound}
	}
	return []error{ErrMissingRequiredCoding}
}

// ExtractionError aborts generation for one input package.
type ExtractionError struct {
	Package string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting metadata from %s: %v", e.Package, e.Err)
}

// Unwrap returns both ErrExtraction and the underlying cause.
func (e *ExtractionError) Unwrap() []error {
	return []error{ErrExtraction, e.Err}
}
