package naming

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCollision is the sentinel wrapped by CollisionError.
var ErrCollision = errors.New("name collision")

// Claim is one planned artifact: the title it was named from and the names
// it would occupy.
type Claim struct {
	Title      string
	ArtifactID string
	FilePath   string
}

// Duplicate is one artifact id or file path claimed more than once.
type Duplicate struct {
	Field  string // "artifact id" or "file path"
	Value  string
	Titles []string // Titles of the claims, in batch order
}

// CollisionError lists every duplicate found in a batch.
// It wraps ErrCollision for errors.Is() compatibility.
type CollisionError struct {
	Duplicates []Duplicate
}

func (e *CollisionError) Error() string {
	parts := make([]string, 0, len(e.Duplicates))
	for _, d := range e.Duplicates {
		parts = append(parts, fmt.Sprintf("%s %q claimed by %s", d.Field, d.Value, strings.Join(quoteAll(d.Titles), ", ")))
	}
	return fmt.Sprintf("%d name collision(s): %s", len(e.Duplicates), strings.Join(parts, "; "))
}

// Unwrap returns ErrCollision.
func (e *CollisionError) Unwrap() error { return ErrCollision }

// CheckCollisions reports every artifact id and every file path claimed by
// more than one entry of claims. Empty values are ignored. Duplicates are
// listed in the order their value first appears. It returns nil when all
// names are unique.
func CheckCollisions(claims []Claim) error {
	var dups []Duplicate
	dups = append(dups, duplicates("artifact id", claims, func(c Claim) string { return c.ArtifactID })...)
	dups = append(dups, duplicates("file path", claims, func(c Claim) string { return c.FilePath })...)
	if len(dups) == 0 {
		return nil
	}
	return &CollisionError{Duplicates: dups}
}

func duplicates(field string, claims []Claim, key func(Claim) string) []Duplicate {
	titles := make(map[string][]string)
	var order []string
	for _, c := range claims {
		k := key(c)
		if k == "" {
			continue
		}
		if _, seen := titles[k]; !seen {
			order = append(order, k)
		}
		titles[k] = append(titles[k], c.Title)
	}

	var out []Duplicate
	for _, k := range order {
		if len(titles[k]) > 1 {
			out = append(out, Duplicate{Field: field, Value: k, Titles: titles[k]})
		}
	}
	return out
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
