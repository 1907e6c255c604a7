package definition

import (
	"fmt"
	"sync"

	"github.com/gofhir/fhirpath"
	"github.com/gofhir/fhirpath/types"
)

// DefaultFilterExpression admits definitions that carry a snapshot, which
// extraction needs.
const DefaultFilterExpression = "snapshot.element.exists()"

// Filter decides which StructureDefinitions enter an Index by evaluating a
// FHIRPath predicate over their JSON.
type Filter struct {
	mu         sync.Mutex
	expression string
	cache      map[string]*fhirpath.Expression
}

// NewFilter creates a filter for expression. An empty expression uses
// DefaultFilterExpression. The expression is compiled eagerly so that a
// malformed predicate is reported before any package is read.
func NewFilter(expression string) (*Filter, error) {
	if expression == "" {
		expression = DefaultFilterExpression
	}
	f := &Filter{
		expression: expression,
		cache:      make(map[string]*fhirpath.Expression),
	}
	if _, err := f.getOrCompile(expression); err != nil {
		return nil, fmt.Errorf("failed to compile FHIRPath expression '%s': %w", expression, err)
	}
	return f, nil
}

// Expression returns the predicate the filter evaluates.
func (f *Filter) Expression() string {
	return f.expression
}

// Admit reports whether the resource JSON satisfies the predicate.
// A nil filter admits everything.
func (f *Filter) Admit(resource []byte) (bool, error) {
	if f == nil {
		return true, nil
	}

	compiled, err := f.getOrCompile(f.expression)
	if err != nil {
		return false, err
	}

	result, err := compiled.Evaluate(resource)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate FHIRPath expression '%s': %w", f.expression, err)
	}
	return toBool(result), nil
}

func (f *Filter) getOrCompile(expression string) (*fhirpath.Expression, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if compiled, ok := f.cache[expression]; ok {
		return compiled, nil
	}

	compiled, err := fhirpath.Compile(expression)
	if err != nil {
		return nil, err
	}

	f.cache[expression] = compiled
	return compiled, nil
}

// toBool applies FHIRPath truthiness: empty is false, a single boolean is
// its value, anything else is true.
func toBool(result types.Collection) bool {
	if len(result) == 0 {
		return false
	}

	if len(result) == 1 {
		if b, ok := result[0].(types.Boolean); ok {
			return b.Bool()
		}
	}

	return true
}
