// Package elementtree answers structural queries over a definition's flat,
// ordered element list. Element ids are dot-separated paths whose segments
// may carry slice (":name") or bracket ("[x]") qualifiers.
//
// The tree is built once: a by-id index and a parent -> children index keyed
// on the parent id. Every query preserves input order, and every "first"
// query returns the earliest match so later duplicates never override it.
package elementtree

import (
	"strings"

	"github.com/gofhir/suitegen/pkg/definition"
)

// Tree indexes one element sequence.
type Tree struct {
	elements []definition.Element
	byID     map[string]int
	children map[string][]int
}

// New builds a Tree over elements. The slice is not copied and must not be
// modified afterwards.
func New(elements []definition.Element) *Tree {
	t := &Tree{
		elements: elements,
		byID:     make(map[string]int, len(elements)),
		children: make(map[string][]int),
	}

	for i := range elements {
		id := elements[i].ID
		if _, exists := t.byID[id]; !exists {
			t.byID[id] = i
		}
		if parent, ok := ParentID(id); ok {
			t.children[parent] = append(t.children[parent], i)
		}
	}

	return t
}

// Len returns the number of elements in the tree.
func (t *Tree) Len() int {
	return len(t.elements)
}

// Find returns the first element whose id equals id.
func (t *Tree) Find(id string) (*definition.Element, bool) {
	i, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	return &t.elements[i], true
}

// Children returns the direct children of parentID: elements whose id is
// parentID plus exactly one more segment. The parent itself is never
// included.
func (t *Tree) Children(parentID string) []*definition.Element {
	idxs := t.children[parentID]
	if len(idxs) == 0 {
		return nil
	}
	out := make([]*definition.Element, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, &t.elements[i])
	}
	return out
}

// FindSuffix returns the first element whose id contains
// parentID + "." + suffix.
func (t *Tree) FindSuffix(parentID, suffix string) (*definition.Element, bool) {
	needle := parentID + "." + suffix
	for i := range t.elements {
		if strings.Contains(t.elements[i].ID, needle) {
			return &t.elements[i], true
		}
	}
	return nil, false
}

// ByBasePath returns the elements whose base path equals path, excluding the
// element whose own id equals path.
func (t *Tree) ByBasePath(path string) []*definition.Element {
	var out []*definition.Element
	for i := range t.elements {
		if t.elements[i].BasePath == path && t.elements[i].ID != path {
			out = append(out, &t.elements[i])
		}
	}
	return out
}

// ByPath returns the elements whose unqualified path equals path, excluding
// the element whose own id equals path.
func (t *Tree) ByPath(path string) []*definition.Element {
	var out []*definition.Element
	for i := range t.elements {
		if t.elements[i].Path == path && t.elements[i].ID != path {
			out = append(out, &t.elements[i])
		}
	}
	return out
}

// ParentID returns the id of the element that id is a direct child of.
// Dots inside brackets do not separate segments. A single-segment id has no
// parent.
func ParentID(id string) (string, bool) {
	i := lastSeparator(id)
	if i < 0 {
		return "", false
	}
	return id[:i], true
}

// LocalName returns the last segment of id, qualifiers included.
func LocalName(id string) string {
	return id[lastSeparator(id)+1:]
}

// SliceOf reports whether local is a slice of the named element, such as
// "entry:medicationStatement" for "entry".
func SliceOf(local, name string) bool {
	return strings.HasPrefix(local, name+":") && len(local) > len(name)+1
}

func lastSeparator(id string) int {
	depth := 0
	for i := len(id) - 1; i >= 0; i-- {
		switch id[i] {
		case ']':
			depth++
		case '[':
			if depth > 0 {
				depth--
			}
		case '.':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
