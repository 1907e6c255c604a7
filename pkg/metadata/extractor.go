package metadata

import (
	"github.com/gofhir/suitegen/pkg/definition"
	"github.com/gofhir/suitegen/pkg/elementtree"
	"github.com/gofhir/suitegen/pkg/logger"
)

// Default distinguished types.
const (
	DefaultContainerType   = "Bundle"
	DefaultCompositionType = "Composition"
)

// Option configures an Extractor.
type Option func(*Extractor)

// WithContainerType sets the declared type of the container definition.
func WithContainerType(typeName string) Option {
	return func(x *Extractor) {
		if typeName != "" {
			x.containerType = typeName
		}
	}
}

// WithCompositionType sets the declared type of the composition definition.
func WithCompositionType(typeName string) Option {
	return func(x *Extractor) {
		if typeName != "" {
			x.compositionType = typeName
		}
	}
}

// WithLogger sets the logger used for fallbacks and warnings.
func WithLogger(l *logger.Logger) Option {
	return func(x *Extractor) {
		if l != nil {
			x.log = l
		}
	}
}

// Extractor turns the definitions of one package into entries and sections.
type Extractor struct {
	index           *definition.Index
	containerType   string
	compositionType string
	log             *logger.Logger
}

// NewExtractor creates an Extractor resolving references through index.
func NewExtractor(index *definition.Index, opts ...Option) *Extractor {
	x := &Extractor{
		index:           index,
		containerType:   DefaultContainerType,
		compositionType: DefaultCompositionType,
		log:             logger.Default(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract locates the container and composition definitions and runs both
// passes. Any error means no metadata is usable for the package.
func (x *Extractor) Extract() ([]Entry, error) {
	containers := x.index.ByType(x.containerType)
	if len(containers) == 0 {
		return nil, &NotFoundError{Kind: "definition", Name: x.containerType}
	}
	if len(containers) > 1 {
		x.log.Warn("%d %s definitions found, using %s", len(containers), x.containerType, containers[0].URL)
	}

	compositions := x.index.ByType(x.compositionType)
	if len(compositions) != 1 {
		return nil, &NotFoundError{Kind: "definition", Name: x.compositionType, Found: len(compositions)}
	}

	sections, err := x.ExtractSections(compositions[0])
	if err != nil {
		return nil, err
	}
	return x.ExtractEntries(containers[0], sections)
}

// ExtractSections returns the sections of the composition definition in the
// order their root elements appear.
func (x *Extractor) ExtractSections(composition *definition.Definition) ([]SectionSpec, error) {
	tree := elementtree.New(composition.Elements)
	roots := tree.ByPath(x.compositionType + ".section")

	sections := make([]SectionSpec, 0, len(roots))
	for _, root := range roots {
		section, err := x.extractSection(tree, root)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	return sections, nil
}

func (x *Extractor) extractSection(tree *elementtree.Tree, root *definition.Element) (SectionSpec, error) {
	code, err := requiredCoding(tree, root)
	if err != nil {
		return SectionSpec{}, err
	}

	// Only entry slices directly under the section count; elements nested in
	// an entry slice are not references of their own.
	var entries []EntryReference
	for _, child := range tree.Children(root.ID) {
		if !elementtree.SliceOf(elementtree.LocalName(child.ID), "entry") {
			continue
		}
		ref, err := x.resolveReference(child)
		if err != nil {
			return SectionSpec{}, err
		}
		entries = append(entries, ref)
	}

	return SectionSpec{
		Title:      root.Short,
		Definition: root.Definition,
		Min:        root.Min,
		Max:        root.Max,
		Code:       code,
		Entries:    entries,
	}, nil
}

// requiredCoding returns the single fixed coding of the section's code element.
func requiredCoding(tree *elementtree.Tree, root *definition.Element) (definition.Coding, error) {
	codeElem, ok := tree.FindSuffix(root.ID, "code")
	if !ok {
		return definition.Coding{}, &RequiredCodingError{Section: root.ID, ElementMissing: true}
	}
	if n := len(codeElem.FixedCodings); n != 1 {
		return definition.Coding{}, &RequiredCodingError{Section: root.ID, Count: n}
	}
	return codeElem.FixedCodings[0], nil
}

func (x *Extractor) resolveReference(elem *definition.Element) (EntryReference, error) {
	target := elem.TargetProfile()
	if target == "" {
		return EntryReference{}, &NotFoundError{Kind: "target profile", Name: elem.ID}
	}
	def := x.index.ByURL(target)
	if def == nil {
		return EntryReference{}, &UnresolvedProfileError{URL: target, Element: elem.ID}
	}
	return EntryReference{Profile: target, ResourceType: def.Type}, nil
}

// ExtractEntries returns one entry per member slot of the container
// definition, in element order. The composition entry receives sections.
func (x *Extractor) ExtractEntries(container *definition.Definition, sections []SectionSpec) ([]Entry, error) {
	tree := elementtree.New(container.Elements)
	members := tree.ByBasePath(x.containerType + ".entry")
	if len(members) == 0 {
		x.log.Warn("%s declares no %s.entry slices", container.URL, x.containerType)
	}

	entries := make([]Entry, 0, len(members))
	for _, member := range members {
		resource, ok := tree.Find(member.ID + ".resource")
		if !ok {
			return nil, &NotFoundError{Kind: "element", Name: member.ID + ".resource"}
		}
		resourceType := resource.TypeCode()
		if resourceType == "" {
			return nil, &NotFoundError{Kind: "type", Name: resource.ID}
		}
		profile := resource.Profile()

		base := EntryBase{
			ResourceType:    resourceType,
			ResourceProfile: profile,
			Title:           x.entryTitle(resourceType, profile),
			Min:             member.Min,
			Max:             member.Max,
		}

		if resourceType == x.compositionType {
			entries = append(entries, &CompositionEntry{EntryBase: base, Sections: sections})
		} else {
			entries = append(entries, &PlainEntry{EntryBase: base})
		}
	}
	return entries, nil
}

// entryTitle returns the title of the profile's definition, falling back to
// the resource type.
func (x *Extractor) entryTitle(resourceType, profile string) string {
	if profile == "" {
		return resourceType
	}
	def := x.index.ByURL(profile)
	if def == nil {
		x.log.Debug("profile %s not in package, titling entry %s", profile, resourceType)
		return resourceType
	}
	if def.Title == "" {
		x.log.Warn("profile %s has no title, titling entry %s", profile, resourceType)
		return resourceType
	}
	return def.Title
}
