package generator

import (
	"path/filepath"

	"github.com/gofhir/suitegen/pkg/config"
	"github.com/gofhir/suitegen/pkg/manifest"
)

// Category groups artifacts that share a directory.
type Category int

// Artifact categories.
const (
	CategorySection Category = iota
	CategoryEntry
	CategoryStatic
	CategoryGroup
	CategorySuite
)

// ManifestCategories are the categories whose directories keep a manifest,
// in the order their groups appear in the suite.
var ManifestCategories = []Category{CategoryStatic, CategorySection, CategoryEntry}

// Dir returns the directory of the category relative to the version root.
func (c Category) Dir() string {
	switch c {
	case CategorySection:
		return "summary_operation_group"
	case CategoryEntry:
		return "entries_group"
	case CategoryStatic:
		return "static_group"
	case CategoryGroup:
		return "groups"
	default:
		return "."
	}
}

// HasManifest reports whether writes in the category are recorded.
func (c Category) HasManifest() bool {
	switch c {
	case CategorySection, CategoryEntry, CategoryStatic:
		return true
	default:
		return false
	}
}

func (c Category) String() string {
	switch c {
	case CategorySection:
		return "section"
	case CategoryEntry:
		return "entry"
	case CategoryStatic:
		return "static"
	case CategoryGroup:
		return "group"
	case CategorySuite:
		return "suite"
	default:
		return "unknown"
	}
}

// FileExt is the extension of every rendered artifact.
const FileExt = ".rb"

// Layout maps categories to directories under one version root:
// <output>/generated/<version>/.
type Layout struct {
	Root string
}

// NewLayout returns the layout of version under outputPath.
func NewLayout(outputPath string, version config.Version) Layout {
	return Layout{Root: filepath.Join(outputPath, "generated", version.Label)}
}

// Dir returns the directory of category c.
func (l Layout) Dir(c Category) string {
	return filepath.Join(l.Root, c.Dir())
}

// FilePath returns the path of the artifact file fileBase in category c.
func (l Layout) FilePath(c Category, fileBase string) string {
	return filepath.Join(l.Dir(c), fileBase+FileExt)
}

// SnapshotPath returns the path of the metadata snapshot.
func (l Layout) SnapshotPath() string {
	return filepath.Join(l.Root, manifest.FileName)
}

// Manifest returns the manifest store of category c. It must only be
// called for categories with HasManifest.
func (l Layout) Manifest(c Category, opts ...manifest.Option) *manifest.Store {
	return manifest.ForDir(l.Dir(c), opts...)
}
