// Package loader handles loading FHIR implementation guide packages from
// local .tgz archives, unpacked package directories, or the NPM cache.
package loader

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoManifest is returned when a package has no package.json.
var ErrNoManifest = errors.New("package.json not found")

// DefaultPackagePath returns the default FHIR package cache path.
func DefaultPackagePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".fhir", "packages")
}

// Resource is one JSON resource read from a package.
type Resource struct {
	ResourceType string
	ID           string
	URL          string
	Raw          json.RawMessage
}

// Package represents a loaded FHIR package.
// Resources keep the order in which they were read from the source.
type Package struct {
	Name        string
	Version     string
	Path        string
	FHIRVersion string
	Resources   []Resource
}

// ResourcesOfType returns the package resources with the given resourceType.
func (p *Package) ResourcesOfType(resourceType string) []Resource {
	var out []Resource
	for _, r := range p.Resources {
		if r.ResourceType == resourceType {
			out = append(out, r)
		}
	}
	return out
}

// PackageManifest represents the package.json of a FHIR NPM package.
type PackageManifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	FHIRVersion  string            `json:"fhirVersion,omitempty"`
	FHIRVersions []string          `json:"fhirVersions,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// fhirVersion returns the declared FHIR version, accepting both the singular
// and the list form of the manifest field.
func (m PackageManifest) fhirVersion() string {
	if m.FHIRVersion != "" {
		return m.FHIRVersion
	}
	if len(m.FHIRVersions) > 0 {
		return m.FHIRVersions[0]
	}
	return ""
}

// Loader loads FHIR packages.
type Loader struct {
	basePath string
}

// NewLoader creates a new Loader whose NPM cache lives at basePath.
func NewLoader(basePath string) *Loader {
	if basePath == "" {
		basePath = DefaultPackagePath()
	}
	return &Loader{basePath: basePath}
}

// Load loads a package from a reference that is either a .tgz path, an
// unpacked package directory, or a "name#version" spec in the NPM cache.
func (l *Loader) Load(ref string) (*Package, error) {
	if info, err := os.Stat(ref); err == nil {
		if info.IsDir() {
			return l.LoadFromDir(ref)
		}
		return l.LoadFromTgz(ref)
	}

	name, version := ParsePackageSpec(ref)
	if version == "" {
		return nil, fmt.Errorf("package %q not found", ref)
	}
	return l.LoadPackage(name, version)
}

// LoadPackage loads a specific package by name and version from the cache.
func (l *Loader) LoadPackage(name, version string) (*Package, error) {
	pkgDir := filepath.Join(l.basePath, fmt.Sprintf("%s#%s", name, version))

	if _, err := os.Stat(pkgDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("package %s#%s not found at %s", name, version, pkgDir)
	}

	return l.LoadFromDir(pkgDir)
}

// LoadFromDir loads an unpacked package. dir may point at the package root
// or at its "package" subdirectory.
func (l *Loader) LoadFromDir(dir string) (*Package, error) {
	packageDir := dir
	if _, err := os.Stat(filepath.Join(dir, "package", "package.json")); err == nil {
		packageDir = filepath.Join(dir, "package")
	}

	manifestData, err := os.ReadFile(filepath.Join(packageDir, "package.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w in %s", ErrNoManifest, dir)
		}
		return nil, fmt.Errorf("failed to read package manifest: %w", err)
	}

	pkg := &Package{Path: dir}
	if err := pkg.applyManifest(manifestData); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(packageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read package directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isResourceFile(entry.Name()) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(packageDir, entry.Name()))
		if err != nil {
			continue // Skip files we can't read
		}
		pkg.add(data)
	}

	return pkg, nil
}

// LoadFromTgz loads a FHIR package from a local .tgz file.
func (l *Loader) LoadFromTgz(tgzPath string) (*Package, error) {
	file, err := os.Open(tgzPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open tgz file: %w", err)
	}
	defer file.Close()

	return l.LoadFromReader(file, tgzPath)
}

// LoadFromReader loads a package from a gzipped tar stream. source names the
// stream in errors and becomes the package Path.
func (l *Loader) LoadFromReader(reader io.Reader, source string) (*Package, error) {
	gzReader, err := gzip.NewReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)

	pkg := &Package{Path: source}
	var manifestData []byte

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar entry: %w", err)
		}

		if header.Typeflag == tar.TypeDir {
			continue
		}

		// Normalize path (remove leading "package/" if present)
		name := strings.TrimPrefix(header.Name, "package/")

		if strings.Contains(name, "/") || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := io.ReadAll(tarReader)
		if err != nil {
			continue
		}

		if name == "package.json" {
			manifestData = data
			continue
		}
		if !isResourceFile(name) {
			continue
		}
		pkg.add(data)
	}

	if manifestData == nil {
		return nil, fmt.Errorf("%w in %s", ErrNoManifest, source)
	}
	if err := pkg.applyManifest(manifestData); err != nil {
		return nil, err
	}

	return pkg, nil
}

func (p *Package) applyManifest(data []byte) error {
	var manifest PackageManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("failed to parse package manifest: %w", err)
	}
	p.Name = manifest.Name
	p.Version = manifest.Version
	p.FHIRVersion = manifest.fhirVersion()
	return nil
}

// add indexes one JSON document. Documents without a resourceType are skipped.
func (p *Package) add(data []byte) {
	var resource struct {
		ResourceType string `json:"resourceType"`
		ID           string `json:"id"`
		URL          string `json:"url"`
	}
	if err := json.Unmarshal(data, &resource); err != nil {
		return
	}
	if resource.ResourceType == "" {
		return
	}
	p.Resources = append(p.Resources, Resource{
		ResourceType: resource.ResourceType,
		ID:           resource.ID,
		URL:          resource.URL,
		Raw:          data,
	})
}

func isResourceFile(name string) bool {
	if !strings.HasSuffix(name, ".json") {
		return false
	}
	return name != "package.json" && name != ".index.json"
}

// FindArchives returns the .tgz archives selected by pattern, sorted by path.
// A directory selects every *.tgz directly inside it; anything else is
// treated as a glob.
func FindArchives(pattern string) ([]string, error) {
	if info, err := os.Stat(pattern); err == nil && info.IsDir() {
		pattern = filepath.Join(pattern, "*.tgz")
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid package pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// ParsePackageSpec parses "name#version" into separate components.
func ParsePackageSpec(spec string) (name, version string) {
	parts := strings.SplitN(spec, "#", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return spec, ""
}
