// Package generator turns summary guide packages into test artifacts.
//
// For each package it extracts the metadata, plans every artifact, checks
// the whole batch for name collisions and only then writes: the metadata
// snapshot first, then the artifacts in extraction order, each recorded in
// its directory manifest. After all packages it writes one group per
// manifest directory and the suite, once per version root.
//
// Packages are processed one at a time. Two processes generating into the
// same output root are not coordinated.
package generator

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofhir/suitegen/pkg/config"
	"github.com/gofhir/suitegen/pkg/definition"
	"github.com/gofhir/suitegen/pkg/loader"
	"github.com/gofhir/suitegen/pkg/logger"
	"github.com/gofhir/suitegen/pkg/metadata"
	"github.com/gofhir/suitegen/pkg/naming"
	"github.com/gofhir/suitegen/pkg/render"
)

// ErrNoPackages is returned by Run when the package pattern selects nothing.
var ErrNoPackages = errors.New("no packages found")

// Option configures a Generator.
type Option func(*Generator)

// WithRenderer replaces the embedded templates.
func WithRenderer(r render.Renderer) Option {
	return func(g *Generator) {
		if r != nil {
			g.renderer = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// versionState tracks what was generated into one version root.
// Static checks do not depend on the package, so they are written by the
// first package generated into the root only.
type versionState struct {
	version config.Version
	igs     []string
}

// Generator runs the generation pipeline for one configuration.
type Generator struct {
	cfg      *config.Config
	renderer render.Renderer
	filter   *definition.Filter
	loader   *loader.Loader
	log      *logger.Logger
	stats    Stats

	versions []*versionState
}

// New creates a Generator. The definition filter is compiled here so that
// a bad predicate fails before any package is read.
func New(cfg *config.Config, opts ...Option) (*Generator, error) {
	filter, err := definition.NewFilter(cfg.DefinitionFilter)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		cfg:    cfg,
		filter: filter,
		loader: loader.NewLoader(""),
		log:    logger.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.renderer == nil {
		templates, err := render.NewTemplates()
		if err != nil {
			return nil, err
		}
		g.renderer = templates
	}
	return g, nil
}

// Stats returns the generation counters.
func (g *Generator) Stats() *Stats {
	return &g.stats
}

// Run generates every package selected by the configured igs_path, in
// path order, then writes the aggregators. The first failing package stops
// the run; artifacts of packages before it stay on disk.
func (g *Generator) Run() error {
	archives, err := loader.FindArchives(g.cfg.IGsPath)
	if err != nil {
		return err
	}
	if len(archives) == 0 {
		return fmt.Errorf("%w matching %s", ErrNoPackages, g.cfg.IGsPath)
	}

	for _, archive := range archives {
		g.log.Info("Generating tests for IG %s", filepath.Base(archive))
		pkg, err := g.loader.LoadFromTgz(archive)
		if err != nil {
			return err
		}
		if err := g.GeneratePackage(pkg); err != nil {
			return err
		}
	}

	return g.Finish()
}

// Extract builds the definition index of pkg and extracts its metadata.
// Failures are returned as *metadata.ExtractionError.
func (g *Generator) Extract(pkg *loader.Package) ([]metadata.Entry, error) {
	if !definition.IsSupportedFHIRVersion(pkg.FHIRVersion) {
		g.log.Warn("package %s declares FHIR %s; definitions are read as R4", packageRef(pkg), pkg.FHIRVersion)
	}

	idx, err := definition.Load(pkg, g.filter)
	if err != nil {
		return nil, &metadata.ExtractionError{Package: packageRef(pkg), Err: err}
	}
	for _, s := range idx.Skipped() {
		g.log.Warn("skipping StructureDefinition %s of %s: %v", s.Ref, packageRef(pkg), s.Err)
	}
	g.log.Debug("indexed %d definitions of %s", idx.Len(), packageRef(pkg))

	x := metadata.NewExtractor(idx,
		metadata.WithContainerType(g.cfg.ContainerType),
		metadata.WithCompositionType(g.cfg.CompositionType),
		metadata.WithLogger(g.log),
	)
	entries, err := x.Extract()
	if err != nil {
		return nil, &metadata.ExtractionError{Package: packageRef(pkg), Err: err}
	}
	return entries, nil
}

// Plan returns every artifact of one package in write order: sections,
// entries, then static checks.
func (g *Generator) Plan(version config.Version, entries []metadata.Entry) ([]Artifact, error) {
	var plan []Artifact
	if comp, ok := metadata.FindComposition(entries); ok {
		plan = append(plan, SectionArtifacts(g.cfg, version, comp)...)
	}
	plan = append(plan, EntryArtifacts(g.cfg, version, metadata.PlainEntries(entries))...)

	static, err := StaticArtifacts(g.cfg, version)
	if err != nil {
		return nil, err
	}
	for _, a := range static {
		if t, ok := g.renderer.(interface{ Has(string) bool }); ok && !t.Has(a.Template) {
			return nil, fmt.Errorf("static test %s: %w: %q", a.ArtifactID, render.ErrUnknownTemplate, a.Template)
		}
	}
	return append(plan, static...), nil
}

// GeneratePackage extracts, plans, checks and writes the artifacts of pkg.
// Nothing is written unless extraction, planning and the collision check
// all succeed.
func (g *Generator) GeneratePackage(pkg *loader.Package) error {
	start := time.Now()
	err := g.generatePackage(pkg)
	g.stats.RecordPackage(time.Since(start), err == nil)
	return err
}

func (g *Generator) generatePackage(pkg *loader.Package) error {
	entries, err := g.Extract(pkg)
	if err != nil {
		return err
	}

	version := g.cfg.ResolveVersion(pkg.Version)
	if version.Label == "" {
		return fmt.Errorf("package %s: no version configured and the package declares none", packageRef(pkg))
	}
	layout := NewLayout(g.cfg.OutputPath, version)

	plan, err := g.Plan(version, entries)
	if err != nil {
		return err
	}
	claims := make([]naming.Claim, len(plan))
	for i, a := range plan {
		claims[i] = a.Claim(layout)
	}
	if err := naming.CheckCollisions(claims); err != nil {
		return fmt.Errorf("package %s: %w", packageRef(pkg), err)
	}

	if err := metadata.WriteSnapshot(layout.SnapshotPath(), entries); err != nil {
		return &IOError{Op: "write", Path: layout.SnapshotPath(), Err: err}
	}

	staticDone := g.lookup(version) != nil
	w := NewWriter(layout, g.renderer, g.log)
	for _, a := range plan {
		if a.Category == CategoryStatic && staticDone {
			g.log.Debug("static test %s already written for %s", a.ArtifactID, version.Label)
			continue
		}
		if _, _, err := w.Write(a); err != nil {
			return err
		}
		g.stats.RecordArtifact(a.Category)
	}

	g.track(version, packageRef(pkg))
	return nil
}

func (g *Generator) lookup(version config.Version) *versionState {
	for _, vs := range g.versions {
		if vs.version == version {
			return vs
		}
	}
	return nil
}

func (g *Generator) track(version config.Version, ig string) {
	if vs := g.lookup(version); vs != nil {
		vs.igs = append(vs.igs, ig)
		return
	}
	g.versions = append(g.versions, &versionState{version: version, igs: []string{ig}})
}

// Finish writes the groups and the suite of every version root generated
// into since the Generator was created.
func (g *Generator) Finish() error {
	for _, vs := range g.versions {
		layout := NewLayout(g.cfg.OutputPath, vs.version)
		groups, err := GroupArtifacts(g.cfg, vs.version, layout, g.log)
		if err != nil {
			return err
		}
		suite := SuiteArtifact(g.cfg, vs.version, layout, groups, vs.igs)

		w := NewWriter(layout, g.renderer, g.log)
		for _, a := range append(groups, suite) {
			if _, _, err := w.Write(a); err != nil {
				return err
			}
			g.stats.RecordArtifact(a.Category)
		}
	}
	return nil
}

func packageRef(pkg *loader.Package) string {
	if pkg.Name == "" {
		return filepath.Base(pkg.Path)
	}
	if pkg.Version == "" {
		return pkg.Name
	}
	return pkg.Name + "#" + pkg.Version
}
