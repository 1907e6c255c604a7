package generator

import (
	"fmt"
	"strings"

	"github.com/gofhir/suitegen/pkg/config"
	"github.com/gofhir/suitegen/pkg/logger"
	"github.com/gofhir/suitegen/pkg/metadata"
	"github.com/gofhir/suitegen/pkg/naming"
	"github.com/gofhir/suitegen/pkg/render"
)

// SectionArtifacts plans one artifact per section of comp, in order.
func SectionArtifacts(cfg *config.Config, version config.Version, comp *metadata.CompositionEntry) []Artifact {
	if comp == nil {
		return nil
	}
	scheme := naming.Scheme{IDPrefix: cfg.TestIDPrefix, ClassPrefix: cfg.TestSuiteClassName}

	out := make([]Artifact, 0, len(comp.Sections))
	for i := range comp.Sections {
		section := &comp.Sections[i]
		name := naming.Resolve(section.Title, scheme, naming.SectionRole)
		out = append(out, Artifact{
			Category:   CategorySection,
			Title:      section.Title,
			ArtifactID: name.ArtifactID,
			FileBase:   name.FileBase,
			Template:   render.Section,
			Data: render.SectionContext{
				TestID:                     name.ArtifactID,
				ClassName:                  name.Symbol,
				ModuleName:                 cfg.ModuleName(version),
				TestKitModuleName:          cfg.TestKitModuleName,
				Title:                      "Validate " + section.Title,
				Description:                sectionDescription(section.Title),
				SectionCode:                section.Code.Code,
				TargetResourcesAndProfiles: targetResourcesAndProfiles(section.Entries),
				Optional:                   section.Optional(),
			},
		})
	}
	return out
}

func sectionDescription(title string) string {
	return fmt.Sprintf("This test verifies that the %s within the Composition entry of a $summary Bundle is correctly "+
		"structured. It extracts the references listed in the section, checks that the corresponding resources exist "+
		"in the Bundle, and ensures they conform to the expected resource type and profile requirements.", title)
}

func targetResourcesAndProfiles(refs []metadata.EntryReference) string {
	pairs := make([]string, len(refs))
	for i, ref := range refs {
		pairs[i] = ref.ResourceType + "::" + ref.Profile
	}
	return strings.Join(pairs, ";")
}

// EntryArtifacts plans one artifact per plain entry, in order.
func EntryArtifacts(cfg *config.Config, version config.Version, entries []*metadata.PlainEntry) []Artifact {
	scheme := naming.Scheme{IDPrefix: cfg.TestIDPrefix}

	out := make([]Artifact, 0, len(entries))
	for _, e := range entries {
		name := naming.Resolve(e.Title, scheme, naming.EntryRole)
		out = append(out, Artifact{
			Category:   CategoryEntry,
			Title:      e.Title,
			ArtifactID: name.ArtifactID,
			FileBase:   name.FileBase,
			Template:   render.Entry,
			Data: render.EntryContext{
				TestID:            name.ArtifactID,
				ClassName:         name.Symbol,
				ModuleName:        cfg.ModuleName(version),
				TestKitModuleName: cfg.TestKitModuleName,
				ResourceType:      e.ResourceType,
				ProfileURL:        e.ResourceProfile,
				Title:             e.Title,
				Optional:          e.Optional(),
			},
		})
	}
	return out
}

// StaticArtifacts plans the configured static checks. Their ids and class
// names come from configuration; profile keys resolve through
// specific_profiles.
func StaticArtifacts(cfg *config.Config, version config.Version) ([]Artifact, error) {
	out := make([]Artifact, 0, len(cfg.StaticTests))
	for _, st := range cfg.StaticTests {
		profileURL := ""
		if st.Profile != "" {
			profileURL = cfg.ProfileURL(st.Profile)
			if profileURL == "" {
				return nil, fmt.Errorf("static test %s: profile %q is not a specific_profiles key", st.ID, st.Profile)
			}
		}
		out = append(out, Artifact{
			Category:   CategoryStatic,
			Title:      st.Title,
			ArtifactID: st.ID,
			FileBase:   naming.Underscore(st.ClassName),
			Template:   st.Template,
			Data: render.StaticContext{
				TestID:            st.ID,
				ClassName:         st.ClassName,
				ModuleName:        cfg.ModuleName(version),
				TestKitModuleName: cfg.TestKitModuleName,
				ProfileURL:        profileURL,
				Title:             st.Title,
				Description:       st.Description,
			},
		})
	}
	return out, nil
}

var groupTitles = map[Category][2]string{
	CategoryStatic:  {"$summary Bundle Validation", "Validates the $summary Bundle and its Composition against their profiles."},
	CategorySection: {"$summary Composition Sections", "Validates each coded section of the $summary Composition."},
	CategoryEntry:   {"$summary Bundle Entries", "Validates each kind of resource the $summary Bundle may contain."},
}

// GroupArtifacts plans one aggregator per manifest directory that has
// records. The manifest is read back as the group's test list, so the
// group covers every package generated into the layout so far.
func GroupArtifacts(cfg *config.Config, version config.Version, layout Layout, log *logger.Logger) ([]Artifact, error) {
	var out []Artifact
	for _, c := range ManifestCategories {
		records, malformed, err := layout.Manifest(c).Load()
		if err != nil {
			return nil, &IOError{Op: "read", Path: layout.Manifest(c).Path(), Err: err}
		}
		if malformed && log != nil {
			log.Warn("manifest of %s is not a record list, skipping its group", c.Dir())
		}
		if len(records) == 0 {
			continue
		}

		tests := make([]render.TestRef, 0, len(records))
		seen := make(map[string]bool, len(records))
		for _, rec := range records {
			// Repeated runs append the same record again; a group lists each test once.
			if seen[rec.ArtifactID] {
				continue
			}
			seen[rec.ArtifactID] = true
			tests = append(tests, render.TestRef{
				ID:   rec.ArtifactID,
				File: relativeRequire(layout.Dir(CategoryGroup), rec.FilePath),
			})
		}

		dir := c.Dir()
		titles := groupTitles[c]
		groupID := joinID(cfg.TestIDPrefix, dir)
		out = append(out, Artifact{
			Category:   CategoryGroup,
			Title:      titles[0],
			ArtifactID: groupID,
			FileBase:   dir,
			Template:   render.Group,
			Data: render.GroupContext{
				GroupID:           groupID,
				ClassName:         cfg.TestSuiteClassName + naming.Camel(dir),
				ModuleName:        cfg.ModuleName(version),
				TestKitModuleName: cfg.TestKitModuleName,
				Title:             titles[0],
				Description:       titles[1],
				Tests:             tests,
			},
		})
	}
	return out, nil
}

// SuiteArtifact plans the suite tying groups together. igs lists the
// "name#version" references of the packages generated for the version.
func SuiteArtifact(cfg *config.Config, version config.Version, layout Layout, groups []Artifact, igs []string) Artifact {
	suiteID := cfg.SuiteID
	if suiteID == "" {
		suiteID = joinID(cfg.TestIDPrefix, strings.ToLower(version.Suffix))
	}
	title := cfg.SuiteTitle
	if title == "" {
		title = strings.TrimSpace(cfg.TestSuiteClassName + " " + version.Label)
	}
	className := cfg.TestSuiteClassName + "TestSuite"

	refs := make([]render.TestRef, 0, len(groups))
	for _, g := range groups {
		refs = append(refs, render.TestRef{
			ID:   g.ArtifactID,
			File: relativeRequire(layout.Dir(CategorySuite), layout.FilePath(g.Category, g.FileBase)),
		})
	}

	return Artifact{
		Category:   CategorySuite,
		Title:      title,
		ArtifactID: suiteID,
		FileBase:   naming.Underscore(className),
		Template:   render.Suite,
		Data: render.SuiteContext{
			SuiteID:           suiteID,
			ClassName:         className,
			ModuleName:        cfg.ModuleName(version),
			TestKitModuleName: cfg.TestKitModuleName,
			Title:             title,
			Description:       cfg.SuiteDescription,
			TxServerURL:       cfg.TxServerURL,
			IGs:               strings.Join(igs, ","),
			Groups:            refs,
		},
	}
}

func joinID(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "_")
}
