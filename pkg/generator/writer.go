package generator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofhir/suitegen/pkg/logger"
	"github.com/gofhir/suitegen/pkg/manifest"
	"github.com/gofhir/suitegen/pkg/naming"
	"github.com/gofhir/suitegen/pkg/render"
)

// ErrIO is the sentinel wrapped by IOError.
var ErrIO = errors.New("output failure")

// IOError reports a failed filesystem operation on an output path.
// It wraps ErrIO and the underlying error.
type IOError struct {
	Op   string // "mkdir", "write" or "manifest"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns ErrIO and the underlying error.
func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

// Artifact is one planned output file.
type Artifact struct {
	Category   Category
	Title      string // Source title, for collision reports
	ArtifactID string
	FileBase   string
	Template   string
	Data       any
}

// Claim returns the names the artifact occupies under layout.
func (a Artifact) Claim(layout Layout) naming.Claim {
	return naming.Claim{
		Title:      a.Title,
		ArtifactID: a.ArtifactID,
		FilePath:   layout.FilePath(a.Category, a.FileBase),
	}
}

// Writer renders artifacts into a layout and records them in the
// category manifests.
type Writer struct {
	layout   Layout
	renderer render.Renderer
	log      *logger.Logger
}

// NewWriter creates a Writer.
func NewWriter(layout Layout, renderer render.Renderer, log *logger.Logger) *Writer {
	if log == nil {
		log = logger.Default()
	}
	return &Writer{layout: layout, renderer: renderer, log: log}
}

// Write renders a, writes it to its path, overwriting any previous file,
// and appends {artifact id, path} to the category manifest when the
// category keeps one. It returns the written path and the artifact id.
func (w *Writer) Write(a Artifact) (string, string, error) {
	content, err := w.renderer.Render(a.Template, a.Data)
	if err != nil {
		return "", "", fmt.Errorf("artifact %s: %w", a.ArtifactID, err)
	}

	dir := w.layout.Dir(a.Category)
	//nolint:gosec // G301: generated output is meant to be shared
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", &IOError{Op: "mkdir", Path: dir, Err: err}
	}

	path := w.layout.FilePath(a.Category, a.FileBase)
	//nolint:gosec // G306: generated output is meant to be shared
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", "", &IOError{Op: "write", Path: path, Err: err}
	}
	w.log.Debug("wrote %s %s", a.Category, path)

	if a.Category.HasManifest() {
		store := w.layout.Manifest(a.Category, manifest.WithLogger(w.log))
		if err := store.Append(manifest.Record{ArtifactID: a.ArtifactID, FilePath: path}); err != nil {
			return "", "", &IOError{Op: "manifest", Path: store.Path(), Err: err}
		}
	}

	return path, a.ArtifactID, nil
}

// relativeRequire returns target relative to fromDir without its extension,
// the form a require_relative line takes.
func relativeRequire(fromDir, target string) string {
	rel, err := filepath.Rel(fromDir, target)
	if err != nil {
		rel = target
	}
	return filepath.ToSlash(rel[:len(rel)-len(filepath.Ext(rel))])
}
