// Package manifest persists the per-directory list of generated artifacts.
//
// A manifest is a YAML sequence of records in a file named metadata.yaml.
// It is the only state shared between generation calls: every append
// re-reads the file, adds one record and rewrites the whole file. Concurrent
// writers to the same file are not coordinated and may lose records.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/gofhir/suitegen/pkg/logger"
)

// FileName is the name of the manifest file inside a category directory.
const FileName = "metadata.yaml"

// Record is one generated artifact.
type Record struct {
	ArtifactID string `yaml:"artifact_id"`
	FilePath   string `yaml:"file_path"`
}

// Store reads and appends to one manifest file.
type Store struct {
	path string
	log  *logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger that reports discarded manifest content.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore creates a Store for the manifest at path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{path: path, log: logger.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ForDir returns the Store of the manifest inside dir.
func ForDir(dir string, opts ...Option) *Store {
	return NewStore(filepath.Join(dir, FileName), opts...)
}

// Path returns the manifest file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the records of the manifest. A missing or empty file yields
// no records. Content that is not a sequence of records also yields no
// records, with malformed set; it is never an error. Only a failure to read
// an existing file is returned as err.
func (s *Store) Load() (records []Record, malformed bool, err error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read manifest: %w", err)
	}

	records, ok := decode(data)
	return records, !ok, nil
}

func decode(data []byte) ([]Record, bool) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, true
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	switch raw.(type) {
	case nil:
		return nil, true
	case []any:
	default:
		return nil, false
	}

	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, false
	}
	return records, true
}

// Append adds rec after the records already in the manifest and rewrites
// the file, creating its directory when needed. Malformed content is
// replaced by a manifest holding only rec.
func (s *Store) Append(rec Record) error {
	records, malformed, err := s.Load()
	if err != nil {
		return err
	}
	if malformed {
		s.log.Warn("manifest %s is not a record list, starting a new one", s.path)
	}
	return s.save(append(records, rec))
}

func (s *Store) save(records []Record) error {
	//nolint:gosec // G301: generated output is meant to be shared
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	data, err := yaml.MarshalWithOptions(records, yaml.IndentSequence(true))
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	//nolint:gosec // G306: generated output is meant to be shared
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
