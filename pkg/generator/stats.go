package generator

import (
	"sync/atomic"
	"time"
)

// Stats counts what a Generator produced. All methods are safe for
// concurrent use.
type Stats struct {
	packages  atomic.Uint64
	failed    atomic.Uint64
	artifacts [CategorySuite + 1]atomic.Uint64
	elapsed   atomic.Int64 // nanoseconds
}

// RecordPackage records one processed package and how long it took.
func (s *Stats) RecordPackage(duration time.Duration, ok bool) {
	if ok {
		s.packages.Add(1)
	} else {
		s.failed.Add(1)
	}
	s.elapsed.Add(duration.Nanoseconds())
}

// RecordArtifact records one written artifact.
func (s *Stats) RecordArtifact(c Category) {
	if c >= 0 && int(c) < len(s.artifacts) {
		s.artifacts[c].Add(1)
	}
}

// Packages returns the number of packages generated successfully.
func (s *Stats) Packages() uint64 {
	return s.packages.Load()
}

// Failed returns the number of packages whose generation failed.
func (s *Stats) Failed() uint64 {
	return s.failed.Load()
}

// Artifacts returns the number of artifacts written in category c.
func (s *Stats) Artifacts(c Category) uint64 {
	if c < 0 || int(c) >= len(s.artifacts) {
		return 0
	}
	return s.artifacts[c].Load()
}

// TotalArtifacts returns the number of artifacts written in all categories.
func (s *Stats) TotalArtifacts() uint64 {
	var total uint64
	for i := range s.artifacts {
		total += s.artifacts[i].Load()
	}
	return total
}

// Elapsed returns the time spent generating packages.
func (s *Stats) Elapsed() time.Duration {
	return time.Duration(s.elapsed.Load())
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Packages uint64
	Failed   uint64
	Sections uint64
	Entries  uint64
	Static   uint64
	Groups   uint64
	Suites   uint64
	Elapsed  time.Duration
}

// Snapshot returns the current counts.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Packages: s.Packages(),
		Failed:   s.Failed(),
		Sections: s.Artifacts(CategorySection),
		Entries:  s.Artifacts(CategoryEntry),
		Static:   s.Artifacts(CategoryStatic),
		Groups:   s.Artifacts(CategoryGroup),
		Suites:   s.Artifacts(CategorySuite),
		Elapsed:  s.Elapsed(),
	}
}
