// Package testutil provides IG package fixtures shared by the test suites:
// StructureDefinition JSON documents shaped like a minimal patient summary
// guide, and helpers that pack them into .tgz archives.
package testutil
