// Package testutil provides fixture builders and helpers for testing mvnparity components
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/ludo-technologies/mvnparity/domain"
)

// Result builds a parsing result from records
func Result(parser string, records ...domain.SourceRecord) *domain.ParsingResult {
	return &domain.ParsingResult{Parser: parser, Records: records}
}

// Record builds a source record with the given markers
func Record(path string, markers ...domain.Marker) domain.SourceRecord {
	return domain.SourceRecord{Path: path, Markers: markers}
}

// GAV assembles coordinates
func GAV(group, artifact, version string) domain.GAV {
	return domain.GAV{GroupID: group, ArtifactID: artifact, Version: version}
}

// Dependency builds a resolved dependency with a fresh identifier
func Dependency(gav domain.GAV, scope domain.Scope, file string) domain.ResolvedDependency {
	return domain.ResolvedDependency{
		ID:    uuid.New(),
		GAV:   gav,
		Scope: scope,
		Type:  "jar",
		File:  file,
	}
}

// Resolution builds a resolution summary with a fresh identifier
func Resolution(gav domain.GAV, modules ...*domain.ResolutionSummary) *domain.ResolutionSummary {
	return &domain.ResolutionSummary{
		ID:           uuid.New(),
		GAV:          gav,
		Packaging:    "jar",
		Modules:      modules,
		Dependencies: map[domain.Scope][]domain.ResolvedDependency{},
	}
}

// WithDependencies adds dependencies to r under their own scope and returns r
func WithDependencies(r *domain.ResolutionSummary, deps ...domain.ResolvedDependency) *domain.ResolutionSummary {
	if r.Dependencies == nil {
		r.Dependencies = map[domain.Scope][]domain.ResolvedDependency{}
	}
	for _, d := range deps {
		r.Dependencies[d.Scope] = append(r.Dependencies[d.Scope], d)
	}
	return r
}

// SourceSet builds a classpath descriptor with a fresh identifier
func SourceSet(name string, classpath ...string) *domain.ClasspathDescriptor {
	return &domain.ClasspathDescriptor{
		ID:        uuid.New(),
		Name:      name,
		Classpath: classpath,
	}
}

// Generic builds a generic marker with a fresh identifier
func Generic(kind string, fields map[string]domain.Value) *domain.GenericMarker {
	return &domain.GenericMarker{ID: uuid.New(), Kind: kind, Fields: fields}
}

// WriteFile writes content below dir, creating parent directories
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", rel, err)
	}
	return full
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertEqual fails the test if expected != actual
func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected %v, got %v", expected, actual)
	}
}

// AssertTrue fails the test if condition is false
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Error(msg)
	}
}

// AssertFalse fails the test if condition is true
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Error(msg)
	}
}

// AssertDiscrepancy fails the test unless report holds a discrepancy of the given kind
// and returns the first one found
func AssertDiscrepancy(t *testing.T, report *domain.ParityReport, kind domain.DiscrepancyKind) domain.Discrepancy {
	t.Helper()
	for _, d := range report.Discrepancies {
		if d.Kind == kind {
			return d
		}
	}
	t.Fatalf("Expected a %s discrepancy, got %v", kind, report.Discrepancies)
	return domain.Discrepancy{}
}

// AssertPassed fails the test if report holds any discrepancy
func AssertPassed(t *testing.T, report *domain.ParityReport) {
	t.Helper()
	if !report.Passed() {
		for _, d := range report.Discrepancies {
			t.Errorf("Unexpected discrepancy: %s", d)
		}
	}
}
