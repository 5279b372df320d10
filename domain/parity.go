package domain

import (
	"fmt"
	"strings"
)

// DiscrepancyKind classifies a parity failure
type DiscrepancyKind string

const (
	// Structural
	KindCountMismatch   DiscrepancyKind = "CountMismatch"
	KindPathSetMismatch DiscrepancyKind = "PathSetMismatch"

	// Identity
	KindMissingMarker DiscrepancyKind = "MissingMarker"

	// Content
	KindFieldMismatch      DiscrepancyKind = "FieldMismatch"
	KindModuleMismatch     DiscrepancyKind = "ModuleMismatch"
	KindDependencyMismatch DiscrepancyKind = "DependencyMismatch"
)

// Discrepancy is a single divergence between the tested and the comparing result
type Discrepancy struct {
	Kind DiscrepancyKind `json:"kind" yaml:"kind"`

	// Location of the divergence
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Marker string `json:"marker,omitempty" yaml:"marker,omitempty"`
	Field  string `json:"field,omitempty" yaml:"field,omitempty"`

	// Compared values
	Tested    string `json:"tested,omitempty" yaml:"tested,omitempty"`
	Comparing string `json:"comparing,omitempty" yaml:"comparing,omitempty"`

	// Entries present on one side only (paths, GAVs or classpath entries)
	OnlyInTested    []string `json:"only_in_tested,omitempty" yaml:"only_in_tested,omitempty"`
	OnlyInComparing []string `json:"only_in_comparing,omitempty" yaml:"only_in_comparing,omitempty"`

	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// String renders the discrepancy with enough context to locate it
func (d Discrepancy) String() string {
	var sb strings.Builder
	sb.WriteString(string(d.Kind))

	var loc []string
	if d.Path != "" {
		loc = append(loc, d.Path)
	}
	if d.Marker != "" {
		loc = append(loc, d.Marker)
	}
	if d.Field != "" {
		loc = append(loc, d.Field)
	}
	if len(loc) > 0 {
		sb.WriteString(" at ")
		sb.WriteString(strings.Join(loc, " > "))
	}
	if d.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(d.Message)
	}
	if d.Tested != "" || d.Comparing != "" {
		fmt.Fprintf(&sb, " (tested=%q, comparing=%q)", d.Tested, d.Comparing)
	}
	if len(d.OnlyInTested) > 0 {
		fmt.Fprintf(&sb, " only in tested: %v", d.OnlyInTested)
	}
	if len(d.OnlyInComparing) > 0 {
		fmt.Fprintf(&sb, " only in comparing: %v", d.OnlyInComparing)
	}
	return sb.String()
}

// ParityReport is the verdict of one parity check
type ParityReport struct {
	TestedParser    string        `json:"tested_parser,omitempty" yaml:"tested_parser,omitempty"`
	ComparingParser string        `json:"comparing_parser,omitempty" yaml:"comparing_parser,omitempty"`
	TestedCount     int           `json:"tested_count" yaml:"tested_count"`
	ComparingCount  int           `json:"comparing_count" yaml:"comparing_count"`
	RecordsCompared int           `json:"records_compared" yaml:"records_compared"`
	Discrepancies   []Discrepancy `json:"discrepancies" yaml:"discrepancies"`
}

// Passed reports whether no discrepancy was found
func (r *ParityReport) Passed() bool {
	return r != nil && len(r.Discrepancies) == 0
}

// CountByKind returns the number of discrepancies per kind
func (r *ParityReport) CountByKind() map[DiscrepancyKind]int {
	counts := make(map[DiscrepancyKind]int)
	if r == nil {
		return counts
	}
	for _, d := range r.Discrepancies {
		counts[d.Kind]++
	}
	return counts
}

// ParityResponse wraps a report with run metadata for output
type ParityResponse struct {
	ProjectRoot string        `json:"project_root,omitempty" yaml:"project_root,omitempty"`
	Passed      bool          `json:"passed" yaml:"passed"`
	Report      *ParityReport `json:"report" yaml:"report"`
	DurationMs  int64         `json:"duration_ms" yaml:"duration_ms"`
	GeneratedAt string        `json:"generated_at" yaml:"generated_at"`
	Version     string        `json:"version" yaml:"version"`
}
