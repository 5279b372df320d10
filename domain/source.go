package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Marker tags used when pairing markers across results
const (
	TagResolutionSummary = "ResolutionSummary"
	TagJavaSourceSet     = "JavaSourceSet"
	TagBuildTool         = "BuildTool"
)

// ParsingResult is the output of parsing one project directory
type ParsingResult struct {
	// Parser names the implementation that produced the result
	Parser string `json:"parser,omitempty" yaml:"parser,omitempty"`

	Records []SourceRecord `json:"records" yaml:"records"`
}

// Paths returns the record paths in result order
func (r *ParsingResult) Paths() []string {
	if r == nil {
		return nil
	}
	paths := make([]string, len(r.Records))
	for i, rec := range r.Records {
		paths[i] = rec.Path
	}
	return paths
}

// Len returns the number of records, treating nil as empty
func (r *ParsingResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}

// SourceRecord is one discovered source file with the markers attached during parsing
type SourceRecord struct {
	// Path is relative to the project root
	Path string `json:"path" yaml:"path"`

	Markers []Marker `json:"-" yaml:"-"`
}

// FindMarker returns the first marker carrying the given tag
func (s SourceRecord) FindMarker(tag string) (Marker, bool) {
	for _, m := range s.Markers {
		if m != nil && m.Tag() == tag {
			return m, true
		}
	}
	return nil, false
}

// Marker is typed metadata attached to a parsed source file.
// Implementations: *ResolutionSummary, *ClasspathDescriptor, *GenericMarker.
type Marker interface {
	Tag() string
	MarkerID() uuid.UUID
}

// Scope is a Maven dependency scope
type Scope string

const (
	ScopeCompile  Scope = "compile"
	ScopeProvided Scope = "provided"
	ScopeRuntime  Scope = "runtime"
	ScopeTest     Scope = "test"
	ScopeSystem   Scope = "system"
	ScopeImport   Scope = "import"
)

// ParseScope maps a POM scope string to a Scope, defaulting to compile
func ParseScope(s string) Scope {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeProvided:
		return ScopeProvided
	case ScopeRuntime:
		return ScopeRuntime
	case ScopeTest:
		return ScopeTest
	case ScopeSystem:
		return ScopeSystem
	case ScopeImport:
		return ScopeImport
	default:
		return ScopeCompile
	}
}

// GAV identifies a package by group, artifact and version
type GAV struct {
	GroupID    string `json:"group_id" yaml:"group_id"`
	ArtifactID string `json:"artifact_id" yaml:"artifact_id"`
	Version    string `json:"version" yaml:"version"`
}

// String renders the GAV as group:artifact:version
func (g GAV) String() string {
	return fmt.Sprintf("%s:%s:%s", g.GroupID, g.ArtifactID, g.Version)
}

// IsZero reports whether no coordinate is set
func (g GAV) IsZero() bool {
	return g.GroupID == "" && g.ArtifactID == "" && g.Version == ""
}

// ResolvedDependency is a dependency after resolution
type ResolvedDependency struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	GAV        GAV       `json:"gav" yaml:"gav"`
	Scope      Scope     `json:"scope" yaml:"scope"`
	Type       string    `json:"type,omitempty" yaml:"type,omitempty"`
	Classifier string    `json:"classifier,omitempty" yaml:"classifier,omitempty"`

	// File is the URI of the resolved artifact
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// ResolutionSummary describes the resolved module tree of a Maven project
type ResolutionSummary struct {
	ID           uuid.UUID                      `json:"id" yaml:"id"`
	GAV          GAV                            `json:"gav" yaml:"gav"`
	Packaging    string                         `json:"packaging,omitempty" yaml:"packaging,omitempty"`
	Parent       *GAV                           `json:"parent,omitempty" yaml:"parent,omitempty"`
	Properties   map[string]string              `json:"properties,omitempty" yaml:"properties,omitempty"`
	Modules      []*ResolutionSummary           `json:"modules,omitempty" yaml:"modules,omitempty"`
	Dependencies map[Scope][]ResolvedDependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`

	// Settings is the settings snapshot used during resolution
	Settings *Settings `json:"settings,omitempty" yaml:"settings,omitempty"`
}

func (r *ResolutionSummary) Tag() string         { return TagResolutionSummary }
func (r *ResolutionSummary) MarkerID() uuid.UUID { return r.ID }

// Scopes returns the dependency scope keys in sorted order
func (r *ResolutionSummary) Scopes() []Scope {
	scopes := make([]Scope, 0, len(r.Dependencies))
	for s := range r.Dependencies {
		scopes = append(scopes, s)
	}
	sort.Slice(scopes, func(i, j int) bool { return scopes[i] < scopes[j] })
	return scopes
}

// ClasspathDescriptor describes a java source set and the types on its classpath
type ClasspathDescriptor struct {
	ID   uuid.UUID `json:"id" yaml:"id"`
	Name string    `json:"name" yaml:"name"`

	// Classpath holds fully-qualified type names
	Classpath []string `json:"classpath" yaml:"classpath"`
	Styles    []string `json:"styles,omitempty" yaml:"styles,omitempty"`
}

func (c *ClasspathDescriptor) Tag() string         { return TagJavaSourceSet }
func (c *ClasspathDescriptor) MarkerID() uuid.UUID { return c.ID }

// ValueKind discriminates the values held by a GenericMarker
type ValueKind string

const (
	ValueString   ValueKind = "string"
	ValueUUID     ValueKind = "uuid"
	ValueSettings ValueKind = "settings"
	ValueList     ValueKind = "list"
	ValueStyles   ValueKind = "styles"
)

// Value is a single GenericMarker field
type Value struct {
	Kind     ValueKind `json:"kind" yaml:"kind"`
	Str      string    `json:"str,omitempty" yaml:"str,omitempty"`
	UUID     uuid.UUID `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	Settings *Settings `json:"settings,omitempty" yaml:"settings,omitempty"`
	List     []string  `json:"list,omitempty" yaml:"list,omitempty"`
}

// StringValue builds a string field value
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

// UUIDValue builds an identifier field value
func UUIDValue(id uuid.UUID) Value { return Value{Kind: ValueUUID, UUID: id} }

// ListValue builds a list field value
func ListValue(items ...string) Value { return Value{Kind: ValueList, List: items} }

// StylesValue builds a style list field value
func StylesValue(styles ...string) Value { return Value{Kind: ValueStyles, List: styles} }

// SettingsValue builds an embedded settings field value
func SettingsValue(s *Settings) Value { return Value{Kind: ValueSettings, Settings: s} }

// GenericMarker is the catch-all marker variant
type GenericMarker struct {
	ID     uuid.UUID        `json:"id" yaml:"id"`
	Kind   string           `json:"kind" yaml:"kind"`
	Fields map[string]Value `json:"fields,omitempty" yaml:"fields,omitempty"`
}

func (g *GenericMarker) Tag() string         { return g.Kind }
func (g *GenericMarker) MarkerID() uuid.UUID { return g.ID }
