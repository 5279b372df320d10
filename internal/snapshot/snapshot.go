// Package snapshot dumps parsing results to YAML or JSON and loads them back,
// so that results produced elsewhere can take part in a parity check.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/mvnparity/domain"
	"github.com/ludo-technologies/mvnparity/internal/logging"
)

// FormatVersion is written into every snapshot
const FormatVersion = 1

// Format is a snapshot encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the encoding from a file extension, defaulting to YAML
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Marker variant names used in the envelope
const (
	variantResolution = "resolution"
	variantClasspath  = "classpath"
	variantGeneric    = "generic"
)

type document struct {
	Version int         `json:"version" yaml:"version"`
	Parser  string      `json:"parser,omitempty" yaml:"parser,omitempty"`
	Records []recordDoc `json:"records" yaml:"records"`
}

type recordDoc struct {
	Path    string      `json:"path" yaml:"path"`
	Markers []markerDoc `json:"markers,omitempty" yaml:"markers,omitempty"`
}

// markerDoc is a tagged envelope holding exactly one marker variant
type markerDoc struct {
	Variant    string                      `json:"variant" yaml:"variant"`
	Resolution *domain.ResolutionSummary   `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	Classpath  *domain.ClasspathDescriptor `json:"classpath,omitempty" yaml:"classpath,omitempty"`
	Generic    *domain.GenericMarker       `json:"generic,omitempty" yaml:"generic,omitempty"`
}

// Write encodes result to w
func Write(w io.Writer, result *domain.ParsingResult, format Format) error {
	doc, err := toDocument(result)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported snapshot format: %s", format)
	}
}

// WriteFile encodes result into path, choosing the format from the extension
func WriteFile(path string, result *domain.ParsingResult) error {
	f, err := os.Create(path)
	if err != nil {
		return domain.NewOutputError("cannot create snapshot "+path, err)
	}
	if err := Write(f, result, FormatFromPath(path)); err != nil {
		f.Close()
		return domain.NewOutputError("cannot write snapshot "+path, err)
	}
	return f.Close()
}

// Load decodes a parsing result from r
func Load(r io.Reader, format Format) (*domain.ParsingResult, error) {
	var doc document
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported snapshot format: %s", format)
	}

	if doc.Version > FormatVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported version %d", doc.Version, FormatVersion)
	}
	return fromDocument(&doc)
}

// LoadFile decodes the snapshot at path
func LoadFile(path string) (*domain.ParsingResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	defer f.Close()

	result, err := Load(f, FormatFromPath(path))
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}
	return result, nil
}

func toDocument(result *domain.ParsingResult) (*document, error) {
	doc := &document{Version: FormatVersion, Records: []recordDoc{}}
	if result == nil {
		return doc, nil
	}
	doc.Parser = result.Parser

	for _, rec := range result.Records {
		rd := recordDoc{Path: rec.Path}
		for _, m := range rec.Markers {
			md, err := envelope(m)
			if err != nil {
				return nil, fmt.Errorf("record %s: %w", rec.Path, err)
			}
			rd.Markers = append(rd.Markers, md)
		}
		doc.Records = append(doc.Records, rd)
	}
	return doc, nil
}

func envelope(m domain.Marker) (markerDoc, error) {
	switch v := m.(type) {
	case *domain.ResolutionSummary:
		return markerDoc{Variant: variantResolution, Resolution: v}, nil
	case *domain.ClasspathDescriptor:
		return markerDoc{Variant: variantClasspath, Classpath: v}, nil
	case *domain.GenericMarker:
		return markerDoc{Variant: variantGeneric, Generic: v}, nil
	default:
		return markerDoc{}, fmt.Errorf("unsupported marker type %T", m)
	}
}

func fromDocument(doc *document) (*domain.ParsingResult, error) {
	result := &domain.ParsingResult{Parser: doc.Parser}
	seen := make(map[string]bool, len(doc.Records))

	for _, rd := range doc.Records {
		if rd.Path == "" {
			return nil, fmt.Errorf("record without path")
		}
		if seen[rd.Path] {
			return nil, fmt.Errorf("duplicate record path %s", rd.Path)
		}
		seen[rd.Path] = true

		rec := domain.SourceRecord{Path: rd.Path}
		for i, md := range rd.Markers {
			m, err := md.marker()
			if err != nil {
				return nil, fmt.Errorf("record %s marker %d: %w", rd.Path, i, err)
			}
			rec.Markers = append(rec.Markers, m)
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

func (md markerDoc) marker() (domain.Marker, error) {
	switch md.Variant {
	case variantResolution:
		if md.Resolution != nil {
			return md.Resolution, nil
		}
	case variantClasspath:
		if md.Classpath != nil {
			return md.Classpath, nil
		}
	case variantGeneric:
		if md.Generic != nil {
			return md.Generic, nil
		}
	default:
		return nil, fmt.Errorf("unknown marker variant %q", md.Variant)
	}
	return nil, fmt.Errorf("marker variant %q has no payload", md.Variant)
}

// Parser implements domain.ProjectParser by loading a snapshot file
type Parser struct {
	path string
}

// NewParser creates a parser reading the snapshot at path
func NewParser(path string) *Parser {
	return &Parser{path: path}
}

// Name returns "snapshot:<path>"
func (p *Parser) Name() string {
	return "snapshot:" + p.path
}

// Parse loads the snapshot. The project root is not consulted.
func (p *Parser) Parse(ctx context.Context, root string, _ *domain.ExecutionContext) (*domain.ParsingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := LoadFile(p.path)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug("snapshot loaded", "path", p.path, "root", root, "records", result.Len())
	if result.Parser == "" {
		result.Parser = p.Name()
	}
	return result, nil
}
