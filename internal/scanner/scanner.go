// Package scanner is the native project parser: it walks a Maven project,
// resolves its POM tree and extracts the types declared in its Java sources.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ludo-technologies/mvnparity/domain"
	"github.com/ludo-technologies/mvnparity/internal/logging"
	"github.com/ludo-technologies/mvnparity/internal/parser"
)

// URIStyle selects how resolved file URIs are spelled
type URIStyle string

const (
	URIStyleTripleSlash URIStyle = "file:///"
	URIStyleSingleSlash URIStyle = "file:/"
)

func (s URIStyle) apply(uri string) string {
	if s == URIStyleSingleSlash && strings.HasPrefix(uri, "file:///") {
		return "file:/" + strings.TrimPrefix(uri, "file:///")
	}
	return uri
}

// ParseURIStyle validates a configured URI style
func ParseURIStyle(s string) (URIStyle, error) {
	switch URIStyle(s) {
	case "", URIStyleTripleSlash:
		return URIStyleTripleSlash, nil
	case URIStyleSingleSlash:
		return URIStyleSingleSlash, nil
	default:
		return "", fmt.Errorf("invalid uri style %q, must be one of: file:///, file:/", s)
	}
}

// Options configures a scanner
type Options struct {
	// Name is reported as the parser name; defaults to "scanner"
	Name string

	// ExcludePatterns are doublestar globs matched against slash-separated relative paths
	ExcludePatterns []string

	RespectGitignore bool
	URIStyle         URIStyle
}

// DefaultExcludePatterns skips build output and IDE metadata
var DefaultExcludePatterns = []string{"**/target/**", "**/.idea/**", "**/*.iml"}

// Parser implements domain.ProjectParser for Maven projects
type Parser struct {
	opts Options
}

// New creates a scanner
func New(opts Options) *Parser {
	if opts.Name == "" {
		opts.Name = "scanner"
	}
	if opts.URIStyle == "" {
		opts.URIStyle = URIStyleTripleSlash
	}
	return &Parser{opts: opts}
}

// Name returns the parser name
func (p *Parser) Name() string {
	return p.opts.Name
}

// Parse scans the project at root. Settings are taken from ec.
func (p *Parser) Parse(ctx context.Context, root string, ec *domain.ExecutionContext) (*domain.ParsingResult, error) {
	start := time.Now()
	logger := logging.FromContext(ctx).With("parser", p.opts.Name)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, domain.NewInvalidInputError("invalid project root "+root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, domain.NewFileNotFoundError(root, err)
	}
	if !info.IsDir() {
		return nil, domain.NewInvalidInputError(root+" is not a directory", nil)
	}
	if ec == nil {
		ec = domain.NewExecutionContext()
	}

	collector, err := newFileCollector(absRoot, p.opts.ExcludePatterns, p.opts.RespectGitignore)
	if err != nil {
		return nil, domain.NewConfigError("invalid scanner configuration", err)
	}
	files, err := collector.collect(ctx)
	if err != nil {
		return nil, err
	}

	s := &scan{
		root:     absRoot,
		files:    files,
		ec:       ec,
		resolver: &resolver{loader: newPOMLoader(), ec: ec, uriStyle: p.opts.URIStyle},
		modules:  moduleDirs(files),
	}

	result := &domain.ParsingResult{Parser: p.opts.Name}
	classpaths, err := s.classpaths(ctx)
	if err != nil {
		return nil, err
	}

	for _, rel := range files {
		record, err := s.record(ctx, rel, classpaths)
		if err != nil {
			return nil, err
		}
		result.Records = append(result.Records, record)
	}

	logger.Debug("project scanned",
		"root", absRoot,
		"records", len(result.Records),
		"source_sets", len(classpaths),
		"duration", time.Since(start))
	return result, nil
}

// scan is the state of a single Parse call
type scan struct {
	root     string
	files    []string
	ec       *domain.ExecutionContext
	resolver *resolver

	// modules holds the directories containing a pom.xml, deepest first
	modules []string
}

func (s *scan) record(ctx context.Context, rel string, classpaths map[sourceSetKey][]string) (domain.SourceRecord, error) {
	module := s.moduleOf(rel)
	record := domain.SourceRecord{
		Path:    rel,
		Markers: []domain.Marker{s.buildTool(module)},
	}

	switch {
	case path.Base(rel) == "pom.xml":
		summary, err := s.resolver.resolve(ctx, filepath.Join(s.root, filepath.FromSlash(rel)))
		if err != nil {
			return record, domain.NewParseError(rel, err)
		}
		record.Markers = append(record.Markers, summary)
	case isJava(rel):
		key := sourceSetOf(module, rel)
		record.Markers = append(record.Markers, &domain.ClasspathDescriptor{
			ID:        uuid.New(),
			Name:      key.name,
			Classpath: append([]string(nil), classpaths[key]...),
		})
	}
	return record, nil
}

func (s *scan) buildTool(module string) *domain.GenericMarker {
	return &domain.GenericMarker{
		ID:   uuid.New(),
		Kind: domain.TagBuildTool,
		Fields: map[string]domain.Value{
			"name":     domain.StringValue("maven"),
			"module":   domain.StringValue(module),
			"settings": domain.SettingsValue(s.ec.Settings()),
		},
	}
}

// moduleOf returns the nearest directory holding a pom.xml, "." for the root
func (s *scan) moduleOf(rel string) string {
	dir := path.Dir(rel)
	for _, m := range s.modules {
		if m == "." || dir == m || strings.HasPrefix(dir, m+"/") {
			return m
		}
	}
	return "."
}

// moduleDirs returns the directories containing a pom.xml, deepest first
func moduleDirs(files []string) []string {
	var dirs []string
	for _, f := range files {
		if path.Base(f) == "pom.xml" {
			dirs = append(dirs, path.Dir(f))
		}
	}
	sort.SliceStable(dirs, func(i, j int) bool {
		di, dj := strings.Count(dirs[i], "/"), strings.Count(dirs[j], "/")
		if dirs[i] == "." {
			return false
		}
		if dirs[j] == "." {
			return true
		}
		if di != dj {
			return di > dj
		}
		return dirs[i] < dirs[j]
	})
	return dirs
}

// classpaths parses every Java file and groups the declared types per source set
func (s *scan) classpaths(ctx context.Context) (map[sourceSetKey][]string, error) {
	javaParser := parser.NewParser()
	defer javaParser.Close()

	seen := make(map[sourceSetKey]map[string]bool)
	for _, rel := range s.files {
		if !isJava(rel) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		source, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, domain.NewParseError(rel, err)
		}
		unit, err := javaParser.ParseFile(ctx, rel, source)
		if err != nil {
			return nil, domain.NewParseError(rel, err)
		}
		if unit.HasErrors {
			logging.FromContext(ctx).Warn("java source has syntax errors", "path", rel)
		}

		key := sourceSetOf(s.moduleOf(rel), rel)
		if seen[key] == nil {
			seen[key] = make(map[string]bool)
		}
		for _, name := range unit.QualifiedNames() {
			seen[key][name] = true
		}
	}

	classpaths := make(map[sourceSetKey][]string, len(seen))
	for key, names := range seen {
		list := make([]string, 0, len(names))
		for n := range names {
			list = append(list, n)
		}
		sort.Strings(list)
		classpaths[key] = list
	}
	return classpaths, nil
}

type sourceSetKey struct {
	module string
	name   string
}

// sourceSetOf derives the source set from a src/<name>/java/ path segment,
// defaulting to "main"
func sourceSetOf(module, rel string) sourceSetKey {
	within := rel
	if module != "." {
		within = strings.TrimPrefix(rel, module+"/")
	}
	parts := strings.Split(within, "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "src" && parts[i+2] == "java" {
			return sourceSetKey{module: module, name: parts[i+1]}
		}
	}
	return sourceSetKey{module: module, name: "main"}
}

func isJava(rel string) bool {
	return strings.EqualFold(path.Ext(rel), ".java")
}
