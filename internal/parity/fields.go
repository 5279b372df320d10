package parity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ludo-technologies/mvnparity/domain"
)

// Field names shared by the marker comparators
const (
	FieldID           = "id"
	FieldModules      = "modules"
	FieldDependencies = "dependencies"
	FieldSettings     = "settings"
	FieldClasspath    = "classpath"
	FieldStyles       = "styles"
)

type fieldKind int

const (
	kindScalar fieldKind = iota
	kindList
	kindID
	kindSettings
	kindStyles
	kindModules
	kindDependencies
	kindClasspath
)

func (k fieldKind) String() string {
	switch k {
	case kindScalar:
		return "scalar"
	case kindList:
		return "list"
	case kindID:
		return "id"
	case kindSettings:
		return "settings"
	case kindStyles:
		return "styles"
	case kindModules:
		return "modules"
	case kindDependencies:
		return "dependencies"
	case kindClasspath:
		return "classpath"
	default:
		return "unknown"
	}
}

// field is one comparable slot of a marker
type field struct {
	name   string
	kind   fieldKind
	scalar string
	list   []string
}

// markerFields lists the comparable fields of a marker variant
func markerFields(m domain.Marker) []field {
	switch v := m.(type) {
	case *domain.ResolutionSummary:
		return resolutionFields(v)
	case *domain.ClasspathDescriptor:
		return []field{
			{name: FieldID, kind: kindID, scalar: v.ID.String()},
			{name: "name", kind: kindScalar, scalar: v.Name},
			{name: FieldClasspath, kind: kindClasspath, list: v.Classpath},
			{name: FieldStyles, kind: kindStyles, list: v.Styles},
		}
	case *domain.GenericMarker:
		return genericFields(v)
	default:
		return []field{{name: "value", kind: kindScalar, scalar: fmt.Sprintf("%+v", m)}}
	}
}

func resolutionFields(r *domain.ResolutionSummary) []field {
	parent := ""
	if r.Parent != nil {
		parent = r.Parent.String()
	}

	fields := []field{
		{name: FieldID, kind: kindID, scalar: r.ID.String()},
		{name: "gav.groupId", kind: kindScalar, scalar: r.GAV.GroupID},
		{name: "gav.artifactId", kind: kindScalar, scalar: r.GAV.ArtifactID},
		{name: "gav.version", kind: kindScalar, scalar: r.GAV.Version},
		{name: "packaging", kind: kindScalar, scalar: r.Packaging},
		{name: "parent", kind: kindScalar, scalar: parent},
		{name: FieldModules, kind: kindModules, list: moduleGAVs(r.Modules)},
		{name: FieldDependencies, kind: kindDependencies},
		{name: FieldSettings, kind: kindSettings, scalar: renderSettings(r.Settings)},
	}

	keys := make([]string, 0, len(r.Properties))
	for k := range r.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, field{name: "properties." + k, kind: kindScalar, scalar: r.Properties[k]})
	}
	return fields
}

func genericFields(g *domain.GenericMarker) []field {
	fields := []field{
		{name: FieldID, kind: kindID, scalar: g.ID.String()},
		{name: "kind", kind: kindScalar, scalar: g.Kind},
	}

	keys := make([]string, 0, len(g.Fields))
	for k := range g.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := g.Fields[k]
		f := field{name: k}
		switch v.Kind {
		case domain.ValueUUID:
			f.kind = kindID
			f.scalar = v.UUID.String()
		case domain.ValueSettings:
			f.kind = kindSettings
			f.scalar = renderSettings(v.Settings)
		case domain.ValueStyles:
			f.kind = kindStyles
			f.list = v.List
		case domain.ValueList:
			f.kind = kindList
			f.list = v.List
		default:
			f.kind = kindScalar
			f.scalar = v.Str
		}
		fields = append(fields, f)
	}
	return fields
}

func moduleGAVs(modules []*domain.ResolutionSummary) []string {
	gavs := make([]string, 0, len(modules))
	for _, m := range modules {
		if m != nil {
			gavs = append(gavs, m.GAV.String())
		}
	}
	return gavs
}

// fieldFilter decides which fields a comparison skips
type fieldFilter struct {
	opts  Options
	kinds map[fieldKind]bool
	names map[string]bool
}

func newFieldFilter(opts Options, skip ...fieldKind) fieldFilter {
	kinds := make(map[fieldKind]bool, len(skip)+2)
	for _, k := range skip {
		kinds[k] = true
	}
	if opts.IgnoreIdentifiers {
		kinds[kindID] = true
	}
	if opts.IgnoreSettings {
		kinds[kindSettings] = true
	}
	return fieldFilter{opts: opts, kinds: kinds, names: map[string]bool{}}
}

// withNames additionally skips the named fields
func (f fieldFilter) withNames(names ...string) fieldFilter {
	merged := make(map[string]bool, len(f.names)+len(names))
	for n := range f.names {
		merged[n] = true
	}
	for _, n := range names {
		merged[n] = true
	}
	f.names = merged
	return f
}

func (f fieldFilter) skips(fd field) bool {
	return f.kinds[fd.kind] || f.names[fd.name] || f.opts.isExcluded(fd.name)
}

// compareFields performs the deep-equality check of two field lists and
// records a FieldMismatch for every differing field. prefix locates nested
// markers such as modules of a resolution summary.
func (v *verification) compareFields(path, tag, prefix string, tested, comparing []field, filter fieldFilter) {
	testedByName := indexFields(tested)
	comparingByName := indexFields(comparing)

	names := make([]string, 0, len(testedByName)+len(comparingByName))
	seen := make(map[string]bool)
	for _, fs := range [][]field{comparing, tested} {
		for _, fd := range fs {
			if !seen[fd.name] {
				seen[fd.name] = true
				names = append(names, fd.name)
			}
		}
	}
	sort.Strings(names)

	for _, name := range names {
		t, tok := testedByName[name]
		cf, cok := comparingByName[name]

		switch {
		case tok && filter.skips(t), cok && filter.skips(cf):
			continue
		case !tok:
			v.report.add(domain.Discrepancy{
				Kind: domain.KindFieldMismatch, Path: path, Marker: tag, Field: joinField(prefix, name),
				Tested: absent, Comparing: renderField(cf),
				Message: "field missing in tested marker",
			})
			continue
		case !cok:
			v.report.add(domain.Discrepancy{
				Kind: domain.KindFieldMismatch, Path: path, Marker: tag, Field: joinField(prefix, name),
				Tested: renderField(t), Comparing: absent,
				Message: "field missing in comparing marker",
			})
			continue
		case t.kind != cf.kind:
			v.report.add(domain.Discrepancy{
				Kind: domain.KindFieldMismatch, Path: path, Marker: tag, Field: joinField(prefix, name),
				Tested: t.kind.String(), Comparing: cf.kind.String(),
				Message: "field types differ",
			})
			continue
		}

		if !v.fieldsEqual(t, cf) {
			v.report.add(domain.Discrepancy{
				Kind: domain.KindFieldMismatch, Path: path, Marker: tag, Field: joinField(prefix, name),
				Tested: renderField(t), Comparing: renderField(cf),
			})
		}
	}
}

const absent = "<absent>"

func joinField(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func (v *verification) fieldsEqual(a, b field) bool {
	switch a.kind {
	case kindList, kindStyles, kindClasspath, kindModules:
		if v.opts.isOrderInsensitive(a.name) {
			return multisetEqual(a.list, b.list)
		}
		return listEqual(a.list, b.list)
	case kindDependencies:
		// compared per scope by compareDependencies
		return true
	default:
		return a.scalar == b.scalar
	}
}

func renderSettings(s *domain.Settings) string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("%+v", *s)
}

func indexFields(fields []field) map[string]field {
	idx := make(map[string]field, len(fields))
	for _, f := range fields {
		idx[f.name] = f
	}
	return idx
}

func renderField(f field) string {
	switch f.kind {
	case kindList, kindStyles, kindClasspath, kindModules:
		return "[" + strings.Join(f.list, ", ") + "]"
	default:
		return f.scalar
	}
}

func listEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func multisetEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, s := range a {
		counts[s]++
	}
	for _, s := range b {
		counts[s]--
		if counts[s] < 0 {
			return false
		}
	}
	return true
}

// multisetDifference returns the elements of a left over after removing one
// occurrence per element of b
func multisetDifference(a, b []string) []string {
	counts := make(map[string]int, len(b))
	for _, s := range b {
		counts[s]++
	}
	var out []string
	for _, s := range a {
		if counts[s] > 0 {
			counts[s]--
			continue
		}
		out = append(out, s)
	}
	return out
}

// difference returns the elements of a not present in b, keeping order and duplicates
func difference(a, b []string) []string {
	present := make(map[string]bool, len(b))
	for _, s := range b {
		present[s] = true
	}
	var out []string
	for _, s := range a {
		if !present[s] {
			out = append(out, s)
		}
	}
	return out
}
