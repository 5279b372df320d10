// Package parity verifies that two parsing results produced by independent
// parser implementations over the same project are equivalent.
//
// Every discrepancy is collected before the verdict is returned, so a single
// run surfaces the complete divergence between the two results. Exact
// duplicates, discrepancies that render to the same string, are merged into
// one entry.
package parity

import (
	"fmt"
	"path"
	"reflect"
	"sort"
	"strings"

	"github.com/ludo-technologies/mvnparity/domain"
)

// Checker compares a tested parsing result against a comparing (reference) result
type Checker struct {
	opts Options
}

// NewChecker creates a checker with the given tolerances
func NewChecker(opts Options) *Checker {
	return &Checker{opts: opts}
}

// NewDefaultChecker creates a checker using DefaultOptions
func NewDefaultChecker() *Checker {
	return NewChecker(DefaultOptions())
}

// Options returns the tolerances of the checker
func (c *Checker) Options() Options {
	return c.opts
}

// verification holds the state of a single Verify call
type verification struct {
	opts   Options
	report *collector
}

// Verify compares tested against comparing and returns a report listing
// every discrepancy. Neither input is modified.
func (c *Checker) Verify(tested, comparing *domain.ParsingResult) *domain.ParityReport {
	v := &verification{opts: c.opts, report: newCollector()}

	v.verifyCounts(tested, comparing)
	v.verifyPathSets(tested, comparing)

	pairs := alignRecords(tested, comparing)
	for _, p := range pairs {
		v.compareMarkerSets(p.tested, p.comparing)
	}

	report := &domain.ParityReport{
		TestedCount:     tested.Len(),
		ComparingCount:  comparing.Len(),
		RecordsCompared: len(pairs),
		Discrepancies:   v.report.items,
	}
	if tested != nil {
		report.TestedParser = tested.Parser
	}
	if comparing != nil {
		report.ComparingParser = comparing.Parser
	}
	return report
}

// Check runs Verify and returns a *MismatchError when any discrepancy was found
func (c *Checker) Check(tested, comparing *domain.ParsingResult) error {
	report := c.Verify(tested, comparing)
	if report.Passed() {
		return nil
	}
	return &MismatchError{Report: report}
}

// verifyCounts reports a CountMismatch when the number of records differs.
// The payload lists the paths present on one side only.
func (v *verification) verifyCounts(tested, comparing *domain.ParsingResult) {
	if tested.Len() == comparing.Len() {
		return
	}

	testedPaths := normalizedPaths(tested)
	comparingPaths := normalizedPaths(comparing)

	v.report.add(domain.Discrepancy{
		Kind:            domain.KindCountMismatch,
		Tested:          fmt.Sprint(tested.Len()),
		Comparing:       fmt.Sprint(comparing.Len()),
		OnlyInTested:    sorted(difference(testedPaths, comparingPaths)),
		OnlyInComparing: sorted(difference(comparingPaths, testedPaths)),
		Message: fmt.Sprintf("tested result had %d source files whereas comparing result had %d",
			tested.Len(), comparing.Len()),
	})
}

// verifyPathSets reports a PathSetMismatch unless both path multisets are equal
func (v *verification) verifyPathSets(tested, comparing *domain.ParsingResult) {
	testedPaths := normalizedPaths(tested)
	comparingPaths := normalizedPaths(comparing)
	if multisetEqual(testedPaths, comparingPaths) {
		return
	}

	v.report.add(domain.Discrepancy{
		Kind:            domain.KindPathSetMismatch,
		OnlyInTested:    sorted(multisetDifference(testedPaths, comparingPaths)),
		OnlyInComparing: sorted(multisetDifference(comparingPaths, testedPaths)),
		Message:         "source paths differ",
	})
}

type recordPair struct {
	tested    domain.SourceRecord
	comparing domain.SourceRecord
}

// alignRecords sorts both sides by path and joins them on it. When the path
// sets are equal this is the index-aligned pairing; otherwise records whose
// path exists on one side only are left out.
func alignRecords(tested, comparing *domain.ParsingResult) []recordPair {
	t := sortedRecords(tested)
	c := sortedRecords(comparing)

	var pairs []recordPair
	i, j := 0, 0
	for i < len(t) && j < len(c) {
		tp, cp := cleanRecordPath(t[i].Path), cleanRecordPath(c[j].Path)
		switch {
		case tp == cp:
			pairs = append(pairs, recordPair{tested: t[i], comparing: c[j]})
			i++
			j++
		case tp < cp:
			i++
		default:
			j++
		}
	}
	return pairs
}

// compareMarkerSets compares the markers of one aligned record pair
func (v *verification) compareMarkerSets(tested, comparing domain.SourceRecord) {
	recordPath := cleanRecordPath(comparing.Path)
	tm := sortMarkers(tested.Markers)
	cm := sortMarkers(comparing.Markers)

	// The first markers get the base deep-equality check. Classpaths are
	// compared as sets by compareClasspaths.
	if len(tm) > 0 && len(cm) > 0 && sameVariant(tm[0], cm[0]) {
		filter := newFieldFilter(v.opts, kindDependencies, kindClasspath)
		v.compareFields(recordPath, cm[0].Tag(), "", markerFields(tm[0]), markerFields(cm[0]), filter)
	}

	aligned := len(tm) == len(cm)
	for i, cmk := range cm {
		if i >= len(tm) || !sameVariant(tm[i], cmk) {
			aligned = false
			continue
		}

		switch cr := cmk.(type) {
		case *domain.ResolutionSummary:
			v.compareResolution(recordPath, "", tm[i].(*domain.ResolutionSummary), cr)
		default:
			filter := newFieldFilter(v.opts, kindDependencies, kindClasspath, kindStyles).
				withNames(FieldClasspath, FieldStyles)
			v.compareFields(recordPath, cmk.Tag(), "", markerFields(tm[i]), markerFields(cmk), filter)
		}
	}
	if !aligned {
		v.reportMarkerGaps(recordPath, tm, cm)
	}

	v.compareClasspaths(recordPath, tested, comparing)
}

// compareClasspaths compares the java source set classpaths as sets
func (v *verification) compareClasspaths(recordPath string, tested, comparing domain.SourceRecord) {
	cm, ok := comparing.FindMarker(domain.TagJavaSourceSet)
	if !ok {
		return
	}
	tm, ok := tested.FindMarker(domain.TagJavaSourceSet)
	if !ok {
		v.report.add(missingInTested(recordPath, domain.TagJavaSourceSet))
		return
	}

	cc, cok := cm.(*domain.ClasspathDescriptor)
	tc, tok := tm.(*domain.ClasspathDescriptor)
	if !cok || !tok {
		return
	}

	if len(tc.Classpath) != len(cc.Classpath) {
		v.report.add(domain.Discrepancy{
			Kind:      domain.KindFieldMismatch,
			Path:      recordPath,
			Marker:    domain.TagJavaSourceSet,
			Field:     FieldClasspath + ".size",
			Tested:    fmt.Sprint(len(tc.Classpath)),
			Comparing: fmt.Sprint(len(cc.Classpath)),
			Message:   "classpath sizes differ",
		})
	}

	if extra := difference(cc.Classpath, tc.Classpath); len(extra) > 0 {
		v.report.add(domain.Discrepancy{
			Kind:            domain.KindFieldMismatch,
			Path:            recordPath,
			Marker:          domain.TagJavaSourceSet,
			Field:           FieldClasspath,
			OnlyInComparing: extra,
			Message:         "comparing classpath contains additional entries",
		})
	}
	if extra := difference(tc.Classpath, cc.Classpath); len(extra) > 0 {
		v.report.add(domain.Discrepancy{
			Kind:         domain.KindFieldMismatch,
			Path:         recordPath,
			Marker:       domain.TagJavaSourceSet,
			Field:        FieldClasspath,
			OnlyInTested: extra,
			Message:      "tested classpath contains additional entries",
		})
	}
}

// reportMarkerGaps names the markers one side lacks. Markers are grouped by
// tag and paired in order within a group, so a tag present on both sides is
// never reported missing.
func (v *verification) reportMarkerGaps(recordPath string, tm, cm []domain.Marker) {
	tested := groupByTag(tm)
	comparing := groupByTag(cm)

	for _, tag := range unionTags(tested, comparing) {
		tg, cg := tested[tag], comparing[tag]
		for i := 0; i < len(tg) && i < len(cg); i++ {
			if !sameVariant(tg[i], cg[i]) {
				v.report.add(domain.Discrepancy{
					Kind:      domain.KindMissingMarker,
					Path:      recordPath,
					Marker:    tag,
					Tested:    variantName(tg[i]),
					Comparing: variantName(cg[i]),
					Message:   fmt.Sprintf("%s markers have different variants", tag),
				})
			}
		}
		switch {
		case len(cg) > len(tg):
			v.report.add(missingInTested(recordPath, tag))
		case len(tg) > len(cg):
			v.report.add(missingInComparing(recordPath, tag))
		}
	}
}

func missingInTested(recordPath, tag string) domain.Discrepancy {
	return domain.Discrepancy{
		Kind:    domain.KindMissingMarker,
		Path:    recordPath,
		Marker:  tag,
		Message: fmt.Sprintf("tested record has no %s marker", tag),
	}
}

func missingInComparing(recordPath, tag string) domain.Discrepancy {
	return domain.Discrepancy{
		Kind:    domain.KindMissingMarker,
		Path:    recordPath,
		Marker:  tag,
		Message: fmt.Sprintf("comparing record has no %s marker", tag),
	}
}

// sameVariant reports whether two markers carry the same tag and variant type
func sameVariant(a, b domain.Marker) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Tag() == b.Tag() && reflect.TypeOf(a) == reflect.TypeOf(b)
}

func variantName(m domain.Marker) string {
	return reflect.TypeOf(m).String()
}

func groupByTag(markers []domain.Marker) map[string][]domain.Marker {
	groups := make(map[string][]domain.Marker)
	for _, m := range markers {
		groups[m.Tag()] = append(groups[m.Tag()], m)
	}
	return groups
}

func unionTags(a, b map[string][]domain.Marker) []string {
	tags := make([]string, 0, len(a)+len(b))
	for tag := range a {
		tags = append(tags, tag)
	}
	for tag := range b {
		if _, ok := a[tag]; !ok {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

func sortMarkers(markers []domain.Marker) []domain.Marker {
	out := make([]domain.Marker, 0, len(markers))
	for _, m := range markers {
		if m != nil {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Tag() < out[j].Tag()
	})
	return out
}

func sortedRecords(r *domain.ParsingResult) []domain.SourceRecord {
	if r == nil {
		return nil
	}
	out := make([]domain.SourceRecord, len(r.Records))
	copy(out, r.Records)
	sort.SliceStable(out, func(i, j int) bool {
		return cleanRecordPath(out[i].Path) < cleanRecordPath(out[j].Path)
	})
	return out
}

func normalizedPaths(r *domain.ParsingResult) []string {
	paths := r.Paths()
	for i, p := range paths {
		paths[i] = cleanRecordPath(p)
	}
	return paths
}

// cleanRecordPath normalizes separators and dot segments of a relative path
func cleanRecordPath(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

func sorted(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
