package parity

import (
	"fmt"
	"sort"

	"github.com/ludo-technologies/mvnparity/domain"
)

// compareResolution recursively compares two resolution summaries: own fields,
// then modules sorted by GAV, then the dependencies of every scope present on
// the comparing side
func (v *verification) compareResolution(recordPath, prefix string, tested, comparing *domain.ResolutionSummary) {
	filter := newFieldFilter(v.opts, kindModules, kindDependencies)
	v.compareFields(recordPath, domain.TagResolutionSummary, prefix,
		resolutionFields(tested), resolutionFields(comparing), filter)

	v.compareModules(recordPath, prefix, tested.Modules, comparing.Modules)

	for _, scope := range comparing.Scopes() {
		v.compareDependencies(recordPath, joinField(prefix, fmt.Sprintf("%s.%s", FieldDependencies, scope)),
			tested.Dependencies[scope], comparing.Dependencies[scope])
	}
}

func (v *verification) compareModules(recordPath, prefix string, tested, comparing []*domain.ResolutionSummary) {
	tm := sortModules(tested)
	cm := sortModules(comparing)

	onlyTested := multisetDifference(moduleGAVs(tm), moduleGAVs(cm))
	onlyComparing := multisetDifference(moduleGAVs(cm), moduleGAVs(tm))
	if len(onlyTested) > 0 || len(onlyComparing) > 0 {
		v.report.add(domain.Discrepancy{
			Kind:            domain.KindModuleMismatch,
			Path:            recordPath,
			Marker:          domain.TagResolutionSummary,
			Field:           joinField(prefix, FieldModules),
			Tested:          fmt.Sprint(len(tm)),
			Comparing:       fmt.Sprint(len(cm)),
			OnlyInTested:    onlyTested,
			OnlyInComparing: onlyComparing,
			Message:         "module lists differ",
		})
	}

	if len(tm) == len(cm) {
		for i := range cm {
			v.compareResolution(recordPath, modulePrefix(prefix, cm[i]), tm[i], cm[i])
		}
		return
	}

	// Lengths differ: only modules present on both sides can be paired.
	byGAV := make(map[string][]*domain.ResolutionSummary, len(tm))
	for _, m := range tm {
		key := m.GAV.String()
		byGAV[key] = append(byGAV[key], m)
	}
	for _, c := range cm {
		key := c.GAV.String()
		candidates := byGAV[key]
		if len(candidates) == 0 {
			continue
		}
		byGAV[key] = candidates[1:]
		v.compareResolution(recordPath, modulePrefix(prefix, c), candidates[0], c)
	}
}

func modulePrefix(prefix string, m *domain.ResolutionSummary) string {
	return joinField(prefix, fmt.Sprintf("%s[%s]", FieldModules, m.GAV))
}

// compareDependencies compares the dependency lists of one scope after sorting both by GAV
func (v *verification) compareDependencies(recordPath, fieldPath string, tested, comparing []domain.ResolvedDependency) {
	td := sortDependencies(tested)
	cd := sortDependencies(comparing)

	if len(td) != len(cd) {
		v.report.add(domain.Discrepancy{
			Kind:            domain.KindDependencyMismatch,
			Path:            recordPath,
			Marker:          domain.TagResolutionSummary,
			Field:           fieldPath,
			Tested:          fmt.Sprint(len(td)),
			Comparing:       fmt.Sprint(len(cd)),
			OnlyInTested:    multisetDifference(dependencyGAVs(td), dependencyGAVs(cd)),
			OnlyInComparing: multisetDifference(dependencyGAVs(cd), dependencyGAVs(td)),
			Message:         "dependency counts differ",
		})

		byGAV := make(map[string]domain.ResolvedDependency, len(td))
		for _, d := range td {
			byGAV[d.GAV.String()] = d
		}
		for _, c := range cd {
			if t, ok := byGAV[c.GAV.String()]; ok {
				v.compareDependency(recordPath, fieldPath, t, c)
			}
		}
		return
	}

	for i := range cd {
		v.compareDependency(recordPath, fieldPath, td[i], cd[i])
	}
}

func (v *verification) compareDependency(recordPath, fieldPath string, tested, comparing domain.ResolvedDependency) {
	at := fmt.Sprintf("%s[%s:%s]", fieldPath, comparing.GAV.GroupID, comparing.GAV.ArtifactID)

	mismatch := func(name, t, c string) {
		v.report.add(domain.Discrepancy{
			Kind:      domain.KindDependencyMismatch,
			Path:      recordPath,
			Marker:    domain.TagResolutionSummary,
			Field:     at + "." + name,
			Tested:    t,
			Comparing: c,
		})
	}

	if tested.GAV.GroupID != comparing.GAV.GroupID || tested.GAV.ArtifactID != comparing.GAV.ArtifactID {
		mismatch("gav", tested.GAV.String(), comparing.GAV.String())
	} else if tested.GAV.Version != comparing.GAV.Version {
		mismatch("version", tested.GAV.Version, comparing.GAV.Version)
	}
	if tested.Scope != comparing.Scope {
		mismatch("scope", string(tested.Scope), string(comparing.Scope))
	}
	if tested.Type != comparing.Type {
		mismatch("type", tested.Type, comparing.Type)
	}
	if tested.Classifier != comparing.Classifier {
		mismatch("classifier", tested.Classifier, comparing.Classifier)
	}
	if !urisEqual(tested.File, comparing.File, v.opts.URITolerance) {
		mismatch("file", tested.File, comparing.File)
	}
	if !v.opts.IgnoreIdentifiers && tested.ID != comparing.ID {
		mismatch(FieldID, tested.ID.String(), comparing.ID.String())
	}
}

func sortModules(modules []*domain.ResolutionSummary) []*domain.ResolutionSummary {
	out := make([]*domain.ResolutionSummary, 0, len(modules))
	for _, m := range modules {
		if m != nil {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GAV.String() < out[j].GAV.String()
	})
	return out
}

func sortDependencies(deps []domain.ResolvedDependency) []domain.ResolvedDependency {
	out := append([]domain.ResolvedDependency(nil), deps...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GAV.String() < out[j].GAV.String()
	})
	return out
}

func dependencyGAVs(deps []domain.ResolvedDependency) []string {
	gavs := make([]string, len(deps))
	for i, d := range deps {
		gavs[i] = d.GAV.String()
	}
	return gavs
}
