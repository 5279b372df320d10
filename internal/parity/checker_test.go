package parity

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/ludo-technologies/mvnparity/domain"
	"github.com/ludo-technologies/mvnparity/internal/testutil"
)

func sampleProject() *domain.ParsingResult {
	child := testutil.WithDependencies(
		testutil.Resolution(testutil.GAV("com.example", "child", "1.0")),
		testutil.Dependency(testutil.GAV("com.example", "dep", "1.0"), domain.ScopeCompile, "file:///repo/com/example/dep/1.0/dep-1.0.jar"),
	)
	root := testutil.WithDependencies(
		testutil.Resolution(testutil.GAV("com.example", "root", "1.0"), child),
		testutil.Dependency(testutil.GAV("junit", "junit", "4.13.2"), domain.ScopeTest, "file:///repo/junit/junit/4.13.2/junit-4.13.2.jar"),
	)
	return testutil.Result("sample",
		testutil.Record("pom.xml", root),
		testutil.Record("src/main/java/Main.java", testutil.SourceSet("main", "java.lang.String", "com.example.Main")),
		testutil.Record("README.md", testutil.Generic(domain.TagBuildTool, map[string]domain.Value{
			"name":    domain.StringValue("maven"),
			"version": domain.StringValue("3.9.6"),
		})),
	)
}

// cloneProject rebuilds the sample with fresh identifiers so only
// identifier fields differ from another sampleProject call
func cloneProject() *domain.ParsingResult {
	return sampleProject()
}

func TestVerify_Reflexive(t *testing.T) {
	checker := NewDefaultChecker()
	a := sampleProject()

	report := checker.Verify(a, a)
	testutil.AssertPassed(t, report)
	testutil.AssertEqual(t, 3, report.RecordsCompared)

	strict := NewChecker(Options{URITolerance: URIToleranceStrict})
	testutil.AssertPassed(t, strict.Verify(a, a))
}

func TestVerify_EmptyResults(t *testing.T) {
	checker := NewDefaultChecker()
	testutil.AssertPassed(t, checker.Verify(testutil.Result("a"), testutil.Result("b")))
	testutil.AssertPassed(t, checker.Verify(nil, testutil.Result("b")))
}

func TestVerify_CountMismatch(t *testing.T) {
	a := testutil.Result("a",
		testutil.Record("pom.xml"),
		testutil.Record("src/Main.java"),
	)
	b := testutil.Result("b", testutil.Record("src/Main.java"))

	report := NewDefaultChecker().Verify(a, b)
	d := testutil.AssertDiscrepancy(t, report, domain.KindCountMismatch)

	if diff := cmp.Diff([]string{"pom.xml"}, d.OnlyInTested); diff != "" {
		t.Errorf("OnlyInTested mismatch (-want +got):\n%s", diff)
	}
	if len(d.OnlyInComparing) != 0 {
		t.Errorf("Expected no paths only in comparing, got %v", d.OnlyInComparing)
	}
	testutil.AssertEqual(t, "2", d.Tested)
	testutil.AssertEqual(t, "1", d.Comparing)

	// the shared record is still compared
	testutil.AssertEqual(t, 1, report.RecordsCompared)
}

func TestVerify_PathSetSymmetry(t *testing.T) {
	a := testutil.Result("a", testutil.Record("pom.xml"), testutil.Record("src/A.java"))
	b := testutil.Result("b", testutil.Record("pom.xml"), testutil.Record("src/B.java"))

	checker := NewDefaultChecker()
	ab := testutil.AssertDiscrepancy(t, checker.Verify(a, b), domain.KindPathSetMismatch)
	ba := testutil.AssertDiscrepancy(t, checker.Verify(b, a), domain.KindPathSetMismatch)

	if diff := cmp.Diff(ab.OnlyInTested, ba.OnlyInComparing); diff != "" {
		t.Errorf("swapped payload mismatch (-ab +ba):\n%s", diff)
	}
	if diff := cmp.Diff(ab.OnlyInComparing, ba.OnlyInTested); diff != "" {
		t.Errorf("swapped payload mismatch (-ab +ba):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"src/A.java"}, ab.OnlyInTested); diff != "" {
		t.Errorf("OnlyInTested mismatch (-want +got):\n%s", diff)
	}
}

func TestVerify_RecordOrderIgnored(t *testing.T) {
	a := sampleProject()
	b := cloneProject()
	b.Records[0], b.Records[2] = b.Records[2], b.Records[0]

	testutil.AssertPassed(t, NewDefaultChecker().Verify(a, b))
}

func TestVerify_PathsNormalized(t *testing.T) {
	a := testutil.Result("a", testutil.Record("src/./main/Main.java"))
	b := testutil.Result("b", testutil.Record("src/main/Main.java"))

	testutil.AssertPassed(t, NewDefaultChecker().Verify(a, b))
}

func TestVerify_ClasspathOrderIgnored(t *testing.T) {
	a := testutil.Result("a", testutil.Record("Main.java", testutil.SourceSet("main", "a.A", "b.B", "c.C")))
	b := testutil.Result("b", testutil.Record("Main.java", testutil.SourceSet("main", "c.C", "a.A", "b.B")))

	testutil.AssertPassed(t, NewDefaultChecker().Verify(a, b))
}

func TestVerify_ClasspathDifferences(t *testing.T) {
	a := testutil.Result("a", testutil.Record("Main.java", testutil.SourceSet("main", "a.A", "b.B")))
	b := testutil.Result("b", testutil.Record("Main.java", testutil.SourceSet("main", "a.A", "c.C", "d.D")))

	report := NewDefaultChecker().Verify(a, b)

	var size, tested, comparing bool
	for _, d := range report.Discrepancies {
		if d.Kind != domain.KindFieldMismatch {
			continue
		}
		switch {
		case d.Field == "classpath.size":
			size = true
		case len(d.OnlyInTested) > 0:
			tested = true
			if diff := cmp.Diff([]string{"b.B"}, d.OnlyInTested); diff != "" {
				t.Errorf("OnlyInTested mismatch (-want +got):\n%s", diff)
			}
		case len(d.OnlyInComparing) > 0:
			comparing = true
			if diff := cmp.Diff([]string{"c.C", "d.D"}, d.OnlyInComparing); diff != "" {
				t.Errorf("OnlyInComparing mismatch (-want +got):\n%s", diff)
			}
		}
	}
	testutil.AssertTrue(t, size, "expected a classpath size discrepancy")
	testutil.AssertTrue(t, tested, "expected entries only in tested")
	testutil.AssertTrue(t, comparing, "expected entries only in comparing")
}

func TestVerify_IdentifiersAndSettingsIgnored(t *testing.T) {
	a := sampleProject()
	b := cloneProject()

	root := b.Records[0].Markers[0].(*domain.ResolutionSummary)
	root.Settings = &domain.Settings{LocalRepository: "file:///elsewhere/"}
	b.Records[2].Markers[0].(*domain.GenericMarker).Fields["settings"] = domain.SettingsValue(&domain.Settings{Offline: true})
	a.Records[2].Markers[0].(*domain.GenericMarker).Fields["settings"] = domain.SettingsValue(nil)

	testutil.AssertPassed(t, NewDefaultChecker().Verify(a, b))
}

func TestVerify_IdentifiersCheckedWhenConfigured(t *testing.T) {
	opts := DefaultOptions()
	opts.IgnoreIdentifiers = false

	report := NewChecker(opts).Verify(sampleProject(), cloneProject())
	d := testutil.AssertDiscrepancy(t, report, domain.KindFieldMismatch)
	testutil.AssertTrue(t, strings.HasSuffix(d.Field, FieldID), "expected an id field, got "+d.Field)
}

func TestVerify_SettingsCheckedWhenConfigured(t *testing.T) {
	opts := DefaultOptions()
	opts.IgnoreSettings = false

	a := sampleProject()
	b := cloneProject()
	b.Records[0].Markers[0].(*domain.ResolutionSummary).Settings = &domain.Settings{Offline: true}

	report := NewChecker(opts).Verify(a, b)
	d := testutil.AssertDiscrepancy(t, report, domain.KindFieldMismatch)
	testutil.AssertEqual(t, FieldSettings, d.Field)
}

func TestVerify_ExcludedFields(t *testing.T) {
	a := testutil.Result("a", testutil.Record("README.md", testutil.Generic("BuildTool", map[string]domain.Value{
		"version": domain.StringValue("3.9.6"),
	})))
	b := testutil.Result("b", testutil.Record("README.md", testutil.Generic("BuildTool", map[string]domain.Value{
		"version": domain.StringValue("3.8.1"),
	})))

	testutil.AssertDiscrepancy(t, NewDefaultChecker().Verify(a, b), domain.KindFieldMismatch)

	opts := DefaultOptions()
	opts.ExcludedFields = []string{"version"}
	testutil.AssertPassed(t, NewChecker(opts).Verify(a, b))
}

func TestVerify_DependencyOrderIgnored(t *testing.T) {
	deps := []domain.ResolvedDependency{
		testutil.Dependency(testutil.GAV("a", "a", "1"), domain.ScopeCompile, "file:///repo/a.jar"),
		testutil.Dependency(testutil.GAV("b", "b", "1"), domain.ScopeCompile, "file:///repo/b.jar"),
		testutil.Dependency(testutil.GAV("c", "c", "1"), domain.ScopeCompile, "file:///repo/c.jar"),
	}
	ra := testutil.WithDependencies(testutil.Resolution(testutil.GAV("g", "root", "1")), deps...)
	rb := testutil.WithDependencies(testutil.Resolution(testutil.GAV("g", "root", "1")), deps[2], deps[0], deps[1])

	a := testutil.Result("a", testutil.Record("pom.xml", ra))
	b := testutil.Result("b", testutil.Record("pom.xml", rb))

	testutil.AssertPassed(t, NewDefaultChecker().Verify(a, b))
}

func TestVerify_DependencyVersionChange(t *testing.T) {
	ra := testutil.WithDependencies(testutil.Resolution(testutil.GAV("g", "root", "1")),
		testutil.Dependency(testutil.GAV("com.example", "dep", "1.0"), domain.ScopeCompile, "file:///repo/dep.jar"))
	rb := testutil.WithDependencies(testutil.Resolution(testutil.GAV("g", "root", "1")),
		testutil.Dependency(testutil.GAV("com.example", "dep", "1.1"), domain.ScopeCompile, "file:///repo/dep.jar"))

	report := NewDefaultChecker().Verify(
		testutil.Result("a", testutil.Record("pom.xml", ra)),
		testutil.Result("b", testutil.Record("pom.xml", rb)),
	)

	d := testutil.AssertDiscrepancy(t, report, domain.KindDependencyMismatch)
	testutil.AssertEqual(t, "dependencies.compile[com.example:dep].version", d.Field)
	testutil.AssertEqual(t, "1.0", d.Tested)
	testutil.AssertEqual(t, "1.1", d.Comparing)
	testutil.AssertEqual(t, "pom.xml", d.Path)
}

func TestVerify_DependencyURITolerance(t *testing.T) {
	dep := testutil.GAV("com.example", "dep", "1.0")
	ra := testutil.WithDependencies(testutil.Resolution(testutil.GAV("g", "root", "1")),
		testutil.Dependency(dep, domain.ScopeCompile, "file:/repo/com/example/dep/1.0/dep-1.0.jar"))
	rb := testutil.WithDependencies(testutil.Resolution(testutil.GAV("g", "root", "1")),
		testutil.Dependency(dep, domain.ScopeCompile, "file:///repo/com/example/dep/1.0/dep-1.0.jar"))

	a := testutil.Result("a", testutil.Record("pom.xml", ra))
	b := testutil.Result("b", testutil.Record("pom.xml", rb))

	testutil.AssertPassed(t, NewDefaultChecker().Verify(a, b))

	opts := DefaultOptions()
	opts.URITolerance = URIToleranceStrict
	d := testutil.AssertDiscrepancy(t, NewChecker(opts).Verify(a, b), domain.KindDependencyMismatch)
	testutil.AssertTrue(t, strings.HasSuffix(d.Field, ".file"), "expected a file field, got "+d.Field)
}

func TestVerify_DependencyScopesFollowComparingSide(t *testing.T) {
	ra := testutil.WithDependencies(testutil.Resolution(testutil.GAV("g", "root", "1")),
		testutil.Dependency(testutil.GAV("a", "a", "1"), domain.ScopeCompile, ""),
		testutil.Dependency(testutil.GAV("t", "t", "1"), domain.ScopeTest, ""))
	rb := testutil.WithDependencies(testutil.Resolution(testutil.GAV("g", "root", "1")),
		testutil.Dependency(testutil.GAV("a", "a", "1"), domain.ScopeCompile, ""))

	checker := NewDefaultChecker()
	testutil.AssertPassed(t, checker.Verify(
		testutil.Result("a", testutil.Record("pom.xml", ra)),
		testutil.Result("b", testutil.Record("pom.xml", rb)),
	))

	report := checker.Verify(
		testutil.Result("b", testutil.Record("pom.xml", rb)),
		testutil.Result("a", testutil.Record("pom.xml", ra)),
	)
	d := testutil.AssertDiscrepancy(t, report, domain.KindDependencyMismatch)
	testutil.AssertEqual(t, "dependencies.test", d.Field)
	if diff := cmp.Diff([]string{"t:t:1"}, d.OnlyInComparing); diff != "" {
		t.Errorf("OnlyInComparing mismatch (-want +got):\n%s", diff)
	}
}

func TestVerify_MissingChildModule(t *testing.T) {
	build := func(withChild bool) *domain.ParsingResult {
		modules := []*domain.ResolutionSummary{testutil.Resolution(testutil.GAV("com.example", "api", "1.0"))}
		if withChild {
			modules = append(modules, testutil.Resolution(testutil.GAV("com.example", "impl", "1.0")))
		}
		root := testutil.Resolution(testutil.GAV("com.example", "parent", "1.0"), modules...)
		root.Packaging = "pom"
		return testutil.Result("r", testutil.Record("pom.xml", root))
	}

	report := NewDefaultChecker().Verify(build(true), build(false))
	d := testutil.AssertDiscrepancy(t, report, domain.KindModuleMismatch)
	if diff := cmp.Diff([]string{"com.example:impl:1.0"}, d.OnlyInTested); diff != "" {
		t.Errorf("OnlyInTested mismatch (-want +got):\n%s", diff)
	}
	testutil.AssertTrue(t, strings.Contains(d.String(), "com.example:impl:1.0"), "expected the module GAV in the message")
}

func TestVerify_ModuleOrderIgnored(t *testing.T) {
	api := testutil.GAV("com.example", "api", "1.0")
	impl := testutil.GAV("com.example", "impl", "1.0")

	a := testutil.Result("a", testutil.Record("pom.xml",
		testutil.Resolution(testutil.GAV("g", "p", "1"), testutil.Resolution(api), testutil.Resolution(impl))))
	b := testutil.Result("b", testutil.Record("pom.xml",
		testutil.Resolution(testutil.GAV("g", "p", "1"), testutil.Resolution(impl), testutil.Resolution(api))))

	testutil.AssertPassed(t, NewDefaultChecker().Verify(a, b))
}

func TestVerify_NestedModuleDependency(t *testing.T) {
	build := func(version string) *domain.ParsingResult {
		child := testutil.WithDependencies(testutil.Resolution(testutil.GAV("g", "child", "1")),
			testutil.Dependency(testutil.GAV("x", "y", version), domain.ScopeRuntime, ""))
		return testutil.Result("r", testutil.Record("pom.xml", testutil.Resolution(testutil.GAV("g", "root", "1"), child)))
	}

	report := NewDefaultChecker().Verify(build("1"), build("2"))
	d := testutil.AssertDiscrepancy(t, report, domain.KindDependencyMismatch)
	testutil.AssertEqual(t, "modules[g:child:1].dependencies.runtime[x:y].version", d.Field)
}

func TestVerify_MissingMarker(t *testing.T) {
	a := testutil.Result("a", testutil.Record("Main.java"))
	b := testutil.Result("b", testutil.Record("Main.java", testutil.SourceSet("main", "a.A")))

	d := testutil.AssertDiscrepancy(t, NewDefaultChecker().Verify(a, b), domain.KindMissingMarker)
	testutil.AssertEqual(t, domain.TagJavaSourceSet, d.Marker)

	d = testutil.AssertDiscrepancy(t, NewDefaultChecker().Verify(b, a), domain.KindMissingMarker)
	testutil.AssertEqual(t, domain.TagJavaSourceSet, d.Marker)
}

func TestVerify_MarkerVariantMismatch(t *testing.T) {
	a := testutil.Result("a", testutil.Record("Main.java", testutil.Generic(domain.TagJavaSourceSet, nil)))
	b := testutil.Result("b", testutil.Record("Main.java", testutil.SourceSet("main")))

	testutil.AssertDiscrepancy(t, NewDefaultChecker().Verify(a, b), domain.KindMissingMarker)
}

func TestVerify_MissingMarkerNamesTheAbsentTag(t *testing.T) {
	buildTool := testutil.Generic(domain.TagBuildTool, map[string]domain.Value{"name": domain.StringValue("maven")})
	a := testutil.Result("a", testutil.Record("A.java", buildTool, testutil.SourceSet("main", "a.A")))
	b := testutil.Result("b", testutil.Record("A.java", testutil.SourceSet("main", "a.A")))

	tests := []struct {
		name    string
		report  *domain.ParityReport
		message string
	}{
		{"extra in tested", NewDefaultChecker().Verify(a, b), "comparing record has no BuildTool marker"},
		{"extra in comparing", NewDefaultChecker().Verify(b, a), "tested record has no BuildTool marker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.report.Discrepancies) != 1 {
				t.Fatalf("Expected one discrepancy, got %v", tt.report.Discrepancies)
			}
			d := tt.report.Discrepancies[0]
			testutil.AssertEqual(t, domain.KindMissingMarker, d.Kind)
			testutil.AssertEqual(t, domain.TagBuildTool, d.Marker)
			testutil.AssertEqual(t, tt.message, d.Message)
		})
	}
}

func TestVerify_MarkerVariantMismatchNamesVariants(t *testing.T) {
	a := testutil.Result("a", testutil.Record("Main.java", testutil.Generic(domain.TagJavaSourceSet, nil)))
	b := testutil.Result("b", testutil.Record("Main.java", testutil.SourceSet("main")))

	d := testutil.AssertDiscrepancy(t, NewDefaultChecker().Verify(a, b), domain.KindMissingMarker)
	testutil.AssertEqual(t, domain.TagJavaSourceSet, d.Marker)
	testutil.AssertEqual(t, "*domain.GenericMarker", d.Tested)
	testutil.AssertEqual(t, "*domain.ClasspathDescriptor", d.Comparing)
}

func TestVerify_SurfacesAllDiscrepancies(t *testing.T) {
	a := testutil.Result("a",
		testutil.Record("pom.xml", testutil.Resolution(testutil.GAV("g", "root", "1"))),
		testutil.Record("Main.java", testutil.SourceSet("main", "a.A")),
		testutil.Record("extra.txt"),
	)
	b := testutil.Result("b",
		testutil.Record("pom.xml", testutil.Resolution(testutil.GAV("g", "root", "2"))),
		testutil.Record("Main.java", testutil.SourceSet("main", "b.B")),
	)

	counts := NewDefaultChecker().Verify(a, b).CountByKind()
	testutil.AssertEqual(t, 1, counts[domain.KindCountMismatch])
	testutil.AssertEqual(t, 1, counts[domain.KindPathSetMismatch])
	testutil.AssertTrue(t, counts[domain.KindFieldMismatch] >= 3, "expected version and classpath mismatches")
}

func TestVerify_NoDuplicateDiscrepancies(t *testing.T) {
	a := testutil.Result("a", testutil.Record("pom.xml", testutil.Resolution(testutil.GAV("g", "root", "1"))))
	b := testutil.Result("b", testutil.Record("pom.xml", testutil.Resolution(testutil.GAV("g", "root", "2"))))

	report := NewDefaultChecker().Verify(a, b)
	testutil.AssertEqual(t, 1, len(report.Discrepancies))
	testutil.AssertEqual(t, "gav.version", report.Discrepancies[0].Field)
}

func TestVerify_InputsNotModified(t *testing.T) {
	a := testutil.Result("a", testutil.Record("b.java"), testutil.Record("a.java"))
	b := testutil.Result("b", testutil.Record("a.java"), testutil.Record("b.java"))

	NewDefaultChecker().Verify(a, b)
	testutil.AssertEqual(t, "b.java", a.Records[0].Path)
	testutil.AssertEqual(t, "a.java", b.Records[0].Path)
}

func TestCheck_MismatchError(t *testing.T) {
	checker := NewDefaultChecker()
	testutil.AssertNoError(t, checker.Check(sampleProject(), cloneProject()))

	err := checker.Check(testutil.Result("a", testutil.Record("x")), testutil.Result("b"))
	testutil.AssertError(t, err)
	testutil.AssertTrue(t, errors.Is(err, ErrParityMismatch), "expected ErrParityMismatch")

	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Expected *MismatchError, got %T", err)
	}
	testutil.AssertEqual(t, 2, len(mismatch.Report.Discrepancies))
	testutil.AssertTrue(t, strings.Contains(err.Error(), "2 discrepancies found"), err.Error())
}

func TestFieldFilter_Skips(t *testing.T) {
	filter := newFieldFilter(DefaultOptions(), kindDependencies).withNames(FieldClasspath)

	tests := []struct {
		fd   field
		want bool
	}{
		{field{name: FieldID, kind: kindID, scalar: uuid.NewString()}, true},
		{field{name: FieldSettings, kind: kindSettings}, true},
		{field{name: FieldDependencies, kind: kindDependencies}, true},
		{field{name: FieldClasspath, kind: kindList}, true},
		{field{name: "packaging", kind: kindScalar}, false},
	}
	for _, tt := range tests {
		t.Run(tt.fd.name, func(t *testing.T) {
			testutil.AssertEqual(t, tt.want, filter.skips(tt.fd))
		})
	}
}
