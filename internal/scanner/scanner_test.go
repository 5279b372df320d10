package scanner

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ludo-technologies/mvnparity/domain"
	"github.com/ludo-technologies/mvnparity/internal/parity"
	"github.com/ludo-technologies/mvnparity/internal/testutil"
)

const rootPOM = `<project>
  <modelVersion>4.0.0</modelVersion>
  <groupId>com.example</groupId>
  <artifactId>parent</artifactId>
  <version>1.0.0</version>
  <packaging>pom</packaging>
  <properties>
    <junit.version>4.13.2</junit.version>
  </properties>
  <modules>
    <module>api</module>
    <module>app</module>
  </modules>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>junit</groupId>
        <artifactId>junit</artifactId>
        <version>${junit.version}</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
</project>`

const apiPOM = `<project>
  <parent>
    <groupId>com.example</groupId>
    <artifactId>parent</artifactId>
    <version>1.0.0</version>
  </parent>
  <artifactId>api</artifactId>
</project>`

const appPOM = `<project>
  <parent>
    <groupId>com.example</groupId>
    <artifactId>parent</artifactId>
    <version>1.0.0</version>
  </parent>
  <artifactId>app</artifactId>
  <dependencies>
    <dependency>
      <groupId>${project.groupId}</groupId>
      <artifactId>api</artifactId>
      <version>${project.version}</version>
    </dependency>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <scope>test</scope>
    </dependency>
  </dependencies>
</project>`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	testutil.WriteFile(t, dir, "pom.xml", rootPOM)
	testutil.WriteFile(t, dir, "README.md", "# sample\n")
	testutil.WriteFile(t, dir, ".gitignore", "*.log\n")
	testutil.WriteFile(t, dir, "debug.log", "ignored\n")
	testutil.WriteFile(t, dir, "target/classes/stale.txt", "ignored\n")

	testutil.WriteFile(t, dir, "api/pom.xml", apiPOM)
	testutil.WriteFile(t, dir, "api/src/main/java/com/example/api/Greeter.java",
		"package com.example.api;\n\npublic interface Greeter { String greet(String name); }\n")

	testutil.WriteFile(t, dir, "app/pom.xml", appPOM)
	testutil.WriteFile(t, dir, "app/src/main/java/com/example/app/App.java", `package com.example.app;

import com.example.api.Greeter;

public class App implements Greeter {
    public String greet(String name) { return "hi " + name; }
    static class Helper {}
}
`)
	testutil.WriteFile(t, dir, "app/src/main/java/com/example/app/Config.java",
		"package com.example.app;\n\nrecord Config(String name) {}\n")
	testutil.WriteFile(t, dir, "app/src/test/java/com/example/app/AppTest.java",
		"package com.example.app;\n\nclass AppTest {}\n")
	return dir
}

func testContext() *domain.ExecutionContext {
	ec := domain.NewExecutionContext()
	ec.SetSettings(&domain.Settings{LocalRepository: "file:///home/dev/.m2/repository/"})
	return ec
}

func scanProject(t *testing.T, dir string, opts Options) *domain.ParsingResult {
	t.Helper()
	if opts.ExcludePatterns == nil {
		opts.ExcludePatterns = DefaultExcludePatterns
	}
	result, err := New(opts).Parse(context.Background(), dir, testContext())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return result
}

func TestParse_Paths(t *testing.T) {
	result := scanProject(t, writeProject(t), Options{RespectGitignore: true})

	want := []string{
		".gitignore",
		"README.md",
		"api/pom.xml",
		"api/src/main/java/com/example/api/Greeter.java",
		"app/pom.xml",
		"app/src/main/java/com/example/app/App.java",
		"app/src/main/java/com/example/app/Config.java",
		"app/src/test/java/com/example/app/AppTest.java",
		"pom.xml",
	}
	if diff := cmp.Diff(want, result.Paths()); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
	if result.Parser != "scanner" {
		t.Errorf("Expected parser name 'scanner', got %q", result.Parser)
	}
}

func TestParse_GitignoreDisabled(t *testing.T) {
	result := scanProject(t, writeProject(t), Options{})

	found := false
	for _, p := range result.Paths() {
		if p == "debug.log" {
			found = true
		}
	}
	if !found {
		t.Error("Expected debug.log when .gitignore is not respected")
	}
}

func findRecord(t *testing.T, r *domain.ParsingResult, path string) domain.SourceRecord {
	t.Helper()
	for _, rec := range r.Records {
		if rec.Path == path {
			return rec
		}
	}
	t.Fatalf("record %s not found", path)
	return domain.SourceRecord{}
}

func TestParse_ResolutionSummary(t *testing.T) {
	result := scanProject(t, writeProject(t), Options{})

	m, ok := findRecord(t, result, "pom.xml").FindMarker(domain.TagResolutionSummary)
	if !ok {
		t.Fatal("Expected a resolution summary on pom.xml")
	}
	root := m.(*domain.ResolutionSummary)

	if root.GAV.String() != "com.example:parent:1.0.0" {
		t.Errorf("Unexpected root GAV %s", root.GAV)
	}
	if root.Packaging != "pom" {
		t.Errorf("Expected pom packaging, got %s", root.Packaging)
	}
	if len(root.Modules) != 2 {
		t.Fatalf("Expected 2 modules, got %d", len(root.Modules))
	}

	app := root.Modules[1]
	if app.GAV.String() != "com.example:app:1.0.0" {
		t.Errorf("Unexpected module GAV %s", app.GAV)
	}
	if app.Parent == nil || app.Parent.ArtifactID != "parent" {
		t.Errorf("Expected parent coordinates, got %+v", app.Parent)
	}
	if app.Settings == nil || app.Settings.LocalRepository != "file:///home/dev/.m2/repository/" {
		t.Errorf("Expected settings snapshot, got %+v", app.Settings)
	}

	compile := app.Dependencies[domain.ScopeCompile]
	if len(compile) != 1 {
		t.Fatalf("Expected 1 compile dependency, got %d", len(compile))
	}
	if compile[0].GAV.String() != "com.example:api:1.0.0" {
		t.Errorf("Unexpected compile dependency %s", compile[0].GAV)
	}
	wantFile := "file:///home/dev/.m2/repository/com/example/api/1.0.0/api-1.0.0.jar"
	if compile[0].File != wantFile {
		t.Errorf("Expected file %s, got %s", wantFile, compile[0].File)
	}

	test := app.Dependencies[domain.ScopeTest]
	if len(test) != 1 || test[0].GAV.Version != "4.13.2" {
		t.Errorf("Expected managed junit 4.13.2, got %+v", test)
	}
}

func TestParse_Classpaths(t *testing.T) {
	result := scanProject(t, writeProject(t), Options{})

	m, ok := findRecord(t, result, "app/src/main/java/com/example/app/App.java").FindMarker(domain.TagJavaSourceSet)
	if !ok {
		t.Fatal("Expected a source set marker")
	}
	main := m.(*domain.ClasspathDescriptor)
	if main.Name != "main" {
		t.Errorf("Expected source set 'main', got %q", main.Name)
	}
	want := []string{"com.example.app.App", "com.example.app.App$Helper", "com.example.app.Config"}
	if diff := cmp.Diff(want, main.Classpath); diff != "" {
		t.Errorf("classpath mismatch (-want +got):\n%s", diff)
	}

	m, _ = findRecord(t, result, "app/src/test/java/com/example/app/AppTest.java").FindMarker(domain.TagJavaSourceSet)
	test := m.(*domain.ClasspathDescriptor)
	if test.Name != "test" {
		t.Errorf("Expected source set 'test', got %q", test.Name)
	}
	if diff := cmp.Diff([]string{"com.example.app.AppTest"}, test.Classpath); diff != "" {
		t.Errorf("classpath mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_BuildToolMarker(t *testing.T) {
	result := scanProject(t, writeProject(t), Options{})

	m, ok := findRecord(t, result, "api/src/main/java/com/example/api/Greeter.java").FindMarker(domain.TagBuildTool)
	if !ok {
		t.Fatal("Expected a build tool marker")
	}
	g := m.(*domain.GenericMarker)
	if g.Fields["module"].Str != "api" {
		t.Errorf("Expected module 'api', got %q", g.Fields["module"].Str)
	}
}

func TestParse_TwoRunsHaveParity(t *testing.T) {
	dir := writeProject(t)
	checker := parity.NewDefaultChecker()

	a := scanProject(t, dir, Options{Name: "a"})
	b := scanProject(t, dir, Options{Name: "b", URIStyle: URIStyleSingleSlash})

	report := checker.Verify(a, b)
	testutil.AssertPassed(t, report)

	opts := parity.DefaultOptions()
	opts.URITolerance = parity.URIToleranceStrict
	strict := parity.NewChecker(opts).Verify(a, b)
	testutil.AssertDiscrepancy(t, strict, domain.KindDependencyMismatch)
}

func TestParse_Errors(t *testing.T) {
	if _, err := New(Options{}).Parse(context.Background(), "/does/not/exist", nil); err == nil {
		t.Error("Expected error for missing root")
	}

	dir := t.TempDir()
	file := testutil.WriteFile(t, dir, "file.txt", "x")
	if _, err := New(Options{}).Parse(context.Background(), file, nil); err == nil {
		t.Error("Expected error for non-directory root")
	}

	testutil.WriteFile(t, dir, "pom.xml", "<project><artifactId>")
	if _, err := New(Options{}).Parse(context.Background(), dir, nil); err == nil {
		t.Error("Expected error for malformed pom")
	}

	if _, err := New(Options{ExcludePatterns: []string{"[unclosed"}}).Parse(context.Background(), dir, nil); err == nil {
		t.Error("Expected error for invalid exclude pattern")
	}
}

func TestParse_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(Options{}).Parse(ctx, writeProject(t), testContext()); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestArtifactURI(t *testing.T) {
	gav := domain.GAV{GroupID: "org.example", ArtifactID: "lib", Version: "2.1"}
	repo := "file:///repo/"

	tests := []struct {
		name       string
		typ        string
		classifier string
		style      URIStyle
		want       string
	}{
		{"jar", "jar", "", URIStyleTripleSlash, "file:///repo/org/example/lib/2.1/lib-2.1.jar"},
		{"classifier", "jar", "sources", URIStyleTripleSlash, "file:///repo/org/example/lib/2.1/lib-2.1-sources.jar"},
		{"pom", "pom", "", URIStyleTripleSlash, "file:///repo/org/example/lib/2.1/lib-2.1.pom"},
		{"test-jar", "test-jar", "tests", URIStyleTripleSlash, "file:///repo/org/example/lib/2.1/lib-2.1-tests.jar"},
		{"single slash", "jar", "", URIStyleSingleSlash, "file:/repo/org/example/lib/2.1/lib-2.1.jar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := artifactURI(repo, gav, tt.typ, tt.classifier, tt.style); got != tt.want {
				t.Errorf("artifactURI() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := artifactURI(repo, domain.GAV{GroupID: "g", ArtifactID: "a", Version: "${missing}"}, "jar", "", URIStyleTripleSlash); got != "" {
		t.Errorf("Expected empty URI for unresolved version, got %q", got)
	}
}

func TestSourceSetOf(t *testing.T) {
	tests := []struct {
		module, rel string
		want        string
	}{
		{".", "src/main/java/A.java", "main"},
		{".", "src/test/java/A.java", "test"},
		{"app", "app/src/integration/java/A.java", "integration"},
		{".", "A.java", "main"},
	}
	for _, tt := range tests {
		if got := sourceSetOf(tt.module, tt.rel).name; got != tt.want {
			t.Errorf("sourceSetOf(%q, %q) = %q, want %q", tt.module, tt.rel, got, tt.want)
		}
	}
}
