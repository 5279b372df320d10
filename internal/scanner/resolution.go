package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ludo-technologies/mvnparity/domain"
	"github.com/ludo-technologies/mvnparity/internal/logging"
)

// pomLoader parses POM files once and links them to their local parents
type pomLoader struct {
	cache   map[string]*pomFile
	loading map[string]bool
}

func newPOMLoader() *pomLoader {
	return &pomLoader{
		cache:   make(map[string]*pomFile),
		loading: make(map[string]bool),
	}
}

func (l *pomLoader) load(path string) (*pomFile, error) {
	path = filepath.Clean(path)
	if pf, ok := l.cache[path]; ok {
		return pf, nil
	}
	if l.loading[path] {
		return nil, fmt.Errorf("parent cycle through %s", path)
	}
	l.loading[path] = true
	defer delete(l.loading, path)

	model, err := readPOM(path)
	if err != nil {
		return nil, err
	}
	pf := &pomFile{path: path, model: model}

	if pp := pf.parentPath(); pp != "" && isFile(pp) {
		parent, err := l.load(pp)
		if err != nil {
			return nil, err
		}
		if parent.artifactID() == strings.TrimSpace(model.Parent.ArtifactID) {
			pf.parent = parent
		}
	}

	l.cache[path] = pf
	return pf, nil
}

// resolver turns POM files into resolution summaries
type resolver struct {
	loader   *pomLoader
	ec       *domain.ExecutionContext
	uriStyle URIStyle
}

// resolve builds the summary of the POM at path and, recursively, of its modules
func (r *resolver) resolve(ctx context.Context, path string) (*domain.ResolutionSummary, error) {
	return r.resolveModule(ctx, path, map[string]bool{})
}

func (r *resolver) resolveModule(ctx context.Context, path string, visiting map[string]bool) (*domain.ResolutionSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pf, err := r.loader.load(path)
	if err != nil {
		return nil, err
	}
	if visiting[pf.path] {
		return nil, fmt.Errorf("module cycle through %s", pf.path)
	}
	visiting[pf.path] = true
	defer delete(visiting, pf.path)

	summary := &domain.ResolutionSummary{
		ID: uuid.New(),
		GAV: domain.GAV{
			GroupID:    pf.groupID(),
			ArtifactID: pf.artifactID(),
			Version:    pf.version(),
		},
		Packaging:    pf.packaging(),
		Properties:   pf.properties(),
		Dependencies: r.dependencies(pf),
		Settings:     r.ec.Settings(),
	}
	if p := pf.model.Parent; p != nil {
		summary.Parent = &domain.GAV{
			GroupID:    strings.TrimSpace(p.GroupID),
			ArtifactID: strings.TrimSpace(p.ArtifactID),
			Version:    strings.TrimSpace(p.Version),
		}
	}

	for _, module := range pf.model.Modules {
		modulePath := modulePOMPath(pf.path, pf.interpolate(strings.TrimSpace(module)))
		child, err := r.resolveModule(ctx, modulePath, visiting)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logging.FromContext(ctx).Warn("module pom not found", "module", module, "path", modulePath)
				continue
			}
			return nil, err
		}
		summary.Modules = append(summary.Modules, child)
	}
	return summary, nil
}

func (r *resolver) dependencies(pf *pomFile) map[domain.Scope][]domain.ResolvedDependency {
	deps := make(map[domain.Scope][]domain.ResolvedDependency)
	localRepo := r.ec.LocalRepository().URI

	for _, d := range pf.model.Dependencies {
		gav := domain.GAV{
			GroupID:    pf.interpolate(strings.TrimSpace(d.GroupID)),
			ArtifactID: pf.interpolate(strings.TrimSpace(d.ArtifactID)),
			Version:    pf.interpolate(strings.TrimSpace(d.Version)),
		}
		if gav.Version == "" {
			gav.Version = pf.managedVersion(gav.GroupID, gav.ArtifactID)
		}

		typ := strings.TrimSpace(d.Type)
		if typ == "" {
			typ = "jar"
		}
		classifier := pf.interpolate(strings.TrimSpace(d.Classifier))
		scope := domain.ParseScope(pf.interpolate(d.Scope))

		deps[scope] = append(deps[scope], domain.ResolvedDependency{
			ID:         uuid.New(),
			GAV:        gav,
			Scope:      scope,
			Type:       typ,
			Classifier: classifier,
			File:       artifactURI(localRepo, gav, typ, classifier, r.uriStyle),
		})
	}
	return deps
}

// modulePOMPath resolves a <module> entry relative to the declaring POM
func modulePOMPath(pomPath, module string) string {
	p := filepath.Join(filepath.Dir(pomPath), filepath.FromSlash(module))
	if strings.HasSuffix(strings.ToLower(p), ".xml") {
		return p
	}
	return filepath.Join(p, "pom.xml")
}

// artifactURI returns the location of an artifact inside the local repository,
// or "" when the coordinates are incomplete or contain unresolved placeholders
func artifactURI(localRepo string, gav domain.GAV, typ, classifier string, style URIStyle) string {
	if localRepo == "" || gav.GroupID == "" || gav.ArtifactID == "" || gav.Version == "" ||
		strings.Contains(gav.String(), "${") {
		return ""
	}

	name := gav.ArtifactID + "-" + gav.Version
	if classifier != "" {
		name += "-" + classifier
	}
	name += "." + extension(typ)

	uri := strings.TrimRight(localRepo, "/") + "/" +
		strings.ReplaceAll(gav.GroupID, ".", "/") + "/" +
		gav.ArtifactID + "/" + gav.Version + "/" + name
	return style.apply(uri)
}

func extension(typ string) string {
	switch typ {
	case "", "jar", "test-jar", "maven-plugin", "ejb", "ejb-client", "java-source", "javadoc":
		return "jar"
	default:
		return typ
	}
}
