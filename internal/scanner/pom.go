package scanner

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// pomXML mirrors the subset of a POM that the scanner resolves
type pomXML struct {
	XMLName      xml.Name        `xml:"project"`
	GroupID      string          `xml:"groupId"`
	ArtifactID   string          `xml:"artifactId"`
	Version      string          `xml:"version"`
	Packaging    string          `xml:"packaging"`
	Parent       *parentXML      `xml:"parent"`
	Properties   propertiesXML   `xml:"properties"`
	Modules      []string        `xml:"modules>module"`
	Dependencies []dependencyXML `xml:"dependencies>dependency"`
	Management   []dependencyXML `xml:"dependencyManagement>dependencies>dependency"`
}

type parentXML struct {
	GroupID      string `xml:"groupId"`
	ArtifactID   string `xml:"artifactId"`
	Version      string `xml:"version"`
	RelativePath string `xml:"relativePath"`
}

type dependencyXML struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Type       string `xml:"type"`
	Classifier string `xml:"classifier"`
	Scope      string `xml:"scope"`
}

// propertiesXML collects arbitrary <properties> children
type propertiesXML struct {
	Entries []propertyXML `xml:",any"`
}

type propertyXML struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// pomFile is a parsed POM together with its location
type pomFile struct {
	path   string
	model  *pomXML
	parent *pomFile
}

func readPOM(path string) (*pomXML, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var p pomXML
	if err := xml.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("invalid pom %s: %w", path, err)
	}
	return &p, nil
}

// groupID returns the effective group id, inherited from the parent when unset
func (p *pomFile) groupID() string {
	if g := strings.TrimSpace(p.model.GroupID); g != "" {
		return p.interpolate(g)
	}
	if p.model.Parent != nil {
		return strings.TrimSpace(p.model.Parent.GroupID)
	}
	return ""
}

func (p *pomFile) artifactID() string {
	return p.interpolate(strings.TrimSpace(p.model.ArtifactID))
}

// version returns the effective version, inherited from the parent when unset
func (p *pomFile) version() string {
	if v := strings.TrimSpace(p.model.Version); v != "" {
		return p.interpolate(v)
	}
	if p.model.Parent != nil {
		return strings.TrimSpace(p.model.Parent.Version)
	}
	return ""
}

func (p *pomFile) packaging() string {
	if pk := strings.TrimSpace(p.model.Packaging); pk != "" {
		return pk
	}
	return "jar"
}

// properties returns the effective properties: the parent chain first, then own values
func (p *pomFile) properties() map[string]string {
	props := map[string]string{}
	if p.parent != nil {
		for k, v := range p.parent.properties() {
			props[k] = v
		}
	}
	for _, e := range p.model.Properties.Entries {
		props[e.XMLName.Local] = strings.TrimSpace(e.Value)
	}
	return props
}

// property resolves a single placeholder name
func (p *pomFile) property(name string) (string, bool) {
	switch name {
	case "project.groupId", "pom.groupId", "project.version", "pom.version":
		return p.rawCoordinate(name)
	case "project.artifactId", "pom.artifactId":
		return strings.TrimSpace(p.model.ArtifactID), true
	case "project.parent.version":
		if p.model.Parent != nil {
			return strings.TrimSpace(p.model.Parent.Version), true
		}
	case "project.parent.groupId":
		if p.model.Parent != nil {
			return strings.TrimSpace(p.model.Parent.GroupID), true
		}
	}
	v, ok := p.properties()[name]
	return v, ok
}

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolate replaces ${...} placeholders, leaving unknown ones intact.
// Nested placeholders are resolved up to a fixed depth.
func (p *pomFile) interpolate(s string) string {
	for i := 0; i < 8 && strings.Contains(s, "${"); i++ {
		next := placeholder.ReplaceAllStringFunc(s, func(m string) string {
			if v, ok := p.property(m[2 : len(m)-1]); ok {
				return v
			}
			return m
		})
		if next == s {
			break
		}
		s = next
	}
	return s
}

// rawCoordinate returns the declared group id or version, falling back to the parent's
func (p *pomFile) rawCoordinate(name string) (string, bool) {
	var own, inherited string
	if strings.HasSuffix(name, "groupId") {
		own = p.model.GroupID
		if p.model.Parent != nil {
			inherited = p.model.Parent.GroupID
		}
	} else {
		own = p.model.Version
		if p.model.Parent != nil {
			inherited = p.model.Parent.Version
		}
	}
	if own = strings.TrimSpace(own); own != "" {
		return own, true
	}
	if inherited = strings.TrimSpace(inherited); inherited != "" {
		return inherited, true
	}
	return "", false
}

// managedVersion looks up a version in the dependencyManagement of p and its parents
func (p *pomFile) managedVersion(groupID, artifactID string) string {
	for cur := p; cur != nil; cur = cur.parent {
		for _, d := range cur.model.Management {
			if cur.interpolate(strings.TrimSpace(d.GroupID)) == groupID &&
				cur.interpolate(strings.TrimSpace(d.ArtifactID)) == artifactID {
				return cur.interpolate(strings.TrimSpace(d.Version))
			}
		}
	}
	return ""
}

// parentPath returns the path of the local parent POM, or "" when none applies
func (p *pomFile) parentPath() string {
	if p.model.Parent == nil {
		return ""
	}
	rel := strings.TrimSpace(p.model.Parent.RelativePath)
	if rel == "" {
		rel = "../pom.xml"
	}
	candidate := filepath.Join(filepath.Dir(p.path), filepath.FromSlash(rel))
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		candidate = filepath.Join(candidate, "pom.xml")
	}
	return candidate
}
