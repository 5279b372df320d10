package mavensettings

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// settingsXML mirrors the subset of settings.xml that mvnparity uses
type settingsXML struct {
	XMLName         xml.Name     `xml:"settings"`
	LocalRepository string       `xml:"localRepository"`
	Offline         string       `xml:"offline"`
	ActiveProfiles  []string     `xml:"activeProfiles>activeProfile"`
	Profiles        []profileXML `xml:"profiles>profile"`
	Mirrors         []mirrorXML  `xml:"mirrors>mirror"`
	Servers         []serverXML  `xml:"servers>server"`
}

type profileXML struct {
	ID           string          `xml:"id"`
	Activation   activationXML   `xml:"activation"`
	Repositories []repositoryXML `xml:"repositories>repository"`
}

type activationXML struct {
	ActiveByDefault string `xml:"activeByDefault"`
}

type repositoryXML struct {
	ID        string     `xml:"id"`
	URL       string     `xml:"url"`
	Releases  *policyXML `xml:"releases"`
	Snapshots *policyXML `xml:"snapshots"`
}

type policyXML struct {
	Enabled string `xml:"enabled"`
}

type mirrorXML struct {
	ID       string `xml:"id"`
	URL      string `xml:"url"`
	MirrorOf string `xml:"mirrorOf"`
}

type serverXML struct {
	ID       string `xml:"id"`
	Username string `xml:"username"`
	Password string `xml:"password"`
}

// securityXML mirrors settings-security.xml
type securityXML struct {
	XMLName  xml.Name `xml:"settingsSecurity"`
	Master   string   `xml:"master"`
	Relocate string   `xml:"relocation"`
}

func decodeSettings(r io.Reader) (*settingsXML, error) {
	var s settingsXML
	if err := xml.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func readSettingsFile(path string) (*settingsXML, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := decodeSettings(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return s, nil
}

// readSecurityFile reads settings-security.xml, following a single relocation
func readSecurityFile(path string) (*securityXML, error) {
	s, err := decodeSecurity(path)
	if err != nil {
		return nil, err
	}
	if reloc := strings.TrimSpace(s.Relocate); reloc != "" {
		return decodeSecurity(reloc)
	}
	return s, nil
}

func decodeSecurity(path string) (*securityXML, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s securityXML
	if err := xml.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &s, nil
}
