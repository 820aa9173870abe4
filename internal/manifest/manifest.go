// Package manifest reads and validates the plugin manifest stored at
// .claude-plugin/plugin.json.
package manifest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
)

const (
	// Dir is the plugin metadata directory.
	Dir = ".claude-plugin"
	// Filename is the manifest file inside Dir.
	Filename = "plugin.json"
	// Path is the manifest path relative to the plugin root.
	Path = Dir + "/" + Filename
)

// RequiredFields lists the manifest keys that must be present and non-empty.
var RequiredFields = []string{"name", "displayName", "description", "version"}

// Manifest is the plugin descriptor read by the host application.
type Manifest struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Version     string `json:"version"`

	// Raw holds every top-level key as decoded, including unknown ones.
	Raw map[string]interface{} `json:"-"`
}

// Parse decodes a manifest. The document must be a JSON object.
func Parse(data []byte) (*Manifest, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("manifest is not a JSON object: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("manifest is not a JSON object: got null")
	}

	m := &Manifest{Raw: raw}
	m.Name = stringField(raw, "name")
	m.DisplayName = stringField(raw, "displayName")
	m.Description = stringField(raw, "description")
	m.Version = stringField(raw, "version")
	return m, nil
}

// Load reads and parses the manifest at path within fsys.
func Load(fsys fs.FS, path string) (*Manifest, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data)
}

func stringField(raw map[string]interface{}, key string) string {
	s, _ := raw[key].(string)
	return s
}

// MissingFields returns required keys that are absent or empty. A non-string
// value counts as present when it is not the zero value of its JSON type.
func (m *Manifest) MissingFields() []string {
	var missing []string
	for _, key := range RequiredFields {
		if isEmpty(m.Raw[key]) {
			missing = append(missing, key)
		}
	}
	return missing
}

func isEmpty(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case float64:
		return val == 0
	case []interface{}:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	default:
		return false
	}
}

// VersionParts splits the version on dots.
func (m *Manifest) VersionParts() []string {
	if m.Version == "" {
		return nil
	}
	return strings.Split(m.Version, ".")
}

// IsSemanticVersion reports whether the version has at least three
// dot-separated components.
func (m *Manifest) IsSemanticVersion() bool {
	return len(m.VersionParts()) >= 3
}
