// Package translate holds the static source→display lookup tables consulted
// by the row builder. Tables load once at startup from an embedded document
// and are read-only afterwards. Lookups fall back to the original string.
package translate

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed translations.yaml
var rawTables []byte

type tables struct {
	Attributes map[string]string `yaml:"attributes"`
	Values     map[string]string `yaml:"values"`
	ColourAttr []string          `yaml:"colour_attributes"`
}

var (
	attributeNames map[string]string
	valueNames     map[string]string
	colourAttrs    map[string]struct{}
)

func init() {
	var t tables
	if err := yaml.Unmarshal(rawTables, &t); err != nil {
		panic(fmt.Sprintf("translate: bad embedded tables: %v", err))
	}
	attributeNames = t.Attributes
	valueNames = t.Values
	colourAttrs = make(map[string]struct{}, len(t.ColourAttr))
	for _, name := range t.ColourAttr {
		colourAttrs[strings.ToLower(name)] = struct{}{}
	}
}

// AttributeName returns the display name for a source attribute, or the input
// unchanged when no translation exists.
func AttributeName(name string) string {
	if out, ok := attributeNames[name]; ok {
		return out
	}
	return name
}

// Value translates an enumerated attribute or feature value by exact match,
// falling back to the input.
func Value(v string) string {
	if out, ok := valueNames[v]; ok {
		return out
	}
	return v
}

// HasValue reports whether an exact whole-value translation exists.
func HasValue(v string) bool {
	_, ok := valueNames[v]
	return ok
}

// IsColourAttribute reports whether the attribute carries proper-noun colour
// values that must never go through value translation.
func IsColourAttribute(name string) bool {
	_, ok := colourAttrs[strings.ToLower(strings.TrimSpace(name))]
	return ok
}
