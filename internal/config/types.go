package config

import (
	"regexp"

	"oilgas-backend/internal/vdsmodel"
)

// PrefixDef is one entry of the valve-type prefix table.
type PrefixDef struct {
	Name            string `yaml:"name"`
	PrimaryStandard string `yaml:"primaryStandard"`
}

// Grammar is the compiled form of vds_rules.yaml: everything the decoder
// needs to parse a raw VDS string.
type Grammar struct {
	Prefixes                  map[string]PrefixDef
	PrefixesByLengthDesc       []string
	Bores                      map[string]string
	MetalSeatedFlagValveTypes  map[string]bool
	MetalSeatedFlagChar        string
	PipingClassRegex           *regexp.Regexp
	Modifiers                  map[string]string // letter -> DecodedVDS boolean attribute name
	EndConnections             map[string]string // letter -> display text
}

// MaterialMap is the fully merged (inherits + overrides resolved) set of
// component values for one material key, e.g. "CS", "LTCS_NACE".
type MaterialMap map[string]interface{}

// Config is the immutable, fully validated configuration produced by Load.
// Every field is read-only after construction.
type Config struct {
	Grammar   Grammar
	Fields    []vdsmodel.FieldDefinition
	Materials map[string]MaterialMap

	// Warnings collects the non-fatal problems Load detected (e.g. a field
	// referencing a material component absent from some relevant map).
	Warnings []string
}

// FieldByName returns the schema entry for fieldName, or false if absent.
func (c *Config) FieldByName(name string) (vdsmodel.FieldDefinition, bool) {
	for _, f := range c.Fields {
		if f.FieldName == name {
			return f, true
		}
	}
	return vdsmodel.FieldDefinition{}, false
}

// Sections returns the section names in schema order, each exactly once.
func (c *Config) Sections() []string {
	seen := make(map[string]bool)
	var order []string
	for _, f := range c.Fields {
		if !seen[f.Section] {
			seen[f.Section] = true
			order = append(order, f.Section)
		}
	}
	return order
}
