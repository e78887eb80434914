package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"oilgas-backend/internal/vdsmodel"
	"oilgas-backend/internal/vdserr"
)

const (
	vdsRulesFile        = "vds_rules.yaml"
	fieldMappingsFile   = "field_mappings.yaml"
	materialMappingsFile = "material_mappings.yaml"
)

type rawGrammar struct {
	Prefixes                  map[string]PrefixDef `yaml:"prefixes"`
	Bores                     map[string]string     `yaml:"bores"`
	MetalSeatedFlagValveTypes []string              `yaml:"metalSeatedFlagValveTypes"`
	MetalSeatedFlagChar       string                `yaml:"metalSeatedFlagChar"`
	PipingClassRegex          string                `yaml:"pipingClassRegex"`
	Modifiers                 map[string]string     `yaml:"modifiers"`
	EndConnections            map[string]string     `yaml:"endConnections"`
}

type rawFieldSchema struct {
	Fields []vdsmodel.FieldDefinition `yaml:"fields"`
}

type rawMaterialEntry struct {
	Inherits  string                 `yaml:"inherits,omitempty"`
	Overrides map[string]interface{} `yaml:"overrides"`
}

type rawMaterialFile struct {
	Materials map[string]rawMaterialEntry `yaml:"materials"`
}

// Load reads the three rulebook documents from dataDir, validates them,
// and returns an immutable Config. Load is the only place configuration
// errors are raised; once it returns successfully the engine never
// re-reads these files.
func Load(dataDir string) (*Config, error) {
	grammar, err := loadGrammar(filepath.Join(dataDir, vdsRulesFile))
	if err != nil {
		return nil, err
	}

	fields, err := loadFieldSchema(filepath.Join(dataDir, fieldMappingsFile))
	if err != nil {
		return nil, err
	}

	materials, warnings, err := loadMaterials(filepath.Join(dataDir, materialMappingsFile), fields)
	if err != nil {
		return nil, err
	}

	cfg := &Config{Grammar: grammar, Fields: fields, Materials: materials, Warnings: warnings}

	if err := validateFields(cfg); err != nil {
		return nil, err
	}

	for _, w := range warnings {
		log.Printf("config: warning: %s", w)
	}
	log.Printf("config: loaded %d fields, %d material maps from %s", len(fields), len(materials), dataDir)

	return cfg, nil
}

func loadGrammar(path string) (Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Grammar{}, vdserr.ConfigInvalid(fmt.Sprintf("reading %s: %v", path, err))
	}

	var raw rawGrammar
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Grammar{}, vdserr.ConfigInvalid(fmt.Sprintf("parsing %s: %v", path, err))
	}

	if len(raw.Prefixes) == 0 {
		return Grammar{}, vdserr.ConfigInvalid("vds_rules: prefixes section is required and must be non-empty")
	}
	if len(raw.Bores) == 0 {
		return Grammar{}, vdserr.ConfigInvalid("vds_rules: bores section is required and must be non-empty")
	}
	if len(raw.EndConnections) == 0 {
		return Grammar{}, vdserr.ConfigInvalid("vds_rules: endConnections section is required and must be non-empty")
	}
	if raw.PipingClassRegex == "" {
		return Grammar{}, vdserr.ConfigInvalid("vds_rules: pipingClassRegex is required")
	}

	classRe, err := regexp.Compile("^(?:" + raw.PipingClassRegex + ")")
	if err != nil {
		return Grammar{}, vdserr.ConfigInvalid(fmt.Sprintf("vds_rules: invalid pipingClassRegex %q: %v", raw.PipingClassRegex, err))
	}

	metalSeated := make(map[string]bool, len(raw.MetalSeatedFlagValveTypes))
	for _, p := range raw.MetalSeatedFlagValveTypes {
		metalSeated[p] = true
	}

	prefixesByLen := make([]string, 0, len(raw.Prefixes))
	for p := range raw.Prefixes {
		prefixesByLen = append(prefixesByLen, p)
	}
	sortByLengthDesc(prefixesByLen)

	return Grammar{
		Prefixes:                 raw.Prefixes,
		PrefixesByLengthDesc:      prefixesByLen,
		Bores:                     raw.Bores,
		MetalSeatedFlagValveTypes: metalSeated,
		MetalSeatedFlagChar:       raw.MetalSeatedFlagChar,
		PipingClassRegex:          classRe,
		Modifiers:                 raw.Modifiers,
		EndConnections:            raw.EndConnections,
	}, nil
}

func sortByLengthDesc(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && len(ss[j]) > len(ss[j-1]); j-- {
			ss[j], ss[j-1] = ss[j-1], ss[j]
		}
	}
}

func loadFieldSchema(path string) ([]vdsmodel.FieldDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, vdserr.ConfigInvalid(fmt.Sprintf("reading %s: %v", path, err))
	}

	var raw rawFieldSchema
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, vdserr.ConfigInvalid(fmt.Sprintf("parsing %s: %v", path, err))
	}
	if len(raw.Fields) == 0 {
		return nil, vdserr.ConfigInvalid("field_mappings: fields section is required and must be non-empty")
	}
	return raw.Fields, nil
}

var knownSourceKinds = map[vdsmodel.SourceKind]bool{
	vdsmodel.SourceVDS:            true,
	vdsmodel.SourcePMS:            true,
	vdsmodel.SourceStandard:       true,
	vdsmodel.SourcePMSAndStandard: true,
	vdsmodel.SourceVDSIndex:       true,
	vdsmodel.SourceCalculated:     true,
	vdsmodel.SourceFixed:          true,
}

func validateFields(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Fields))
	for _, f := range cfg.Fields {
		if f.FieldName == "" {
			return vdserr.ConfigInvalid("field_mappings: a field is missing fieldName")
		}
		if seen[f.FieldName] {
			return vdserr.ConfigInvalid(fmt.Sprintf("field_mappings: duplicate fieldName %q", f.FieldName))
		}
		seen[f.FieldName] = true

		if !knownSourceKinds[f.SourceKind] {
			return vdserr.ConfigInvalid(fmt.Sprintf("field_mappings: field %q has unknown sourceKind %q", f.FieldName, f.SourceKind))
		}

		switch f.SourceKind {
		case vdsmodel.SourceCalculated:
			if f.Calculated == nil || f.Calculated.Formula != "designPressure*constant" {
				return vdserr.ConfigInvalid(fmt.Sprintf("field_mappings: calculated field %q references unknown formula/operand", f.FieldName))
			}
		case vdsmodel.SourcePMSAndStandard:
			if f.Material == nil || f.Material.MaterialComponent == "" {
				return vdserr.ConfigInvalid(fmt.Sprintf("field_mappings: material field %q is missing materialComponent", f.FieldName))
			}
		}
	}
	return nil
}

// loadMaterials reads material_mappings.yaml, merges inherits+overrides
// (rejecting cycles), and returns the fully resolved maps plus any
// non-fatal warnings about fields referencing components absent from some
// or all of the maps. Components that no field references are not reported.
func loadMaterials(path string, fields []vdsmodel.FieldDefinition) (map[string]MaterialMap, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, vdserr.ConfigInvalid(fmt.Sprintf("reading %s: %v", path, err))
	}

	var raw rawMaterialFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, vdserr.ConfigInvalid(fmt.Sprintf("parsing %s: %v", path, err))
	}
	if len(raw.Materials) == 0 {
		return nil, nil, vdserr.ConfigInvalid("material_mappings: materials section is required and must be non-empty")
	}

	for key, entry := range raw.Materials {
		if entry.Inherits != "" {
			if _, ok := raw.Materials[entry.Inherits]; !ok {
				return nil, nil, vdserr.ConfigInvalid(fmt.Sprintf("material_mappings: %q inherits unknown base %q", key, entry.Inherits))
			}
		}
	}

	resolved := make(map[string]MaterialMap, len(raw.Materials))
	resolving := make(map[string]bool)

	var resolve func(key string) (MaterialMap, error)
	resolve = func(key string) (MaterialMap, error) {
		if m, ok := resolved[key]; ok {
			return m, nil
		}
		if resolving[key] {
			return nil, vdserr.ConfigInvalid(fmt.Sprintf("material_mappings: cycle detected at %q", key))
		}
		resolving[key] = true
		defer delete(resolving, key)

		entry := raw.Materials[key]
		merged := make(MaterialMap)
		if entry.Inherits != "" {
			base, err := resolve(entry.Inherits)
			if err != nil {
				return nil, err
			}
			for k, v := range base {
				merged[k] = v
			}
		}
		for k, v := range entry.Overrides {
			merged[k] = v
		}
		resolved[key] = merged
		return merged, nil
	}

	for key := range raw.Materials {
		if _, err := resolve(key); err != nil {
			return nil, nil, err
		}
	}

	var warnings []string
	for _, f := range fields {
		if f.SourceKind != vdsmodel.SourcePMSAndStandard || f.Material == nil {
			continue
		}
		component := f.Material.MaterialComponent
		var missingFrom []string
		for matKey, m := range resolved {
			if _, ok := m[component]; !ok {
				missingFrom = append(missingFrom, matKey)
			}
		}
		if len(missingFrom) == len(resolved) {
			warnings = append(warnings, fmt.Sprintf("field %q references material component %q not defined in any material map", f.FieldName, component))
		} else if len(missingFrom) > 0 {
			sort.Strings(missingFrom)
			warnings = append(warnings, fmt.Sprintf("field %q references material component %q missing from material map(s) %s", f.FieldName, component, strings.Join(missingFrom, ", ")))
		}
	}

	return resolved, warnings, nil
}
