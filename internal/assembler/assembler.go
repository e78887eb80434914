// Package assembler composes resolved fields into ordered sections, computes
// completion, and validates the result.
package assembler

import (
	"fmt"

	"oilgas-backend/internal/config"
	"oilgas-backend/internal/vdsmodel"
)

const generationVersion = "1.0.0"

// Assemble groups fields into sections in schema order and computes
// completion + validation, returning the fully populated Datasheet.
func Assemble(cfg *config.Config, vdsNo string, fields []vdsmodel.ResolvedField, generatedAt string) vdsmodel.Datasheet {
	sections := groupBySection(cfg.Sections(), fields)

	completion := computeCompletion(fields)
	errs, warnings := validate(cfg, fields)

	status := vdsmodel.StatusValid
	if len(errs) > 0 {
		status = vdsmodel.StatusInvalid
	} else if len(warnings) > 0 {
		status = vdsmodel.StatusWarning
	}

	return vdsmodel.Datasheet{
		Metadata: vdsmodel.Metadata{
			GeneratedAt:       generatedAt,
			GenerationVersion: generationVersion,
			VDSNo:             vdsNo,
			Completion:        completion,
			ValidationStatus:  status,
			ValidationErrors:  errs,
			Warnings:          warnings,
		},
		Sections: sections,
	}
}

func groupBySection(order []string, fields []vdsmodel.ResolvedField) []vdsmodel.Section {
	bySection := make(map[string][]vdsmodel.ResolvedField, len(order))
	for _, f := range fields {
		bySection[f.Section] = append(bySection[f.Section], f)
	}

	sections := make([]vdsmodel.Section, 0, len(order))
	for _, name := range order {
		sections = append(sections, vdsmodel.Section{Name: name, Fields: bySection[name]})
	}
	return sections
}

func computeCompletion(fields []vdsmodel.ResolvedField) vdsmodel.Completion {
	populated := 0
	for _, f := range fields {
		if f.IsPopulated {
			populated++
		}
	}
	total := len(fields)
	pct := 0.0
	if total > 0 {
		pct = float64(populated) / float64(total) * 100
	}
	return vdsmodel.Completion{Populated: populated, Total: total, Percentage: pct}
}

// validate applies the required-field check and configured cross-field
// consistency checks. validationErrors are in field-schema order; warnings
// list the unpopulated-field warnings in field-schema order, followed by any
// cross-field consistency warnings.
func validate(cfg *config.Config, fields []vdsmodel.ResolvedField) ([]string, []string) {
	var errs, warnings []string

	byName := make(map[string]vdsmodel.ResolvedField, len(fields))
	for _, f := range fields {
		byName[f.FieldName] = f
	}

	for _, f := range fields {
		if !f.IsPopulated && f.IsRequired {
			reason := f.Traceability.Notes
			if reason == "" {
				reason = "value could not be resolved"
			}
			errs = append(errs, fmt.Sprintf("%s: %s", f.FieldName, reason))
		} else if !f.IsPopulated && f.Traceability.Notes != "" {
			warnings = append(warnings, fmt.Sprintf("%s: %s", f.FieldName, f.Traceability.Notes))
		}
	}

	for _, def := range cfg.Fields {
		if def.ConsistencyCheck == "" {
			continue
		}
		self, ok1 := byName[def.FieldName]
		other, ok2 := byName[def.ConsistencyCheck]
		if !ok1 || !ok2 || !self.IsPopulated || !other.IsPopulated {
			continue
		}
		if w := checkConsistency(def.FieldName, self.Value, def.ConsistencyCheck, other.Value); w != "" {
			warnings = append(warnings, w)
		}
	}

	return errs, warnings
}

// checkConsistency implements the one cross-consistency rule currently
// configured: pressureClass vs designPressure. It warns when pressureClass
// embeds a positive class number but designPressure has no positive leading
// number; the magnitudes of the two are not compared. Any pair not
// recognized here is skipped rather than guessed.
func checkConsistency(fieldA, valueA, fieldB, valueB string) string {
	if fieldA == "pressureClass" && fieldB == "designPressure" {
		var classNum int
		fmt.Sscanf(valueA, "ASME B16.34 Class %d", &classNum)
		var pressureNum float64
		fmt.Sscanf(valueB, "%f", &pressureNum)
		if classNum > 0 && pressureNum <= 0 {
			return fmt.Sprintf("%s (%s) has no corresponding positive %s (%s)", fieldA, valueA, fieldB, valueB)
		}
	}
	return ""
}

// FlatView returns fieldName -> value, a flattened projection of the
// section-grouped datasheet.
func FlatView(sheet vdsmodel.Datasheet) map[string]string {
	return sheet.Flat()
}
