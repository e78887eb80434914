// Package resolver implements per-field resolution by source kind, the
// material-selection algorithm, and calculated-field formulas. It is the
// core of the engine.
package resolver

import (
	"context"
	"fmt"

	"oilgas-backend/internal/config"
	"oilgas-backend/internal/repository"
	"oilgas-backend/internal/vdserr"
	"oilgas-backend/internal/vdsdecoder"
	"oilgas-backend/internal/vdsmodel"
)

// Resolver produces one ResolvedField per schema entry, in schema order.
// It holds only references to immutable, read-only collaborators and is
// safe for concurrent use by many callers.
type Resolver struct {
	cfg       *config.Config
	pms       *repository.PMSRepository
	standards *repository.StandardsRepository
	vdsIndex  *repository.VDSIndexRepository
	decoder   *vdsdecoder.Decoder
}

// New builds a Resolver bound to its collaborators.
func New(cfg *config.Config, pms *repository.PMSRepository, standards *repository.StandardsRepository, vdsIndex *repository.VDSIndexRepository, decoder *vdsdecoder.Decoder) *Resolver {
	return &Resolver{cfg: cfg, pms: pms, standards: standards, vdsIndex: vdsIndex, decoder: decoder}
}

// ResolveAll walks the schema in order, producing one ResolvedField per
// entry. ctx is checked between fields so a caller's deadline is honored
// mid-loop.
func (r *Resolver) ResolveAll(ctx context.Context, decoded vdsmodel.DecodedVDS) ([]vdsmodel.ResolvedField, error) {
	pmsRow, hasPMSRow := r.pms.RowFor(decoded.PipingClass)
	vdsRow, hasVDSRow := r.vdsIndex.RowFor(decoded.Raw)

	valveType := r.valveType(decoded)

	fields := make([]vdsmodel.ResolvedField, 0, len(r.cfg.Fields))
	for _, def := range r.cfg.Fields {
		select {
		case <-ctx.Done():
			return nil, vdserr.Timeout("field resolution")
		default:
		}

		fields = append(fields, r.resolveOne(def, decoded, valveType, pmsRow, hasPMSRow, vdsRow, hasVDSRow))
	}
	return fields, nil
}

func (r *Resolver) valveType(decoded vdsmodel.DecodedVDS) string {
	return r.decoder.ValveTypeName(decoded.ValveTypePrefix) + ", " + r.decoder.BoreName(decoded.BoreType)
}

func (r *Resolver) resolveOne(def vdsmodel.FieldDefinition, decoded vdsmodel.DecodedVDS, valveType string, pmsRow vdsmodel.PipingClassRow, hasPMSRow bool, vdsRow vdsmodel.VDSIndexRow, hasVDSRow bool) vdsmodel.ResolvedField {
	switch def.SourceKind {
	case vdsmodel.SourceVDS:
		return r.resolveVDS(def, decoded, valveType)
	case vdsmodel.SourcePMS:
		return r.resolvePMS(def, decoded, pmsRow, hasPMSRow)
	case vdsmodel.SourceStandard:
		return r.resolveStandard(def, valveType)
	case vdsmodel.SourceVDSIndex:
		return r.resolveVDSIndex(def, vdsRow, hasVDSRow)
	case vdsmodel.SourceCalculated:
		return r.resolveCalculated(def, pmsRow, hasPMSRow)
	case vdsmodel.SourceFixed:
		return r.resolveFixed(def)
	case vdsmodel.SourcePMSAndStandard:
		return r.resolveMaterial(def, decoded, pmsRow, hasPMSRow, vdsRow, hasVDSRow)
	default:
		return unpopulated(def, vdsmodel.Traceability{
			SourceKind:     def.SourceKind,
			SourceDocument: "Field Mappings",
			DerivationRule: "unknown source kind",
			Confidence:     1.0,
		})
	}
}

func unpopulated(def vdsmodel.FieldDefinition, tr vdsmodel.Traceability) vdsmodel.ResolvedField {
	status := vdsmodel.StatusValid
	if def.Required {
		status = vdsmodel.StatusMissing
	} else if tr.Notes != "" {
		status = vdsmodel.StatusWarning
	}
	return vdsmodel.ResolvedField{
		FieldName:        def.FieldName,
		DisplayName:      def.DisplayName,
		Section:          def.Section,
		Value:            "",
		IsRequired:       def.Required,
		IsPopulated:      false,
		ValidationStatus: status,
		Traceability:     tr,
	}
}

func populated(def vdsmodel.FieldDefinition, value string, tr vdsmodel.Traceability) vdsmodel.ResolvedField {
	isPopulated := value != ""
	status := vdsmodel.StatusValid
	if !isPopulated && def.Required {
		status = vdsmodel.StatusMissing
	} else if !isPopulated && tr.Notes != "" {
		status = vdsmodel.StatusWarning
	}
	return vdsmodel.ResolvedField{
		FieldName:        def.FieldName,
		DisplayName:      def.DisplayName,
		Section:          def.Section,
		Value:            value,
		IsRequired:       def.Required,
		IsPopulated:      isPopulated,
		ValidationStatus: status,
		Traceability:     tr,
	}
}

func (r *Resolver) resolveVDS(def vdsmodel.FieldDefinition, decoded vdsmodel.DecodedVDS, valveType string) vdsmodel.ResolvedField {
	rule := def.VDS
	if rule == nil {
		return unpopulated(def, vdsmodel.Traceability{SourceKind: def.SourceKind, SourceDocument: "VDS Decoder", DerivationRule: "missing vds rule", Confidence: 1.0})
	}

	if rule.Conditional != "" {
		cond := false
		switch rule.Conditional {
		case "isNaceCompliant":
			cond = decoded.IsNaceCompliant
		case "isLowTemp":
			cond = decoded.IsLowTemp
		case "isMetalSeated":
			cond = decoded.IsMetalSeated
		}
		value := rule.IfFalse
		if cond {
			value = rule.IfTrue
		}
		return populated(def, value, vdsmodel.Traceability{
			SourceKind:     def.SourceKind,
			SourceDocument: "VDS Decoder",
			SourceValue:    fmt.Sprintf("%s=%t", rule.Conditional, cond),
			DerivationRule: fmt.Sprintf("conditional on %s", rule.Conditional),
			Confidence:     1.0,
		})
	}

	var value string
	switch rule.Attribute {
	case "vdsNo":
		value = decoded.Raw
	case "pipingClass":
		value = decoded.PipingClass
	case "boreType":
		value = r.decoder.BoreName(decoded.BoreType)
	case "endConnections":
		value = r.decoder.EndConnectionName(decoded.EndConnection)
	case "valveType":
		value = valveType
	case "primaryStandard":
		value = decoded.PrimaryStandard
	case "isNaceCompliant":
		value = boolString(decoded.IsNaceCompliant)
	case "isLowTemp":
		value = boolString(decoded.IsLowTemp)
	case "isMetalSeated":
		value = boolString(decoded.IsMetalSeated)
	default:
		value = ""
	}

	return populated(def, value, vdsmodel.Traceability{
		SourceKind:     def.SourceKind,
		SourceDocument: "VDS Decoder",
		SourceValue:    decoded.Raw,
		DerivationRule: "decoded attribute: " + rule.Attribute,
		Confidence:     1.0,
	})
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (r *Resolver) resolvePMS(def vdsmodel.FieldDefinition, decoded vdsmodel.DecodedVDS, row vdsmodel.PipingClassRow, hasRow bool) vdsmodel.ResolvedField {
	if !hasRow {
		return unpopulated(def, vdsmodel.Traceability{
			SourceKind:     def.SourceKind,
			SourceDocument: r.pms.SourceDocument(decoded.PipingClass),
			DerivationRule: "piping class not found",
			Confidence:     1.0,
		})
	}

	rule := def.PMS
	var value string
	derivation := "column lookup"
	if rule != nil && rule.Format == "pressureClass" {
		value = fmt.Sprintf("ASME B16.34 Class %d", row.PressureRatingNum)
		derivation = "ASME B16.34 Class <pressureRating>"
	} else if rule != nil {
		value = pmsColumn(row, rule.Column)
		derivation = "column: " + rule.Column
	}

	return populated(def, value, vdsmodel.Traceability{
		SourceKind:     def.SourceKind,
		SourceDocument: r.pms.SourceDocument(decoded.PipingClass),
		SourceValue:    value,
		DerivationRule: derivation,
		Confidence:     1.0,
	})
}

func pmsColumn(row vdsmodel.PipingClassRow, column string) string {
	switch column {
	case "baseMaterial":
		return row.BaseMaterial
	case "materialGroup":
		return row.MaterialGroup
	case "corrosionAllowance":
		return row.CorrosionAllowance
	case "service":
		return row.Service
	case "designPressureMax":
		return row.DesignPressureMax
	case "designTempMin":
		return row.DesignTempMin
	case "designTempMax":
		return row.DesignTempMax
	case "pressureRating":
		return row.PressureRating
	default:
		return ""
	}
}

func (r *Resolver) resolveStandard(def vdsmodel.FieldDefinition, valveType string) vdsmodel.ResolvedField {
	text, clause := r.standards.ValueForField(def.FieldName, valveType)
	if clause != nil {
		clauseRef := fmt.Sprintf("%s %s", clause.Standard, clause.Clause)
		return populated(def, text, vdsmodel.Traceability{
			SourceKind:      def.SourceKind,
			SourceDocument:  clause.Standard,
			SourceValue:     text,
			DerivationRule:  "mandatory clause " + clauseRef,
			ClauseReference: clauseRef,
			Confidence:      1.0,
		})
	}

	fallback := ""
	if def.Standard != nil {
		fallback = def.Standard.FixedFallback
	}
	return populated(def, fallback, vdsmodel.Traceability{
		SourceKind:     def.SourceKind,
		SourceDocument: "Field Mappings (fallback)",
		SourceValue:    fallback,
		DerivationRule: "no mandatory clause for " + valveType + "; used configured fallback",
		Confidence:     1.0,
	})
}

func (r *Resolver) resolveVDSIndex(def vdsmodel.FieldDefinition, row vdsmodel.VDSIndexRow, hasRow bool) vdsmodel.ResolvedField {
	if !hasRow {
		return unpopulated(def, vdsmodel.Traceability{
			SourceKind:     def.SourceKind,
			SourceDocument: "VDS Index",
			DerivationRule: "no VDS index row for this code",
			Notes:          vdserr.DataError(vdserr.CodeMissingIndexRow, def.FieldName, "no VDS index row for this code").Error(),
			Confidence:     1.0,
		})
	}

	value := vdsIndexColumn(row, def.FieldName)
	return populated(def, value, vdsmodel.Traceability{
		SourceKind:     def.SourceKind,
		SourceDocument: "VDS Index",
		SourceValue:    value,
		DerivationRule: "column: " + def.FieldName,
		Confidence:     1.0,
	})
}

func vdsIndexColumn(row vdsmodel.VDSIndexRow, fieldName string) string {
	switch fieldName {
	case "ballMaterial":
		return row.BallMaterial
	case "seatMaterial":
		return row.SeatMaterial
	case "stemMaterial":
		return row.StemMaterial
	case "sizeRange":
		return row.SizeRange
	case "facing":
		return row.Facing
	case "operatorType":
		return row.OperatorType
	default:
		return ""
	}
}

func (r *Resolver) resolveCalculated(def vdsmodel.FieldDefinition, row vdsmodel.PipingClassRow, hasRow bool) vdsmodel.ResolvedField {
	rule := def.Calculated
	if rule == nil || !hasRow || !row.HasDesignPressure {
		reason := "design pressure unavailable for this piping class"
		derivation := "formula unavailable: no calculated rule configured"
		if rule != nil {
			derivation = fmt.Sprintf("%.2g x Max Design Pressure", rule.Constant)
		}
		return unpopulated(def, vdsmodel.Traceability{
			SourceKind:     def.SourceKind,
			SourceDocument: "Calculated",
			DerivationRule: derivation,
			Notes:          vdserr.DataError(vdserr.CodeMissingOperand, def.FieldName, reason).Error(),
			Confidence:     1.0,
		})
	}

	value := row.DesignPressureMaxNum * rule.Constant
	formatted := fmt.Sprintf("%.1f %s", value, rule.Unit)

	return populated(def, formatted, vdsmodel.Traceability{
		SourceKind:     def.SourceKind,
		SourceDocument: "Calculated",
		SourceValue:    fmt.Sprintf("%.1f", row.DesignPressureMaxNum),
		DerivationRule: fmt.Sprintf("%.2g x Max Design Pressure", rule.Constant),
		Confidence:     1.0,
	})
}

func (r *Resolver) resolveFixed(def vdsmodel.FieldDefinition) vdsmodel.ResolvedField {
	value := ""
	if def.Fixed != nil {
		value = def.Fixed.Value
	}
	return populated(def, value, vdsmodel.Traceability{
		SourceKind:     def.SourceKind,
		SourceDocument: "Field Mappings",
		SourceValue:    value,
		DerivationRule: "fixed constant",
		Confidence:     1.0,
	})
}

func (r *Resolver) resolveMaterial(def vdsmodel.FieldDefinition, decoded vdsmodel.DecodedVDS, pmsRow vdsmodel.PipingClassRow, hasPMSRow bool, vdsRow vdsmodel.VDSIndexRow, hasVDSRow bool) vdsmodel.ResolvedField {
	if def.Material == nil || !hasPMSRow {
		return unpopulated(def, vdsmodel.Traceability{
			SourceKind:     def.SourceKind,
			SourceDocument: "Material Mappings",
			DerivationRule: "piping class row unavailable",
			Confidence:     1.0,
		})
	}

	res, matErr := selectMaterial(r.cfg.Materials, pmsRow.BaseMaterial, decoded.IsNaceCompliant, decoded.IsLowTemp, def.Material.MaterialComponent, decoded, vdsRow, hasVDSRow)
	if matErr != nil {
		return unpopulated(def, vdsmodel.Traceability{
			SourceKind:     def.SourceKind,
			SourceDocument: "Material Mappings",
			DerivationRule: fmt.Sprintf("Material lookup: base=%s, nace=%t, lowTemp=%t", pmsRow.BaseMaterial, decoded.IsNaceCompliant, decoded.IsLowTemp),
			Notes:          matErr.Error(),
			Confidence:     1.0,
		})
	}

	notes := ""
	if res.AncestorUsed != "" {
		notes = "fell back to ancestor material map " + res.AncestorUsed
	}

	return populated(def, res.Value, vdsmodel.Traceability{
		SourceKind:     def.SourceKind,
		SourceDocument: "Material Mappings",
		SourceValue:    res.Value,
		DerivationRule: fmt.Sprintf("Material lookup: base=%s, nace=%t, key=%s, component=%s", pmsRow.BaseMaterial, decoded.IsNaceCompliant, res.ChosenKey, def.Material.MaterialComponent),
		Notes:          joinNotes(notes, res.Branch),
		Confidence:     1.0,
	})
}

func joinNotes(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + "; " + b
}
