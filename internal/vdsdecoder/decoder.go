// Package vdsdecoder implements the grammar-directed VDS parser: a greedy,
// left-to-right, case-insensitive scan that produces an immutable
// vdsmodel.DecodedVDS.
package vdsdecoder

import (
	"strings"

	"oilgas-backend/internal/config"
	"oilgas-backend/internal/repository"
	"oilgas-backend/internal/vdserr"
	"oilgas-backend/internal/vdsmodel"
)

// Decoder parses VDS codes against a Grammar, confirming piping classes
// exist in the PMS repository but otherwise touching no other repository.
type Decoder struct {
	grammar config.Grammar
	pms     *repository.PMSRepository
}

// New builds a Decoder bound to grammar and the piping-class repository.
func New(grammar config.Grammar, pms *repository.PMSRepository) *Decoder {
	return &Decoder{grammar: grammar, pms: pms}
}

// Decode parses raw into a DecodedVDS. raw is trimmed of trailing
// whitespace and uppercased before parsing; leading or embedded whitespace
// is rejected.
func (d *Decoder) Decode(raw string) (vdsmodel.DecodedVDS, error) {
	original := raw
	trimmed := strings.TrimRight(raw, " \t\r\n")
	if strings.ContainsAny(trimmed, " \t\r\n") {
		return vdsmodel.DecodedVDS{}, vdserr.InputError(vdserr.CodeTruncatedVDS, "raw", "embedded or leading whitespace is not allowed")
	}
	s := strings.ToUpper(trimmed)
	if s == "" {
		return vdsmodel.DecodedVDS{}, vdserr.InputError(vdserr.CodeTruncatedVDS, "raw", "VDS code is empty")
	}

	// 1. Valve-type prefix: longest match, greedy.
	var prefix string
	for _, candidate := range d.grammar.PrefixesByLengthDesc {
		if strings.HasPrefix(s, candidate) {
			prefix = candidate
			break
		}
	}
	if prefix == "" {
		return vdsmodel.DecodedVDS{}, vdserr.InputError(vdserr.CodeUnknownPrefix, "valveTypePrefix", "no configured prefix matches "+original)
	}
	rest := s[len(prefix):]

	// Minimum remaining length check happens progressively below, but a
	// coarse floor (bore + class + end connection) catches short inputs
	// immediately.
	if len(rest) < 3 {
		return vdsmodel.DecodedVDS{}, vdserr.InputError(vdserr.CodeTruncatedVDS, "raw", "too short after prefix "+prefix)
	}

	// 2. Bore type: exactly one configured character.
	boreChar := rest[:1]
	boreName, ok := d.grammar.Bores[boreChar]
	if !ok {
		return vdsmodel.DecodedVDS{}, vdserr.InputError(vdserr.CodeUnknownBore, "boreType", "unrecognized bore character "+boreChar)
	}
	rest = rest[1:]
	isMetalSeated := boreChar == "M"

	// 3. Optional metal-seated flag, only for configured valve types, only
	// when the bore letter itself wasn't already "M".
	if !isMetalSeated && d.grammar.MetalSeatedFlagValveTypes[prefix] && d.grammar.MetalSeatedFlagChar != "" {
		if strings.HasPrefix(rest, d.grammar.MetalSeatedFlagChar) {
			isMetalSeated = true
			rest = rest[len(d.grammar.MetalSeatedFlagChar):]
		}
	}

	if len(rest) < 2 {
		return vdsmodel.DecodedVDS{}, vdserr.InputError(vdserr.CodeTruncatedVDS, "raw", "too short for piping class and end connection")
	}

	// 4. Piping class: regex match at the start of what remains.
	loc := d.grammar.PipingClassRegex.FindStringIndex(rest)
	if loc == nil || loc[0] != 0 {
		return vdsmodel.DecodedVDS{}, vdserr.InputError(vdserr.CodeUnknownClass, "pipingClass", "no piping class pattern matched in "+rest)
	}
	class := rest[:loc[1]]
	rest = rest[loc[1]:]

	if d.pms != nil {
		if _, ok := d.pms.RowFor(class); !ok {
			return vdsmodel.DecodedVDS{}, vdserr.InputError(vdserr.CodeUnknownClass, "pipingClass", "class "+class+" not found in piping repository")
		}
	}

	if len(rest) < 1 {
		return vdsmodel.DecodedVDS{}, vdserr.InputError(vdserr.CodeTruncatedVDS, "raw", "missing end connection after class "+class)
	}

	// 5. Modifiers: zero or more, until the final character.
	isNace := false
	isLowTemp := false
	for len(rest) > 1 {
		ch := rest[:1]
		attr, known := d.grammar.Modifiers[ch]
		if !known {
			break
		}
		switch attr {
		case "isNaceCompliant":
			isNace = true
		case "isLowTemp":
			isLowTemp = true
		}
		rest = rest[1:]
	}

	// 6. End connection: single character at the end.
	if len(rest) != 1 {
		return vdsmodel.DecodedVDS{}, vdserr.InputError(vdserr.CodeUnknownModifier, "modifiers", "unrecognized modifier sequence before end connection in "+rest)
	}
	endChar := rest
	if _, ok := d.grammar.EndConnections[endChar]; !ok {
		return vdsmodel.DecodedVDS{}, vdserr.InputError(vdserr.CodeUnknownEndConnection, "endConnection", "unrecognized end connection character "+endChar)
	}

	prefixDef := d.grammar.Prefixes[prefix]

	decoded := vdsmodel.DecodedVDS{
		Raw:             s,
		ValveTypePrefix: prefix,
		BoreType:        boreChar,
		PipingClass:     class,
		EndConnection:   endChar,
		IsNaceCompliant: isNace,
		IsLowTemp:       isLowTemp,
		IsMetalSeated:   isMetalSeated,
		PrimaryStandard: prefixDef.PrimaryStandard,
	}

	return decoded, nil
}

// ValveTypeName returns the configured display name for a prefix.
func (d *Decoder) ValveTypeName(prefix string) string {
	return d.grammar.Prefixes[prefix].Name
}

// BoreName returns the configured display name for a bore character.
func (d *Decoder) BoreName(bore string) string {
	return d.grammar.Bores[bore]
}

// EndConnectionName returns the configured display text for an end
// connection character.
func (d *Decoder) EndConnectionName(end string) string {
	return d.grammar.EndConnections[end]
}
