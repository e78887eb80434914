package resolver

import (
	"fmt"
	"strings"

	"oilgas-backend/internal/config"
	"oilgas-backend/internal/vdserr"
	"oilgas-backend/internal/vdsmodel"
)

// materialResolution is the outcome of the material-selection algorithm,
// kept separate from ResolvedField so the caller can compose traceability
// without re-deriving any of these facts.
type materialResolution struct {
	Value        string
	ChosenKey    string
	AncestorUsed string // non-empty only when fallback occurred
	Branch       string // "endConnection:<X>" or "size:<forged|cast|both>" or ""
}

// selectMaterial resolves one materialComponent for a base material key.
func selectMaterial(materials map[string]config.MaterialMap, baseMaterial string, isNace, isLowTemp bool, component string, decoded vdsmodel.DecodedVDS, sizeRow vdsmodel.VDSIndexRow, hasSizeRow bool) (materialResolution, *vdserr.Error) {
	candidates := materialKeyCandidates(baseMaterial, isNace, isLowTemp)

	var chosenKey string
	for _, k := range candidates {
		if _, ok := materials[k]; ok {
			chosenKey = k
			break
		}
	}
	if chosenKey == "" {
		return materialResolution{}, vdserr.DataError(vdserr.CodeUnknownMaterial, component,
			fmt.Sprintf("no material map found for any of %v", candidates))
	}

	ancestor := ""
	if chosenKey != candidates[0] {
		ancestor = chosenKey
	}

	raw, ok := materials[chosenKey][component]
	if !ok {
		return materialResolution{}, vdserr.DataError(vdserr.CodeUnknownComponent, component,
			fmt.Sprintf("component %q not defined in material map %q", component, chosenKey))
	}

	switch v := raw.(type) {
	case string:
		return materialResolution{Value: v, ChosenKey: chosenKey, AncestorUsed: ancestor}, nil

	case map[string]interface{}:
		if threshold, isSized := v["size_threshold"]; isSized {
			return resolveBySize(v, threshold, sizeRow, hasSizeRow, chosenKey, ancestor, component)
		}
		return resolveByEndConnection(v, decoded.EndConnection, chosenKey, ancestor)

	case map[interface{}]interface{}:
		// gopkg.in/yaml.v3 decodes nested maps as map[string]interface{}
		// when the key type is string, but guard the legacy shape too.
		converted := make(map[string]interface{}, len(v))
		for k, val := range v {
			converted[fmt.Sprintf("%v", k)] = val
		}
		if threshold, isSized := converted["size_threshold"]; isSized {
			return resolveBySize(converted, threshold, sizeRow, hasSizeRow, chosenKey, ancestor, component)
		}
		return resolveByEndConnection(converted, decoded.EndConnection, chosenKey, ancestor)

	default:
		return materialResolution{}, vdserr.DataError(vdserr.CodeUnknownComponent, component,
			fmt.Sprintf("component %q in map %q has an unrecognized shape", component, chosenKey))
	}
}

func materialKeyCandidates(baseMaterial string, isNace, isLowTemp bool) []string {
	switch {
	case isLowTemp && isNace:
		return []string{"LT" + baseMaterial + "_NACE", baseMaterial + "_NACE", baseMaterial}
	case isLowTemp:
		return []string{"LT" + baseMaterial, baseMaterial}
	case isNace:
		return []string{baseMaterial + "_NACE", baseMaterial}
	default:
		return []string{baseMaterial}
	}
}

func resolveByEndConnection(sub map[string]interface{}, endConnection, chosenKey, ancestor string) (materialResolution, *vdserr.Error) {
	raw, ok := sub[endConnection]
	if !ok {
		return materialResolution{ChosenKey: chosenKey, AncestorUsed: ancestor, Branch: "endConnection:" + endConnection}, nil
	}
	val, _ := raw.(string)
	return materialResolution{Value: val, ChosenKey: chosenKey, AncestorUsed: ancestor, Branch: "endConnection:" + endConnection}, nil
}

func resolveBySize(sub map[string]interface{}, threshold interface{}, row vdsmodel.VDSIndexRow, hasRow bool, chosenKey, ancestor, component string) (materialResolution, *vdserr.Error) {
	forged, _ := sub["forged"].(string)
	cast, _ := sub["cast"].(string)

	if !hasRow || !row.HasSize {
		return materialResolution{
			Value:        strings.TrimSuffix(forged+", "+cast, ", "),
			ChosenKey:    chosenKey,
			AncestorUsed: ancestor,
			Branch:       "size:both",
		}, nil
	}

	limit, ok := toFloat(threshold)
	if !ok {
		return materialResolution{}, vdserr.DataError(vdserr.CodeUnknownComponent, component,
			fmt.Sprintf("component %q in map %q has a non-numeric size_threshold %v", component, chosenKey, threshold))
	}
	if row.RepresentativeSize <= limit {
		return materialResolution{Value: forged, ChosenKey: chosenKey, AncestorUsed: ancestor, Branch: "size:forged"}, nil
	}
	return materialResolution{Value: cast, ChosenKey: chosenKey, AncestorUsed: ancestor, Branch: "size:cast"}, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
