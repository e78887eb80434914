// Package vdsmodel holds the plain data types shared by every stage of the
// VDS datasheet pipeline: decoded codes, source-table rows, the field
// schema, and the resolved/assembled output.
package vdsmodel

// DecodedVDS is the immutable result of parsing a VDS code against the
// configured grammar. See internal/vdsdecoder.
type DecodedVDS struct {
	Raw              string `json:"raw"`
	ValveTypePrefix  string `json:"valveTypePrefix"`
	BoreType         string `json:"boreType"`
	PipingClass      string `json:"pipingClass"`
	EndConnection    string `json:"endConnection"`
	IsNaceCompliant  bool   `json:"isNaceCompliant"`
	IsLowTemp        bool   `json:"isLowTemp"`
	IsMetalSeated    bool   `json:"isMetalSeated"`
	PrimaryStandard  string `json:"primaryStandard"`
}

// PipingClassRow is one row of the piping material specification table,
// keyed uniquely by Class.
type PipingClassRow struct {
	Class              string  `json:"class"`
	PressureRating      string  `json:"pressureRating"`
	PressureRatingNum   int     `json:"pressureRatingNum"`
	BaseMaterial        string  `json:"baseMaterial"`
	MaterialGroup       string  `json:"materialGroup"`
	CorrosionAllowance  string  `json:"corrosionAllowance"`
	Service             string  `json:"service"`
	DesignPressureMax    string  `json:"designPressureMax"`
	DesignPressureMaxNum float64 `json:"designPressureMaxNum"`
	HasDesignPressure    bool    `json:"hasDesignPressure"`
	DesignTempMin        string  `json:"designTempMin"`
	DesignTempMax        string  `json:"designTempMax"`
	IsNaceClass          bool    `json:"isNaceClass"`
	IsLowTempClass       bool    `json:"isLowTempClass"`
}

// VDSIndexRow is a pre-computed row keyed by full VDS code, carrying values
// that cannot be reconstructed from the grammar or the PMS table alone.
type VDSIndexRow struct {
	VDSNo             string  `json:"vdsNo"`
	SizeRange         string  `json:"sizeRange"`
	RepresentativeSize float64 `json:"representativeSize"`
	HasSize            bool    `json:"hasSize"`
	BallMaterial      string  `json:"ballMaterial"`
	SeatMaterial      string  `json:"seatMaterial"`
	StemMaterial      string  `json:"stemMaterial"`
	Facing            string  `json:"facing"`
	OperatorType      string  `json:"operatorType"`
}

// RuleType enumerates the kind of a standard clause.
type RuleType string

const (
	RuleMandatory      RuleType = "mandatory"
	RuleRecommendation RuleType = "recommendation"
	RuleInformational  RuleType = "informational"
	RuleFormula        RuleType = "formula"
	RuleDefinition     RuleType = "definition"
)

// StandardClause is one clause extracted from an engineering standard.
type StandardClause struct {
	Standard       string   `json:"standard"`
	Section        string   `json:"section"`
	Clause         string   `json:"clause"`
	Title          string   `json:"title"`
	Text           string   `json:"text"`
	Page           int      `json:"page"`
	RuleType       RuleType `json:"ruleType"`
	AppliesTo      []string `json:"appliesTo"`
	DatasheetField string   `json:"datasheetField,omitempty"`
}

// SourceKind tags the variant of rule a FieldDefinition carries.
type SourceKind string

const (
	SourceVDS             SourceKind = "VDS"
	SourcePMS             SourceKind = "PMS"
	SourceStandard        SourceKind = "STANDARD"
	SourcePMSAndStandard  SourceKind = "PMS_AND_STANDARD"
	SourceVDSIndex        SourceKind = "VDS_INDEX"
	SourceCalculated      SourceKind = "CALCULATED"
	SourceFixed           SourceKind = "FIXED"
)

// VDSRule is the per-variant payload for a SourceVDS field. Exactly one of
// Attribute or Conditional is meaningful, chosen by which is non-empty.
type VDSRule struct {
	// Attribute names a plain DecodedVDS projection: "vdsNo", "pipingClass",
	// "endConnections", "valveType", "boreType", "primaryStandard",
	// "isNaceCompliant", "isLowTemp", "isMetalSeated".
	Attribute string `yaml:"attribute,omitempty"`

	// Conditional, when set, evaluates a boolean attribute of DecodedVDS
	// (currently only "isNaceCompliant" is used) and emits IfTrue/IfFalse.
	Conditional string `yaml:"conditional,omitempty"`
	IfTrue      string `yaml:"ifTrue,omitempty"`
	IfFalse     string `yaml:"ifFalse,omitempty"`
}

// PMSRule is the payload for a SourcePMS field.
type PMSRule struct {
	// Column names the PipingClassRow field to emit verbatim.
	Column string `yaml:"column,omitempty"`
	// Format, when set, overrides Column with a named composed formatter:
	// currently only "pressureClass" is recognized.
	Format string `yaml:"format,omitempty"`
}

// StandardRule is the payload for a SourceStandard field.
type StandardRule struct {
	FixedFallback string `yaml:"fixedFallback"`
}

// MaterialRule is the payload for a SourcePMSAndStandard field.
type MaterialRule struct {
	MaterialComponent string `yaml:"materialComponent"`
}

// CalculatedRule is the payload for a SourceCalculated field.
type CalculatedRule struct {
	// Formula names the required calculation: "designPressure*constant".
	Formula  string  `yaml:"formula"`
	Constant float64 `yaml:"constant"`
	Unit     string  `yaml:"unit"`
}

// FixedRule is the payload for a SourceFixed field.
type FixedRule struct {
	Value string `yaml:"value"`
}

// FieldDefinition is one entry of the output schema: a tagged variant keyed
// by SourceKind, carrying only the rule payload relevant to that kind.
type FieldDefinition struct {
	FieldName   string     `yaml:"fieldName"`
	DisplayName string     `yaml:"displayName"`
	Section     string     `yaml:"section"`
	SourceKind  SourceKind `yaml:"sourceKind"`
	Required    bool       `yaml:"required"`

	VDS        *VDSRule        `yaml:"vds,omitempty"`
	PMS        *PMSRule        `yaml:"pms,omitempty"`
	Standard   *StandardRule   `yaml:"standard,omitempty"`
	Material   *MaterialRule   `yaml:"material,omitempty"`
	Calculated *CalculatedRule `yaml:"calculated,omitempty"`
	Fixed      *FixedRule      `yaml:"fixed,omitempty"`

	// ConsistencyCheck, when non-empty, names another field this one is
	// cross-validated against by the assembler (e.g. "designPressure").
	ConsistencyCheck string `yaml:"consistencyCheck,omitempty"`
}

// ValidationStatus is the per-field or per-datasheet outcome of validation.
type ValidationStatus string

const (
	StatusValid    ValidationStatus = "valid"
	StatusWarning  ValidationStatus = "warnings"
	StatusInvalid  ValidationStatus = "invalid"
	StatusMissing  ValidationStatus = "missing"
)

// Traceability records where a resolved field's value came from.
type Traceability struct {
	SourceKind      SourceKind `json:"sourceKind"`
	SourceDocument  string     `json:"sourceDocument"`
	SourceValue     string     `json:"sourceValue,omitempty"`
	DerivationRule  string     `json:"derivationRule"`
	ClauseReference string     `json:"clauseReference,omitempty"`
	Confidence      float64    `json:"confidence"`
	Notes           string     `json:"notes,omitempty"`
}

// ResolvedField is produced once per field per generation and never mutated.
type ResolvedField struct {
	FieldName        string           `json:"fieldName"`
	DisplayName      string           `json:"displayName"`
	Section          string           `json:"section"`
	Value            string           `json:"value"`
	IsRequired       bool             `json:"isRequired"`
	IsPopulated      bool             `json:"isPopulated"`
	ValidationStatus ValidationStatus `json:"validationStatus"`
	Traceability     Traceability     `json:"traceability"`
}

// Completion summarizes how many of the schema's fields were populated.
type Completion struct {
	Populated  int     `json:"populated"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Metadata carries the generation envelope around a Datasheet.
type Metadata struct {
	GeneratedAt       string           `json:"generatedAt"`
	GenerationVersion string           `json:"generationVersion"`
	VDSNo             string           `json:"vdsNo"`
	Completion        Completion       `json:"completion"`
	ValidationStatus  ValidationStatus `json:"validationStatus"`
	ValidationErrors  []string         `json:"validationErrors"`
	Warnings          []string         `json:"warnings"`
}

// Section is an ordered sequence of resolved fields under one section name.
type Section struct {
	Name   string          `json:"name"`
	Fields []ResolvedField `json:"fields"`
}

// Datasheet is the fully assembled, structured output of one generation.
// Sections appear in schema order; within each section, fields appear in
// schema order.
type Datasheet struct {
	Metadata Metadata  `json:"metadata"`
	Sections []Section `json:"sections"`
}

// Flat projects a Datasheet down to fieldName -> value. It is a pure
// projection: for every field, the flat value equals the structured value.
func (d *Datasheet) Flat() map[string]string {
	flat := make(map[string]string)
	for _, section := range d.Sections {
		for _, field := range section.Fields {
			flat[field.FieldName] = field.Value
		}
	}
	return flat
}
