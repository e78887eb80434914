// Package engine composes config, repositories, the decoder, the
// resolver, and the assembler behind the handful of operations the HTTP
// and CLI layers need: Decode, Validate, Generate, GenerateFlat, Batch.
// Everything it holds is read-only after New returns, so an *Engine is
// safe for concurrent use by many request handlers.
package engine

import (
	"context"
	"path/filepath"
	"time"

	"oilgas-backend/internal/assembler"
	"oilgas-backend/internal/config"
	"oilgas-backend/internal/repository"
	"oilgas-backend/internal/vdserr"
	"oilgas-backend/internal/vdsdecoder"
	"oilgas-backend/internal/vdsmodel"
	"oilgas-backend/internal/resolver"
)

const version = "1.0.0"

// Engine is the pure, in-process datasheet-generation pipeline.
type Engine struct {
	cfg       *config.Config
	pms       *repository.PMSRepository
	standards *repository.StandardsRepository
	vdsIndex  *repository.VDSIndexRepository
	decoder   *vdsdecoder.Decoder
	resolver  *resolver.Resolver
}

// New loads configuration and source data from dataDir and builds an
// Engine. It is the only blocking operation in the engine's lifetime
// besides batch backpressure.
func New(dataDir string) (*Engine, error) {
	cfg, err := config.Load(dataDir)
	if err != nil {
		return nil, err
	}

	pms, err := repository.LoadPMSRepository(filepath.Join(dataDir, "piping_classes.json"))
	if err != nil {
		return nil, vdserr.ConfigInvalid(err.Error())
	}

	standards, err := repository.LoadStandardsRepository(filepath.Join(dataDir, "standards_clauses.json"))
	if err != nil {
		return nil, vdserr.ConfigInvalid(err.Error())
	}

	vdsIndex, err := repository.LoadVDSIndexRepository(filepath.Join(dataDir, "vds_index.json"))
	if err != nil {
		return nil, vdserr.ConfigInvalid(err.Error())
	}

	dec := vdsdecoder.New(cfg.Grammar, pms)
	res := resolver.New(cfg, pms, standards, vdsIndex, dec)

	return &Engine{cfg: cfg, pms: pms, standards: standards, vdsIndex: vdsIndex, decoder: dec, resolver: res}, nil
}

// Decode parses vds into a DecodedVDS.
func (e *Engine) Decode(vds string) (vdsmodel.DecodedVDS, error) {
	return e.decoder.Decode(vds)
}

// ValidateResult is the response shape for the "Validate VDS" operation.
type ValidateResult struct {
	VDSNo   string `json:"vdsNo"`
	IsValid bool   `json:"isValid"`
	Error   string `json:"error,omitempty"`
}

// Validate reports whether vds parses, without building a datasheet.
func (e *Engine) Validate(vds string) ValidateResult {
	decoded, err := e.decoder.Decode(vds)
	if err != nil {
		return ValidateResult{VDSNo: vds, IsValid: false, Error: err.Error()}
	}
	return ValidateResult{VDSNo: decoded.Raw, IsValid: true}
}

// Generate decodes vds, resolves every field, and assembles a Datasheet.
// ctx is checked between the decode, resolution, and validation phases;
// an InputError from decoding aborts immediately.
func (e *Engine) Generate(ctx context.Context, vds string) (vdsmodel.Datasheet, error) {
	if err := ctx.Err(); err != nil {
		return vdsmodel.Datasheet{}, vdserr.Timeout("decode")
	}

	decoded, err := e.decoder.Decode(vds)
	if err != nil {
		return vdsmodel.Datasheet{}, err
	}

	fields, err := e.resolver.ResolveAll(ctx, decoded)
	if err != nil {
		return vdsmodel.Datasheet{}, err
	}

	if err := ctx.Err(); err != nil {
		return vdsmodel.Datasheet{}, vdserr.Timeout("validation")
	}

	sheet := assembler.Assemble(e.cfg, decoded.Raw, fields, time.Now().UTC().Format(time.RFC3339))
	return sheet, nil
}

// GenerateFlat returns the flat fieldName->value projection alongside the
// datasheet's completion and validation status.
func (e *Engine) GenerateFlat(ctx context.Context, vds string) (map[string]string, vdsmodel.Metadata, error) {
	sheet, err := e.Generate(ctx, vds)
	if err != nil {
		return nil, vdsmodel.Metadata{}, err
	}
	return assembler.FlatView(sheet), sheet.Metadata, nil
}

// BatchItem is one element of a Batch response.
type BatchItem struct {
	VDS    string             `json:"vds"`
	Status string             `json:"status"`
	Data   *vdsmodel.Datasheet `json:"data,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// Batch resolves each code independently; a failure on one item never
// aborts the rest, and results preserve input order.
func (e *Engine) Batch(ctx context.Context, codes []string) []BatchItem {
	results := make([]BatchItem, len(codes))
	for i, code := range codes {
		if err := ctx.Err(); err != nil {
			results[i] = BatchItem{VDS: code, Status: "error", Error: vdserr.Timeout("batch").Error()}
			continue
		}
		sheet, err := e.Generate(ctx, code)
		if err != nil {
			results[i] = BatchItem{VDS: code, Status: "error", Error: err.Error()}
			continue
		}
		results[i] = BatchItem{VDS: code, Status: "success", Data: &sheet}
	}
	return results
}

// Metadata describes the engine's reference data for UI population.
type Metadata struct {
	ValveTypes     []string `json:"valveTypes"`
	PipingClasses  []string `json:"pipingClasses"`
	EndConnections []string `json:"endConnections"`
	BoreTypes      []string `json:"boreTypes"`
	PressureClasses []string `json:"pressureClasses"`
}

// Metadata returns the engine's reference-data lists for UI population.
func (e *Engine) Metadata() Metadata {
	md := Metadata{
		PipingClasses: e.pms.AllClasses(),
	}
	for prefix, def := range e.cfg.Grammar.Prefixes {
		md.ValveTypes = append(md.ValveTypes, def.Name+" ("+prefix+")")
	}
	for letter, name := range e.cfg.Grammar.EndConnections {
		md.EndConnections = append(md.EndConnections, letter+": "+name)
	}
	for letter, name := range e.cfg.Grammar.Bores {
		md.BoreTypes = append(md.BoreTypes, letter+": "+name)
	}
	for _, class := range e.pms.AllClasses() {
		if row, ok := e.pms.RowFor(class); ok {
			md.PressureClasses = append(md.PressureClasses, row.PressureRating)
		}
	}
	return md
}

// ListResult is the paginated response for "List VDS codes".
type ListResult struct {
	Codes  []string `json:"codes"`
	Total  int      `json:"total"`
	Offset int      `json:"offset"`
	Limit  int      `json:"limit"`
}

// List returns a page of known VDS codes, optionally filtered by a
// valve-type prefix.
func (e *Engine) List(valveTypeFilter string, offset, limit int) ListResult {
	all := e.vdsIndex.AllVdsCodes(valveTypeFilter)
	total := len(all)

	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}

	return ListResult{Codes: all[offset:end], Total: total, Offset: offset, Limit: limit}
}

// Health is the response for the "Health" operation.
type Health struct {
	Status             string `json:"status"`
	Version            string `json:"version"`
	DataLoaded         bool   `json:"dataLoaded"`
	VDSIndexCount      int    `json:"vdsIndexCount"`
	PipingClassesCount int    `json:"pipingClassesCount"`
}

// Health reports load status and reference-data counts.
func (e *Engine) Health() Health {
	return Health{
		Status:             "ok",
		Version:            version,
		DataLoaded:         true,
		VDSIndexCount:      e.vdsIndex.Count(),
		PipingClassesCount: len(e.pms.AllClasses()),
	}
}
