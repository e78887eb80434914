package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"oilgas-backend/internal/vdsmodel"
)

// VDSIndexRepository indexes pre-computed rows by full VDS code.
type VDSIndexRepository struct {
	byCode map[string]vdsmodel.VDSIndexRow
}

// LoadVDSIndexRepository reads the VDS-index JSON array at path, keyed by
// each row's vdsNo field.
func LoadVDSIndexRepository(path string) (*VDSIndexRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading VDS index %s: %w", path, err)
	}

	var rows []vdsmodel.VDSIndexRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing VDS index %s: %w", path, err)
	}

	repo := &VDSIndexRepository{byCode: make(map[string]vdsmodel.VDSIndexRow, len(rows))}
	for _, row := range rows {
		repo.byCode[strings.ToUpper(row.VDSNo)] = row
	}
	return repo, nil
}

// RowFor returns the index row for vds, or false when absent.
func (r *VDSIndexRepository) RowFor(vds string) (vdsmodel.VDSIndexRow, bool) {
	row, ok := r.byCode[strings.ToUpper(vds)]
	return row, ok
}

// AllVdsCodes returns every known code, optionally filtered by a prefix
// match against valveTypeFilter, sorted for deterministic pagination.
func (r *VDSIndexRepository) AllVdsCodes(valveTypeFilter string) []string {
	codes := make([]string, 0, len(r.byCode))
	for code := range r.byCode {
		if valveTypeFilter != "" && !strings.HasPrefix(code, strings.ToUpper(valveTypeFilter)) {
			continue
		}
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Count returns the number of indexed rows.
func (r *VDSIndexRepository) Count() int {
	return len(r.byCode)
}
