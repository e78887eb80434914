package repository

import (
	"encoding/json"
	"fmt"
	"os"

	"oilgas-backend/internal/vdsmodel"
)

// StandardsRepository multi-indexes standard clauses by datasheet field,
// valve type, and standard name.
type StandardsRepository struct {
	all          []vdsmodel.StandardClause
	byField      map[string][]vdsmodel.StandardClause
	byValveType  map[string][]vdsmodel.StandardClause
	byStandard   map[string][]vdsmodel.StandardClause
}

type rawClausesFile struct {
	Clauses []vdsmodel.StandardClause `json:"clauses"`
}

// LoadStandardsRepository reads the standards-clauses JSON at path.
func LoadStandardsRepository(path string) (*StandardsRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading standard clauses %s: %w", path, err)
	}

	var raw rawClausesFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing standard clauses %s: %w", path, err)
	}

	repo := &StandardsRepository{
		all:         raw.Clauses,
		byField:     make(map[string][]vdsmodel.StandardClause),
		byValveType: make(map[string][]vdsmodel.StandardClause),
		byStandard:  make(map[string][]vdsmodel.StandardClause),
	}

	for _, c := range raw.Clauses {
		if c.DatasheetField != "" {
			repo.byField[c.DatasheetField] = append(repo.byField[c.DatasheetField], c)
		}
		for _, vt := range c.AppliesTo {
			repo.byValveType[vt] = append(repo.byValveType[vt], c)
		}
		repo.byStandard[c.Standard] = append(repo.byStandard[c.Standard], c)
	}

	return repo, nil
}

// ClausesForField returns every clause tagged with the given datasheet field.
func (r *StandardsRepository) ClausesForField(fieldName string) []vdsmodel.StandardClause {
	return r.byField[fieldName]
}

// ClausesForValveType returns every clause that applies to valveType.
func (r *StandardsRepository) ClausesForValveType(valveType string) []vdsmodel.StandardClause {
	return r.byValveType[valveType]
}

// ValueForField returns the text of the first mandatory clause (in file
// order) tagged with fieldName that applies to valveType, and the clause
// itself for traceability purposes. Further matching clauses are ignored.
func (r *StandardsRepository) ValueForField(fieldName, valveType string) (string, *vdsmodel.StandardClause) {
	var match *vdsmodel.StandardClause
	for _, c := range r.byField[fieldName] {
		if c.RuleType != vdsmodel.RuleMandatory {
			continue
		}
		if !containsString(c.AppliesTo, valveType) {
			continue
		}
		cc := c
		match = &cc
		break
	}
	if match == nil {
		return "", nil
	}
	return match.Text, match
}

func containsString(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
