package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oilgas-backend/internal/vdserr"
)

const dataDir = "../../testdata/data"

func TestLoad_SucceedsOnFixtureData(t *testing.T) {
	cfg, err := Load(dataDir)
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Fields)
	assert.Contains(t, cfg.Grammar.Prefixes, "BS")
	assert.Contains(t, cfg.Materials, "CS")
	assert.Contains(t, cfg.Materials, "LTCS_NACE")
}

func TestLoad_PrefixesOrderedLongestFirst(t *testing.T) {
	cfg, err := Load(dataDir)
	require.NoError(t, err)

	for i := 1; i < len(cfg.Grammar.PrefixesByLengthDesc); i++ {
		assert.GreaterOrEqual(t, len(cfg.Grammar.PrefixesByLengthDesc[i-1]), len(cfg.Grammar.PrefixesByLengthDesc[i]))
	}
}

func TestLoad_MaterialInheritanceIsFullyMerged(t *testing.T) {
	cfg, err := Load(dataDir)
	require.NoError(t, err)

	ltcsNace := cfg.Materials["LTCS_NACE"]
	assert.Equal(t, "ASTM A320 Gr. L7M", ltcsNace["bolts"])

	gaskets, ok := ltcsNace["gaskets"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "SS316L Ring Joint", gaskets["J"])
}

func TestLoad_RejectsMissingDataDir(t *testing.T) {
	_, err := Load("./nonexistent-fixture-dir")
	require.Error(t, err)
	assert.True(t, vdserr.IsKind(err, vdserr.KindConfigInvalid))
}

func TestSections_PreservesSchemaOrderUniquely(t *testing.T) {
	cfg, err := Load(dataDir)
	require.NoError(t, err)

	sections := cfg.Sections()
	assert.Equal(t, "General", sections[0])

	seen := make(map[string]bool)
	for _, s := range sections {
		assert.False(t, seen[s], "section %q listed more than once", s)
		seen[s] = true
	}
}

func TestFieldByName_FindsKnownField(t *testing.T) {
	cfg, err := Load(dataDir)
	require.NoError(t, err)

	f, ok := cfg.FieldByName("designPressure")
	require.True(t, ok)
	assert.Equal(t, "Piping & Design Conditions", f.Section)

	_, ok = cfg.FieldByName("doesNotExist")
	assert.False(t, ok)
}

// TestLoad_RejectsMaterialInheritanceCycle exercises loadMaterials' cycle
// detection with a minimal fixture set copied from the real vds_rules.yaml
// and field_mappings.yaml but a cyclic material_mappings.yaml.
func TestLoad_RejectsMaterialInheritanceCycle(t *testing.T) {
	dir := t.TempDir()

	vdsRules, err := os.ReadFile(filepath.Join(dataDir, "vds_rules.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vds_rules.yaml"), vdsRules, 0o644))

	fieldMappings, err := os.ReadFile(filepath.Join(dataDir, "field_mappings.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "field_mappings.yaml"), fieldMappings, 0o644))

	cyclic := []byte(`materials:
  A:
    inherits: B
    overrides: {}
  B:
    inherits: A
    overrides: {}
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "material_mappings.yaml"), cyclic, 0o644))

	_, err = Load(dir)
	require.Error(t, err)
	assert.True(t, vdserr.IsKind(err, vdserr.KindConfigInvalid))
	assert.Contains(t, err.Error(), "cycle")
}
