package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oilgas-backend/internal/config"
	"oilgas-backend/internal/vdsmodel"
)

func TestMaterialKeyCandidates_Ordering(t *testing.T) {
	assert.Equal(t, []string{"LTCS_NACE", "CS_NACE", "CS"}, materialKeyCandidates("CS", true, true))
	assert.Equal(t, []string{"CS_NACE", "CS"}, materialKeyCandidates("CS", true, false))
	assert.Equal(t, []string{"LTCS", "CS"}, materialKeyCandidates("CS", false, true))
	assert.Equal(t, []string{"CS"}, materialKeyCandidates("CS", false, false))
}

func TestSelectMaterial_UnknownMaterialKey(t *testing.T) {
	cfg := loadedConfig(t)

	_, err := selectMaterial(cfg.Materials, "XYZ", false, false, "bolts", vdsmodel.DecodedVDS{}, vdsmodel.VDSIndexRow{}, false)
	require.Error(t, err)
	assert.Equal(t, "UnknownMaterial", string(err.Code))
}

func TestSelectMaterial_UnknownComponent(t *testing.T) {
	cfg := loadedConfig(t)

	_, err := selectMaterial(cfg.Materials, "CS", false, false, "nonexistentComponent", vdsmodel.DecodedVDS{}, vdsmodel.VDSIndexRow{}, false)
	require.Error(t, err)
	assert.Equal(t, "UnknownComponent", string(err.Code))
}

func TestSelectMaterial_SizeBranchWithNoIndexRowJoinsBoth(t *testing.T) {
	cfg := loadedConfig(t)

	res, err := selectMaterial(cfg.Materials, "CS", false, false, "body", vdsmodel.DecodedVDS{}, vdsmodel.VDSIndexRow{}, false)
	require.Nil(t, err)
	assert.Equal(t, "ASTM A105, ASTM A216 Gr. WCB", res.Value)
	assert.Equal(t, "size:both", res.Branch)
}

func TestSelectMaterial_EndConnectionBranchUnknownConnectionLeavesEmptyValue(t *testing.T) {
	cfg := loadedConfig(t)

	decoded := vdsmodel.DecodedVDS{EndConnection: "Q"}
	res, err := selectMaterial(cfg.Materials, "CS", false, false, "gaskets", decoded, vdsmodel.VDSIndexRow{}, false)
	require.Nil(t, err)
	assert.Empty(t, res.Value)
	assert.Equal(t, "endConnection:Q", res.Branch)
}

func TestResolveBySize_NonNumericThresholdIsDataError(t *testing.T) {
	sub := map[string]interface{}{
		"size_threshold": "two inches",
		"forged":         "ASTM A105",
		"cast":           "ASTM A216 Gr. WCB",
	}
	row := vdsmodel.VDSIndexRow{HasSize: true, RepresentativeSize: 2}

	_, err := resolveBySize(sub, sub["size_threshold"], row, true, "CS", "", "body")
	require.Error(t, err)
	assert.Equal(t, "UnknownComponent", string(err.Code))
}

func loadedConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(dataDir)
	require.NoError(t, err)
	return cfg
}
