package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oilgas-backend/internal/config"
	"oilgas-backend/internal/repository"
	"oilgas-backend/internal/vdsdecoder"
	"oilgas-backend/internal/vdsmodel"
)

const dataDir = "../../testdata/data"

func newTestResolver(t *testing.T) (*Resolver, *vdsdecoder.Decoder) {
	t.Helper()
	cfg, err := config.Load(dataDir)
	require.NoError(t, err)

	pms, err := repository.LoadPMSRepository(dataDir + "/piping_classes.json")
	require.NoError(t, err)

	standards, err := repository.LoadStandardsRepository(dataDir + "/standards_clauses.json")
	require.NoError(t, err)

	vdsIndex, err := repository.LoadVDSIndexRepository(dataDir + "/vds_index.json")
	require.NoError(t, err)

	dec := vdsdecoder.New(cfg.Grammar, pms)
	return New(cfg, pms, standards, vdsIndex, dec), dec
}

func fieldValue(t *testing.T, fields []vdsmodel.ResolvedField, name string) vdsmodel.ResolvedField {
	t.Helper()
	for _, f := range fields {
		if f.FieldName == name {
			return f
		}
	}
	t.Fatalf("field %q not found in resolved set", name)
	return vdsmodel.ResolvedField{}
}

func TestResolveAll_BallValveForgedBody(t *testing.T) {
	r, dec := newTestResolver(t)
	decoded, err := dec.Decode("BSFA1R")
	require.NoError(t, err)

	fields, err := r.ResolveAll(context.Background(), decoded)
	require.NoError(t, err)

	assert.Equal(t, "Ball Valve, Full Bore", fieldValue(t, fields, "valveType").Value)
	assert.Equal(t, "-", fieldValue(t, fields, "sourService").Value)
	assert.Equal(t, "ASME B16.34 Class 150", fieldValue(t, fields, "pressureClass").Value)
	assert.Equal(t, "19.6 barg @ 38°C", fieldValue(t, fields, "designPressure").Value)
	shell := fieldValue(t, fields, "hydrotestShell")
	assert.Equal(t, "29.4 barg", shell.Value)
	assert.Equal(t, vdsmodel.StatusValid, shell.ValidationStatus)

	body := fieldValue(t, fields, "body")
	assert.Equal(t, "ASTM A105", body.Value)

	gaskets := fieldValue(t, fields, "gaskets")
	assert.Equal(t, "Spiral Wound 316SS/Graphite", gaskets.Value)
}

func TestResolveAll_NaceOverridesBoltsAndCastBody(t *testing.T) {
	r, dec := newTestResolver(t)
	decoded, err := dec.Decode("BSFB1NR")
	require.NoError(t, err)

	fields, err := r.ResolveAll(context.Background(), decoded)
	require.NoError(t, err)

	assert.Equal(t, "NACE MR0175 / ISO 15156", fieldValue(t, fields, "sourService").Value)
	assert.Equal(t, "ASTM A193 Gr. B7M", fieldValue(t, fields, "bolts").Value)
	assert.Equal(t, "ASTM A216 Gr. WCB", fieldValue(t, fields, "body").Value)
}

func TestResolveAll_GateValveTestStandardMandatoryClause(t *testing.T) {
	r, dec := newTestResolver(t)
	decoded, err := dec.Decode("GSRD1W")
	require.NoError(t, err)

	fields, err := r.ResolveAll(context.Background(), decoded)
	require.NoError(t, err)

	testStandard := fieldValue(t, fields, "testStandard")
	assert.Equal(t, "API 598, Section 6.3 - gate/globe shell and seat test", testStandard.Value)
	assert.NotEmpty(t, testStandard.Traceability.ClauseReference)

	fireSafe := fieldValue(t, fields, "fireSafeDesign")
	assert.Equal(t, "API 607 compliant", fireSafe.Value)
}

func TestResolveAll_MissingIndexRowLeavesFieldUnpopulatedWithNotes(t *testing.T) {
	r, dec := newTestResolver(t)
	decoded, err := dec.Decode("BSFMG1LNJ")
	require.NoError(t, err)

	fields, err := r.ResolveAll(context.Background(), decoded)
	require.NoError(t, err)

	ball := fieldValue(t, fields, "ballMaterial")
	assert.False(t, ball.IsPopulated)
	assert.Contains(t, ball.Traceability.Notes, "MissingIndexRow")

	body := fieldValue(t, fields, "body")
	assert.Equal(t, "ASTM A105, ASTM A216 Gr. WCB", body.Value)

	gaskets := fieldValue(t, fields, "gaskets")
	assert.Equal(t, "SS316L Ring Joint", gaskets.Value)
}

func TestResolveAll_MissingDesignPressureYieldsMissingOperand(t *testing.T) {
	r, dec := newTestResolver(t)
	decoded, err := dec.Decode("GSFC1W")
	require.NoError(t, err)

	fields, err := r.ResolveAll(context.Background(), decoded)
	require.NoError(t, err)

	shell := fieldValue(t, fields, "hydrotestShell")
	assert.False(t, shell.IsPopulated)
	assert.Contains(t, shell.Traceability.Notes, "MissingOperand")
	assert.Equal(t, vdsmodel.StatusMissing, shell.ValidationStatus)
}

func TestResolveAll_ContextCancelledMidResolutionReturnsTimeout(t *testing.T) {
	r, dec := newTestResolver(t)
	decoded, err := dec.Decode("BSFA1R")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.ResolveAll(ctx, decoded)
	require.Error(t, err)
}
