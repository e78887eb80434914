package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oilgas-backend/internal/vdsmodel"
)

const dataDir = "../../testdata/data"

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(dataDir)
	require.NoError(t, err)
	return e
}

func TestNew_RejectsMissingDataDir(t *testing.T) {
	_, err := New("./nonexistent")
	require.Error(t, err)
}

func TestEngine_Health(t *testing.T) {
	e := newTestEngine(t)

	h := e.Health()
	assert.Equal(t, "ok", h.Status)
	assert.True(t, h.DataLoaded)
	assert.Equal(t, 5, h.PipingClassesCount)
	assert.Equal(t, 3, h.VDSIndexCount)
}

func TestEngine_Validate(t *testing.T) {
	e := newTestEngine(t)

	ok := e.Validate("BSFA1R")
	assert.True(t, ok.IsValid)
	assert.Empty(t, ok.Error)

	bad := e.Validate("ZZFA1R")
	assert.False(t, bad.IsValid)
	assert.NotEmpty(t, bad.Error)
}

func TestEngine_GenerateFullScenarios(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	cases := []struct {
		vds            string
		wantStatus     vdsmodel.ValidationStatus
		wantCompletion bool // true: expect 100%, false: expect < 100%
	}{
		{"BSFA1R", vdsmodel.StatusValid, true},
		{"BSFB1NR", vdsmodel.StatusValid, true},
		{"GSRD1W", vdsmodel.StatusValid, false},
		{"BSFMG1LNJ", vdsmodel.StatusWarning, false},
	}

	for _, tc := range cases {
		t.Run(tc.vds, func(t *testing.T) {
			sheet, err := e.Generate(ctx, tc.vds)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, sheet.Metadata.ValidationStatus)
			if tc.wantCompletion {
				assert.Equal(t, 100.0, sheet.Metadata.Completion.Percentage)
			} else {
				assert.Less(t, sheet.Metadata.Completion.Percentage, 100.0)
			}
		})
	}
}

func TestEngine_GenerateMissingDesignPressureIsInvalid(t *testing.T) {
	e := newTestEngine(t)

	sheet, err := e.Generate(context.Background(), "GSFC1W")
	require.NoError(t, err)
	assert.Equal(t, vdsmodel.StatusInvalid, sheet.Metadata.ValidationStatus)
	assert.NotEmpty(t, sheet.Metadata.ValidationErrors)
}

func TestEngine_GenerateRejectsBadInput(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Generate(context.Background(), "NOPE")
	require.Error(t, err)
}

func TestEngine_GenerateFlatMatchesStructuredValues(t *testing.T) {
	e := newTestEngine(t)

	flat, meta, err := e.GenerateFlat(context.Background(), "BSFA1R")
	require.NoError(t, err)
	assert.Equal(t, "BSFA1R", meta.VDSNo)
	assert.Equal(t, "BSFA1R", flat["vdsNo"])
	assert.Equal(t, "19.6 barg @ 38°C", flat["designPressure"])
}

func TestEngine_BatchPreservesOrderAndIsolatesFailures(t *testing.T) {
	e := newTestEngine(t)

	results := e.Batch(context.Background(), []string{"BSFA1R", "NOPE", "GSRD1W"})
	require.Len(t, results, 3)
	assert.Equal(t, "success", results[0].Status)
	assert.Equal(t, "error", results[1].Status)
	assert.Equal(t, "success", results[2].Status)
	assert.Equal(t, "BSFA1R", results[0].VDS)
	assert.Equal(t, "GSRD1W", results[2].VDS)
}

func TestEngine_GenerateHonorsDeadline(t *testing.T) {
	e := newTestEngine(t)

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := e.Generate(ctx, "BSFA1R")
	require.Error(t, err)
}

func TestEngine_ListPagination(t *testing.T) {
	e := newTestEngine(t)

	page := e.List("", 0, 2)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Codes, 2)

	rest := e.List("", 2, 2)
	assert.Len(t, rest.Codes, 1)

	filtered := e.List("GS", 0, 10)
	assert.Equal(t, 1, filtered.Total)
}

func TestEngine_Metadata(t *testing.T) {
	e := newTestEngine(t)

	md := e.Metadata()
	assert.Len(t, md.PipingClasses, 5)
	assert.NotEmpty(t, md.ValveTypes)
	assert.NotEmpty(t, md.EndConnections)
	assert.NotEmpty(t, md.BoreTypes)
}
