package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oilgas-backend/internal/engine"
	"oilgas-backend/internal/utils"
)

const dataDir = "../../testdata/data"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	eng, err := engine.New(dataDir)
	require.NoError(t, err)

	router := gin.New()
	group := router.Group("/")
	NewVDSHandler(eng).RegisterRoutes(group)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBatch_EmptyCodesListSucceeds(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/batch", map[string]interface{}{"vdsCodes": []string{}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	results, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Empty(t, results)
}

func TestBatch_MissingCodesFieldSucceedsAsEmptyBatch(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/batch", map[string]interface{}{})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestBatch_MalformedJSONIsInvalidBatchRequest(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/batch", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "InvalidBatchRequest", resp.Error.Code)
}

func TestBatch_MixedCodesPreservesOrder(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/batch", map[string]interface{}{
		"vdsCodes": []string{"BSFA1R", "NOPE"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	results, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, results, 2)
	first, ok := results[0].(map[string]interface{})
	require.True(t, ok)
	second, ok := results[1].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "BSFA1R", first["vds"])
	assert.Equal(t, "success", first["status"])
	assert.Equal(t, "NOPE", second["vds"])
	assert.Equal(t, "error", second["status"])
}

func TestHealth_ReportsOK(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
