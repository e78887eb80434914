package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"oilgas-backend/internal/engine"
	"oilgas-backend/internal/utils"
)

// VDSHandler wraps the engine for the HTTP surface. It is a thin layer:
// validate input, call the pure engine, serialize the result.
type VDSHandler struct {
	engine *engine.Engine
}

// NewVDSHandler builds a VDSHandler bound to eng.
func NewVDSHandler(eng *engine.Engine) *VDSHandler {
	return &VDSHandler{engine: eng}
}

// RegisterRoutes wires the handler's endpoints onto router.
func (h *VDSHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/decode/:vds", h.Decode)
	router.GET("/validate/:vds", h.Validate)
	router.GET("/datasheet/:vds", h.GenerateStructured)
	router.GET("/datasheet/:vds/flat", h.GenerateFlat)
	router.POST("/batch", h.Batch)
	router.GET("/metadata", h.Metadata)
	router.GET("/vds-codes", h.List)
	router.GET("/health", h.Health)
}

// Decode handles "Decode VDS".
func (h *VDSHandler) Decode(c *gin.Context) {
	decoded, err := h.engine.Decode(c.Param("vds"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, decoded, "VDS decoded")
}

// Validate handles "Validate VDS".
func (h *VDSHandler) Validate(c *gin.Context) {
	result := h.engine.Validate(c.Param("vds"))
	utils.Success(c, result, "")
}

// GenerateStructured handles "Generate datasheet (structured)".
func (h *VDSHandler) GenerateStructured(c *gin.Context) {
	sheet, err := h.engine.Generate(c.Request.Context(), c.Param("vds"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, sheet, "datasheet generated")
}

// GenerateFlat handles "Generate datasheet (flat)".
func (h *VDSHandler) GenerateFlat(c *gin.Context) {
	flat, meta, err := h.engine.GenerateFlat(c.Request.Context(), c.Param("vds"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, gin.H{"fields": flat, "metadata": meta}, "flat datasheet generated")
}

// batchRequest is the JSON body for "Batch generate". VDSCodes has no
// "required" binding tag: an empty or absent list is a valid request that
// produces an empty batch result, not a binding error.
type batchRequest struct {
	VDSCodes []string `json:"vdsCodes"`
}

// Batch handles "Batch generate".
func (h *VDSHandler) Batch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, vdsBindError(err))
		return
	}

	results := h.engine.Batch(c.Request.Context(), req.VDSCodes)
	utils.Success(c, results, "batch complete")
}

// Metadata handles "Metadata".
func (h *VDSHandler) Metadata(c *gin.Context) {
	utils.Success(c, h.engine.Metadata(), "")
}

// List handles "List VDS codes".
func (h *VDSHandler) List(c *gin.Context) {
	valveType := c.Query("valveType")
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	result := h.engine.List(valveType, offset, limit)
	utils.SuccessWithPagination(c, result.Codes, result.Total, result.Limit, result.Offset, "")
}

// Health handles "Health".
func (h *VDSHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Health())
}
