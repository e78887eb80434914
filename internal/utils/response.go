package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oilgas-backend/internal/vdserr"
)

// APIResponse represents a standard API response. RequestID echoes the
// uuid the request middleware attached to the Gin context, so a caller can
// correlate a response with server-side logs.
type APIResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message,omitempty"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"requestId,omitempty"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	APIResponse
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Pages  int `json:"pages"`
}

// ErrorDetail is the machine-readable failure shape: a taxonomy kind/code
// pair plus a message naming the offending field, never an
// implementation-internal identifier.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func requestID(c *gin.Context) string {
	id, _ := c.Get("requestId")
	s, _ := id.(string)
	return s
}

// Success sends a successful response
func Success(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
	})
}

// SuccessWithPagination sends a successful paginated response
func SuccessWithPagination(c *gin.Context, data interface{}, total, limit, offset int, message string) {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		APIResponse: APIResponse{
			Success:   true,
			Message:   message,
			Data:      data,
			RequestID: requestID(c),
		},
		Total:  total,
		Limit:  limit,
		Offset: offset,
		Pages:  pages,
	})
}

// Fail translates err into an HTTP status and error envelope. A
// *vdserr.Error carries its own taxonomy and status; anything else is
// reported as Internal with a generic message.
func Fail(c *gin.Context, err error) {
	if ve, ok := err.(*vdserr.Error); ok {
		c.JSON(ve.HTTPStatus(), APIResponse{
			Success: false,
			Error: &ErrorDetail{
				Kind:    string(ve.Kind),
				Code:    string(ve.Code),
				Field:   ve.Field,
				Message: ve.Error(),
			},
			RequestID: requestID(c),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, APIResponse{
		Success:   false,
		Error:     &ErrorDetail{Kind: "Internal", Message: "an unexpected error occurred"},
		RequestID: requestID(c),
	})
}

// NotFound sends a 404 response for a missing resource.
func NotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, APIResponse{
		Success:   false,
		Error:     &ErrorDetail{Kind: "InputError", Message: resource + " not found"},
		RequestID: requestID(c),
	})
}
