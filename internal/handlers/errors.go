package handlers

import "oilgas-backend/internal/vdserr"

// vdsBindError wraps a Gin JSON-binding failure for the batch request body
// as an InputError so utils.Fail reports it with the standard envelope.
func vdsBindError(err error) error {
	return vdserr.InputError(vdserr.CodeInvalidBatchRequest, "vdsCodes", err.Error())
}
