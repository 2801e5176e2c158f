package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/netconfig/netconfig/pkg/util"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a service error to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, util.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, util.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, util.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, util.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, util.ErrValidationFailed), errors.Is(err, util.ErrUnsupportedVendor):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the mapped status. Internal errors are logged and
// replaced by a generic message.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		util.WithFields(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Errorf("request failed: %v", err)
		msg = "internal server error"
	}
	abort(c, status, msg)
}

// abort writes a {"error": msg} body and stops the handler chain
func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}
