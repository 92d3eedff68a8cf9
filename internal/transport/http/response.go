package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tarotvision-server-go/internal/platform/errors"
)

// APIResponse is the envelope every JSON endpoint returns.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Message   string      `json:"message"`
	Code      int         `json:"code"`
	ErrorCode string      `json:"error_code,omitempty"`
}

// RespondSuccess writes a success envelope.
func RespondSuccess(c *gin.Context, httpStatus int, data interface{}, message string) {
	if message == "" {
		message = "ok"
	}
	c.JSON(httpStatus, APIResponse{
		Success: true,
		Message: message,
		Code:    httpStatus,
		Data:    data,
	})
}

// RespondError writes a failure envelope.
func RespondError(c *gin.Context, httpStatus int, message string, data interface{}) {
	c.JSON(httpStatus, APIResponse{
		Success: false,
		Message: message,
		Code:    httpStatus,
		Data:    data,
	})
}

// RespondDomainError maps a pipeline error onto its HTTP status and
// stable error code, so clients can branch on error_code without
// parsing messages.
func RespondDomainError(c *gin.Context, err error) {
	code := errors.CodeOf(err)
	c.JSON(StatusForCode(code), APIResponse{
		Success:   false,
		Message:   err.Error(),
		Code:      StatusForCode(code),
		ErrorCode: string(code),
	})
}

// StatusForCode picks the HTTP status for a stable error code.
// Validation problems are 400, proof-state conflicts are 409, model
// outage is 503 and version skew is a plain 500.
func StatusForCode(code errors.Code) int {
	switch code {
	case errors.CodeImageDecode,
		errors.CodeInsufficientImages,
		errors.CodeTooManyImages,
		errors.CodeProofMissing:
		return http.StatusBadRequest
	case errors.CodeProofMalformed,
		errors.CodeProofExpired,
		errors.CodeProofSignatureInvalid,
		errors.CodeProofTampered,
		errors.CodeProofScopeMismatch,
		errors.CodeProofReplayed:
		return http.StatusConflict
	case errors.CodeModelUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
