package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/assignment-backend/internal/domain"
)

// StatusFor maps a domain error code to its HTTP status.
func StatusFor(code types.ErrorCode) int {
	switch code {
	case types.CodeValidation:
		return http.StatusBadRequest
	case types.CodeConflict:
		return http.StatusConflict
	case types.CodeNotFound:
		return http.StatusNotFound
	case types.CodeInvalidState:
		return http.StatusConflict
	case types.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// RespondDomainError renders err with the status of its code. Internal
// failures never leak their message.
func RespondDomainError(c *gin.Context, err error) {
	code := types.CodeOf(err)
	if code == "" {
		code = types.CodeInternal
	}
	c.JSON(StatusFor(code), ErrorEnvelope{
		Error: APIError{
			Message: types.PublicMessage(err),
			Code:    string(code),
		},
	})
}

func RespondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorEnvelope{
		Error: APIError{Message: msg, Code: string(types.CodeValidation)},
	})
}
