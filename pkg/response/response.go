package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/snippetvault/snippetvault/pkg/errors"
	"github.com/snippetvault/snippetvault/pkg/validator"
)

// Response defines the base API payload. Every handler reply, success or
// failure, carries the Success flag.
type Response struct {
	Success bool                       `json:"success"`
	Count   *int                       `json:"count,omitempty"`
	Message string                     `json:"message,omitempty"`
	Data    interface{}                `json:"data,omitempty"`
	Error   *ErrorInfo                 `json:"error,omitempty"`
	Errors  validator.ValidationErrors `json:"errors,omitempty"`
}

// ErrorInfo holds error details to send to clients. Detail is only populated
// while gin runs in debug mode; release builds never leak internals.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Success writes a JSON success response.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMessage writes a JSON success response with a human readable message.
func SuccessWithMessage(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// List writes a JSON success response for collections, including the result count.
func List(c *gin.Context, statusCode int, data interface{}, count int) {
	c.JSON(statusCode, Response{
		Success: true,
		Count:   &count,
		Data:    data,
	})
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	info := &ErrorInfo{
		Code:    appErr.Code,
		Message: appErr.Message,
	}
	if gin.IsDebugging() && appErr.Internal != nil {
		info.Detail = appErr.Internal.Error()
	}

	c.JSON(status, Response{
		Success: false,
		Error:   info,
	})
}

// ValidationFailed writes a 400 response enumerating every failing field.
func ValidationFailed(c *gin.Context, failures validator.ValidationErrors) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Errors:  failures,
	})
}
