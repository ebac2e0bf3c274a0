package errors

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/pixelpress/server/internal/logger"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Use errors.InternalError(), errors.BadRequest(), etc. for critical errors
//     These functions handle both logging and HTTP response automatically
//   - Use logger.ErrorErr() only for non-critical errors where processing continues
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error
//
// For WebSocket handlers:
//   - Use logger.ErrorErr() + client.SendError() + return err
//
// For services/repositories/internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Let the caller (handler) decide how to log and respond
//   - Do not log errors in non-handler code (avoid double logging)
//     Background workers with no caller to return to are the exception.

// UUID format: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx (36 characters)
var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// standard error codes
const (
	CodeUnauthorized        = "unauthorized"
	CodeForbidden           = "forbidden"
	CodeNotFound            = "not_found"
	CodeValidationError     = "validation_error"
	CodeServerError         = "server_error"
	CodeBadRequest          = "bad_request"
	CodeConflict            = "conflict"
	CodeTooManyRequests     = "too_many_requests"
	CodeInvalidOperation    = "invalid_operation"
	CodeInsufficientCredits = "insufficient_credits"
	CodeNoValidItems        = "no_valid_items"
	CodeRunActive           = "run_active"
	CodeQueueRunning        = "queue_running"
	CodeGenerationFailed    = "generation_failed"
)

// returns a 401 unauthorized error
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}

	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   CodeUnauthorized,
		Message: message,
	})
}

// returns a 403 forbidden error
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "permission denied"
	}

	c.JSON(http.StatusForbidden, ErrorResponse{
		Error:   CodeForbidden,
		Message: message,
	})
}

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	// add details if error provided
	if err != nil {
		response.Details = sanitizeError(err)
	}

	c.JSON(http.StatusBadRequest, response)
}

// returns a 400 bad request error for validation failures
func ValidationError(c *gin.Context, err error) {
	message := "validation failed"
	details := ""

	if err != nil {
		details = sanitizeError(err)
		if strings.Contains(err.Error(), "binding") || strings.Contains(err.Error(), "validation") {
			message = "request validation failed"
		}
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidationError,
		Message: message,
		Details: details,
	})
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	// log full error server-side with context
	logger.ErrorErr(err, message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"user_id", c.GetString("user_id"),
	)

	// return sanitized error to client
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   CodeServerError,
		Message: message,
		Details: sanitizeError(err),
	})
}

// returns a 409 conflict error
func Conflict(c *gin.Context, code, message string) {
	if code == "" {
		code = CodeConflict
	}

	if message == "" {
		message = "resource conflict"
	}

	c.JSON(http.StatusConflict, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// returns a 402 payment required error for balances below the cost
func PaymentRequired(c *gin.Context, message string) {
	if message == "" {
		message = "insufficient credits"
	}

	c.JSON(http.StatusPaymentRequired, ErrorResponse{
		Error:   CodeInsufficientCredits,
		Message: message,
	})
}

// returns a 422 error when the submitted batch has nothing to process
func Unprocessable(c *gin.Context, code, message string) {
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// returns a 502 error when the image webhook failed
func BadGateway(c *gin.Context, message string, err error) {
	if message == "" {
		message = "image generation failed"
	}

	logger.Warn(message,
		"path", c.Request.URL.Path,
		"user_id", c.GetString("user_id"),
		"error", err,
	)

	c.JSON(http.StatusBadGateway, ErrorResponse{
		Error:   CodeGenerationFailed,
		Message: message,
		Details: sanitizeError(err),
	})
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}

	c.JSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: message,
	})
}

// returns a 400 bad request error for invalid operations
func InvalidOperation(c *gin.Context, message string) {
	if message == "" {
		message = "invalid operation"
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeInvalidOperation,
		Message: message,
	})
}

// sanitizes error messages for production
func sanitizeError(err error) string {
	if err == nil {
		return ""
	}

	return classifyError(err).sanitized
}

// sanitizes free-form error details (e.g. websocket errors) for production
func SanitizeDetails(details string) string {
	if details == "" {
		return ""
	}

	return classifyError(stringError(details)).sanitized
}

type stringError string

func (e stringError) Error() string {
	return string(e)
}

// validates a UUID string format
func IsValidUUID(id string) bool {
	if id == "" {
		return false
	}

	return uuidRegex.MatchString(strings.ToLower(id))
}

// validates a UUID parameter from the request path
func ValidatePathUUID(c *gin.Context, paramName string) (string, bool) {
	id := c.Param(paramName)

	if id == "" {
		BadRequest(c, "missing "+paramName, nil)
		return "", false
	}

	if !IsValidUUID(id) {
		NotFound(c, "resource")
		return "", false
	}

	return id, true
}
