package response

import "github.com/gin-gonic/gin"

// Error codes shared by services and handlers
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// AppError is an application error carrying a machine-readable code
type AppError struct {
	Code    string
	Message string
	Details string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// NewAppError creates a new AppError
func NewAppError(code, message, details string) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

// ErrorDetail is the error body sent to clients
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope for failed requests
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// SuccessResponse is the envelope for successful requests
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// SendSuccess writes a success envelope with the given status code
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{Data: data})
}

// SendError writes an error envelope with the given status code
func SendError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}
