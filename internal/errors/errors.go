package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
)

// Sentinel kinds carried by AppError. Match them with errors.Is.
var (
	ErrZeroCredit  = errors.New("total credits cannot be zero")
	ErrEmptyInput  = errors.New("no entries supplied")
	ErrMissingName = errors.New("student name is required")
	ErrOutOfRange  = errors.New("value out of range")
)

// ErrorCategory defines the type of error for proper handling
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryCalculation   ErrorCategory = "calculation"
	CategoryTimeout       ErrorCategory = "timeout"
	CategoryRateLimit     ErrorCategory = "rate_limit"
	CategoryInternal      ErrorCategory = "internal"
	CategoryConfiguration ErrorCategory = "configuration"
)

// AppError wraps an errbuilder error with the category, HTTP status and
// sentinel kind the handlers need.
type AppError struct {
	*errbuilder.ErrBuilder
	Category   ErrorCategory `json:"category"`
	HTTPStatus int           `json:"http_status"`
	Timestamp  time.Time     `json:"timestamp"`
	RequestID  string        `json:"request_id,omitempty"`
	StackTrace string        `json:"stack_trace,omitempty"`

	kind error
}

// Code returns the stable, client-facing error code.
func (e *AppError) Code() string {
	switch e.kind {
	case ErrZeroCredit:
		return "ZERO_CREDIT"
	case ErrEmptyInput:
		return "EMPTY_INPUT"
	case ErrMissingName:
		return "MISSING_NAME"
	case ErrOutOfRange:
		return "OUT_OF_RANGE"
	}

	switch e.ErrBuilder.ErrCode() {
	case errbuilder.CodeInvalidArgument:
		return "VALIDATION_ERROR"
	case errbuilder.CodeDeadlineExceeded:
		return "TIMEOUT_ERROR"
	case errbuilder.CodeResourceExhausted:
		return "RATE_LIMIT_EXCEEDED"
	case errbuilder.CodeInternal:
		return "INTERNAL_ERROR"
	case errbuilder.CodeFailedPrecondition:
		return "CONFIGURATION_ERROR"
	}
	return "UNKNOWN_ERROR"
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code(), e.ErrBuilder.Msg)
}

// Message returns the human readable message without the code prefix.
func (e *AppError) Message() string {
	return e.ErrBuilder.Msg
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// Is reports whether the error carries the given sentinel kind.
func (e *AppError) Is(target error) bool {
	return e.kind != nil && target == e.kind
}

// Fields returns per-field validation messages, if any were attached.
func (e *AppError) Fields() map[string]string {
	details := e.ErrBuilder.Details
	if len(details.Errors) == 0 {
		return nil
	}
	fields := make(map[string]string, len(details.Errors))
	for field, err := range details.Errors {
		if err != nil {
			fields[field] = errMessage(err)
		}
	}
	return fields
}

// Response builds the JSON body returned to API clients.
func (e *AppError) Response() gin.H {
	body := gin.H{
		"error":    e.Code(),
		"message":  e.Message(),
		"category": e.Category,
	}
	if fields := e.Fields(); len(fields) > 0 {
		body["fields"] = fields
	}
	if e.RequestID != "" {
		body["request_id"] = e.RequestID
	}
	return body
}

func errMessage(err error) string {
	var eb *errbuilder.ErrBuilder
	if errors.As(err, &eb) {
		return eb.Msg
	}
	return err.Error()
}

// NewAppError creates an AppError from errbuilder with additional context
func NewAppError(builder *errbuilder.ErrBuilder, category ErrorCategory, httpStatus int) *AppError {
	return &AppError{
		ErrBuilder: builder,
		Category:   category,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now(),
	}
}

func newKindError(kind error, message string, category ErrorCategory, httpStatus int) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message).
		WithCause(kind)

	appErr := NewAppError(builder, category, httpStatus)
	appErr.kind = kind
	return appErr
}

// NewZeroCreditError reports an aggregation whose total credit weight is zero.
func NewZeroCreditError(scope string) *AppError {
	return newKindError(ErrZeroCredit,
		fmt.Sprintf("Total credits cannot be zero (%s)", scope),
		CategoryCalculation, http.StatusUnprocessableEntity)
}

// NewEmptyInputError reports an aggregation attempted with no entries.
func NewEmptyInputError(scope string) *AppError {
	return newKindError(ErrEmptyInput,
		fmt.Sprintf("At least one %s is required", scope),
		CategoryCalculation, http.StatusUnprocessableEntity)
}

// NewMissingNameError blocks a report export without a student name.
func NewMissingNameError() *AppError {
	return newKindError(ErrMissingName,
		"Please enter your name to generate PDF",
		CategoryValidation, http.StatusBadRequest)
}

// NewOutOfRangeError reports a single field outside its allowed bounds.
func NewOutOfRangeError(field string, value interface{}, lo, hi interface{}) *AppError {
	appErr := newKindError(ErrOutOfRange,
		fmt.Sprintf("%s must be between %v and %v, got %v", field, lo, hi, value),
		CategoryValidation, http.StatusBadRequest)

	errorMap := errbuilder.ErrorMap{}
	errorMap.Set(field, fmt.Errorf("must be between %v and %v", lo, hi))
	appErr.ErrBuilder = appErr.ErrBuilder.WithDetails(errbuilder.NewErrDetails(errorMap))
	return appErr
}

// NewValidationError creates a validation error using errbuilder
func NewValidationError(message string, details ...interface{}) *AppError {
	detailStr := ""
	if len(details) > 0 {
		detailStr = fmt.Sprintf("%v", details[0])
	}

	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)

	if detailStr != "" {
		errorMap := errbuilder.ErrorMap{}
		errorMap.Set("validation_details", errors.New(detailStr))
		builder = builder.WithDetails(errbuilder.NewErrDetails(errorMap))
	}

	return NewAppError(builder, CategoryValidation, http.StatusBadRequest)
}

// NewValidationErrorWithMap creates a validation error using ErrorMap for multiple validation issues
func NewValidationErrorWithMap(validationErrors map[string]string) *AppError {
	errMap := errbuilder.ErrorMap{}

	for field, message := range validationErrors {
		errMap.Set(field, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(message))
	}

	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("Multiple validation errors").
		WithDetails(errbuilder.NewErrDetails(errMap))

	return NewAppError(builder, CategoryValidation, http.StatusBadRequest)
}

// NewTimeoutError creates a timeout error using errbuilder
func NewTimeoutError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeDeadlineExceeded).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryTimeout, http.StatusGatewayTimeout)
}

// NewRateLimitError creates a rate limit error using errbuilder
func NewRateLimitError(retryAfter string) *AppError {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set("retry_after", errors.New(retryAfter))

	builder := errbuilder.New().
		WithCode(errbuilder.CodeResourceExhausted).
		WithMsg("Rate limit exceeded").
		WithDetails(errbuilder.NewErrDetails(errorMap))

	return NewAppError(builder, CategoryRateLimit, http.StatusTooManyRequests)
}

// NewInternalError creates an internal server error using errbuilder
func NewInternalError(message string, cause error) *AppError {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set("internal_details", errors.New(message))

	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("Internal server error").
		WithDetails(errbuilder.NewErrDetails(errorMap))

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	appErr := NewAppError(builder, CategoryInternal, http.StatusInternalServerError)

	if gin.Mode() == gin.DebugMode || gin.Mode() == gin.TestMode {
		appErr.StackTrace = captureStackTrace()
	}

	return appErr
}

// NewConfigurationError creates a configuration error using errbuilder
func NewConfigurationError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryConfiguration, http.StatusInternalServerError)
}

func captureStackTrace() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// ErrorHandler is a Gin middleware that provides centralized error handling
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := ToAppError(c.Errors.Last().Err)
		appErr.RequestID = c.GetString("request_id")
		LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr.Response())
	}
}

// RecoveryHandler provides panic recovery with structured error responses
func RecoveryHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err interface{}) {
		appErr := NewInternalError(
			fmt.Sprintf("Panic recovered: %v", err),
			fmt.Errorf("%v", err),
		)
		appErr.StackTrace = captureStackTrace()
		appErr.RequestID = c.GetString("request_id")

		LogError(c, appErr)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Response())
	})
}

// ToAppError converts any error to an AppError
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var ebErr *errbuilder.ErrBuilder
	if errors.As(err, &ebErr) {
		return NewAppError(ebErr, CategoryInternal, http.StatusInternalServerError)
	}

	if errors.Is(err, context.Canceled) {
		return NewTimeoutError("Request cancelled", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("Request deadline exceeded", err)
	}

	return NewInternalError("An unexpected error occurred", err)
}

// LogError logs an error with appropriate level and context
func LogError(c *gin.Context, err *AppError) {
	logEntry := slog.With(
		"error_category", err.Category,
		"error_code", err.Code(),
		"http_status", err.HTTPStatus,
		"ip", c.ClientIP(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetString("request_id"),
	)

	switch err.Category {
	case CategoryValidation, CategoryCalculation, CategoryRateLimit:
		if fields := err.Fields(); len(fields) > 0 {
			logEntry.Warn(err.Message(), "fields", fields)
		} else {
			logEntry.Warn(err.Message())
		}
	case CategoryTimeout:
		logEntry.Info(err.Message(), "cause", err.Unwrap())
	default:
		if cause := err.Unwrap(); cause != nil {
			logEntry.Error(err.Message(), "cause", cause)
		} else {
			logEntry.Error(err.Message())
		}
	}

	if err.StackTrace != "" && (gin.Mode() == gin.DebugMode || gin.Mode() == gin.TestMode) {
		logEntry.Debug("stack_trace", "trace", err.StackTrace)
	}
}

// IsUserError reports whether err is a recoverable input problem rather
// than a server fault.
func IsUserError(err error) bool {
	appErr := ToAppError(err)
	switch appErr.Category {
	case CategoryValidation, CategoryCalculation:
		return true
	default:
		return false
	}
}

// WrapError wraps an error with additional context
func WrapError(err error, message string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	contextMsg := fmt.Sprintf(message, args...)
	return fmt.Errorf("%s: %w", contextMsg, err)
}
