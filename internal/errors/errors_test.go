package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		kind     error
		code     string
		status   int
		category ErrorCategory
	}{
		{
			name:     "zero credit",
			err:      NewZeroCreditError("subjects"),
			kind:     ErrZeroCredit,
			code:     "ZERO_CREDIT",
			status:   http.StatusUnprocessableEntity,
			category: CategoryCalculation,
		},
		{
			name:     "empty input",
			err:      NewEmptyInputError("semester"),
			kind:     ErrEmptyInput,
			code:     "EMPTY_INPUT",
			status:   http.StatusUnprocessableEntity,
			category: CategoryCalculation,
		},
		{
			name:     "missing name",
			err:      NewMissingNameError(),
			kind:     ErrMissingName,
			code:     "MISSING_NAME",
			status:   http.StatusBadRequest,
			category: CategoryValidation,
		},
		{
			name:     "out of range",
			err:      NewOutOfRangeError("subject count", 21, 1, 20),
			kind:     ErrOutOfRange,
			code:     "OUT_OF_RANGE",
			status:   http.StatusBadRequest,
			category: CategoryValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.kind))
			assert.Equal(t, tt.code, tt.err.Code())
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.category, tt.err.Category)
			assert.True(t, IsUserError(tt.err))

			wrapped := fmt.Errorf("calculating: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.kind), "kind survives wrapping")
			assert.Same(t, tt.err, ToAppError(wrapped))
		})
	}

	assert.False(t, errors.Is(NewZeroCreditError("x"), ErrEmptyInput))
	assert.False(t, errors.Is(NewValidationError("bad"), ErrZeroCredit))
}

func TestAppError_MessageAndFields(t *testing.T) {
	err := NewMissingNameError()
	assert.Equal(t, "Please enter your name to generate PDF", err.Message())
	assert.Equal(t, "[MISSING_NAME] Please enter your name to generate PDF", err.Error())
	assert.Empty(t, err.Fields())

	rangeErr := NewOutOfRangeError("subjects[0].credits", 11, 1, 10)
	assert.Equal(t, map[string]string{"subjects[0].credits": "must be between 1 and 10"}, rangeErr.Fields())
	assert.Contains(t, rangeErr.Message(), "got 11")

	multi := NewValidationErrorWithMap(map[string]string{
		"subjects[0].credits": "must be between 1 and 10",
		"subjects[2].grade":   "unknown grade",
	})
	assert.Equal(t, "VALIDATION_ERROR", multi.Code())
	assert.Equal(t, map[string]string{
		"subjects[0].credits": "must be between 1 and 10",
		"subjects[2].grade":   "unknown grade",
	}, multi.Fields())
}

func TestAppError_Response(t *testing.T) {
	err := NewValidationErrorWithMap(map[string]string{"semesters[1].sgpa": "must be between 0 and 10"})
	err.RequestID = "req-1"

	body := err.Response()
	assert.Equal(t, "VALIDATION_ERROR", body["error"])
	assert.Equal(t, CategoryValidation, body["category"])
	assert.Equal(t, "req-1", body["request_id"])
	assert.Equal(t, map[string]string{"semesters[1].sgpa": "must be between 0 and 10"}, body["fields"])

	plain := NewTimeoutError("Request deadline exceeded", nil).Response()
	assert.NotContains(t, plain, "fields")
	assert.NotContains(t, plain, "request_id")
}

func TestToAppError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     string
		category ErrorCategory
	}{
		{name: "deadline", err: context.DeadlineExceeded, code: "TIMEOUT_ERROR", category: CategoryTimeout},
		{name: "cancelled", err: fmt.Errorf("read: %w", context.Canceled), code: "TIMEOUT_ERROR", category: CategoryTimeout},
		{name: "plain error", err: errors.New("disk on fire"), code: "INTERNAL_ERROR", category: CategoryInternal},
		{name: "rate limit", err: NewRateLimitError("60"), code: "RATE_LIMIT_EXCEEDED", category: CategoryRateLimit},
		{name: "configuration", err: NewConfigurationError("bad policy", nil), code: "CONFIGURATION_ERROR", category: CategoryConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ToAppError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.code, appErr.Code())
			assert.Equal(t, tt.category, appErr.Category)
			assert.False(t, IsUserError(appErr))
		})
	}

	assert.Nil(t, ToAppError(nil))
}

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("request_id", "req-42")
		c.Next()
	})
	r.Use(ErrorHandler())
	r.GET("/zero", func(c *gin.Context) {
		_ = c.Error(NewZeroCreditError("subjects"))
	})
	r.GET("/written", func(c *gin.Context) {
		c.String(http.StatusOK, "fine")
		_ = c.Error(errors.New("logged only"))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/zero", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ZERO_CREDIT", body["error"])
	assert.Equal(t, "req-42", body["request_id"])

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/written", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fine", w.Body.String())
}

func TestRecoveryHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RecoveryHandler())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/panic", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "ignored"))

	err := WrapError(NewEmptyInputError("subject"), "row %d", 3)
	assert.Contains(t, err.Error(), "row 3: [EMPTY_INPUT]")
	assert.True(t, errors.Is(err, ErrEmptyInput))
}
