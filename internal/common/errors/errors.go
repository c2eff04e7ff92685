package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode identifies a failure class of the analysis pipeline.
type ErrorCode string

const (
	// Input errors.
	ErrCodeMissingField          ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidLocationFormat ErrorCode = "INVALID_LOCATION_FORMAT"
	ErrCodeInvalidLocationData   ErrorCode = "INVALID_LOCATION_DATA"
	ErrCodeInvalidImageFormat    ErrorCode = "INVALID_IMAGE_FORMAT"
	ErrCodeInvalidImageEncoding  ErrorCode = "INVALID_IMAGE_ENCODING"

	// Vision upstream.
	ErrCodeContentBlocked       ErrorCode = "CONTENT_BLOCKED"
	ErrCodeUnauthorized         ErrorCode = "UNAUTHORIZED"
	ErrCodeModelUnavailable     ErrorCode = "MODEL_UNAVAILABLE"
	ErrCodeClassificationFailed ErrorCode = "CLASSIFICATION_FAILED"

	// Process level.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the classified error every stage returns. Message is safe
// to show to the caller; Details is for logs only.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// BPMNError is the shape thrown back to the process engine by the job worker.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message string, cause error) *StandardError {
	e := &StandardError{
		Code:      code,
		Message:   message,
		Retryable: GetRetryCount(code) > 0,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

func NewMissingFieldError(field string) *StandardError {
	e := newError(ErrCodeMissingField, fmt.Sprintf("Required field '%s' is missing.", field), nil)
	e.Metadata = map[string]interface{}{"field": field}
	return e
}

func NewInvalidLocationFormatError(err error) *StandardError {
	return newError(ErrCodeInvalidLocationFormat, "Invalid user location format (not JSON).", err)
}

func NewInvalidLocationDataError(details string) *StandardError {
	e := newError(ErrCodeInvalidLocationData, fmt.Sprintf("Invalid user location data: %s", details), nil)
	e.Details = details
	return e
}

func NewInvalidImageFormatError() *StandardError {
	return newError(ErrCodeInvalidImageFormat, "Invalid image data URL format.", nil)
}

func NewInvalidImageEncodingError(err error) *StandardError {
	return newError(ErrCodeInvalidImageEncoding, "Image data is not valid base64.", err)
}

func NewContentBlockedError(reason string) *StandardError {
	e := newError(ErrCodeContentBlocked,
		fmt.Sprintf("Content blocked by the AI safety policy. Reason: %s", reason), nil)
	e.Metadata = map[string]interface{}{"reason": reason}
	return e
}

func NewUnauthorizedError(err error) *StandardError {
	return newError(ErrCodeUnauthorized,
		"Google API key is invalid or not allowed to use the model.", err)
}

func NewModelUnavailableError(model string, err error) *StandardError {
	e := newError(ErrCodeModelUnavailable,
		fmt.Sprintf("Gemini model '%s' not found or disabled for this account.", model), err)
	e.Metadata = map[string]interface{}{"model": model}
	return e
}

func NewClassificationFailedError(err error) *StandardError {
	msg := "Error analyzing the image with the AI."
	if err != nil {
		msg = fmt.Sprintf("Error analyzing the image with the AI: %v", err)
	}
	return newError(ErrCodeClassificationFailed, msg, err)
}

func NewConfigurationError(details string) *StandardError {
	e := newError(ErrCodeConfiguration, "Google API key is not configured on the backend.", nil)
	e.Details = details
	return e
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "An unexpected server error occurred.", err)
}

// From returns the StandardError in err's chain, or wraps err as an
// internal error.
func From(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// HTTPStatus maps an error code onto the response status of the endpoint.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeMissingField,
		ErrCodeInvalidLocationFormat,
		ErrCodeInvalidLocationData,
		ErrCodeInvalidImageFormat,
		ErrCodeInvalidImageEncoding,
		ErrCodeContentBlocked:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeModelUnavailable:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeMissingField:          "INVALID_INPUT",
	ErrCodeInvalidLocationFormat: "INVALID_INPUT",
	ErrCodeInvalidLocationData:   "INVALID_INPUT",
	ErrCodeInvalidImageFormat:    "INVALID_INPUT",
	ErrCodeInvalidImageEncoding:  "INVALID_INPUT",
	ErrCodeContentBlocked:        "CONTENT_BLOCKED",
	ErrCodeUnauthorized:          "UPSTREAM_AUTH_FAILED",
	ErrCodeModelUnavailable:      "MODEL_UNAVAILABLE",
	ErrCodeClassificationFailed:  "CLASSIFICATION_FAILED",
	ErrCodeConfiguration:         "CONFIGURATION_ERROR",
}

// GetRetryCount is the retry budget the job worker grants a failure class.
// The HTTP endpoint never retries.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeClassificationFailed:
		return 2
	case ErrCodeInternal:
		return 1
	default:
		return 0
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// GetErrorCategory groups codes into the taxonomy used in logs.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case code == ErrCodeMissingField || strings.HasPrefix(codeStr, "INVALID_"):
		return "INPUT"
	case code == ErrCodeContentBlocked:
		return "CONTENT_POLICY"
	case code == ErrCodeUnauthorized:
		return "UPSTREAM_AUTH"
	case code == ErrCodeModelUnavailable:
		return "UPSTREAM_UNAVAILABLE"
	case code == ErrCodeClassificationFailed:
		return "UPSTREAM_TRANSIENT"
	case code == ErrCodeConfiguration:
		return "CONFIGURATION"
	default:
		return "INTERNAL"
	}
}
