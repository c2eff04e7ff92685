package vision

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"ecoscan-relay/internal/common/errors"

	"google.golang.org/genai"
)

// classifyError maps an upstream failure onto the error taxonomy. The SDK's
// structured APIError is consulted first; matching on the error text is a
// best-effort fallback for failures that never reached the API.
func classifyError(err error, model string) *errors.StandardError {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return errors.NewClassificationFailedError(err)
	}

	if apiErr, ok := asAPIError(err); ok {
		if code := classifyAPIError(apiErr); code != "" {
			return newForCode(code, err, model)
		}
		return errors.NewClassificationFailedError(err)
	}

	if code := sniff(err.Error()); code != "" {
		return newForCode(code, err, model)
	}
	return errors.NewClassificationFailedError(err)
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if stderrors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}

func classifyAPIError(apiErr genai.APIError) errors.ErrorCode {
	switch {
	case apiErr.Code == http.StatusUnauthorized,
		apiErr.Code == http.StatusForbidden,
		apiErr.Status == "UNAUTHENTICATED",
		apiErr.Status == "PERMISSION_DENIED":
		return errors.ErrCodeUnauthorized
	case apiErr.Code == http.StatusNotFound,
		apiErr.Status == "NOT_FOUND":
		return errors.ErrCodeModelUnavailable
	}
	// The Gemini API reports a bad key as 400 INVALID_ARGUMENT.
	return sniff(apiErr.Message)
}

// sniff recognises the markers the upstream puts in its messages.
func sniff(msg string) errors.ErrorCode {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "401"),
		strings.Contains(lower, "api key not valid"),
		strings.Contains(lower, "api_key_invalid"):
		return errors.ErrCodeUnauthorized
	case strings.Contains(lower, "404"),
		strings.Contains(lower, "model") && strings.Contains(lower, "not found"),
		strings.Contains(lower, "disabled"):
		return errors.ErrCodeModelUnavailable
	}
	return ""
}

func newForCode(code errors.ErrorCode, err error, model string) *errors.StandardError {
	switch code {
	case errors.ErrCodeUnauthorized:
		return errors.NewUnauthorizedError(err)
	case errors.ErrCodeModelUnavailable:
		return errors.NewModelUnavailableError(model, err)
	default:
		return errors.NewClassificationFailedError(err)
	}
}
