package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// LocationSchema describes the userLocation JSON object.
var LocationSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"lat", "lng"},
	"properties": map[string]interface{}{
		"lat": map[string]interface{}{"type": "number", "minimum": -90, "maximum": 90},
		"lng": map[string]interface{}{"type": "number", "minimum": -180, "maximum": 180},
	},
}

// AnalyzeJobInputSchema describes the variables of an analyze-garment job.
var AnalyzeJobInputSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"imageDataUrl", "userLocation"},
	"properties": map[string]interface{}{
		"imageDataUrl": map[string]interface{}{"type": "string", "minLength": 1},
		// a JSON string as on the HTTP form, or the location object itself
		"userLocation": map[string]interface{}{"type": []interface{}{"string", "object"}, "minLength": 1},
	},
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error joins the individual failures into one line.
func (r *ValidationResult) Error() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// Validate checks document against schema. A schema that cannot be compiled
// is reported as a single SCHEMA_ERROR failure.
func Validate(schema map[string]interface{}, document interface{}) *ValidationResult {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   "(root)",
			Message: err.Error(),
			Code:    "SCHEMA_ERROR",
		}}}
	}
	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return &ValidationResult{Errors: errs}
}

func ValidateLocation(document interface{}) *ValidationResult {
	return Validate(LocationSchema, document)
}
