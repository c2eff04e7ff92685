// internal/workers/analyze-garment/activity.go
package analyzegarment

import (
	"sort"

	"ecoscan-relay/internal/common/errors"
	"ecoscan-relay/internal/common/validation"
	"ecoscan-relay/pkg/registry"
)

var placeSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"name", "address", "distance"},
	"properties": map[string]interface{}{
		"name":     map[string]interface{}{"type": "string"},
		"address":  map[string]interface{}{"type": "string"},
		"distance": map[string]interface{}{"type": "string"},
		"lat":      map[string]interface{}{"type": "number"},
		"lng":      map[string]interface{}{"type": "number"},
	},
}

// OutputSchema describes the variables a completed job sets.
var OutputSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"identifiedClothing", "sustainableSuggestion", "nearbyStores"},
	"properties": map[string]interface{}{
		"identifiedClothing":    map[string]interface{}{"type": "string"},
		"sustainableSuggestion": map[string]interface{}{"type": "string"},
		"nearbyStores":          map[string]interface{}{"type": "array", "items": placeSchema},
	},
}

// Activity describes this worker for the activity registry.
func Activity(cfg *Config) registry.Activity {
	return registry.Activity{
		ID:                   TaskType,
		DisplayName:          "Analyze Garment",
		Description:          "Identifies the garment in a photo, suggests a sustainable alternative and lists nearby second-hand stores.",
		Category:             "analysis",
		Version:              "1.0.0",
		TaskType:             TaskType,
		ImplementationStatus: "completed",
		InputSchema:          validation.AnalyzeJobInputSchema,
		OutputSchema:         OutputSchema,
		ErrorCodes:           bpmnErrorCodes(),
		Timeout:              cfg.Timeout.String(),
		Retries:              errors.GetRetryCount(errors.ErrCodeClassificationFailed),
		Tags:                 []string{"vision", "gemini", "stores"},
	}
}

func bpmnErrorCodes() []string {
	seen := make(map[string]bool)
	var codes []string
	for _, code := range errors.BPMNErrorMapping {
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}
