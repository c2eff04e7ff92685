// Package vision classifies a garment photo with a Gemini vision model.
package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ecoscan-relay/internal/common/errors"
	"ecoscan-relay/internal/common/logger"
	"ecoscan-relay/internal/common/metrics"

	"google.golang.org/genai"
)

// Prompt asks for type and main colour in a few words, in Portuguese, and
// for a fixed answer when the photo is not of a garment.
const Prompt = "Descreva a peça de roupa nesta imagem em poucas palavras, focando no tipo e cor principal. " +
	"Ex: 'camiseta azul', 'calça jeans preta'. Se não for uma peça de roupa, diga 'Não é uma peça de roupa'."

const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 30 * time.Second
)

var blockNone = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
}

type Classifier struct {
	source  GeneratorSource
	model   string
	timeout time.Duration
	logger  logger.Logger
}

func NewClassifier(source GeneratorSource, model string, timeout time.Duration, log logger.Logger) *Classifier {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Classifier{
		source:  source,
		model:   model,
		timeout: timeout,
		logger:  logger.Component(log, "vision"),
	}
}

// Ready reports whether an API key is configured.
func (c *Classifier) Ready() bool {
	return c.source != nil && c.source.Ready()
}

func (c *Classifier) Model() string {
	return c.model
}

// Classify makes a single attempt. Failures come back as
// *errors.StandardError.
func (c *Classifier) Classify(ctx context.Context, image []byte, mimeType string) (Outcome, error) {
	if !c.Ready() {
		return Outcome{}, errors.NewConfigurationError("vision.api_key is empty")
	}

	start := time.Now()
	outcome, err := c.classify(ctx, image, mimeType)
	metrics.ClassificationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		stdErr := errors.From(err)
		metrics.ClassificationsTotal.WithLabelValues(string(stdErr.Code)).Inc()
		c.logger.Warn("classification failed", map[string]interface{}{
			"model":     c.model,
			"errorCode": string(stdErr.Code),
			"error":     err,
		})
		return Outcome{}, stdErr
	}

	metrics.ClassificationsTotal.WithLabelValues(outcome.Kind.String()).Inc()
	c.logger.Info("classification completed", map[string]interface{}{
		"model":      c.model,
		"outcome":    outcome.Kind.String(),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return outcome, nil
}

func (c *Classifier) classify(ctx context.Context, image []byte, mimeType string) (Outcome, error) {
	generator, err := c.source.Generator(ctx)
	if err != nil {
		return Outcome{}, errors.NewClassificationFailedError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(Prompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}

	resp, err := generator.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		SafetySettings: blockNone,
	})
	if err != nil {
		return Outcome{}, classifyError(err, c.model)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		reason := blockReason(resp)
		c.logger.Warn("response blocked by safety policy", map[string]interface{}{
			"reason": reason,
		})
		return Outcome{}, errors.NewContentBlockedError(reason)
	}

	text, ok := firstText(resp.Candidates[0])
	if !ok {
		return Outcome{Kind: KindUnidentified}, nil
	}
	return Normalize(text), nil
}

// blockReason lists the safety ratings above negligible, or "unknown".
func blockReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || resp.PromptFeedback == nil {
		return "unknown"
	}
	var reasons []string
	for _, rating := range resp.PromptFeedback.SafetyRatings {
		if rating == nil {
			continue
		}
		switch rating.Probability {
		case "", genai.HarmProbabilityUnspecified, genai.HarmProbabilityNegligible, "UNKNOWN":
			continue
		}
		reasons = append(reasons, fmt.Sprintf("%s: %s", rating.Category, rating.Probability))
	}
	if len(reasons) == 0 {
		return "unknown"
	}
	return strings.Join(reasons, "; ")
}

func firstText(candidate *genai.Candidate) (string, bool) {
	if candidate == nil || candidate.Content == nil {
		return "", false
	}
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		if strings.TrimSpace(part.Text) != "" {
			return part.Text, true
		}
	}
	return "", false
}
