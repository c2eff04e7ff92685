// Package pipeline runs one garment analysis: validate the input, classify
// the photo, pick a suggestion and look up nearby stores.
package pipeline

import (
	"context"
	"time"

	"ecoscan-relay/internal/common/errors"
	"ecoscan-relay/internal/common/logger"
	"ecoscan-relay/internal/common/observability"
	"ecoscan-relay/internal/models"
	"ecoscan-relay/internal/pipeline/input"
	"ecoscan-relay/internal/pipeline/suggestion"
	"ecoscan-relay/internal/pipeline/vision"
)

// Classifier is satisfied by *vision.Classifier.
type Classifier interface {
	Ready() bool
	Classify(ctx context.Context, image []byte, mimeType string) (vision.Outcome, error)
}

// Locator is satisfied by *stores.Locator.
type Locator interface {
	Provider() string
	Locate(ctx context.Context, description string, loc models.Location) []models.Place
}

type Analyzer struct {
	parser     *input.Parser
	classifier Classifier
	locator    Locator
	obs        *observability.Observability
	logger     logger.Logger
}

func NewAnalyzer(parser *input.Parser, classifier Classifier, locator Locator, obs *observability.Observability, log logger.Logger) *Analyzer {
	if obs == nil {
		obs = observability.NewNoop()
	}
	return &Analyzer{
		parser:     parser,
		classifier: classifier,
		locator:    locator,
		obs:        obs,
		logger:     logger.Component(log, "pipeline"),
	}
}

// Ready reports whether the classifier has credentials.
func (a *Analyzer) Ready() bool {
	return a.classifier.Ready()
}

// Analyze returns a *errors.StandardError on failure. transport labels the
// metrics ("http" or "job").
func (a *Analyzer) Analyze(ctx context.Context, transport, imageDataURL, userLocation string) (*models.AnalysisResponse, error) {
	start := time.Now()
	resp, err := a.analyze(ctx, imageDataURL, userLocation)

	status := "ok"
	if err != nil {
		status = string(errors.From(err).Code)
	}
	a.obs.RecordAnalysis(ctx, transport, status, time.Since(start))
	if resp != nil {
		a.obs.RecordStoresFound(ctx, a.locator.Provider(), len(resp.NearbyStores))
	}
	return resp, err
}

func (a *Analyzer) analyze(ctx context.Context, imageDataURL, userLocation string) (*models.AnalysisResponse, error) {
	// credentials are checked before the input, so a misconfigured backend
	// answers every request the same way
	if !a.classifier.Ready() {
		return nil, errors.NewConfigurationError("vision.api_key is empty")
	}

	req, err := a.parser.Parse(imageDataURL, userLocation)
	if err != nil {
		return nil, err
	}

	outcome, err := a.classifier.Classify(ctx, req.Image, req.MIMEType)
	if err != nil {
		return nil, err
	}
	description := outcome.Text()

	resp := &models.AnalysisResponse{
		IdentifiedClothing:    description,
		SustainableSuggestion: suggestion.Suggest(description),
		NearbyStores:          a.locator.Locate(ctx, description, req.Location),
	}
	if resp.NearbyStores == nil {
		resp.NearbyStores = []models.Place{}
	}

	a.logger.Info("analysis completed", map[string]interface{}{
		"outcome":     outcome.Kind.String(),
		"description": description,
		"stores":      len(resp.NearbyStores),
	})
	return resp, nil
}
