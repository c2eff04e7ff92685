// internal/workers/analyze-garment/handler.go
package analyzegarment

import (
	"context"
	"encoding/json"
	"time"

	"ecoscan-relay/internal/common/errors"
	"ecoscan-relay/internal/common/logger"
	"ecoscan-relay/internal/common/metrics"
	"ecoscan-relay/internal/common/validation"
	"ecoscan-relay/internal/models"
	"ecoscan-relay/internal/pipeline/input"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "analyze-garment"
)

// Analyzer is satisfied by *pipeline.Analyzer.
type Analyzer interface {
	Analyze(ctx context.Context, transport, imageDataURL, userLocation string) (*models.AnalysisResponse, error)
}

type Handler struct {
	config       *Config
	analyzer     Analyzer
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, analyzer Analyzer, log logger.Logger) *Handler {
	l := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:       config,
		analyzer:     analyzer,
		errorHandler: errors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer func() {
		metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
		"retries":     job.Retries,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.run(ctx, job.Variables)
	if err != nil {
		stdErr := errors.From(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
		return nil
	}

	return h.completeJob(context.Background(), client, job, output)
}

func (h *Handler) run(ctx context.Context, variables string) (*models.AnalysisResponse, error) {
	in, err := parseInput(variables)
	if err != nil {
		return nil, err
	}
	return h.execute(ctx, in)
}

func (h *Handler) execute(ctx context.Context, in *Input) (*models.AnalysisResponse, error) {
	resp, err := h.analyzer.Analyze(ctx, "job", in.ImageDataURL, in.LocationText())
	if err != nil {
		return nil, err
	}

	h.logger.Info("garment analysed", map[string]interface{}{
		"identifiedClothing": resp.IdentifiedClothing,
		"stores":             len(resp.NearbyStores),
	})
	return resp, nil
}

// parseInput checks the job variables against the input schema before
// decoding them.
func parseInput(variables string) (*Input, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &doc); err != nil {
		return nil, errors.NewInternalError(err)
	}

	if res := validation.Validate(validation.AnalyzeJobInputSchema, doc); !res.Valid {
		return nil, inputError(doc, res)
	}

	var in Input
	if err := json.Unmarshal([]byte(variables), &in); err != nil {
		return nil, errors.NewInternalError(err)
	}
	return &in, nil
}

func inputError(doc map[string]interface{}, res *validation.ValidationResult) error {
	for _, field := range []string{input.FieldImageDataURL, input.FieldUserLocation} {
		v, ok := doc[field]
		if !ok || v == nil || v == "" {
			return errors.NewMissingFieldError(field)
		}
	}
	if _, ok := doc[input.FieldImageDataURL].(string); !ok {
		return errors.NewInvalidImageFormatError()
	}
	return errors.NewInvalidLocationFormatError(res)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *models.AnalysisResponse) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromMap(output.ToVariables())
	if err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to send complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	return nil
}
