package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"mime"
	"net/http"
	"time"

	"ecoscan-relay/internal/common/errors"
	"ecoscan-relay/internal/common/logger"
	"ecoscan-relay/internal/models"
	"ecoscan-relay/internal/pipeline/input"
)

const DefaultMaxBodyBytes = 20 << 20

// Analyzer is satisfied by *pipeline.Analyzer.
type Analyzer interface {
	Ready() bool
	Analyze(ctx context.Context, transport, imageDataURL, userLocation string) (*models.AnalysisResponse, error)
}

type Handler struct {
	analyzer     Analyzer
	maxBodyBytes int64
	logger       logger.Logger
}

func NewHandler(analyzer Analyzer, maxBodyBytes int64, log logger.Logger) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{
		analyzer:     analyzer,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.Component(log, "api"),
	}
}

// HandleAnalyze accepts imageDataUrl and userLocation as urlencoded or
// multipart form fields.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	if err := h.parseForm(r); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			sendError(w, "Request body is too large.", http.StatusRequestEntityTooLarge)
			return
		}
		sendError(w, "Request body is not a valid form.", http.StatusBadRequest)
		return
	}

	resp, err := h.analyzer.Analyze(r.Context(), "http",
		r.PostFormValue(input.FieldImageDataURL),
		r.PostFormValue(input.FieldUserLocation),
	)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	sendJSON(w, resp, http.StatusOK)
}

func (h *Handler) parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(h.maxBodyBytes)
	}
	return r.ParseForm()
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := errors.From(err)
	status := errors.HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"requestId": RequestIDFrom(r.Context()),
		"errorCode": string(stdErr.Code),
		"category":  errors.GetErrorCategory(stdErr.Code),
		"status":    status,
		"details":   stdErr.Details,
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("analysis failed", fields)
	} else {
		h.logger.Warn("analysis rejected", fields)
	}

	sendError(w, stdErr.Message, status)
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	}, http.StatusOK)
}

// HandleReady reports 503 until a vision API key is configured.
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if !h.analyzer.Ready() {
		sendJSON(w, map[string]string{
			"status": "not_ready",
			"reason": "vision API key is not configured",
		}, http.StatusServiceUnavailable)
		return
	}
	sendJSON(w, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	}, http.StatusOK)
}

func sendJSON(w http.ResponseWriter, body interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func sendError(w http.ResponseWriter, detail string, status int) {
	sendJSON(w, map[string]string{"detail": detail}, status)
}
