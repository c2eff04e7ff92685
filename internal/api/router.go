// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"net/http"

	"ecoscan-relay/internal/common/logger"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

const AnalyzePath = "/analyze_and_find_stores"

// RouterConfig carries the HTTP-level settings of the service.
type RouterConfig struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// NewRouter wires the endpoints, request IDs, access logging and CORS.
func NewRouter(analyzer Analyzer, cfg RouterConfig, log logger.Logger) http.Handler {
	h := NewHandler(analyzer, cfg.MaxBodyBytes, log)

	r := mux.NewRouter()
	r.Use(requestID)
	r.Use(accessLog(logger.Component(log, "http")))

	r.HandleFunc(AnalyzePath, h.HandleAnalyze).Methods(http.MethodPost).Name("analyze")
	r.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet).Name("health")
	r.HandleFunc("/ready", h.HandleReady).Methods(http.MethodGet).Name("ready")
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet).Name("metrics")

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}
