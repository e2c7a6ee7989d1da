// Package server exposes the advisory pipeline over an HTTP API.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/agrisight/agrisight/internal/advisor"
	"github.com/agrisight/agrisight/internal/config"
	"github.com/agrisight/agrisight/internal/finance"
	"github.com/agrisight/agrisight/internal/store"
	"github.com/agrisight/agrisight/pkg/openmeteo"
	"github.com/agrisight/agrisight/pkg/sentinel"
)

// Server wires the HTTP handlers to the pipeline components.
type Server struct {
	cfg      *config.Config
	store    store.Store
	weather  openmeteo.Client
	sentinel sentinel.Client
	advisor  *advisor.Advisor
	calc     *finance.Calculator
}

// New builds a Server. The store may be nil in read-only deployments; the
// handlers that persist state then skip persistence.
func New(cfg *config.Config, st store.Store, weather openmeteo.Client, sh sentinel.Client, adv *advisor.Advisor) *Server {
	return &Server{
		cfg:      cfg,
		store:    st,
		weather:  weather,
		sentinel: sh,
		advisor:  adv,
		calc:     finance.NewCalculator(cfg.Pricing),
	}
}

// Router builds the chi router with CORS and the /api routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{s.cfg.Server.CORSOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/weather-history", s.handleWeatherHistory)
		r.Get("/ndvi-info", s.handleNDVIInfo)
		r.Post("/ndvi-history", s.handleNDVIHistory)
		r.Post("/upload-knowledge-base", s.handleUploadKnowledgeBase)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/financial-analysis", s.handleFinancialAnalysis)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, errMsg, detail string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   errMsg,
		"message": detail,
	})
}
