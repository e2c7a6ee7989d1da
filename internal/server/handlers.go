package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agrisight/agrisight/internal/advisor"
	"github.com/agrisight/agrisight/internal/model"
	"github.com/agrisight/agrisight/internal/weather"
	"github.com/agrisight/agrisight/pkg/openmeteo"
	"github.com/agrisight/agrisight/pkg/sentinel"
)

const maxUploadBytes = 10 << 20

// Default NDVI processing window over the Dodoma region.
var defaultBBox = []float64{34.7, -6.5, 35.1, -6.2}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Server is running",
	})
}

func (s *Server) handleWeatherHistory(w http.ResponseWriter, r *http.Request) {
	lat := queryFloat(r, "lat", s.cfg.Weather.Latitude)
	lon := queryFloat(r, "lon", s.cfg.Weather.Longitude)
	startYear := queryInt(r, "startYear", s.cfg.Weather.StartYear)
	endYear := queryInt(r, "endYear", s.cfg.Weather.EndYear)

	resp, err := s.weather.Archive(r.Context(), openmeteo.ArchiveRequest{
		Latitude:  lat,
		Longitude: lon,
		StartDate: fmt.Sprintf("%d-01-01", startYear),
		EndDate:   fmt.Sprintf("%d-12-31", endYear),
		Timezone:  s.cfg.Weather.Timezone,
	})
	if err != nil {
		zap.L().Error("server: weather history fetch", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch weather data", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"location": map[string]float64{"latitude": lat, "longitude": lon},
		"timezone": resp.Timezone,
		"daily":    resp.Daily,
		"summary":  weather.Summarize(resp.Daily),
	})
}

func (s *Server) handleNDVIInfo(w http.ResponseWriter, r *http.Request) {
	configured := s.sentinel.Configured()
	out := map[string]any{
		"configured": configured,
		"tileUrl":    s.sentinel.WMSEndpoint(),
		"layers":     []string{"NDVI"},
	}
	if !configured {
		out["note"] = "Sentinel Hub credentials not configured; demo NDVI data will be served"
		writeJSON(w, http.StatusOK, out)
		return
	}

	if info, err := s.sentinel.InstanceInfo(r.Context()); err != nil {
		zap.L().Warn("server: instance info lookup", zap.Error(err))
		out["note"] = "WMS configuration lookup failed"
	} else if len(info.Layers) > 0 {
		out["layers"] = info.Layers
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNDVIHistory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BBox []float64 `json:"bbox"`
		From string    `json:"from"`
		To   string    `json:"to"`
	}
	if r.Body != nil {
		// Body is optional; decode errors fall through to defaults.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if len(req.BBox) != 4 {
		req.BBox = defaultBBox
	}
	if req.From == "" {
		req.From = fmt.Sprintf("%d-12-01T00:00:00Z", s.cfg.Weather.StartYear-1)
	}
	if req.To == "" {
		req.To = fmt.Sprintf("%d-04-30T23:59:59Z", s.cfg.Weather.EndYear)
	}

	if !s.sentinel.Configured() {
		writeJSON(w, http.StatusOK, map[string]any{
			"demo":    true,
			"data":    sentinel.GenerateDemoNDVI(),
			"message": "Sentinel Hub not configured; serving demo NDVI history",
		})
		return
	}

	res, err := s.sentinel.ProcessNDVI(r.Context(), sentinel.NDVIRequest{
		BBox: req.BBox,
		From: req.From,
		To:   req.To,
	})
	if err != nil {
		zap.L().Warn("server: NDVI processing failed, serving demo data", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]any{
			"demo":    true,
			"data":    sentinel.GenerateDemoNDVI(),
			"message": "NDVI processing failed; serving demo NDVI history",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"demo":     false,
		"dataSize": res.DataSize,
	})
}

func (s *Server) handleUploadKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload", err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded", err.Error())
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read file", err.Error())
		return
	}

	if s.store != nil {
		if _, err := s.store.SaveDocument(r.Context(), header.Filename, string(content)); err != nil {
			zap.L().Error("server: save document", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to store file", err.Error())
			return
		}
	}

	zap.L().Info("server: knowledge base uploaded",
		zap.String("filename", header.Filename),
		zap.Int("bytes", len(content)))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"filename": header.Filename,
		"size":     len(content),
		"message":  "Knowledge base uploaded successfully",
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		KnowledgeBase string   `json:"knowledgeBase"`
		WeatherData   string   `json:"weatherData"`
		NDVIData      string   `json:"ndviData"`
		FarmSize      *float64 `json:"farmSize"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	farmSize := s.farmSizeOrDefault(req.FarmSize)

	// Fetch whatever inputs the caller did not supply.
	weatherSummary := req.WeatherData
	ndviSummary := req.NDVIData
	g, ctx := errgroup.WithContext(r.Context())
	if weatherSummary == "" {
		g.Go(func() error {
			resp, err := s.weather.Archive(ctx, openmeteo.ArchiveRequest{
				Latitude:  s.cfg.Weather.Latitude,
				Longitude: s.cfg.Weather.Longitude,
				StartDate: fmt.Sprintf("%d-01-01", s.cfg.Weather.StartYear),
				EndDate:   fmt.Sprintf("%d-12-31", s.cfg.Weather.EndYear),
				Timezone:  s.cfg.Weather.Timezone,
			})
			if err != nil {
				zap.L().Warn("server: analyze weather fetch failed", zap.Error(err))
				weatherSummary = weather.NoDataSummary
				return nil
			}
			weatherSummary = weather.Summarize(resp.Daily)
			return nil
		})
	}
	if ndviSummary == "" {
		g.Go(func() error {
			ndviSummary = advisor.SummarizeNDVI(sentinel.GenerateDemoNDVI())
			return nil
		})
	}
	_ = g.Wait()

	var run *model.AnalysisRun
	if s.store != nil {
		var err error
		if run, err = s.store.CreateRun(r.Context(), farmSize); err != nil {
			zap.L().Error("server: create run", zap.Error(err))
		}
	}

	result := s.advisor.Analyze(r.Context(), req.KnowledgeBase, weatherSummary, ndviSummary)
	report := s.calc.Analyze(result.Recommendation, farmSize)

	out := map[string]any{
		"success":        true,
		"demo":           result.Demo,
		"recommendation": result.Recommendation,
		"financial":      report,
	}
	if result.Message != "" {
		out["message"] = result.Message
	}

	if s.store != nil && run != nil {
		recJSON, _ := json.Marshal(result.Recommendation)
		reportJSON, _ := json.Marshal(report)
		run.WeatherSummary = weatherSummary
		run.Demo = result.Demo
		run.Recommendation = recJSON
		run.Report = reportJSON
		if err := s.store.CompleteRun(r.Context(), run); err != nil {
			zap.L().Error("server: complete run", zap.Error(err))
		}
		out["runId"] = run.ID
	}

	writeJSON(w, http.StatusOK, out)
}

type financialResponse struct {
	Success bool `json:"success"`
	*model.FinancialReport
}

func (s *Server) handleFinancialAnalysis(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Recommendations *model.Recommendation `json:"recommendations"`
		FarmSize        *float64              `json:"farmSize"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("server: financial analysis panic", zap.Any("panic", rec))
			writeError(w, http.StatusInternalServerError,
				"Failed to calculate financial analysis", fmt.Sprint(rec))
		}
	}()

	report := s.calc.Analyze(req.Recommendations, s.farmSizeOrDefault(req.FarmSize))
	writeJSON(w, http.StatusOK, financialResponse{Success: true, FinancialReport: report})
}

func (s *Server) farmSizeOrDefault(v *float64) float64 {
	if v != nil && *v > 0 {
		return *v
	}
	return s.cfg.Analysis.DefaultFarmSizeHa
}

func queryFloat(r *http.Request, key string, def float64) float64 {
	if v := r.URL.Query().Get(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
