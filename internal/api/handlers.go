package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/mindlens/internal/analyzer"
	"github.com/blackwell-systems/mindlens/internal/capture"
	"github.com/blackwell-systems/mindlens/internal/journal"
	"github.com/blackwell-systems/mindlens/internal/store"
	"github.com/blackwell-systems/mindlens/internal/suggest"
)

// maxBodyBytes bounds request bodies. Entries are at most 5000 characters.
const maxBodyBytes = 1 << 20

// DefaultHistoryDays is the window for the emotion history endpoint.
const DefaultHistoryDays = 30

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Handlers holds the dependencies of every route.
type Handlers struct {
	store    store.Store
	engine   *analyzer.Engine
	recorder *capture.Recorder
	log      zerolog.Logger
}

// NewHandlers wires the route handlers.
func NewHandlers(st store.Store, engine *analyzer.Engine, rec *capture.Recorder, log zerolog.Logger) *Handlers {
	return &Handlers{store: st, engine: engine, recorder: rec, log: log}
}

// writeDomainError maps the journal error taxonomy onto HTTP statuses.
func (h *Handlers) writeDomainError(w http.ResponseWriter, err error) {
	var ve *journal.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error(), "INVALID_"+strings.ToUpper(ve.Field))
	case errors.Is(err, journal.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, journal.ErrClassifierUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error(), "CLASSIFIER_UNAVAILABLE")
	default:
		h.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error", "STORAGE_ERROR")
	}
}

// HealthResponse reports server and store status.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Database: "connected"}
	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = "error: " + err.Error()
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, status, resp)
}

// CreateEntry handles POST /api/v1/entries.
func (h *Handlers) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req capture.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}
	req.UserID = GetUser(r)

	res, err := h.recorder.Record(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// EntriesResponse wraps an entry listing.
type EntriesResponse struct {
	Entries []journal.Entry `json:"entries"`
	Count   int             `json:"count"`
}

// ListEntries handles GET /api/v1/entries?limit&q&emotion.
func (h *Handlers) ListEntries(w http.ResponseWriter, r *http.Request) {
	user := GetUser(r)
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", "INVALID_LIMIT")
			return
		}
		limit = n
	}

	var (
		entries []journal.Entry
		err     error
	)
	query, emotion := q.Get("q"), q.Get("emotion")
	if query != "" || emotion != "" {
		if limit == 0 {
			limit = store.DefaultSearchLimit
		}
		entries, err = h.store.Search(r.Context(), user, query, journal.NormalizeEmotion(emotion), limit)
	} else {
		if limit == 0 {
			limit = store.DefaultListLimit
		}
		entries, err = h.store.List(r.Context(), user, limit)
	}
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	writeJSON(w, http.StatusOK, EntriesResponse{Entries: entries, Count: len(entries)})
}

func entryID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, &journal.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return id, nil
}

// GetEntry handles GET /api/v1/entries/{id}.
func (h *Handlers) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	e, err := h.store.Get(r.Context(), id, GetUser(r))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if e == nil {
		h.writeDomainError(w, journal.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// DeleteEntry handles DELETE /api/v1/entries/{id}.
func (h *Handlers) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	removed, err := h.store.Delete(r.Context(), id, GetUser(r))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !removed {
		h.writeDomainError(w, journal.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// daysParam parses the days query parameter, falling back to def.
// Zero selects the full history.
func daysParam(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &journal.ValidationError{Field: "days", Reason: "must be a non-negative integer"}
	}
	return n, nil
}

// windowed wraps an analytics handler that takes a trailing window.
func (h *Handlers) windowed(w http.ResponseWriter, r *http.Request, def int, fn func(ctx context.Context, user string, days int) any) {
	days, err := daysParam(r, def)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fn(r.Context(), GetUser(r), days))
}

// DistributionResponse is the emotion distribution payload.
type DistributionResponse struct {
	Days         int                   `json:"days"`
	Total        int                   `json:"total"`
	Distribution analyzer.Distribution `json:"distribution"`
}

// Distribution handles GET /api/v1/analytics/distribution.
func (h *Handlers) Distribution(w http.ResponseWriter, r *http.Request) {
	h.windowed(w, r, analyzer.DefaultDistributionDays, func(ctx context.Context, user string, days int) any {
		d := h.engine.EmotionDistribution(ctx, user, days)
		if d == nil {
			d = analyzer.Distribution{}
		}
		return DistributionResponse{Days: days, Total: d.Total(), Distribution: d}
	})
}

// MoodTrend handles GET /api/v1/analytics/mood.
func (h *Handlers) MoodTrend(w http.ResponseWriter, r *http.Request) {
	h.windowed(w, r, analyzer.DefaultMoodTrendDays, func(ctx context.Context, user string, days int) any {
		samples := h.engine.MoodTrend(ctx, user, days)
		if samples == nil {
			samples = []analyzer.DailyMoodSample{}
		}
		return map[string]any{"days": days, "mood_trend": samples}
	})
}

// Weekly handles GET /api/v1/analytics/weekly.
func (h *Handlers) Weekly(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.WeeklySummary(r.Context(), GetUser(r)))
}

// Streak handles GET /api/v1/analytics/streak.
func (h *Handlers) Streak(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"streak": h.engine.WritingStreak(r.Context(), GetUser(r))})
}

// Patterns handles GET /api/v1/analytics/patterns.
func (h *Handlers) Patterns(w http.ResponseWriter, r *http.Request) {
	h.windowed(w, r, analyzer.DefaultPatternDays, func(ctx context.Context, user string, days int) any {
		return h.engine.EmotionPatterns(ctx, user, days)
	})
}

// Words handles GET /api/v1/analytics/words.
func (h *Handlers) Words(w http.ResponseWriter, r *http.Request) {
	h.windowed(w, r, analyzer.DefaultWordDays, func(ctx context.Context, user string, days int) any {
		return h.engine.WordAnalysis(ctx, user, days)
	})
}

// Stats handles GET /api/v1/analytics/stats.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.UserStats(r.Context(), GetUser(r)))
}

// Report handles GET /api/v1/analytics/report.
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Report(r.Context(), GetUser(r)))
}

// InsightsResponse carries up to three insight strings.
type InsightsResponse struct {
	Insights []string `json:"insights"`
}

// Insights handles GET /api/v1/insights.
func (h *Handlers) Insights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, InsightsResponse{Insights: suggest.Generate(r.Context(), h.engine, GetUser(r))})
}

// History handles GET /api/v1/history.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	days, err := daysParam(r, DefaultHistoryDays)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	rows, err := h.store.EmotionHistory(r.Context(), GetUser(r), h.engine.Since(days))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if rows == nil {
		rows = []journal.DailyEmotion{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days, "history": rows})
}

// GetSettings handles GET /api/v1/settings.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.UserSettings(r.Context(), GetUser(r))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if settings == nil {
		settings = map[string]any{}
	}
	writeJSON(w, http.StatusOK, settings)
}

// PutSettings handles PUT /api/v1/settings. The body replaces the stored
// settings object.
func (h *Handlers) PutSettings(w http.ResponseWriter, r *http.Request) {
	var settings map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&settings); err != nil || settings == nil {
		writeError(w, http.StatusBadRequest, "settings must be a JSON object", "INVALID_BODY")
		return
	}
	if err := h.store.UpdateUserSettings(r.Context(), GetUser(r), settings); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
