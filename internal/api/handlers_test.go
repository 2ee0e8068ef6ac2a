package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/mindlens/internal/analyzer"
	"github.com/blackwell-systems/mindlens/internal/capture"
	"github.com/blackwell-systems/mindlens/internal/classify"
	"github.com/blackwell-systems/mindlens/internal/journal"
	"github.com/blackwell-systems/mindlens/internal/store"
)

var testNow = time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)

type fixedClassifier struct {
	res classify.Result
	err error
}

func (f fixedClassifier) Classify(context.Context, string) (classify.Result, error) {
	return f.res, f.err
}

func setupTestServer(t *testing.T, cls classify.Classifier) (*httptest.Server, *store.DB) {
	t.Helper()

	db, err := store.OpenInMemory(store.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	engine := analyzer.NewEngine(db, analyzer.WithClock(func() time.Time { return testNow.Add(time.Hour) }))
	rec := capture.NewRecorder(db, cls, classify.Static{}, zerolog.Nop())
	server := httptest.NewServer(NewRouter(db, engine, rec, zerolog.Nop()))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})
	return server, db
}

func do(t *testing.T, method, url, user string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	resp := do(t, http.MethodGet, server.URL+"/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[HealthResponse](t, resp)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "connected", body.Database)
}

func TestAPI_RequiresUserHeader(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	resp := do(t, http.MethodGet, server.URL+"/api/v1/entries", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_USER", decode[ErrorResponse](t, resp).Code)
}

func TestCreateEntry_Classified(t *testing.T) {
	server, _ := setupTestServer(t, fixedClassifier{res: classify.Result{Label: "joy", Confidence: 88}})

	resp := do(t, http.MethodPost, server.URL+"/api/v1/entries", "u1", map[string]any{
		"content": "Today was a wonderful day with friends.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	res := decode[capture.Result](t, resp)
	require.NotNil(t, res.Entry)
	assert.Equal(t, "joy", res.Entry.Emotion)
	assert.Equal(t, 88.0, res.Entry.EmotionScore)
	assert.Equal(t, 7, res.Entry.WordCount)
	assert.Equal(t, journal.Encouragement("joy"), res.Entry.Reflection)
}

func TestCreateEntry_ErrorMapping(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"too short", map[string]any{"content": "hi"}, http.StatusBadRequest},
		{"score out of range", map[string]any{"content": "A long enough entry.", "emotion": "joy", "emotion_score": 120}, http.StatusBadRequest},
		{"no classifier", map[string]any{"content": "A long enough entry."}, http.StatusServiceUnavailable},
		{"manual label", map[string]any{"content": "A long enough entry.", "emotion": "Sadness"}, http.StatusCreated},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, server.URL+"/api/v1/entries", "u1", tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestCreateEntry_InvalidBody(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/entries", bytes.NewBufferString("{"))
	require.NoError(t, err)
	req.Header.Set(UserHeader, "u1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func seed(t *testing.T, db *store.DB, user, emotion, content string) int64 {
	t.Helper()
	id, err := db.Insert(context.Background(), journal.NewEntry{
		UserID: user, Content: content, Emotion: emotion, EmotionScore: 80,
	})
	require.NoError(t, err)
	return id
}

func TestEntries_ListGetDelete(t *testing.T) {
	server, db := setupTestServer(t, nil)
	first := seed(t, db, "u1", "joy", "A sunny walk in the park.")
	seed(t, db, "u1", "sadness", "Missing my old friends.")
	other := seed(t, db, "u2", "anger", "Traffic was terrible again.")

	resp := do(t, http.MethodGet, server.URL+"/api/v1/entries", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[EntriesResponse](t, resp)
	require.Equal(t, 2, list.Count)
	assert.Equal(t, "sadness", list.Entries[0].Emotion)

	resp = do(t, http.MethodGet, server.URL+"/api/v1/entries?q=SUNNY", "u1", nil)
	assert.Equal(t, 1, decode[EntriesResponse](t, resp).Count)

	resp = do(t, http.MethodGet, server.URL+"/api/v1/entries?emotion=sadness", "u1", nil)
	assert.Equal(t, 1, decode[EntriesResponse](t, resp).Count)

	resp = do(t, http.MethodGet, server.URL+"/api/v1/entries?limit=0", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	url := func(id int64) string {
		return server.URL + "/api/v1/entries/" + jsonNumber(id)
	}

	resp = do(t, http.MethodGet, url(first), "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, first, decode[journal.Entry](t, resp).ID)

	resp = do(t, http.MethodGet, url(other), "u1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodDelete, url(other), "u1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodDelete, url(first), "u1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, url(first), "u1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, server.URL+"/api/v1/entries/abc", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestAnalytics(t *testing.T) {
	server, db := setupTestServer(t, nil)
	seed(t, db, "u1", "joy", "A sunny walk in the park.")
	seed(t, db, "u1", "joy", "Dinner with my family tonight.")
	seed(t, db, "u1", "sadness", "Missing my old friends.")

	resp := do(t, http.MethodGet, server.URL+"/api/v1/analytics/distribution", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dist := decode[DistributionResponse](t, resp)
	assert.Equal(t, 30, dist.Days)
	assert.Equal(t, 3, dist.Total)
	assert.Equal(t, analyzer.Distribution{{Emotion: "joy", Count: 2}, {Emotion: "sadness", Count: 1}}, dist.Distribution)

	resp = do(t, http.MethodGet, server.URL+"/api/v1/analytics/streak", "u1", nil)
	assert.Equal(t, map[string]int{"streak": 1}, decode[map[string]int](t, resp))

	resp = do(t, http.MethodGet, server.URL+"/api/v1/analytics/stats", "u1", nil)
	stats := decode[analyzer.UserStats](t, resp)
	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, "joy", stats.MostCommonEmotion)

	resp = do(t, http.MethodGet, server.URL+"/api/v1/analytics/mood?days=-1", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	for _, path := range []string{"mood", "weekly", "patterns", "words", "report"} {
		resp = do(t, http.MethodGet, server.URL+"/api/v1/analytics/"+path+"?days=7", "u1", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestInsights_FallbackForNewUser(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	resp := do(t, http.MethodGet, server.URL+"/api/v1/insights", "nobody", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[InsightsResponse](t, resp)
	require.Len(t, body.Insights, 1)
	assert.Contains(t, body.Insights[0], "Keep writing")
}

func TestHistory(t *testing.T) {
	server, db := setupTestServer(t, nil)
	seed(t, db, "u1", "joy", "A sunny walk in the park.")

	resp := do(t, http.MethodGet, server.URL+"/api/v1/history", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Days    int                    `json:"days"`
		History []journal.DailyEmotion `json:"history"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.History, 1)
	assert.Equal(t, "2026-03-11", body.History[0].Date)
	assert.Equal(t, 1, body.History[0].EntryCount)
}

func TestSettings_RoundTrip(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	resp := do(t, http.MethodGet, server.URL+"/api/v1/settings", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[map[string]any](t, resp))

	resp = do(t, http.MethodPut, server.URL+"/api/v1/settings", "u1", map[string]any{"theme": "dark"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, server.URL+"/api/v1/settings", "u1", nil)
	assert.Equal(t, map[string]any{"theme": "dark"}, decode[map[string]any](t, resp))
}
