package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigpicturetv/bigpicturetv/internal/models"
	"github.com/bigpicturetv/bigpicturetv/internal/watcher"
)

type fakeStatus struct{ status watcher.Status }

func (f fakeStatus) Status() watcher.Status { return f.status }

type fakeStore struct {
	transitions []*models.Transition
	errors      []*models.ErrorLog
	lastLimit   int
	lastSince   time.Time
	err         error
}

func (f *fakeStore) GetErrorLogsSince(since time.Time) ([]*models.ErrorLog, error) {
	f.lastSince = since
	if f.err != nil {
		return nil, f.err
	}
	return f.errors, nil
}

func (f *fakeStore) RecentTransitions(limit int) ([]*models.Transition, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if len(f.transitions) > limit {
		return f.transitions[:limit], nil
	}
	return f.transitions, nil
}

func (f *fakeStore) GetLatestTransition() (*models.Transition, error) {
	if f.err != nil || len(f.transitions) == 0 {
		return nil, f.err
	}
	return f.transitions[0], nil
}

type fakeReports struct {
	report *models.Report
	err    error
	period string
}

func (f *fakeReports) GenerateReport(period string) (*models.Report, error) {
	f.period = period
	return f.report, f.err
}

func newTestMux(store *fakeStore, reports *fakeReports) *http.ServeMux {
	status := fakeStatus{status: watcher.Status{
		Running:      true,
		Active:       true,
		Polls:        12,
		PollInterval: time.Second,
		Target:       "bigpicture",
		Discord:      true,
	}}
	h := NewHandler(status, store, reports, zerolog.Nop())
	mux := http.NewServeMux()
	h.SetupRoutes(mux)
	return mux
}

func get(t *testing.T, mux *http.ServeMux, url string, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestStatus(t *testing.T) {
	now := time.Now()
	store := &fakeStore{transitions: []*models.Transition{{ID: 7, Timestamp: now, Direction: models.DirectionEnter, Target: "bigpicture"}}}
	mux := newTestMux(store, &fakeReports{})

	rec := get(t, mux, "/api/status", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["gamemode_active"])
	assert.Equal(t, "1s", body["poll_interval_text"])
	assert.Equal(t, "bigpicture", body["target"])
	assert.Equal(t, false, body["audio_switch_available"])
	assert.Equal(t, true, body["discord_installed"])
	last, ok := body["last_transition"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 7, last["id"])
}

func TestStatusHTML(t *testing.T) {
	mux := newTestMux(&fakeStore{}, &fakeReports{})

	rec := get(t, mux, "/api/status", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Gamemode")
	assert.Contains(t, rec.Body.String(), "last transition: none")
	assert.Contains(t, rec.Body.String(), "Not installed: audio switching</div>")
}

func TestStatusSurvivesStoreError(t *testing.T) {
	mux := newTestMux(&fakeStore{err: errors.New("locked")}, &fakeReports{})

	rec := get(t, mux, "/api/status", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "last_transition")
}

func TestTransitions(t *testing.T) {
	store := &fakeStore{transitions: []*models.Transition{
		{ID: 3, Direction: models.DirectionExit},
		{ID: 2, Direction: models.DirectionEnter},
		{ID: 1, Direction: models.DirectionExit},
	}}
	mux := newTestMux(store, &fakeReports{})

	rec := get(t, mux, "/api/transitions?limit=2", false)
	require.Equal(t, http.StatusOK, rec.Code)

	var body []models.Transition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 2)
	assert.Equal(t, 2, store.lastLimit)

	get(t, mux, "/api/transitions", false)
	assert.Equal(t, defaultTransitionLimit, store.lastLimit)

	get(t, mux, "/api/transitions?limit=999999", false)
	assert.Equal(t, maxTransitionLimit, store.lastLimit)

	rec = get(t, mux, "/api/transitions?limit=abc", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransitionsEmptyIsArray(t *testing.T) {
	mux := newTestMux(&fakeStore{}, &fakeReports{})

	rec := get(t, mux, "/api/transitions", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestErrors(t *testing.T) {
	store := &fakeStore{errors: []*models.ErrorLog{
		{ID: 1, Action: "audio.set", ErrorMsg: "device not found"},
	}}
	mux := newTestMux(store, &fakeReports{})

	before := time.Now()
	rec := get(t, mux, "/api/errors", false)
	require.Equal(t, http.StatusOK, rec.Code)

	var body []models.ErrorLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "audio.set", body[0].Action)
	assert.WithinDuration(t, before.Add(-defaultErrorWindow), store.lastSince, time.Minute)

	get(t, mux, "/api/errors?hours=100000", false)
	assert.WithinDuration(t, time.Now().Add(-maxErrorWindow), store.lastSince, time.Minute)

	rec = get(t, mux, "/api/errors?hours=-1", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	store.errors = nil
	rec = get(t, mux, "/api/errors", false)
	assert.JSONEq(t, "[]", rec.Body.String())

	store.err = errors.New("db locked")
	rec = get(t, mux, "/api/errors", false)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReport(t *testing.T) {
	start := time.Date(2024, 3, 6, 20, 0, 0, 0, time.UTC)
	reports := &fakeReports{report: &models.Report{
		Period:       models.ReportPeriod{Type: "week"},
		Sessions:     []models.Session{{Start: start, End: start.Add(90 * time.Minute), Seconds: 5400}},
		SessionCount: 1,
		TotalSeconds: 5400,
	}}
	mux := newTestMux(&fakeStore{}, reports)

	rec := get(t, mux, "/api/report?period=week", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "week", reports.period)
	assert.Contains(t, rec.Body.String(), `"total_seconds":5400`)

	rec = get(t, mux, "/api/report", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "day", reports.period)
	assert.Contains(t, rec.Body.String(), "1h")
	assert.Contains(t, rec.Body.String(), "Total: 1h30m")

	rec = get(t, mux, "/api/report?period=year", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportError(t *testing.T) {
	mux := newTestMux(&fakeStore{}, &fakeReports{err: errors.New("boom")})

	rec := get(t, mux, "/api/report", false)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	mux := newTestMux(&fakeStore{}, &fakeReports{})

	for _, path := range []string{"/api/status", "/api/transitions", "/api/report"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
	}
}

func TestHealthAndIndex(t *testing.T) {
	mux := newTestMux(&fakeStore{}, &fakeReports{})

	rec := get(t, mux, "/health", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = get(t, mux, "/", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hx-get=\"/api/status\"")

	rec = get(t, mux, "/nope", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
