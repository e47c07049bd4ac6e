package web

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bigpicturetv/bigpicturetv/internal/models"
	"github.com/bigpicturetv/bigpicturetv/internal/watcher"
	"github.com/bigpicturetv/bigpicturetv/pkg/utils"
)

const (
	defaultTransitionLimit = 50
	maxTransitionLimit     = 1000

	defaultErrorWindow = 24 * time.Hour
	maxErrorWindow     = 30 * 24 * time.Hour
)

// StatusProvider exposes the live watcher state
type StatusProvider interface {
	Status() watcher.Status
}

// TransitionStore reads stored transitions and effect failures
type TransitionStore interface {
	RecentTransitions(limit int) ([]*models.Transition, error)
	GetLatestTransition() (*models.Transition, error)
	GetErrorLogsSince(since time.Time) ([]*models.ErrorLog, error)
}

// ReportGenerator builds gamemode reports
type ReportGenerator interface {
	GenerateReport(periodType string) (*models.Report, error)
}

type Handler struct {
	status  StatusProvider
	store   TransitionStore
	reports ReportGenerator
	logger  zerolog.Logger
}

func NewHandler(status StatusProvider, store TransitionStore, reports ReportGenerator, logger zerolog.Logger) *Handler {
	return &Handler{
		status:  status,
		store:   store,
		reports: reports,
		logger:  logger.With().Str("component", "web").Logger(),
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/transitions", h.handleTransitions)
	mux.HandleFunc("/api/report", h.handleReport)
	mux.HandleFunc("/api/errors", h.handleErrors)

	mux.HandleFunc("/health", h.handleHealth)

	mux.HandleFunc("/", h.handleIndex)
}

type statusResponse struct {
	watcher.Status
	PollIntervalText string             `json:"poll_interval_text"`
	LastTransition   *models.Transition `json:"last_transition,omitempty"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := h.status.Status()
	resp := statusResponse{
		Status:           status,
		PollIntervalText: status.PollInterval.String(),
	}

	latest, err := h.store.GetLatestTransition()
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to fetch latest transition")
	} else {
		resp.LastTransition = latest
	}

	if r.Header.Get("HX-Request") == "true" {
		h.respondStatusHTML(w, resp)
		return
	}

	h.respondJSON(w, resp)
}

func (h *Handler) handleTransitions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultTransitionLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			http.Error(w, fmt.Sprintf("invalid limit: %q", limitStr), http.StatusBadRequest)
			return
		}
		limit = min(l, maxTransitionLimit)
	}

	transitions, err := h.store.RecentTransitions(limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch transitions: %v", err), http.StatusInternalServerError)
		return
	}
	if transitions == nil {
		transitions = []*models.Transition{}
	}

	h.respondJSON(w, transitions)
}

// handleErrors lists effect failures recorded in the last ?hours= hours
func (h *Handler) handleErrors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	window := defaultErrorWindow
	if hoursStr := r.URL.Query().Get("hours"); hoursStr != "" {
		hours, err := strconv.Atoi(hoursStr)
		if err != nil || hours <= 0 {
			http.Error(w, fmt.Sprintf("invalid hours: %q", hoursStr), http.StatusBadRequest)
			return
		}
		window = min(time.Duration(hours)*time.Hour, maxErrorWindow)
	}

	logs, err := h.store.GetErrorLogsSince(time.Now().Add(-window))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch errors: %v", err), http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []*models.ErrorLog{}
	}

	h.respondJSON(w, logs)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}

	switch periodType {
	case "day", "today", "week", "month":
	default:
		http.Error(w, fmt.Sprintf("invalid period type: %s (valid: day, week, month)", periodType), http.StatusBadRequest)
		return
	}

	report, err := h.reports.GenerateReport(periodType)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to generate report: %v", err), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		h.respondReportHTML(w, report)
		return
	}

	h.respondJSON(w, report)
}

func (h *Handler) respondStatusHTML(w http.ResponseWriter, resp statusResponse) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	state := "Desktop mode"
	class := "desktop"
	if resp.Active {
		state = "Gamemode"
		class = "gamemode"
	}

	last := "none"
	if resp.LastTransition != nil {
		last = fmt.Sprintf("%s %s", resp.LastTransition.Direction, utils.Ago(resp.LastTransition.Timestamp, time.Now()))
	}

	fmt.Fprintf(w, `<div class="state %s">%s</div>
<div class="meta">Target: %s &middot; every %s &middot; last transition: %s</div>`,
		class, state,
		html.EscapeString(resp.Target),
		resp.PollIntervalText,
		html.EscapeString(last))

	var missing []string
	if !resp.AudioSwitch {
		missing = append(missing, "audio switching")
	}
	if !resp.Discord {
		missing = append(missing, "Discord")
	}
	if len(missing) > 0 {
		fmt.Fprintf(w, "\n<div class=\"meta\">Not installed: %s</div>", strings.Join(missing, ", "))
	}
}

func (h *Handler) respondReportHTML(w http.ResponseWriter, report *models.Report) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if len(report.Sessions) == 0 {
		w.Write([]byte(`<div class="loading">No sessions</div>`))
		return
	}

	var b strings.Builder
	b.WriteString(`<div class="listing">`)
	for _, s := range report.Sessions {
		end := s.End.Format("15:04")
		if s.Open {
			end = "now"
		}
		fmt.Fprintf(&b, `
		<div class="session-item">
			<span class="session-span">%s - %s</span>
			<span class="session-time">%s</span>
		</div>`,
			s.Start.Format("Jan 2 15:04"), end,
			utils.FormatRoundedUnit(s.Seconds))
	}
	b.WriteString(`</div>`)

	fmt.Fprintf(&b, `<div class="total">Total: %s, %d failed effect(s)</div>`,
		utils.FormatDuration(time.Duration(report.TotalSeconds)*time.Second), report.Failures)

	w.Write([]byte(b.String()))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

func (h *Handler) respondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>BigPictureTV</title>
    <script src="https://unpkg.com/htmx.org@1.9.10"></script>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #1a1a1a;
            color: #e0e0e0;
            padding: 20px;
        }
        .box {
            background: #2d2d2d;
            border-radius: 8px;
            padding: 24px;
            margin-bottom: 20px;
        }
        h2 {
            color: #5dade2;
            border-bottom: 2px solid #5dade2;
            padding-bottom: 10px;
        }
        .state { font-size: 2rem; font-weight: bold; }
        .state.gamemode { color: #58d68d; }
        .meta, .loading { color: #a0a0a0; }
        .session-item {
            display: flex;
            justify-content: space-between;
            padding: 8px;
            border-bottom: 1px solid #404040;
        }
        .total { margin-top: 12px; font-weight: bold; }
    </style>
</head>
<body>
    <div class="box" hx-get="/api/status" hx-trigger="load, every 5s" hx-swap="innerHTML">
        <div class="loading">Loading...</div>
    </div>
    <div class="box">
        <h2>Today</h2>
        <div hx-get="/api/report?period=day" hx-trigger="load, every 30s" hx-swap="innerHTML">
            <div class="loading">Loading...</div>
        </div>
    </div>
    <div class="box">
        <h2>This Week</h2>
        <div hx-get="/api/report?period=week" hx-trigger="load, every 30s" hx-swap="innerHTML">
            <div class="loading">Loading...</div>
        </div>
    </div>
</body>
</html>`
