package reporter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bigpicturetv/bigpicturetv/internal/models"
	"github.com/bigpicturetv/bigpicturetv/pkg/utils"
)

// Store is the slice of the repository the reporter reads from
type Store interface {
	GetTransitionsSince(since time.Time) ([]*models.Transition, error)
	GetLatestTransitionBefore(t time.Time) (*models.Transition, error)
	CountFailuresByAction(since time.Time) ([]models.ActionFailures, error)
}

// Reporter handles report generation
type Reporter struct {
	store    Store
	location *time.Location
	now      func() time.Time
}

// New creates a new reporter. Periods are computed in loc.
func New(store Store, loc *time.Location) *Reporter {
	if loc == nil {
		loc = time.Local
	}
	return &Reporter{
		store:    store,
		location: loc,
		now:      time.Now,
	}
}

// GenerateReport generates a report for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	now := r.now().In(r.location)
	period, err := GetPeriod(periodType, now)
	if err != nil {
		return nil, err
	}

	prior, err := r.store.GetLatestTransitionBefore(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to get prior transition: %w", err)
	}

	transitions, err := r.store.GetTransitionsSince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to get transitions: %w", err)
	}

	failures, err := r.store.CountFailuresByAction(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to count failures: %w", err)
	}

	cutoff := period.End
	if now.Before(cutoff) {
		cutoff = now
	}

	sessions := BuildSessions(prior, transitions, period.Start, cutoff)

	var totalSeconds int64
	for _, s := range sessions {
		totalSeconds += s.Seconds
	}

	var failureCount int
	for _, f := range failures {
		failureCount += f.Count
	}

	return &models.Report{
		Period:       *period,
		Sessions:     sessions,
		SessionCount: len(sessions),
		TotalSeconds: totalSeconds,
		TotalMinutes: float64(totalSeconds) / 60.0,
		TotalHours:   float64(totalSeconds) / 3600.0,
		Failures:     failureCount,
		TopFailures:  failures,
		GeneratedAt:  now,
	}, nil
}

// BuildSessions pairs entries with the following exits between start and cutoff.
// prior is the last transition before start; an entry there opens the first
// session at start. An exit without an entry is ignored and a second entry
// closes the dangling session. A session still open at cutoff ends there.
func BuildSessions(prior *models.Transition, transitions []*models.Transition, start, cutoff time.Time) []models.Session {
	var sessions []models.Session
	var open *models.Session

	closeAt := func(end time.Time, exitFailures int) {
		open.End = end
		open.Failures += exitFailures
		open.Seconds = seconds(open.Start, end)
		sessions = append(sessions, *open)
		open = nil
	}

	if prior != nil && prior.Direction == models.DirectionEnter {
		open = &models.Session{Start: start, Target: prior.Target}
	}

	for _, t := range transitions {
		if !t.Timestamp.Before(cutoff) {
			break
		}
		switch t.Direction {
		case models.DirectionEnter:
			if open != nil {
				closeAt(t.Timestamp, 0)
			}
			open = &models.Session{Start: t.Timestamp, Target: t.Target, Failures: t.Failures}
		case models.DirectionExit:
			if open != nil {
				closeAt(t.Timestamp, t.Failures)
			}
		}
	}

	if open != nil {
		open.Open = true
		closeAt(cutoff, 0)
	}
	return sessions
}

func seconds(start, end time.Time) int64 {
	if end.Before(start) {
		return 0
	}
	return int64(end.Sub(start) / time.Second)
}

// GetPeriod calculates the time range for the report
func GetPeriod(periodType string, now time.Time) (*models.ReportPeriod, error) {
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 0, 1)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Gamemode Report - %s\n", report.Period.Type)
	fmt.Fprintf(&b, "Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Total Time: %s in %d session(s)\n",
		utils.FormatDuration(time.Duration(report.TotalSeconds)*time.Second), report.SessionCount)
	fmt.Fprintf(&b, "Failed Effects: %d\n\n", report.Failures)

	if len(report.Sessions) == 0 {
		b.WriteString("No gamemode sessions recorded for this period.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-17s %-17s %10s  %-30s\n", "Start", "End", "Duration", "Target")
	b.WriteString("--------------------------------------------------------------------------------\n")

	for _, s := range report.Sessions {
		end := s.End.Format("2006-01-02 15:04")
		if s.Open {
			end = "(active)"
		}
		fmt.Fprintf(&b, "%-17s %-17s %10s  %-30s\n",
			s.Start.Format("2006-01-02 15:04"),
			end,
			utils.FormatDuration(time.Duration(s.Seconds)*time.Second),
			truncate(s.Target, 30))
	}

	if len(report.TopFailures) > 0 {
		b.WriteString("\nFailures by action:\n")
		for _, f := range report.TopFailures {
			fmt.Fprintf(&b, "  %-20s %d\n", f.Action, f.Count)
		}
	}

	return b.String()
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
