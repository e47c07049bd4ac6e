package models

import (
	"time"

	"gorm.io/gorm"
)

// Transition directions
const (
	DirectionEnter = "enter"
	DirectionExit  = "exit"
)

// Transition is a stored gamemode entry or exit
type Transition struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Timestamp  time.Time      `gorm:"not null;index" json:"timestamp"`
	Direction  string         `gorm:"not null;index" json:"direction"` // "enter" or "exit"
	Target     string         `gorm:"not null" json:"target"`
	Failures   int            `gorm:"not null;default:0" json:"failures"`
	DurationMs int64          `gorm:"not null;default:0" json:"duration_ms"` // Time spent applying effects
	CreatedAt  time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// Session is a gamemode span built from an entry and the following exit
type Session struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Target   string    `json:"target"`
	Seconds  int64     `json:"seconds"`
	Open     bool      `json:"open"` // No exit yet; End is the report time
	Failures int       `json:"failures"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

type Report struct {
	Period       ReportPeriod     `json:"period"`
	Sessions     []Session        `json:"sessions"`
	SessionCount int              `json:"session_count"`
	TotalSeconds int64            `json:"total_seconds"`
	TotalMinutes float64          `json:"total_minutes"`
	TotalHours   float64          `json:"total_hours"`
	Failures     int              `json:"failures"`
	TopFailures  []ActionFailures `json:"top_failures,omitempty"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

// ActionFailures counts failures of one effect action
type ActionFailures struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}
