package models

import (
	"time"

	"gorm.io/gorm"
)

// ErrorLog records an effect that failed during a transition
type ErrorLog struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Timestamp    time.Time      `gorm:"not null;index" json:"timestamp"`
	Action       string         `gorm:"not null;index" json:"action"`
	ErrorMsg     string         `gorm:"not null" json:"error_msg"`
	TransitionID *uint          `gorm:"index" json:"transition_id,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
