package database

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/bigpicturetv/bigpicturetv/internal/models"
)

// Repository handles all database operations for transitions and error logs
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateTransition inserts a new transition into the database
func (r *Repository) CreateTransition(t *models.Transition) error {
	result := r.db.Create(t)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert transition")
	}
	return nil
}

// GetTransitionsSince retrieves all transitions since a given time, oldest first
func (r *Repository) GetTransitionsSince(since time.Time) ([]*models.Transition, error) {
	var transitions []*models.Transition
	result := r.db.Where("timestamp >= ?", since).Order("timestamp ASC").Order("id ASC").Find(&transitions)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query transitions")
	}
	return transitions, nil
}

// GetLatestTransition retrieves the most recent transition, or nil when there is none
func (r *Repository) GetLatestTransition() (*models.Transition, error) {
	return r.latest(r.db.DB)
}

// GetLatestTransitionBefore retrieves the last transition strictly before t, or nil
func (r *Repository) GetLatestTransitionBefore(t time.Time) (*models.Transition, error) {
	return r.latest(r.db.Where("timestamp < ?", t))
}

func (r *Repository) latest(q *gorm.DB) (*models.Transition, error) {
	var transition models.Transition
	result := q.Order("timestamp DESC").Order("id DESC").First(&transition)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest transition")
	}
	return &transition, nil
}

// RecentTransitions returns up to limit transitions, newest first
func (r *Repository) RecentTransitions(limit int) ([]*models.Transition, error) {
	var transitions []*models.Transition
	result := r.db.Order("timestamp DESC").Order("id DESC").Limit(limit).Find(&transitions)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query recent transitions")
	}
	return transitions, nil
}

// DeleteOldTransitions deletes transitions older than a specified date (soft delete)
func (r *Repository) DeleteOldTransitions(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before).Delete(&models.Transition{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old transitions")
	}
	return result.RowsAffected, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// GetErrorLogsSince retrieves error logs since a given time, oldest first
func (r *Repository) GetErrorLogsSince(since time.Time) ([]*models.ErrorLog, error) {
	var logs []*models.ErrorLog
	result := r.db.Where("timestamp >= ?", since).Order("timestamp ASC").Find(&logs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}

// CountFailuresByAction aggregates error logs per action since a given time
func (r *Repository) CountFailuresByAction(since time.Time) ([]models.ActionFailures, error) {
	var counts []models.ActionFailures
	result := r.db.Model(&models.ErrorLog{}).
		Select("action, COUNT(*) as count").
		Where("timestamp >= ?", since).
		Group("action").
		Order("count DESC").
		Scan(&counts)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to count failures")
	}
	return counts, nil
}

// Clear removes all transitions and error logs from the database
func (r *Repository) Clear() error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM transitions").Error; err != nil {
			return errors.Wrap(err, "failed to clear transitions")
		}
		if err := tx.Exec("DELETE FROM error_logs").Error; err != nil {
			return errors.Wrap(err, "failed to clear error logs")
		}
		return nil
	})
	return err
}
