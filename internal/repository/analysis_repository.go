package repository

import (
	"time"

	"sentiment-analyzer/backend/internal/models"

	"gorm.io/gorm"
)

// AnalysisRepository persists and queries analysis records
type AnalysisRepository interface {
	Create(analysis *models.Analysis) error
	RecentBySession(sessionID string, limit int) ([]models.Analysis, error)
	CountForSessionSince(sessionID string, since time.Time) (int64, error)
}

type GormAnalysisRepository struct {
	db *gorm.DB
}

func NewGormAnalysisRepository(db *gorm.DB) *GormAnalysisRepository {
	return &GormAnalysisRepository{db: db}
}

func (r *GormAnalysisRepository) Create(analysis *models.Analysis) error {
	return r.db.Create(analysis).Error
}

// RecentBySession returns the newest analyses for a session, newest first
func (r *GormAnalysisRepository) RecentBySession(sessionID string, limit int) ([]models.Analysis, error) {
	var analyses []models.Analysis
	err := r.db.Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&analyses).Error
	return analyses, err
}

// CountForSessionSince counts analyses persisted for a session at or
// after the given instant; the daily quota check reads this against
// the start of the current UTC day
func (r *GormAnalysisRepository) CountForSessionSince(sessionID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Analysis{}).
		Where("session_id = ? AND created_at >= ?", sessionID, since).
		Count(&count).Error
	return count, err
}
