package repository

import (
	"github.com/magnate-systems/picking-api/internal/models"
	"gorm.io/gorm"
)

// GormMetricsRepository is a GORM implementation of MetricsRepository
type GormMetricsRepository struct {
	db *gorm.DB
}

// NewMetricsRepository creates a new MetricsRepository
func NewMetricsRepository(db *gorm.DB) MetricsRepository {
	return &GormMetricsRepository{db: db}
}

// CountSessionsByStatus counts sessions in the given status
func (r *GormMetricsRepository) CountSessionsByStatus(status models.SessionStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Session{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// FinishedSessions returns finished sessions with a non-null finish
// timestamp, user preloaded.
func (r *GormMetricsRepository) FinishedSessions() ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.Preload("User").
		Where("status = ? AND finished_at IS NOT NULL", models.SessionFinished).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// PickerStats aggregates completed-order and item counts per user over
// finished sessions.
func (r *GormMetricsRepository) PickerStats() ([]PickerStat, error) {
	var stats []PickerStat
	err := r.db.Model(&models.Session{}).
		Select("users.id AS user_id, users.username AS username, users.role AS role, "+
			"COUNT(DISTINCT sessions.id) AS completed_orders, COALESCE(SUM(lines.picked_qty), 0) AS total_items").
		Joins("JOIN users ON users.id = sessions.user_id").
		Joins("LEFT JOIN lines ON lines.session_id = sessions.id").
		Where("sessions.status = ?", models.SessionFinished).
		Group("users.id, users.username, users.role").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ErrorProducts groups mismatched lines by scan code, ranked by occurrence
// count descending, capped at limit.
func (r *GormMetricsRepository) ErrorProducts(limit int) ([]ErrorProductStat, error) {
	var stats []ErrorProductStat
	err := r.db.Model(&models.Line{}).
		Select("scan_code, COUNT(id) AS error_count, COALESCE(SUM(picked_qty), 0) AS total_picked").
		Where("picked_qty <> expected_qty").
		Group("scan_code").
		Order("error_count DESC").
		Limit(limit).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// CountLinesByScanCode counts every line carrying the code
func (r *GormMetricsRepository) CountLinesByScanCode(code string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Line{}).Where("scan_code = ?", code).Count(&count).Error
	return count, err
}

// CountIncidents counts distinct finished sessions containing at least one
// under-picked line.
func (r *GormMetricsRepository) CountIncidents() (int64, error) {
	var count int64
	err := r.db.Model(&models.Session{}).
		Distinct("sessions.id").
		Joins("JOIN lines ON lines.session_id = sessions.id").
		Where("sessions.status = ? AND lines.picked_qty < lines.expected_qty", models.SessionFinished).
		Count(&count).Error
	return count, err
}
