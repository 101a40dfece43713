package services

import (
	"fmt"

	"github.com/magnate-systems/picking-api/internal/models"
	"github.com/magnate-systems/picking-api/internal/repository"
	"github.com/magnate-systems/picking-api/internal/utils"
)

const errorProductLimit = 10

// PickerMetrics is the per-user slice of the dashboard.
type PickerMetrics struct {
	UserID          string  `json:"user_id"`
	Username        string  `json:"username"`
	Role            string  `json:"role"`
	CompletedOrders int64   `json:"completed_orders"`
	TotalItems      int64   `json:"total_items"`
	AvgPickingTime  float64 `json:"avg_picking_time_minutes"`
}

// ErrorProduct is one entry of the mismatch ranking.
type ErrorProduct struct {
	ScanCode   string  `json:"scan_code"`
	ErrorCount int64   `json:"error_count"`
	ErrorRate  float64 `json:"error_rate"`
}

// Metrics is the operational dashboard aggregate.
type Metrics struct {
	ActiveSessions   int64           `json:"active_sessions"`
	FinishedSessions int64           `json:"finished_sessions"`
	AvgPickingTime   float64         `json:"avg_picking_time_minutes"`
	Incidents        int64           `json:"incidents"`
	Pickers          []PickerMetrics `json:"pickers"`
	ErrorProducts    []ErrorProduct  `json:"error_products"`
}

// MetricsService composes the reporting queries into the dashboard payload.
// All rounding happens here, at the reporting boundary; the underlying
// aggregates stay exact.
type MetricsService struct {
	metricsRepo repository.MetricsRepository
}

// NewMetricsService creates a new MetricsService
func NewMetricsService(metricsRepo repository.MetricsRepository) *MetricsService {
	return &MetricsService{metricsRepo: metricsRepo}
}

// Dashboard builds the full metrics payload.
func (s *MetricsService) Dashboard() (*Metrics, error) {
	active, err := s.metricsRepo.CountSessionsByStatus(models.SessionInProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to count active sessions: %w", err)
	}
	finishedCount, err := s.metricsRepo.CountSessionsByStatus(models.SessionFinished)
	if err != nil {
		return nil, fmt.Errorf("failed to count finished sessions: %w", err)
	}
	incidents, err := s.metricsRepo.CountIncidents()
	if err != nil {
		return nil, fmt.Errorf("failed to count incidents: %w", err)
	}

	finished, err := s.metricsRepo.FinishedSessions()
	if err != nil {
		return nil, fmt.Errorf("failed to load finished sessions: %w", err)
	}

	pickers, err := s.pickerMetrics(finished)
	if err != nil {
		return nil, err
	}
	products, err := s.errorProducts()
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ActiveSessions:   active,
		FinishedSessions: finishedCount,
		AvgPickingTime:   utils.Round2(meanDurationMinutes(finished)),
		Incidents:        incidents,
		Pickers:          pickers,
		ErrorProducts:    products,
	}, nil
}

func (s *MetricsService) pickerMetrics(finished []models.Session) ([]PickerMetrics, error) {
	stats, err := s.metricsRepo.PickerStats()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate picker stats: %w", err)
	}

	// Session durations grouped per user, for the per-picker average.
	perUser := make(map[string][]models.Session)
	for _, session := range finished {
		key := session.UserID.String()
		perUser[key] = append(perUser[key], session)
	}

	result := make([]PickerMetrics, 0, len(stats))
	for _, stat := range stats {
		key := stat.UserID.String()
		result = append(result, PickerMetrics{
			UserID:          key,
			Username:        stat.Username,
			Role:            string(stat.Role),
			CompletedOrders: stat.CompletedOrders,
			TotalItems:      stat.TotalItems,
			AvgPickingTime:  utils.Round2(meanDurationMinutes(perUser[key])),
		})
	}
	return result, nil
}

func (s *MetricsService) errorProducts() ([]ErrorProduct, error) {
	stats, err := s.metricsRepo.ErrorProducts(errorProductLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate error products: %w", err)
	}

	result := make([]ErrorProduct, 0, len(stats))
	for _, stat := range stats {
		total, err := s.metricsRepo.CountLinesByScanCode(stat.ScanCode)
		if err != nil {
			return nil, fmt.Errorf("failed to count lines for %s: %w", stat.ScanCode, err)
		}
		rate := 0.0
		if total > 0 {
			rate = float64(stat.ErrorCount) / float64(total) * 100
		}
		result = append(result, ErrorProduct{
			ScanCode:   stat.ScanCode,
			ErrorCount: stat.ErrorCount,
			ErrorRate:  utils.Round2(rate),
		})
	}
	return result, nil
}

// meanDurationMinutes averages finished-session durations. No sessions means
// 0.0, never NaN.
func meanDurationMinutes(sessions []models.Session) float64 {
	var total float64
	var n int
	for _, session := range sessions {
		if session.FinishedAt == nil {
			continue
		}
		total += session.FinishedAt.Sub(session.StartedAt).Minutes()
		n++
	}
	if n == 0 {
		return 0.0
	}
	return total / float64(n)
}
