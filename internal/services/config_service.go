package services

import (
	"encoding/json"
	"fmt"

	"github.com/magnate-systems/picking-api/internal/repository"
)

// ConfigService exposes the admin-managed runtime settings stored in the
// database, as opposed to the process environment.
type ConfigService struct {
	configRepo repository.ConfigRepository
}

// NewConfigService creates a new ConfigService
func NewConfigService(configRepo repository.ConfigRepository) *ConfigService {
	return &ConfigService{configRepo: configRepo}
}

// GetAll returns every setting as a key to decoded-value map.
func (s *ConfigService) GetAll() (map[string]any, error) {
	entries, err := s.configRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	result := make(map[string]any, len(entries))
	for _, entry := range entries {
		var value any
		if err := json.Unmarshal(entry.Value, &value); err != nil {
			value = string(entry.Value)
		}
		result[entry.Key] = value
	}
	return result, nil
}

// Set upserts the given settings.
func (s *ConfigService) Set(values map[string]any) error {
	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		if err := s.configRepo.Set(key, raw); err != nil {
			return fmt.Errorf("failed to store %s: %w", key, err)
		}
	}
	return nil
}
